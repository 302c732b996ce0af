/*
 Licensed to the Apache Software Foundation (ASF) under one
 or more contributor license agreements.  See the NOTICE file
 distributed with this work for additional information
 regarding copyright ownership.  The ASF licenses this file
 to you under the Apache License, Version 2.0 (the
 "License"); you may not use this file except in compliance
 with the License.  You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package advisor

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestMinRequiredPercentClusterShareFloor(t *testing.T) {
	// on a large cluster the structural minimum is tiny, the 20% cluster
	// share dominates
	var calc FeasibilityCalculator
	pct := calc.MinRequiredPercent(tenNodeFacts, 4096)
	assert.Equal(t, pct, int64(20))
}

func TestMinRequiredPercentStructuralMinimum(t *testing.T) {
	// on a small cluster the AMs plus one executor container need more than
	// a 20% share: slider 512 + executor 3072 + tez AM 512 = 4096 of 8192 MB
	facts := ClusterFacts{NodeCount: 1, NodeMemoryMb: 8192, MinContainerMb: 512, NodeVcores: 4}
	var calc FeasibilityCalculator
	pct := calc.MinRequiredPercent(facts, 3072)
	assert.Equal(t, pct, int64(50))
}

func TestMinRequiredPercentCappedAtHundred(t *testing.T) {
	// the structural minimum exceeds the whole cluster
	facts := ClusterFacts{NodeCount: 1, NodeMemoryMb: 2048, MinContainerMb: 512, NodeVcores: 2}
	var calc FeasibilityCalculator
	pct := calc.MinRequiredPercent(facts, 4096)
	assert.Equal(t, pct, int64(100))
}

func TestMinRequiredPercentRoundsUp(t *testing.T) {
	// 20% of 10240 is 2048 MB, the structural minimum normalized to the
	// 512 MB unit is 512 + 3072 + 512 = 4096 MB which is 40%
	facts := ClusterFacts{NodeCount: 1, NodeMemoryMb: 10240, MinContainerMb: 512, NodeVcores: 4}
	var calc FeasibilityCalculator
	pct := calc.MinRequiredPercent(facts, 3000)
	assert.Equal(t, pct, int64(40))
}
