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
	"math"

	"go.uber.org/zap"

	"github.com/openquery/llap-advisor/pkg/common"
	"github.com/openquery/llap-advisor/pkg/log"
)

// FeasibilityCalculator computes the minimum queue capacity percentage at
// which the daemons plus their companion application masters structurally
// fit into the dedicated queue.
type FeasibilityCalculator struct{}

// MinRequiredPercent returns the smaller of a 20% cluster share and the
// normalized structural minimum (slider AM + one executor container + tez
// AM), whichever is larger, expressed as a whole percent of total cluster
// capacity. The result is always capped at 100.
func (FeasibilityCalculator) MinRequiredPercent(facts ClusterFacts, executorContainerMb int64) int64 {
	totalMb := facts.TotalMb()
	queueAt20 := 0.20 * float64(totalMb)

	structuralMin := common.NormalizeUp(sliderAmMb(facts.MinContainerMb), facts.MinContainerMb) +
		common.NormalizeUp(executorContainerMb, facts.MinContainerMb) +
		common.NormalizeUp(tezAmMb(totalMb), facts.MinContainerMb)

	minRequiredMb := math.Max(queueAt20, float64(structuralMin))
	pct := int64(math.Ceil(minRequiredMb * 100 / float64(totalMb)))
	if pct > 100 {
		pct = 100
	}

	log.Logger().Debug("minimum required queue capacity computed",
		zap.Int64("minRequiredPercent", pct),
		zap.Float64("queueAt20Mb", queueAt20),
		zap.Int64("structuralMinMb", structuralMin),
		zap.Int64("totalClusterMb", totalMb))
	return pct
}
