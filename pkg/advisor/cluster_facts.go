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
	"fmt"

	"go.uber.org/zap"

	"github.com/openquery/llap-advisor/pkg/common"
	"github.com/openquery/llap-advisor/pkg/common/configs"
	"github.com/openquery/llap-advisor/pkg/log"
)

// ClusterFacts are the cluster wide numeric facts a sizing cycle derives
// from. They are recomputed from live inputs every cycle (pending edits win
// over persisted state) and never persisted themselves.
type ClusterFacts struct {
	NodeCount      int64
	NodeMemoryMb   int64
	MinContainerMb int64
	NodeVcores     int64
}

// TotalMb is the memory capacity of the whole cluster.
func (cf ClusterFacts) TotalMb() int64 {
	return cf.NodeCount * cf.NodeMemoryMb
}

// ResolveClusterFacts assembles the facts for this cycle. The node count
// comes from the host inventory supplied by the framework, the rest from the
// resource manager site properties. A zero or negative value is a contract
// violation: the cycle must abort with no partial writes.
func ResolveClusterFacts(b *configs.Bundle, nodeCount int64) (ClusterFacts, error) {
	facts := ClusterFacts{NodeCount: nodeCount}

	var err error
	if facts.NodeMemoryMb, err = b.GetInt64(configs.YarnSite, PropNodeMemory); err != nil {
		return facts, fmt.Errorf("%w: %v", common.ErrMissingProperty, err)
	}
	if facts.MinContainerMb, err = b.GetInt64(configs.YarnSite, PropMinContainer); err != nil {
		return facts, fmt.Errorf("%w: %v", common.ErrMissingProperty, err)
	}
	if facts.NodeVcores, err = b.GetInt64(configs.YarnSite, PropNodeVcores); err != nil {
		return facts, fmt.Errorf("%w: %v", common.ErrMissingProperty, err)
	}

	if facts.NodeCount <= 0 || facts.NodeMemoryMb <= 0 || facts.MinContainerMb <= 0 || facts.NodeVcores <= 0 {
		return facts, fmt.Errorf("%w: nodes=%d nodeMemoryMb=%d minContainerMb=%d vcores=%d",
			common.ErrInvalidClusterFacts, facts.NodeCount, facts.NodeMemoryMb, facts.MinContainerMb, facts.NodeVcores)
	}

	log.Logger().Debug("cluster facts resolved",
		zap.Int64("nodeCount", facts.NodeCount),
		zap.Int64("nodeMemoryMb", facts.NodeMemoryMb),
		zap.Int64("minContainerMb", facts.MinContainerMb),
		zap.Int64("nodeVcores", facts.NodeVcores),
		zap.Int64("totalClusterMb", facts.TotalMb()))
	return facts, nil
}
