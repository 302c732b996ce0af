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
	"math"

	"go.uber.org/zap"

	"github.com/openquery/llap-advisor/pkg/common"
	"github.com/openquery/llap-advisor/pkg/log"
	"github.com/openquery/llap-advisor/pkg/scheduler/queues"
)

// MaxConcurrency bounds the number of concurrent coordinator sessions.
const MaxConcurrency = 32

// SizingInput is the operator supplied part of a sizing cycle.
type SizingInput struct {
	RequestedPercent    int64
	Concurrency         int64
	ConcurrencyExplicit bool
	SelectedQueue       string
	ExecutorContainerMb int64
}

// SizingResult is the complete allocation plan for the daemon fleet. It is
// always recomputed wholesale: either every field comes from a successful
// computation, or every field comes from the fallback plan.
type SizingResult struct {
	TezAmContainerMb    int64
	Concurrency         int64
	NumNodes            int64
	ContainerMb         int64
	ExecutorsPerNode    int64
	CacheMbPerNode      int64
	HeapMb              int64
	SliderAmContainerMb int64
	IOEnabled           bool
	Fallback            bool
}

// SizingEngine converts a target capacity percentage into a full, mutually
// consistent allocation plan. Compute never fails towards its caller: any
// infeasibility degrades to the known good fallback plan.
type SizingEngine struct {
	queueName string
}

func NewSizingEngine(queueName string) *SizingEngine {
	return &SizingEngine{queueName: queueName}
}

// Compute runs the two phase attempt: the full computation, and on any
// infeasibility the complete fallback plan. Partial results are never
// returned.
func (e *SizingEngine) Compute(input SizingInput, facts ClusterFacts, tree *queues.Tree) SizingResult {
	result, err := e.compute(input, facts, tree)
	if err != nil {
		log.Logger().Info("sizing infeasible, degrading to fallback plan",
			zap.Error(err))
		return e.Fallback(facts)
	}
	return result
}

func (e *SizingEngine) compute(input SizingInput, facts ClusterFacts, tree *queues.Tree) (SizingResult, error) {
	targetPercent, err := e.targetPercent(input, tree)
	if err != nil {
		return SizingResult{}, err
	}

	totalClusterMb := facts.TotalMb()
	tezAmContainerMb := common.NormalizeUp(tezAmMb(totalClusterMb), facts.MinContainerMb)
	totalQueueMb := common.NormalizeDown(int64(float64(targetPercent)/100*float64(totalClusterMb)), facts.MinContainerMb)
	sliderAmContainerMb := common.NormalizeUp(sliderAmMb(facts.MinContainerMb), facts.MinContainerMb)

	concurrency := input.Concurrency
	if input.ConcurrencyExplicit {
		if concurrency < 1 {
			return SizingResult{}, fmt.Errorf("%w: got %d", common.ErrInvalidConcurrency, concurrency)
		}
	} else {
		concurrency = int64(0.25 * float64(totalQueueMb) / float64(tezAmContainerMb))
		if concurrency < 1 {
			concurrency = 1
		}
		if concurrency > MaxConcurrency {
			concurrency = MaxConcurrency
		}
	}

	totalAmMb := tezAmContainerMb*concurrency + sliderAmContainerMb
	daemonCapacityMb := totalQueueMb - totalAmMb
	if daemonCapacityMb < facts.MinContainerMb {
		return SizingResult{}, fmt.Errorf("%w: daemon capacity %d MB, minimum container %d MB",
			common.ErrInfeasible, daemonCapacityMb, facts.MinContainerMb)
	}

	var numNodes, containerMb int64
	if daemonCapacityMb < facts.NodeMemoryMb {
		numNodes = 1
		containerMb = common.NormalizeUp(daemonCapacityMb, facts.MinContainerMb)
	} else {
		numNodes = daemonCapacityMb / facts.NodeMemoryMb
		containerMb = common.NormalizeDown(facts.NodeMemoryMb, facts.MinContainerMb)
	}

	if input.ExecutorContainerMb <= 0 {
		return SizingResult{}, fmt.Errorf("%w: executor container size %d MB",
			common.ErrInfeasible, input.ExecutorContainerMb)
	}
	executorsPerNode := containerMb / input.ExecutorContainerMb
	if executorsPerNode > facts.NodeVcores {
		executorsPerNode = facts.NodeVcores
	}

	memForExecutors := executorsPerNode * input.ExecutorContainerMb
	cacheMbPerNode := containerMb - memForExecutors
	if cacheMbPerNode < 0 {
		cacheMbPerNode = 0
	}

	heapMb := int64(math.Max(0.8*float64(memForExecutors), float64(memForExecutors-1024)))

	result := SizingResult{
		TezAmContainerMb:    tezAmContainerMb,
		Concurrency:         concurrency,
		NumNodes:            numNodes,
		ContainerMb:         containerMb,
		ExecutorsPerNode:    executorsPerNode,
		CacheMbPerNode:      cacheMbPerNode,
		HeapMb:              heapMb,
		SliderAmContainerMb: sliderAmContainerMb,
		IOEnabled:           cacheMbPerNode >= 64,
	}

	log.Logger().Info("allocation plan computed",
		zap.Int64("targetPercent", targetPercent),
		zap.Int64("totalQueueMb", totalQueueMb),
		zap.Int64("tezAmContainerMb", tezAmContainerMb),
		zap.Int64("concurrency", concurrency),
		zap.Int64("daemonCapacityMb", daemonCapacityMb),
		zap.Int64("numNodes", numNodes),
		zap.Int64("containerMb", containerMb),
		zap.Int64("executorsPerNode", executorsPerNode),
		zap.Int64("cacheMbPerNode", cacheMbPerNode),
		zap.Int64("heapMb", heapMb))
	return result, nil
}

// targetPercent resolves which percentage the plan is sized for: the
// operator's requested share when the dedicated queue is selected, otherwise
// the selected queue's existing capacity. A missing or STOPPED selected
// queue aborts to the fallback plan.
func (e *SizingEngine) targetPercent(input SizingInput, tree *queues.Tree) (int64, error) {
	if input.SelectedQueue == "" {
		return 0, fmt.Errorf("%w: no daemon queue selected", common.ErrQueueNotFound)
	}
	if state := tree.QueueState(input.SelectedQueue); state == "" || state == "STOPPED" {
		if state == "STOPPED" {
			return 0, fmt.Errorf("%w: %q", common.ErrQueueStopped, input.SelectedQueue)
		}
		return 0, fmt.Errorf("%w: %q", common.ErrQueueNotFound, input.SelectedQueue)
	}

	pct := input.RequestedPercent
	if input.SelectedQueue != e.queueName {
		existing, ok := tree.QueueCapacity(input.SelectedQueue)
		if !ok {
			return 0, fmt.Errorf("%w: %q has no capacity set", common.ErrQueueNotFound, input.SelectedQueue)
		}
		pct = existing
	}
	if pct < 1 {
		return 0, fmt.Errorf("%w: target queue share %d%%", common.ErrInfeasible, pct)
	}
	return pct, nil
}

// Fallback is the minimal safe default plan. It never fails and it never
// modifies the operator's requested percentage: a corrective increase must
// come from the operator.
func (e *SizingEngine) Fallback(facts ClusterFacts) SizingResult {
	return SizingResult{
		Concurrency:         1,
		NumNodes:            0,
		ContainerMb:         facts.MinContainerMb,
		ExecutorsPerNode:    0,
		CacheMbPerNode:      0,
		HeapMb:              0,
		SliderAmContainerMb: sliderAmMb(facts.MinContainerMb),
		Fallback:            true,
	}
}

// tezAmMb is the tiered coordinator AM size as a step function of total
// cluster capacity, before normalization.
func tezAmMb(totalClusterMb int64) int64 {
	switch {
	case totalClusterMb <= 4096:
		return 256
	case totalClusterMb <= 73728:
		return 512
	default:
		return 1536
	}
}

// sliderAmMb clamps the minimum container size into [256, 1024].
func sliderAmMb(minContainerMb int64) int64 {
	if minContainerMb > 1024 {
		return 1024
	}
	if minContainerMb < 256 {
		return 256
	}
	return minContainerMb
}
