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

	"github.com/openquery/llap-advisor/pkg/common/configs"
	"github.com/openquery/llap-advisor/pkg/scheduler/queues"
)

// tenNodeFacts is a mid size cluster: 10 nodes of 20 GB, 204800 MB total.
var tenNodeFacts = ClusterFacts{
	NodeCount:      10,
	NodeMemoryMb:   20480,
	MinContainerMb: 1024,
	NodeVcores:     8,
}

func twoQueueTree(t *testing.T) *queues.Tree {
	t.Helper()
	b := configs.NewBundle()
	for key, value := range map[string]string{
		"yarn.scheduler.capacity.root.queues":                   "default,llap",
		"yarn.scheduler.capacity.root.default.capacity":         "80",
		"yarn.scheduler.capacity.root.default.maximum-capacity": "80",
		"yarn.scheduler.capacity.root.default.state":            "RUNNING",
		"yarn.scheduler.capacity.root.llap.capacity":            "20",
		"yarn.scheduler.capacity.root.llap.maximum-capacity":    "20",
		"yarn.scheduler.capacity.root.llap.state":               "RUNNING",
	} {
		b.SetCurrent(configs.CapacityScheduler, key, value)
	}
	tree, err := queues.Load(b)
	assert.NilError(t, err)
	return tree
}

func TestComputeMidSizeCluster(t *testing.T) {
	engine := NewSizingEngine("llap")
	input := SizingInput{
		RequestedPercent:    20,
		SelectedQueue:       "llap",
		ExecutorContainerMb: 4096,
	}
	result := engine.Compute(input, tenNodeFacts, twoQueueTree(t))

	assert.Assert(t, !result.Fallback)
	// the 1536 MB AM tier rounds up to the 1024 MB allocation unit
	assert.Equal(t, result.TezAmContainerMb, int64(2048))
	// 20% of 204800 is a 40960 MB queue, 0.25 x 40960 / 2048 session AMs
	assert.Equal(t, result.Concurrency, int64(5))
	assert.Equal(t, result.SliderAmContainerMb, int64(1024))
	// 40960 - (2048x5 + 1024) leaves 29696 MB, more than one node's worth
	assert.Equal(t, result.NumNodes, int64(1))
	assert.Equal(t, result.ContainerMb, int64(20480))
	assert.Equal(t, result.ExecutorsPerNode, int64(5))
	assert.Equal(t, result.CacheMbPerNode, int64(0))
	assert.Equal(t, result.HeapMb, int64(19456))
	assert.Assert(t, !result.IOEnabled)
}

func TestComputeExplicitConcurrency(t *testing.T) {
	engine := NewSizingEngine("llap")
	input := SizingInput{
		RequestedPercent:    20,
		Concurrency:         2,
		ConcurrencyExplicit: true,
		SelectedQueue:       "llap",
		ExecutorContainerMb: 4096,
	}
	result := engine.Compute(input, tenNodeFacts, twoQueueTree(t))

	assert.Assert(t, !result.Fallback)
	assert.Equal(t, result.Concurrency, int64(2), "operator override must be read through")
	assert.Equal(t, result.NumNodes, int64(1))
	assert.Equal(t, result.ContainerMb, int64(20480))
}

func TestComputeInvalidExplicitConcurrency(t *testing.T) {
	engine := NewSizingEngine("llap")
	input := SizingInput{
		RequestedPercent:    20,
		Concurrency:         0,
		ConcurrencyExplicit: true,
		SelectedQueue:       "llap",
		ExecutorContainerMb: 4096,
	}
	result := engine.Compute(input, tenNodeFacts, twoQueueTree(t))
	assert.Assert(t, result.Fallback)
}

func TestComputeConcurrencyCap(t *testing.T) {
	// 50 nodes of 96 GB give a queue large enough to exceed the session cap
	facts := ClusterFacts{NodeCount: 50, NodeMemoryMb: 98304, MinContainerMb: 1024, NodeVcores: 16}
	engine := NewSizingEngine("llap")
	input := SizingInput{
		RequestedPercent:    80,
		SelectedQueue:       "llap",
		ExecutorContainerMb: 4096,
	}
	result := engine.Compute(input, facts, twoQueueTree(t))

	assert.Assert(t, !result.Fallback)
	assert.Equal(t, result.Concurrency, int64(MaxConcurrency))
}

func TestComputeTooSmallQueueFallsBack(t *testing.T) {
	engine := NewSizingEngine("llap")
	input := SizingInput{
		RequestedPercent:    1,
		SelectedQueue:       "llap",
		ExecutorContainerMb: 4096,
	}
	result := engine.Compute(input, tenNodeFacts, twoQueueTree(t))

	assert.Assert(t, result.Fallback)
	assert.Equal(t, result.Concurrency, int64(1))
	assert.Equal(t, result.NumNodes, int64(0))
	assert.Equal(t, result.ContainerMb, tenNodeFacts.MinContainerMb)
	assert.Equal(t, result.ExecutorsPerNode, int64(0))
	assert.Equal(t, result.CacheMbPerNode, int64(0))
	assert.Equal(t, result.HeapMb, int64(0))
	assert.Equal(t, result.SliderAmContainerMb, int64(1024))
}

func TestComputeStoppedQueueFallsBack(t *testing.T) {
	b := configs.NewBundle()
	for key, value := range map[string]string{
		"yarn.scheduler.capacity.root.queues":                "default,llap",
		"yarn.scheduler.capacity.root.default.capacity":      "100",
		"yarn.scheduler.capacity.root.llap.capacity":         "0",
		"yarn.scheduler.capacity.root.llap.maximum-capacity": "0",
		"yarn.scheduler.capacity.root.llap.state":            "STOPPED",
	} {
		b.SetCurrent(configs.CapacityScheduler, key, value)
	}
	tree, err := queues.Load(b)
	assert.NilError(t, err)

	engine := NewSizingEngine("llap")
	result := engine.Compute(SizingInput{
		RequestedPercent:    20,
		SelectedQueue:       "llap",
		ExecutorContainerMb: 4096,
	}, tenNodeFacts, tree)
	assert.Assert(t, result.Fallback)
}

func TestComputeOtherQueueUsesItsCapacity(t *testing.T) {
	// when a foreign queue is selected its persisted capacity is sized for,
	// the requested percentage only applies to the dedicated queue
	engine := NewSizingEngine("llap")
	input := SizingInput{
		RequestedPercent:    5,
		SelectedQueue:       "default",
		ExecutorContainerMb: 4096,
	}
	result := engine.Compute(input, tenNodeFacts, twoQueueTree(t))

	assert.Assert(t, !result.Fallback)
	// 80% of 204800 is 163840 MB, 0.25 x 163840 / 2048 = 20 session AMs
	assert.Equal(t, result.Concurrency, int64(20))
}

func TestComputeMissingSelectedQueueFallsBack(t *testing.T) {
	engine := NewSizingEngine("llap")
	result := engine.Compute(SizingInput{
		RequestedPercent:    20,
		SelectedQueue:       "",
		ExecutorContainerMb: 4096,
	}, tenNodeFacts, twoQueueTree(t))
	assert.Assert(t, result.Fallback)
}

func TestFallbackIsDeterministic(t *testing.T) {
	engine := NewSizingEngine("llap")
	first := engine.Fallback(tenNodeFacts)
	second := engine.Fallback(tenNodeFacts)
	assert.DeepEqual(t, first, second)
	assert.Assert(t, first.Fallback)
}

func TestComputeMemoryAccounting(t *testing.T) {
	// on every feasible plan the executors plus cache exactly fill the
	// per node container
	clusters := []ClusterFacts{
		{NodeCount: 3, NodeMemoryMb: 8192, MinContainerMb: 512, NodeVcores: 4},
		{NodeCount: 10, NodeMemoryMb: 20480, MinContainerMb: 1024, NodeVcores: 8},
		{NodeCount: 25, NodeMemoryMb: 65536, MinContainerMb: 2048, NodeVcores: 16},
		{NodeCount: 100, NodeMemoryMb: 131072, MinContainerMb: 4096, NodeVcores: 32},
	}
	engine := NewSizingEngine("llap")
	for _, facts := range clusters {
		for _, pct := range []int64{25, 50, 90} {
			input := SizingInput{
				RequestedPercent:    pct,
				SelectedQueue:       "llap",
				ExecutorContainerMb: 3072,
			}
			result := engine.Compute(input, facts, twoQueueTree(t))
			if result.Fallback {
				continue
			}
			used := result.ExecutorsPerNode*input.ExecutorContainerMb + result.CacheMbPerNode
			assert.Assert(t, used <= result.ContainerMb,
				"nodes=%d pct=%d: executors and cache (%d MB) exceed the container (%d MB)",
				facts.NodeCount, pct, used, result.ContainerMb)
			assert.Assert(t, result.CacheMbPerNode >= 0)
			assert.Assert(t, result.ExecutorsPerNode <= facts.NodeVcores)
		}
	}
}

func TestTezAmTiers(t *testing.T) {
	tests := []struct {
		totalMb  int64
		expected int64
	}{
		{2048, 256},
		{4096, 256},
		{4097, 512},
		{73728, 512},
		{73729, 1536},
		{204800, 1536},
	}
	for _, test := range tests {
		assert.Equal(t, tezAmMb(test.totalMb), test.expected, "total %d MB", test.totalMb)
	}
}

func TestSliderAmBounds(t *testing.T) {
	assert.Equal(t, sliderAmMb(128), int64(256))
	assert.Equal(t, sliderAmMb(512), int64(512))
	assert.Equal(t, sliderAmMb(4096), int64(1024))
}
