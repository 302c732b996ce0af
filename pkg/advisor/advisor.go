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
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/openquery/llap-advisor/pkg/common/configs"
	"github.com/openquery/llap-advisor/pkg/log"
	"github.com/openquery/llap-advisor/pkg/metrics"
	"github.com/openquery/llap-advisor/pkg/scheduler/queues"
	"github.com/openquery/llap-advisor/pkg/trace"
)

// QueueStatus is a read only snapshot of one root level queue after the
// last cycle, served by the REST endpoint.
type QueueStatus struct {
	Name                   string `json:"name"`
	CapacityPercent        int64  `json:"capacityPercent"`
	MaximumCapacityPercent int64  `json:"maximumCapacityPercent"`
	State                  string `json:"state"`
}

// Advisor runs advisory cycles over the registered service strategies. The
// host framework serializes cycles, the advisor itself only locks the
// snapshot it exposes to observers.
type Advisor struct {
	conf     *configs.AdvisorConfig
	registry *Registry
	closer   io.Closer

	lock            sync.RWMutex
	lastCycleID     string
	lastPlan        *SizingResult
	lastValidations []ValidationItem
	lastQueues      []QueueStatus
}

func NewAdvisor(conf *configs.AdvisorConfig) *Advisor {
	a := &Advisor{
		conf:     conf,
		registry: NewRegistry(),
	}
	a.registry.Register(NewInteractiveQueryStrategy(conf))

	if conf.Tracing {
		tracer, closer, err := trace.NewConstTracer("llap-advisor")
		if err != nil {
			log.Logger().Warn("tracer init failed, cycles will not be traced",
				zap.Error(err))
		} else {
			opentracing.SetGlobalTracer(tracer)
			a.closer = closer
		}
	}
	return a
}

// Register adds a service strategy behind the built-in one.
func (a *Advisor) Register(s ServiceStrategy) {
	a.registry.Register(s)
}

// RunCycle executes one full advisory cycle against the supplied bundle.
// Strategies run in registration order, each recommending then validating.
// A returned error is a contract violation: the cycle aborted and the
// bundle must be discarded by the caller, not persisted.
func (a *Advisor) RunCycle(b *configs.Bundle, nodeCount int64) error {
	cycle := &Cycle{
		ID:        uuid.NewString(),
		Bundle:    b,
		NodeCount: nodeCount,
	}
	span := opentracing.GlobalTracer().StartSpan("advisory-cycle")
	span.SetTag("cycleID", cycle.ID)
	defer span.Finish()

	log.Logger().Info("advisory cycle starting",
		zap.String("cycleID", cycle.ID),
		zap.Int64("nodeCount", nodeCount))

	for _, strategy := range a.registry.Strategies() {
		if err := strategy.Recommend(cycle); err != nil {
			metrics.GetAdvisorMetrics().IncCycle(metrics.CycleError)
			span.SetTag("error", true)
			log.Logger().Error("advisory cycle aborted",
				zap.String("cycleID", cycle.ID),
				zap.String("strategy", strategy.Name()),
				zap.Error(err))
			return err
		}
		cycle.Validations = append(cycle.Validations, strategy.Validate(cycle)...)
	}

	a.snapshot(cycle)
	if cycle.Plan != nil {
		span.SetTag("fallback", cycle.Plan.Fallback)
		span.SetTag("numNodes", cycle.Plan.NumNodes)
	}
	log.Logger().Info("advisory cycle finished",
		zap.String("cycleID", cycle.ID),
		zap.Int("validations", len(cycle.Validations)))
	return nil
}

// Close flushes the tracer when one was installed.
func (a *Advisor) Close() {
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			log.Logger().Warn("tracer close failed", zap.Error(err))
		}
	}
}

func (a *Advisor) snapshot(cycle *Cycle) {
	statuses := a.queueStatuses(cycle.Bundle)

	a.lock.Lock()
	defer a.lock.Unlock()
	a.lastCycleID = cycle.ID
	a.lastValidations = cycle.Validations
	a.lastQueues = statuses
	if cycle.Plan != nil {
		a.lastPlan = cycle.Plan
	}
}

func (a *Advisor) queueStatuses(b *configs.Bundle) []QueueStatus {
	tree, err := queues.Load(b)
	if err != nil {
		return nil
	}
	var statuses []QueueStatus
	for _, leaf := range tree.LeafQueues() {
		if strings.Contains(leaf, ".") {
			continue
		}
		capacity, _ := tree.QueueCapacity(leaf)
		maxCapacity, _ := tree.QueueMaxCapacity(leaf)
		statuses = append(statuses, QueueStatus{
			Name:                   leaf,
			CapacityPercent:        capacity,
			MaximumCapacityPercent: maxCapacity,
			State:                  tree.QueueState(leaf),
		})
	}
	return statuses
}

// LastCycleID returns the ID of the most recent completed cycle.
func (a *Advisor) LastCycleID() string {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.lastCycleID
}

// LastPlan returns the plan emitted by the most recent cycle that computed
// one. The second return is false before any plan exists.
func (a *Advisor) LastPlan() (SizingResult, bool) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	if a.lastPlan == nil {
		return SizingResult{}, false
	}
	return *a.lastPlan, true
}

// LastValidations returns the ordered findings of the most recent cycle.
func (a *Advisor) LastValidations() []ValidationItem {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.lastValidations
}

// QueueSnapshot returns the root level queues as of the last cycle.
func (a *Advisor) QueueSnapshot() []QueueStatus {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.lastQueues
}
