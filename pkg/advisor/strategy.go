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
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/openquery/llap-advisor/pkg/common"
	"github.com/openquery/llap-advisor/pkg/common/configs"
	"github.com/openquery/llap-advisor/pkg/log"
	"github.com/openquery/llap-advisor/pkg/metrics"
	"github.com/openquery/llap-advisor/pkg/scheduler/queues"
)

// InteractiveQueryStrategy is the recommendation and validation behavior for
// the long running in-memory execution service. It owns the dedicated queue
// lifecycle and the daemon sizing plan.
type InteractiveQueryStrategy struct {
	queueName   string
	serviceUser string
	engine      *SizingEngine
	feasibility FeasibilityCalculator
	lifecycle   *queues.LifecycleManager
}

func NewInteractiveQueryStrategy(conf *configs.AdvisorConfig) *InteractiveQueryStrategy {
	return &InteractiveQueryStrategy{
		queueName:   conf.QueueName,
		serviceUser: conf.ServiceUser,
		engine:      NewSizingEngine(conf.QueueName),
		lifecycle:   queues.NewLifecycleManager(conf.QueueName, conf.ServiceUser),
	}
}

func (s *InteractiveQueryStrategy) Name() string {
	return "interactive-query"
}

// Recommend runs one advisory cycle for this service: reconcile the
// dedicated queue, then recompute the allocation plan when a tracked input
// changed. Only a cluster facts contract violation aborts the cycle.
func (s *InteractiveQueryStrategy) Recommend(c *Cycle) error {
	facts, err := ResolveClusterFacts(c.Bundle, c.NodeCount)
	if err != nil {
		return err
	}
	gate := NewChangeGate(c.Bundle)
	enabled := s.featureEnabled(c.Bundle)

	tree, err := queues.Load(c.Bundle)
	if err != nil {
		log.Logger().Error("no capacity scheduler configuration supplied, skipping cycle",
			zap.Error(err))
		return nil
	}

	tree = s.reconcileQueue(c.Bundle, gate, tree, facts, enabled)
	s.updateQueueAttributes(c.Bundle, tree)

	if !enabled {
		return nil
	}

	tracked := gate.AnyChanged(configs.HiveInteractiveEnv, PropQueueCapacity, PropEnableInteractive) ||
		gate.AnyChanged(configs.HiveInteractiveSite, PropConcurrency) ||
		gate.AnyChanged(configs.HiveInteractiveSite, PropDaemonQueueName)
	if !tracked {
		log.Logger().Info("tracked inputs unchanged, not adjusting allocation plan")
		metrics.GetAdvisorMetrics().IncCycle(metrics.CycleSkipped)
		return nil
	}

	input, err := s.resolveInput(c.Bundle, gate)
	var result SizingResult
	if err != nil {
		log.Logger().Info("sizing inputs incomplete, degrading to fallback plan",
			zap.Error(err))
		result = s.engine.Fallback(facts)
	} else {
		result = s.engine.Compute(input, facts, tree)
	}

	s.writePlan(c.Bundle, facts, result, input.ConcurrencyExplicit)
	c.Plan = &result

	am := metrics.GetAdvisorMetrics()
	if result.Fallback {
		am.IncCycle(metrics.CycleFallback)
	} else {
		am.IncCycle(metrics.CycleComputed)
	}
	am.SetPlanValue("num_nodes", result.NumNodes)
	am.SetPlanValue("concurrency", result.Concurrency)
	am.SetPlanValue("executors_per_node", result.ExecutorsPerNode)
	am.SetPlanValue("cache_mb_per_node", result.CacheMbPerNode)
	return nil
}

// reconcileQueue drives the dedicated queue lifecycle and performs the
// companion property rewrites a transition implies. It returns the tree the
// sizing step should read, reloaded when this cycle rewrote it.
func (s *InteractiveQueryStrategy) reconcileQueue(b *configs.Bundle, gate *ChangeGate, tree *queues.Tree, facts ClusterFacts, enabled bool) *queues.Tree {
	requested, _ := b.GetInt64(configs.HiveInteractiveEnv, PropQueueCapacity)

	var minRequired int64
	if execMb, err := b.GetInt64(configs.HiveSite, PropTezContainerSize); err == nil && execMb > 0 {
		minRequired = s.feasibility.MinRequiredPercent(facts, execMb)
	}

	featureToggled := gate.AnyChanged(configs.HiveInteractiveEnv, PropEnableInteractive)
	outcome := s.lifecycle.Reconcile(tree, enabled, requested, minRequired, featureToggled)
	if outcome == queues.OutcomeNone {
		return tree
	}

	tree.Write(b)
	metrics.GetAdvisorMetrics().IncQueueTransition(outcome.String())

	if outcome.Active() {
		b.Put(configs.HiveInteractiveSite, PropDaemonQueueName, s.queueName)
		b.Put(configs.HiveInteractiveSite, PropTezDefaultQueues, s.queueName)
		b.PutAttribute(configs.HiveInteractiveEnv, PropQueueCapacity, AttrMinimum, strconv.FormatInt(minRequired, 10))
		b.PutAttribute(configs.HiveInteractiveEnv, PropQueueCapacity, AttrMaximum, "100")
		if requested <= 0 || requested > 100 {
			b.PutInt64(configs.HiveInteractiveEnv, PropQueueCapacity, common.ClampPercent(requested, minRequired))
		}
	} else {
		b.Put(configs.HiveInteractiveSite, PropDaemonQueueName, queues.DefaultQueue)
		b.Put(configs.HiveInteractiveSite, PropTezDefaultQueues, queues.DefaultQueue)
	}

	reloaded, err := queues.Load(b)
	if err != nil {
		// cannot happen, the tree was just written
		return tree
	}
	return reloaded
}

// updateQueueAttributes refreshes the queue choice list of the daemon queue
// property and the capacity slider visibility.
func (s *InteractiveQueryStrategy) updateQueueAttributes(b *configs.Bundle, tree *queues.Tree) {
	leaves := tree.LeafQueues()

	type entry struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}
	entries := make([]entry, 0, len(leaves))
	for _, leaf := range leaves {
		entries = append(entries, entry{Label: leaf, Value: leaf})
	}
	if encoded, err := json.Marshal(entries); err == nil {
		b.PutAttribute(configs.HiveInteractiveSite, PropDaemonQueueName, AttrEntries, string(encoded))
	}

	selected, _ := b.Get(configs.HiveInteractiveSite, PropDaemonQueueName)
	visible := len(leaves) == 2 && selected == s.queueName
	b.PutAttribute(configs.HiveInteractiveEnv, PropQueueCapacity, AttrVisible, strconv.FormatBool(visible))
	log.Logger().Debug("queue attributes updated",
		zap.Strings("leafQueues", leaves),
		zap.String("selected", selected),
		zap.Bool("sliderVisible", visible))
}

// resolveInput assembles the operator supplied sizing inputs, pending edits
// winning over persisted state. A resolution failure is an infeasibility,
// not a contract violation.
func (s *InteractiveQueryStrategy) resolveInput(b *configs.Bundle, gate *ChangeGate) (SizingInput, error) {
	input := SizingInput{}

	selected, ok := b.Get(configs.HiveInteractiveSite, PropDaemonQueueName)
	if !ok || selected == "" {
		return input, fmt.Errorf("%w: %s", common.ErrMissingProperty, PropDaemonQueueName)
	}
	input.SelectedQueue = selected

	if selected == s.queueName {
		pct, err := b.GetInt64(configs.HiveInteractiveEnv, PropQueueCapacity)
		if err != nil {
			return input, fmt.Errorf("%w: %s", common.ErrMissingProperty, PropQueueCapacity)
		}
		input.RequestedPercent = pct
	}

	execMb, err := b.GetInt64(configs.HiveSite, PropTezContainerSize)
	if err != nil || execMb <= 0 {
		return input, fmt.Errorf("%w: %s", common.ErrMissingProperty, PropTezContainerSize)
	}
	input.ExecutorContainerMb = execMb

	if gate.IsOverridden(configs.HiveInteractiveSite, PropConcurrency) {
		v, err := b.GetInt64(configs.HiveInteractiveSite, PropConcurrency)
		if err != nil {
			return input, fmt.Errorf("%w: %s", common.ErrMissingProperty, PropConcurrency)
		}
		input.Concurrency = v
		input.ConcurrencyExplicit = true
	}
	return input, nil
}

// writePlan deposits the complete plan into the bundle: values, display
// copies, and UI bounds. The result is written wholesale, a fallback plan
// replaces every field of any previous plan.
func (s *InteractiveQueryStrategy) writePlan(b *configs.Bundle, facts ClusterFacts, r SizingResult, concurrencyExplicit bool) {
	if r.Fallback {
		b.PutInt64(configs.HiveInteractiveSite, PropConcurrency, r.Concurrency)
		b.PutAttribute(configs.HiveInteractiveSite, PropConcurrency, AttrMinimum, "1")
		b.PutAttribute(configs.HiveInteractiveSite, PropConcurrency, AttrMaximum, strconv.Itoa(MaxConcurrency))

		nodeMax := strconv.FormatInt(facts.NodeCount, 10)
		for _, name := range []string{PropNumNodes, PropNumNodes + copySuffix} {
			b.PutInt64(configs.HiveInteractiveEnv, name, r.NumNodes)
			b.PutAttribute(configs.HiveInteractiveEnv, name, AttrMinimum, "1")
			b.PutAttribute(configs.HiveInteractiveEnv, name, AttrMaximum, nodeMax)
		}

		minContainer := strconv.FormatInt(facts.MinContainerMb, 10)
		for _, name := range []string{PropDaemonContainer, PropDaemonContainer + copySuffix} {
			b.PutInt64(configs.HiveInteractiveSite, name, r.ContainerMb)
			b.PutAttribute(configs.HiveInteractiveSite, name, AttrMinimum, minContainer)
		}

		for _, name := range []string{PropNumExecutors, PropNumExecutors + copySuffix} {
			b.PutInt64(configs.HiveInteractiveSite, name, r.ExecutorsPerNode)
			b.PutAttribute(configs.HiveInteractiveSite, name, AttrMinimum, "1")
		}

		b.PutInt64(configs.HiveInteractiveSite, PropIOThreadpool, 0)
		b.PutInt64(configs.HiveInteractiveSite, PropIOMemory, r.CacheMbPerNode)
		b.PutInt64(configs.HiveInteractiveSite, PropIOMemory+copySuffix, r.CacheMbPerNode)
		b.PutInt64(configs.HiveInteractiveEnv, PropHeapSize, r.HeapMb)
		b.PutInt64(configs.HiveInteractiveEnv, PropSliderAmContainer, r.SliderAmContainerMb)
		return
	}

	b.PutInt64(configs.TezInteractiveSite, PropTezAmMemory, r.TezAmContainerMb)

	// an explicit operator override is read through, never recomputed
	if !concurrencyExplicit {
		b.PutInt64(configs.HiveInteractiveSite, PropConcurrency, r.Concurrency)
		b.PutAttribute(configs.HiveInteractiveSite, PropConcurrency, AttrMinimum, "1")
		b.PutAttribute(configs.HiveInteractiveSite, PropConcurrency, AttrMaximum, strconv.Itoa(MaxConcurrency))
	}

	b.PutInt64(configs.HiveInteractiveEnv, PropNumNodes, r.NumNodes)
	b.PutInt64(configs.HiveInteractiveEnv, PropNumNodes+copySuffix, r.NumNodes)
	b.PutInt64(configs.HiveInteractiveSite, PropDaemonContainer, r.ContainerMb)
	b.PutInt64(configs.HiveInteractiveSite, PropDaemonContainer+copySuffix, r.ContainerMb)
	b.PutInt64(configs.HiveInteractiveSite, PropNumExecutors, r.ExecutorsPerNode)
	b.PutInt64(configs.HiveInteractiveSite, PropNumExecutors+copySuffix, r.ExecutorsPerNode)
	b.PutInt64(configs.HiveInteractiveSite, PropIOThreadpool, r.ExecutorsPerNode)
	b.PutInt64(configs.HiveInteractiveSite, PropIOMemory, r.CacheMbPerNode)
	b.PutInt64(configs.HiveInteractiveSite, PropIOMemory+copySuffix, r.CacheMbPerNode)
	b.Put(configs.HiveInteractiveSite, PropIOEnabled, strconv.FormatBool(r.IOEnabled))
	b.PutInt64(configs.HiveInteractiveEnv, PropHeapSize, r.HeapMb)
	b.PutInt64(configs.HiveInteractiveEnv, PropSliderAmContainer, r.SliderAmContainerMb)
}

// Validate reports problems with the persisted or recommended values. It is
// read only: findings are appended to the report, nothing is written.
func (s *InteractiveQueryStrategy) Validate(c *Cycle) []ValidationItem {
	var items []ValidationItem
	b := c.Bundle
	enabled := s.featureEnabled(b)

	if tree, err := queues.Load(b); err == nil {
		if selected, ok := b.Get(configs.HiveInteractiveSite, PropDaemonQueueName); ok && selected != "" {
			capacity, capOk := tree.QueueCapacity(selected)
			facts, factsErr := ResolveClusterFacts(b, c.NodeCount)
			execMb, execErr := b.GetInt64(configs.HiveSite, PropTezContainerSize)
			if capOk && factsErr == nil && execErr == nil {
				minRequired := s.feasibility.MinRequiredPercent(facts, execMb)
				if capacity < minRequired {
					items = append(items, errorItem(PropDaemonQueueName,
						fmt.Sprintf("selected queue '%s' capacity (%d%%) is less than the minimum required capacity (%d%%) for the interactive service to run",
							selected, capacity, minRequired)))
				}
			}
			if tree.QueueState(selected) == "STOPPED" {
				items = append(items, errorItem(PropDaemonQueueName,
					fmt.Sprintf("selected queue '%s' is in STOPPED state, it must be RUNNING for the interactive service", selected)))
			}
		}
	}

	if doAs, ok := b.Get(configs.HiveInteractiveSite, PropEnableDoAs); ok && doAs == "true" {
		items = append(items, errorItem(PropEnableDoAs,
			"value should be set to 'false' for the interactive service"))
	}

	if enabled {
		if _, err := b.GetInt64(configs.HiveInteractiveEnv, PropQueueCapacity); err != nil {
			items = append(items, warnItem(PropQueueCapacity,
				"queue capacity is unset, the minimum required capacity will be applied on enable"))
		}
	}
	return items
}

func (s *InteractiveQueryStrategy) featureEnabled(b *configs.Bundle) bool {
	v, _ := b.Get(configs.HiveInteractiveEnv, PropEnableInteractive)
	return v == "true"
}
