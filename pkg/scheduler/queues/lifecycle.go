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

package queues

import (
	"context"
	"strconv"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/openquery/llap-advisor/pkg/common"
	"github.com/openquery/llap-advisor/pkg/log"
)

// ----------------------------------
// lifecycle events of the dedicated queue
// ----------------------------------
type LifecycleEvent int

const (
	Enable LifecycleEvent = iota
	Resume
	Stop
)

func (le LifecycleEvent) String() string {
	return [...]string{"Enable", "Resume", "Stop"}[le]
}

// ----------------------------------
// lifecycle states of the dedicated queue
// ----------------------------------
type LifecycleState int

const (
	Absent LifecycleState = iota
	Running
	Stopped
)

func (ls LifecycleState) String() string {
	return [...]string{"Absent", "Running", "Stopped"}[ls]
}

func newLifecycleState() *fsm.FSM {
	return fsm.NewFSM(
		Absent.String(), fsm.Events{
			{
				Name: Enable.String(),
				Src:  []string{Absent.String()},
				Dst:  Running.String(),
			}, {
				Name: Resume.String(),
				Src:  []string{Stopped.String()},
				Dst:  Running.String(),
			}, {
				Name: Stop.String(),
				Src:  []string{Running.String()},
				Dst:  Stopped.String(),
			},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, event *fsm.Event) {
				log.Logger().Info("queue transition",
					zap.Any("queue", event.Args[0]),
					zap.String("source", event.Src),
					zap.String("destination", event.Dst),
					zap.String("event", event.Event))
			},
		},
	)
}

// Outcome of one reconciliation of the dedicated queue.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCreated
	OutcomeAdjusted
	OutcomeResumed
	OutcomeStopped
)

func (o Outcome) String() string {
	return [...]string{"none", "created", "adjusted", "resumed", "stopped"}[o]
}

// Active reports whether the dedicated queue is running after the transition.
func (o Outcome) Active() bool {
	return o == OutcomeCreated || o == OutcomeAdjusted || o == OutcomeResumed
}

// LifecycleManager drives the dedicated queue through its lifecycle while
// keeping the root level capacities summing to exactly 100. It only manages
// the two sibling topology of "default" plus the dedicated queue and never
// touches any other queue structure.
type LifecycleManager struct {
	queueName    string
	serviceUser  string
	stateMachine *fsm.FSM
}

func NewLifecycleManager(queueName, serviceUser string) *LifecycleManager {
	return &LifecycleManager{
		queueName:    queueName,
		serviceUser:  serviceUser,
		stateMachine: newLifecycleState(),
	}
}

func (m *LifecycleManager) QueueName() string {
	return m.queueName
}

// State derives the dedicated queue's lifecycle state from the tree.
func (m *LifecycleManager) State(t *Tree) LifecycleState {
	if _, ok := t.QueueCapacity(m.queueName); !ok {
		return Absent
	}
	if t.QueueState(m.queueName) == "STOPPED" {
		return Stopped
	}
	return Running
}

// Reconcile moves the dedicated queue towards the desired state. When the
// feature is enabled the requested percent is clamped into
// [minRequiredPercent, 100] before any capacities are written. featureToggled
// signals that the enable flag itself changed this cycle, which is what
// allows a STOPPED queue to resume. All capacity rewrites touch both siblings
// so the sum to 100 invariant holds on every exit path.
func (m *LifecycleManager) Reconcile(t *Tree, enabled bool, requestedPercent, minRequiredPercent int64, featureToggled bool) Outcome {
	state := m.State(t)
	m.stateMachine.SetState(state.String())
	leaves := t.LeafQueues()

	if !enabled {
		if state == Running && m.expectedSiblings(leaves) {
			m.stop(t)
			m.event(Stop)
			return OutcomeStopped
		}
		log.Logger().Debug("queue teardown skipped",
			zap.String("queue", m.queueName),
			zap.String("state", state.String()),
			zap.Strings("leafQueues", leaves))
		return OutcomeNone
	}

	pct := requestedPercent
	if pct <= 0 || pct > 100 {
		pct = common.ClampPercent(pct, minRequiredPercent)
		log.Logger().Info("requested queue capacity out of bounds, clamped",
			zap.Int64("requested", requestedPercent),
			zap.Int64("clamped", pct))
	}

	switch state {
	case Absent:
		defaultCap, ok := t.QueueCapacity(DefaultQueue)
		if len(leaves) == 1 && leaves[0] == DefaultQueue && ok && defaultCap == 100 {
			m.applyRunning(t, pct)
			m.event(Enable)
			return OutcomeCreated
		}
	case Stopped:
		if m.expectedSiblings(leaves) && featureToggled {
			m.applyRunning(t, pct)
			m.event(Resume)
			return OutcomeResumed
		}
	case Running:
		current, _ := t.QueueCapacity(m.queueName)
		if m.expectedSiblings(leaves) && current != pct {
			m.applyRunning(t, pct)
			return OutcomeAdjusted
		}
	}
	log.Logger().Debug("queue reconciliation is a no-op",
		zap.String("queue", m.queueName),
		zap.String("state", state.String()),
		zap.Strings("leafQueues", leaves))
	return OutcomeNone
}

// expectedSiblings checks for the exact two queue topology this manager owns.
func (m *LifecycleManager) expectedSiblings(leaves []string) bool {
	if len(leaves) != 2 {
		return false
	}
	// LeafQueues returns sorted names
	return (leaves[0] == DefaultQueue && leaves[1] == m.queueName) ||
		(leaves[0] == m.queueName && leaves[1] == DefaultQueue)
}

// applyRunning writes the full dedicated queue definition at the given
// percent and shrinks the default queue to the complement.
func (m *LifecycleManager) applyRunning(t *Tree, pct int64) {
	complement := strconv.FormatInt(100-pct, 10)
	capacity := strconv.FormatInt(pct, 10)

	t.set(PropertyPrefix+RootQueue+".queues", DefaultQueue+","+m.queueName)
	t.set(QueueKey(DefaultQueue, "capacity"), complement)
	t.set(QueueKey(DefaultQueue, "maximum-capacity"), complement)

	t.set(QueueKey(m.queueName, "user-limit-factor"), "1")
	t.set(QueueKey(m.queueName, "state"), "RUNNING")
	t.set(QueueKey(m.queueName, "ordering-policy"), "fifo")
	t.set(QueueKey(m.queueName, "minimum-user-limit-percent"), "100")
	t.set(QueueKey(m.queueName, "maximum-capacity"), capacity)
	t.set(QueueKey(m.queueName, "capacity"), capacity)
	t.set(QueueKey(m.queueName, "acl_submit_applications"), m.serviceUser)
	t.set(QueueKey(m.queueName, "acl_administer_queue"), m.serviceUser)
	t.set(QueueKey(m.queueName, "maximum-am-resource-percent"), "1")

	log.Logger().Info("dedicated queue capacities applied",
		zap.String("queue", m.queueName),
		zap.String("capacity", capacity),
		zap.String("defaultCapacity", complement))
}

// stop parks the dedicated queue at zero capacity and returns the full
// cluster share to the default queue.
func (m *LifecycleManager) stop(t *Tree) {
	t.set(QueueKey(m.queueName, "state"), "STOPPED")
	t.set(QueueKey(m.queueName, "capacity"), "0")
	t.set(QueueKey(m.queueName, "maximum-capacity"), "0")
	t.set(QueueKey(DefaultQueue, "capacity"), "100")
	t.set(QueueKey(DefaultQueue, "maximum-capacity"), "100")

	log.Logger().Info("dedicated queue stopped",
		zap.String("queue", m.queueName))
}

func (m *LifecycleManager) event(e LifecycleEvent) {
	if err := m.stateMachine.Event(context.Background(), e.String(), m.queueName); err != nil {
		log.Logger().Warn("queue state machine rejected event",
			zap.String("event", e.String()),
			zap.Error(err))
	}
}
