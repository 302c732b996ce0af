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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openquery/llap-advisor/pkg/log"
)

const (
	// Namespace for all advisor metrics
	Namespace = "llap_advisor"
)

// Cycle outcome labels.
const (
	CycleComputed = "computed"
	CycleFallback = "fallback"
	CycleSkipped  = "skipped"
	CycleError    = "error"
)

var once sync.Once
var m *AdvisorMetrics

// AdvisorMetrics tracks advisory cycles and the last emitted plan.
type AdvisorMetrics struct {
	cycle           *prometheus.CounterVec
	queueTransition *prometheus.CounterVec
	plan            *prometheus.GaugeVec
}

// GetAdvisorMetrics returns the singleton, registering on first use.
func GetAdvisorMetrics() *AdvisorMetrics {
	once.Do(func() {
		m = initAdvisorMetrics()
	})
	return m
}

func initAdvisorMetrics() *AdvisorMetrics {
	am := &AdvisorMetrics{}

	am.cycle = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cycle_total",
			Help:      "Total number of advisory cycles. Outcome of the cycle includes `computed`, `fallback`, `skipped`, `error`",
		}, []string{"outcome"})

	am.queueTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "queue_transition_total",
			Help:      "Total number of dedicated queue lifecycle transitions by kind",
		}, []string{"transition"})

	am.plan = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "plan_value",
			Help:      "Values of the last emitted allocation plan by field",
		}, []string{"field"})

	for _, c := range []prometheus.Collector{am.cycle, am.queueTransition, am.plan} {
		if err := prometheus.Register(c); err != nil {
			log.Logger().Warn("failed to register metrics collector")
		}
	}
	return am
}

func (am *AdvisorMetrics) IncCycle(outcome string) {
	am.cycle.WithLabelValues(outcome).Inc()
}

func (am *AdvisorMetrics) IncQueueTransition(transition string) {
	am.queueTransition.WithLabelValues(transition).Inc()
}

func (am *AdvisorMetrics) SetPlanValue(field string, value int64) {
	am.plan.WithLabelValues(field).Set(float64(value))
}
