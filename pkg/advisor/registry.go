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
	"github.com/openquery/llap-advisor/pkg/common/configs"
)

// Cycle carries the per invocation state handed to every strategy: the
// property bundle, the node count from the host inventory, and the slots the
// strategies fill for the embedding service to publish.
type Cycle struct {
	ID        string
	Bundle    *configs.Bundle
	NodeCount int64

	// filled during the cycle
	Plan        *SizingResult
	Validations []ValidationItem
}

// ServiceStrategy is one service's recommendation and validation behavior.
// Strategies are independent and registered into an ordered collection, they
// do not layer through inheritance.
type ServiceStrategy interface {
	Name() string
	// Recommend computes and writes this service's recommended values into
	// the cycle's bundle. A returned error is a contract violation: the
	// cycle aborts with no further strategies run.
	Recommend(c *Cycle) error
	// Validate appends findings about persisted or recommended values. It
	// performs no writes and never fails.
	Validate(c *Cycle) []ValidationItem
}

// Registry holds the strategies in registration order.
type Registry struct {
	strategies []ServiceStrategy
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(s ServiceStrategy) {
	r.strategies = append(r.strategies, s)
}

func (r *Registry) Strategies() []ServiceStrategy {
	return r.strategies
}
