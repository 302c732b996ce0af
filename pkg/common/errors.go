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

package common

import "errors"

var (
	// ErrQueueNotFound returned when the selected daemon queue does not exist in the scheduler tree
	ErrQueueNotFound = errors.New("selected queue not found in capacity scheduler")
	// ErrQueueStopped returned when the selected daemon queue is in STOPPED state
	ErrQueueStopped = errors.New("selected queue is in STOPPED state")
	// ErrInfeasible returned when the requested queue share cannot structurally fit the daemons
	ErrInfeasible = errors.New("capacity available for daemons below minimum container size")
	// ErrInvalidConcurrency returned when an explicit concurrency override is below 1
	ErrInvalidConcurrency = errors.New("explicit concurrency must be at least 1")
	// ErrMissingProperty returned when a required input property is absent from both views
	ErrMissingProperty = errors.New("required property not present")
	// ErrInvalidClusterFacts returned when a cluster-wide numeric fact is zero or negative
	ErrInvalidClusterFacts = errors.New("cluster capacity facts must be positive")
)
