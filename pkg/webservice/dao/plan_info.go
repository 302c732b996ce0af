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

package dao

type PlanDAOInfo struct {
	CycleID             string `json:"cycleId,omitempty"`
	TezAmContainerMb    int64  `json:"tezAmContainerMb"`
	Concurrency         int64  `json:"concurrency"`
	NumNodes            int64  `json:"numNodes"`
	ContainerMb         int64  `json:"containerMb"`
	ExecutorsPerNode    int64  `json:"executorsPerNode"`
	CacheMbPerNode      int64  `json:"cacheMbPerNode"`
	HeapMb              int64  `json:"heapMb"`
	SliderAmContainerMb int64  `json:"sliderAmContainerMb"`
	IOEnabled           bool   `json:"ioEnabled"` // no omitempty, false is a real recommendation
	Fallback            bool   `json:"fallback"`  // no omitempty, a false value shows the plan was fully computed
}

type QueueDAOInfo struct {
	QueueName              string `json:"queuename"` // no omitempty, queue name should not be empty
	CapacityPercent        int64  `json:"capacityPercent"`
	MaximumCapacityPercent int64  `json:"maximumCapacityPercent"`
	State                  string `json:"state,omitempty"`
}

type ValidationDAOInfo struct {
	ConfigName string `json:"configName"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
}
