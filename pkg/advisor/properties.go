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

// Properties read and written by the advisor. The names are the site file
// keys the surrounding management framework persists.
const (
	// hive-interactive-site
	PropDaemonQueueName  = "hive.llap.daemon.queue.name"
	PropConcurrency      = "hive.server2.tez.sessions.per.default.queue"
	PropTezDefaultQueues = "hive.server2.tez.default.queues"
	PropDaemonContainer  = "hive.llap.daemon.yarn.container.mb"
	PropNumExecutors     = "hive.llap.daemon.num.executors"
	PropIOThreadpool     = "hive.llap.io.threadpool.size"
	PropIOMemory         = "hive.llap.io.memory.size"
	PropIOEnabled        = "hive.llap.io.enabled"
	PropEnableDoAs       = "hive.server2.enable.doAs"

	// hive-interactive-env
	PropEnableInteractive = "enable_hive_interactive"
	PropQueueCapacity     = "llap_queue_capacity"
	PropNumNodes          = "num_llap_nodes"
	PropHeapSize          = "llap_heap_size"
	PropSliderAmContainer = "slider_am_container_size"

	// tez-interactive-site
	PropTezAmMemory = "tez.am.resource.memory.mb"

	// yarn-site
	PropNodeMemory   = "yarn.nodemanager.resource.memory-mb"
	PropMinContainer = "yarn.scheduler.minimum-allocation-mb"
	PropNodeVcores   = "yarn.nodemanager.resource.cpu-vcores"

	// hive-site
	PropTezContainerSize = "hive.tez.container.size"

	// hive-env
	PropHiveUser = "hive_user"
)

// Display-only duplicates shown as labels on the service panel. They must
// always carry the same value as their primary counterpart.
const copySuffix = "_copy"

// Attribute names understood by the property store UI layer.
const (
	AttrMinimum = "minimum"
	AttrMaximum = "maximum"
	AttrVisible = "visible"
	AttrEntries = "entries"
)
