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

package configs

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestPendingWinsOverCurrent(t *testing.T) {
	b := NewBundle()
	b.SetCurrent(HiveInteractiveEnv, "llap_queue_capacity", "20")
	v, ok := b.Get(HiveInteractiveEnv, "llap_queue_capacity")
	assert.Assert(t, ok)
	assert.Equal(t, v, "20")

	b.Put(HiveInteractiveEnv, "llap_queue_capacity", "35")
	v, ok = b.Get(HiveInteractiveEnv, "llap_queue_capacity")
	assert.Assert(t, ok)
	assert.Equal(t, v, "35", "pending edit must win over persisted state")

	// the views stay distinct
	v, ok = b.GetCurrent(HiveInteractiveEnv, "llap_queue_capacity")
	assert.Assert(t, ok)
	assert.Equal(t, v, "20")
	v, ok = b.GetPending(HiveInteractiveEnv, "llap_queue_capacity")
	assert.Assert(t, ok)
	assert.Equal(t, v, "35")
}

func TestGetMissing(t *testing.T) {
	b := NewBundle()
	_, ok := b.Get(HiveSite, "hive.tez.container.size")
	assert.Assert(t, !ok)
	_, ok = b.GetPending(HiveSite, "hive.tez.container.size")
	assert.Assert(t, !ok)
	_, err := b.GetInt64(HiveSite, "hive.tez.container.size")
	assert.ErrorContains(t, err, "not present")
}

func TestGetInt64(t *testing.T) {
	b := NewBundle()
	b.SetCurrent(YarnSite, "yarn.nodemanager.resource.memory-mb", "20480")
	v, err := b.GetInt64(YarnSite, "yarn.nodemanager.resource.memory-mb")
	assert.NilError(t, err)
	assert.Equal(t, v, int64(20480))

	// values persisted with a trailing fraction are truncated
	b.SetCurrent(HiveInteractiveEnv, "llap_queue_capacity", "30.000000")
	v, err = b.GetInt64(HiveInteractiveEnv, "llap_queue_capacity")
	assert.NilError(t, err)
	assert.Equal(t, v, int64(30))

	b.SetCurrent(HiveInteractiveEnv, "broken", "not-a-number")
	_, err = b.GetInt64(HiveInteractiveEnv, "broken")
	assert.ErrorContains(t, err, "cannot parse")
}

func TestAttributes(t *testing.T) {
	b := NewBundle()
	b.PutAttribute(HiveInteractiveEnv, "llap_queue_capacity", "minimum", "21")
	b.PutAttribute(HiveInteractiveEnv, "llap_queue_capacity", "maximum", "100")

	v, ok := b.GetAttribute(HiveInteractiveEnv, "llap_queue_capacity", "minimum")
	assert.Assert(t, ok)
	assert.Equal(t, v, "21")
	v, ok = b.GetAttribute(HiveInteractiveEnv, "llap_queue_capacity", "maximum")
	assert.Assert(t, ok)
	assert.Equal(t, v, "100")
	_, ok = b.GetAttribute(HiveInteractiveEnv, "llap_queue_capacity", "visible")
	assert.Assert(t, !ok)

	// attributes never leak into the value views
	_, ok = b.Get(HiveInteractiveEnv, "llap_queue_capacity")
	assert.Assert(t, !ok)
}

func TestChangedFields(t *testing.T) {
	b := NewBundle()
	assert.Assert(t, !b.ChangedFields(HiveInteractiveEnv)["enable_hive_interactive"])

	b.MarkChanged(HiveInteractiveEnv, "enable_hive_interactive")
	changed := b.ChangedFields(HiveInteractiveEnv)
	assert.Assert(t, changed["enable_hive_interactive"])
	assert.Assert(t, !changed["llap_queue_capacity"])
}

func TestPendingNamesSorted(t *testing.T) {
	b := NewBundle()
	b.Put(HiveInteractiveSite, "hive.llap.io.memory.size", "0")
	b.Put(HiveInteractiveSite, "hive.llap.daemon.num.executors", "5")
	b.PutInt64(HiveInteractiveSite, "hive.llap.io.threadpool.size", 5)

	assert.DeepEqual(t, b.PendingNames(HiveInteractiveSite), []string{
		"hive.llap.daemon.num.executors",
		"hive.llap.io.memory.size",
		"hive.llap.io.threadpool.size",
	})
	assert.DeepEqual(t, b.PendingNames(HiveEnv), []string{})
}

func TestViewIsMergedCopy(t *testing.T) {
	b := NewBundle()
	b.SetCurrent(HiveInteractiveSite, "hive.llap.daemon.queue.name", "default")
	b.SetCurrent(HiveInteractiveSite, "hive.server2.enable.doAs", "false")
	b.Put(HiveInteractiveSite, "hive.llap.daemon.queue.name", "llap")

	view := b.View(HiveInteractiveSite)
	assert.DeepEqual(t, view, map[string]string{
		"hive.llap.daemon.queue.name": "llap",
		"hive.server2.enable.doAs":    "false",
	})

	// mutating the copy must not write through
	view["hive.server2.enable.doAs"] = "true"
	v, _ := b.Get(HiveInteractiveSite, "hive.server2.enable.doAs")
	assert.Equal(t, v, "false")
}
