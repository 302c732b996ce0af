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
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/openquery/llap-advisor/pkg/common/configs"
)

// PropertyPrefix is the capacity scheduler property namespace.
const PropertyPrefix = "yarn.scheduler.capacity."

// RootQueue is the scheduler root, DefaultQueue the queue every cluster has.
const (
	RootQueue    = "root"
	DefaultQueue = "default"
)

// WireShape is how the scheduler configuration was supplied: either one
// property holding newline delimited key=value lines, or a flat mapping from
// fully qualified property name to value. Updates are re-emitted in the same
// shape they arrived in.
type WireShape int

const (
	ShapeBlob WireShape = iota
	ShapeMapped
)

func (ws WireShape) String() string {
	return [...]string{"blob", "mapped"}[ws]
}

// Tree is the scheduler queue configuration at one level, parsed from either
// wire shape. Properties not managed by the advisor pass through untouched.
type Tree struct {
	shape WireShape
	props map[string]string
	order []string
}

// Load reads the capacity scheduler configuration from the bundle, detecting
// the wire shape it was supplied in.
func Load(b *configs.Bundle) (*Tree, error) {
	if blob, ok := b.Get(configs.CapacityScheduler, configs.CapacityScheduler); ok && blob != "" && blob != "null" {
		return parseBlob(blob), nil
	}
	view := b.View(configs.CapacityScheduler)
	// the single blob key may be present but empty, ignore it
	delete(view, configs.CapacityScheduler)
	if len(view) == 0 {
		return nil, fmt.Errorf("no capacity scheduler properties supplied")
	}
	return fromMap(view), nil
}

func parseBlob(blob string) *Tree {
	t := &Tree{shape: ShapeBlob, props: make(map[string]string)}
	for _, line := range strings.Split(blob, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		t.set(key, value)
	}
	return t
}

func fromMap(props map[string]string) *Tree {
	t := &Tree{shape: ShapeMapped, props: make(map[string]string)}
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		t.set(key, props[key])
	}
	return t
}

func (t *Tree) Shape() WireShape {
	return t.shape
}

func (t *Tree) Get(key string) (string, bool) {
	v, ok := t.props[key]
	return v, ok
}

func (t *Tree) set(key, value string) {
	if _, ok := t.props[key]; !ok {
		t.order = append(t.order, key)
	}
	t.props[key] = value
}

// QueueKey builds the fully qualified property name for a root level queue
// attribute, e.g. QueueKey("default", "capacity").
func QueueKey(queue, attribute string) string {
	return PropertyPrefix + RootQueue + "." + queue + "." + attribute
}

// LeafQueues walks the queue hierarchy from root and returns the sorted leaf
// queue paths relative to root.
func (t *Tree) LeafQueues() []string {
	var leaves []string
	var walk func(path string)
	walk = func(path string) {
		children, ok := t.props[PropertyPrefix+path+".queues"]
		if !ok || strings.TrimSpace(children) == "" {
			leaves = append(leaves, strings.TrimPrefix(path, RootQueue+"."))
			return
		}
		for _, child := range strings.Split(children, ",") {
			walk(path + "." + strings.TrimSpace(child))
		}
	}
	walk(RootQueue)
	sort.Strings(leaves)
	return leaves
}

// QueueCapacity returns a queue's capacity percent. The framework persists
// capacities with a fractional part, they are truncated to whole percents.
func (t *Tree) QueueCapacity(queue string) (int64, bool) {
	v, ok := t.props[QueueKey(queue, "capacity")]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// QueueMaxCapacity returns a queue's maximum capacity percent.
func (t *Tree) QueueMaxCapacity(queue string) (int64, bool) {
	v, ok := t.props[QueueKey(queue, "maximum-capacity")]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// QueueState returns the queue state, empty when not present.
func (t *Tree) QueueState(queue string) string {
	return t.props[QueueKey(queue, "state")]
}

// CapacitySum adds up the capacity of all root level queues.
func (t *Tree) CapacitySum() int64 {
	var sum int64
	for _, leaf := range t.LeafQueues() {
		if !strings.Contains(leaf, ".") {
			if cap, ok := t.QueueCapacity(leaf); ok {
				sum += cap
			}
		}
	}
	return sum
}

// Write emits the tree back into the bundle in the shape it was supplied in.
// The bundle receives the complete tree in one put per shape, so an observer
// of the store never sees a partially rewritten tree.
func (t *Tree) Write(b *configs.Bundle) {
	if t.shape == ShapeBlob {
		lines := make([]string, 0, len(t.order))
		for _, key := range t.order {
			lines = append(lines, key+"="+t.props[key])
		}
		b.Put(configs.CapacityScheduler, configs.CapacityScheduler, strings.Join(lines, "\n"))
		return
	}
	for _, key := range t.order {
		b.Put(configs.CapacityScheduler, key, t.props[key])
	}
}
