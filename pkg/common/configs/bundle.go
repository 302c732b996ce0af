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
	"fmt"
	"sort"
	"strconv"
)

// Config types handled by the advisor. They mirror the site files the
// surrounding management framework persists.
const (
	CapacityScheduler   = "capacity-scheduler"
	HiveInteractiveEnv  = "hive-interactive-env"
	HiveInteractiveSite = "hive-interactive-site"
	TezInteractiveSite  = "tez-interactive-site"
	HiveSite            = "hive-site"
	HiveEnv             = "hive-env"
	YarnSite            = "yarn-site"
)

// Bundle is the advisory cycle's view on the property store. It layers the
// edits made earlier in the current cycle (pending) over the last persisted
// state (current): pending always wins on read. All recommendation writes go
// into the pending view, the store itself is owned by the caller.
type Bundle struct {
	current    map[string]map[string]string
	pending    map[string]map[string]string
	attributes map[string]map[string]map[string]string
	changed    map[string]map[string]bool
}

func NewBundle() *Bundle {
	return &Bundle{
		current:    make(map[string]map[string]string),
		pending:    make(map[string]map[string]string),
		attributes: make(map[string]map[string]map[string]string),
		changed:    make(map[string]map[string]bool),
	}
}

// SetCurrent seeds the persisted view, used by the framework before a cycle.
func (b *Bundle) SetCurrent(configType, name, value string) {
	if b.current[configType] == nil {
		b.current[configType] = make(map[string]string)
	}
	b.current[configType][name] = value
}

// Put writes a recommended value into the pending view.
func (b *Bundle) Put(configType, name, value string) {
	if b.pending[configType] == nil {
		b.pending[configType] = make(map[string]string)
	}
	b.pending[configType][name] = value
}

func (b *Bundle) PutInt64(configType, name string, value int64) {
	b.Put(configType, name, strconv.FormatInt(value, 10))
}

// PutAttribute records a UI attribute (bounds, visibility, entry list) for a
// property without touching its value.
func (b *Bundle) PutAttribute(configType, name, attribute, value string) {
	if b.attributes[configType] == nil {
		b.attributes[configType] = make(map[string]map[string]string)
	}
	if b.attributes[configType][name] == nil {
		b.attributes[configType][name] = make(map[string]string)
	}
	b.attributes[configType][name][attribute] = value
}

// Get resolves a property, preferring a pending edit over persisted state.
func (b *Bundle) Get(configType, name string) (string, bool) {
	if props, ok := b.pending[configType]; ok {
		if v, ok := props[name]; ok {
			return v, true
		}
	}
	if props, ok := b.current[configType]; ok {
		if v, ok := props[name]; ok {
			return v, true
		}
	}
	return "", false
}

// GetPending resolves a property from the pending view only.
func (b *Bundle) GetPending(configType, name string) (string, bool) {
	props, ok := b.pending[configType]
	if !ok {
		return "", false
	}
	v, ok := props[name]
	return v, ok
}

// GetCurrent resolves a property from the persisted view only.
func (b *Bundle) GetCurrent(configType, name string) (string, bool) {
	props, ok := b.current[configType]
	if !ok {
		return "", false
	}
	v, ok := props[name]
	return v, ok
}

func (b *Bundle) GetAttribute(configType, name, attribute string) (string, bool) {
	if attrs, ok := b.attributes[configType]; ok {
		if a, ok := attrs[name]; ok {
			v, ok := a[attribute]
			return v, ok
		}
	}
	return "", false
}

// GetInt64 resolves a property and parses it as a base 10 integer. Float
// formatted values are accepted and truncated, the framework persists some
// numeric properties with a trailing fraction.
func (b *Bundle) GetInt64(configType, name string) (int64, error) {
	v, ok := b.Get(configType, name)
	if !ok {
		return 0, fmt.Errorf("%s/%s: property not present", configType, name)
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s/%s: cannot parse %q: %w", configType, name, v, err)
	}
	return int64(f), nil
}

// MarkChanged records that a property changed since the previous cycle. The
// diff is computed by the surrounding framework, never derived here.
func (b *Bundle) MarkChanged(configType, name string) {
	if b.changed[configType] == nil {
		b.changed[configType] = make(map[string]bool)
	}
	b.changed[configType][name] = true
}

// ChangedFields returns the changed property names for one config type.
func (b *Bundle) ChangedFields(configType string) map[string]bool {
	return b.changed[configType]
}

// PendingNames lists the properties written in this cycle, sorted for
// deterministic iteration.
func (b *Bundle) PendingNames(configType string) []string {
	names := make([]string, 0, len(b.pending[configType]))
	for name := range b.pending[configType] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// View returns the merged read view for a config type, pending edits layered
// over persisted values. The returned map is a copy.
func (b *Bundle) View(configType string) map[string]string {
	merged := make(map[string]string, len(b.current[configType])+len(b.pending[configType]))
	for name, v := range b.current[configType] {
		merged[name] = v
	}
	for name, v := range b.pending[configType] {
		merged[name] = v
	}
	return merged
}
