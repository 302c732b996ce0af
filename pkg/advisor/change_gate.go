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

import "github.com/openquery/llap-advisor/pkg/common/configs"

// ShouldRecompute reports whether any of the tracked field names appears in
// the changed field set: any-of semantics, an empty intersection means the
// cycle is a no-op.
func ShouldRecompute(tracked []string, changed map[string]bool) bool {
	for _, name := range tracked {
		if changed[name] {
			return true
		}
	}
	return false
}

// ChangeGate answers whether a recomputation cycle needs to run at all and
// whether individual fields were edited by the operator this cycle. The
// changed field set is computed by the surrounding framework and carried on
// the bundle, the gate never derives diffs itself.
type ChangeGate struct {
	bundle *configs.Bundle
}

func NewChangeGate(bundle *configs.Bundle) *ChangeGate {
	return &ChangeGate{bundle: bundle}
}

// AnyChanged reports whether any of the given properties of a config type
// changed since the previous cycle.
func (g *ChangeGate) AnyChanged(configType string, names ...string) bool {
	return ShouldRecompute(names, g.bundle.ChangedFields(configType))
}

// IsOverridden reports whether a single field is an explicit operator edit
// this cycle. Overridden fields are read through unchanged, not recomputed.
func (g *ChangeGate) IsOverridden(configType, name string) bool {
	return g.AnyChanged(configType, name)
}
