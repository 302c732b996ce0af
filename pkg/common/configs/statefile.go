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
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClusterState is the on disk snapshot of a cluster the advisor runs a
// cycle against: the persisted site configurations, the fields the operator
// changed since the previous cycle, and the node count. In a live
// deployment the management framework supplies the same data in memory.
type ClusterState struct {
	NodeCount      int64                        `yaml:"nodeCount"`
	Configurations map[string]map[string]string `yaml:"configurations"`
	ChangedFields  map[string][]string          `yaml:"changedFields"`
}

// LoadClusterState parses a cluster state snapshot. Unknown fields are
// rejected so typos in hand written snapshots surface immediately.
func LoadClusterState(content []byte) (*ClusterState, error) {
	state := &ClusterState{}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(state); err != nil {
		return nil, fmt.Errorf("cannot parse cluster state: %w", err)
	}
	return state, nil
}

func LoadClusterStateFromFile(path string) (*ClusterState, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadClusterState(content)
}

// Bundle seeds a fresh property bundle from the snapshot. Persisted values
// land in the current view and the changed markers are carried over, the
// pending view starts empty.
func (state *ClusterState) Bundle() *Bundle {
	b := NewBundle()
	for configType, props := range state.Configurations {
		for name, value := range props {
			b.SetCurrent(configType, name, value)
		}
	}
	for configType, names := range state.ChangedFields {
		for _, name := range names {
			b.MarkChanged(configType, name)
		}
	}
	return b
}
