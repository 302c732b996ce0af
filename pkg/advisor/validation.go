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

// Severity of a validation finding.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarn
)

func (s Severity) String() string {
	return [...]string{"ERROR", "WARN"}[s]
}

// ValidationItem is one finding of a validator: the offending config name,
// a severity and a human readable message. Validators are read only
// consumers of already recommended or persisted values, they never raise
// and never derive numbers.
type ValidationItem struct {
	ConfigName string   `json:"configName"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
}

func errorItem(configName, message string) ValidationItem {
	return ValidationItem{ConfigName: configName, Severity: SeverityError, Message: message}
}

func warnItem(configName, message string) ValidationItem {
	return ValidationItem{ConfigName: configName, Severity: SeverityWarn, Message: message}
}
