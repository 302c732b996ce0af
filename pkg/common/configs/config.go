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
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/openquery/llap-advisor/pkg/log"
)

// AdvisorConfig is the advisor's own service configuration.
// - the name of the dedicated leaf queue managed by the advisor
// - the service user set as submit and admin ACL on that queue
// - the address the REST endpoint binds to
// - whether cycle tracing is reported
type AdvisorConfig struct {
	QueueName     string `yaml:"queueName"`
	ServiceUser   string `yaml:"serviceUser"`
	ListenAddress string `yaml:"listenAddress"`
	Tracing       bool   `yaml:"tracing"`
}

// DefaultAdvisorConfig is used when no configuration file is provided.
var DefaultAdvisorConfig = `
queueName: llap
serviceUser: hive
listenAddress: ":9080"
`

// LoadAdvisorConfig parses and validates an advisor configuration.
// Unknown fields are rejected, empty content yields the defaults.
func LoadAdvisorConfig(content []byte) (*AdvisorConfig, error) {
	conf := &AdvisorConfig{}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	err := decoder.Decode(conf)
	if err != nil && !errors.Is(err, io.EOF) {
		log.Logger().Error("failed to parse advisor configuration",
			zap.Error(err))
		return nil, err
	}
	if err = validateAdvisorConfig(conf); err != nil {
		log.Logger().Error("advisor configuration validation failed",
			zap.Error(err))
		return nil, err
	}
	return conf, nil
}

// LoadAdvisorConfigFromFile reads the config file, falling back to the
// documented defaults when no path is given.
func LoadAdvisorConfigFromFile(path string) (*AdvisorConfig, error) {
	if path == "" {
		return LoadAdvisorConfig([]byte(DefaultAdvisorConfig))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadAdvisorConfig(content)
}

func validateAdvisorConfig(conf *AdvisorConfig) error {
	if conf.QueueName == "" {
		return fmt.Errorf("queueName must not be empty")
	}
	if conf.QueueName == "default" {
		return fmt.Errorf("queueName must differ from the default queue")
	}
	if conf.ServiceUser == "" {
		conf.ServiceUser = "*"
	}
	return nil
}
