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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openquery/llap-advisor/pkg/advisor"
	"github.com/openquery/llap-advisor/pkg/common/configs"
	"github.com/openquery/llap-advisor/pkg/log"
	"github.com/openquery/llap-advisor/pkg/webservice"
)

func main() {
	configPath := flag.String("config", "", "advisor configuration file, defaults apply when empty")
	statePath := flag.String("state", "", "cluster state snapshot to run a cycle against")
	serve := flag.Bool("serve", false, "keep running and serve the REST endpoints after the cycle")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := zapcore.InfoLevel
	if *verbose {
		level = zapcore.DebugLevel
	}
	log.InitAndSetLevel(level)

	conf, err := configs.LoadAdvisorConfigFromFile(*configPath)
	if err != nil {
		log.Logger().Fatal("cannot load advisor configuration", zap.Error(err))
	}
	if *statePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -state <cluster-state-file> [-config <file>] [-serve]\n", os.Args[0])
		os.Exit(1)
	}
	state, err := configs.LoadClusterStateFromFile(*statePath)
	if err != nil {
		log.Logger().Fatal("cannot load cluster state", zap.Error(err))
	}

	a := advisor.NewAdvisor(conf)
	defer a.Close()

	bundle := state.Bundle()
	if err = a.RunCycle(bundle, state.NodeCount); err != nil {
		log.Logger().Fatal("advisory cycle failed, no recommendations written",
			zap.Error(err))
	}
	printRecommendations(bundle)

	if *serve {
		web := webservice.NewWebService(a, conf.ListenAddress)
		web.StartWebApp()
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
		s := <-signalChan
		log.Logger().Info("advisor shutting down", zap.Any("signal", s))
		if err = web.StopWebApp(); err != nil {
			log.Logger().Error("web server shutdown failed", zap.Error(err))
		}
	}
}

// printRecommendations dumps the pending edits of the cycle as JSON, keyed
// by config type, in the shape the management framework ingests.
func printRecommendations(bundle *configs.Bundle) {
	out := make(map[string]map[string]string)
	for _, configType := range []string{
		configs.CapacityScheduler,
		configs.HiveInteractiveEnv,
		configs.HiveInteractiveSite,
		configs.TezInteractiveSite,
		configs.HiveSite,
		configs.HiveEnv,
		configs.YarnSite,
	} {
		names := bundle.PendingNames(configType)
		if len(names) == 0 {
			continue
		}
		props := make(map[string]string, len(names))
		for _, name := range names {
			if v, ok := bundle.GetPending(configType, name); ok {
				props[name] = v
			}
		}
		out[configType] = props
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		log.Logger().Error("cannot encode recommendations", zap.Error(err))
	}
}
