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

package webservice

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/openquery/llap-advisor/pkg/advisor"
	"github.com/openquery/llap-advisor/pkg/log"
	"github.com/openquery/llap-advisor/pkg/webservice/dao"
)

// WebService serves the advisor's read only REST endpoints.
type WebService struct {
	httpServer *http.Server
	advisor    *advisor.Advisor
}

func NewWebService(a *advisor.Advisor, addr string) *WebService {
	ws := &WebService{advisor: a}
	router := httprouter.New()
	for _, route := range webRoutes {
		router.Handle(route.Method, route.Pattern, loggingHandler(ws.handlerFor(route), route.Name))
	}
	ws.httpServer = &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: time.Second}
	return ws
}

// StartWebApp starts the web server in the background.
func (ws *WebService) StartWebApp() {
	log.Logger().Info("advisor web server starting",
		zap.String("address", ws.httpServer.Addr))
	go func() {
		err := ws.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Logger().Error("advisor web server failed",
				zap.Error(err))
		}
	}()
}

// StopWebApp shuts the web server down, allowing in flight requests to end.
func (ws *WebService) StopWebApp() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ws.httpServer.Shutdown(ctx)
}

func loggingHandler(inner httprouter.Handle, name string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		inner(w, r, ps)
		log.Logger().Debug("handled request",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.String("name", name),
			zap.Duration("duration", time.Since(start)))
	}
}

func writeHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeHeaders(w)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (ws *WebService) getPlan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	plan, ok := ws.advisor.LastPlan()
	if !ok {
		http.Error(w, "no plan computed yet", http.StatusNotFound)
		return
	}
	writeJSON(w, &dao.PlanDAOInfo{
		CycleID:             ws.advisor.LastCycleID(),
		TezAmContainerMb:    plan.TezAmContainerMb,
		Concurrency:         plan.Concurrency,
		NumNodes:            plan.NumNodes,
		ContainerMb:         plan.ContainerMb,
		ExecutorsPerNode:    plan.ExecutorsPerNode,
		CacheMbPerNode:      plan.CacheMbPerNode,
		HeapMb:              plan.HeapMb,
		SliderAmContainerMb: plan.SliderAmContainerMb,
		IOEnabled:           plan.IOEnabled,
		Fallback:            plan.Fallback,
	})
}

func (ws *WebService) getQueues(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	queues := ws.advisor.QueueSnapshot()
	infos := make([]dao.QueueDAOInfo, 0, len(queues))
	for _, q := range queues {
		infos = append(infos, dao.QueueDAOInfo{
			QueueName:              q.Name,
			CapacityPercent:        q.CapacityPercent,
			MaximumCapacityPercent: q.MaximumCapacityPercent,
			State:                  q.State,
		})
	}
	writeJSON(w, infos)
}

func (ws *WebService) getValidations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	validations := ws.advisor.LastValidations()
	infos := make([]dao.ValidationDAOInfo, 0, len(validations))
	for _, v := range validations {
		infos = append(infos, dao.ValidationDAOInfo{
			ConfigName: v.ConfigName,
			Severity:   v.Severity.String(),
			Message:    v.Message,
		})
	}
	writeJSON(w, infos)
}
