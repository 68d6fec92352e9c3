/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/sdwn/pkg/wireless"
)

const (
	deviceInfoTimeout = 2 * time.Second
	deviceInfoFanOut  = 8
)

// getConnectedClients lists every client the master knows.
// GET /sdwn/ap/clients/connected
func (s *APIServer) getConnectedClients(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.connectedClientViews())
}

// getAgents lists tracked agents with the device info each reports. An agent
// that does not answer in time is listed without it.
// GET /sdwn/agents
func (s *APIServer) getAgents(w http.ResponseWriter, r *http.Request) {
	agents := s.master.Agents().Agents()
	infos := make([]string, len(agents))

	ctx, cancel := context.WithTimeout(r.Context(), deviceInfoTimeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(deviceInfoFanOut)

	for i, a := range agents {
		g.Go(func() error {
			info, err := a.DeviceInfo(ctx)
			if err == nil {
				infos[i] = info
			}

			return nil
		})
	}

	_ = g.Wait()

	views := make([]AgentView, 0, len(agents))
	for i, a := range agents {
		views = append(views, toAgentView(a, s.master.Pools().PoolsForAgent(a.Addr()), infos[i]))
	}

	s.writeJSON(w, http.StatusOK, views)
}

// GET /sdwn/subscriptions
func (s *APIServer) getSubscriptions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, toSubscriptionViews(s.master.Hub().Subscriptions()))
}

// GET /sdwn/pools/{pool}/clients
func (s *APIServer) getPoolClients(w http.ResponseWriter, r *http.Request) {
	pool := mux.Vars(r)["pool"]

	clients := s.master.ClientsInPool(pool)
	sortClients(clients)

	s.writeJSON(w, http.StatusOK, toClientViews(clients))
}

// GET /sdwn/clients/{mac}
func (s *APIServer) getClient(w http.ResponseWriter, r *http.Request) {
	hw, err := wireless.ParseHardwareAddr(mux.Vars(r)["mac"])
	if err != nil {
		writeError(w, "invalid client address", http.StatusBadRequest)

		return
	}

	client, ok := s.master.Clients().Get(hw)
	if !ok {
		writeError(w, "client not found", http.StatusNotFound)

		return
	}

	s.writeJSON(w, http.StatusOK, toClientView(client))
}

func sortClients(clients []*wireless.Client) {
	slices.SortFunc(clients, func(a, b *wireless.Client) int {
		return strings.Compare(a.HwAddr().String(), b.HwAddr().String())
	})
}
