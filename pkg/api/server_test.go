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
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sdwn/pkg/apps/apptest"
	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/wireless"
)

func newTestServer(t *testing.T, options ...func(server *APIServer)) (*apptest.Env, *httptest.Server) {
	t.Helper()

	env := apptest.New(t)
	env.Network("pool-1", "sdwn")
	env.Network("pool-2", "guest")
	a1 := env.Agent("172.17.2.161", "pool-1")
	a2 := env.Agent("172.17.2.162", "pool-2")

	c1 := env.Client(a1, "00:00:00:00:00:01", "sdwn")
	c1.SetStatus(wireless.ClientStatus{RxBytes: 10, RxPackets: 1, TxBytes: 20, TxPackets: 2, Rssi: -48})
	env.Client(a2, "00:00:00:00:00:02", "guest")

	options = append([]func(server *APIServer){WithLogger(logger.NewTestLogger())}, options...)
	srv := httptest.NewServer(NewAPIServer(env.Master, options...).Handler())
	t.Cleanup(srv.Close)

	return env, srv
}

func getJSON(t *testing.T, url string, dst interface{}) int {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))

	return resp.StatusCode
}

func TestConnectedClients(t *testing.T) {
	_, srv := newTestServer(t)

	var clients []ClientView
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/sdwn/ap/clients/connected", &clients))
	require.Len(t, clients, 2)

	first := clients[0]
	assert.Equal(t, "00:00:00:00:00:01", first.MacAddress)
	assert.Equal(t, "0.0.0.0", first.IPAddress)
	assert.Equal(t, "02:00:00:00:00:01", first.LvapBssid)
	assert.Equal(t, "sdwn", first.LvapSsid)
	assert.Equal(t, "172.17.2.161", first.AP)
	require.NotNil(t, first.Rssi)
	assert.Equal(t, -48, *first.Rssi)
	assert.Equal(t, &TransView{RxBytes: 10, RxPackets: 1, TxBytes: 20, TxPackets: 2}, first.Trans)

	assert.Nil(t, clients[1].Rssi)
	assert.Nil(t, clients[1].Trans)
}

func TestPoolClientsAndAgents(t *testing.T) {
	_, srv := newTestServer(t)

	var clients []ClientView
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/sdwn/pools/pool-2/clients", &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "00:00:00:00:00:02", clients[0].MacAddress)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/sdwn/pools/none/clients", &clients))
	assert.Empty(t, clients)

	var agents []AgentView
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/sdwn/agents", &agents))
	require.Len(t, agents, 2)
	assert.Equal(t, "172.17.2.161", agents[0].Addr)
	assert.Equal(t, "dp-172.17.2.161", agents[0].DatapathID)
	assert.Equal(t, []string{"pool-1"}, agents[0].Pools)
	assert.Equal(t, 1, agents[0].Lvaps)
	assert.Equal(t, "model=sim 172.17.2.161", agents[0].DeviceInfo)
}

func TestSubscriptions(t *testing.T) {
	env, srv := newTestServer(t)

	env.Master.RegisterSubscription("pool-1", wireless.Subscription{
		Receiver:  "mobility",
		Category:  wireless.FromAgent,
		EventType: wireless.EventMobilitySignal,
		Filter:    "00:00:00:00:00:01",
	}, func(wireless.EventType, string) {})
	env.Master.RegisterSubscription("pool-1", wireless.Subscription{
		Receiver:  "eventexport",
		Category:  wireless.FromApplication,
		EventType: wireless.EventNewClient,
	}, func(wireless.EventType, string) {})

	var subs []SubscriptionView
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/sdwn/subscriptions", &subs))
	require.Len(t, subs, 2)

	assert.Equal(t, SubscriptionView{
		Receiver:  "mobility",
		Category:  "APAGENT",
		EventType: "MOBILITY_SIGNAL",
		Filter:    "00:00:00:00:00:01",
	}, subs[0])
	assert.Equal(t, "APPLICATION", subs[1].Category)
	assert.Empty(t, subs[1].Filter)
}

func TestGetClient(t *testing.T) {
	_, srv := newTestServer(t)

	var client ClientView
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/sdwn/clients/00:00:00:00:00:02", &client))
	assert.Equal(t, "guest", client.LvapSsid)

	var errResp ErrorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/sdwn/clients/00:00:00:00:00:09", &errResp))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/sdwn/clients/bogus", &errResp))
	assert.Equal(t, http.StatusBadRequest, errResp.Status)
}

func TestRunAndStop(t *testing.T) {
	env := apptest.New(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := NewAPIServer(env.Master, WithListenAddr(addr), WithMaxConns(4))

	done := make(chan error, 1)

	go func() { done <- s.Run(context.Background()) }()

	var agents []AgentView

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/sdwn/agents") //nolint:noctx // test helper
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return json.NewDecoder(resp.Body).Decode(&agents) == nil
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, <-done)
}
