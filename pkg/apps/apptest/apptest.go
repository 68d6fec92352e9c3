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

// Package apptest runs a master against recording agent links for
// application tests.
package apptest

import (
	"context"
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/scheduler"
	"github.com/carverauto/sdwn/pkg/substrate"
	"github.com/carverauto/sdwn/pkg/wireless"
)

// Env is a master whose agents record the commands they receive.
type Env struct {
	Master   *wireless.Master
	Elements *substrate.Table

	t    *testing.T
	ctrl *gomock.Controller

	mu       sync.Mutex
	commands map[netip.Addr][]string
}

// New builds an Env and stops it when t ends.
func New(t *testing.T) *Env {
	t.Helper()

	e := &Env{
		Elements: substrate.NewTable(),
		t:        t,
		ctrl:     gomock.NewController(t),
		commands: make(map[netip.Addr][]string),
	}

	sched := scheduler.New(8, nil, logger.NewTestLogger())
	e.Master = wireless.NewMaster(wireless.NewClientRegistry(), wireless.NewPoolRegistry(), e.Elements, e.dial, sched,
		logger.NewTestLogger())

	t.Cleanup(func() {
		e.Master.Stop()
		_ = sched.Stop(context.Background())
	})

	return e
}

func (e *Env) record(addr netip.Addr, format string, args ...any) {
	e.mu.Lock()
	e.commands[addr] = append(e.commands[addr], fmt.Sprintf(format, args...))
	e.mu.Unlock()
}

func (e *Env) dial(_ context.Context, addr netip.Addr) (wireless.AgentLink, error) {
	link := wireless.NewMockAgentLink(e.ctrl)

	link.EXPECT().AddLvap(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *wireless.Client) error {
		e.record(addr, "add_vap %s", c.HwAddr())
		return nil
	}).AnyTimes()
	link.EXPECT().RemoveLvap(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *wireless.Client) error {
		e.record(addr, "remove_vap %s", c.HwAddr())
		return nil
	}).AnyTimes()
	link.EXPECT().SetSubscriptions(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, sub string) error {
		e.record(addr, "subscriptions %s", sub)
		return nil
	}).AnyTimes()
	link.EXPECT().SendProbeResponse(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	link.EXPECT().LvapTable(gomock.Any()).Return(nil, nil).AnyTimes()
	link.EXPECT().DeviceInfo(gomock.Any()).Return("model=sim "+addr.String(), nil).AnyTimes()
	link.EXPECT().Close().Return(nil).AnyTimes()

	return link, nil
}

// Agent registers addr in pools and brings it online.
func (e *Env) Agent(addr string, pools ...string) netip.Addr {
	e.t.Helper()

	a := netip.MustParseAddr(addr)
	require.NoError(e.t, e.Elements.Register(substrate.ForwardingElement{DatapathID: "dp-" + addr, Addr: a}))

	for _, pool := range pools {
		e.Master.Pools().AddPoolForAgent(a, pool)
	}

	e.Master.ReceivePing(a)
	require.True(e.t, e.Master.Agents().IsTracked(a))

	return a
}

func (e *Env) Network(pool string, ssids ...string) {
	for _, ssid := range ssids {
		e.Master.Pools().AddNetworkForPool(pool, ssid)
	}
}

// Client probes agent for ssid and reports the resulting client.
func (e *Env) Client(agent netip.Addr, mac, ssid string) *wireless.Client {
	e.t.Helper()

	hw := HW(e.t, mac)
	e.Master.ReceiveProbe(agent, hw, ssid)

	c, ok := e.Master.Clients().Get(hw)
	require.True(e.t, ok)

	return c
}

// Has reports whether agent received cmd.
func (e *Env) Has(agent netip.Addr, cmd string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Contains(e.commands[agent], cmd)
}

// Count reports how many commands with prefix agent received.
func (e *Env) Count(agent netip.Addr, prefix string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0

	for _, c := range e.commands[agent] {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}

	return n
}

func HW(t *testing.T, s string) wireless.HardwareAddr {
	t.Helper()

	hw, err := wireless.ParseHardwareAddr(s)
	require.NoError(t, err)

	return hw
}
