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

package wireless

import (
	"context"
	"errors"
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
)

var errDialRefused = errors.New("connection refused")

// commandLog records the commands a fake agent received.
type commandLog struct {
	mu   sync.Mutex
	cmds []string
}

func (l *commandLog) add(format string, args ...any) {
	l.mu.Lock()
	l.cmds = append(l.cmds, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *commandLog) has(cmd string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Contains(l.cmds, cmd)
}

func (l *commandLog) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0

	for _, c := range l.cmds {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}

	return n
}

type harness struct {
	t        *testing.T
	ctrl     *gomock.Controller
	sched    *scheduler.Scheduler
	elements *substrate.Table
	master   *Master

	mu      sync.Mutex
	logs    map[netip.Addr]*commandLog
	remote  map[netip.Addr][]*Client
	refused map[netip.Addr]bool
	dials   map[netip.Addr]int
	// removeGate, when set, holds every remove_vap until it is closed.
	removeGate chan struct{}
}

func newHarness(t *testing.T, clock scheduler.Clock, opts ...MasterOption) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)

	h := &harness{
		t:        t,
		ctrl:     ctrl,
		sched:    scheduler.New(16, clock, logger.NewTestLogger()),
		elements: substrate.NewTable(),
		logs:     make(map[netip.Addr]*commandLog),
		remote:   make(map[netip.Addr][]*Client),
		refused:  make(map[netip.Addr]bool),
		dials:    make(map[netip.Addr]int),
	}

	h.master = NewMaster(NewClientRegistry(), NewPoolRegistry(), h.elements, h.dial, h.sched, logger.NewTestLogger(), opts...)

	t.Cleanup(func() {
		h.master.Stop()
		_ = h.sched.Stop(context.Background())
	})

	return h
}

func (h *harness) dial(_ context.Context, addr netip.Addr) (AgentLink, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refused[addr] {
		return nil, errDialRefused
	}

	h.dials[addr]++
	gate := h.removeGate

	log := &commandLog{}
	h.logs[addr] = log

	link := NewMockAgentLink(h.ctrl)
	link.EXPECT().AddLvap(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *Client) error {
		log.add("add_vap %s", c.HwAddr())
		return nil
	}).AnyTimes()
	link.EXPECT().UpdateLvap(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *Client) error {
		log.add("set_vap %s", c.HwAddr())
		return nil
	}).AnyTimes()
	link.EXPECT().RemoveLvap(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *Client) error {
		if gate != nil {
			<-gate
		}

		log.add("remove_vap %s", c.HwAddr())
		return nil
	}).AnyTimes()
	link.EXPECT().SendProbeResponse(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, client, bssid HardwareAddr, ssids []string) error {
			log.add("send_probe_response %s %s %s", client, bssid, strings.Join(ssids, " "))
			return nil
		}).AnyTimes()
	link.EXPECT().SetSubscriptions(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, sub string) error {
		log.add("subscriptions %s", sub)
		return nil
	}).AnyTimes()
	link.EXPECT().SwitchChannel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, client HardwareAddr, mode, channel, count string) error {
			log.add("channel_switch %s %s %s %s", client, mode, channel, count)
			return nil
		}).AnyTimes()
	link.EXPECT().LvapTable(gomock.Any()).Return(h.remote[addr], nil).AnyTimes()
	link.EXPECT().ClientStats(gomock.Any()).Return(map[HardwareAddr]map[string]string{}, nil).AnyTimes()
	link.EXPECT().DeviceInfo(gomock.Any()).Return("", nil).AnyTimes()
	link.EXPECT().Close().DoAndReturn(func() error {
		log.add("close")
		return nil
	}).AnyTimes()

	return link, nil
}

// element registers a forwarding element for addr.
func (h *harness) element(addr string) netip.Addr {
	h.t.Helper()

	a := netip.MustParseAddr(addr)
	require.NoError(h.t, h.elements.Register(substrate.ForwardingElement{DatapathID: "dp-" + addr, Addr: a}))

	return a
}

// agent registers an element, pool membership and pings the agent in.
func (h *harness) agent(addr string, pools ...string) netip.Addr {
	h.t.Helper()

	a := h.element(addr)
	for _, pool := range pools {
		h.master.Pools().AddPoolForAgent(a, pool)
	}

	h.master.ReceivePing(a)
	require.True(h.t, h.master.Agents().IsTracked(a))

	return a
}

func (h *harness) network(pool string, ssids ...string) {
	for _, ssid := range ssids {
		h.master.Pools().AddNetworkForPool(pool, ssid)
	}
}

func (h *harness) dialCount(addr netip.Addr) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.dials[addr]
}

func (h *harness) log(addr netip.Addr) *commandLog {
	h.mu.Lock()
	defer h.mu.Unlock()

	if l, ok := h.logs[addr]; ok {
		return l
	}

	return &commandLog{}
}

func mustHW(t *testing.T, s string) HardwareAddr {
	t.Helper()

	hw, err := ParseHardwareAddr(s)
	require.NoError(t, err)

	return hw
}
