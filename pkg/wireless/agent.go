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
	"net/netip"
	"sync"
	"time"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/scheduler"
	"github.com/carverauto/sdwn/pkg/substrate"
)

// Agent is a registered radio node together with its control link.
type Agent struct {
	addr    netip.Addr
	element substrate.ForwardingElement
	link    AgentLink
	logger  logger.Logger

	mu        sync.Mutex
	lastHeard time.Time
	hosted    map[HardwareAddr]*Client
	detector  *scheduler.Task
}

func newAgent(addr netip.Addr, element substrate.ForwardingElement, link AgentLink, log logger.Logger) *Agent {
	return &Agent{
		addr:    addr,
		element: element,
		link:    link,
		logger:  log,
		hosted:  make(map[HardwareAddr]*Client),
	}
}

func (a *Agent) Addr() netip.Addr {
	return a.addr
}

func (a *Agent) Element() substrate.ForwardingElement {
	return a.element
}

func (a *Agent) LastHeard() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lastHeard
}

func (a *Agent) SetLastHeard(t time.Time) {
	a.mu.Lock()
	a.lastHeard = t
	a.mu.Unlock()
}

// HostedClients lists the clients whose LVAPs this master placed on the agent.
func (a *Agent) HostedClients() []*Client {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*Client, 0, len(a.hosted))
	for _, c := range a.hosted {
		out = append(out, c)
	}

	return out
}

func (a *Agent) host(c *Client) {
	a.mu.Lock()
	a.hosted[c.HwAddr()] = c
	a.mu.Unlock()
}

func (a *Agent) unhost(c *Client) {
	a.mu.Lock()
	if a.hosted[c.HwAddr()] == c {
		delete(a.hosted, c.HwAddr())
	}
	a.mu.Unlock()
}

// AddClientLvap spawns the client's LVAP on the agent.
func (a *Agent) AddClientLvap(ctx context.Context, c *Client) error {
	return a.logErr(a.link.AddLvap(ctx, c), "add_vap", c.HwAddr())
}

// UpdateClientLvap pushes changed LVAP parameters to the agent.
func (a *Agent) UpdateClientLvap(ctx context.Context, c *Client) error {
	return a.logErr(a.link.UpdateLvap(ctx, c), "set_vap", c.HwAddr())
}

// RemoveClientLvap tears the client's LVAP down on the agent.
func (a *Agent) RemoveClientLvap(ctx context.Context, c *Client) error {
	return a.logErr(a.link.RemoveLvap(ctx, c), "remove_vap", c.HwAddr())
}

func (a *Agent) SendProbeResponse(ctx context.Context, client, bssid HardwareAddr, ssids []string) error {
	return a.logErr(a.link.SendProbeResponse(ctx, client, bssid, ssids), "send_probe_response", client)
}

func (a *Agent) SetSubscriptions(ctx context.Context, subscription string) error {
	return a.logErr(a.link.SetSubscriptions(ctx, subscription), "subscriptions", HardwareAddr{})
}

func (a *Agent) SwitchChannel(ctx context.Context, client HardwareAddr, mode, channel, count string) error {
	return a.logErr(a.link.SwitchChannel(ctx, client, mode, channel, count), "channel_switch", client)
}

// LvapsRemote asks the agent which LVAPs it is currently running.
func (a *Agent) LvapsRemote(ctx context.Context) ([]*Client, error) {
	clients, err := a.link.LvapTable(ctx)

	return clients, a.logErr(err, "lvap_table", HardwareAddr{})
}

// RxStats reads per-station receive statistics from the agent.
func (a *Agent) RxStats(ctx context.Context) (map[HardwareAddr]map[string]string, error) {
	stats, err := a.link.ClientStats(ctx)

	return stats, a.logErr(err, "client_stats", HardwareAddr{})
}

func (a *Agent) DeviceInfo(ctx context.Context) (string, error) {
	info, err := a.link.DeviceInfo(ctx)

	return info, a.logErr(err, "device_info", HardwareAddr{})
}

func (a *Agent) close() {
	a.mu.Lock()
	detector := a.detector
	a.mu.Unlock()

	if detector != nil {
		detector.Cancel()
	}

	if err := a.link.Close(); err != nil {
		a.logger.Debug().Err(err).Str("agent", a.addr.String()).Msg("Error closing agent link")
	}
}

func (a *Agent) logErr(err error, handler string, client HardwareAddr) error {
	if err == nil {
		return nil
	}

	ev := a.logger.Warn().Err(err).Str("agent", a.addr.String()).Str("handler", handler)
	if !client.IsZero() {
		ev = ev.Str("client", client.String())
	}

	ev.Msg("Agent command failed")

	return err
}
