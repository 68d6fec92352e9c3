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

//go:generate mockgen -destination=mock_wireless.go -package=wireless github.com/carverauto/sdwn/pkg/wireless AgentLink

import (
	"context"
	"net/netip"

	"github.com/carverauto/sdwn/pkg/substrate"
)

// AgentLink is the control channel to one physical agent. Implementations
// serialize requests so a read and a write never interleave on the wire.
type AgentLink interface {
	AddLvap(ctx context.Context, c *Client) error
	UpdateLvap(ctx context.Context, c *Client) error
	RemoveLvap(ctx context.Context, c *Client) error
	SendProbeResponse(ctx context.Context, client, bssid HardwareAddr, ssids []string) error
	SetSubscriptions(ctx context.Context, subscription string) error
	SwitchChannel(ctx context.Context, client HardwareAddr, mode, channel, count string) error
	LvapTable(ctx context.Context) ([]*Client, error)
	ClientStats(ctx context.Context) (map[HardwareAddr]map[string]string, error)
	DeviceInfo(ctx context.Context) (string, error)
	Close() error
}

// LinkDialer opens the control channel to the agent at addr.
type LinkDialer func(ctx context.Context, addr netip.Addr) (AgentLink, error)

// ElementLookup finds the forwarding element co-located with an agent.
type ElementLookup interface {
	ElementByAddr(addr netip.Addr) (substrate.ForwardingElement, bool)
}
