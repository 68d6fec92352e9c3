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
	"net/netip"
	"sync"
)

// ClientStatus is the last station report an agent published for a client.
type ClientStatus struct {
	ConnectedSeconds int64 `json:"connected_seconds"`
	InactiveMillis   int64 `json:"inactive_ms"`
	RxBytes          int64 `json:"rx_bytes"`
	TxBytes          int64 `json:"tx_bytes"`
	RxPackets        int64 `json:"rx_packets"`
	TxPackets        int64 `json:"tx_packets"`
	Rssi             int   `json:"rssi"`
	RssiAvg          int   `json:"rssi_avg"`
}

// Client is a wireless station known to the master. It always owns an Lvap.
type Client struct {
	hwAddr HardwareAddr
	lvap   *Lvap

	mu         sync.RWMutex
	ipAddr     netip.Addr
	associated bool
	status     *ClientStatus
}

// UnassignedIP stands in for a client address until one is learned.
var UnassignedIP = netip.IPv4Unspecified()

func NewClient(hwAddr HardwareAddr, ipAddr netip.Addr, lvap *Lvap) *Client {
	if !ipAddr.IsValid() {
		ipAddr = UnassignedIP
	}

	return &Client{hwAddr: hwAddr, ipAddr: ipAddr, lvap: lvap}
}

func (c *Client) HwAddr() HardwareAddr {
	return c.hwAddr
}

func (c *Client) Lvap() *Lvap {
	return c.lvap
}

func (c *Client) IPAddr() netip.Addr {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.ipAddr
}

func (c *Client) SetIPAddr(addr netip.Addr) {
	c.mu.Lock()
	c.ipAddr = addr
	c.mu.Unlock()
}

func (c *Client) Associated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.associated
}

func (c *Client) SetAssociated(v bool) {
	c.mu.Lock()
	c.associated = v
	c.mu.Unlock()
}

// Status returns a copy of the last reported status.
func (c *Client) Status() (ClientStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.status == nil {
		return ClientStatus{}, false
	}

	return *c.status, true
}

func (c *Client) SetStatus(s ClientStatus) {
	c.mu.Lock()
	c.status = &s
	c.mu.Unlock()
}
