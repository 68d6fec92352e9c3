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

// ClientRegistry is the source of truth for clients, keyed by hardware address.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[HardwareAddr]*Client
}

func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[HardwareAddr]*Client)}
}

// Add stores c, replacing any record with the same hardware address.
func (r *ClientRegistry) Add(c *Client) {
	r.mu.Lock()
	r.clients[c.HwAddr()] = c
	r.mu.Unlock()
}

// AddFields builds a client from its parts and stores it.
func (r *ClientRegistry) AddFields(hwAddr HardwareAddr, ipAddr netip.Addr, lvap *Lvap) *Client {
	c := NewClient(hwAddr, ipAddr, lvap)
	r.Add(c)

	return c
}

func (r *ClientRegistry) Remove(hwAddr HardwareAddr) {
	r.mu.Lock()
	delete(r.clients, hwAddr)
	r.mu.Unlock()
}

func (r *ClientRegistry) Get(hwAddr HardwareAddr) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[hwAddr]

	return c, ok
}

// All returns a snapshot of every client.
func (r *ClientRegistry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}

	return out
}

func (r *ClientRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}
