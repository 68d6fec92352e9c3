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
	"slices"
	"sync"
)

// GlobalPool aggregates every tenant. It is valid for queries but never for handoffs.
const GlobalPool = "global"

// PoolRegistry partitions agents, SSIDs and clients into administrative pools.
type PoolRegistry struct {
	mu          sync.RWMutex
	agentPools  map[netip.Addr][]string
	poolSsids   map[string][]string
	clientPool  map[HardwareAddr]string
	poolClients map[string]map[HardwareAddr]*Client
}

func NewPoolRegistry() *PoolRegistry {
	return &PoolRegistry{
		agentPools:  make(map[netip.Addr][]string),
		poolSsids:   make(map[string][]string),
		clientPool:  make(map[HardwareAddr]string),
		poolClients: make(map[string]map[HardwareAddr]*Client),
	}
}

// AddPoolForAgent makes addr a member of pool. Pools keep their insertion order.
func (r *PoolRegistry) AddPoolForAgent(addr netip.Addr, pool string) {
	addr = addr.Unmap()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.agentPools[addr], pool) {
		r.agentPools[addr] = append(r.agentPools[addr], pool)
	}
}

func (r *PoolRegistry) PoolsForAgent(addr netip.Addr) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.agentPools[addr.Unmap()])
}

func (r *PoolRegistry) AddNetworkForPool(pool, ssid string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.poolSsids[pool], ssid) {
		r.poolSsids[pool] = append(r.poolSsids[pool], ssid)
	}
}

// SsidsForPool lists the SSIDs hosted by pool; GlobalPool yields every SSID.
func (r *PoolRegistry) SsidsForPool(pool string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if pool != GlobalPool {
		return slices.Clone(r.poolSsids[pool])
	}

	var all []string

	for _, ssids := range r.poolSsids {
		for _, ssid := range ssids {
			if !slices.Contains(all, ssid) {
				all = append(all, ssid)
			}
		}
	}

	slices.Sort(all)

	return all
}

// PoolHostsSsid reports whether pool advertises ssid.
func (r *PoolRegistry) PoolHostsSsid(pool, ssid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Contains(r.poolSsids[pool], ssid)
}

// NumNetworks counts SSIDs across all pools.
func (r *PoolRegistry) NumNetworks() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, ssids := range r.poolSsids {
		n += len(ssids)
	}

	return n
}

// MapClientToPool places c in pool, moving it out of any previous pool.
func (r *PoolRegistry) MapClientToPool(c *Client, pool string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hw := c.HwAddr()

	if prev, ok := r.clientPool[hw]; ok && prev != pool {
		delete(r.poolClients[prev], hw)
	}

	r.clientPool[hw] = pool

	members, ok := r.poolClients[pool]
	if !ok {
		members = make(map[HardwareAddr]*Client)
		r.poolClients[pool] = members
	}

	members[hw] = c
}

func (r *PoolRegistry) RemoveClientPoolMapping(hwAddr HardwareAddr) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.clientPool[hwAddr]
	if !ok {
		return
	}

	delete(r.clientPool, hwAddr)
	delete(r.poolClients[pool], hwAddr)
}

func (r *PoolRegistry) PoolForClient(hwAddr HardwareAddr) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pool, ok := r.clientPool[hwAddr]

	return pool, ok
}

// ClientsFromPool lists the clients mapped into pool; GlobalPool yields all of them.
func (r *PoolRegistry) ClientsFromPool(pool string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Client

	for name, members := range r.poolClients {
		if pool != GlobalPool && name != pool {
			continue
		}

		for _, c := range members {
			out = append(out, c)
		}
	}

	return out
}

// AgentAddrsForPool lists the member agents of pool; GlobalPool yields every configured agent.
func (r *PoolRegistry) AgentAddrsForPool(pool string) []netip.Addr {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []netip.Addr

	for addr, pools := range r.agentPools {
		if pool == GlobalPool || slices.Contains(pools, pool) {
			out = append(out, addr)
		}
	}

	slices.SortFunc(out, func(a, b netip.Addr) int { return a.Compare(b) })

	return out
}

// GenerateBSSID derives a client's BSSID by flipping the locally administered
// bit of its address. The mapping is stable and injective.
func (*PoolRegistry) GenerateBSSID(hwAddr HardwareAddr) HardwareAddr {
	bssid := hwAddr
	bssid[0] ^= 0x02

	return bssid
}
