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
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/scheduler"
)

const DefaultAgentTimeout = 6 * time.Second

// AgentRegistry tracks live agents and detects the ones that went quiet.
type AgentRegistry struct {
	clients  *ClientRegistry
	pools    *PoolRegistry
	elements ElementLookup
	dial     LinkDialer
	sched    *scheduler.Scheduler
	logger   logger.Logger

	// lock is the controller-wide region shared with handoff and probe handling.
	lock    sync.Locker
	timeout atomic.Int64

	mu     sync.RWMutex
	agents map[netip.Addr]*Agent
}

// AgentRegistryOption customizes an AgentRegistry.
type AgentRegistryOption func(*AgentRegistry)

// WithCoarseLock makes registration and failure handling share l with other
// multi-step controller operations.
func WithCoarseLock(l sync.Locker) AgentRegistryOption {
	return func(r *AgentRegistry) {
		r.lock = l
	}
}

// WithAgentTimeout sets the liveness timeout. Non-positive values are ignored.
func WithAgentTimeout(d time.Duration) AgentRegistryOption {
	return func(r *AgentRegistry) {
		_ = r.SetTimeout(d)
	}
}

func NewAgentRegistry(
	clients *ClientRegistry,
	pools *PoolRegistry,
	elements ElementLookup,
	dial LinkDialer,
	sched *scheduler.Scheduler,
	log logger.Logger,
	opts ...AgentRegistryOption,
) *AgentRegistry {
	r := &AgentRegistry{
		clients:  clients,
		pools:    pools,
		elements: elements,
		dial:     dial,
		sched:    sched,
		logger:   log,
		lock:     &sync.Mutex{},
		agents:   make(map[netip.Addr]*Agent),
	}

	r.timeout.Store(int64(DefaultAgentTimeout))

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SetTimeout changes the liveness timeout for subsequent detector ticks.
func (r *AgentRegistry) SetTimeout(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidTimeout
	}

	r.timeout.Store(int64(d))

	return nil
}

func (r *AgentRegistry) Timeout() time.Duration {
	return time.Duration(r.timeout.Load())
}

func (r *AgentRegistry) IsTracked(addr netip.Addr) bool {
	_, ok := r.Agent(addr)

	return ok
}

func (r *AgentRegistry) Agent(addr netip.Addr) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[addr.Unmap()]

	return a, ok
}

// Agents returns a snapshot ordered by address.
func (r *AgentRegistry) Agents() []*Agent {
	r.mu.RLock()
	out := make([]*Agent, 0, len(r.agents))

	for _, a := range r.agents {
		out = append(out, a)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Addr().Less(out[j].Addr()) })

	return out
}

func (r *AgentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.agents)
}

// Touch refreshes an agent's last-heard time. Unknown agents are ignored.
func (r *AgentRegistry) Touch(addr netip.Addr) {
	if a, ok := r.Agent(addr); ok {
		a.SetLastHeard(r.sched.Clock().Now())
	}
}

// RemoveAgent drops the agent and closes its link. LVAPs it hosted are left
// without an agent, as after a timeout.
func (r *AgentRegistry) RemoveAgent(addr netip.Addr) {
	r.lock.Lock()

	r.mu.Lock()
	a, ok := r.agents[addr.Unmap()]
	delete(r.agents, addr.Unmap())
	r.mu.Unlock()

	if ok {
		r.releaseLvaps(a)
	}

	r.lock.Unlock()

	if ok {
		a.close()
	}
}

func (r *AgentRegistry) releaseLvaps(agent *Agent) {
	for _, c := range agent.HostedClients() {
		c.Lvap().ClearAgentIf(agent)
	}
}

// Close removes every agent.
func (r *AgentRegistry) Close() {
	for _, a := range r.Agents() {
		r.RemoveAgent(a.Addr())
	}
}

// ReceivePing handles a liveness signal and reports whether a new agent was
// registered. Agents without a forwarding element, or whose control link
// cannot be opened, stay untracked.
func (r *AgentRegistry) ReceivePing(ctx context.Context, addr netip.Addr) bool {
	addr = addr.Unmap()

	if !addr.IsValid() || r.IsTracked(addr) {
		return false
	}

	element, ok := r.elements.ElementByAddr(addr)
	if !ok {
		r.logger.Debug().Str("agent", addr.String()).Msg("No forwarding element for agent yet")

		return false
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	// Another ping may have registered the agent while we waited.
	if r.IsTracked(addr) {
		return false
	}

	link, err := r.dial(ctx, addr)
	if err != nil {
		r.logger.Error().Err(err).Str("agent", addr.String()).Msg("Failed to open agent control link")

		return false
	}

	agent := newAgent(addr, element, link, r.logger)
	agent.SetLastHeard(r.sched.Clock().Now())

	r.reconcile(ctx, agent)

	r.mu.Lock()
	r.agents[addr] = agent
	r.mu.Unlock()

	r.logger.Info().
		Str("agent", addr.String()).
		Str("datapath_id", element.DatapathID).
		Msg("Agent registered")

	r.startFailureDetector(agent)

	return true
}

// reconcile adopts LVAPs the agent already runs, which happens after a
// master restart. Copies of clients that another agent serves are removed.
func (r *AgentRegistry) reconcile(ctx context.Context, agent *Agent) {
	remote, err := agent.LvapsRemote(ctx)
	if err != nil {
		return
	}

	agentPools := r.pools.PoolsForAgent(agent.Addr())

	for _, reported := range remote {
		tracked, ok := r.clients.Get(reported.HwAddr())
		if !ok {
			r.clients.Add(reported)
			tracked = reported

			ssid := reported.Lvap().PrimarySsid()
			for _, pool := range agentPools {
				if r.pools.PoolHostsSsid(pool, ssid) {
					r.pools.MapClientToPool(tracked, pool)

					break
				}
			}

			r.logger.Info().
				Str("agent", agent.Addr().String()).
				Str("client", tracked.HwAddr().String()).
				Msg("Recovered client from agent LVAP table")
		}

		current := tracked.Lvap().Agent()

		switch {
		case current == nil:
			tracked.Lvap().SetAgent(agent)
			agent.host(tracked)

			if tracked != reported {
				r.syncAddress(ctx, agent, tracked, reported)
			}
		case current.Addr() != agent.Addr():
			r.logger.Warn().
				Str("agent", agent.Addr().String()).
				Str("client", tracked.HwAddr().String()).
				Str("serving_agent", current.Addr().String()).
				Msg("Removing stale LVAP from agent")

			_ = agent.RemoveClientLvap(ctx, reported)
		}
	}
}

// syncAddress fills in whichever side lacks the client's address. Agents
// learn addresses while the master is down; the master pushes ones it knows.
func (r *AgentRegistry) syncAddress(ctx context.Context, agent *Agent, tracked, reported *Client) {
	local, remote := tracked.IPAddr(), reported.IPAddr()

	switch {
	case remote != UnassignedIP && remote != local:
		tracked.SetIPAddr(remote)

		r.logger.Info().
			Str("agent", agent.Addr().String()).
			Str("client", tracked.HwAddr().String()).
			Str("ip", remote.String()).
			Msg("Adopted client address from agent")
	case local != UnassignedIP && remote == UnassignedIP:
		_ = agent.UpdateClientLvap(ctx, tracked)
	}
}

func (r *AgentRegistry) startFailureDetector(agent *Agent) {
	task := r.sched.ScheduleAtFixedRate(r.Timeout()/2, func(self *scheduler.Task) {
		if r.sched.Clock().Now().Sub(agent.LastHeard()) < r.Timeout() {
			return
		}

		r.expire(agent)
		self.Cancel()
	})

	agent.mu.Lock()
	agent.detector = task
	agent.mu.Unlock()
}

func (r *AgentRegistry) expire(agent *Agent) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.logger.Error().Str("agent", agent.Addr().String()).Msg("Agent timed out")

	r.releaseLvaps(agent)

	r.mu.Lock()
	if r.agents[agent.Addr()] == agent {
		delete(r.agents, agent.Addr())
	}
	r.mu.Unlock()

	if err := agent.link.Close(); err != nil {
		r.logger.Debug().Err(err).Str("agent", agent.Addr().String()).Msg("Error closing agent link")
	}
}
