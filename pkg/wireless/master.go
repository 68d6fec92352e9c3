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
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/scheduler"
)

const (
	DefaultAssocTimeout = 60 * time.Second

	subscriptionPushLimit = 8
)

// Master drives client state from agent uplink messages and brokers
// handoffs and notifications for applications.
type Master struct {
	clients *ClientRegistry
	pools   *PoolRegistry
	agents  *AgentRegistry
	hub     *Hub
	sched   *scheduler.Scheduler
	logger  logger.Logger

	assocTimeout time.Duration

	// mu serializes multi-step operations: registration, probe, disassociation,
	// assoc timeout and handoff. Agent I/O is never performed while holding it.
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// MasterOption customizes a Master.
type MasterOption func(*masterOptions)

type masterOptions struct {
	agentTimeout time.Duration
	assocTimeout time.Duration
}

func WithMasterAgentTimeout(d time.Duration) MasterOption {
	return func(o *masterOptions) { o.agentTimeout = d }
}

func WithAssocTimeout(d time.Duration) MasterOption {
	return func(o *masterOptions) { o.assocTimeout = d }
}

// NewMaster wires the registries together. The agent registry shares the
// master's coarse lock.
func NewMaster(
	clients *ClientRegistry,
	pools *PoolRegistry,
	elements ElementLookup,
	dial LinkDialer,
	sched *scheduler.Scheduler,
	log logger.Logger,
	opts ...MasterOption,
) *Master {
	o := masterOptions{agentTimeout: DefaultAgentTimeout, assocTimeout: DefaultAssocTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if o.assocTimeout <= 0 {
		o.assocTimeout = DefaultAssocTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Master{
		clients:      clients,
		pools:        pools,
		hub:          NewHub(),
		sched:        sched,
		logger:       log,
		assocTimeout: o.assocTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}

	m.agents = NewAgentRegistry(clients, pools, elements, dial, sched, logger.Named(log, "agent-registry"),
		WithCoarseLock(&m.mu), WithAgentTimeout(o.agentTimeout))

	return m
}

func (m *Master) Clients() *ClientRegistry { return m.clients }

func (m *Master) Pools() *PoolRegistry { return m.pools }

func (m *Master) Agents() *AgentRegistry { return m.agents }

func (m *Master) Hub() *Hub { return m.hub }

// Stop cancels in-flight agent commands and closes every agent link.
func (m *Master) Stop() {
	m.cancel()
	m.agents.Close()
}

// ReceivePing registers a new agent or refreshes a known one.
func (m *Master) ReceivePing(addr netip.Addr) {
	if !m.agents.ReceivePing(m.ctx, addr) {
		m.agents.Touch(addr)
	}
}

// ReceiveProbe handles a probe request a client sent to the agent at addr.
// An empty ssid is a broadcast scan and only earns a probe response.
func (m *Master) ReceiveProbe(addr netip.Addr, hw HardwareAddr, ssid string) {
	if !addr.IsValid() || hw.IsZero() || hw.IsMulticast() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	agent, ok := m.agents.Agent(addr)
	if !ok || m.pools.NumNetworks() == 0 {
		return
	}

	agent.SetLastHeard(m.sched.Clock().Now())

	if ssid == "" {
		m.answerBroadcastProbe(agent, hw)

		return
	}

	for _, pool := range m.pools.PoolsForAgent(addr) {
		if pool == GlobalPool || !m.pools.PoolHostsSsid(pool, ssid) {
			continue
		}

		client, ok := m.clients.Get(hw)
		if !ok {
			lvap := NewLvap(m.pools.GenerateBSSID(hw), m.pools.SsidsForPool(pool))
			client = m.clients.AddFields(hw, UnassignedIP, lvap)
		}

		if client.Lvap().Agent() == nil {
			m.assign(agent, client)
		}

		m.pools.MapClientToPool(client, pool)

		return
	}

	m.logger.Debug().
		Str("agent", addr.String()).
		Str("client", hw.String()).
		Str("ssid", ssid).
		Msg("Probe for SSID not hosted by agent pools")
}

func (m *Master) answerBroadcastProbe(agent *Agent, hw HardwareAddr) {
	var ssids []string

	for _, pool := range m.pools.PoolsForAgent(agent.Addr()) {
		if pool == GlobalPool {
			continue
		}

		for _, ssid := range m.pools.SsidsForPool(pool) {
			if !slices.Contains(ssids, ssid) {
				ssids = append(ssids, ssid)
			}
		}
	}

	slices.Sort(ssids)

	bssid := m.pools.GenerateBSSID(hw)

	m.sched.Execute(func() {
		_ = agent.SendProbeResponse(m.ctx, hw, bssid, ssids)
	})
}

// assign binds a fresh LVAP to agent and arms the association timeout.
func (m *Master) assign(agent *Agent, client *Client) {
	client.Lvap().SetAgent(agent)
	agent.host(client)

	m.sched.Execute(func() {
		_ = agent.AddClientLvap(m.ctx, client)
	})

	m.sched.Schedule(m.assocTimeout, func() { m.expireAssociation(client) })

	m.logger.Info().
		Str("client", client.HwAddr().String()).
		Str("agent", agent.Addr().String()).
		Str("bssid", client.Lvap().Bssid().String()).
		Msg("Client connecting for the first time")
}

func (m *Master) expireAssociation(stale *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients.Get(stale.HwAddr())
	if !ok || client.Associated() {
		return
	}

	agent := client.Lvap().Agent()
	if agent == nil {
		return
	}

	m.logger.Info().
		Str("client", client.HwAddr().String()).
		Str("agent", agent.Addr().String()).
		Msg("Clearing LVAP, association not completed")

	m.release(agent, client)
}

// release drops the client from the registries and tears its LVAP down on
// agent off the caller's goroutine. The caller holds m.mu.
func (m *Master) release(agent *Agent, client *Client) {
	m.pools.RemoveClientPoolMapping(client.HwAddr())
	m.clients.Remove(client.HwAddr())
	agent.unhost(client)

	m.sched.Execute(func() { _ = agent.RemoveClientLvap(m.ctx, client) })
}

// ReceiveAssoc marks a client associated when the report comes from its serving agent.
func (m *Master) ReceiveAssoc(addr netip.Addr, hw HardwareAddr, staInfo string) {
	if !addr.IsValid() || hw.IsZero() || staInfo == "" {
		return
	}

	client, ok := m.clients.Get(hw)
	if !ok {
		m.logger.Warn().Str("client", hw.String()).Msg("Association from unknown client")

		return
	}

	if current, ok := client.Lvap().AgentAddr(); !ok || current != addr.Unmap() {
		m.logger.Error().
			Str("client", hw.String()).
			Str("agent", addr.String()).
			Msg("Client is not assigned to reporting agent")

		return
	}

	client.SetAssociated(true)
	client.Lvap().SetStaInfo(staInfo)

	m.hub.Notify(EventNewClient, hw.String())
}

// ReceiveDisassoc tears a client down after disassociation or deauthentication.
func (m *Master) ReceiveDisassoc(addr netip.Addr, hw HardwareAddr, reason string) {
	agent, ok := m.agents.Agent(addr)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients.Get(hw)
	if !ok {
		return
	}

	// compared by address: a re-registered agent is a new *Agent
	if current, ok := client.Lvap().AgentAddr(); !ok || current != agent.Addr() {
		m.logger.Info().
			Str("client", hw.String()).
			Str("agent", addr.String()).
			Msg("Client is not served by reporting agent")

		return
	}

	m.logger.Info().
		Str("client", hw.String()).
		Str("agent", addr.String()).
		Str("reason", reason).
		Msg("Clearing LVAP")

	m.release(agent, client)
}

// ReceivePublish forwards an agent event to every subscription for eventType.
func (m *Master) ReceivePublish(addr netip.Addr, hw HardwareAddr, eventType, params string) {
	msg := addr.Unmap().String() + " " + hw.String() + " " + params

	if n := m.hub.NotifyByName(eventType, msg); n == 0 {
		m.logger.Debug().Str("event_type", eventType).Msg("Publish with no subscribers")
	}
}

// Handoff moves the client's LVAP to the agent at target. Handing off to the
// current agent is a no-op.
func (m *Master) Handoff(pool string, hw HardwareAddr, target netip.Addr) {
	if pool == "" || hw.IsZero() || !target.IsValid() {
		m.logger.Error().Msg("Handoff request with missing argument")

		return
	}

	target = target.Unmap()

	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := m.agents.Agent(target)
	if !ok {
		m.logger.Error().Str("agent", target.String()).Msg("Handoff ignored, unknown agent")

		return
	}

	client, ok := m.clients.Get(hw)
	if !ok {
		m.logger.Error().Str("client", hw.String()).Msg("Handoff ignored, unknown client")

		return
	}

	prev := client.Lvap().Agent()
	if prev == nil {
		m.logger.Warn().Str("client", hw.String()).Msg("Handoff ignored, client has no agent")

		return
	}

	if prev.Addr() == target {
		m.logger.Debug().Str("client", hw.String()).Str("agent", target.String()).Msg("Client already on agent")

		return
	}

	if pool == GlobalPool {
		m.logger.Error().Str("client", hw.String()).Msg("Handoff ignored, global pool is not a handoff domain")

		return
	}

	// A client outside pool is reported but not refused; the agent check below decides.
	if clientPool, ok := m.pools.PoolForClient(hw); !ok || clientPool != pool {
		m.logger.Error().
			Str("client", hw.String()).
			Str("client_pool", clientPool).
			Str("pool", pool).
			Msg("Handoff requested outside the client's pool")
	}

	if !slices.Contains(m.pools.PoolsForAgent(target), pool) || !slices.Contains(m.pools.PoolsForAgent(prev.Addr()), pool) {
		m.logger.Info().
			Str("agent", target.String()).
			Str("previous_agent", prev.Addr().String()).
			Str("pool", pool).
			Msg("Handoff ignored, agents not in the same pool")

		return
	}

	client.Lvap().SetAgent(next)
	next.host(client)
	prev.unhost(client)

	m.logger.Info().
		Str("client", hw.String()).
		Str("agent", target.String()).
		Str("previous_agent", prev.Addr().String()).
		Msg("Handing off client")

	m.sched.Execute(func() { _ = next.AddClientLvap(m.ctx, client) })
	m.sched.Execute(func() { _ = prev.RemoveClientLvap(m.ctx, client) })
}

// RegisterSubscription binds handler to sub. Agent subscriptions with a
// filter are pushed to every agent in pool.
func (m *Master) RegisterSubscription(pool string, sub Subscription, handler NotificationHandler) {
	m.hub.Register(sub, handler)

	if sub.Category != FromAgent || sub.Filter == "" {
		return
	}

	cmd := sub.AgentCommand()

	m.sched.Execute(func() { m.pushSubscription(pool, cmd) })
}

func (m *Master) pushSubscription(pool, cmd string) {
	g, ctx := errgroup.WithContext(m.ctx)
	g.SetLimit(subscriptionPushLimit)

	for _, addr := range m.pools.AgentAddrsForPool(pool) {
		agent, ok := m.agents.Agent(addr)
		if !ok {
			continue
		}

		g.Go(func() error {
			return agent.SetSubscriptions(ctx, cmd)
		})
	}

	if err := g.Wait(); err != nil {
		m.logger.Warn().Err(err).Str("pool", pool).Msg("Subscription push incomplete")
	}
}

// UnregisterSubscription removes every binding for receiver and eventType.
func (m *Master) UnregisterSubscription(_, receiver string, eventType EventType) {
	m.hub.Unregister(receiver, eventType)
}

// ExecuteTask runs fn on the shared worker pool.
func (m *Master) ExecuteTask(fn func()) {
	m.sched.Execute(fn)
}

// ClientsInPool lists the clients of pool; GlobalPool yields all.
func (m *Master) ClientsInPool(pool string) []*Client {
	return m.pools.ClientsFromPool(pool)
}

// ClientInPool returns the client if it belongs to pool. GlobalPool matches any client.
func (m *Master) ClientInPool(pool string, hw HardwareAddr) (*Client, bool) {
	client, ok := m.clients.Get(hw)
	if !ok {
		return nil, false
	}

	if pool == GlobalPool {
		return client, true
	}

	if clientPool, ok := m.pools.PoolForClient(hw); !ok || clientPool != pool {
		return nil, false
	}

	return client, true
}
