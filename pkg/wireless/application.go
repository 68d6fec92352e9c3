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
	"fmt"
	"net/netip"
	"slices"

	"github.com/carverauto/sdwn/pkg/logger"
)

// Application is decision logic bound to one pool. Run registers
// subscriptions and returns; everything after that happens in handlers and
// tasks submitted through the AppContext.
type Application interface {
	Name() string
	Run(app *AppContext)
}

// AppContext is an application's view of the master, scoped to its pool.
type AppContext struct {
	pool   string
	master *Master
	logger logger.Logger
}

// NewAppContext binds pool to the master for one application.
func (m *Master) NewAppContext(pool, name string) *AppContext {
	return &AppContext{
		pool:   pool,
		master: m,
		logger: logger.New(m.logger.With().Str("component", name).Str("pool", pool).Logger()),
	}
}

// StartApplication runs app on the worker pool.
func (m *Master) StartApplication(pool string, app Application) {
	ctx := m.NewAppContext(pool, app.Name())

	m.logger.Info().Str("pool", pool).Str("application", app.Name()).Msg("Starting application")

	m.sched.Execute(func() { app.Run(ctx) })
}

func (a *AppContext) Pool() string {
	return a.pool
}

func (a *AppContext) Logger() logger.Logger {
	return a.logger
}

// Clients lists the clients in the application's pool.
func (a *AppContext) Clients() []*Client {
	return a.master.ClientsInPool(a.pool)
}

// ClientFromHwAddress returns the client only if it belongs to the application's pool.
func (a *AppContext) ClientFromHwAddress(hw HardwareAddr) (*Client, bool) {
	return a.master.ClientInPool(a.pool, hw)
}

func (a *AppContext) AgentAddrs() []netip.Addr {
	return a.master.pools.AgentAddrsForPool(a.pool)
}

// Handoff requests a handoff inside the application's pool.
func (a *AppContext) Handoff(hw HardwareAddr, target netip.Addr) {
	a.master.Handoff(a.pool, hw, target)
}

func (a *AppContext) RegisterSubscription(sub Subscription, handler NotificationHandler) {
	a.master.RegisterSubscription(a.pool, sub, handler)
}

func (a *AppContext) UnregisterSubscription(receiver string, eventType EventType) {
	a.master.UnregisterSubscription(a.pool, receiver, eventType)
}

// ExecuteTask is the only way an application may start background work.
func (a *AppContext) ExecuteTask(fn func()) {
	a.master.ExecuteTask(fn)
}

// RxStatsFromAgent reads per-station statistics from an agent in the pool.
func (a *AppContext) RxStatsFromAgent(ctx context.Context, addr netip.Addr) (map[HardwareAddr]map[string]string, error) {
	agent, ok := a.master.agents.Agent(addr)
	if !ok {
		return nil, ErrAgentNotFound
	}

	if !slices.Contains(a.AgentAddrs(), agent.Addr()) {
		return nil, fmt.Errorf("%w: %s not in %s", ErrAgentNotInPool, agent.Addr(), a.pool)
	}

	return agent.RxStats(ctx)
}

// SwitchClientChannel asks the client's serving agent to announce a channel switch.
func (a *AppContext) SwitchClientChannel(ctx context.Context, hw HardwareAddr, mode, channel, count string) error {
	client, ok := a.ClientFromHwAddress(hw)
	if !ok {
		return ErrClientNotFound
	}

	agent := client.Lvap().Agent()
	if agent == nil {
		return ErrAgentNotFound
	}

	return agent.SwitchChannel(ctx, hw, mode, channel, count)
}
