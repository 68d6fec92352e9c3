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

// Package mobility hands clients off to the agent that hears them best.
package mobility

import (
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/sdwn/pkg/scheduler"
	"github.com/carverauto/sdwn/pkg/wireless"
)

const (
	Name = "mobility"

	DefaultHysteresis      = 3 * time.Second
	DefaultIdleThreshold   = 4 * time.Second
	DefaultSignalThreshold = 10

	signalFields = 3
)

type stats struct {
	signal     int
	lastHeard  time.Time
	assignedAt time.Time
}

// Manager tracks the signal each client reports through its serving agent
// and moves it when another agent reports a clearly stronger one.
type Manager struct {
	clock           scheduler.Clock
	hysteresis      time.Duration
	idleThreshold   time.Duration
	signalThreshold int

	app *wireless.AppContext

	mu      sync.Mutex
	clients map[wireless.HardwareAddr]*stats
}

type Option func(*Manager)

func WithClock(c scheduler.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithThresholds overrides the hysteresis window, idle limit and signal margin.
func WithThresholds(hysteresis, idle time.Duration, signal int) Option {
	return func(m *Manager) {
		m.hysteresis = hysteresis
		m.idleThreshold = idle
		m.signalThreshold = signal
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{
		clock:           scheduler.RealClock{},
		hysteresis:      DefaultHysteresis,
		idleThreshold:   DefaultIdleThreshold,
		signalThreshold: DefaultSignalThreshold,
		clients:         make(map[wireless.HardwareAddr]*stats),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (*Manager) Name() string {
	return Name
}

func (m *Manager) Run(app *wireless.AppContext) {
	m.app = app

	app.RegisterSubscription(m.signalSubscription(""), m.handleSignal)
	app.RegisterSubscription(wireless.Subscription{
		Receiver:  Name,
		Category:  wireless.FromApplication,
		EventType: wireless.EventNewClient,
	}, m.handleNewClient)
}

func (*Manager) signalSubscription(filter string) wireless.Subscription {
	return wireless.Subscription{
		Receiver:  Name,
		Category:  wireless.FromAgent,
		EventType: wireless.EventMobilitySignal,
		Filter:    filter,
	}
}

// handleNewClient narrows the agents' signal reports to the pool's clients.
func (m *Manager) handleNewClient(wireless.EventType, string) {
	clients := m.app.Clients()

	macs := make([]string, 0, len(clients))
	for _, c := range clients {
		macs = append(macs, c.HwAddr().String())
	}

	m.app.UnregisterSubscription(Name, wireless.EventMobilitySignal)
	m.app.RegisterSubscription(m.signalSubscription(strings.Join(macs, " ")), m.handleSignal)
}

// handleSignal processes "<agent> <client> <signal>".
func (m *Manager) handleSignal(_ wireless.EventType, msg string) {
	log := m.app.Logger()

	fields := strings.Fields(msg)
	if len(fields) != signalFields {
		log.Info().Str("message", msg).Msg("Mobility signal with wrong number of fields")

		return
	}

	agent, err := netip.ParseAddr(fields[0])
	if err != nil {
		log.Info().Err(err).Msg("Mobility signal with bad agent address")

		return
	}

	hw, err := wireless.ParseHardwareAddr(fields[1])
	if err != nil {
		log.Info().Err(err).Msg("Mobility signal with bad client address")

		return
	}

	value, err := strconv.Atoi(fields[2])
	if err != nil {
		log.Info().Err(err).Msg("Mobility signal with bad value")

		return
	}

	client, ok := m.app.ClientFromHwAddress(hw)
	if !ok {
		return
	}

	current, ok := client.Lvap().AgentAddr()
	if !ok {
		return
	}

	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.clients[hw]
	if !ok {
		s = &stats{signal: value, lastHeard: now, assignedAt: now}
		m.clients[hw] = s
	}

	if now.Sub(s.lastHeard) > m.idleThreshold {
		log.Info().
			Str("client", hw.String()).
			Str("agent", agent.String()).
			Dur("idle_threshold", m.idleThreshold).
			Msg("Client idle too long, reassigning")

		m.handoff(s, hw, agent, value, now)

		return
	}

	if current == agent.Unmap() {
		s.signal = value
		s.lastHeard = now

		return
	}

	if now.Sub(s.assignedAt) < m.hysteresis {
		return
	}

	if value >= s.signal+m.signalThreshold {
		log.Info().
			Str("client", hw.String()).
			Str("agent", agent.String()).
			Int("signal", value).
			Int("previous_signal", s.signal).
			Msg("Stronger signal, handing off")

		m.handoff(s, hw, agent, value, now)
	}
}

func (m *Manager) handoff(s *stats, hw wireless.HardwareAddr, agent netip.Addr, value int, now time.Time) {
	m.app.Handoff(hw, agent)

	s.signal = value
	s.lastHeard = now
	s.assignedAt = now
}
