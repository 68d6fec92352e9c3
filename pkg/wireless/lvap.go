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

// Lvap is a client's virtual access point: a BSSID and SSID set that can be
// moved between agents without the client re-associating.
type Lvap struct {
	bssid HardwareAddr
	ssids []string

	mu      sync.RWMutex
	agent   *Agent
	staInfo string
}

// NewLvap copies ssids so later pool changes do not leak into the LVAP.
func NewLvap(bssid HardwareAddr, ssids []string) *Lvap {
	return &Lvap{
		bssid: bssid,
		ssids: append([]string(nil), ssids...),
	}
}

func (l *Lvap) Bssid() HardwareAddr {
	return l.bssid
}

func (l *Lvap) Ssids() []string {
	return append([]string(nil), l.ssids...)
}

// PrimarySsid is the first SSID, or "" when the list is empty.
func (l *Lvap) PrimarySsid() string {
	if len(l.ssids) == 0 {
		return ""
	}

	return l.ssids[0]
}

// Agent returns the agent currently serving the LVAP, or nil.
func (l *Lvap) Agent() *Agent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.agent
}

func (l *Lvap) SetAgent(a *Agent) {
	l.mu.Lock()
	l.agent = a
	l.mu.Unlock()
}

// ClearAgentIf unbinds the LVAP only while it still points at a.
func (l *Lvap) ClearAgentIf(a *Agent) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.agent != a {
		return false
	}

	l.agent = nil

	return true
}

// AgentAddr is the address of the serving agent, if any.
func (l *Lvap) AgentAddr() (netip.Addr, bool) {
	a := l.Agent()
	if a == nil {
		return netip.Addr{}, false
	}

	return a.Addr(), true
}

func (l *Lvap) StaInfo() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.staInfo
}

func (l *Lvap) SetStaInfo(info string) {
	l.mu.Lock()
	l.staInfo = info
	l.mu.Unlock()
}
