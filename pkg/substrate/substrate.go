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

// Package substrate tracks the packet-forwarding elements co-located with
// wireless agents. Agents are only admitted once their element is known.
package substrate

import (
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"sync"
)

var (
	ErrInvalidElement = errors.New("forwarding element needs a datapath id and address")
	ErrDuplicateAddr  = errors.New("another forwarding element already uses this address")
)

// ForwardingElement is a switch known to the control plane.
type ForwardingElement struct {
	DatapathID string     `json:"datapath_id"`
	Addr       netip.Addr `json:"addr"`
}

// Table is a concurrency-safe registry of forwarding elements keyed by datapath id.
type Table struct {
	mu       sync.RWMutex
	elements map[string]ForwardingElement
}

func NewTable() *Table {
	return &Table{elements: make(map[string]ForwardingElement)}
}

// Register adds or replaces an element. Two datapaths may not share an address.
func (t *Table) Register(fe ForwardingElement) error {
	if fe.DatapathID == "" || !fe.Addr.IsValid() {
		return ErrInvalidElement
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for id, existing := range t.elements {
		if id != fe.DatapathID && existing.Addr == fe.Addr {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicateAddr, fe.Addr, id)
		}
	}

	t.elements[fe.DatapathID] = fe

	return nil
}

func (t *Table) Unregister(datapathID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.elements, datapathID)
}

// ElementByAddr finds the element whose address matches addr.
func (t *Table) ElementByAddr(addr netip.Addr) (ForwardingElement, bool) {
	addr = addr.Unmap()

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, fe := range t.elements {
		if fe.Addr.Unmap() == addr {
			return fe, true
		}
	}

	return ForwardingElement{}, false
}

// Elements returns a snapshot sorted by datapath id.
func (t *Table) Elements() []ForwardingElement {
	t.mu.RLock()
	out := make([]ForwardingElement, 0, len(t.elements))

	for _, fe := range t.elements {
		out = append(out, fe)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DatapathID < out[j].DatapathID })

	return out
}
