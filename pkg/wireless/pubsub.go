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
	"strings"
	"sync"
)

type binding struct {
	sub     Subscription
	handler NotificationHandler
}

// Hub fans notifications out to subscribed handlers. Registering the same
// (receiver, event type) twice keeps both bindings.
type Hub struct {
	mu       sync.RWMutex
	bindings []binding
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Register(sub Subscription, handler NotificationHandler) {
	h.mu.Lock()
	h.bindings = append(h.bindings, binding{sub: sub, handler: handler})
	h.mu.Unlock()
}

// Unregister drops every binding for receiver and eventType and returns how many went.
func (h *Hub) Unregister(receiver string, eventType EventType) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.bindings[:0]
	removed := 0

	for _, b := range h.bindings {
		if b.sub.Receiver == receiver && b.sub.EventType == eventType {
			removed++

			continue
		}

		kept = append(kept, b)
	}

	clear(h.bindings[len(kept):])
	h.bindings = kept

	return removed
}

// Notify calls every handler subscribed to eventType and returns how many ran.
func (h *Hub) Notify(eventType EventType, msg string) int {
	matched := h.match(func(s Subscription) bool { return s.EventType == eventType })

	for _, b := range matched {
		b.handler(b.sub.EventType, msg)
	}

	return len(matched)
}

// NotifyByName is Notify keyed by a case-insensitive event name. Unknown
// names match nothing.
func (h *Hub) NotifyByName(name, msg string) int {
	matched := h.match(func(s Subscription) bool { return strings.EqualFold(s.EventType.String(), name) })

	for _, b := range matched {
		b.handler(b.sub.EventType, msg)
	}

	return len(matched)
}

// Subscriptions returns a snapshot of the registered subscriptions.
func (h *Hub) Subscriptions() []Subscription {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Subscription, len(h.bindings))
	for i, b := range h.bindings {
		out[i] = b.sub
	}

	return out
}

func (h *Hub) match(pred func(Subscription) bool) []binding {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []binding

	for _, b := range h.bindings {
		if pred(b.sub) {
			out = append(out, b)
		}
	}

	return out
}
