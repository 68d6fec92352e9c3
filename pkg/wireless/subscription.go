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
	"fmt"
	"strings"
)

// EventType names a category of notification on the event hub.
type EventType int

const (
	EventMobilitySignal EventType = iota
	EventNewClient
	EventStaStatus
)

var eventTypeNames = map[EventType]string{
	EventMobilitySignal: "MOBILITY_SIGNAL",
	EventNewClient:      "NEW_CLIENT",
	EventStaStatus:      "STA_STATUS",
}

func (e EventType) String() string {
	if name, ok := eventTypeNames[e]; ok {
		return name
	}

	return fmt.Sprintf("EventType(%d)", int(e))
}

// ParseEventType matches name case-insensitively.
func ParseEventType(name string) (EventType, error) {
	for et, n := range eventTypeNames {
		if strings.EqualFold(n, name) {
			return et, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownEventType, name)
}

// SubscriptionCategory says who produces the events a subscription listens to.
type SubscriptionCategory int

const (
	// FromAgent events are published by agents over the uplink.
	FromAgent SubscriptionCategory = iota
	// FromApplication events are raised inside the master.
	FromApplication
)

func (c SubscriptionCategory) String() string {
	if c == FromAgent {
		return "APAGENT"
	}

	return "APPLICATION"
}

// Subscription registers interest in one event type. Filter is pushed to
// agents for agent-originated events and means nothing to the master itself.
type Subscription struct {
	Receiver  string
	Category  SubscriptionCategory
	EventType EventType
	Filter    string
}

// AgentCommand is the string agents expect on the subscriptions handler.
func (s Subscription) AgentCommand() string {
	return strings.ToLower(s.EventType.String()) + " " + s.Filter
}

// NotificationHandler receives hub messages. Handlers may run concurrently.
type NotificationHandler func(eventType EventType, msg string)
