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

// Package eventexport forwards client lifecycle notifications to JetStream.
package eventexport

import (
	"context"
	"time"

	"github.com/carverauto/sdwn/pkg/models"
	"github.com/carverauto/sdwn/pkg/natsutil"
	"github.com/carverauto/sdwn/pkg/wireless"
)

const (
	Name = "eventexport"

	// EventTypeClientNew is the CloudEvent type of an association.
	EventTypeClientNew = "sdwn.client.new"

	defaultPublishTimeout = 5 * time.Second
)

// Publisher is satisfied by natsutil.EventPublisher.
type Publisher interface {
	Publish(ctx context.Context, subject, eventType string, data interface{}) (*models.CloudEvent, error)
}

var _ Publisher = (*natsutil.EventPublisher)(nil)

// ClientEvent is the CloudEvent payload for a newly associated client.
type ClientEvent struct {
	Client string   `json:"client"`
	Pool   string   `json:"pool"`
	IP     string   `json:"ip"`
	Agent  string   `json:"agent,omitempty"`
	Bssid  string   `json:"bssid"`
	Ssids  []string `json:"ssids"`
}

// Exporter publishes one CloudEvent per NEW_CLIENT notification in its pool.
type Exporter struct {
	pub     Publisher
	subject string
	timeout time.Duration

	app *wireless.AppContext
}

// New publishes under subjectPrefix, which defaults to natsutil.DefaultSubjectPrefix.
func New(pub Publisher, subjectPrefix string) *Exporter {
	if subjectPrefix == "" {
		subjectPrefix = natsutil.DefaultSubjectPrefix
	}

	return &Exporter{
		pub:     pub,
		subject: subjectPrefix + ".client.new",
		timeout: defaultPublishTimeout,
	}
}

func (*Exporter) Name() string {
	return Name
}

// Subject is where client events are published.
func (e *Exporter) Subject() string {
	return e.subject
}

func (e *Exporter) Run(app *wireless.AppContext) {
	e.app = app

	app.RegisterSubscription(wireless.Subscription{
		Receiver:  Name,
		Category:  wireless.FromApplication,
		EventType: wireless.EventNewClient,
	}, e.handleNewClient)
}

func (e *Exporter) handleNewClient(_ wireless.EventType, msg string) {
	hw, err := wireless.ParseHardwareAddr(msg)
	if err != nil {
		return
	}

	client, ok := e.app.ClientFromHwAddress(hw)
	if !ok {
		return
	}

	event := ClientEvent{
		Client: hw.String(),
		Pool:   e.app.Pool(),
		IP:     client.IPAddr().String(),
		Bssid:  client.Lvap().Bssid().String(),
		Ssids:  client.Lvap().Ssids(),
	}

	if addr, ok := client.Lvap().AgentAddr(); ok {
		event.Agent = addr.String()
	}

	e.app.ExecuteTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()

		if _, err := e.pub.Publish(ctx, e.subject, EventTypeClientNew, event); err != nil {
			e.app.Logger().Warn().Err(err).Str("client", event.Client).Msg("Failed to export client event")
		}
	})
}
