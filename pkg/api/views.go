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

package api

import (
	"time"

	"github.com/carverauto/sdwn/pkg/wireless"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// TransView holds a client's traffic counters.
type TransView struct {
	RxBytes   int64 `json:"rxBytes"`
	RxPackets int64 `json:"rxPackets"`
	TxBytes   int64 `json:"txBytes"`
	TxPackets int64 `json:"txPackets"`
}

// ClientView is the wire shape of one client.
type ClientView struct {
	MacAddress string     `json:"macAddress"`
	IPAddress  string     `json:"ipAddress"`
	LvapBssid  string     `json:"lvapBssid"`
	LvapSsid   string     `json:"lvapSsid"`
	Associated bool       `json:"associated"`
	Rssi       *int       `json:"rssi,omitempty"`
	Trans      *TransView `json:"trans,omitempty"`
	AP         string     `json:"ap,omitempty"`
}

// AgentView is the wire shape of one agent.
type AgentView struct {
	Addr       string   `json:"addr"`
	DatapathID string   `json:"datapathId"`
	LastHeard  string   `json:"lastHeard"`
	Pools      []string `json:"pools"`
	Lvaps      int      `json:"lvaps"`
	DeviceInfo string   `json:"deviceInfo,omitempty"`
}

// SubscriptionView is the wire shape of one registered subscription.
type SubscriptionView struct {
	Receiver  string `json:"receiver"`
	Category  string `json:"category"`
	EventType string `json:"eventType"`
	Filter    string `json:"filter,omitempty"`
}

func toClientView(c *wireless.Client) ClientView {
	v := ClientView{
		MacAddress: c.HwAddr().String(),
		IPAddress:  c.IPAddr().String(),
		LvapBssid:  c.Lvap().Bssid().String(),
		LvapSsid:   c.Lvap().PrimarySsid(),
		Associated: c.Associated(),
	}

	if addr, ok := c.Lvap().AgentAddr(); ok {
		v.AP = addr.String()
	}

	if status, ok := c.Status(); ok {
		rssi := status.Rssi
		v.Rssi = &rssi
		v.Trans = &TransView{
			RxBytes:   status.RxBytes,
			RxPackets: status.RxPackets,
			TxBytes:   status.TxBytes,
			TxPackets: status.TxPackets,
		}
	}

	return v
}

func toClientViews(clients []*wireless.Client) []ClientView {
	views := make([]ClientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, toClientView(c))
	}

	return views
}

func toSubscriptionViews(subs []wireless.Subscription) []SubscriptionView {
	views := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, SubscriptionView{
			Receiver:  sub.Receiver,
			Category:  sub.Category.String(),
			EventType: sub.EventType.String(),
			Filter:    sub.Filter,
		})
	}

	return views
}

func toAgentView(a *wireless.Agent, pools []string, deviceInfo string) AgentView {
	if pools == nil {
		pools = []string{}
	}

	return AgentView{
		Addr:       a.Addr().String(),
		DatapathID: a.Element().DatapathID,
		LastHeard:  a.LastHeard().UTC().Format(time.RFC3339),
		Pools:      pools,
		Lvaps:      len(a.HostedClients()),
		DeviceInfo: deviceInfo,
	}
}
