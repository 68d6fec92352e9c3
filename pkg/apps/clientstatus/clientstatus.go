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

// Package clientstatus records the station counters agents publish.
package clientstatus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/carverauto/sdwn/pkg/wireless"
)

const (
	Name = "clientstatus"

	headerParts  = 3
	statusFields = 9
)

// Manager applies STA_STATUS reports to the clients of its pool. Each report
// carries one line per station:
//
//	<mac> <connected> <inactive> <rxBytes> <txBytes> <rxPackets> <txPackets> <rssi> <rssiAvg>
type Manager struct {
	app *wireless.AppContext
}

func New() *Manager {
	return &Manager{}
}

func (*Manager) Name() string {
	return Name
}

func (m *Manager) Run(app *wireless.AppContext) {
	m.app = app

	app.RegisterSubscription(wireless.Subscription{
		Receiver:  Name,
		Category:  wireless.FromAgent,
		EventType: wireless.EventStaStatus,
	}, m.handleStatus)
}

func (m *Manager) handleStatus(_ wireless.EventType, msg string) {
	log := m.app.Logger()

	parts := strings.SplitN(msg, " ", headerParts)
	if len(parts) != headerParts {
		log.Info().Str("message", msg).Msg("Station status with wrong number of fields")

		return
	}

	for _, line := range strings.Split(parts[2], "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		hw, status, err := parseLine(line)
		if err != nil {
			log.Info().Err(err).Str("line", line).Msg("Skipping station status line")

			continue
		}

		client, ok := m.app.ClientFromHwAddress(hw)
		if !ok {
			continue
		}

		client.SetStatus(status)
	}
}

func parseLine(line string) (wireless.HardwareAddr, wireless.ClientStatus, error) {
	fields := strings.Fields(line)
	if len(fields) != statusFields {
		return wireless.HardwareAddr{}, wireless.ClientStatus{}, fmt.Errorf("%w: %d fields", errBadLine, len(fields))
	}

	hw, err := wireless.ParseHardwareAddr(fields[0])
	if err != nil {
		return wireless.HardwareAddr{}, wireless.ClientStatus{}, err
	}

	var counters [6]int64

	for i := range counters {
		counters[i], err = strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			return wireless.HardwareAddr{}, wireless.ClientStatus{}, fmt.Errorf("%w: %w", errBadLine, err)
		}
	}

	rssi, err := strconv.Atoi(fields[7])
	if err != nil {
		return wireless.HardwareAddr{}, wireless.ClientStatus{}, fmt.Errorf("%w: %w", errBadLine, err)
	}

	rssiAvg, err := strconv.Atoi(fields[8])
	if err != nil {
		return wireless.HardwareAddr{}, wireless.ClientStatus{}, fmt.Errorf("%w: %w", errBadLine, err)
	}

	return hw, wireless.ClientStatus{
		ConnectedSeconds: counters[0],
		InactiveMillis:   counters[1],
		RxBytes:          counters[2],
		TxBytes:          counters[3],
		RxPackets:        counters[4],
		TxPackets:        counters[5],
		Rssi:             rssi,
		RssiAvg:          rssiAvg,
	}, nil
}
