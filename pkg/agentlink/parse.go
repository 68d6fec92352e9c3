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

package agentlink

import (
	"net/netip"
	"strings"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/wireless"
)

const minLvapFields = 4

// parseLvapTable decodes "<mac> <ip> <bssid> <ssid>[ <ssid>...]" lines.
// Unparseable lines are skipped.
func parseLvapTable(body []byte, log logger.Logger) []*wireless.Client {
	var out []*wireless.Client

	for _, line := range strings.Split(string(body), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if len(fields) < minLvapFields {
			log.Debug().Str("line", line).Msg("Skipping short LVAP table line")

			continue
		}

		hw, err := wireless.ParseHardwareAddr(fields[0])
		if err != nil {
			log.Debug().Err(err).Str("line", line).Msg("Skipping LVAP with bad client address")

			continue
		}

		bssid, err := wireless.ParseHardwareAddr(fields[2])
		if err != nil {
			log.Debug().Err(err).Str("line", line).Msg("Skipping LVAP with bad BSSID")

			continue
		}

		// An unparseable IP becomes the unassigned address.
		ip, _ := netip.ParseAddr(fields[1])

		out = append(out, wireless.NewClient(hw, ip, wireless.NewLvap(bssid, fields[3:])))
	}

	return out
}

// parseClientStats decodes "<mac> <key>:<value> ..." lines.
func parseClientStats(body []byte, log logger.Logger) map[wireless.HardwareAddr]map[string]string {
	out := make(map[wireless.HardwareAddr]map[string]string)

	for _, line := range strings.Split(string(body), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		hw, err := wireless.ParseHardwareAddr(fields[0])
		if err != nil {
			log.Debug().Err(err).Str("line", line).Msg("Skipping stats for bad client address")

			continue
		}

		stats := make(map[string]string, len(fields)-1)

		for _, kv := range fields[1:] {
			key, value, ok := strings.Cut(kv, ":")
			if !ok || key == "" {
				continue
			}

			stats[key] = value
		}

		out[hw] = stats
	}

	return out
}
