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
	"net"
)

// HardwareAddr is a 48-bit MAC address usable as a map key.
type HardwareAddr [6]byte

// ParseHardwareAddr parses the colon or dash separated forms accepted by net.ParseMAC.
func ParseHardwareAddr(s string) (HardwareAddr, error) {
	var hw HardwareAddr

	mac, err := net.ParseMAC(s)
	if err != nil {
		return hw, fmt.Errorf("%w: %w", ErrInvalidHardwareAddr, err)
	}

	if len(mac) != len(hw) {
		return hw, fmt.Errorf("%w: %q is not 48 bits", ErrInvalidHardwareAddr, s)
	}

	copy(hw[:], mac)

	return hw, nil
}

func (h HardwareAddr) String() string {
	return net.HardwareAddr(h[:]).String()
}

func (h HardwareAddr) IsZero() bool {
	return h == HardwareAddr{}
}

func (h HardwareAddr) IsBroadcast() bool {
	return h == HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
}

// IsMulticast reports whether the group bit is set. Broadcast is also multicast.
func (h HardwareAddr) IsMulticast() bool {
	return h[0]&0x01 != 0
}

func (h HardwareAddr) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HardwareAddr) UnmarshalText(text []byte) error {
	parsed, err := ParseHardwareAddr(string(text))
	if err != nil {
		return err
	}

	*h = parsed

	return nil
}
