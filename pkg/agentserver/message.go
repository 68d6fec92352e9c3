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

package agentserver

import (
	"fmt"
	"strings"

	"github.com/carverauto/sdwn/pkg/wireless"
)

// Kind is the type of an uplink message.
type Kind int

const (
	KindPing Kind = iota
	KindProbe
	KindAssoc
	KindDisassoc
	KindPublish
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindProbe:
		return "probe"
	case KindAssoc:
		return "assoc"
	case KindDisassoc:
		return "disassoc"
	case KindPublish:
		return "publish"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Message is a decoded uplink datagram. Only the fields relevant to Kind are set.
type Message struct {
	Kind   Kind
	Client wireless.HardwareAddr
	// Ssid is empty for a broadcast scan.
	Ssid      string
	StaInfo   string
	Reason    string
	EventType string
	Params    string
}

// Decode parses one datagram. The text is trimmed and lowercased before
// splitting, so SSIDs and parameters arrive lowercased.
func Decode(datagram []byte) (Message, error) {
	text := strings.ToLower(strings.TrimSpace(strings.TrimRight(string(datagram), "\x00")))
	if text == "" {
		return Message{}, fmt.Errorf("%w: empty datagram", ErrMalformedMessage)
	}

	msgType, rest, _ := strings.Cut(text, " ")

	switch msgType {
	case "ping":
		return Message{Kind: KindPing}, nil
	case "probe":
		hw, ssid, err := clientAndRest(msgType, rest)
		if err != nil {
			return Message{}, err
		}

		return Message{Kind: KindProbe, Client: hw, Ssid: ssid}, nil
	case "station", "assoc":
		hw, info, err := clientAndRest(msgType, rest)
		if err != nil {
			return Message{}, err
		}

		return Message{Kind: KindAssoc, Client: hw, StaInfo: info}, nil
	case "disassoc", "deauth":
		hw, reason, err := clientAndRest(msgType, rest)
		if err != nil {
			return Message{}, err
		}

		return Message{Kind: KindDisassoc, Client: hw, Reason: reason}, nil
	case "publish":
		hw, tail, err := clientAndRest(msgType, rest)
		if err != nil {
			return Message{}, err
		}

		eventType, params, _ := strings.Cut(tail, " ")
		if eventType == "" {
			return Message{}, fmt.Errorf("%w: publish without event type", ErrMalformedMessage)
		}

		return Message{Kind: KindPublish, Client: hw, EventType: eventType, Params: params}, nil
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessage, msgType)
	}
}

func clientAndRest(msgType, rest string) (wireless.HardwareAddr, string, error) {
	token, tail, _ := strings.Cut(rest, " ")
	if token == "" {
		return wireless.HardwareAddr{}, "", fmt.Errorf("%w: %s without client address", ErrMalformedMessage, msgType)
	}

	hw, err := wireless.ParseHardwareAddr(token)
	if err != nil {
		return wireless.HardwareAddr{}, "", fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	return hw, tail, nil
}
