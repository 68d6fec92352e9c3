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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sdwn/pkg/wireless"
)

func TestDecode(t *testing.T) {
	hw, err := wireless.ParseHardwareAddr("00:1b:2c:3d:4e:5f")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want Message
	}{
		{name: "ping", in: "ping", want: Message{Kind: KindPing}},
		{name: "ping padded", in: "  PING\n\x00\x00", want: Message{Kind: KindPing}},
		{name: "broadcast probe", in: "probe 00:1B:2C:3D:4E:5F", want: Message{Kind: KindProbe, Client: hw}},
		{name: "probe", in: "probe 00:1b:2c:3d:4e:5f SDWN", want: Message{Kind: KindProbe, Client: hw, Ssid: "sdwn"}},
		{
			name: "probe ssid with spaces",
			in:   "probe 00:1b:2c:3d:4e:5f my  home net",
			want: Message{Kind: KindProbe, Client: hw, Ssid: "my  home net"},
		},
		{
			name: "station",
			in:   "station 00:1b:2c:3d:4e:5f ht 20 wmm",
			want: Message{Kind: KindAssoc, Client: hw, StaInfo: "ht 20 wmm"},
		},
		{name: "assoc", in: "assoc 00:1b:2c:3d:4e:5f x", want: Message{Kind: KindAssoc, Client: hw, StaInfo: "x"}},
		{name: "disassoc", in: "disassoc 00:1b:2c:3d:4e:5f", want: Message{Kind: KindDisassoc, Client: hw}},
		{
			name: "deauth with reason",
			in:   "deauth 00:1b:2c:3d:4e:5f leaving bss",
			want: Message{Kind: KindDisassoc, Client: hw, Reason: "leaving bss"},
		},
		{
			name: "publish",
			in:   "publish 00:1b:2c:3d:4e:5f MOBILITY_SIGNAL -42",
			want: Message{Kind: KindPublish, Client: hw, EventType: "mobility_signal", Params: "-42"},
		},
		{
			name: "publish multiline",
			in:   "publish 00:1b:2c:3d:4e:5f sta_status a b\nc d",
			want: Message{Kind: KindPublish, Client: hw, EventType: "sta_status", Params: "a b\nc d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	malformed := []string{
		"",
		"   ",
		"probe",
		"probe not-a-mac sdwn",
		"station 00:1b:2c:3d:4e",
		"publish 00:1b:2c:3d:4e:5f",
	}

	for _, in := range malformed {
		_, err := Decode([]byte(in))
		require.ErrorIs(t, err, ErrMalformedMessage, in)
	}

	_, err := Decode([]byte("auth 00:1b:2c:3d:4e:5f"))
	require.ErrorIs(t, err, ErrUnknownMessage)
}
