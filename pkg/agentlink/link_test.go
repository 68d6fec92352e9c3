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
	"bufio"
	"context"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/wireless"
)

// fakeAgent serves control connections one at a time, records every command
// line and answers read commands from responses.
type fakeAgent struct {
	t        *testing.T
	listener net.Listener

	mu        sync.Mutex
	lines     []string
	responses map[string]string
	accepted  int
}

func newFakeAgent(t *testing.T, responses map[string]string) *fakeAgent {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeAgent{t: t, listener: ln, responses: responses}

	t.Cleanup(func() { _ = ln.Close() })

	go f.serve()

	return f
}

func (f *fakeAgent) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}

		f.mu.Lock()
		f.accepted++
		f.mu.Unlock()

		f.handle(conn)
	}
}

func (f *fakeAgent) handle(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()

		f.mu.Lock()
		f.lines = append(f.lines, line)
		f.mu.Unlock()

		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "read" {
			continue
		}

		f.mu.Lock()
		resp, ok := f.responses[fields[1]]
		f.mu.Unlock()

		if ok {
			_, _ = conn.Write([]byte(resp))
		}
	}
}

func (f *fakeAgent) respond(handler, resp string) {
	f.mu.Lock()
	f.responses[handler] = resp
	f.mu.Unlock()
}

func (f *fakeAgent) connections() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.accepted
}

func (f *fakeAgent) port() uint16 {
	return uint16(f.listener.Addr().(*net.TCPAddr).Port)
}

func (f *fakeAgent) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.lines...)
}

func frame(handler, body string) string {
	return "tag " + handler + " " + strconv.Itoa(len(body)) + "\n" + body
}

func dialFake(t *testing.T, f *fakeAgent) *Link {
	t.Helper()

	dial := Dialer(f.port(), time.Second, logger.NewTestLogger())

	link, err := dial(context.Background(), netip.MustParseAddr("127.0.0.1"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = link.Close() })

	return link.(*Link)
}

func mustHW(t *testing.T, s string) wireless.HardwareAddr {
	t.Helper()

	hw, err := wireless.ParseHardwareAddr(s)
	require.NoError(t, err)

	return hw
}

func TestWriteCommands(t *testing.T) {
	f := newFakeAgent(t, nil)
	link := dialFake(t, f)
	ctx := context.Background()

	hw := mustHW(t, "00:00:00:00:00:01")
	bssid := mustHW(t, "02:00:00:00:00:01")
	client := wireless.NewClient(hw, netip.MustParseAddr("10.0.0.5"), wireless.NewLvap(bssid, []string{"sdwn", "guest"}))

	require.NoError(t, link.AddLvap(ctx, client))
	require.NoError(t, link.UpdateLvap(ctx, client))
	require.NoError(t, link.RemoveLvap(ctx, client))
	require.NoError(t, link.SendProbeResponse(ctx, hw, bssid, []string{"guest", "sdwn"}))
	require.NoError(t, link.SetSubscriptions(ctx, "mobility_signal 00:00:00:00:00:01"))
	require.NoError(t, link.SwitchChannel(ctx, hw, "0", "6", "3"))

	want := []string{
		"write add_vap 00:00:00:00:00:01 10.0.0.5 02:00:00:00:00:01 sdwn guest",
		"write set_vap 00:00:00:00:00:01 10.0.0.5 02:00:00:00:00:01 sdwn guest",
		"write remove_vap 00:00:00:00:00:01",
		"write send_probe_response 00:00:00:00:00:01 02:00:00:00:00:01 guest sdwn",
		"write subscriptions mobility_signal 00:00:00:00:00:01",
		"write channel_switch 00:00:00:00:00:01 0 6 3",
	}

	require.Eventually(t, func() bool { return len(f.received()) == len(want) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, f.received())
}

func TestReadCommands(t *testing.T) {
	table := "00:00:00:00:00:01 10.0.0.5 02:00:00:00:00:01 sdwn\n" +
		"bogus line\n" +
		"00:00:00:00:00:02 0.0.0.0 02:00:00:00:00:02 guest lab\n"
	stats := "00:00:00:00:00:01 rate:54 signal:-42 noise:-95\n"

	f := newFakeAgent(t, map[string]string{
		handlerLvapTable:   frame(handlerLvapTable, table),
		handlerClientStats: frame(handlerClientStats, stats),
		handlerDeviceInfo:  frame(handlerDeviceInfo, "ath9k 2.4GHz\n"),
	})
	link := dialFake(t, f)
	ctx := context.Background()

	clients, err := link.LvapTable(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)

	assert.Equal(t, mustHW(t, "00:00:00:00:00:01"), clients[0].HwAddr())
	assert.Equal(t, netip.MustParseAddr("10.0.0.5"), clients[0].IPAddr())
	assert.Equal(t, mustHW(t, "02:00:00:00:00:01"), clients[0].Lvap().Bssid())
	assert.Equal(t, []string{"guest", "lab"}, clients[1].Lvap().Ssids())

	got, err := link.ClientStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"rate": "54", "signal": "-42", "noise": "-95"}, got[mustHW(t, "00:00:00:00:00:01")])

	info, err := link.DeviceInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ath9k 2.4GHz", info)

	assert.Contains(t, f.received(), "read lvap_table")
}

func TestMalformedHeaderKeepsConnection(t *testing.T) {
	f := newFakeAgent(t, map[string]string{
		handlerClientStats: "tag client_stats many\n",
		handlerDeviceInfo:  frame(handlerDeviceInfo, "ok"),
	})
	link := dialFake(t, f)
	ctx := context.Background()

	_, err := link.ClientStats(ctx)
	require.ErrorIs(t, err, ErrMalformedHeader)

	info, err := link.DeviceInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", info)
}

func TestOversizedHeader(t *testing.T) {
	f := newFakeAgent(t, map[string]string{
		handlerDeviceInfo: strings.Repeat("x", headerScratchSize+10),
	})
	link := dialFake(t, f)

	_, err := link.DeviceInfo(context.Background())
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestTruncatedBodyReconnects(t *testing.T) {
	f := newFakeAgent(t, map[string]string{
		"lvap_table": "tag lvap_table 40\n00:00:00",
	})

	dial := Dialer(f.port(), 100*time.Millisecond, logger.NewTestLogger())

	conn, err := dial(context.Background(), netip.MustParseAddr("127.0.0.1"))
	require.NoError(t, err)

	link := conn.(*Link)
	t.Cleanup(func() { _ = link.Close() })

	_, err = link.LvapTable(context.Background())
	require.Error(t, err)

	body := "00:00:00:00:00:01 10.0.0.5 02:00:00:00:00:01 sdwn\n"
	f.respond("lvap_table", frame("lvap_table", body))

	clients, err := link.LvapTable(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "00:00:00:00:00:01", clients[0].HwAddr().String())
	assert.Equal(t, 2, f.connections())
}

func TestClosedLink(t *testing.T) {
	f := newFakeAgent(t, nil)
	link := dialFake(t, f)

	require.NoError(t, link.Close())
	require.NoError(t, link.Close())

	err := link.SetSubscriptions(context.Background(), "sta_status ")
	require.ErrorIs(t, err, ErrLinkClosed)
}

func TestDialerRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	require.NoError(t, ln.Close())

	_, err = Dialer(port, 200*time.Millisecond, logger.NewTestLogger())(context.Background(), netip.MustParseAddr("127.0.0.1"))
	require.Error(t, err)
}
