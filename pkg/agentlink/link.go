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

// Package agentlink speaks the master-to-agent TCP control protocol.
package agentlink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/wireless"
)

const (
	// headerScratchSize bounds the bytes a response header may span.
	headerScratchSize = 256
	headerTokens      = 3

	defaultIOTimeout = 5 * time.Second

	handlerAddVap            = "add_vap"
	handlerSetVap            = "set_vap"
	handlerRemoveVap         = "remove_vap"
	handlerSendProbeResponse = "send_probe_response"
	handlerSubscriptions     = "subscriptions"
	handlerChannelSwitch     = "channel_switch"
	handlerLvapTable         = "lvap_table"
	handlerClientStats       = "client_stats"
	handlerDeviceInfo        = "device_info"
)

// Link is a persistent control connection to one agent. Requests are
// serialized so a read response never interleaves with another command.
type Link struct {
	addr      netip.AddrPort
	ioTimeout time.Duration
	logger    logger.Logger

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	closed bool
}

var _ wireless.AgentLink = (*Link)(nil)

// New wraps an established connection.
func New(conn net.Conn, ioTimeout time.Duration, log logger.Logger) *Link {
	if ioTimeout <= 0 {
		ioTimeout = defaultIOTimeout
	}

	var addr netip.AddrPort
	if tcp, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		addr = tcp.AddrPort()
	}

	return &Link{
		addr:      addr,
		ioTimeout: ioTimeout,
		logger:    log,
		conn:      conn,
		reader:    bufio.NewReader(conn),
	}
}

// Dialer returns a wireless.LinkDialer that connects to port on each agent.
func Dialer(port uint16, timeout time.Duration, log logger.Logger) wireless.LinkDialer {
	return func(ctx context.Context, addr netip.Addr) (wireless.AgentLink, error) {
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		target := netip.AddrPortFrom(addr.Unmap(), port)

		var dialer net.Dialer

		conn, err := dialer.DialContext(dialCtx, "tcp", target.String())
		if err != nil {
			return nil, fmt.Errorf("dial agent %s: %w", target, err)
		}

		log.Debug().Str("agent", target.String()).Msg("Agent control link established")

		return New(conn, timeout, log), nil
	}
}

// Addr is the agent's control endpoint.
func (l *Link) Addr() netip.AddrPort {
	return l.addr
}

func (l *Link) AddLvap(ctx context.Context, c *wireless.Client) error {
	return l.write(ctx, handlerAddVap, lvapArgs(c))
}

func (l *Link) UpdateLvap(ctx context.Context, c *wireless.Client) error {
	return l.write(ctx, handlerSetVap, lvapArgs(c))
}

func (l *Link) RemoveLvap(ctx context.Context, c *wireless.Client) error {
	return l.write(ctx, handlerRemoveVap, c.HwAddr().String())
}

func (l *Link) SendProbeResponse(ctx context.Context, client, bssid wireless.HardwareAddr, ssids []string) error {
	args := client.String() + " " + bssid.String()
	if len(ssids) > 0 {
		args += " " + strings.Join(ssids, " ")
	}

	return l.write(ctx, handlerSendProbeResponse, args)
}

func (l *Link) SetSubscriptions(ctx context.Context, subscription string) error {
	return l.write(ctx, handlerSubscriptions, subscription)
}

func (l *Link) SwitchChannel(ctx context.Context, client wireless.HardwareAddr, mode, channel, count string) error {
	return l.write(ctx, handlerChannelSwitch, strings.Join([]string{client.String(), mode, channel, count}, " "))
}

// LvapTable reads the LVAPs the agent currently runs.
func (l *Link) LvapTable(ctx context.Context) ([]*wireless.Client, error) {
	body, err := l.read(ctx, handlerLvapTable, "")
	if err != nil {
		return nil, err
	}

	return parseLvapTable(body, l.logger), nil
}

// ClientStats reads per-station counters keyed by client address.
func (l *Link) ClientStats(ctx context.Context) (map[wireless.HardwareAddr]map[string]string, error) {
	body, err := l.read(ctx, handlerClientStats, "")
	if err != nil {
		return nil, err
	}

	return parseClientStats(body, l.logger), nil
}

func (l *Link) DeviceInfo(ctx context.Context) (string, error) {
	body, err := l.read(ctx, handlerDeviceInfo, "")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true

	return l.conn.Close()
}

func lvapArgs(c *wireless.Client) string {
	parts := []string{c.HwAddr().String(), c.IPAddr().String(), c.Lvap().Bssid().String()}

	return strings.Join(append(parts, c.Lvap().Ssids()...), " ")
}

func (l *Link) write(ctx context.Context, handler, args string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.begin(ctx); err != nil {
		return err
	}

	if err := l.send("write", handler, args); err != nil {
		l.logger.Warn().Err(err).Str("agent", l.addr.String()).Str("handler", handler).Msg("Control write failed")

		return err
	}

	return nil
}

func (l *Link) read(ctx context.Context, handler, args string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.begin(ctx); err != nil {
		return nil, err
	}

	if err := l.send("read", handler, args); err != nil {
		return nil, err
	}

	length, err := l.readHeader()
	if err != nil {
		// Drop whatever is buffered so the next request starts clean.
		_, _ = l.reader.Discard(l.reader.Buffered())

		l.logger.Warn().Err(err).Str("agent", l.addr.String()).Str("handler", handler).Msg("Control read failed")

		return nil, err
	}

	body := make([]byte, length)
	if n, err := io.ReadFull(l.reader, body); err != nil {
		l.resync(int64(length - n))

		return nil, fmt.Errorf("read %s body: %w", handler, err)
	}

	return body, nil
}

// resync skips the unread part of a response body so the next header lines
// up. When the rest never arrives the connection is replaced. Callers hold mu.
func (l *Link) resync(remaining int64) {
	if err := l.conn.SetDeadline(time.Now().Add(l.ioTimeout)); err == nil {
		if _, err := io.CopyN(io.Discard, l.reader, remaining); err == nil {
			return
		}
	}

	_ = l.conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), l.ioTimeout)
	defer cancel()

	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", l.addr.String())
	if err != nil {
		l.closed = true
		l.logger.Error().Err(err).Str("agent", l.addr.String()).Msg("Control link lost while resynchronizing")

		return
	}

	l.conn = conn
	l.reader = bufio.NewReader(conn)

	l.logger.Warn().Str("agent", l.addr.String()).Msg("Control link reconnected after truncated response")
}

// begin checks the link is usable and arms the I/O deadline. Callers hold mu.
func (l *Link) begin(ctx context.Context) error {
	if l.closed {
		return ErrLinkClosed
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(l.ioTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	return l.conn.SetDeadline(deadline)
}

func (l *Link) send(verb, handler, args string) error {
	line := verb + " " + handler
	if args != "" {
		line += " " + args
	}

	if _, err := io.WriteString(l.conn, line+"\n"); err != nil {
		return fmt.Errorf("%s %s: %w", verb, handler, err)
	}

	return nil
}

// readHeader consumes "<tag> <handler> <length>" plus the single delimiter
// that ends the length token.
func (l *Link) readHeader() (int, error) {
	scratch := make([]byte, 0, headerScratchSize)

	var (
		tokens  []string
		current []byte
	)

	for len(tokens) < headerTokens {
		if len(scratch) == headerScratchSize {
			return 0, fmt.Errorf("%w: header exceeds %d bytes", ErrMalformedHeader, headerScratchSize)
		}

		b, err := l.reader.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("read header: %w", err)
		}

		scratch = append(scratch, b)

		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			if len(current) > 0 {
				tokens = append(tokens, string(current))
				current = current[:0]
			}

			continue
		}

		current = append(current, b)
	}

	length, err := strconv.Atoi(tokens[2])
	if err != nil || length < 0 {
		return 0, fmt.Errorf("%w: length %q", ErrMalformedHeader, tokens[2])
	}

	return length, nil
}
