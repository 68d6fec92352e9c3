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

// Package agentserver receives the agents' UDP uplink and dispatches each
// datagram to the master.
package agentserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/wireless"
)

const datagramSize = 1024

// Handler receives decoded uplink messages.
type Handler interface {
	ReceivePing(addr netip.Addr)
	ReceiveProbe(addr netip.Addr, hw wireless.HardwareAddr, ssid string)
	ReceiveAssoc(addr netip.Addr, hw wireless.HardwareAddr, staInfo string)
	ReceiveDisassoc(addr netip.Addr, hw wireless.HardwareAddr, reason string)
	ReceivePublish(addr netip.Addr, hw wireless.HardwareAddr, eventType, params string)
}

// Executor runs dispatch work off the receive loop.
type Executor interface {
	Execute(fn func())
}

var _ Handler = (*wireless.Master)(nil)

// Server is the UDP uplink listener.
type Server struct {
	addr    string
	handler Handler
	exec    Executor
	logger  logger.Logger

	mu   sync.Mutex
	conn *net.UDPConn
}

func NewServer(addr string, handler Handler, exec Executor, log logger.Logger) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		exec:    exec,
		logger:  log,
	}
}

func (*Server) Name() string {
	return "agent-uplink"
}

// Listen binds the uplink socket.
func (s *Server) Listen(ctx context.Context) error {
	var lc net.ListenConfig

	pc, err := lc.ListenPacket(ctx, "udp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}

	s.mu.Lock()
	s.conn = pc.(*net.UDPConn)
	s.mu.Unlock()

	s.logger.Info().Str("addr", pc.LocalAddr().String()).Msg("Listening for agent messages")

	return nil
}

// LocalAddr is the bound address, or nil before Listen.
func (s *Server) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	return s.conn.LocalAddr()
}

// Run binds the socket if needed and serves until ctx is done. A receive
// failure ends Run with ErrListenerFailed.
func (s *Server) Run(ctx context.Context) error {
	if s.LocalAddr() == nil {
		if err := s.Listen(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	buf := make([]byte, datagramSize)

	for {
		n, from, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			s.logger.Error().Err(err).Msg("Agent socket receive failed")

			return fmt.Errorf("%w: %w", ErrListenerFailed, err)
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		addr := from.Addr().Unmap()

		s.exec.Execute(func() { s.dispatch(addr, datagram) })
	}
}

func (s *Server) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

func (s *Server) dispatch(addr netip.Addr, datagram []byte) {
	msg, err := Decode(datagram)
	if err != nil {
		if errors.Is(err, ErrUnknownMessage) {
			s.logger.Debug().Err(err).Str("agent", addr.String()).Msg("Ignoring agent message")

			return
		}

		s.logger.Warn().Err(err).Str("agent", addr.String()).Msg("Dropping agent message")

		return
	}

	switch msg.Kind {
	case KindPing:
		s.handler.ReceivePing(addr)
	case KindProbe:
		s.handler.ReceiveProbe(addr, msg.Client, msg.Ssid)
	case KindAssoc:
		s.handler.ReceiveAssoc(addr, msg.Client, msg.StaInfo)
	case KindDisassoc:
		s.handler.ReceiveDisassoc(addr, msg.Client, msg.Reason)
	case KindPublish:
		s.handler.ReceivePublish(addr, msg.Client, msg.EventType, msg.Params)
	}
}
