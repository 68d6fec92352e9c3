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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultStreamInterval = 2 * time.Second
	streamWriteTimeout    = 5 * time.Second

	streamTypeClients = "clients"
	streamTypePing    = "ping"
)

// StreamMessage is one frame of the client stream.
type StreamMessage struct {
	Type      string       `json:"type"`
	Clients   []ClientView `json:"clients,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// WithStreamInterval sets how often the client stream polls for changes.
func WithStreamInterval(d time.Duration) func(server *APIServer) {
	return func(server *APIServer) {
		if d > 0 {
			server.streamInterval = d
		}
	}
}

// streamClients pushes the connected-client list over a WebSocket whenever
// it changes, and a ping frame on quiet intervals.
// GET /sdwn/stream/clients
func (s *APIServer) streamClients(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to upgrade to WebSocket")

		return
	}
	defer func() { _ = conn.Close() }()

	// the server's request deadlines stay armed on a hijacked connection
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go drainReads(conn, cancel)

	s.logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("Client stream opened")

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	var last []byte

	for {
		views := s.connectedClientViews()

		current, err := json.Marshal(views)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode client stream frame")

			return
		}

		msg := StreamMessage{Type: streamTypePing, Timestamp: time.Now().UTC()}
		if !bytes.Equal(current, last) {
			msg.Type = streamTypeClients
			msg.Clients = views
			last = current
		}

		if err := writeFrame(conn, &msg); err != nil {
			s.logger.Debug().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Client stream closed")

			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *APIServer) connectedClientViews() []ClientView {
	clients := s.master.Clients().All()
	sortClients(clients)

	return toClientViews(clients)
}

func writeFrame(conn *websocket.Conn, msg *StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}

	return conn.WriteJSON(msg)
}

// drainReads handles control frames and cancels once the peer goes away.
func drainReads(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
