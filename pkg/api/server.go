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

// Package api serves the master's read-only status over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/wireless"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultMaxConns     = 64
)

// APIServer exposes clients, agents and pools as JSON.
type APIServer struct {
	master         *wireless.Master
	router         *mux.Router
	addr           string
	logger         logger.Logger
	streamInterval time.Duration
	maxConns       int

	mu  sync.Mutex
	srv *http.Server
}

func NewAPIServer(master *wireless.Master, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		master:         master,
		router:         mux.NewRouter(),
		logger:         logger.NewTestLogger(),
		streamInterval: defaultStreamInterval,
		maxConns:       defaultMaxConns,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithLogger sets the server's logger.
func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

// WithListenAddr sets the address Run listens on.
func WithListenAddr(addr string) func(server *APIServer) {
	return func(server *APIServer) {
		server.addr = addr
	}
}

// WithMaxConns caps concurrent connections accepted by Run. Open client
// streams count against it.
func WithMaxConns(n int) func(server *APIServer) {
	return func(server *APIServer) {
		if n > 0 {
			server.maxConns = n
		}
	}
}

func (s *APIServer) setupRoutes() {
	r := s.router.PathPrefix("/sdwn").Subrouter()

	r.HandleFunc("/ap/clients/connected", s.getConnectedClients).Methods(http.MethodGet)
	r.HandleFunc("/agents", s.getAgents).Methods(http.MethodGet)
	r.HandleFunc("/pools/{pool}/clients", s.getPoolClients).Methods(http.MethodGet)
	r.HandleFunc("/clients/{mac}", s.getClient).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions", s.getSubscriptions).Methods(http.MethodGet)
	r.HandleFunc("/stream/clients", s.streamClients).Methods(http.MethodGet)
}

// Handler is the routed handler, for embedding or tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

func (*APIServer) Name() string {
	return "status-api"
}

// Run serves until ctx is canceled or Stop is called.
func (s *APIServer) Run(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}

	ln = netutil.LimitListener(ln, s.maxConns)

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Status API listening")

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *APIServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn().Err(err).Msg("Error encoding response")
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Message: message, Status: statusCode}); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
