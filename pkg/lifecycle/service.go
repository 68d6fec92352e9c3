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

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/sdwn/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Service is a long-running component. Run blocks until ctx is canceled or the
// service hits an unrecoverable error; Stop releases whatever Run acquired.
type Service interface {
	Name() string
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServerOptions configures RunServices.
type ServerOptions struct {
	Services        []Service
	Logger          logger.Logger
	ShutdownTimeout time.Duration
	// Signals overrides the default SIGINT/SIGTERM set; used by tests.
	Signals []os.Signal
}

// RunServices runs every service until a termination signal arrives, ctx is
// canceled, or one of them fails. The first failure is returned after all
// services have been stopped in reverse order.
func RunServices(ctx context.Context, opts *ServerOptions) error {
	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, signals...)
	defer stopSignals()

	g, runCtx := errgroup.WithContext(sigCtx)

	for _, svc := range opts.Services {
		g.Go(func() error {
			log.Info().Str("service", svc.Name()).Msg("Starting service")

			if err := svc.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", svc.Name(), err)
			}

			return nil
		})
	}

	runErr := g.Wait()
	if runErr != nil {
		log.Error().Err(runErr).Msg("Service failed, shutting down")
	} else {
		log.Info().Msg("Shutdown requested")
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for i := len(opts.Services) - 1; i >= 0; i-- {
		svc := opts.Services[i]
		if err := svc.Stop(stopCtx); err != nil {
			log.Warn().Err(err).Str("service", svc.Name()).Msg("Error stopping service")
		}
	}

	return runErr
}
