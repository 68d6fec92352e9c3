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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"

	"github.com/carverauto/sdwn/pkg/agentlink"
	"github.com/carverauto/sdwn/pkg/agentserver"
	"github.com/carverauto/sdwn/pkg/api"
	"github.com/carverauto/sdwn/pkg/apps"
	"github.com/carverauto/sdwn/pkg/config"
	"github.com/carverauto/sdwn/pkg/lifecycle"
	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/natsutil"
	"github.com/carverauto/sdwn/pkg/poolfile"
	"github.com/carverauto/sdwn/pkg/scheduler"
	"github.com/carverauto/sdwn/pkg/substrate"
	"github.com/carverauto/sdwn/pkg/wireless"
)

var errFailedToLoadConfig = errors.New("failed to load config")

const schedulerStopTimeout = 5 * time.Second

type options struct {
	configPath string
	poolFile   string
	debug      bool
}

func main() {
	var opts options

	flags := pflag.NewFlagSet("sdwn-master", pflag.ContinueOnError)
	flags.StringVarP(&opts.configPath, "config", "c", "/etc/sdwn/master.json", "path to master config file")
	flags.StringVar(&opts.poolFile, "pool-file", "", "pool file to load (overrides pool_file in the config)")
	flags.BoolVar(&opts.debug, "debug", false, "force debug logging")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		log.Fatalf("Fatal error: %v", err)
	}

	if err := run(opts); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(opts options) error {
	ctx := context.Background()

	var cfg wireless.Config

	if err := config.NewConfig(nil).LoadAndValidate(ctx, opts.configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	if opts.poolFile != "" {
		cfg.PoolFile = opts.poolFile
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = logger.DefaultConfig()
	}

	logConfig.Debug = logConfig.Debug || opts.debug

	masterLogger, err := lifecycle.CreateComponentLogger("master", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	elements := substrate.NewTable()
	for _, fe := range cfg.ForwardingElements {
		if err := elements.Register(fe); err != nil {
			return fmt.Errorf("forwarding element %s: %w", fe.DatapathID, err)
		}
	}

	pools, err := poolfile.Load(cfg.PoolFile)
	if err != nil {
		return err
	}

	sched := scheduler.New(cfg.WorkerLimit, nil, logger.Named(masterLogger, "scheduler"))

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), schedulerStopTimeout)
		defer cancel()

		if err := sched.Stop(stopCtx); err != nil {
			masterLogger.Warn().Err(err).Msg("Worker pool did not drain")
		}
	}()

	dial := agentlink.Dialer(uint16(cfg.AgentControlPort), cfg.AgentDialTimeout.Std(), logger.Named(masterLogger, "agentlink"))

	master := wireless.NewMaster(
		wireless.NewClientRegistry(),
		wireless.NewPoolRegistry(),
		elements,
		dial,
		sched,
		masterLogger,
		wireless.WithMasterAgentTimeout(cfg.AgentTimeout.Std()),
		wireless.WithAssocTimeout(cfg.AssocTimeout.Std()),
	)
	defer master.Stop()

	poolfile.Apply(pools, master.Pools())

	deps := apps.Deps{}

	if cfg.Events != nil {
		nc, pub, err := connectEvents(ctx, cfg.Events, logger.Named(masterLogger, "events"))
		if err != nil {
			return err
		}
		defer func() { _ = nc.Drain() }()

		deps.Events = pub
		deps.SubjectPrefix = cfg.Events.SubjectPrefix
	}

	if err := apps.Default().StartAll(master, pools, deps, masterLogger); err != nil {
		return err
	}

	services := []lifecycle.Service{
		agentserver.NewServer(cfg.AgentListenAddr, master, sched, logger.Named(masterLogger, "uplink")),
	}

	if cfg.HTTPListenAddr != "" {
		services = append(services, api.NewAPIServer(master,
			api.WithListenAddr(cfg.HTTPListenAddr),
			api.WithLogger(logger.Named(masterLogger, "api")),
		))
	}

	return lifecycle.RunServices(ctx, &lifecycle.ServerOptions{
		Services: services,
		Logger:   masterLogger,
	})
}

func connectEvents(ctx context.Context, cfg *natsutil.EventsConfig, log logger.Logger) (*nats.Conn, *natsutil.EventPublisher, error) {
	nc, err := natsutil.Connect(cfg.URL, log)
	if err != nil {
		return nil, nil, err
	}

	pub, err := natsutil.CreateEventPublisherWithDomain(ctx, nc, cfg.Domain, cfg.Stream, cfg.Subjects(), log)
	if err != nil {
		nc.Close()

		return nil, nil, err
	}

	return nc, pub, nil
}
