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

// Package apps maps application names from the pool file to constructors.
package apps

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/carverauto/sdwn/pkg/apps/clientstatus"
	"github.com/carverauto/sdwn/pkg/apps/eventexport"
	"github.com/carverauto/sdwn/pkg/apps/mobility"
	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/poolfile"
	"github.com/carverauto/sdwn/pkg/scheduler"
	"github.com/carverauto/sdwn/pkg/wireless"
)

var (
	ErrUnknownApplication = errors.New("unknown application")
	ErrEventsDisabled     = errors.New("event export requires an events configuration")
)

// Deps are the shared collaborators constructors may use.
type Deps struct {
	Clock         scheduler.Clock
	Events        eventexport.Publisher
	SubjectPrefix string
}

// Factory builds one application instance.
type Factory func(deps Deps) (wireless.Application, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default knows every application shipped with the master.
func Default() *Registry {
	r := NewRegistry()

	r.Register(mobility.Name, func(deps Deps) (wireless.Application, error) {
		if deps.Clock == nil {
			return mobility.New(), nil
		}

		return mobility.New(mobility.WithClock(deps.Clock)), nil
	})
	r.Register(clientstatus.Name, func(Deps) (wireless.Application, error) {
		return clientstatus.New(), nil
	})
	r.Register(eventexport.Name, func(deps Deps) (wireless.Application, error) {
		if deps.Events == nil {
			return nil, ErrEventsDisabled
		}

		return eventexport.New(deps.Events, deps.SubjectPrefix), nil
	})

	return r
}

// Register adds or replaces the constructor for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func (r *Registry) New(name string, deps Deps) (wireless.Application, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownApplication, name)
	}

	return f(deps)
}

// StartAll builds every application the pools name, then starts them. Nothing
// starts if any name fails to build.
func (r *Registry) StartAll(master *wireless.Master, pools []poolfile.Pool, deps Deps, log logger.Logger) error {
	type binding struct {
		pool string
		app  wireless.Application
	}

	var bindings []binding

	for _, p := range pools {
		for _, name := range p.Applications {
			app, err := r.New(name, deps)
			if err != nil {
				return fmt.Errorf("pool %s: %w", p.Name, err)
			}

			bindings = append(bindings, binding{pool: p.Name, app: app})
		}
	}

	for _, b := range bindings {
		master.StartApplication(b.pool, b.app)
	}

	log.Info().Int("applications", len(bindings)).Msg("Applications started")

	return nil
}
