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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sdwn/pkg/logger"
)

var errBoom = errors.New("boom")

type fakeService struct {
	name   string
	runErr error

	mu      sync.Mutex
	stopped bool
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Run(ctx context.Context) error {
	if f.runErr != nil {
		return f.runErr
	}

	<-ctx.Done()

	return ctx.Err()
}

func (f *fakeService) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true

	return nil
}

func (f *fakeService) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stopped
}

func TestRunServicesStopsAllOnFailure(t *testing.T) {
	healthy := &fakeService{name: "healthy"}
	failing := &fakeService{name: "failing", runErr: errBoom}

	err := RunServices(context.Background(), &ServerOptions{
		Services: []Service{healthy, failing},
		Logger:   logger.NewTestLogger(),
	})

	require.ErrorIs(t, err, errBoom)
	assert.True(t, healthy.wasStopped())
	assert.True(t, failing.wasStopped())
}

func TestRunServicesReturnsNilOnCancel(t *testing.T) {
	svc := &fakeService{name: "svc"}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := RunServices(ctx, &ServerOptions{Services: []Service{svc}})

	require.NoError(t, err)
	assert.True(t, svc.wasStopped())
}

func TestCreateComponentLogger(t *testing.T) {
	l, err := CreateComponentLogger("master", &logger.Config{Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = CreateComponentLogger("master", &logger.Config{Level: "chatty"})
	require.Error(t, err)
}
