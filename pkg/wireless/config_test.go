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

package wireless

import (
	"context"
	"net/netip"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sdwn/pkg/config"
	"github.com/carverauto/sdwn/pkg/logger"
)

func TestSampleConfigLoads(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	var cfg Config

	path := filepath.Join("..", "..", "cmd", "master", "master.json")
	require.NoError(t, config.NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, 6*time.Second, cfg.AgentTimeout.Std())
	assert.Equal(t, ":8080", cfg.HTTPListenAddr)
	require.Len(t, cfg.ForwardingElements, 2)
	assert.Equal(t, netip.MustParseAddr("172.17.2.162"), cfg.ForwardingElements[1].Addr)
	require.NotNil(t, cfg.Events)
	assert.Equal(t, []string{"events.sdwn.>"}, cfg.Events.Subjects())
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestDefaultConfigEnablesAPI(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultHTTPListenAddr, cfg.HTTPListenAddr)
	assert.Equal(t, DefaultAgentDialTimeout, cfg.AgentDialTimeout.Std())
	require.NoError(t, cfg.Validate())
}
