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
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/models"
	"github.com/carverauto/sdwn/pkg/natsutil"
	"github.com/carverauto/sdwn/pkg/substrate"
)

var errInvalidPort = errors.New("agent_control_port must be between 1 and 65535")

const (
	DefaultAgentListenAddr  = ":2819"
	DefaultAgentControlPort = 6777
	DefaultAgentDialTimeout = 3 * time.Second
	DefaultPoolFile         = "Poolfile"
	DefaultHTTPListenAddr   = ":8080"
)

// Config is the master's service configuration.
type Config struct {
	AgentListenAddr    string                        `json:"agent_listen_addr"`
	AgentControlPort   int                           `json:"agent_control_port"`
	AgentTimeout       models.Duration               `json:"agent_timeout"`
	AssocTimeout       models.Duration               `json:"assoc_timeout"`
	AgentDialTimeout   models.Duration               `json:"agent_dial_timeout"`
	WorkerLimit        int64                         `json:"worker_limit"`
	PoolFile           string                        `json:"pool_file"`
	HTTPListenAddr     string                        `json:"http_listen_addr"`
	ForwardingElements []substrate.ForwardingElement `json:"forwarding_elements"`
	Events             *natsutil.EventsConfig        `json:"events,omitempty"`
	Logging            *logger.Config                `json:"logging,omitempty"`
}

// DefaultConfig returns a config with every default filled in, including
// the status API address, which a loaded file leaves empty unless set.
func DefaultConfig() *Config {
	c := &Config{HTTPListenAddr: DefaultHTTPListenAddr}
	c.applyDefaults()

	return c
}

func (c *Config) applyDefaults() {
	if c.AgentListenAddr == "" {
		c.AgentListenAddr = DefaultAgentListenAddr
	}

	if c.AgentControlPort == 0 {
		c.AgentControlPort = DefaultAgentControlPort
	}

	if c.AgentTimeout == 0 {
		c.AgentTimeout = models.Duration(DefaultAgentTimeout)
	}

	if c.AssocTimeout == 0 {
		c.AssocTimeout = models.Duration(DefaultAssocTimeout)
	}

	if c.AgentDialTimeout == 0 {
		c.AgentDialTimeout = models.Duration(DefaultAgentDialTimeout)
	}

	if c.PoolFile == "" {
		c.PoolFile = DefaultPoolFile
	}
}

// Validate implements config.Validator. It fills defaults before checking.
func (c *Config) Validate() error {
	c.applyDefaults()

	if c.AgentControlPort < 1 || c.AgentControlPort > 65535 {
		return fmt.Errorf("%w: %d", errInvalidPort, c.AgentControlPort)
	}

	if c.AgentTimeout < 0 || c.AssocTimeout < 0 || c.AgentDialTimeout < 0 {
		return ErrInvalidTimeout
	}

	for _, fe := range c.ForwardingElements {
		if fe.DatapathID == "" || !fe.Addr.IsValid() {
			return fmt.Errorf("%w: %+v", substrate.ErrInvalidElement, fe)
		}
	}

	if c.Events != nil {
		if err := c.Events.Validate(); err != nil {
			return fmt.Errorf("events: %w", err)
		}
	}

	return nil
}

// ControlAddr is the TCP address of an agent's control channel.
func (c *Config) ControlAddr(agent netip.Addr) netip.AddrPort {
	return netip.AddrPortFrom(agent, uint16(c.AgentControlPort))
}
