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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	OutputStdout  = "stdout"
	OutputStderr  = "stderr"
	OutputDiscard = "discard"
)

// Config is the "logging" block of a service config.
type Config struct {
	Level      string `json:"level"`
	Debug      bool   `json:"debug"`
	Output     string `json:"output"`
	TimeFormat string `json:"time_format"`
}

// Writer resolves the configured output stream. Unknown names mean stdout.
func (c *Config) Writer() io.Writer {
	if c == nil {
		return os.Stdout
	}

	switch c.Output {
	case OutputStderr:
		return os.Stderr
	case OutputDiscard:
		return io.Discard
	default:
		return os.Stdout
	}
}

// ZerologLevel resolves the effective level, Debug taking precedence over Level.
func (c *Config) ZerologLevel() (zerolog.Level, error) {
	if c == nil || (c.Level == "" && !c.Debug) {
		return zerolog.InfoLevel, nil
	}

	if c.Debug {
		return zerolog.DebugLevel, nil
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	return level, nil
}

// Build creates a timestamped logger from cfg; nil means DefaultConfig.
// A custom TimeFormat is process-wide because zerolog keeps it globally.
func Build(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := cfg.ZerologLevel()
	if err != nil {
		return nil, err
	}

	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	return New(zerolog.New(cfg.Writer()).Level(level).With().Timestamp().Logger()), nil
}
