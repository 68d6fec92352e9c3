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

package logger

import (
	"os"
	"strconv"
	"strings"
)

const envPrefix = "SDWN_"

// DefaultConfig reads SDWN_LOG_LEVEL, SDWN_LOG_DEBUG, SDWN_LOG_OUTPUT and
// SDWN_LOG_TIME_FORMAT. The unprefixed LOG_LEVEL, DEBUG, LOG_OUTPUT and
// LOG_TIME_FORMAT are honored when the prefixed variable is unset.
func DefaultConfig() *Config {
	return &Config{
		Level:      lookup("LOG_LEVEL", "LOG_LEVEL", "info"),
		Debug:      parseBool(lookup("LOG_DEBUG", "DEBUG", "")),
		Output:     lookup("LOG_OUTPUT", "LOG_OUTPUT", OutputStdout),
		TimeFormat: lookup("LOG_TIME_FORMAT", "LOG_TIME_FORMAT", ""),
	}
}

func lookup(name, fallback, def string) string {
	if v := os.Getenv(envPrefix + name); v != "" {
		return v
	}

	if v := os.Getenv(fallback); v != "" {
		return v
	}

	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	}

	b, _ := strconv.ParseBool(v)

	return b
}
