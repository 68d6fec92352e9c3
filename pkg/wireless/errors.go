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

import "errors"

var (
	ErrInvalidHardwareAddr = errors.New("invalid hardware address")
	ErrInvalidTimeout      = errors.New("timeout must be positive")
	ErrUnknownEventType    = errors.New("unknown event type")
	ErrReservedPool        = errors.New("pool name is reserved")
	ErrAgentNotFound       = errors.New("agent not found")
	ErrAgentNotInPool      = errors.New("agent is not in the application's pool")
	ErrClientNotFound      = errors.New("client not found")
)
