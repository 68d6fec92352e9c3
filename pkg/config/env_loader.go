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

package config

import (
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/models"
)

var (
	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")
)

var durationTypes = map[reflect.Type]bool{
	reflect.TypeOf(time.Duration(0)):    true,
	reflect.TypeOf(models.Duration(0)): true,
}

// EnvConfigLoader fills a config struct from environment variables named
// after its JSON tags: SDWN_AGENT_TIMEOUT sets agent_timeout and
// SDWN_EVENTS_URL sets events.url.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a new environment variable config loader.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load implements ConfigLoader. A complete document in <prefix>CONFIG_JSON
// wins over individual variables.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	if jsonConfig := os.Getenv(e.prefix + "CONFIG_JSON"); jsonConfig != "" {
		if err := json.Unmarshal([]byte(jsonConfig), dst); err != nil {
			return fmt.Errorf("failed to unmarshal CONFIG_JSON: %w", err)
		}

		e.logger.Info().Msg("Loaded configuration from CONFIG_JSON environment variable")

		return nil
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrDstMustBeNonNilPointer
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrDstMustBePointerToStruct
	}

	e.fill(v, e.prefix)

	return nil
}

// fill walks the JSON-tagged fields of v and reports how many variables were applied.
func (e *EnvConfigLoader) fill(v reflect.Value, prefix string) int {
	t := v.Type()
	applied := 0

	for i := range t.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if tag == "" || tag == "-" {
			continue
		}

		name := prefix + strings.ToUpper(tag)

		n, err := e.fillField(field, name)
		if err != nil {
			e.logger.Warn().Err(err).Str("env", name).Msg("Ignoring environment variable")
		}

		applied += n
	}

	return applied
}

func (e *EnvConfigLoader) fillField(field reflect.Value, name string) (int, error) {
	switch {
	case field.Kind() == reflect.Struct && !isTextField(field):
		return e.fill(field, name+"_"), nil
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		// a nested block stays nil unless one of its variables is set
		section := reflect.New(field.Type().Elem())
		if !field.IsNil() {
			section.Elem().Set(field.Elem())
		}

		n := e.fill(section.Elem(), name+"_")
		if n > 0 {
			field.Set(section)
		}

		return n, nil
	}

	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return 0, nil
	}

	if err := decodeValue(field, value); err != nil {
		return 0, err
	}

	return 1, nil
}

func isTextField(field reflect.Value) bool {
	_, ok := field.Addr().Interface().(encoding.TextUnmarshaler)

	return ok
}

func decodeValue(field reflect.Value, value string) error {
	if durationTypes[field.Type()] {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("bad duration %q: %w", value, err)
		}

		field.SetInt(int64(d))

		return nil
	}

	if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
		return u.UnmarshalText([]byte(value))
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("bad bool %q: %w", value, err)
		}

		field.SetBool(b)

		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("bad integer %q: %w", value, err)
		}

		field.SetInt(n)

		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("bad unsigned integer %q: %w", value, err)
		}

		field.SetUint(n)

		return nil
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			var items []string

			for _, item := range strings.Split(value, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}

			field.Set(reflect.ValueOf(items).Convert(field.Type()))

			return nil
		}
	}

	// anything else is given as inline JSON, e.g. a list of forwarding elements
	if err := json.Unmarshal([]byte(value), field.Addr().Interface()); err != nil {
		return fmt.Errorf("bad %s value: %w", field.Kind(), err)
	}

	return nil
}
