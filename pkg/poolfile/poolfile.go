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

// Package poolfile reads the pool configuration: stanzas of NAME, NODES,
// NETWORKS and APPLICATIONS lines, in that order.
package poolfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"

	"github.com/carverauto/sdwn/pkg/wireless"
)

// ErrMalformed is returned for a missing or out-of-order keyword or a bad value.
var ErrMalformed = errors.New("malformed pool file")

var keywords = [...]string{"NAME", "NODES", "NETWORKS", "APPLICATIONS"}

// Pool is one stanza.
type Pool struct {
	Name         string
	Nodes        []netip.Addr
	Networks     []string
	Applications []string
}

// Load parses the pool file at path.
func Load(path string) ([]Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pool file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads stanzas from r. Blank lines and lines starting with # are skipped.
func Parse(r io.Reader) ([]Pool, error) {
	var (
		pools   []Pool
		current Pool
		next    int
		lineNo  int
	)

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		want := keywords[next]

		if fields[0] != want {
			return nil, fmt.Errorf("%w: line %d: expected %s, got %q", ErrMalformed, lineNo, want, fields[0])
		}

		values := fields[1:]
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: line %d: %s needs at least one value", ErrMalformed, lineNo, want)
		}

		switch want {
		case "NAME":
			if len(values) != 1 {
				return nil, fmt.Errorf("%w: line %d: pool name must be one word", ErrMalformed, lineNo)
			}

			if strings.EqualFold(values[0], wireless.GlobalPool) {
				return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, lineNo, wireless.ErrReservedPool)
			}

			current = Pool{Name: values[0]}
		case "NODES":
			for _, v := range values {
				addr, err := netip.ParseAddr(v)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, lineNo, err)
				}

				current.Nodes = append(current.Nodes, addr.Unmap())
			}
		case "NETWORKS":
			current.Networks = values
		case "APPLICATIONS":
			current.Applications = values
			pools = append(pools, current)
		}

		next = (next + 1) % len(keywords)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pool file: %w", err)
	}

	if next != 0 {
		return nil, fmt.Errorf("%w: stanza %q ends before %s", ErrMalformed, current.Name, keywords[next])
	}

	return pools, nil
}

// Apply records every stanza's agent and SSID membership in reg.
func Apply(pools []Pool, reg *wireless.PoolRegistry) {
	for _, p := range pools {
		for _, node := range p.Nodes {
			reg.AddPoolForAgent(node, p.Name)
		}

		for _, ssid := range p.Networks {
			reg.AddNetworkForPool(p.Name, ssid)
		}
	}
}
