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

package substrate

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLookupByAddr(t *testing.T) {
	table := NewTable()

	_, ok := table.ElementByAddr(netip.MustParseAddr("10.0.0.1"))
	assert.False(t, ok)

	require.NoError(t, table.Register(ForwardingElement{DatapathID: "00:01", Addr: netip.MustParseAddr("10.0.0.1")}))

	fe, ok := table.ElementByAddr(netip.MustParseAddr("::ffff:10.0.0.1"))
	require.True(t, ok)
	assert.Equal(t, "00:01", fe.DatapathID)

	table.Unregister("00:01")

	_, ok = table.ElementByAddr(netip.MustParseAddr("10.0.0.1"))
	assert.False(t, ok)
}

func TestTableRejectsBadElements(t *testing.T) {
	table := NewTable()

	require.ErrorIs(t, table.Register(ForwardingElement{Addr: netip.MustParseAddr("10.0.0.1")}), ErrInvalidElement)
	require.ErrorIs(t, table.Register(ForwardingElement{DatapathID: "00:01"}), ErrInvalidElement)

	require.NoError(t, table.Register(ForwardingElement{DatapathID: "00:01", Addr: netip.MustParseAddr("10.0.0.1")}))
	require.ErrorIs(t, table.Register(ForwardingElement{DatapathID: "00:02", Addr: netip.MustParseAddr("10.0.0.1")}), ErrDuplicateAddr)

	require.NoError(t, table.Register(ForwardingElement{DatapathID: "00:02", Addr: netip.MustParseAddr("10.0.0.2")}))

	elements := table.Elements()
	require.Len(t, elements, 2)
	assert.Equal(t, "00:01", elements[0].DatapathID)
}
