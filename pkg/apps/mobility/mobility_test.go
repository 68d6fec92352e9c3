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

package mobility

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/sdwn/pkg/apps/apptest"
	"github.com/carverauto/sdwn/pkg/scheduler"
	"github.com/carverauto/sdwn/pkg/wireless"
)

func newMockClock(t *testing.T, now *atomic.Int64) scheduler.Clock {
	t.Helper()

	clock := scheduler.NewMockClock(gomock.NewController(t))
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return time.Unix(0, now.Load()) }).AnyTimes()

	return clock
}

func TestSignalDrivenHandoff(t *testing.T) {
	env := apptest.New(t)
	env.Network("pool-1", "sdwn")
	a1 := env.Agent("172.17.2.161", "pool-1")
	a2 := env.Agent("172.17.2.162", "pool-1")
	client := env.Client(a1, "00:00:00:00:00:01", "sdwn")
	hw := client.HwAddr()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var now atomic.Int64

	at := func(d time.Duration) { now.Store(start.Add(d).UnixNano()) }
	at(0)

	m := New(WithClock(newMockClock(t, &now)))
	m.Run(env.Master.NewAppContext("pool-1", Name))

	serving := func() string {
		addr, _ := client.Lvap().AgentAddr()
		return addr.String()
	}

	env.Master.ReceivePublish(a1, hw, "mobility_signal", "-60")

	at(time.Second)
	env.Master.ReceivePublish(a2, hw, "mobility_signal", "-40")
	assert.Equal(t, a1.String(), serving(), "inside hysteresis window")

	at(3500 * time.Millisecond)
	env.Master.ReceivePublish(a2, hw, "mobility_signal", "-55")
	assert.Equal(t, a1.String(), serving(), "below signal margin")

	at(3600 * time.Millisecond)
	env.Master.ReceivePublish(a2, hw, "mobility_signal", "-50")
	assert.Equal(t, a2.String(), serving())

	require.Eventually(t, func() bool {
		return env.Has(a2, "add_vap 00:00:00:00:00:01") && env.Has(a1, "remove_vap 00:00:00:00:00:01")
	}, 2*time.Second, 5*time.Millisecond)

	at(9 * time.Second)
	env.Master.ReceivePublish(a1, hw, "mobility_signal", "-90")
	assert.Equal(t, a1.String(), serving(), "idle client follows any reporting agent")
}

func TestSignalFromServingAgentRefreshesStats(t *testing.T) {
	env := apptest.New(t)
	env.Network("pool-1", "sdwn")
	a1 := env.Agent("172.17.2.161", "pool-1")
	a2 := env.Agent("172.17.2.162", "pool-1")
	client := env.Client(a1, "00:00:00:00:00:01", "sdwn")

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var now atomic.Int64

	now.Store(start.UnixNano())

	m := New(WithClock(newMockClock(t, &now)))
	m.Run(env.Master.NewAppContext("pool-1", Name))

	for i := 1; i <= 3; i++ {
		now.Store(start.Add(time.Duration(i) * 3 * time.Second).UnixNano())
		env.Master.ReceivePublish(a1, client.HwAddr(), "mobility_signal", "-70")
	}

	now.Store(start.Add(10 * time.Second).UnixNano())
	env.Master.ReceivePublish(a2, client.HwAddr(), "mobility_signal", "-65")

	addr, _ := client.Lvap().AgentAddr()
	assert.Equal(t, a1, addr)
}

func TestMalformedSignalsIgnored(t *testing.T) {
	env := apptest.New(t)
	env.Network("pool-1", "sdwn")
	a1 := env.Agent("172.17.2.161", "pool-1")
	client := env.Client(a1, "00:00:00:00:00:01", "sdwn")

	m := New()
	m.Run(env.Master.NewAppContext("pool-1", Name))

	env.Master.ReceivePublish(a1, client.HwAddr(), "mobility_signal", "")
	env.Master.ReceivePublish(a1, client.HwAddr(), "mobility_signal", "strong")
	env.Master.ReceivePublish(a1, client.HwAddr(), "mobility_signal", "-40 extra")
	env.Master.ReceivePublish(a1, apptest.HW(t, "00:00:00:00:00:09"), "mobility_signal", "-40")

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.clients)
}

func TestNewClientNarrowsSignalSubscription(t *testing.T) {
	env := apptest.New(t)
	env.Network("pool-1", "sdwn")
	a1 := env.Agent("172.17.2.161", "pool-1")
	a2 := env.Agent("172.17.2.162", "pool-1")
	client := env.Client(a1, "00:00:00:00:00:01", "sdwn")

	m := New()
	m.Run(env.Master.NewAppContext("pool-1", Name))

	env.Master.ReceiveAssoc(a1, client.HwAddr(), "sta")

	want := "subscriptions mobility_signal 00:00:00:00:00:01"
	require.Eventually(t, func() bool { return env.Has(a1, want) && env.Has(a2, want) }, 2*time.Second, 5*time.Millisecond)

	var signalSubs []wireless.Subscription

	for _, s := range env.Master.Hub().Subscriptions() {
		if s.EventType == wireless.EventMobilitySignal {
			signalSubs = append(signalSubs, s)
		}
	}

	require.Len(t, signalSubs, 1)
	assert.Equal(t, "00:00:00:00:00:01", signalSubs[0].Filter)
}
