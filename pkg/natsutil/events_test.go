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

package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sdwn/pkg/logger"
	"github.com/carverauto/sdwn/pkg/models"
)

var errTestFixture = errors.New("fixture error")

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{
			name:    "adds subject when list empty",
			subject: "events.sdwn.client.new",
			want:    []string{"events.sdwn.client.new"},
		},
		{
			name:     "keeps list when wildcard matches",
			subjects: []string{"events.sdwn.*.new"},
			subject:  "events.sdwn.client.new",
			want:     []string{"events.sdwn.*.new"},
		},
		{
			name:     "keeps list when greater wildcard matches",
			subjects: []string{"events.sdwn.>"},
			subject:  "events.sdwn.client.new",
			want:     []string{"events.sdwn.>"},
		},
		{
			name:     "keeps list when pattern is identical",
			subjects: []string{"events.sdwn.>"},
			subject:  "events.sdwn.>",
			want:     []string{"events.sdwn.>"},
		},
		{
			name:     "appends when unmatched",
			subjects: []string{"logs.syslog.*"},
			subject:  "events.sdwn.client.new",
			want:     []string{"logs.syslog.*", "events.sdwn.client.new"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ensureSubjectList(append([]string(nil), tc.subjects...), tc.subject)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact match", "events.sdwn.client", "events.sdwn.client", true},
		{"single wildcard", "events.*.client", "events.sdwn.client", true},
		{"greater wildcard", "events.>", "events.sdwn.client", true},
		{"greater needs a token", "events.sdwn.>", "events.sdwn", false},
		{"no match length", "events.*", "events.sdwn.client", false},
		{"no match tokens", "logs.syslog.*", "events.sdwn.client", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, matchesSubject(tc.pattern, tc.subject))
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	assert.True(t, isStreamMissingErr(jetstream.ErrStreamNotFound))
	assert.True(t, isStreamMissingErr(jetstream.ErrNoStreamResponse))
	assert.True(t, isStreamMissingErr(nats.ErrNoResponders))
	assert.False(t, isStreamMissingErr(errTestFixture))
}

func TestEventsConfigValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, (&EventsConfig{}).Validate(), errMissingURL)

	cfg := &EventsConfig{URL: "nats://127.0.0.1:4222"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultStream, cfg.Stream)
	assert.Equal(t, []string{"events.sdwn.>"}, cfg.Subjects())
}

func TestPublishToEmbeddedJetStream(t *testing.T) {
	srv := runJetStreamServer(t)
	defer srv.Shutdown()

	log := logger.NewTestLogger()

	nc, err := Connect(srv.ClientURL(), log)
	require.NoError(t, err)
	defer nc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	publisher, err := CreateEventPublisherWithDomain(ctx, nc, "", DefaultStream, []string{"events.sdwn.>"}, log)
	require.NoError(t, err)

	// A second call finds the stream and leaves it alone.
	_, err = CreateEventPublisherWithDomain(ctx, nc, "", DefaultStream, []string{"events.sdwn.client.new"}, log)
	require.NoError(t, err)

	event, err := publisher.Publish(ctx, "events.sdwn.client.new", "sdwn.client.new", map[string]string{"client": "00:00:00:00:00:01"})
	require.NoError(t, err)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	stream, err := js.Stream(ctx, DefaultStream)
	require.NoError(t, err)

	assert.Equal(t, []string{"events.sdwn.>"}, stream.CachedInfo().Config.Subjects)

	msg, err := stream.GetLastMsgForSubject(ctx, "events.sdwn.client.new")
	require.NoError(t, err)

	var got models.CloudEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))

	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, "1.0", got.SpecVersion)
	assert.Equal(t, "sdwn/master", got.Source)
	assert.Equal(t, "sdwn.client.new", got.Type)
}

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	require.Eventually(t, func() bool {
		return srv.JetStreamEnabled()
	}, 5*time.Second, 50*time.Millisecond, "embedded NATS server not ready for JetStream")

	return srv
}
