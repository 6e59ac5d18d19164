// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package gcm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/awsops/internal/dispatch"
)

type memSink struct {
	mu   sync.Mutex
	data map[string]string
}

func (s *memSink) Write(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[string]string{}
	}
	s.data[key] = string(data)
	return nil
}

func TestRunnerPostsEveryRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "key=secret", r.Header.Get("Authorization"))

		var p Payload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "device-token", p.To)
		assert.Equal(t, "normal", p.Priority)
		assert.Equal(t, DefaultTitle, p.Data.Title)

		_, _ = w.Write([]byte(`{"multicast_id":1,"success":1,"failure":0}`))
	}))
	defer srv.Close()

	sink := &memSink{}
	r := NewRunner(srv.Client(), sink, Options{Endpoint: srv.URL, APIKey: "secret", Token: "device-token", Count: 40, Workers: 5})

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(40), hits.Load())
	assert.Equal(t, 40, report.Total)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, sink.data)
}

func TestRunnerRecordsFailures(t *testing.T) {
	var n atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		switch n.Add(1) % 3 {
		case 0:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Unauthorized\n"))
		case 1:
			_, _ = w.Write([]byte(`{"success":0,"failure":1,"results":[{"error":"InvalidRegistration"}]}`))
		default:
			_, _ = w.Write([]byte(`{"success":1,"failure":0}`))
		}
	}))
	defer srv.Close()

	sink := &memSink{}
	r := NewRunner(srv.Client(), sink, Options{Endpoint: srv.URL, APIKey: "k", Token: "t", Count: 9, Workers: 3})

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, report.Failed)

	log := sink.data[DefaultBatch+dispatch.ErrorLogSuffix]
	assert.Equal(t, 3, strings.Count(log, "HTTP 401: Unauthorized"))
	assert.Equal(t, 3, strings.Count(log, "HTTP 200: InvalidRegistration"))
}

func TestRunnerRequiresCredentials(t *testing.T) {
	r := NewRunner(http.DefaultClient, &memSink{}, Options{Token: "t"})
	_, err := r.Run(context.Background())

	var setupErr *dispatch.SetupError
	assert.ErrorAs(t, err, &setupErr)
}
