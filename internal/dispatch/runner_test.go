// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	key  string
	data string
}

type fakeSink struct {
	mu     sync.Mutex
	writes []write
	err    error
}

func (s *fakeSink) Write(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, write{key, string(data)})
	return s.err
}

func staticSetup(id string, n int) func(context.Context) (Batch[int], error) {
	return func(context.Context) (Batch[int], error) {
		return Batch[int]{ID: id, Items: makeItems(n)}, nil
	}
}

func failing(ids ...string) Executor[int] {
	fail := map[string]bool{}
	for _, id := range ids {
		fail[id] = true
	}
	return func(_ context.Context, item Item[int]) error {
		if fail[item.ID] {
			return errors.New("InvalidParameter: simulated")
		}
		return nil
	}
}

func TestDerivedKey(t *testing.T) {
	tests := []struct {
		key      string
		suffix   string
		expected string
	}{
		{"push/batch_01.json.gz", ErrorLogSuffix, "push/batch_01_error.log"},
		{"lists/mailing_14032016.csv.gz", ErrorLogSuffix, "lists/mailing_14032016_error.log"},
		{"cf/E2ABC.2016-03-14-09.abcd.gz", ErrorLogSuffix, "cf/E2ABC.2016-03-14-09.abcd_error.log"},
		{"plain.json", ErrorLogSuffix, "plain_error.log"},
		{"noext", ErrorLogSuffix, "noext_error.log"},
		{"push/batch_01.json.gz", "_time.log", "push/batch_01_time.log"},
		{"", ErrorLogSuffix, "_error.log"},
	}

	for _, tt := range tests {
		t.Run(tt.key+tt.suffix, func(t *testing.T) {
			assert.Equal(t, tt.expected, DerivedKey(tt.key, tt.suffix))
		})
	}
	assert.Equal(t, "a/b_error.log", ErrorLogKey("a/b.csv.gz"))
}

func TestRunnerPartialFailure(t *testing.T) {
	sink := &fakeSink{}
	clock := clockwork.NewFakeClockAt(time.Date(2016, 3, 14, 10, 0, 0, 0, time.UTC))
	r := &Runner[int]{
		Name:       "test",
		Setup:      staticSetup("push/batch.json.gz", 5),
		Dispatcher: New(2, failing("item-0", "item-4"), WithClock(clock)),
		Sink:       sink,
		Clock:      clock,
	}

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "push/batch.json.gz", report.Batch)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 3, report.Succeeded())
	assert.Equal(t, "push/batch_error.log", report.ErrorKey)
	assert.Len(t, report.Errors, 2)

	require.Len(t, sink.writes, 1)
	assert.Equal(t, "push/batch_error.log", sink.writes[0].key)
	lines := strings.Split(sink.writes[0].data, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, sink.writes[0].data, ", item-0, InvalidParameter: simulated")
	assert.Contains(t, sink.writes[0].data, ", item-4, InvalidParameter: simulated")
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "2016-03-14 10:00:00 UTC, "), line)
	}
	assert.Equal(t, Idle, r.State())
}

func TestRunnerAllSucceed(t *testing.T) {
	sink := &fakeSink{}
	r := &Runner[int]{
		Name:       "test",
		Setup:      staticSetup("lists/ok.csv.gz", 3),
		Dispatcher: New(10, failing()),
		Sink:       sink,
	}

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.ErrorKey)
	assert.Empty(t, sink.writes)
}

func TestRunnerEmptyBatch(t *testing.T) {
	sink := &fakeSink{}
	var calls atomic.Int32
	r := &Runner[int]{
		Name:  "test",
		Setup: staticSetup("empty.json.gz", 0),
		Dispatcher: New(4, func(context.Context, Item[int]) error {
			calls.Add(1)
			return nil
		}),
		Sink: sink,
	}

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, int32(0), calls.Load())
	assert.Empty(t, sink.writes)
}

func TestRunnerSetupError(t *testing.T) {
	sink := &fakeSink{}
	var calls atomic.Int32
	missing := errors.New("text_message.txt and html_message.html not found")
	r := &Runner[int]{
		Name: "mail",
		Setup: func(context.Context) (Batch[int], error) {
			return Batch[int]{}, missing
		},
		Dispatcher: New(4, func(context.Context, Item[int]) error {
			calls.Add(1)
			return nil
		}),
		Sink: sink,
	}

	_, err := r.Run(context.Background())
	require.Error(t, err)

	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.ErrorIs(t, err, missing)
	assert.Equal(t, int32(0), calls.Load())
	assert.Empty(t, sink.writes)
}

func TestRunnerSinkFailure(t *testing.T) {
	denied := errors.New("AccessDenied")
	sink := &fakeSink{err: denied}
	var calls atomic.Int32
	r := &Runner[int]{
		Name:  "test",
		Setup: staticSetup("batch.json.gz", 4),
		Dispatcher: New(2, func(_ context.Context, item Item[int]) error {
			calls.Add(1)
			if item.ID == "item-2" {
				return errors.New("EndpointDisabled")
			}
			return nil
		}),
		Sink: sink,
	}

	report, err := r.Run(context.Background())
	require.Error(t, err)

	var reportErr *ReportError
	require.ErrorAs(t, err, &reportErr)
	assert.ErrorIs(t, err, denied)
	assert.Equal(t, "batch_error.log", reportErr.Key)
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, 1, report.Failed)
	require.Len(t, sink.writes, 1)
}

func TestRunnerNoCrossBatchLeakage(t *testing.T) {
	sink := &fakeSink{}
	batches := []Batch[int]{
		{ID: "first.json.gz", Items: []Item[int]{{ID: "a"}, {ID: "b"}}},
		{ID: "second.json.gz", Items: []Item[int]{{ID: "c"}, {ID: "d"}}},
	}
	next := 0
	r := &Runner[int]{
		Name: "test",
		Setup: func(context.Context) (Batch[int], error) {
			b := batches[next]
			next++
			return b, nil
		},
		Dispatcher: New(2, failing("a", "b", "c")),
		Sink:       sink,
	}

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	second, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, first.Failed)
	assert.Equal(t, 1, second.Failed)
	require.Len(t, sink.writes, 2)
	assert.Equal(t, "second_error.log", sink.writes[1].key)
	assert.Contains(t, sink.writes[1].data, ", c, ")
	assert.NotContains(t, sink.writes[1].data, ", a, ")
	assert.NotContains(t, sink.writes[1].data, ", b, ")
}

func TestRunnerHooks(t *testing.T) {
	sink := &fakeSink{}
	var order []string
	r := &Runner[int]{
		Name:       "test",
		Setup:      staticSetup("batch.csv.gz", 2),
		Dispatcher: New(1, failing("item-1")),
		Sink:       sink,
		Hooks: []Hook{
			func(_ context.Context, report Report) error {
				order = append(order, "failing hook")
				assert.Equal(t, 1, report.Failed)
				assert.Empty(t, sink.writes)
				return errors.New("delete failed")
			},
			func(context.Context, Report) error {
				order = append(order, "second hook")
				return nil
			},
		},
	}

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"failing hook", "second hook"}, order)
	assert.Len(t, sink.writes, 1)
}

func TestReportTimeLogAndRows(t *testing.T) {
	start := time.Unix(1457949600, 0)
	r := Report{
		Batch:    "b.json.gz",
		Total:    1200,
		Failed:   2,
		ErrorKey: "b_error.log",
		Started:  start,
		Finished: start.Add(1500 * time.Millisecond),
	}

	assert.Equal(t, "1457949600.000000, 1457949601.500000, 1.500000", string(r.TimeLog()))
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
	assert.Equal(t, [][]string{{"b.json.gz", "1,200", "1,198", "2", "1.5s", "b_error.log"}}, r.Rows())
	assert.Len(t, r.Columns(), len(r.Rows()[0]))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "dispatching", Dispatching.String())
	assert.Equal(t, "draining", Draining.String())
	assert.Equal(t, "reporting", Reporting.String())
	assert.Equal(t, "unknown", State(9).String())
}
