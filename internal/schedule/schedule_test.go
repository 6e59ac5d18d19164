// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"0 19 * * 1-5", false},
		{"@daily", false},
		{"@every 30m", false},
		{"0 0 19 * * *", true},
		{"not a schedule", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := Validate(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNext(t *testing.T) {
	from := time.Date(2026, 3, 13, 18, 30, 0, 0, time.UTC) // Friday

	next, err := Next("0 19 * * 1-5", "", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 13, 19, 0, 0, 0, time.UTC), next.UTC())

	// After Friday's run the next weekday is Monday.
	next, err = Next("0 19 * * 1-5", "UTC", next)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 16, 19, 0, 0, 0, time.UTC), next.UTC())

	_, err = Next("0 19 * * 1-5", "Nowhere/Special", from)
	assert.Error(t, err)
}

func TestRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var calls atomic.Int32
	err := Run(ctx, "@every 1h", "", func(context.Context) { calls.Add(1) })
	require.NoError(t, err)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRunRejectsBadSpec(t *testing.T) {
	err := Run(context.Background(), "bogus", "", func(context.Context) {})
	assert.Error(t, err)
}
