// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package objstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/awsops/internal/dispatch"
)

func TestDeleteHook(t *testing.T) {
	ctx := context.Background()
	s := NewDirStore(t.TempDir())
	require.NoError(t, s.Put(ctx, "b", "in.json.gz", []byte("x")))

	require.NoError(t, DeleteHook(s, "b", "in.json.gz")(ctx, dispatch.Report{}))
	_, err := s.Get(ctx, "b", "in.json.gz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimeLogHook(t *testing.T) {
	ctx := context.Background()
	s := NewDirStore(t.TempDir())
	start := time.Unix(1464825600, 250000000)
	report := dispatch.Report{Started: start, Finished: start.Add(2 * time.Second)}

	require.NoError(t, TimeLogHook(s, "b", "in.json.gz")(ctx, report))
	got, err := s.Get(ctx, "b", "in.json.gz_time.log")
	require.NoError(t, err)
	assert.Equal(t, "1464825600.250000, 1464825602.250000, 2.000000", string(got))
}
