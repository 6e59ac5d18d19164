// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the object does not exist.
var ErrNotFound = errors.New("object not found")

// Store reads and writes whole objects addressed by bucket and key.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte) error
	Delete(ctx context.Context, bucket, key string) error
}

// Sink binds a Store and bucket into a dispatch.Sink.
type Sink struct {
	Store  Store
	Bucket string
}

// Write implements dispatch.Sink.
func (s Sink) Write(ctx context.Context, key string, data []byte) error {
	return s.Store.Put(ctx, s.Bucket, key, data)
}
