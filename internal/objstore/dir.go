// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tfctl/awsops/internal/log"
)

// EnvDir names the environment variable overriding the local store root.
const EnvDir = "AWSOPS_STORE_DIR"

// DefaultDir resolves the base directory of a local store.
// Precedence:
//  1. AWSOPS_STORE_DIR, if set and non-empty
//  2. os.UserCacheDir()/awsops/store
//
// Returns ("", false) if a base cannot be resolved.
func DefaultDir() (string, bool) {
	if d, ok := os.LookupEnv(EnvDir); ok && d != "" {
		return d, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "awsops", "store"), true
	}
	return "", false
}

// DirStore is a Store rooted at a local directory. Buckets are
// subdirectories and keys are relative paths beneath them.
type DirStore struct {
	Root string
}

// NewDirStore returns a DirStore rooted at root.
func NewDirStore(root string) *DirStore {
	return &DirStore{Root: root}
}

// path maps bucket and key onto a file beneath Root, refusing keys that
// escape the bucket.
func (s *DirStore) path(bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key are required")
	}
	base := filepath.Join(s.Root, bucket)
	p := filepath.Join(base, filepath.FromSlash(key))
	if p != base && !strings.HasPrefix(p, base+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes bucket %q", key, bucket)
	}
	return p, nil
}

// Get implements Store.
func (s *DirStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	p, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	log.Debugf("dir get: path=%s bytes=%d", p, len(b))
	return b, nil
}

// Put implements Store. Creates directories as needed.
func (s *DirStore) Put(_ context.Context, bucket, key string, data []byte) error {
	p, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(p, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write object: %w", err)
	}
	log.Debugf("dir put: path=%s bytes=%d", p, len(data))
	return nil
}

// Delete implements Store. Deleting a missing key is not an error.
func (s *DirStore) Delete(_ context.Context, bucket, key string) error {
	p, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	log.Debugf("dir delete: path=%s", p)
	return nil
}
