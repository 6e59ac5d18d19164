// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Gunzip returns data decompressed when it starts with the gzip magic bytes,
// and data unchanged otherwise.
func Gunzip(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return out, nil
}

// ReadGzip fetches an object and transparently decompresses it.
func ReadGzip(ctx context.Context, s Store, bucket, key string) ([]byte, error) {
	data, err := s.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return Gunzip(data)
}
