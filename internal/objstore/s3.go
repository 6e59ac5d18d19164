// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tfctl/awsops/internal/log"
)

// S3API is the slice of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3v2.DeleteObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.DeleteObjectOutput, error)
}

// S3Store is a Store backed by S3.
type S3Store struct {
	API S3API
}

// NewS3Store returns a Store using api.
func NewS3Store(api S3API) *S3Store {
	return &S3Store{API: api}
}

// Get implements Store.
func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.API.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get S3 object s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	log.Debugf("s3 get: bucket=%s key=%s bytes=%d", bucket, key, len(data))
	return data, nil
}

// Put implements Store.
func (s *S3Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.API.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to put S3 object s3://%s/%s: %w", bucket, key, err)
	}
	log.Debugf("s3 put: bucket=%s key=%s bytes=%d", bucket, key, len(data))
	return nil
}

// Delete implements Store. Deleting a missing key is not an error.
func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.API.DeleteObject(ctx, &s3v2.DeleteObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete S3 object s3://%s/%s: %w", bucket, key, err)
	}
	log.Debugf("s3 delete: bucket=%s key=%s", bucket, key)
	return nil
}
