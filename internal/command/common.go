// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/urfave/cli/v3"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/meta"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/output"
	"github.com/tfctl/awsops/internal/schedule"
	"github.com/tfctl/awsops/internal/trigger"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{Args: []string{""}}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{Args: []string{""}}
}

// LoadAWSConfig loads the SDK config honoring --profile and --region.
func LoadAWSConfig(ctx context.Context, cmd *cli.Command) (awsv2.Config, error) {
	var opts []awsx.Option
	if p := cmd.String("profile"); p != "" {
		opts = append(opts, awsx.WithProfile(p))
	}
	if r := cmd.String("region"); r != "" {
		opts = append(opts, awsx.WithRegion(r))
	}
	return awsx.LoadAWSConfig(ctx, opts...)
}

// NewStore returns the object store selected by --store-dir: a local
// directory when set, otherwise S3 (optionally at --s3-endpoint).
func NewStore(ctx context.Context, cmd *cli.Command) (objstore.Store, error) {
	if dir := cmd.String("store-dir"); dir != "" {
		return objstore.NewDirStore(dir), nil
	}
	cfg, err := LoadAWSConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return objstore.NewS3Store(awsx.NewS3(cfg, awsx.WithS3Endpoint(cmd.String("s3-endpoint")))), nil
}

// ParseObjectRef accepts "s3://bucket/key" or "bucket/key".
func ParseObjectRef(s string) (trigger.ObjectRef, error) {
	s = strings.TrimPrefix(s, "s3://")
	bucket, key, ok := strings.Cut(s, "/")
	if !ok || bucket == "" || key == "" {
		return trigger.ObjectRef{}, fmt.Errorf("object %q must be s3://bucket/key", s)
	}
	return trigger.ObjectRef{Bucket: bucket, Key: key}, nil
}

// ObjectRefFromCommand resolves the batch object from the first positional
// argument, falling back to --bucket and --key.
func ObjectRefFromCommand(cmd *cli.Command) (trigger.ObjectRef, error) {
	if arg := cmd.Args().First(); arg != "" {
		return ParseObjectRef(arg)
	}
	ref := trigger.ObjectRef{Bucket: cmd.String("bucket"), Key: cmd.String("key")}
	if ref.Bucket == "" || ref.Key == "" {
		return ref, fmt.Errorf("a batch object is required: pass s3://bucket/key or --bucket and --key")
	}
	return ref, nil
}

// RenderOptions collects the output flags.
func RenderOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Format:  cmd.String("output"),
		Titles:  cmd.Bool("titles"),
		Color:   cmd.Bool("color"),
		Padding: cmd.Int("padding"),
		Sort:    cmd.String("sort"),
		Filter:  cmd.String("filter"),
	}
}

// Render writes v to stdout using the output flags.
func Render(cmd *cli.Command, v output.Table) error {
	return output.Render(os.Stdout, v, RenderOptions(cmd))
}

// RunScheduled runs job once, or on --schedule until ctx is cancelled.
func RunScheduled(ctx context.Context, cmd *cli.Command, job func(context.Context) error) error {
	spec := cmd.String("schedule")
	if spec == "" {
		return job(ctx)
	}
	return schedule.Run(ctx, spec, cmd.String("tz"), func(ctx context.Context) {
		if err := job(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	})
}
