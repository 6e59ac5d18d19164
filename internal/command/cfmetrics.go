// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/cfmetrics"
	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/meta"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/trigger"
)

func cfmetricsRunnerFactory(ctx context.Context, cmd *cli.Command) (RunnerFactory[string], error) {
	cfg, err := LoadAWSConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}
	api := awsx.NewCloudWatch(cfg)
	opts := cfmetrics.Options{
		Workers: cmd.Int("workers"),
		Cleanup: cmd.Bool("cleanup"),
	}
	return func(store objstore.Store, ref trigger.ObjectRef) *dispatch.Runner[string] {
		return cfmetrics.NewRunner(store, api, ref, opts)
	}, nil
}

func cfmetricsCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewBatchActionRunner("cfmetrics", cfmetricsRunnerFactory).Run(ctx, cmd)
}

// cfmetricsCommandBuilder constructs the cli.Command for "cfmetrics".
func cfmetricsCommandBuilder(meta meta.Meta) *cli.Command {
	path := meta.ConfigSource()
	return (&CommandBuilder{
		Name:      "cfmetrics",
		Usage:     "turn a CloudFront access log into CloudWatch metrics",
		UsageText: "awsops cfmetrics [s3://bucket/key] [options]",
		Flags: append([]cli.Flag{
			NewWorkersFlag("cfmetrics", path, cfmetrics.DefaultWorkers),
		}, NewStoreFlags("cfmetrics", path)...),
		Action: cfmetricsCommandAction,
		Meta:   meta,
	}).Build()
}
