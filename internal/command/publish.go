// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/meta"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/snspublish"
	"github.com/tfctl/awsops/internal/trigger"
)

// publishRunnerFactory binds the SNS client and flag options.
func publishRunnerFactory(ctx context.Context, cmd *cli.Command) (RunnerFactory[snspublish.Target], error) {
	cfg, err := LoadAWSConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}
	api := awsx.NewSNS(cfg)
	opts := snspublish.Options{
		Workers: cmd.Int("workers"),
		LogTime: cmd.Bool("log-time"),
		Cleanup: cmd.Bool("cleanup"),
	}
	return func(store objstore.Store, ref trigger.ObjectRef) *dispatch.Runner[snspublish.Target] {
		return snspublish.NewRunner(store, api, ref, opts)
	}, nil
}

func publishCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewBatchActionRunner("publish", publishRunnerFactory).Run(ctx, cmd)
}

// publishCommandBuilder constructs the cli.Command for "publish".
func publishCommandBuilder(meta meta.Meta) *cli.Command {
	path := meta.ConfigSource()
	return (&CommandBuilder{
		Name:      "publish",
		Usage:     "publish a gzipped endpoint document to SNS mobile endpoints",
		UsageText: "awsops publish [s3://bucket/key] [options]",
		Flags: append([]cli.Flag{
			NewWorkersFlag("publish", path, snspublish.DefaultWorkers),
			&cli.BoolFlag{
				Name:    "log-time",
				Usage:   "write a <key>_time.log with start, end and total seconds",
				Sources: ConfigSources("publish", "log-time", path, "AWSOPS_LOG_TIME"),
			},
		}, NewStoreFlags("publish", path)...),
		Action: publishCommandAction,
		Meta:   meta,
	}).Build()
}
