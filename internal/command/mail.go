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
	"github.com/tfctl/awsops/internal/sesmailer"
	"github.com/tfctl/awsops/internal/trigger"
)

func mailRunnerFactory(ctx context.Context, cmd *cli.Command) (RunnerFactory[sesmailer.Mail], error) {
	cfg, err := LoadAWSConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}
	api := awsx.NewSES(cfg)
	opts := sesmailer.Options{
		Workers:  cmd.Int("workers"),
		TextFile: cmd.String("text-file"),
		HTMLFile: cmd.String("html-file"),
		Cleanup:  cmd.Bool("cleanup"),
	}
	return func(store objstore.Store, ref trigger.ObjectRef) *dispatch.Runner[sesmailer.Mail] {
		return sesmailer.NewRunner(store, api, ref, opts)
	}, nil
}

func mailCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewBatchActionRunner("mail", mailRunnerFactory).Run(ctx, cmd)
}

// mailCommandBuilder constructs the cli.Command for "mail".
func mailCommandBuilder(meta meta.Meta) *cli.Command {
	path := meta.ConfigSource()
	return (&CommandBuilder{
		Name:      "mail",
		Usage:     "send a gzipped CSV mailing list through SES",
		UsageText: "awsops mail [s3://bucket/key] [options]",
		Flags: append([]cli.Flag{
			NewWorkersFlag("mail", path, sesmailer.DefaultWorkers),
			&cli.StringFlag{
				Name:    "text-file",
				Usage:   "plain text body object in the list's bucket",
				Value:   sesmailer.DefaultTextFile,
				Sources: ConfigSources("mail", "text-file", path),
			},
			&cli.StringFlag{
				Name:    "html-file",
				Usage:   "html body object in the list's bucket",
				Value:   sesmailer.DefaultHTMLFile,
				Sources: ConfigSources("mail", "html-file", path),
			},
		}, NewStoreFlags("mail", path)...),
		Action: mailCommandAction,
		Meta:   meta,
	}).Build()
}
