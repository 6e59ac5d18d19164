// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/meta"
	"github.com/tfctl/awsops/internal/sesquota"
)

// NewChecker builds a quota Checker from cmd's flags.
func NewChecker(ctx context.Context, cmd *cli.Command) (*sesquota.Checker, error) {
	cfg, err := LoadAWSConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return &sesquota.Checker{
		SES:       awsx.NewSES(cfg),
		SNS:       awsx.NewSNS(cfg),
		TopicArn:  cmd.String("topic"),
		Threshold: cmd.Float("threshold"),
	}, nil
}

func sesquotaCommandAction(ctx context.Context, cmd *cli.Command) error {
	c, err := NewChecker(ctx, cmd)
	if err != nil {
		return err
	}

	return RunScheduled(ctx, cmd, func(ctx context.Context) error {
		res, err := c.Check(ctx)
		if err != nil {
			return err
		}
		return Render(cmd, res)
	})
}

// sesquotaCommandBuilder constructs the cli.Command for "sesquota".
func sesquotaCommandBuilder(meta meta.Meta) *cli.Command {
	path := meta.ConfigSource()
	return (&CommandBuilder{
		Name:      "sesquota",
		Usage:     "alert an SNS topic when SES daily sending passes a threshold",
		UsageText: "awsops sesquota --topic ARN [options]",
		Flags: append([]cli.Flag{
			NewTopicFlag("sesquota", path),
			&cli.FloatFlag{
				Name:    "threshold",
				Usage:   "percent of the 24 hour quota that triggers an alert",
				Value:   sesquota.DefaultThreshold,
				Sources: ConfigSources("sesquota", "threshold", path, "AWSOPS_THRESHOLD"),
			},
		}, NewScheduleFlags("sesquota", path)...),
		Action: sesquotaCommandAction,
		Meta:   meta,
	}).Build()
}
