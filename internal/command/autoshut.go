// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/autoshut"
	"github.com/tfctl/awsops/internal/meta"
)

// NewShutter builds a Shutter with one EC2 client per region from cmd's
// flags.
func NewShutter(ctx context.Context, cmd *cli.Command) (*autoshut.Shutter, []string, error) {
	cfg, err := LoadAWSConfig(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	regions := cmd.StringSlice("regions")
	if len(regions) == 0 {
		if cfg.Region == "" {
			cfg.Region = "us-east-1"
		}
		if regions, err = awsx.Regions(ctx, awsx.NewEC2(cfg)); err != nil {
			return nil, nil, err
		}
	}

	s := &autoshut.Shutter{
		Client: func(region string) autoshut.EC2API {
			c := cfg.Copy()
			c.Region = region
			return awsx.NewEC2(c)
		},
		Keyword:       cmd.String("keyword"),
		Workers:       cmd.Int("workers"),
		RegionWorkers: cmd.Int("region-workers"),
		DryRun:        cmd.Bool("dry-run"),
	}
	return s, regions, nil
}

func autoshutCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, regions, err := NewShutter(ctx, cmd)
	if err != nil {
		return err
	}

	return RunScheduled(ctx, cmd, func(ctx context.Context) error {
		report, err := s.Run(ctx, regions)
		if cmd.Bool("summary") {
			fmt.Fprint(os.Stdout, report.Summary())
		} else if rerr := Render(cmd, report); rerr != nil {
			return rerr
		}
		return err
	})
}

// autoshutCommandBuilder constructs the cli.Command for "autoshut".
func autoshutCommandBuilder(meta meta.Meta) *cli.Command {
	path := meta.ConfigSource()
	return (&CommandBuilder{
		Name:      "autoshut",
		Usage:     "stop running EC2 instances not tagged with the protect keyword",
		UsageText: "awsops autoshut [options]",
		Flags: append([]cli.Flag{
			NewWorkersFlag("autoshut", path, autoshut.DefaultWorkers),
			&cli.IntFlag{
				Name:    "region-workers",
				Usage:   "regions scanned concurrently",
				Value:   autoshut.DefaultRegionWorkers,
				Sources: ConfigSources("autoshut", "region-workers", path),
			},
			&cli.StringSliceFlag{
				Name:    "regions",
				Usage:   "regions to scan (default: every enabled region)",
				Sources: ConfigSources("autoshut", "regions", path, "AWSOPS_REGIONS"),
			},
			&cli.StringFlag{
				Name:    "keyword",
				Usage:   "tag key or value substring that protects an instance",
				Value:   autoshut.DefaultKeyword,
				Sources: ConfigSources("autoshut", "keyword", path, "AWSOPS_KEYWORD"),
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Usage:   "report what would be stopped without stopping it",
				Sources: ConfigSources("autoshut", "dry-run", path, "AWSOPS_DRY_RUN"),
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "print a plain text narrative instead of a table",
			},
		}, NewScheduleFlags("autoshut", path)...),
		Action: autoshutCommandAction,
		Meta:   meta,
	}).Build()
}
