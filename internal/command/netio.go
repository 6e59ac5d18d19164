// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/awsops/internal/meta"
	"github.com/tfctl/awsops/internal/netio"
)

func netioCommandAction(ctx context.Context, cmd *cli.Command) error {
	s := &netio.Sampler{
		Interface: cmd.String("interface"),
		Interval:  cmd.Duration("interval"),
	}
	rate, err := s.Sample(ctx)
	if err != nil {
		return err
	}

	if cmd.IsSet("output") {
		return Render(cmd, rate)
	}
	fmt.Fprintln(os.Stdout, rate)
	return nil
}

// netioCommandBuilder constructs the cli.Command for "netio".
func netioCommandBuilder(meta meta.Meta) *cli.Command {
	path := meta.ConfigSource()
	return &cli.Command{
		Name:      "netio",
		Usage:     "print network throughput of one interface",
		UsageText: "awsops netio [--interface eth0] [--interval 1s]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "interface",
				Aliases: []string{"i"},
				Usage:   "interface name (default: first non-loopback)",
				Sources: ConfigSources("netio", "interface", path),
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "sampling interval",
				Value: time.Second,
			},
		}, NewGlobalFlags("netio", path)...),
		Action: netioCommandAction,
	}
}
