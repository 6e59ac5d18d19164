// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/urfave/cli/v3"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/meta"
	"github.com/tfctl/awsops/internal/snsreflect"
	"github.com/tfctl/awsops/internal/trigger"
)

// readSNSEvent decodes an SNS Lambda event from path, or stdin when path is
// "" or "-".
func readSNSEvent(path string) (events.SNSEvent, error) {
	var e events.SNSEvent

	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return e, err
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return e, fmt.Errorf("failed to decode SNS event: %w", err)
	}
	return e, nil
}

func reflectCommandAction(ctx context.Context, cmd *cli.Command) error {
	e, err := readSNSEvent(cmd.Args().First())
	if err != nil {
		return err
	}

	cfg, err := LoadAWSConfig(ctx, cmd)
	if err != nil {
		return err
	}

	r := &snsreflect.Reflector{API: awsx.NewSNS(cfg), TopicArn: cmd.String("topic")}
	results, err := r.Reflect(ctx, trigger.NotificationsFromSNSEvent(e))
	if err != nil {
		return err
	}
	return Render(cmd, results)
}

// reflectCommandBuilder constructs the cli.Command for "reflect".
func reflectCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "reflect",
		Usage:     "re-publish the notifications of an SNS event to another topic",
		UsageText: "awsops reflect [event.json|-] --topic ARN [options]",
		Flags: []cli.Flag{
			NewTopicFlag("reflect", meta.ConfigSource()),
		},
		Action: reflectCommandAction,
		Meta:   meta,
	}).Build()
}
