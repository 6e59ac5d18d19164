// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/apex/log"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/awsops/internal/autoshut"
	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/meta"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/sesquota"
	"github.com/tfctl/awsops/internal/snsreflect"
	"github.com/tfctl/awsops/internal/trigger"
)

// EnvHandler selects the Lambda handler when no argument is given.
const EnvHandler = "AWSOPS_HANDLER"

// Handlers lists the names accepted by "awsops lambda".
var Handlers = []string{"publish", "mail", "cfmetrics", "reflect", "autoshut", "sesquota"}

// S3Handler runs one batch per object in an S3 event. Item failures are in
// each batch's error log; only setup and report failures fail the event.
func S3Handler[T any](store objstore.Store, factory RunnerFactory[T]) func(context.Context, events.S3Event) error {
	return func(ctx context.Context, e events.S3Event) error {
		return trigger.ForEachObject(ctx, e, func(ctx context.Context, ref trigger.ObjectRef) error {
			report, err := factory(store, ref).Run(ctx)
			if err != nil {
				return err
			}
			log.Infof("%s: total=%d failed=%d", ref, report.Total, report.Failed)
			return nil
		})
	}
}

func s3Handler[T any](ctx context.Context, cmd *cli.Command, newRunner func(context.Context, *cli.Command) (RunnerFactory[T], error)) (any, error) {
	store, err := NewStore(ctx, cmd)
	if err != nil {
		return nil, err
	}
	factory, err := newRunner(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return S3Handler(store, factory), nil
}

// HandlerName resolves the handler from the first argument, then
// AWSOPS_HANDLER, then the runtime's _HANDLER.
func HandlerName(cmd *cli.Command) (string, error) {
	name := cmd.Args().First()
	for _, env := range []string{EnvHandler, "_HANDLER"} {
		if name != "" {
			break
		}
		name = os.Getenv(env)
	}
	if !slices.Contains(Handlers, name) {
		return "", fmt.Errorf("unknown lambda handler %q, must be one of %s", name, strings.Join(Handlers, ", "))
	}
	return name, nil
}

// LambdaHandler returns the function passed to lambda.Start for name.
func LambdaHandler(ctx context.Context, cmd *cli.Command, name string) (any, error) {
	switch name {
	case "publish":
		return s3Handler(ctx, cmd, publishRunnerFactory)
	case "mail":
		return s3Handler(ctx, cmd, mailRunnerFactory)
	case "cfmetrics":
		return s3Handler(ctx, cmd, cfmetricsRunnerFactory)
	case "reflect":
		cfg, err := LoadAWSConfig(ctx, cmd)
		if err != nil {
			return nil, err
		}
		r := &snsreflect.Reflector{API: awsx.NewSNS(cfg), TopicArn: cmd.String("topic")}
		return func(ctx context.Context, e events.SNSEvent) (snsreflect.Results, error) {
			return r.Reflect(ctx, trigger.NotificationsFromSNSEvent(e))
		}, nil
	case "autoshut":
		s, regions, err := NewShutter(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, _ events.CloudWatchEvent) (autoshut.Report, error) {
			report, err := s.Run(ctx, regions)
			log.Infof("%s", report.Summary())
			return report, err
		}, nil
	case "sesquota":
		c, err := NewChecker(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, _ events.CloudWatchEvent) (sesquota.Result, error) {
			return c.Check(ctx)
		}, nil
	}
	return nil, fmt.Errorf("unknown lambda handler %q", name)
}

func lambdaCommandAction(ctx context.Context, cmd *cli.Command) error {
	name, err := HandlerName(cmd)
	if err != nil {
		return err
	}
	h, err := LambdaHandler(ctx, cmd, name)
	if err != nil {
		return err
	}
	log.Debugf("starting lambda handler %s", name)
	lambda.StartWithOptions(h, lambda.WithContext(ctx))
	return nil
}

// lambdaFlags is the union of the flags the handlers read. Values normally
// arrive through environment variables.
func lambdaFlags(path string) []cli.Flag {
	flags := []cli.Flag{
		NewWorkersFlag("lambda", path, 0),
		NewTopicFlag("lambda", path),
		&cli.BoolFlag{Name: "log-time", Sources: ConfigSources("publish", "log-time", path, "AWSOPS_LOG_TIME")},
		&cli.StringFlag{Name: "text-file", Sources: ConfigSources("mail", "text-file", path, "AWSOPS_TEXT_FILE")},
		&cli.StringFlag{Name: "html-file", Sources: ConfigSources("mail", "html-file", path, "AWSOPS_HTML_FILE")},
		&cli.FloatFlag{Name: "threshold", Value: sesquota.DefaultThreshold, Sources: ConfigSources("sesquota", "threshold", path, "AWSOPS_THRESHOLD")},
		&cli.StringSliceFlag{Name: "regions", Sources: ConfigSources("autoshut", "regions", path, "AWSOPS_REGIONS")},
		&cli.IntFlag{Name: "region-workers", Value: autoshut.DefaultRegionWorkers},
		&cli.StringFlag{Name: "keyword", Value: autoshut.DefaultKeyword, Sources: ConfigSources("autoshut", "keyword", path, "AWSOPS_KEYWORD")},
		&cli.BoolFlag{Name: "dry-run", Sources: ConfigSources("autoshut", "dry-run", path, "AWSOPS_DRY_RUN")},
	}
	return append(flags, NewStoreFlags("lambda", path)...)
}

// lambdaCommandBuilder constructs the cli.Command for "lambda".
func lambdaCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "lambda",
		Usage:     "serve one utility as an AWS Lambda handler",
		UsageText: "awsops lambda [" + strings.Join(Handlers, "|") + "]",
		Flags:     lambdaFlags(meta.ConfigSource()),
		Action:    lambdaCommandAction,
		Meta:      meta,
		NoOutput:  true,
	}).Build()
}
