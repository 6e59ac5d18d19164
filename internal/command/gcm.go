// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/awsops/internal/gcm"
	"github.com/tfctl/awsops/internal/meta"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/version"
)

// gcmErrorBucket is the DirStore bucket gcm error logs are written to.
const gcmErrorBucket = "gcm"

type userAgent struct {
	next http.RoundTripper
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", version.UserAgent())
	return u.next.RoundTrip(req)
}

func gcmCommandAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("store-dir")
	if dir == "" {
		var ok bool
		if dir, ok = objstore.DefaultDir(); !ok {
			return fmt.Errorf("no directory for the error log, set --store-dir")
		}
	}
	sink := objstore.Sink{Store: objstore.NewDirStore(dir), Bucket: gcmErrorBucket}

	client := &http.Client{
		Timeout:   cmd.Duration("timeout"),
		Transport: userAgent{next: http.DefaultTransport},
	}

	r := gcm.NewRunner(client, sink, gcm.Options{
		Endpoint: cmd.String("endpoint"),
		APIKey:   cmd.String("api-key"),
		Token:    cmd.String("token"),
		Title:    cmd.String("title"),
		Message:  cmd.String("message"),
		Count:    cmd.Int("count"),
		Workers:  cmd.Int("workers"),
	})
	report, err := r.Run(ctx)
	if err != nil {
		return err
	}
	return Render(cmd, report)
}

// gcmCommandBuilder constructs the cli.Command for "gcm".
func gcmCommandBuilder(meta meta.Meta) *cli.Command {
	path := meta.ConfigSource()
	return &cli.Command{
		Name:      "gcm",
		Usage:     "load test a GCM push endpoint",
		UsageText: "awsops gcm --api-key KEY --token TOKEN [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewWorkersFlag("gcm", path, gcm.DefaultWorkers),
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "push endpoint URL",
				Value:   gcm.DefaultEndpoint,
				Sources: ConfigSources("gcm", "endpoint", path),
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "server API key",
				Sources: ConfigSources("gcm", "api-key", path, "AWSOPS_GCM_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "device registration token",
				Sources: ConfigSources("gcm", "token", path, "AWSOPS_GCM_TOKEN"),
			},
			&cli.StringFlag{Name: "title", Usage: "notification title", Value: gcm.DefaultTitle},
			&cli.StringFlag{Name: "message", Usage: "notification message", Value: gcm.DefaultMessage},
			&cli.IntFlag{
				Name:  "count",
				Usage: "number of requests",
				Value: gcm.DefaultCount,
				Validator: func(value int) error {
					return FlagValidators(value, PositiveValidator)
				},
			},
			&cli.DurationFlag{Name: "timeout", Usage: "per request timeout", Value: 30 * time.Second},
			&cli.StringFlag{
				Name:    "store-dir",
				Usage:   "directory the error log is written beneath",
				Sources: ConfigSources("gcm", "store-dir", path, "AWSOPS_STORE_DIR"),
			},
		}, NewGlobalFlags("gcm", path)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: gcmCommandAction,
	}
}
