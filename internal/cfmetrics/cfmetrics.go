// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cfmetrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/jonboulle/clockwork"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/trigger"
)

// DefaultWorkers is the put concurrency when none is configured.
const DefaultWorkers = 10

// headerLines precede the records of every access log (#Version, #Fields).
const headerLines = 2

// Fields is the column order of a CloudFront web distribution access log.
var Fields = []string{
	"date", "time", "x-edge-location", "sc-bytes", "c-ip", "cs-method", "cs-host", "cs-uri-stem",
	"sc-status", "cs-referer", "cs-user-agent", "cs-uri-query", "cs-cookie", "x-edge-result-type",
	"x-edge-request-id", "x-host-header", "cs-protocol", "cs-bytes", "time-taken", "x-forwarded-for",
	"ssl-protocol", "ssl-cipher", "x-edge-response-result-type",
}

// skipped fields are not turned into metrics.
var skipped = map[string]bool{
	"x-edge-request-id": true,
	"x-host-header":     true,
	"cs-protocol":       true,
	"cs-bytes":          true,
	"time-taken":        true,
	"x-forwarded-for":   true,
}

const timestampLayout = "2006-01-02 15:04:05"

// MetricPutter is the slice of the CloudWatch client used for ingestion.
type MetricPutter interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Options tunes a metrics run.
type Options struct {
	Workers int
	Cleanup bool
	Clock   clockwork.Clock
}

// Record is one parsed access log line keyed by field name.
type Record map[string]string

// ParseLine splits a tab separated access log line into a Record.
func ParseLine(line string) (Record, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < len(Fields) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(Fields), len(cols))
	}
	rec := make(Record, len(Fields))
	for i, name := range Fields {
		rec[name] = cols[i]
	}
	return rec, nil
}

// Timestamp returns the request time of the record (UTC).
func (r Record) Timestamp() (time.Time, error) {
	ts, err := time.Parse(timestampLayout, r["date"]+" "+r["time"])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid request time: %w", err)
	}
	return ts, nil
}

// PutInput converts the record into one count per field value, namespaced by
// the requested host.
func (r Record) PutInput() (*cloudwatch.PutMetricDataInput, error) {
	ts, err := r.Timestamp()
	if err != nil {
		return nil, err
	}

	data := make([]cwtypes.MetricDatum, 0, len(Fields)-len(skipped))
	for _, name := range Fields {
		if skipped[name] {
			continue
		}
		data = append(data, cwtypes.MetricDatum{
			MetricName: awsv2.String(r[name]),
			Timestamp:  awsv2.Time(ts),
			Value:      awsv2.Float64(1),
		})
	}
	return &cloudwatch.PutMetricDataInput{
		Namespace:  awsv2.String(r["cs-host"]),
		MetricData: data,
	}, nil
}

// Lines returns the record lines of an access log, dropping the header and
// blank lines.
func Lines(data []byte) []string {
	all := strings.Split(string(data), "\n")
	if len(all) <= headerLines {
		return nil
	}
	var out []string
	for _, l := range all[headerLines:] {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// lineID identifies a line in the error log by its edge request id, falling
// back to its position.
func lineID(n int, line string) string {
	cols := strings.Split(line, "\t")
	if len(cols) > 14 && cols[14] != "" { //nolint:mnd
		return cols[14]
	}
	return fmt.Sprintf("line-%d", n+headerLines+1)
}

// Executor parses and ingests one access log line.
func Executor(api MetricPutter) dispatch.Executor[string] {
	return func(ctx context.Context, item dispatch.Item[string]) error {
		rec, err := ParseLine(item.Payload)
		if err != nil {
			return err
		}
		in, err := rec.PutInput()
		if err != nil {
			return err
		}
		_, err = api.PutMetricData(ctx, in)
		return err
	}
}

// NewRunner builds the runner that ingests the access log stored at ref.
func NewRunner(store objstore.Store, api MetricPutter, ref trigger.ObjectRef, opts Options) *dispatch.Runner[string] {
	if opts.Workers == 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	var hooks []dispatch.Hook
	if opts.Cleanup {
		hooks = append(hooks, objstore.DeleteHook(store, ref.Bucket, ref.Key))
	}

	return &dispatch.Runner[string]{
		Name: "cfmetrics",
		Setup: func(ctx context.Context) (dispatch.Batch[string], error) {
			data, err := objstore.ReadGzip(ctx, store, ref.Bucket, ref.Key)
			if err != nil {
				return dispatch.Batch[string]{}, err
			}
			lines := Lines(data)
			items := make([]dispatch.Item[string], len(lines))
			for i, l := range lines {
				items[i] = dispatch.Item[string]{ID: lineID(i, l), Payload: l}
			}
			return dispatch.Batch[string]{ID: ref.Key, Items: items}, nil
		},
		Dispatcher: dispatch.New(opts.Workers, Executor(api),
			dispatch.WithClock(opts.Clock),
			dispatch.WithDescriber(awsx.DescribeError)),
		Sink:  objstore.Sink{Store: store, Bucket: ref.Bucket},
		Hooks: hooks,
		Clock: opts.Clock,
	}
}
