// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snspublish

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/jonboulle/clockwork"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/log"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/trigger"
)

// DefaultWorkers is the publish concurrency when none is configured.
const DefaultWorkers = 1000

// Publisher is the slice of the SNS client used for publishing.
type Publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Options tunes a publish run.
type Options struct {
	Workers int
	LogTime bool
	Cleanup bool
	Clock   clockwork.Clock
}

// Executor publishes one target.
func Executor(api Publisher) dispatch.Executor[Target] {
	return func(ctx context.Context, item dispatch.Item[Target]) error {
		platform, err := Platform(item.Payload.Arn)
		if err != nil {
			return err
		}
		out, err := api.Publish(ctx, &sns.PublishInput{
			TargetArn:        awsv2.String(item.Payload.Arn),
			Message:          awsv2.String(PlatformMessage(platform, item.Payload.Message)),
			MessageStructure: awsv2.String("json"),
		})
		if err != nil {
			return err
		}
		log.Tracef("published: arn=%s id=%s", item.Payload.Arn, awsv2.ToString(out.MessageId))
		return nil
	}
}

// NewRunner builds the runner that publishes the batch stored at ref. Error
// and timing logs are written beside the input object.
func NewRunner(store objstore.Store, api Publisher, ref trigger.ObjectRef, opts Options) *dispatch.Runner[Target] {
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
	if opts.LogTime {
		hooks = append(hooks, objstore.TimeLogHook(store, ref.Bucket, ref.Key))
	}

	return &dispatch.Runner[Target]{
		Name: "publish",
		Setup: func(ctx context.Context) (dispatch.Batch[Target], error) {
			data, err := objstore.ReadGzip(ctx, store, ref.Bucket, ref.Key)
			if err != nil {
				return dispatch.Batch[Target]{}, err
			}
			doc, err := Decode(data)
			if err != nil {
				return dispatch.Batch[Target]{}, fmt.Errorf("%s: %w", ref, err)
			}
			return dispatch.Batch[Target]{ID: ref.Key, Items: doc.Items()}, nil
		},
		Dispatcher: dispatch.New(opts.Workers, Executor(api),
			dispatch.WithClock(opts.Clock),
			dispatch.WithDescriber(awsx.DescribeError)),
		Sink:  objstore.Sink{Store: store, Bucket: ref.Bucket},
		Hooks: hooks,
		Clock: opts.Clock,
	}
}
