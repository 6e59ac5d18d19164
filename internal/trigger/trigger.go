// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package trigger

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"

	"github.com/tfctl/awsops/internal/log"
)

// ObjectRef identifies an object that triggered a batch.
type ObjectRef struct {
	Bucket string
	Key    string
}

func (o ObjectRef) String() string {
	return fmt.Sprintf("s3://%s/%s", o.Bucket, o.Key)
}

// ObjectsFromS3Event returns the objects named by an S3 notification. Keys
// arrive form-encoded ("+" for space) and are unescaped.
func ObjectsFromS3Event(e events.S3Event) ([]ObjectRef, error) {
	refs := make([]ObjectRef, 0, len(e.Records))
	for _, r := range e.Records {
		key := r.S3.Object.URLDecodedKey
		if key == "" {
			var err error
			key, err = url.QueryUnescape(r.S3.Object.Key)
			if err != nil {
				return nil, fmt.Errorf("failed to unescape key %q: %w", r.S3.Object.Key, err)
			}
		}
		refs = append(refs, ObjectRef{Bucket: r.S3.Bucket.Name, Key: key})
	}
	return refs, nil
}

// ForEachObject calls fn once per object in e. Every object is attempted;
// the failures are joined.
func ForEachObject(ctx context.Context, e events.S3Event, fn func(context.Context, ObjectRef) error) error {
	refs, err := ObjectsFromS3Event(e)
	if err != nil {
		return err
	}

	var errs []error
	for _, ref := range refs {
		log.Infof("processing %s", ref)
		if err := fn(ctx, ref); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ref, err))
		}
	}
	return errors.Join(errs...)
}

// Notification is one SNS message delivered to a subscriber.
type Notification struct {
	MessageID string
	TopicArn  string
	Subject   string
	Message   string
}

// NotificationsFromSNSEvent returns the "Notification" records of e. Other
// record types (subscription confirmations) are skipped.
func NotificationsFromSNSEvent(e events.SNSEvent) []Notification {
	out := make([]Notification, 0, len(e.Records))
	for _, r := range e.Records {
		if r.SNS.Type != "" && r.SNS.Type != "Notification" {
			log.Debugf("skipping sns record: type=%s id=%s", r.SNS.Type, r.SNS.MessageID)
			continue
		}
		out = append(out, Notification{
			MessageID: r.SNS.MessageID,
			TopicArn:  r.SNS.TopicArn,
			Subject:   r.SNS.Subject,
			Message:   r.SNS.Message,
		})
	}
	return out
}
