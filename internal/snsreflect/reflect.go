// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package snsreflect re-publishes SNS notifications to a topic, typically in
// another region.
package snsreflect

import (
	"context"
	"errors"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/log"
	"github.com/tfctl/awsops/internal/trigger"
)

// Publisher is the slice of the SNS client used to reflect messages.
type Publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Result is the outcome of reflecting one notification.
type Result struct {
	MessageID    string `json:"message_id" yaml:"message_id"`
	NewMessageID string `json:"new_message_id,omitempty" yaml:"new_message_id,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Reflector publishes notifications to TopicArn.
type Reflector struct {
	API      Publisher
	TopicArn string
}

// Reflect publishes every notification to the target topic. A failed
// publish is logged and recorded in its Result; it does not stop the others.
func (r *Reflector) Reflect(ctx context.Context, notes []trigger.Notification) (Results, error) {
	if r.TopicArn == "" {
		return nil, errors.New("no target topic configured")
	}

	results := make(Results, 0, len(notes))
	for _, n := range notes {
		in := &sns.PublishInput{
			TopicArn: awsv2.String(r.TopicArn),
			Message:  awsv2.String(n.Message),
		}
		if n.Subject != "" {
			in.Subject = awsv2.String(n.Subject)
		}

		res := Result{MessageID: n.MessageID}
		out, err := r.API.Publish(ctx, in)
		if err != nil {
			res.Error = awsx.DescribeError(err)
			log.Errorf("%s, %s", r.TopicArn, res.Error)
		} else {
			res.NewMessageID = awsv2.ToString(out.MessageId)
			log.Infof("reflected %s to %s as %s", n.MessageID, r.TopicArn, res.NewMessageID)
		}
		results = append(results, res)
	}
	return results, nil
}

// Results is the outcome of one Reflect call.
type Results []Result

// Columns implements output.Table.
func (rs Results) Columns() []string {
	return []string{"message id", "new message id", "error"}
}

// Rows implements output.Table.
func (rs Results) Rows() [][]string {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = []string{r.MessageID, r.NewMessageID, r.Error}
	}
	return rows
}
