// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package snsreflect

import (
	"context"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/awsops/internal/trigger"
)

type fakePublisher struct {
	inputs []*sns.PublishInput
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if awsv2.ToString(in.Message) == "fail" {
		return nil, &smithy.GenericAPIError{Code: "AuthorizationError", Message: "not authorized"}
	}
	return &sns.PublishOutput{MessageId: awsv2.String("new-" + awsv2.ToString(in.Message))}, nil
}

func TestReflect(t *testing.T) {
	api := &fakePublisher{}
	r := &Reflector{API: api, TopicArn: "arn:aws:sns:eu-west-1:111122223333:Mirror"}

	results, err := r.Reflect(context.Background(), []trigger.Notification{
		{MessageID: "1", Subject: "alarm", Message: "a"},
		{MessageID: "2", Message: "fail"},
		{MessageID: "3", Message: "c"},
	})
	require.NoError(t, err)

	assert.Equal(t, Results{
		{MessageID: "1", NewMessageID: "new-a"},
		{MessageID: "2", Error: "AuthorizationError: not authorized"},
		{MessageID: "3", NewMessageID: "new-c"},
	}, results)

	assert.Equal(t, []string{"2", "", "AuthorizationError: not authorized"}, results.Rows()[1])

	require.Len(t, api.inputs, 3)
	assert.Equal(t, "alarm", awsv2.ToString(api.inputs[0].Subject))
	assert.Nil(t, api.inputs[1].Subject)
	assert.Equal(t, "arn:aws:sns:eu-west-1:111122223333:Mirror", awsv2.ToString(api.inputs[2].TopicArn))
}

func TestReflectNoTopic(t *testing.T) {
	_, err := (&Reflector{API: &fakePublisher{}}).Reflect(context.Background(), nil)
	assert.Error(t, err)
}
