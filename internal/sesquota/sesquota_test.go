// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package sesquota

import (
	"context"
	"errors"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	quota *types.SendQuota
	err   error
}

func (f *fakeSES) GetAccount(context.Context, *sesv2.GetAccountInput, ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.GetAccountOutput{SendQuota: f.quota}, nil
}

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: awsv2.String("msg-42")}, nil
}

const topic = "arn:aws:sns:us-west-2:111122223333:MyTopic"

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		sent      float64
		max       float64
		threshold float64
		alerted   bool
		message   string
	}{
		{"within", 500, 1000, 0, false, "Sending quota within threshold."},
		{"exactly at threshold", 800, 1000, 0, false, "Sending quota within threshold."},
		{"over default", 850, 1000, 0, true, "Daily sending limit threshold of 85% has been reached. Notification published successfully. Message id msg-42"},
		{"over custom", 600, 1000, 50, true, "Daily sending limit threshold of 60% has been reached. Notification published successfully. Message id msg-42"},
		{"zero quota", 0, 0, 0, false, "Sending quota within threshold."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakeSNS{}
			c := &Checker{
				SES:       &fakeSES{quota: &types.SendQuota{SentLast24Hours: tt.sent, Max24HourSend: tt.max}},
				SNS:       pub,
				TopicArn:  topic,
				Threshold: tt.threshold,
			}
			res, err := c.Check(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.alerted, res.Alerted)
			assert.Equal(t, tt.message, res.Message)

			if tt.alerted {
				require.Len(t, pub.inputs, 1)
				assert.Equal(t, Subject, *pub.inputs[0].Subject)
				assert.Equal(t, topic, *pub.inputs[0].TopicArn)
			} else {
				assert.Empty(t, pub.inputs)
			}
		})
	}
}

func TestCheckErrors(t *testing.T) {
	_, err := (&Checker{SES: &fakeSES{err: errors.New("Throttling")}}).Check(context.Background())
	assert.ErrorContains(t, err, "failed to get daily send quota")

	_, err = (&Checker{SES: &fakeSES{}}).Check(context.Background())
	assert.Error(t, err)

	over := &fakeSES{quota: &types.SendQuota{SentLast24Hours: 99, Max24HourSend: 100}}
	_, err = (&Checker{SES: over, SNS: &fakeSNS{}}).Check(context.Background())
	assert.ErrorContains(t, err, "no alert topic")

	res, err := (&Checker{SES: over, SNS: &fakeSNS{err: errors.New("denied")}, TopicArn: topic}).Check(context.Background())
	assert.Error(t, err)
	assert.False(t, res.Alerted)
}

func TestResultRows(t *testing.T) {
	r := Result{Sent24Hour: 12500, Max24Hour: 50000, Percent: 25, Threshold: 80, Message: "ok"}
	assert.Equal(t, [][]string{{"12,500", "50,000", "25.0%", "80%", "ok"}}, r.Rows())
}
