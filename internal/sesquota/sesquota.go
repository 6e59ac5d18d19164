// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package sesquota warns through SNS when the SES 24 hour sending quota
// passes a threshold.
package sesquota

import (
	"context"
	"errors"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/dustin/go-humanize"

	"github.com/tfctl/awsops/internal/log"
)

const (
	DefaultThreshold = 80.0
	Subject          = "SES daily quota warning"
)

// AccountAPI is the slice of the SES v2 client used to read the quota.
type AccountAPI interface {
	GetAccount(ctx context.Context, in *sesv2.GetAccountInput, optFns ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error)
}

// Publisher is the slice of the SNS client used to alert.
type Publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Checker compares usage against Threshold percent and alerts TopicArn.
type Checker struct {
	SES       AccountAPI
	SNS       Publisher
	TopicArn  string
	Threshold float64
}

// Result is the outcome of one check.
type Result struct {
	Max24Hour  float64 `json:"max_24_hour" yaml:"max_24_hour"`
	Sent24Hour float64 `json:"sent_24_hour" yaml:"sent_24_hour"`
	Percent    float64 `json:"percent" yaml:"percent"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	Alerted    bool    `json:"alerted" yaml:"alerted"`
	MessageID  string  `json:"message_id,omitempty" yaml:"message_id,omitempty"`
	Message    string  `json:"message" yaml:"message"`
}

// Columns implements output.Table.
func (r Result) Columns() []string {
	return []string{"sent", "quota", "percent", "threshold", "message"}
}

// Rows implements output.Table.
func (r Result) Rows() [][]string {
	return [][]string{{
		humanize.Commaf(r.Sent24Hour),
		humanize.Commaf(r.Max24Hour),
		fmt.Sprintf("%.1f%%", r.Percent),
		fmt.Sprintf("%.0f%%", r.Threshold),
		r.Message,
	}}
}

// AlertMessage is the notification body for a usage percentage.
func AlertMessage(percent float64) string {
	return fmt.Sprintf("Daily sending limit threshold of %d%% has been reached.", int(percent))
}

// Check reads the quota and publishes an alert when usage exceeds the
// threshold. An account with no quota is within threshold.
func (c *Checker) Check(ctx context.Context) (Result, error) {
	threshold := c.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	out, err := c.SES.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		return Result{}, fmt.Errorf("failed to get daily send quota: %w", err)
	}
	if out.SendQuota == nil {
		return Result{}, errors.New("account has no send quota")
	}

	res := Result{
		Max24Hour:  out.SendQuota.Max24HourSend,
		Sent24Hour: out.SendQuota.SentLast24Hours,
		Threshold:  threshold,
	}
	if res.Max24Hour > 0 {
		res.Percent = res.Sent24Hour / res.Max24Hour * 100 //nolint:mnd
	}
	log.Debugf("ses quota: sent=%.0f max=%.0f percent=%.2f", res.Sent24Hour, res.Max24Hour, res.Percent)

	if res.Percent <= threshold {
		res.Message = "Sending quota within threshold."
		return res, nil
	}

	if c.TopicArn == "" {
		return res, errors.New("quota over threshold but no alert topic configured")
	}
	alert := AlertMessage(res.Percent)
	pub, err := c.SNS.Publish(ctx, &sns.PublishInput{
		TopicArn:         awsv2.String(c.TopicArn),
		Message:          awsv2.String(alert),
		Subject:          awsv2.String(Subject),
		MessageStructure: awsv2.String("string"),
	})
	if err != nil {
		res.Message = alert + " Failed to publish notification."
		return res, fmt.Errorf("failed to publish notification: %w", err)
	}

	res.Alerted = true
	res.MessageID = awsv2.ToString(pub.MessageId)
	res.Message = fmt.Sprintf("%s Notification published successfully. Message id %s", alert, res.MessageID)
	return res, nil
}
