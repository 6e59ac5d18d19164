// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"
	"sort"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/tfctl/awsops/internal/log"
)

// options holds optional overrides for AWS config loading.
type options struct {
	profile string
	region  string
	retryer func() awsv2.Retryer
}

// Option customizes how AWS config is loaded.
// Default behavior (no options) inherits the shell environment and shared
// config chain (AWS_PROFILE, ~/.aws/config, ~/.aws/credentials, IMDS, etc.).
type Option func(*options)

// LoadAWSConfig loads AWS SDK v2 config. By default it inherits the shell's
// AWS setup (AWS_PROFILE, shared config, env, IMDS). Options can override
// profile, region, and retryer without changing callers.
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log.Debugf("opts applied: profile=%s, region=%s", o.profile, o.region)

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.retryer != nil {
		loadOpts = append(loadOpts, config.WithRetryer(o.retryer))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.Debugf("config load err: err=%v", err)
		return awsv2.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.Debugf("config loaded: region=%s", cfg.Region)
	return cfg, nil
}

// WithProfile sets the shared config profile. Defaults to AWS_PROFILE/env chain.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override. Defaults to env/profile/metadata chain.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithRetryer injects a custom retryer; if not set, SDK defaults are used.
func WithRetryer(newRetryer func() awsv2.Retryer) Option {
	return func(o *options) { o.retryer = newRetryer }
}

// NewS3 constructs a v2 S3 client from the provided config. Additional service
// options can be supplied via optFns.
func NewS3(cfg awsv2.Config, optFns ...func(*s3v2.Options)) *s3v2.Client {
	client := s3v2.NewFromConfig(cfg, optFns...)
	log.Debugf("s3 client created: region=%s", cfg.Region)
	return client
}

// NewSNS constructs a v2 SNS client.
func NewSNS(cfg awsv2.Config, optFns ...func(*sns.Options)) *sns.Client {
	client := sns.NewFromConfig(cfg, optFns...)
	log.Debugf("sns client created: region=%s", cfg.Region)
	return client
}

// NewSES constructs a v2 SES (sesv2) client.
func NewSES(cfg awsv2.Config, optFns ...func(*sesv2.Options)) *sesv2.Client {
	client := sesv2.NewFromConfig(cfg, optFns...)
	log.Debugf("ses client created: region=%s", cfg.Region)
	return client
}

// NewCloudWatch constructs a v2 CloudWatch client.
func NewCloudWatch(cfg awsv2.Config, optFns ...func(*cloudwatch.Options)) *cloudwatch.Client {
	client := cloudwatch.NewFromConfig(cfg, optFns...)
	log.Debugf("cloudwatch client created: region=%s", cfg.Region)
	return client
}

// NewEC2 constructs a v2 EC2 client.
func NewEC2(cfg awsv2.Config, optFns ...func(*ec2.Options)) *ec2.Client {
	client := ec2.NewFromConfig(cfg, optFns...)
	log.Debugf("ec2 client created: region=%s", cfg.Region)
	return client
}

// NewCloudFormation constructs a v2 CloudFormation client.
func NewCloudFormation(cfg awsv2.Config, optFns ...func(*cloudformation.Options)) *cloudformation.Client {
	client := cloudformation.NewFromConfig(cfg, optFns...)
	log.Debugf("cloudformation client created: region=%s", cfg.Region)
	return client
}

// RegionsAPI is the slice of the EC2 API needed to enumerate regions.
type RegionsAPI interface {
	DescribeRegions(ctx context.Context, in *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// Regions returns the sorted names of the regions enabled for the account.
func Regions(ctx context.Context, api RegionsAPI) ([]string, error) {
	out, err := api.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe regions: %w", err)
	}

	names := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if r.RegionName != nil {
			names = append(names, *r.RegionName)
		}
	}
	sort.Strings(names)
	log.Debugf("regions discovered: count=%d", len(names))
	return names, nil
}

// WithS3Endpoint points the S3 client at an S3-compatible endpoint (MinIO,
// LocalStack) using path-style addressing. An empty url is a no-op.
func WithS3Endpoint(url string) func(*s3v2.Options) {
	return func(o *s3v2.Options) {
		if url == "" {
			return
		}
		o.BaseEndpoint = awsv2.String(url)
		o.UsePathStyle = true
	}
}
