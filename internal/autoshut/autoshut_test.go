// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package autoshut

import (
	"context"
	"errors"
	"sync"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instance(id string, state types.InstanceStateName, tags ...string) types.Instance {
	i := types.Instance{
		InstanceId: awsv2.String(id),
		State:      &types.InstanceState{Name: state},
	}
	for k := 0; k+1 < len(tags); k += 2 {
		i.Tags = append(i.Tags, types.Tag{Key: awsv2.String(tags[k]), Value: awsv2.String(tags[k+1])})
	}
	return i
}

type fakeEC2 struct {
	mu          sync.Mutex
	pages       [][]types.Instance
	describeErr error
	stopErr     map[string]error
	stopped     []string
}

func (f *fakeEC2) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	page := 0
	if in.NextToken != nil {
		page = len(*in.NextToken)
	}
	out := &ec2.DescribeInstancesOutput{}
	if page < len(f.pages) {
		out.Reservations = []types.Reservation{{Instances: f.pages[page]}}
	}
	if page+1 < len(f.pages) {
		token := make([]byte, page+1)
		for i := range token {
			token[i] = 'x'
		}
		out.NextToken = awsv2.String(string(token))
	}
	return out, nil
}

func (f *fakeEC2) StopInstances(_ context.Context, in *ec2.StopInstancesInput, _ ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := in.InstanceIds[0]
	if err := f.stopErr[id]; err != nil {
		return nil, err
	}
	f.stopped = append(f.stopped, id)
	return &ec2.StopInstancesOutput{}, nil
}

func TestProtected(t *testing.T) {
	tag := func(k, v string) types.Tag { return types.Tag{Key: awsv2.String(k), Value: awsv2.String(v)} }

	tests := []struct {
		name     string
		tags     []types.Tag
		expected bool
	}{
		{"no tags", nil, false},
		{"unrelated", []types.Tag{tag("Name", "web")}, false},
		{"value", []types.Tag{tag("Name", "web"), tag("Schedule", "noshut")}, true},
		{"key", []types.Tag{tag("noshut", "")}, true},
		{"substring", []types.Tag{tag("Name", "db-noshut-primary")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Protected(tt.tags, DefaultKeyword))
		})
	}
}

func TestRun(t *testing.T) {
	east := &fakeEC2{
		pages: [][]types.Instance{
			{instance("i-1", types.InstanceStateNameRunning, "Name", "web")},
			{
				instance("i-2", types.InstanceStateNameRunning, "Schedule", "noshut"),
				instance("i-3", types.InstanceStateNameStopped),
			},
		},
	}
	west := &fakeEC2{
		pages: [][]types.Instance{{
			instance("i-4", types.InstanceStateNameRunning),
			instance("i-5", types.InstanceStateNameRunning),
		}},
		stopErr: map[string]error{"i-5": &smithy.GenericAPIError{Code: "UnsupportedOperation", Message: "spot instance"}},
	}
	clients := map[string]*fakeEC2{"us-east-1": east, "us-west-2": west}

	s := &Shutter{Client: func(r string) EC2API { return clients[r] }}
	report, err := s.Run(context.Background(), []string{"us-east-1", "us-west-2"})
	require.NoError(t, err)

	assert.Equal(t, []Action{
		{Region: "us-east-1", InstanceID: "i-1", Name: "web", Action: "stop", Result: "stopped"},
		{Region: "us-east-1", InstanceID: "i-2", Action: "skip", Result: "tagged noshut"},
		{Region: "us-west-2", InstanceID: "i-4", Action: "stop", Result: "stopped"},
		{Region: "us-west-2", InstanceID: "i-5", Action: "stop", Result: "failed: UnsupportedOperation: spot instance"},
	}, report.Actions)
	assert.Equal(t, []string{"i-1"}, east.stopped)
	assert.Equal(t, []string{"i-4"}, west.stopped)

	summary := report.Summary()
	assert.Contains(t, summary, "Looking for running instances in us-east-1\nShutting down running instance i-1\nSuccessfully shutdown instance i-1\n")
	assert.Contains(t, summary, "Failed to shutdown instance i-5\n")
	assert.NotContains(t, summary, "i-2")
}

func TestRunDryRun(t *testing.T) {
	api := &fakeEC2{pages: [][]types.Instance{{instance("i-1", types.InstanceStateNameRunning)}}}
	s := &Shutter{Client: func(string) EC2API { return api }, DryRun: true}

	report, err := s.Run(context.Background(), []string{"eu-west-1"})
	require.NoError(t, err)
	assert.Empty(t, api.stopped)
	require.Len(t, report.Actions, 1)
	assert.Equal(t, "dry run", report.Actions[0].Result)
	assert.Equal(t, []string{"eu-west-1", "i-1", "", "stop", "dry run"}, report.Rows()[0])
}

func TestRunRegionFailure(t *testing.T) {
	good := &fakeEC2{pages: [][]types.Instance{{instance("i-1", types.InstanceStateNameRunning)}}}
	bad := &fakeEC2{describeErr: errors.New("UnauthorizedOperation")}
	clients := map[string]*fakeEC2{"us-east-1": good, "ap-south-1": bad}

	s := &Shutter{Client: func(r string) EC2API { return clients[r] }}
	report, err := s.Run(context.Background(), []string{"ap-south-1", "us-east-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ap-south-1")
	assert.Equal(t, []string{"i-1"}, good.stopped)
	require.Len(t, report.Actions, 1)
}
