// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package snspublish

import (
	"bytes"
	"compress/gzip"
	"context"
	"sync"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/trigger"
)

const (
	gcmArn  = "arn:aws:sns:us-west-2:111122223333:endpoint/GCM/MyApp/55a1ffbf-aefc-3e7a-bd84-3af5bca4fc63"
	apnsArn = "arn:aws:sns:us-west-2:111122223333:endpoint/APNS/MyApp/0d4b8c7e-1111-2222-3333-444455556666"
)

type fakePublisher struct {
	mu     sync.Mutex
	inputs []*sns.PublishInput
	fail   map[string]bool
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.fail[*in.TargetArn] {
		return nil, &smithy.GenericAPIError{Code: "EndpointDisabled", Message: "Endpoint is disabled"}
	}
	return &sns.PublishOutput{MessageId: awsv2.String("m-1")}, nil
}

func gz(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestPlatform(t *testing.T) {
	tests := []struct {
		arn      string
		expected string
		wantErr  bool
	}{
		{gcmArn, "GCM", false},
		{apnsArn, "APNS", false},
		{"", "", false},
		{"arn:aws:sns:us-west-2", "", true},
		{"arn:aws:sns:us-west-2:111122223333:MyTopic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arn, func(t *testing.T) {
			got, err := Platform(tt.arn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPlatformMessage(t *testing.T) {
	msg := `{\"data\": {\"message\": \"hi\"}}`
	assert.Equal(t, `{"GCM": "{\"data\": {\"message\": \"hi\"}}"}`, PlatformMessage("GCM", msg))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []dispatch.Item[Target]
		wantErr  bool
	}{
		{
			name:  "per endpoint message",
			input: `{"Endpoints": [{"EndpointArn": "a", "Message": "m1"}, {"EndpointArn": "b", "Message": "m2"}]}`,
			expected: []dispatch.Item[Target]{
				{ID: "a", Payload: Target{Arn: "a", Message: "m1"}},
				{ID: "b", Payload: Target{Arn: "b", Message: "m2"}},
			},
		},
		{
			name:  "same message",
			input: `{"SameMessage": true, "Message": "all", "Endpoints": [{"EndpointArn": "a", "Message": "own"}, {"EndpointArn": "b"}]}`,
			expected: []dispatch.Item[Target]{
				{ID: "a", Payload: Target{Arn: "a", Message: "all"}},
				{ID: "b", Payload: Target{Arn: "b", Message: "all"}},
			},
		},
		{
			name:  "same message false keeps own",
			input: `{"SameMessage": false, "Message": "all", "Endpoints": [{"EndpointArn": "a", "Message": "own"}]}`,
			expected: []dispatch.Item[Target]{
				{ID: "a", Payload: Target{Arn: "a", Message: "own"}},
			},
		},
		{
			name:     "empty endpoints",
			input:    `{"Endpoints": []}`,
			expected: []dispatch.Item[Target]{},
		},
		{name: "missing endpoints", input: `{"Message": "x"}`, wantErr: true},
		{name: "invalid json", input: `{"Endpoints": [`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, doc.Items())
		})
	}
}

func TestExecutor(t *testing.T) {
	api := &fakePublisher{}
	exec := Executor(api)

	err := exec(context.Background(), dispatch.Item[Target]{ID: gcmArn, Payload: Target{Arn: gcmArn, Message: "hello"}})
	require.NoError(t, err)
	require.Len(t, api.inputs, 1)
	assert.Equal(t, gcmArn, *api.inputs[0].TargetArn)
	assert.Equal(t, `{"GCM": "hello"}`, *api.inputs[0].Message)
	assert.Equal(t, "json", *api.inputs[0].MessageStructure)

	err = exec(context.Background(), dispatch.Item[Target]{ID: "bad", Payload: Target{Arn: "arn:bad"}})
	assert.Error(t, err)
	assert.Len(t, api.inputs, 1)
}

func TestRunner(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewDirStore(t.TempDir())
	ref := trigger.ObjectRef{Bucket: "push", Key: "batches/endpoint_list_14032016.json.gz"}
	doc := `{"SameMessage": true, "Message": "hi", "Endpoints": [` +
		`{"EndpointArn": "` + gcmArn + `"}, {"EndpointArn": "` + apnsArn + `"}]}`
	require.NoError(t, store.Put(ctx, ref.Bucket, ref.Key, gz(t, doc)))

	api := &fakePublisher{fail: map[string]bool{apnsArn: true}}
	clock := clockwork.NewFakeClockAt(time.Date(2016, 6, 2, 8, 0, 0, 0, time.UTC))
	r := NewRunner(store, api, ref, Options{Workers: 4, LogTime: true, Cleanup: true, Clock: clock})

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, api.inputs, 2)

	errLog, err := store.Get(ctx, ref.Bucket, "batches/endpoint_list_14032016_error.log")
	require.NoError(t, err)
	assert.Equal(t, "2016-06-02 08:00:00 UTC, "+apnsArn+", EndpointDisabled: Endpoint is disabled", string(errLog))

	timeLog, err := store.Get(ctx, ref.Bucket, ref.Key+"_time.log")
	require.NoError(t, err)
	assert.Equal(t, "1464854400.000000, 1464854400.000000, 0.000000", string(timeLog))

	_, err = store.Get(ctx, ref.Bucket, ref.Key)
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}

func TestRunnerMissingInput(t *testing.T) {
	store := objstore.NewDirStore(t.TempDir())
	api := &fakePublisher{}
	r := NewRunner(store, api, trigger.ObjectRef{Bucket: "push", Key: "missing.json.gz"}, Options{})

	_, err := r.Run(context.Background())
	var setupErr *dispatch.SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.ErrorIs(t, err, objstore.ErrNotFound)
	assert.Empty(t, api.inputs)
}
