// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package sesmailer

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"sync"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/trigger"
)

type fakeSender struct {
	mu     sync.Mutex
	inputs []*sesv2.SendEmailInput
	reject map[string]bool
}

func (f *fakeSender) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.reject[in.Destination.ToAddresses[0]] {
		return nil, &smithy.GenericAPIError{Code: "MessageRejected", Message: "Email address is not verified."}
	}
	return &sesv2.SendEmailOutput{MessageId: awsv2.String("id")}, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
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

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Recipient
		wantErr  bool
	}{
		{
			name:  "trimmed rows",
			input: "Me <me@example.com>,  You <you@example.com> , Hello \nme@example.com,them@example.com,Hi,extra\n",
			expected: []Recipient{
				{From: "Me <me@example.com>", To: "You <you@example.com>", Subject: "Hello"},
				{From: "me@example.com", To: "them@example.com", Subject: "Hi"},
			},
		},
		{
			name:     "blank lines skipped",
			input:    "\na@x.com,b@x.com,s\n\n",
			expected: []Recipient{{From: "a@x.com", To: "b@x.com", Subject: "s"}},
		},
		{name: "empty", input: "", expected: nil},
		{name: "short row", input: "a@x.com,b@x.com,s\na@x.com\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseList([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCompose(t *testing.T) {
	raw, err := Compose("me@example.com", "you@example.com", "Monthly news", Body{Text: "plain body", HTML: "<p>html body</p>"})
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", msg.Header.Get("From"))
	assert.Equal(t, "you@example.com", msg.Header.Get("To"))
	assert.Equal(t, "Monthly news", msg.Header.Get("Subject"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var types, bodies []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(p)
		require.NoError(t, err)
		ct, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
		types = append(types, ct)
		bodies = append(bodies, string(b))
	}
	assert.Equal(t, []string{"text/plain", "text/html"}, types)
	assert.Equal(t, []string{"plain body", "<p>html body</p>"}, bodies)
}

func TestComposeEncodesSubject(t *testing.T) {
	raw, err := Compose("a@x.com", "b@x.com", "Café", Body{Text: "x"})
	require.NoError(t, err)
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	decoded, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Café", decoded)
	assert.NotContains(t, string(raw), "html")
}

func TestLoadBody(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		files    map[string]string
		expected Body
		wantErr  bool
	}{
		{"both", map[string]string{DefaultTextFile: "t", DefaultHTMLFile: "h"}, Body{Text: "t", HTML: "h"}, false},
		{"text only", map[string]string{DefaultTextFile: "t"}, Body{Text: "t"}, false},
		{"html only", map[string]string{DefaultHTMLFile: "h"}, Body{HTML: "h"}, false},
		{"neither", map[string]string{}, Body{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := objstore.NewDirStore(t.TempDir())
			for k, v := range tt.files {
				require.NoError(t, store.Put(ctx, "mail", k, []byte(v)))
			}
			got, err := LoadBody(ctx, store, "mail", DefaultTextFile, DefaultHTMLFile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRunner(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewDirStore(t.TempDir())
	ref := trigger.ObjectRef{Bucket: "mail", Key: "mailing_list_14032016.csv.gz"}
	list := "me@example.com, a@example.com, Hi\nme@example.com, b@example.com, Hi\nme@example.com, c@example.com, Hi\n"
	require.NoError(t, store.Put(ctx, ref.Bucket, ref.Key, gz(t, list)))
	require.NoError(t, store.Put(ctx, ref.Bucket, DefaultTextFile, []byte("hello")))

	api := &fakeSender{reject: map[string]bool{"b@example.com": true}}
	report, err := NewRunner(store, api, ref, Options{Workers: 2}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 3, api.count())

	errLog, err := store.Get(ctx, ref.Bucket, "mailing_list_14032016_error.log")
	require.NoError(t, err)
	assert.Contains(t, string(errLog), ", b@example.com, MessageRejected: Email address is not verified.")

	// Cleanup is off; the input stays.
	_, err = store.Get(ctx, ref.Bucket, ref.Key)
	assert.NoError(t, err)
}

func TestRunnerMissingMessageFiles(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewDirStore(t.TempDir())
	ref := trigger.ObjectRef{Bucket: "mail", Key: "list.csv.gz"}
	require.NoError(t, store.Put(ctx, ref.Bucket, ref.Key, gz(t, "a@x.com,b@x.com,s\n")))

	api := &fakeSender{}
	_, err := NewRunner(store, api, ref, Options{Cleanup: true}).Run(ctx)

	var setupErr *dispatch.SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, 0, api.count())

	// Nothing ran, so the input is left in place.
	_, err = store.Get(ctx, ref.Bucket, ref.Key)
	assert.NoError(t, err)
}
