// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sesmailer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/jonboulle/clockwork"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/log"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/trigger"
)

const (
	// DefaultWorkers is the send concurrency when none is configured.
	DefaultWorkers = 10

	DefaultTextFile = "text_message.txt"
	DefaultHTMLFile = "html_message.html"
)

// Sender is the slice of the SES v2 client used for sending.
type Sender interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Recipient is one row of a mailing list.
type Recipient struct {
	From    string
	To      string
	Subject string
}

// Mail is a composed message ready to send.
type Mail struct {
	Recipient
	Raw []byte
}

// Options tunes a mail run.
type Options struct {
	Workers  int
	TextFile string
	HTMLFile string
	Cleanup  bool
	Clock    clockwork.Clock
}

// ParseList reads "from, to, subject" rows. Fields are trimmed and extra
// columns are ignored. A row with fewer than three columns fails the list.
func ParseList(data []byte) ([]Recipient, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	var out []Recipient
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse mailing list: %w", err)
		}
		if len(rec) < 3 { //nolint:mnd
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("mailing list line %d: expected from, to, subject", line)
		}
		out = append(out, Recipient{
			From:    strings.TrimSpace(rec[0]),
			To:      strings.TrimSpace(rec[1]),
			Subject: strings.TrimSpace(rec[2]),
		})
	}
	return out, nil
}

// LoadBody reads the companion message files from bucket. A missing file is
// logged and skipped; both missing is an error.
func LoadBody(ctx context.Context, store objstore.Store, bucket, textFile, htmlFile string) (Body, error) {
	var body Body

	read := func(name string) (string, error) {
		b, err := store.Get(ctx, bucket, name)
		if errors.Is(err, objstore.ErrNotFound) {
			log.Warnf("failed to read message file. Did you upload %s?", name)
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	var err error
	if body.Text, err = read(textFile); err != nil {
		return Body{}, err
	}
	if body.HTML, err = read(htmlFile); err != nil {
		return Body{}, err
	}
	if body.Empty() {
		return Body{}, errors.New("cannot continue without a text or html message file")
	}
	return body, nil
}

// Executor sends one composed mail.
func Executor(api Sender) dispatch.Executor[Mail] {
	return func(ctx context.Context, item dispatch.Item[Mail]) error {
		out, err := api.SendEmail(ctx, &sesv2.SendEmailInput{
			FromEmailAddress: awsv2.String(item.Payload.From),
			Destination: &types.Destination{
				ToAddresses: []string{item.Payload.To},
			},
			Content: &types.EmailContent{
				Raw: &types.RawMessage{Data: item.Payload.Raw},
			},
		})
		if err != nil {
			return err
		}
		log.Tracef("sent: to=%s id=%s", item.Payload.To, awsv2.ToString(out.MessageId))
		return nil
	}
}

// NewRunner builds the runner that mails the list stored at ref.
func NewRunner(store objstore.Store, api Sender, ref trigger.ObjectRef, opts Options) *dispatch.Runner[Mail] {
	if opts.Workers == 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.TextFile == "" {
		opts.TextFile = DefaultTextFile
	}
	if opts.HTMLFile == "" {
		opts.HTMLFile = DefaultHTMLFile
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	var hooks []dispatch.Hook
	if opts.Cleanup {
		hooks = append(hooks, objstore.DeleteHook(store, ref.Bucket, ref.Key))
	}

	setup := func(ctx context.Context) (dispatch.Batch[Mail], error) {
		data, err := objstore.ReadGzip(ctx, store, ref.Bucket, ref.Key)
		if err != nil {
			return dispatch.Batch[Mail]{}, err
		}
		list, err := ParseList(data)
		if err != nil {
			return dispatch.Batch[Mail]{}, err
		}
		body, err := LoadBody(ctx, store, ref.Bucket, opts.TextFile, opts.HTMLFile)
		if err != nil {
			return dispatch.Batch[Mail]{}, err
		}

		items := make([]dispatch.Item[Mail], 0, len(list))
		for _, rcpt := range list {
			raw, err := Compose(rcpt.From, rcpt.To, rcpt.Subject, body)
			if err != nil {
				return dispatch.Batch[Mail]{}, err
			}
			items = append(items, dispatch.Item[Mail]{ID: rcpt.To, Payload: Mail{Recipient: rcpt, Raw: raw}})
		}
		return dispatch.Batch[Mail]{ID: ref.Key, Items: items}, nil
	}

	return &dispatch.Runner[Mail]{
		Name:  "mail",
		Setup: setup,
		Dispatcher: dispatch.New(opts.Workers, Executor(api),
			dispatch.WithClock(opts.Clock),
			dispatch.WithDescriber(awsx.DescribeError)),
		Sink:  objstore.Sink{Store: store, Bucket: ref.Bucket},
		Hooks: hooks,
		Clock: opts.Clock,
	}
}
