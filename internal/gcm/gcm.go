// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package gcm load tests a GCM style HTTP push endpoint by posting the same
// notification many times through the bulk dispatcher.
package gcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/tidwall/gjson"

	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/log"
)

const (
	DefaultEndpoint = "https://gcm-http.googleapis.com/gcm/send"
	DefaultWorkers  = 25
	DefaultCount    = 100
	DefaultTitle    = "Test Message"
	DefaultMessage  = "This is a test message to demonstrate how to POST json to GCM."
	DefaultBatch    = "gcm-test"

	maxBody = 64 << 10
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Data is the notification body delivered to the app.
type Data struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Payload is the JSON document posted per request.
type Payload struct {
	To       string `json:"to"`
	Priority string `json:"priority"`
	Data     Data   `json:"data"`
}

// Options tunes a push test run.
type Options struct {
	Endpoint string
	APIKey   string
	Token    string
	Title    string
	Message  string
	Count    int
	Workers  int
	Batch    string
	Clock    clockwork.Clock
}

func (o *Options) defaults() {
	if o.Endpoint == "" {
		o.Endpoint = DefaultEndpoint
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Message == "" {
		o.Message = DefaultMessage
	}
	if o.Count == 0 {
		o.Count = DefaultCount
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Batch == "" {
		o.Batch = DefaultBatch
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
}

// Executor posts one payload. Non-2xx responses, and 2xx responses whose
// body reports a per-message failure, are item errors.
func Executor(client Doer, endpoint, apiKey string) dispatch.Executor[Payload] {
	return func(ctx context.Context, item dispatch.Item[Payload]) error {
		body, err := json.Marshal(item.Payload)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "key="+apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		text, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		log.Tracef("%s: %s", item.ID, text)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
		}
		if gjson.GetBytes(text, "failure").Int() > 0 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, gjson.GetBytes(text, "results.0.error").String())
		}
		return nil
	}
}

// NewRunner builds the runner posting opts.Count copies of the notification.
func NewRunner(client Doer, sink dispatch.Sink, opts Options) *dispatch.Runner[Payload] {
	opts.defaults()

	return &dispatch.Runner[Payload]{
		Name: "gcm",
		Setup: func(context.Context) (dispatch.Batch[Payload], error) {
			if opts.APIKey == "" || opts.Token == "" {
				return dispatch.Batch[Payload]{}, errors.New("an API key and a registration token are required")
			}
			p := Payload{
				To:       opts.Token,
				Priority: "normal",
				Data:     Data{Title: opts.Title, Message: opts.Message},
			}
			items := make([]dispatch.Item[Payload], opts.Count)
			for i := range items {
				items[i] = dispatch.Item[Payload]{ID: fmt.Sprintf("request-%d", i+1), Payload: p}
			}
			return dispatch.Batch[Payload]{ID: opts.Batch, Items: items}, nil
		},
		Dispatcher: dispatch.New(opts.Workers, Executor(client, opts.Endpoint, opts.APIKey), dispatch.WithClock(opts.Clock)),
		Sink:       sink,
		Clock:      opts.Clock,
	}
}
