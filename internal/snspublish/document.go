// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snspublish

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tfctl/awsops/internal/dispatch"
)

// Endpoint is one push target listed in a batch document.
type Endpoint struct {
	EndpointArn string `json:"EndpointArn"`
	Message     string `json:"Message,omitempty"`
}

// Document is the decoded payload of a batch file.
//
//	{
//	  "SameMessage": true,
//	  "Message": "{\"data\": {\"message\": \"hello\"}}",
//	  "Endpoints": [{"EndpointArn": "arn:aws:sns:...:endpoint/GCM/MyApp/..."}]
//	}
type Document struct {
	SameMessage bool       `json:"SameMessage"`
	Message     string     `json:"Message"`
	Endpoints   []Endpoint `json:"Endpoints"`
}

// Decode parses a batch document. The Endpoints array is required.
func Decode(data []byte) (Document, error) {
	if !gjson.ValidBytes(data) {
		return Document{}, errors.New("batch document is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	endpoints := root.Get("Endpoints")
	if !endpoints.IsArray() {
		return Document{}, errors.New("batch document has no Endpoints array")
	}

	doc := Document{
		SameMessage: root.Get("SameMessage").Bool(),
		Message:     root.Get("Message").String(),
	}
	for _, e := range endpoints.Array() {
		doc.Endpoints = append(doc.Endpoints, Endpoint{
			EndpointArn: e.Get("EndpointArn").String(),
			Message:     e.Get("Message").String(),
		})
	}
	return doc, nil
}

// Target is one publish: the endpoint and the message it receives.
type Target struct {
	Arn     string
	Message string
}

// Items expands the document into dispatchable targets. With SameMessage set
// the top-level Message replaces each endpoint's own, unless it is empty.
func (d Document) Items() []dispatch.Item[Target] {
	items := make([]dispatch.Item[Target], 0, len(d.Endpoints))
	for _, e := range d.Endpoints {
		msg := e.Message
		if d.SameMessage && d.Message != "" {
			msg = d.Message
		}
		items = append(items, dispatch.Item[Target]{
			ID:      e.EndpointArn,
			Payload: Target{Arn: e.EndpointArn, Message: msg},
		})
	}
	return items
}

// Platform returns the push platform of a mobile endpoint ARN, e.g.
// "arn:aws:sns:us-west-2:111122223333:endpoint/GCM/MyApp/55a1..." -> "GCM".
// An empty ARN has an empty platform.
func Platform(arn string) (string, error) {
	if arn == "" {
		return "", nil
	}
	parts := strings.SplitN(arn, ":", 6) //nolint:mnd
	if len(parts) < 6 {                  //nolint:mnd
		return "", fmt.Errorf("malformed endpoint arn %q", arn)
	}
	resource := strings.Split(parts[5], "/")
	if len(resource) < 2 {
		return "", fmt.Errorf("endpoint arn %q has no platform", arn)
	}
	return resource[1], nil
}

// PlatformMessage wraps message in the per-platform envelope SNS expects
// with MessageStructure=json. message is inserted verbatim and must already
// be escaped for use inside a JSON string.
func PlatformMessage(platform, message string) string {
	return fmt.Sprintf(`{"%s": "%s"}`, platform, message)
}
