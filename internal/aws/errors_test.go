// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
)

func responseError(status int, requestID string, err error) error {
	return &smithy.OperationError{
		ServiceID:     "SNS",
		OperationName: "Publish",
		Err: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
				Err:      err,
			},
			RequestID: requestID,
		},
	}
}

func TestDescribeError(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "EndpointDisabled", Message: "Endpoint is disabled"}

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
		{
			name:     "plain error",
			err:      errors.New("dial tcp: timeout"),
			expected: "dial tcp: timeout",
		},
		{
			name:     "api error without response",
			err:      fmt.Errorf("publish: %w", apiErr),
			expected: "EndpointDisabled: Endpoint is disabled",
		},
		{
			name:     "api error with response metadata",
			err:      responseError(400, "req-123", apiErr),
			expected: "HTTPStatusCode=400, RequestId=req-123, EndpointDisabled: Endpoint is disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DescribeError(tt.err))
		})
	}
}

func TestErrorCode(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}
	assert.Equal(t, "Throttling", ErrorCode(responseError(400, "r", apiErr)))
	assert.Equal(t, "", ErrorCode(errors.New("x")))
}
