// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"errors"
	"fmt"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

// DescribeError renders an SDK error as a single error-log friendly line:
//
//	HTTPStatusCode=400, RequestId=8f0c..., InvalidParameter: Invalid parameter: TargetArn
//
// Response metadata is emitted when the error carries it; the API error code
// and message follow. Errors that did not come from an AWS response fall back
// to err.Error().
func DescribeError(err error) string {
	if err == nil {
		return ""
	}

	var parts []string

	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		parts = append(parts,
			fmt.Sprintf("HTTPStatusCode=%d", re.HTTPStatusCode()),
			fmt.Sprintf("RequestId=%s", re.ServiceRequestID()))
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		parts = append(parts, fmt.Sprintf("%s: %s", ae.ErrorCode(), ae.ErrorMessage()))
	} else {
		parts = append(parts, err.Error())
	}

	return strings.Join(parts, ", ")
}

// ErrorCode returns the API error code carried by err, or "" when err is not
// an AWS API error.
func ErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}
