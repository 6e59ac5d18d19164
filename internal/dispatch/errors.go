// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import "fmt"

// SetupError reports that a batch could not be assembled. No item was
// dispatched.
type SetupError struct {
	Batch string
	Err   error
}

func (e *SetupError) Error() string {
	if e.Batch == "" {
		return fmt.Sprintf("batch setup failed: %v", e.Err)
	}
	return fmt.Sprintf("batch %s setup failed: %v", e.Batch, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// ReportError reports that the error log of a completed batch could not be
// written to its sink. The dispatch itself has already run to completion.
type ReportError struct {
	Batch string
	Key   string
	Err   error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("batch %s: failed to write error log %s: %v", e.Batch, e.Key, e.Err)
}

func (e *ReportError) Unwrap() error { return e.Err }
