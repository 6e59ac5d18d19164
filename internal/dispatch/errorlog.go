// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// TimeLayout is the timestamp format of error log records.
const TimeLayout = "2006-01-02 15:04:05 UTC"

// Entry is one failed item.
type Entry struct {
	Time   time.Time `json:"time" yaml:"time"`
	ID     string    `json:"id" yaml:"id"`
	Detail string    `json:"detail" yaml:"detail"`
}

// String renders the entry as an error log record.
func (e Entry) String() string {
	return fmt.Sprintf("%s, %s, %s", e.Time.UTC().Format(TimeLayout), e.ID, e.Detail)
}

// ErrorLog is an append-only collection of entries shared by the workers of a
// single batch. The zero value is ready to use.
type ErrorLog struct {
	mu      sync.Mutex
	entries []Entry
}

// Append adds e to the log.
func (l *ErrorLog) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Len returns the number of entries.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the entries in append order.
func (l *ErrorLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Bytes serializes the log as newline-joined records without a trailing
// newline.
func (l *ErrorLog) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	records := make([]string, len(l.entries))
	for i, e := range l.entries {
		records[i] = e.String()
	}
	return []byte(strings.Join(records, "\n"))
}

// Reset empties the log.
func (l *ErrorLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
