// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"

	"github.com/tfctl/awsops/internal/log"
)

// ErrorLogSuffix is appended to the batch id to name its error log.
const ErrorLogSuffix = "_error.log"

// inputExtensions are stripped from a batch id before a suffix is appended.
// Longest first.
var inputExtensions = []string{".json.gz", ".csv.gz", ".json", ".csv", ".gz"}

// DerivedKey strips a known input extension from key and appends suffix, e.g.
// "lists/mailing_14032016.csv.gz" -> "lists/mailing_14032016_error.log".
func DerivedKey(key, suffix string) string {
	for _, ext := range inputExtensions {
		if strings.HasSuffix(key, ext) {
			key = strings.TrimSuffix(key, ext)
			break
		}
	}
	return key + suffix
}

// ErrorLogKey names the error log of the batch identified by key.
func ErrorLogKey(key string) string {
	return DerivedKey(key, ErrorLogSuffix)
}

// State is the lifecycle position of a Runner.
type State int32

const (
	Idle State = iota
	Dispatching
	Draining
	Reporting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dispatching:
		return "dispatching"
	case Draining:
		return "draining"
	case Reporting:
		return "reporting"
	}
	return "unknown"
}

// Batch is the set of items derived from one triggering input.
type Batch[T any] struct {
	ID    string
	Items []Item[T]
}

// Sink durably stores a serialized error log under key.
type Sink interface {
	Write(ctx context.Context, key string, data []byte) error
}

// Hook runs after a batch has drained and before its error log is reported.
// Hook failures are logged and do not fail the batch.
type Hook func(ctx context.Context, report Report) error

// Report summarizes one batch run.
type Report struct {
	Batch    string    `json:"batch" yaml:"batch"`
	Total    int       `json:"total" yaml:"total"`
	Failed   int       `json:"failed" yaml:"failed"`
	ErrorKey string    `json:"error_key,omitempty" yaml:"error_key,omitempty"`
	Started  time.Time `json:"started" yaml:"started"`
	Finished time.Time `json:"finished" yaml:"finished"`
	Errors   []Entry   `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Succeeded returns the number of items that did not fail.
func (r Report) Succeeded() int {
	return r.Total - r.Failed
}

// Duration returns the wall-clock time between dispatch start and drain.
func (r Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Columns implements output.Table.
func (r Report) Columns() []string {
	return []string{"batch", "total", "succeeded", "failed", "duration", "error log"}
}

// Rows implements output.Table.
func (r Report) Rows() [][]string {
	return [][]string{{
		r.Batch,
		humanize.Comma(int64(r.Total)),
		humanize.Comma(int64(r.Succeeded())),
		humanize.Comma(int64(r.Failed)),
		r.Duration().Round(time.Millisecond).String(),
		r.ErrorKey,
	}}
}

// TimeLog renders "start, end, total" in seconds with microsecond precision.
func (r Report) TimeLog() []byte {
	start := r.Started.UnixMicro()
	end := r.Finished.UnixMicro()
	return []byte(seconds(start) + ", " + seconds(end) + ", " + seconds(end-start))
}

func seconds(us int64) string {
	sign := ""
	if us < 0 {
		sign, us = "-", -us
	}
	return fmt.Sprintf("%s%d.%06d", sign, us/1e6, us%1e6)
}

// Runner sequences one batch: setup, dispatch, drain, hooks, report.
type Runner[T any] struct {
	Name       string
	Setup      func(ctx context.Context) (Batch[T], error)
	Dispatcher *Dispatcher[T]
	Sink       Sink
	Hooks      []Hook
	Clock      clockwork.Clock

	state atomic.Int32
}

// State returns the runner's current lifecycle position.
func (r *Runner[T]) State() State {
	return State(r.state.Load())
}

func (r *Runner[T]) transition(s State) {
	r.state.Store(int32(s))
	log.Debugf("%s: state=%s", r.Name, s)
}

func (r *Runner[T]) clock() clockwork.Clock {
	if r.Clock == nil {
		return clockwork.NewRealClock()
	}
	return r.Clock
}

// Run executes one batch. A *SetupError means nothing was dispatched; a
// *ReportError means the dispatch completed but its error log was lost. Item
// failures alone never produce an error.
func (r *Runner[T]) Run(ctx context.Context) (Report, error) {
	defer r.transition(Idle)

	batch, err := r.Setup(ctx)
	if err != nil {
		log.Errorf("%s: %v. Aborting...", r.Name, err)
		return Report{}, &SetupError{Err: err}
	}

	report := Report{Batch: batch.ID, Total: len(batch.Items)}

	r.transition(Dispatching)
	report.Started = r.clock().Now()
	errs, err := r.Dispatcher.Dispatch(ctx, batch.Items)
	if err != nil {
		return report, &SetupError{Batch: batch.ID, Err: err}
	}
	r.transition(Draining)
	report.Finished = r.clock().Now()
	report.Failed = errs.Len()
	log.Infof("%s: batch %s complete: total=%d failed=%d", r.Name, batch.ID, report.Total, report.Failed)

	for _, hook := range r.Hooks {
		if err := hook(ctx, report); err != nil {
			log.WithError(err).Warnf("%s: post-batch hook failed", r.Name)
		}
	}

	r.transition(Reporting)
	if errs.Len() > 0 {
		report.Errors = errs.Entries()
		report.ErrorKey = ErrorLogKey(batch.ID)
		err := r.Sink.Write(ctx, report.ErrorKey, errs.Bytes())
		errs.Reset()
		if err != nil {
			return report, &ReportError{Batch: batch.ID, Key: report.ErrorKey, Err: err}
		}
		log.Infof("%s: errors saved in %s", r.Name, report.ErrorKey)
	}

	return report, nil
}

// String identifies the runner in logs.
func (r *Runner[T]) String() string {
	return fmt.Sprintf("runner-%s", r.Name)
}
