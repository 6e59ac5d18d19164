// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"

	"github.com/tfctl/awsops/internal/log"
)

// Item is one unit of dispatchable work. ID identifies the item in the error
// log (recipient address, endpoint ARN, request id, ...).
type Item[T any] struct {
	ID      string
	Payload T
}

// Executor performs exactly one external call for item. A non-nil error marks
// the item failed; it is recorded and never affects other items.
type Executor[T any] func(ctx context.Context, item Item[T]) error

// Describer renders an item error as the error log detail.
type Describer func(error) string

// Dispatcher fans items out to a bounded ants pool and collects failures.
type Dispatcher[T any] struct {
	workers  int
	exec     Executor[T]
	clock    clockwork.Clock
	describe Describer
}

// Option customizes a Dispatcher.
type Option func(*settings)

type settings struct {
	clock    clockwork.Clock
	describe Describer
}

// WithClock sets the clock used to timestamp error log entries.
func WithClock(c clockwork.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithDescriber sets how item errors are rendered. Defaults to err.Error().
func WithDescriber(d Describer) Option {
	return func(s *settings) { s.describe = d }
}

func newSettings(opts []Option) settings {
	s := settings{
		clock:    clockwork.NewRealClock(),
		describe: func(err error) string { return err.Error() },
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// New returns a Dispatcher running at most workers executors at once.
// workers below 1 is treated as 1.
func New[T any](workers int, exec Executor[T], opts ...Option) *Dispatcher[T] {
	if workers < 1 {
		workers = 1
	}
	s := newSettings(opts)
	return &Dispatcher[T]{
		workers:  workers,
		exec:     exec,
		clock:    s.clock,
		describe: s.describe,
	}
}

// Workers returns the concurrency bound.
func (d *Dispatcher[T]) Workers() int {
	return d.workers
}

// Dispatch attempts every item exactly once and returns after all of them
// have completed. Failures, including panics inside the executor, are
// appended to the returned ErrorLog. The error return is reserved for the
// pool failing to start, in which case no item was attempted.
func (d *Dispatcher[T]) Dispatch(ctx context.Context, items []Item[T]) (*ErrorLog, error) {
	errs := &ErrorLog{}
	if len(items) == 0 {
		log.Debugf("dispatch: no items")
		return errs, nil
	}

	pool, err := ants.NewPool(d.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	log.Debugf("dispatch: items=%d workers=%d", len(items), d.workers)

	var wg sync.WaitGroup
	for _, item := range items {
		item := item
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			d.run(ctx, item, errs)
		}); err != nil {
			// The pool only rejects work once released; keep the item's one
			// attempt accounted for.
			wg.Done()
			d.record(errs, item.ID, fmt.Errorf("submit to worker pool: %w", err))
		}
	}

	wg.Wait()
	log.Debugf("dispatch: drained items=%d failed=%d", len(items), errs.Len())
	return errs, nil
}

func (d *Dispatcher[T]) run(ctx context.Context, item Item[T], errs *ErrorLog) {
	defer func() {
		if r := recover(); r != nil {
			d.record(errs, item.ID, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := d.exec(ctx, item); err != nil {
		d.record(errs, item.ID, err)
	}
}

func (d *Dispatcher[T]) record(errs *ErrorLog, id string, err error) {
	log.Tracef("item failed: id=%s err=%v", id, err)
	errs.Append(Entry{
		Time:   d.clock.Now(),
		ID:     id,
		Detail: d.describe(err),
	})
}
