// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package dispatch fans independent, side-effecting operations out to a
// bounded worker pool and collects the failures into an ErrorLog.
//
// A Dispatcher attempts every item exactly once and blocks until all of them
// have completed. An item's failure is recorded and never affects other
// items. A Runner wraps one Dispatch call with the surrounding batch
// lifecycle:
//
//	Idle -> Dispatching -> Draining -> Reporting -> Idle
//
// Setup failures abort the batch before any item runs (*SetupError). When the
// batch has failures the ErrorLog is written to a Sink under
// ErrorLogKey(batch id); a failed write is returned as *ReportError.
//
// Example:
//
//	d := dispatch.New(10, func(ctx context.Context, it dispatch.Item[string]) error {
//		return send(ctx, it.Payload)
//	})
//	r := &dispatch.Runner[string]{Name: "mail", Setup: setup, Dispatcher: d, Sink: sink}
//	report, err := r.Run(ctx)
package dispatch
