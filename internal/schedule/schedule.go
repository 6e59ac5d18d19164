// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package schedule runs a job on a cron schedule until its context ends.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tfctl/awsops/internal/log"
)

// Five field specs plus descriptors such as "@daily" or "@every 1h".
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate reports whether spec is a usable schedule.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Location resolves tz, defaulting to UTC when empty.
func Location(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Next returns the first activation of spec after from, in tz.
func Next(spec, tz string, from time.Time) (time.Time, error) {
	loc, err := Location(tz)
	if err != nil {
		return time.Time{}, err
	}
	s, err := parser.Parse(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s.Next(from.In(loc)), nil
}

// Run calls job at every activation of spec and blocks until ctx is done.
// An activation is skipped while the previous run is still going. Run waits
// for an in-flight job before returning.
func Run(ctx context.Context, spec, tz string, job func(context.Context)) error {
	loc, err := Location(tz)
	if err != nil {
		return err
	}

	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	log.Infof("scheduled %q (%s); next run at %s", spec, loc, c.Entries()[0].Next.Format(time.RFC3339))

	<-ctx.Done()
	<-c.Stop().Done()
	log.Debugf("schedule %q stopped", spec)
	return nil
}
