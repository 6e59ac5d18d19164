// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/awsops/internal/output"
	"github.com/tfctl/awsops/internal/qi"
	"github.com/tfctl/awsops/internal/schedule"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator rejects --sort and --titles combinations that only
// make sense for tabular output.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if !c.IsSet("output") {
		return nil
	}
	switch c.String("output") {
	case "json", "yaml":
		if c.IsSet("titles") {
			return fmt.Errorf("--titles only applies to text and md output")
		}
	}
	return nil
}

func OutputValidator(value any) error {
	s, _ := value.(string)
	if !slices.Contains(output.Formats, s) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func PositiveValidator(value any) error {
	if n, ok := value.(int); !ok || n < 1 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

// ScheduleValidator accepts an empty value (run once) or a valid cron spec.
func ScheduleValidator(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return schedule.Validate(s)
}

func OSValidator(value any) error {
	s, _ := value.(string)
	if !slices.Contains(qi.OSList, s) {
		return fmt.Errorf("unknown os %q, must be one of %v", s, qi.OSList)
	}
	return nil
}
