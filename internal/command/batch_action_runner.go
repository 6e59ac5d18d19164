// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/objstore"
	"github.com/tfctl/awsops/internal/trigger"
)

// RunnerFactory builds the dispatch runner for the batch stored at ref.
type RunnerFactory[T any] func(store objstore.Store, ref trigger.ObjectRef) *dispatch.Runner[T]

// BatchActionRunner[T] encapsulates the common action of the S3 batch
// subcommands (publish, mail, cfmetrics): resolve the object, build the
// store and runner, run one batch and render its report.
type BatchActionRunner[T any] struct {
	CommandName string
	NewRunner   func(ctx context.Context, cmd *cli.Command) (RunnerFactory[T], error)
}

// Run executes the batch action with the provided context and command.
func (bar *BatchActionRunner[T]) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	ref, err := ObjectRefFromCommand(cmd)
	if err != nil {
		return err
	}

	store, err := NewStore(ctx, cmd)
	if err != nil {
		return err
	}

	factory, err := bar.NewRunner(ctx, cmd)
	if err != nil {
		return err
	}

	report, err := factory(store, ref).Run(ctx)
	if err != nil {
		return err
	}

	return Render(cmd, report)
}

// NewBatchActionRunner creates a BatchActionRunner with the provided
// configuration.
func NewBatchActionRunner[T any](
	commandName string,
	newRunner func(context.Context, *cli.Command) (RunnerFactory[T], error),
) *BatchActionRunner[T] {
	return &BatchActionRunner[T]{
		CommandName: commandName,
		NewRunner:   newRunner,
	}
}
