// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/tfctl/awsops/internal/config"
)

// Meta contains runtime metadata shared by commands. It carries CLI arguments,
// the loaded configuration, context and the namespace (the subcommand name)
// used for namespaced config lookups.
type Meta struct {
	Args      []string
	Config    config.Type
	Context   context.Context
	Namespace string
}

// ConfigSource returns the path of the loaded config file, or "" when none
// was found.
func (m Meta) ConfigSource() string {
	return m.Config.Source
}
