// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws contains AWS SDK v2 helpers shared by the utilities: config
// loading with functional options, service client constructors, region
// discovery and error rendering for per-item error logs.
package aws
