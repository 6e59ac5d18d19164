// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package snspublish publishes a push notification to every mobile endpoint
// listed in a gzipped JSON batch file.
package snspublish
