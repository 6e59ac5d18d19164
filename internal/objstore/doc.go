// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package objstore reads batch inputs and writes batch outputs as whole
// objects. S3Store talks to S3 (or an S3-compatible endpoint); DirStore maps
// buckets onto directories for local runs.
package objstore
