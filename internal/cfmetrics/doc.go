// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package cfmetrics turns CloudFront access log lines into CloudWatch
// metric data. Every line contributes a count of 1 to a metric named after
// each of its field values, in a namespace named after the requested host.
package cfmetrics
