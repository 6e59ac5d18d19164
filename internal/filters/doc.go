// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects rows of tabular command output.
//
// Filters are key-operator-target expressions joined by a delimiter (default
// comma, override with AWSOPS_FILTER_DELIM). Keys name output columns.
//
// Operators:
//
//   - = : exact match, numeric when both sides are numbers
//   - ^ : prefix match
//   - ~ : case-insensitive substring match
//   - < : less than, numeric when both sides are numbers
//   - > : greater than, numeric when both sides are numbers
//   - @ : list membership, the cell is split on commas and spaces
//   - / : regular expression match
//
// Any operator may be negated with a leading '!'. A bare key keeps rows whose
// cell is not empty.
//
// Examples:
//
//   - "failed>0" : batches with at least one failure
//   - "region^us-" : rows in a US region
//   - "state!=stopped"
package filters
