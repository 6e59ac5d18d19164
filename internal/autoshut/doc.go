// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package autoshut stops running EC2 instances in every region unless they
// carry a tag containing the no-shut keyword (default "noshut"), e.g.
//
//	Key: "Schedule", Value: "noshut"
//	Key: "noshut",   Value: ""
//
// Instances without any tags are stopped.
package autoshut
