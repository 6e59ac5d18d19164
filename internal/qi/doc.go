// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package qi launches and terminates single EC2 instances through
// CloudFormation. Saved settings (region, type, role, keys, volume and one AMI
// per operating system) are merged with per-launch overrides, validated, and
// rendered into a small stack: a security group opening 22, 3389, 80 and 443
// plus the instance itself. The stack is named after the operating system so
// at most one quick instance of each flavor exists per region.
package qi
