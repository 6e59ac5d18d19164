// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package autoshut

import (
	"fmt"
	"strings"
)

// Action is what happened to one running instance.
type Action struct {
	Region     string `json:"region" yaml:"region"`
	InstanceID string `json:"instance_id" yaml:"instance_id"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Action     string `json:"action" yaml:"action"`
	Result     string `json:"result" yaml:"result"`
}

// Report is the outcome of one Run.
type Report struct {
	Regions []string `json:"regions" yaml:"regions"`
	Actions []Action `json:"actions" yaml:"actions"`
}

// Columns implements output.Table.
func (r Report) Columns() []string {
	return []string{"region", "instance", "name", "action", "result"}
}

// Rows implements output.Table.
func (r Report) Rows() [][]string {
	rows := make([][]string, len(r.Actions))
	for i, a := range r.Actions {
		rows[i] = []string{a.Region, a.InstanceID, a.Name, a.Action, a.Result}
	}
	return rows
}

// Summary renders the report as the plain text log returned by the Lambda
// handler.
func (r Report) Summary() string {
	var b strings.Builder
	for _, region := range r.Regions {
		fmt.Fprintf(&b, "Looking for running instances in %s\n", region)
		for _, a := range r.Actions {
			if a.Region != region || a.Action != "stop" {
				continue
			}
			fmt.Fprintf(&b, "Shutting down running instance %s\n", a.InstanceID)
			switch {
			case a.Result == "stopped":
				fmt.Fprintf(&b, "Successfully shutdown instance %s\n", a.InstanceID)
			case a.Result == "dry run":
				fmt.Fprintf(&b, "Dry run, instance %s left running\n", a.InstanceID)
			default:
				fmt.Fprintf(&b, "Failed to shutdown instance %s\n", a.InstanceID)
			}
		}
	}
	return b.String()
}
