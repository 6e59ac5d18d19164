// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package qi

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Supported operating systems. Each is also the stack name.
const (
	AmazonLinux = "amazon-linux"
	NATInstance = "nat-instance"
	Ubuntu      = "ubuntu"
	RedhatLinux = "redhat-linux"
	Windows2012 = "windows-2012"
	Windows2008 = "windows-2008"
)

// OSList is every launchable operating system.
var OSList = []string{AmazonLinux, NATInstance, Ubuntu, RedhatLinux, Windows2012, Windows2008}

// IsWindows reports whether os is a Windows flavor.
func IsWindows(os string) bool {
	return strings.Contains(os, "windows")
}

// Overrides are per-launch values that replace saved settings when set.
type Overrides struct {
	Region    string
	Type      string
	Role      string
	Key       string
	Volume    int
	AMI       string
	Bootstrap string
}

// Properties fully describe one instance launch.
type Properties struct {
	OS        string `validate:"oneof=amazon-linux nat-instance ubuntu redhat-linux windows-2012 windows-2008"`
	Region    string `validate:"required"`
	Type      string `validate:"required"`
	Role      string `validate:"required"`
	Key       string `validate:"required"`
	Volume    int    `validate:"gte=1,lte=16384"`
	AMI       string `validate:"required,startswith=ami-"`
	Device    string `validate:"required"`
	User      string `validate:"required"`
	Bootstrap string
}

var validate = validator.New()

// Resolve merges settings and overrides for os and validates the result.
// A Key override applies to Windows launches too.
func Resolve(os string, s Settings, o Overrides) (Properties, error) {
	p := Properties{
		OS:        os,
		Region:    pick(o.Region, s.Region),
		Type:      pick(o.Type, s.Type),
		Role:      pick(o.Role, s.Role),
		Key:       pick(o.Key, s.Key),
		Volume:    s.Volume,
		AMI:       pick(o.AMI, s.AMIs[os]),
		Bootstrap: o.Bootstrap,
	}
	if o.Volume > 0 {
		p.Volume = o.Volume
	}

	switch os {
	case AmazonLinux, NATInstance:
		p.Device = "/dev/xvda"
	default:
		p.Device = "/dev/sda1"
	}

	switch {
	case IsWindows(os):
		p.User = "Administrator"
		p.Key = pick(o.Key, s.KeyWindows)
	case os == Ubuntu:
		p.User = "ubuntu"
	default:
		p.User = "ec2-user"
	}

	if err := validate.Struct(p); err != nil {
		return p, fmt.Errorf("invalid %s launch properties: %w", os, err)
	}
	return p, nil
}

func pick(override, saved string) string {
	if override != "" {
		return override
	}
	return saved
}
