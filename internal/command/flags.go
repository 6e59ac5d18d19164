// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/awsops/internal/output"
)

// NewGlobalFlags returns the output flags shared by report producing
// commands. params[0] is the command namespace and params[1] the config file.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns, path := nsAndPath(params)

	flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (" + strings.Join(output.Formats, "|") + ")",
			Value:   "text",
			Sources: ConfigSources(ns, "output", path, "AWSOPS_OUTPUT"),
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated row filters for text and md output, e.g. failed>0",
		},
		&cli.IntFlag{
			Name:  "padding",
			Usage: "cell padding for text output",
			Value: 1,
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of columns to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewAWSFlags returns the credential selection flags.
func NewAWSFlags(params ...string) []cli.Flag {
	ns, path := nsAndPath(params)

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "AWS shared config profile",
			Sources: ConfigSources(ns, "profile", path, "AWS_PROFILE"),
		},
		&cli.StringFlag{
			Name:    "region",
			Aliases: []string{"r"},
			Usage:   "AWS region",
			Sources: ConfigSources(ns, "region", path, "AWS_REGION", "AWS_DEFAULT_REGION"),
		},
	}
}

// NewWorkersFlag returns the dispatcher concurrency flag for ns.
func NewWorkersFlag(ns, path string, value int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "workers",
		Aliases: []string{"w"},
		Usage:   "maximum concurrent operations",
		Value:   value,
		Sources: ConfigSources(ns, "workers", path, "AWSOPS_WORKERS"),
		Validator: func(value int) error {
			return FlagValidators(value, PositiveValidator)
		},
	}
}

// NewStoreFlags returns the flags locating batch input objects.
func NewStoreFlags(ns, path string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "bucket",
			Aliases: []string{"b"},
			Usage:   "bucket holding the batch object",
			Sources: ConfigSources(ns, "bucket", path, "AWSOPS_BUCKET"),
		},
		&cli.StringFlag{
			Name:    "key",
			Aliases: []string{"k"},
			Usage:   "key of the batch object",
		},
		&cli.BoolFlag{
			Name:    "cleanup",
			Usage:   "delete the batch object once it has been dispatched",
			Sources: ConfigSources(ns, "cleanup", path, "AWSOPS_CLEANUP"),
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "S3 compatible endpoint URL",
			Sources: ConfigSources(ns, "s3-endpoint", path, "AWSOPS_S3_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "store-dir",
			Usage:   "read and write batch objects beneath this local directory instead of S3",
			Sources: ConfigSources(ns, "store-dir", path, "AWSOPS_STORE_DIR"),
		},
	}
}

// NewTopicFlag returns the SNS topic ARN flag.
func NewTopicFlag(ns, path string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "topic",
		Usage:   "SNS topic ARN",
		Sources: ConfigSources(ns, "topic", path, "AWSOPS_TOPIC_ARN"),
	}
}

// NewScheduleFlags returns the flags that turn a one-shot command into a
// cron scheduled loop.
func NewScheduleFlags(ns, path string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "schedule",
			Usage:   "cron spec (or @every/@daily) to run repeatedly until interrupted",
			Sources: ConfigSources(ns, "schedule", path),
			Validator: func(value string) error {
				return FlagValidators(value, ScheduleValidator)
			},
		},
		&cli.StringFlag{
			Name:    "tz",
			Usage:   "time zone the schedule is evaluated in",
			Value:   "UTC",
			Sources: ConfigSources(ns, "tz", path),
		},
	}
}

// ConfigSources builds a value source chain of the env vars, then the
// namespaced and global keys of the config file at path.
func ConfigSources(ns, name, path string, envs ...string) cli.ValueSourceChain {
	chain := cli.EnvVars(envs...)
	if path == "" {
		return chain
	}
	if ns != "" {
		chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)))
	}
	chain.Chain = append(chain.Chain, yaml.YAML(name, altsrc.StringSourcer(path)))
	return chain
}

func nsAndPath(params []string) (ns, path string) {
	if len(params) > 0 {
		ns = params[0]
	}
	if len(params) > 1 {
		path = params[1]
	}
	return
}
