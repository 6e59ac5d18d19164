// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/meta"
	"github.com/tfctl/awsops/internal/qi"
)

func qiConfigureAction(ctx context.Context, cmd *cli.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("qi configure needs an interactive terminal")
	}

	path, err := qi.SettingsFile()
	if err != nil {
		return err
	}
	s, err := qi.Configure(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	if err := s.Save(path); err != nil {
		return err
	}
	fmt.Printf("Settings saved to %s\n", path)
	return nil
}

// qiProperties resolves the launch properties of the os argument.
func qiProperties(cmd *cli.Command) (qi.Properties, error) {
	flavor := cmd.Args().First()
	if err := FlagValidators(flavor, OSValidator); err != nil {
		return qi.Properties{}, err
	}

	path, err := qi.SettingsFile()
	if err != nil {
		return qi.Properties{}, err
	}
	s, err := qi.LoadSettings(path)
	if err != nil {
		return qi.Properties{}, err
	}

	return qi.Resolve(flavor, s, qi.Overrides{
		Region:    cmd.String("region"),
		Type:      cmd.String("type"),
		Role:      cmd.String("role"),
		Key:       cmd.String("key"),
		Volume:    cmd.Int("volume"),
		AMI:       cmd.String("ami"),
		Bootstrap: cmd.String("bootstrap"),
	})
}

func newLauncher(ctx context.Context, cmd *cli.Command, region string) (*qi.Launcher, error) {
	var opts []awsx.Option
	if p := cmd.String("profile"); p != "" {
		opts = append(opts, awsx.WithProfile(p))
	}
	cfg, err := awsx.LoadAWSConfig(ctx, append(opts, awsx.WithRegion(region))...)
	if err != nil {
		return nil, err
	}
	return &qi.Launcher{
		Stacks:    awsx.NewCloudFormation(cfg),
		Instances: awsx.NewEC2(cfg),
		Out:       os.Stdout,
		Confirm:   confirm,
	}, nil
}

// confirm asks question on stdout and reports whether the answer was y/Y.
func confirm(question string) bool {
	fmt.Print(question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		log.Debugf("confirm read: err=%v", err)
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

func qiLaunchAction(ctx context.Context, cmd *cli.Command) error {
	p, err := qiProperties(cmd)
	if err != nil {
		return err
	}
	l, err := newLauncher(ctx, cmd, p.Region)
	if err != nil {
		return err
	}
	return l.Launch(ctx, p)
}

func qiTerminateAction(ctx context.Context, cmd *cli.Command) error {
	p, err := qiProperties(cmd)
	if err != nil {
		return err
	}
	l, err := newLauncher(ctx, cmd, p.Region)
	if err != nil {
		return err
	}
	return l.Terminate(ctx, p.OS)
}

func qiLaunchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "type", Usage: "ec2 instance type"},
		&cli.StringFlag{Name: "role", Usage: "ec2 instance profile name"},
		&cli.StringFlag{Name: "key", Usage: "ssh key name (Linux and Windows)"},
		&cli.IntFlag{Name: "volume", Usage: "root volume size in GB"},
		&cli.StringFlag{Name: "ami", Usage: "AMI id in the selected region"},
		&cli.StringFlag{Name: "bootstrap", Usage: "shell commands run at first boot"},
	}
}

// qiCommandBuilder constructs the cli.Command for "qi" and its
// subcommands.
func qiCommandBuilder(meta meta.Meta) *cli.Command {
	osList := strings.Join(qi.OSList, "|")

	launch := (&CommandBuilder{
		Name:      "launch",
		Usage:     "launch a quick instance",
		UsageText: "awsops qi launch <" + osList + "> [options]",
		Flags:     qiLaunchFlags(),
		Action:    qiLaunchAction,
		Meta:      meta,
		NoOutput:  true,
	}).Build()

	terminate := (&CommandBuilder{
		Name:      "terminate",
		Usage:     "terminate a quick instance",
		UsageText: "awsops qi terminate <" + osList + "> [options]",
		Action:    qiTerminateAction,
		Meta:      meta,
		NoOutput:  true,
	}).Build()

	return &cli.Command{
		Name:  "qi",
		Usage: "launch and terminate single EC2 instances through CloudFormation",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			{
				Name:   "configure",
				Usage:  "save quick instance defaults",
				Action: qiConfigureAction,
			},
			launch,
			terminate,
		},
	}
}
