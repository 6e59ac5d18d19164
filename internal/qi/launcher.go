// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package qi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/log"
)

// PollInterval is the default delay between stack status checks.
const PollInterval = 5 * time.Second

// ErrStackFailed is returned when stack creation fails or rolls back.
var ErrStackFailed = errors.New("stack creation failed")

// StackAPI is the slice of the CloudFormation client used by the launcher.
type StackAPI interface {
	CreateStack(ctx context.Context, in *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	DeleteStack(ctx context.Context, in *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
}

// InstanceAPI is the slice of the EC2 client used to find the public address.
type InstanceAPI interface {
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

var (
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9900"))
	commandStyle = lipgloss.NewStyle().Bold(true)
)

// Launcher creates and deletes quick instance stacks.
type Launcher struct {
	Stacks    StackAPI
	Instances InstanceAPI
	Out       io.Writer
	Clock     clockwork.Clock
	Interval  time.Duration

	// Confirm asks a yes/no question. A nil Confirm answers no.
	Confirm func(question string) bool
}

func (l *Launcher) clock() clockwork.Clock {
	if l.Clock == nil {
		return clockwork.NewRealClock()
	}
	return l.Clock
}

func (l *Launcher) interval() time.Duration {
	if l.Interval <= 0 {
		return PollInterval
	}
	return l.Interval
}

// Launch creates the stack for p and waits for it to settle. When the stack
// already exists its details are shown and termination is offered.
func (l *Launcher) Launch(ctx context.Context, p Properties) error {
	body, err := Template(p)
	if err != nil {
		return err
	}

	fmt.Fprintf(l.Out, "Launching instance %s... \n", p.OS)
	out, err := l.Stacks.CreateStack(ctx, &cloudformation.CreateStackInput{
		StackName:    awsv2.String(p.OS),
		TemplateBody: awsv2.String(string(body)),
	})
	if err != nil {
		if awsx.ErrorCode(err) != "AlreadyExistsException" {
			return fmt.Errorf("failed to create stack %s: %s", p.OS, awsx.DescribeError(err))
		}
		return l.existing(ctx, p)
	}
	log.Debugf("stack created: %s", awsv2.ToString(out.StackId))

	for {
		stack, err := l.stack(ctx, p.OS)
		if err != nil {
			return err
		}

		status := string(stack.StackStatus)
		switch {
		case stack.StackStatus == cftypes.StackStatusCreateComplete:
			fmt.Fprintln(l.Out, "Instance created successfully.")
			return l.detail(ctx, p, stack)
		case stack.StackStatus == cftypes.StackStatusCreateFailed || strings.Contains(status, "ROLLBACK"):
			return fmt.Errorf("%w: instance '%s' is %s, review the error in the CloudFormation console", ErrStackFailed, p.OS, status)
		}
		log.Debugf("stack %s status %s", p.OS, status)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock().After(l.interval()):
		}
	}
}

func (l *Launcher) existing(ctx context.Context, p Properties) error {
	stack, err := l.stack(ctx, p.OS)
	if err != nil {
		return err
	}
	if stack.StackStatus == cftypes.StackStatusCreateComplete {
		if err := l.detail(ctx, p, stack); err != nil {
			return err
		}
	}

	question := fmt.Sprintf("Instance '%s' already exists. Would you like to terminate it? ", p.OS)
	if l.Confirm != nil && l.Confirm(question) {
		return l.Terminate(ctx, p.OS)
	}
	return nil
}

// Terminate deletes the stack named name.
func (l *Launcher) Terminate(ctx context.Context, name string) error {
	fmt.Fprintf(l.Out, "Terminating %s...\n", name)
	if _, err := l.Stacks.DeleteStack(ctx, &cloudformation.DeleteStackInput{StackName: awsv2.String(name)}); err != nil {
		return fmt.Errorf("failed to terminate %s: %s", name, awsx.DescribeError(err))
	}
	return nil
}

func (l *Launcher) stack(ctx context.Context, name string) (cftypes.Stack, error) {
	out, err := l.Stacks.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{StackName: awsv2.String(name)})
	if err != nil {
		return cftypes.Stack{}, fmt.Errorf("failed to get stack state: %s", awsx.DescribeError(err))
	}
	if len(out.Stacks) == 0 {
		return cftypes.Stack{}, fmt.Errorf("stack %s not found", name)
	}
	return out.Stacks[0], nil
}

// StackInstanceID returns the instance id output of stack, or "".
func StackInstanceID(stack cftypes.Stack) string {
	for _, o := range stack.Outputs {
		if awsv2.ToString(o.OutputKey) == OutputInstance {
			return awsv2.ToString(o.OutputValue)
		}
	}
	return ""
}

func (l *Launcher) publicIP(ctx context.Context, id string) (string, error) {
	out, err := l.Instances.DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{id}})
	if err != nil {
		return "", fmt.Errorf("failed to get instance ip address: %s", awsx.DescribeError(err))
	}
	for _, r := range out.Reservations {
		for _, i := range r.Instances {
			return awsv2.ToString(i.PublicIpAddress), nil
		}
	}
	return "", fmt.Errorf("instance %s not found", id)
}

func (l *Launcher) detail(ctx context.Context, p Properties, stack cftypes.Stack) error {
	fmt.Fprintln(l.Out, "Getting instance details... ")
	id := StackInstanceID(stack)
	if id == "" {
		return fmt.Errorf("stack %s has no %s output", p.OS, OutputInstance)
	}
	ip, err := l.publicIP(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(l.Out, "%s -> %s\n\n", id, ip)
	fmt.Fprintln(l.Out, Hint(p, ip))
	return nil
}

// Hint tells the user how to connect to the instance at ip.
func Hint(p Properties, ip string) string {
	if IsWindows(p.OS) {
		return hintStyle.Render("RDP to the instance by decrypting Administrator password in management console.") + "\n\n" +
			"Paste the following command in Start -> Run:\n" +
			commandStyle.Render(fmt.Sprintf("mstsc /v %s:3389", ip)) + "\n"
	}
	return hintStyle.Render("SSH into the instance using command:") + "\n" +
		commandStyle.Render(fmt.Sprintf("ssh -i ~/.ssh/%s.pem %s@%s", p.Key, p.User, ip)) + "\n"
}
