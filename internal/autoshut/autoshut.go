// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package autoshut

import (
	"context"
	"fmt"
	"sort"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc/pool"

	awsx "github.com/tfctl/awsops/internal/aws"
	"github.com/tfctl/awsops/internal/dispatch"
	"github.com/tfctl/awsops/internal/log"
)

const (
	// DefaultKeyword protects an instance when found in any tag key or value.
	DefaultKeyword = "noshut"

	DefaultWorkers       = 10
	DefaultRegionWorkers = 8
)

// EC2API is the slice of the EC2 client used per region.
type EC2API interface {
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	StopInstances(ctx context.Context, in *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
}

// Shutter stops running instances across regions.
type Shutter struct {
	// Client returns the EC2 client for a region.
	Client        func(region string) EC2API
	Keyword       string
	Workers       int
	RegionWorkers int
	DryRun        bool
	Clock         clockwork.Clock
}

// Candidate is a running instance found in a region.
type Candidate struct {
	Region    string
	ID        string
	Name      string
	Protected bool
}

// Protected reports whether keyword occurs in any tag key or value.
func Protected(tags []types.Tag, keyword string) bool {
	for _, t := range tags {
		if strings.Contains(awsv2.ToString(t.Key), keyword) || strings.Contains(awsv2.ToString(t.Value), keyword) {
			return true
		}
	}
	return false
}

func nameTag(tags []types.Tag) string {
	for _, t := range tags {
		if awsv2.ToString(t.Key) == "Name" {
			return awsv2.ToString(t.Value)
		}
	}
	return ""
}

// running lists the running instances of one region.
func (s *Shutter) running(ctx context.Context, region string) ([]Candidate, error) {
	api := s.Client(region)
	p := ec2.NewDescribeInstancesPaginator(api, &ec2.DescribeInstancesInput{
		Filters: []types.Filter{{
			Name:   awsv2.String("instance-state-name"),
			Values: []string{string(types.InstanceStateNameRunning)},
		}},
	})

	var out []Candidate
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to describe instances: %w", region, err)
		}
		for _, r := range page.Reservations {
			for _, i := range r.Instances {
				if i.State == nil || i.State.Name != types.InstanceStateNameRunning {
					continue
				}
				out = append(out, Candidate{
					Region:    region,
					ID:        awsv2.ToString(i.InstanceId),
					Name:      nameTag(i.Tags),
					Protected: Protected(i.Tags, s.Keyword),
				})
			}
		}
	}
	return out, nil
}

// Find lists running instances in every region concurrently. Regions that
// fail to list are reported in the error; the others are still returned.
func (s *Shutter) Find(ctx context.Context, regions []string) ([]Candidate, error) {
	workers := s.RegionWorkers
	if workers < 1 {
		workers = DefaultRegionWorkers
	}

	p := pool.NewWithResults[[]Candidate]().
		WithContext(ctx).
		WithCollectErrored().
		WithMaxGoroutines(workers)
	for _, region := range regions {
		region := region
		p.Go(func(ctx context.Context) ([]Candidate, error) {
			log.Debugf("looking for running instances in %s", region)
			return s.running(ctx, region)
		})
	}
	perRegion, err := p.Wait()

	var all []Candidate
	for _, c := range perRegion {
		all = append(all, c...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Region != all[j].Region {
			return all[i].Region < all[j].Region
		}
		return all[i].ID < all[j].ID
	})
	return all, err
}

// Run finds running instances and stops every unprotected one. Stops run
// through the bulk dispatcher; a failed stop is reported on its row.
func (s *Shutter) Run(ctx context.Context, regions []string) (Report, error) {
	if s.Keyword == "" {
		s.Keyword = DefaultKeyword
	}
	if s.Clock == nil {
		s.Clock = clockwork.NewRealClock()
	}

	candidates, findErr := s.Find(ctx, regions)
	if findErr != nil {
		log.WithError(findErr).Warnf("some regions could not be searched")
	}

	report := Report{Regions: regions}
	var items []dispatch.Item[Candidate]
	for _, c := range candidates {
		action := Action{Region: c.Region, InstanceID: c.ID, Name: c.Name}
		switch {
		case c.Protected:
			action.Action = "skip"
			action.Result = "tagged " + s.Keyword
		case s.DryRun:
			action.Action = "stop"
			action.Result = "dry run"
		default:
			action.Action = "stop"
			items = append(items, dispatch.Item[Candidate]{ID: c.ID, Payload: c})
		}
		report.Actions = append(report.Actions, action)
	}

	workers := s.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}
	d := dispatch.New(workers, s.stop,
		dispatch.WithClock(s.Clock),
		dispatch.WithDescriber(awsx.DescribeError))
	errs, err := d.Dispatch(ctx, items)
	if err != nil {
		return report, err
	}

	failed := map[string]string{}
	for _, e := range errs.Entries() {
		failed[e.ID] = e.Detail
	}
	for i, a := range report.Actions {
		if a.Action != "stop" || a.Result != "" {
			continue
		}
		if detail, ok := failed[a.InstanceID]; ok {
			report.Actions[i].Result = "failed: " + detail
		} else {
			report.Actions[i].Result = "stopped"
		}
	}

	return report, findErr
}

func (s *Shutter) stop(ctx context.Context, item dispatch.Item[Candidate]) error {
	_, err := s.Client(item.Payload.Region).StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{item.Payload.ID},
	})
	return err
}
