// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package netio samples interface byte counters and reports throughput in
// bits per second.
package netio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"

	"github.com/tfctl/awsops/internal/log"
)

// DevFile is the Linux per-interface counter table.
const DevFile = "/proc/net/dev"

// Counters are cumulative byte totals for one interface.
type Counters struct {
	Interface string
	RX        uint64
	TX        uint64
}

// Parse reads /proc/net/dev formatted data and returns the counters of
// iface. An empty iface selects the first interface other than loopback.
func Parse(data []byte, iface string) (Counters, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		name, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if iface == "" && name == "lo" || iface != "" && name != iface {
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) < 9 {
			return Counters{}, fmt.Errorf("short counter line for %s", name)
		}
		rx, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return Counters{}, fmt.Errorf("bad rx bytes for %s: %w", name, err)
		}
		tx, err := strconv.ParseUint(fields[8], 10, 64)
		if err != nil {
			return Counters{}, fmt.Errorf("bad tx bytes for %s: %w", name, err)
		}
		return Counters{Interface: name, RX: rx, TX: tx}, nil
	}
	if err := scanner.Err(); err != nil {
		return Counters{}, err
	}
	if iface == "" {
		return Counters{}, fmt.Errorf("no network interface found")
	}
	return Counters{}, fmt.Errorf("interface %s not found", iface)
}

// Rate is throughput over one sampling interval.
type Rate struct {
	Interface string  `json:"interface" yaml:"interface"`
	TXBits    float64 `json:"tx_bits_per_second" yaml:"tx_bits_per_second"`
	RXBits    float64 `json:"rx_bits_per_second" yaml:"rx_bits_per_second"`
}

// String renders transmit then receive, e.g. "⋀ 1.2 kb/s\n⋁ 480 b/s".
func (r Rate) String() string {
	return fmt.Sprintf("⋀ %s/s\n⋁ %s/s", humanize.SI(r.TXBits, "b"), humanize.SI(r.RXBits, "b"))
}

// Columns implements output.Table.
func (r Rate) Columns() []string {
	return []string{"interface", "tx", "rx"}
}

// Rows implements output.Table.
func (r Rate) Rows() [][]string {
	return [][]string{{r.Interface, humanize.SI(r.TXBits, "b") + "/s", humanize.SI(r.RXBits, "b") + "/s"}}
}

// Sampler reads counters twice, Interval apart.
type Sampler struct {
	Interface string
	Interval  time.Duration
	Clock     clockwork.Clock

	// Read returns the counter table. Defaults to reading DevFile.
	Read func() ([]byte, error)
}

func (s *Sampler) read() ([]byte, error) {
	if s.Read != nil {
		return s.Read()
	}
	return os.ReadFile(DevFile)
}

func (s *Sampler) counters() (Counters, error) {
	data, err := s.read()
	if err != nil {
		return Counters{}, err
	}
	return Parse(data, s.Interface)
}

// Sample measures throughput over one interval.
func (s *Sampler) Sample(ctx context.Context) (Rate, error) {
	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}

	before, err := s.counters()
	if err != nil {
		return Rate{}, err
	}
	select {
	case <-ctx.Done():
		return Rate{}, ctx.Err()
	case <-clock.After(interval):
	}
	after, err := s.counters()
	if err != nil {
		return Rate{}, err
	}
	log.Debugf("netio %s: before=%+v after=%+v", before.Interface, before, after)

	secs := interval.Seconds()
	return Rate{
		Interface: before.Interface,
		TXBits:    float64(delta(before.TX, after.TX)) * 8 / secs,
		RXBits:    float64(delta(before.RX, after.RX)) * 8 / secs,
	}, nil
}

// delta tolerates counter resets by treating them as zero traffic.
func delta(before, after uint64) uint64 {
	if after < before {
		return 0
	}
	return after - before
}
