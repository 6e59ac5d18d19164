// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package qi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tfctl/awsops/internal/config"
	"github.com/tfctl/awsops/internal/log"
)

// EnvSettings names the environment variable that points at an explicit
// settings file.
const EnvSettings = "AWSOPS_QI_FILE"

// ErrNotConfigured is returned when no settings file has been written yet.
var ErrNotConfigured = errors.New("quick instance not configured, run 'awsops qi configure'")

// Settings are the saved launch defaults.
type Settings struct {
	Region     string            `yaml:"region"`
	Type       string            `yaml:"type"`
	Role       string            `yaml:"role"`
	Key        string            `yaml:"key"`
	KeyWindows string            `yaml:"key-windows"`
	Volume     int               `yaml:"volume"`
	AMIs       map[string]string `yaml:"ami"`
}

// SettingsFile returns the settings path: AWSOPS_QI_FILE when set, otherwise
// qi.yaml beneath the awsops config directory.
func SettingsFile() (string, error) {
	if p := os.Getenv(EnvSettings); p != "" {
		return p, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "qi.yaml"), nil
}

// LoadSettings reads the settings at path.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, ErrNotConfigured
		}
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	log.Debugf("qi settings loaded from %s", path)
	return s, nil
}

// Save writes s to path, creating the parent directory.
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

type prompt struct {
	question string
	set      func(s *Settings, v string) error
}

func amiPrompt(name, flavor string) prompt {
	return prompt{
		question: fmt.Sprintf("AMI ID for %s: ", name),
		set: func(s *Settings, v string) error {
			s.AMIs[flavor] = v
			return nil
		},
	}
}

var prompts = []prompt{
	{"Specify AWS region: ", func(s *Settings, v string) error { s.Region = v; return nil }},
	{"Default instance type: ", func(s *Settings, v string) error { s.Type = v; return nil }},
	{"Instance profile name: ", func(s *Settings, v string) error { s.Role = v; return nil }},
	{"SSH key name for Linux instances: ", func(s *Settings, v string) error { s.Key = v; return nil }},
	{"SSH key name for Windows instances: ", func(s *Settings, v string) error { s.KeyWindows = v; return nil }},
	{"Default root volume size in GB: ", func(s *Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%q is not a volume size", v)
		}
		s.Volume = n
		return nil
	}},
	amiPrompt("Amazon Linux", AmazonLinux),
	amiPrompt("NAT instance", NATInstance),
	amiPrompt("Ubuntu", Ubuntu),
	amiPrompt("Redhat Linux", RedhatLinux),
	amiPrompt("Windows 2012", Windows2012),
	amiPrompt("Windows 2008", Windows2008),
}

// Configure asks each settings question on out and reads answers from in.
// Blank or invalid answers repeat the question.
func Configure(in io.Reader, out io.Writer) (Settings, error) {
	s := Settings{AMIs: map[string]string{}}
	scanner := bufio.NewScanner(in)

	for _, p := range prompts {
		for {
			fmt.Fprint(out, p.question)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return s, err
				}
				return s, io.ErrUnexpectedEOF
			}
			answer := strings.TrimSpace(scanner.Text())
			if answer == "" {
				continue
			}
			if err := p.set(&s, answer); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			break
		}
	}
	return s, nil
}
