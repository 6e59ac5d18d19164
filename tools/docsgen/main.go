// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// docsgen writes one markdown page per awsops subcommand. Flags and usage
// come from the live command tree. Examples and notes come from an optional
// <docs>/examples.yaml keyed by subcommand name.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/awsops/internal/command"
	"github.com/tfctl/awsops/internal/version"
)

type Subcommand struct {
	ID          string
	Short       string
	Description string
	Usage       string
	Flags       []Flag
	Subcommands []string
	Extras
}

// Extras are the hand-written parts of a page.
type Extras struct {
	Examples []Example `yaml:"examples"`
	Notes    []string  `yaml:"notes,omitempty"`
}

type Flag struct {
	ID          string
	Syntax      string
	Description string
	Default     string
	Env         string
}

type Example struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

type TemplateData struct {
	Subcommand
	Date    string
	Version string
	IDUpper string
}

const page = `# awsops {{ .ID }}

{{ .Short }}
{{ if .Description }}
{{ .Description }}
{{ end }}
## Usage

` + "```" + `
{{ .Usage }}
` + "```" + `
{{ if .Subcommands }}
## Subcommands
{{ range .Subcommands }}
- {{ . }}{{ end }}
{{ end }}
## Flags

| Flag | Description | Default | Env |
|------|-------------|---------|-----|
{{ range .Flags }}| ` + "`{{ .Syntax }}`" + ` | {{ .Description }} | {{ .Default }} | {{ .Env }} |
{{ end }}{{ if .Examples }}
## Examples
{{ range .Examples }}
{{ .Description }}

` + "```" + `
{{ .Command }}
` + "```" + `
{{ end }}{{ end }}{{ if .Notes }}
## Notes
{{ range .Notes }}
- {{ . }}{{ end }}
{{ end }}
---
{{ .IDUpper }} {{ .Version }} {{ .Date }}
`

func main() {
	docs := "docs"
	if len(os.Args) > 1 {
		docs = os.Args[1]
	}

	if err := run(docs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(docs string) error {
	extras, err := loadExtras(filepath.Join(docs, "examples.yaml"))
	if err != nil {
		return err
	}

	app, err := command.InitApp(context.Background(), []string{"awsops"})
	if err != nil {
		return err
	}

	tmpl := template.Must(template.New("page").Parse(page))
	folder := filepath.Join(docs, "commands")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return err
	}

	for _, cmd := range app.Commands {
		sub := describe(cmd)
		sub.Extras = extras[cmd.Name]

		path := filepath.Join(folder, cmd.Name+".md")
		fmt.Println("Generating", path)
		file, err := os.Create(path)
		if err != nil {
			return err
		}

		err = tmpl.Execute(file, TemplateData{
			Subcommand: sub,
			Date:       time.Now().Format("January 2, 2006"),
			Version:    version.Version,
			IDUpper:    strings.ToUpper(cmd.Name),
		})
		file.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func loadExtras(path string) (map[string]Extras, error) {
	extras := map[string]Extras{}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return extras, nil
	} else if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &extras); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return extras, nil
}

func describe(cmd *cli.Command) Subcommand {
	sub := Subcommand{
		ID:          cmd.Name,
		Short:       cmd.Usage,
		Description: cmd.Description,
		Usage:       cmd.UsageText,
	}
	if sub.Usage == "" {
		sub.Usage = "awsops " + cmd.Name + " [flags]"
	}

	for _, child := range cmd.Commands {
		sub.Subcommands = append(sub.Subcommands, child.Name+": "+child.Usage)
	}

	for _, f := range cmd.Flags {
		names := f.Names()
		var syntax []string
		for _, n := range names {
			if len(n) == 1 {
				syntax = append(syntax, "-"+n)
			} else {
				syntax = append(syntax, "--"+n)
			}
		}

		flag := Flag{ID: names[0], Syntax: strings.Join(syntax, ", ")}
		if doc, ok := f.(cli.DocGenerationFlag); ok {
			flag.Description = doc.GetUsage()
			flag.Env = strings.Join(doc.GetEnvVars(), ", ")
			if doc.TakesValue() {
				flag.Default = doc.GetValue()
			}
		}
		sub.Flags = append(sub.Flags, flag)
	}

	return sub
}
