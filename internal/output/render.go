// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"

	"github.com/tfctl/awsops/internal/config"
	"github.com/tfctl/awsops/internal/filters"
)

// Formats lists the accepted --output values.
var Formats = []string{"text", "md", "json", "yaml"}

// Table is a result that can be rendered as rows and columns. The value
// itself is what json and yaml output serialize.
type Table interface {
	Columns() []string
	Rows() [][]string
}

// Options controls rendering.
type Options struct {
	Format  string
	Titles  bool
	Color   bool
	Padding int
	Sort    string
	Filter  string
	Header  string
	Footer  string
}

// Render writes v to w in the requested format. If w is nil, os.Stdout is
// used.
func Render(w io.Writer, v Table, opts Options) error {
	if w == nil {
		w = os.Stdout
	}

	switch opts.Format {
	case "", "text":
		TextWriter(w, v.Columns(), selected(v, opts), opts)
		return nil
	case "md":
		MarkdownWriter(w, v.Columns(), selected(v, opts))
		return nil
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("unknown output format %q, must be one of %v", opts.Format, Formats)
}

// selected applies --filter and then --sort to the rows of v. json and yaml
// output serialize v as is.
func selected(v Table, opts Options) [][]string {
	rows := filters.FilterRows(v.Columns(), v.Rows(), opts.Filter)
	if opts.Sort != "" {
		SortRows(v.Columns(), rows, opts.Sort)
	}
	return rows
}

// TextWriter renders rows as an aligned, borderless table.
func TextWriter(w io.Writer, columns []string, rows [][]string, opts Options) {
	// We return early if there are no results to display.
	if len(rows) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	}

	if opts.Header != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Header))
	}

	pad := opts.Padding
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(columns...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)

	if opts.Footer != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Footer))
	}
}

// MarkdownWriter renders rows as a GitHub flavored markdown table.
func MarkdownWriter(w io.Writer, columns []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	tw.SetCenterSeparator("|")
	tw.AppendBulk(rows)
	tw.Render()
}

// getColors returns configured color values for table rendering. Each color is
// selected based on terminal background color and brightness so that we can
// make sure output is reasonably visible for all(?) terminal themes.
func getColors(key string) (header, even, odd color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	// Use the explicit color if found in the config and leave it up to the user
	// to choose appropriate colors for their theme.
	resolveColor := func(key string, light string, dark string) color.Color {
		colorCfg, err := config.GetString(key)
		if err == nil && strings.TrimSpace(colorCfg) != "" {
			return lipgloss.Color(colorCfg)
		}
		log.Debugf("color %s not configured", key)

		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	header = resolveColor(key+".title", "#b08800", "#f6be00")
	even = resolveColor(key+".even", "#333333", "#ffffff")
	odd = resolveColor(key+".odd", "#0088a0", "#00c8f0")

	return
}
