// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
)

// EnvDelim overrides the "," separating filter expressions.
const EnvDelim = "AWSOPS_FILTER_DELIM"

// filterRegex splits an expression into key, operator and target. Operators
// are one of = ^ ~ < > @ or /, optionally prefixed with '!'. Examples:
// "region" (key only), "failed>0", "batch^push/", "state!=stopped".
var filterRegex = regexp.MustCompile(`^([^!?=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Invalid specs (empty key) are skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Allow an override for values that contain commas.
	delim := ","
	if d, ok := os.LookupEnv(EnvDelim); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		filterSpec = strings.TrimSpace(filterSpec)
		if filterSpec == "" {
			continue
		}

		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		key := strings.TrimSpace(parts[1])
		operand := parts[2]
		if key == "" {
			log.Error("invalid filter: empty key in " + filterSpec)
			continue
		}

		negate := strings.HasPrefix(operand, "!")
		if negate {
			operand = strings.TrimPrefix(operand, "!")
		}

		filters = append(filters, Filter{
			Key:     key,
			Negate:  negate,
			Operand: operand,
			Value:   parts[3],
		})
	}

	return filters
}

// FilterRows returns the rows that match every filter in spec. Filters naming
// an unknown column are reported and ignored. The rows slice is not modified.
func FilterRows(columns []string, rows [][]string, spec string) [][]string {
	filters := BuildFilters(spec)
	if len(filters) == 0 {
		return rows
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	var active []Filter
	var cols []int
	for _, f := range filters {
		col, ok := index[f.Key]
		if !ok {
			msg := fmt.Sprintf("filter key not found: %s", f.Key)
			log.Error(msg)
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
			continue
		}
		active = append(active, f)
		cols = append(cols, col)
	}

	result := make([][]string, 0, len(rows))
	for _, row := range rows {
		if applyFilters(row, cols, active) {
			result = append(result, row)
		}
	}
	return result
}

// applyFilters returns true if row matches all filters. cols[i] is the column
// index of filters[i].
func applyFilters(row []string, cols []int, filters []Filter) bool {
	for i, filter := range filters {
		if cols[i] >= len(row) {
			return false
		}
		value := row[cols[i]]

		// A bare key keeps rows with a non-empty cell.
		if filter.Operand == "" {
			if (value != "") == filter.Negate {
				return false
			}
			continue
		}

		var result bool
		if num, ok := toFloat64(value); ok && isNumericOperand(filter.Operand) {
			result = checkNumericOperand(num, filter)
		} else if filter.Operand == "@" {
			result = checkContainsOperand(value, filter)
		} else {
			result = checkStringOperand(value, filter)
		}

		if !result {
			return false
		}
	}

	return true
}

func isNumericOperand(op string) bool {
	return op == "=" || op == "<" || op == ">"
}

// checkContainsOperand evaluates a membership filter (operand '@'). The cell
// is treated as a comma or space separated list.
func checkContainsOperand(value string, filter Filter) bool {
	found := false
	for _, item := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
		if item == filter.Value {
			found = true
			break
		}
	}
	return found == !filter.Negate
}

// checkNumericOperand compares a numeric value against the filter value using
// numeric semantics. Supported operands: =, >, < and the negated forms.
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, ok := toFloat64(filter.Value)
	if !ok {
		return checkStringOperand(strconv.FormatFloat(value, 'f', -1, 64), filter)
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
}

// checkStringOperand evaluates a string comparison filter.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Value == !filter.Negate
	case "~":
		return strings.Contains(strings.ToLower(value), strings.ToLower(filter.Value)) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Value) == !filter.Negate
	case ">":
		return value > filter.Value == !filter.Negate
	case "<":
		return value < filter.Value == !filter.Negate
	case "@":
		return checkContainsOperand(value, filter)
	case "/":
		matched, err := regexp.MatchString(filter.Value, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Value)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}

// toFloat64 parses a cell as a number. Humanized thousands separators and a
// trailing percent sign are accepted.
func toFloat64(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), "%")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
