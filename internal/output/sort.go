// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strconv"
	"strings"
)

// SortRows orders rows by a comma separated list of column names. A leading
// "-" sorts descending and a leading "!" compares case sensitively. Columns
// holding numbers (humanized or not) compare numerically. Unknown columns are
// ignored.
func SortRows(columns []string, rows [][]string, spec string) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	fields := strings.Split(spec, ",")

	sort.SliceStable(rows, func(one, two int) bool {
		for _, field := range fields {
			ascending := true
			if strings.HasPrefix(field, "-") {
				field = strings.TrimPrefix(field, "-")
				ascending = false
			}

			caseSensitive := false
			if strings.HasPrefix(field, "!") {
				field = strings.TrimPrefix(field, "!")
				caseSensitive = true
			}

			col, ok := index[field]
			if !ok {
				continue
			}
			oneValue := cell(rows[one], col)
			twoValue := cell(rows[two], col)

			oneNum, oneOk := number(oneValue)
			twoNum, twoOk := number(twoValue)
			if oneOk && twoOk {
				if oneNum != twoNum {
					if ascending {
						return oneNum < twoNum
					}
					return oneNum > twoNum
				}
				continue
			}

			if !caseSensitive {
				oneValue = strings.ToLower(oneValue)
				twoValue = strings.ToLower(twoValue)
			}

			if oneValue != twoValue {
				if ascending {
					return oneValue < twoValue
				}
				return oneValue > twoValue
			}
		}
		return false
	})
}

func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

func number(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return f, err == nil
}
