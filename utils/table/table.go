/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package table

import (
	"fmt"
	"io"
	"strings"
)

// minColumnWidth is the narrowest a column is printed.
const minColumnWidth = 4

// Write prints rows as a bordered text table, like a database shell:
//
//	+--------+-----------+
//	| region | sum(qty)  |
//	+--------+-----------+
//	| eu     | 4         |
//	+--------+-----------+
//	(1 rows)
//
// nil values print as NULL.
func Write(w io.Writer, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	cells := make([][]string, len(rows))
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = max(len(c), minColumnWidth)
	}
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for i := range columns {
			s := ""
			if i < len(row) {
				s = FormatValue(row[i])
			}
			cells[r][i] = s
			widths[i] = max(widths[i], len(s))
		}
	}

	var sb strings.Builder
	border(&sb, widths)
	line(&sb, widths, columns)
	border(&sb, widths)
	for _, row := range cells {
		line(&sb, widths, row)
	}
	border(&sb, widths)
	fmt.Fprintf(&sb, "(%d rows)\n", len(rows))
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatValue renders one cell.
func FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func border(sb *strings.Builder, widths []int) {
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
}

func line(sb *strings.Builder, widths []int, values []string) {
	sb.WriteByte('|')
	for i, w := range widths {
		fmt.Fprintf(sb, " %-*s |", w, values[i])
	}
	sb.WriteByte('\n')
}
