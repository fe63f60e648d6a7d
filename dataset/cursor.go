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

package dataset

import (
	"github.com/rulego/groupby/types"
)

// record is a view of one table row.
type record struct {
	t   *Table
	row int
}

func (r record) GetInt8(col int) int8   { return int8(r.t.cols[col].ints[r.row]) }
func (r record) GetInt16(col int) int16 { return int16(r.t.cols[col].ints[r.row]) }
func (r record) GetInt32(col int) int32 { return int32(r.t.cols[col].ints[r.row]) }
func (r record) GetInt64(col int) int64 { return r.t.cols[col].ints[r.row] }
func (r record) GetDate(col int) int64  { return r.t.cols[col].ints[r.row] }

func (r record) GetTimestamp(col int) int64 { return r.t.cols[col].ints[r.row] }

func (r record) GetFloat32(col int) float32 { return float32(r.t.cols[col].floats[r.row]) }
func (r record) GetFloat64(col int) float64 { return r.t.cols[col].floats[r.row] }
func (r record) GetString(col int) string   { return r.t.cols[col].strs[r.row] }

// RowID is the row's index in the table, so ids stay global across splits.
func (r record) RowID() int64 { return int64(r.row) }

// Cursor iterates rows [lo, hi) of a table. The table must not be appended
// to while cursors are open.
type Cursor struct {
	t      *Table
	next   int
	hi     int
	cur    record
	closed bool
}

var _ types.RecordCursor = (*Cursor)(nil)

// Cursor returns a cursor over every row.
func (t *Table) Cursor() *Cursor {
	return &Cursor{t: t, hi: t.Len()}
}

// Split partitions the table into at most n contiguous cursors of near equal
// size. An empty table yields one empty cursor.
func (t *Table) Split(n int) []types.RecordCursor {
	rows := t.Len()

	if n < 1 {
		n = 1
	}
	if n > rows {
		n = rows
	}
	if n == 0 {
		return []types.RecordCursor{t.Cursor()}
	}
	out := make([]types.RecordCursor, 0, n)
	size, rem := rows/n, rows%n
	lo := 0
	for i := 0; i < n; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		out = append(out, &Cursor{t: t, next: lo, hi: hi})
		lo = hi
	}
	return out
}

func (c *Cursor) Next() bool {
	if c.closed || c.next >= c.hi {
		return false
	}
	c.cur = record{t: c.t, row: c.next}
	c.next++
	return true
}

func (c *Cursor) Record() types.Record {
	return c.cur
}

func (c *Cursor) Err() error {
	return nil
}

func (c *Cursor) Close() error {
	c.closed = true
	return nil
}
