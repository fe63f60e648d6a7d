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
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"

	"github.com/rulego/groupby/condition"
	"github.com/rulego/groupby/types"
)

// vector stores one column. Integer and temporal columns use ints, float
// columns use floats, string columns use strs.
type vector struct {
	ints   []int64
	floats []float64
	strs   []string
}

// Table is an append-only, in-memory columnar table. Appends must not run
// concurrently with each other or with cursors.
type Table struct {
	mu      sync.RWMutex
	schema  *Schema
	cols    []vector
	derived []*exprColumn
	rows    int
}

// NewTable creates an empty table.
func NewTable(schema *Schema) *Table {
	return &Table{schema: schema, cols: make([]vector, schema.Len())}
}

func (t *Table) Schema() *Schema {
	return t.schema
}

// Len is the number of rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// Append adds one row. values covers the columns that are not derived, in
// schema order; nil is the column type's null. Values are coerced to the
// column types with spf13/cast; time.Time is accepted for date and timestamp
// columns.
func (t *Table) Append(values ...any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	base := t.schema.Len() - len(t.derived)
	if len(values) != base {
		return errors.Newf("row has %d values, table has %d input columns", len(values), base)
	}
	coerced := make([]any, t.schema.Len())
	for i, v := range values {
		c, err := coerce(t.schema.Column(i), v)
		if err != nil {
			return err
		}
		coerced[i] = c
	}
	if len(t.derived) > 0 {
		env := make(map[string]any, len(coerced))
		for i := 0; i < base; i++ {
			env[t.schema.Column(i).Name] = nullToNil(t.schema.Column(i).Type, coerced[i])
		}
		for j, d := range t.derived {
			v, err := d.eval(env)
			if err != nil {
				return err
			}
			idx := base + j
			if coerced[idx], err = coerce(t.schema.Column(idx), v); err != nil {
				return err
			}
			env[d.name] = nullToNil(d.typ, coerced[idx])
		}
	}
	for i, v := range coerced {
		t.store(i, v)
	}
	t.rows++
	return nil
}

// AppendRows appends each row in turn, stopping at the first error.
func (t *Table) AppendRows(rows [][]any) error {
	for i, r := range rows {
		if err := t.Append(r...); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

func (t *Table) store(i int, v any) {
	vec := &t.cols[i]
	switch x := v.(type) {
	case int64:
		vec.ints = append(vec.ints, x)
	case float64:
		vec.floats = append(vec.floats, x)
	case string:
		vec.strs = append(vec.strs, x)
	}
}

// coerce converts v to the storage representation of c: int64, float64 or
// string.
func coerce(c Column, v any) (any, error) {
	if v == nil {
		return nullValue(c)
	}
	var (
		out any
		err error
	)
	switch c.Type {
	case types.Int8, types.Int16, types.Int32, types.Int64:
		out, err = types.ToIntE(v, c.Type)
	case types.Date:
		if tm, ok := v.(time.Time); ok {
			return tm.UnixMilli(), nil
		}
		out, err = types.ToIntE(v, c.Type)
	case types.Timestamp:
		if tm, ok := v.(time.Time); ok {
			return tm.UnixMicro(), nil
		}
		out, err = types.ToIntE(v, c.Type)
	case types.Float32:
		var f float32
		f, err = cast.ToFloat32E(v)
		out = float64(f)
	case types.Float64:
		out, err = cast.ToFloat64E(v)
	case types.String:
		out, err = cast.ToStringE(v)
	default:
		err = errors.Newf("unsupported type %s", c.Type)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "column %q", c.Name)
	}
	return out, nil
}

func nullValue(c Column) (any, error) {
	switch c.Type {
	case types.Int32:
		return int64(types.NullInt32), nil
	case types.Int64, types.Date, types.Timestamp:
		return types.NullInt64, nil
	case types.Float32, types.Float64:
		return math.NaN(), nil
	case types.String:
		return "", nil
	default:
		return nil, errors.Newf("column %q: %s has no null value", c.Name, c.Type)
	}
}

// nullToNil maps a stored null back to nil for expression environments.
func nullToNil(typ types.ColumnType, v any) any {
	switch x := v.(type) {
	case int64:
		if (typ == types.Int32 && x == int64(types.NullInt32)) ||
			(typ != types.Int32 && typ.HasNull() && x == types.NullInt64) {
			return nil
		}
	case float64:
		if math.IsNaN(x) {
			return nil
		}
	}
	return v
}

// Value returns the stored value of row i, column j, with nulls as nil.
// Integer columns return int64, float columns float64.
func (t *Table) Value(i, j int) any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value(i, j)
}

func (t *Table) value(i, j int) any {
	typ := t.schema.Column(j).Type
	vec := &t.cols[j]
	switch typ {
	case types.Float32, types.Float64:
		return nullToNil(typ, vec.floats[i])
	case types.String:
		return vec.strs[i]
	default:
		return nullToNil(typ, vec.ints[i])
	}
}

// Row returns the values of row i.
func (t *Table) Row(i int) []any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]any, t.schema.Len())
	for j := range out {
		out[j] = t.value(i, j)
	}
	return out
}

// Filter returns a new table holding the rows for which expression is true.
// Derived columns are copied as plain columns.
func (t *Table) Filter(expression string) (*Table, error) {
	cond, err := condition.NewExprCondition(expression)
	if err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := NewTable(t.schema)
	env := make(map[string]any, t.schema.Len())
	for i := 0; i < t.rows; i++ {
		for j, c := range t.schema.Columns() {
			env[c.Name] = t.value(i, j)
		}
		ok, err := cond.Evaluate(env)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		if !ok {
			continue
		}
		for j, c := range t.schema.Columns() {
			src, dst := &t.cols[j], &out.cols[j]
			switch c.Type {
			case types.Float32, types.Float64:
				dst.floats = append(dst.floats, src.floats[i])
			case types.String:
				dst.strs = append(dst.strs, src.strs[i])
			default:
				dst.ints = append(dst.ints, src.ints[i])
			}
		}
		out.rows++
	}
	return out, nil
}
