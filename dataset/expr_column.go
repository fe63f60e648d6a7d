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
	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rulego/groupby/condition"
	"github.com/rulego/groupby/types"
)

// exprColumn is a column computed from the other columns of its row.
type exprColumn struct {
	name    string
	typ     types.ColumnType
	source  string
	program *vm.Program
}

func (c *exprColumn) eval(env map[string]any) (any, error) {
	v, err := expr.Run(c.program, env)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluate column %q = %s", c.name, c.source)
	}
	return v, nil
}

// AddExprColumn appends a derived column whose value is computed by the
// expr-lang expression over the row's earlier columns, e.g.
//
//	t.AddExprColumn("total", types.Float64, "price * qty")
//
// The value is computed for existing rows immediately and for new rows on
// Append. A nil result is stored as null.
func (t *Table) AddExprColumn(name string, typ types.ColumnType, expression string) error {
	program, err := expr.Compile(expression, condition.Options()...)
	if err != nil {
		return errors.Wrapf(err, "compile column %q", name)
	}
	col := &exprColumn{name: name, typ: typ, source: expression, program: program}

	t.mu.Lock()
	defer t.mu.Unlock()

	schema, err := NewSchema(append(append([]Column(nil), t.schema.Columns()...), Column{Name: name, Type: typ})...)
	if err != nil {
		return err
	}
	idx := schema.Len() - 1
	values := make([]any, t.rows)
	env := make(map[string]any, idx)
	for i := 0; i < t.rows; i++ {
		for j := 0; j < idx; j++ {
			env[schema.Column(j).Name] = t.value(i, j)
		}
		v, err := col.eval(env)
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		if values[i], err = coerce(schema.Column(idx), v); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}

	t.schema = schema
	t.derived = append(t.derived, col)
	t.cols = append(t.cols, vector{})
	for _, v := range values {
		t.store(idx, v)
	}
	return nil
}
