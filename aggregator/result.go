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

package aggregator

import (
	"github.com/google/btree"

	"github.com/rulego/groupby/region"
)

// btreeDegree is the node degree of the ordering tree used by SortedRows.
const btreeDegree = 32

// Row is one output group: its key and the extracted aggregate values in
// plan order.
type Row struct {
	Key    GroupKey
	Values []any
}

// Fields returns the key values followed by the aggregate values.
func (r Row) Fields() []any {
	return append(r.Key.Values(), r.Values...)
}

// Less orders rows by key. It implements btree.Item.
func (r Row) Less(than btree.Item) bool {
	return r.Key.Compare(than.(Row).Key) < 0
}

// Result is the merged aggregation output. Values are extracted on demand;
// the underlying table is released by Close.
type Result struct {
	plan  *Plan
	table *GroupTable
	stats *StatsCollector
	post  []*postAggregation
}

func newResult(p *Plan, t *GroupTable, stats *StatsCollector) *Result {
	return &Result{plan: p, table: t, stats: stats}
}

// Len is the number of groups.
func (r *Result) Len() int {
	return r.table.Len()
}

// Columns returns the output column names: keys, aggregates, then
// post-aggregation columns.
func (r *Result) Columns() []string {
	cols := r.plan.OutputNames()
	for _, pa := range r.post {
		cols = append(cols, pa.name)
	}
	return cols
}

func (r *Result) Stats() *StatsCollector {
	return r.stats
}

func (r *Result) extract(key GroupKey, rg region.Region) []any {
	values := make([]any, len(r.plan.accs), len(r.plan.accs)+len(r.post))
	for i, a := range r.plan.accs {
		values[i] = a.Extract(rg)
	}
	if len(r.post) > 0 {
		values = r.evalPost(key, values)
	}
	return values
}

// Each calls fn for every group until fn returns false. Order is
// unspecified.
func (r *Result) Each(fn func(key GroupKey, values []any) bool) {
	r.table.Each(func(key GroupKey, rg region.Region) bool {
		return fn(key, r.extract(key, rg))
	})
}

// Rows materializes every group. Order is unspecified.
func (r *Result) Rows() []Row {
	rows := make([]Row, 0, r.Len())
	r.Each(func(key GroupKey, values []any) bool {
		rows = append(rows, Row{Key: key, Values: values})
		return true
	})
	return rows
}

// SortedRows materializes every group in ascending key order. Nulls sort
// first for integer and string keys, and last for float keys.
func (r *Result) SortedRows() []Row {
	tree := btree.New(btreeDegree)
	r.Each(func(key GroupKey, values []any) bool {
		tree.ReplaceOrInsert(Row{Key: key, Values: values})
		return true
	})
	rows := make([]Row, 0, tree.Len())
	tree.Ascend(func(i btree.Item) bool {
		rows = append(rows, i.(Row))
		return true
	})
	return rows
}

// Lookup returns the aggregate values of the group with the given key
// values, coerced to the key column types.
func (r *Result) Lookup(keyValues ...any) ([]any, bool, error) {
	key, err := NewGroupKey(r.plan.keyTypes, keyValues...)
	if err != nil {
		return nil, false, err
	}
	rg, ok := r.table.Find(key)
	if !ok {
		return nil, false, nil
	}
	return r.extract(key, rg), true, nil
}

// Close releases the group table. The result must not be used afterwards.
func (r *Result) Close() {
	r.table.Clear()
}
