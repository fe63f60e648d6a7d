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
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/groupby/dataset"
	"github.com/rulego/groupby/functions"
	"github.com/rulego/groupby/logger"
	"github.com/rulego/groupby/types"
)

func TestExecutor_Run(t *testing.T) {
	tbl := salesTable(t)
	for _, workers := range []int{1, 2, 3, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			p, err := Compile(regionKey, salesSpecs(), testConfig(workers))
			require.NoError(t, err)
			res := runPlan(t, p, tbl, workers)
			defer res.Close()
			assertSales(t, res)

			stats := res.Stats()
			assert.Equal(t, int64(tbl.Len()), stats.GetRowsScanned())
			assert.Equal(t, int64(3), stats.GetResultGroups())
			assert.GreaterOrEqual(t, stats.GetGroupsCreated(), int64(3))
		})
	}
}

func TestExecutor_ParallelEqualsSingle(t *testing.T) {
	tbl := dataset.NewTable(dataset.MustSchema(
		dataset.Column{Name: "k", Type: types.Int32},
		dataset.Column{Name: "v", Type: types.Int64},
		dataset.Column{Name: "f", Type: types.Float32},
	))
	for i := 0; i < 5000; i++ {
		var f any = float32(i % 17)
		if i%11 == 0 {
			f = nil
		}
		require.NoError(t, tbl.Append(i%97, int64(i)*1_000_003, f))
	}
	keys := []KeyColumn{{Name: "k", Column: 0, Type: types.Int32}}
	specs := []functions.Spec{
		{Op: functions.Sum, Type: types.Int64, Column: 1},
		{Op: functions.Min, Type: types.Float32, Column: 2},
		{Op: functions.Max, Type: types.Int64, Column: 1},
		{Op: functions.Count, Type: types.Float32, Column: 2},
		{Op: functions.Avg, Type: types.Float32, Column: 2},
		{Op: functions.First, Type: types.Int64, Column: 1},
		{Op: functions.Last, Type: types.Float32, Column: 2},
	}

	single, err := Compile(keys, specs, testConfig(1))
	require.NoError(t, err)
	want := runPlan(t, single, tbl, 1).SortedRows()

	parallel, err := Compile(keys, specs, testConfig(6))
	require.NoError(t, err)
	got := runPlan(t, parallel, tbl, 13).SortedRows()

	require.Len(t, got, 97)
	require.Len(t, want, 97)
	for i := range want {
		assert.True(t, want[i].Key.Equal(got[i].Key))
		for j := range want[i].Values {
			if f, ok := want[i].Values[j].(float64); ok {
				assert.InDelta(t, f, got[i].Values[j], 1e-9)
				continue
			}
			assert.Equal(t, want[i].Values[j], got[i].Values[j], "group %v column %d", want[i].Key, j)
		}
	}
}

func TestExecutor_ScalarAggregation(t *testing.T) {
	specs := []functions.Spec{
		{Op: functions.Sum, Type: types.Int32, Column: colQty},
		{Op: functions.CountRows},
		{Op: functions.Avg, Type: types.Float64, Column: colPrice},
		{Op: functions.Min, Type: types.Timestamp, Column: colTs},
	}
	p, err := Compile(nil, specs, testConfig(2))
	require.NoError(t, err)

	res := runPlan(t, p, salesTable(t), 2)
	rows := res.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, []any{int64(26), int64(8), 25.0 / 6, int64(100)}, rows[0].Values)

	empty := dataset.NewTable(salesTable(t).Schema())
	res = runPlan(t, p, empty, 2)
	rows = res.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, []any{nil, int64(0), nil, nil}, rows[0].Values)
	assert.Empty(t, rows[0].Key.Values())
}

func TestExecutor_EmptyGrouped(t *testing.T) {
	p, err := Compile(regionKey, salesSpecs(), testConfig(2))
	require.NoError(t, err)
	empty := dataset.NewTable(salesTable(t).Schema())
	res := runPlan(t, p, empty, 2)
	assert.Zero(t, res.Len())
}

func TestExecutor_Cancelled(t *testing.T) {
	p, err := Compile(regionKey, salesSpecs(), testConfig(2))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewExecutor(p, logger.NewDiscardLogger()).Run(ctx, salesTable(t).Split(2)...)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

// failingCursor yields n rows and then fails.
type failingCursor struct {
	types.RecordCursor
	n      int
	closed bool
}

func (c *failingCursor) Next() bool {
	if c.n == 0 {
		return false
	}
	c.n--
	return c.RecordCursor.Next()
}

func (c *failingCursor) Err() error {
	if c.n == 0 {
		return errors.New("disk read failed")
	}
	return nil
}

func (c *failingCursor) Close() error {
	c.closed = true
	return c.RecordCursor.Close()
}

func TestExecutor_CursorError(t *testing.T) {
	p, err := Compile(regionKey, salesSpecs(), testConfig(2))
	require.NoError(t, err)
	tbl := salesTable(t)
	parts := tbl.Split(2)
	bad := &failingCursor{RecordCursor: parts[1], n: 2}

	var buf bytes.Buffer
	res, err := NewExecutor(p, logger.NewLogger(logger.DEBUG, &buf)).Run(context.Background(), parts[0], bad)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk read failed")
	assert.Contains(t, err.Error(), "partition 1")
	assert.True(t, bad.closed)
	assert.Contains(t, buf.String(), "aggregation aborted")
}

func TestExecutor_ResourceExhausted(t *testing.T) {
	cfg := testConfig(2)
	cfg.MaxGroups = 2
	p, err := Compile(regionKey, salesSpecs(), cfg)
	require.NoError(t, err)

	// each partition alone has at most two regions, the merged table has three
	tbl := salesTable(t)
	res, err := NewExecutor(p, nil).Run(context.Background(), tbl.Split(4)...)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrResourceExhausted))

	hosts := []KeyColumn{{Name: "host", Column: colHost, Type: types.String}}
	p, err = Compile(hosts, salesSpecs(), cfg)
	require.NoError(t, err)
	res, err = NewExecutor(p, nil).Run(context.Background(), tbl.Cursor())
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, types.ErrResourceExhausted))
}
