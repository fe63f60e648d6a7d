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

package groupby

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/groupby/aggregator"
	"github.com/rulego/groupby/dataset"
	"github.com/rulego/groupby/functions"
	"github.com/rulego/groupby/logger"
	"github.com/rulego/groupby/types"
)

func metricsTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl := dataset.NewTable(dataset.MustSchema(
		dataset.Column{Name: "device", Type: types.String},
		dataset.Column{Name: "temperature", Type: types.Float64},
		dataset.Column{Name: "readings", Type: types.Int16},
	))
	require.NoError(t, tbl.AppendRows([][]any{
		{"aa", 25.5, 1},
		{"bb", 22.0, 2},
		{"aa", 30.0, 3},
		{"bb", nil, 4},
		{"cc", 18.5, 5},
	}))
	return tbl
}

func TestNew(t *testing.T) {
	e, err := New(WithWorkers(3), WithMergeFanIn(2), WithMaxGroups(10), WithMemoryLimit(1<<20), WithCheckedOffsets(), WithDiscardLog())
	require.NoError(t, err)
	cfg := e.Config()
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 2, cfg.MergeFanIn)
	assert.Equal(t, 10, cfg.MaxGroups)
	assert.Equal(t, int64(1<<20), cfg.MaxMemoryBytes)
	assert.True(t, cfg.CheckedOffsets)
	assert.NotNil(t, e.Logger())

	_, err = New(WithWorkers(0))
	assert.Error(t, err)
}

func TestNew_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groupby.toml")
	logPath := filepath.Join(dir, "groupby.log")
	require.NoError(t, os.WriteFile(path, []byte(`
workers = 2
merge_fan_in = 1

[log]
level = "debug"
file = "`+filepath.ToSlash(logPath)+`"
`), 0o644))

	e, err := New(WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, 2, e.Config().Workers)
	assert.Equal(t, 1, e.Config().MergeFanIn)

	_, err = e.Aggregate(context.Background(), metricsTable(t), []string{"device"}, Agg{Op: functions.CountRows})
	require.NoError(t, err)
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG]")

	_, err = New(WithConfigFile(filepath.Join(dir, "missing.toml")))
	assert.Error(t, err)
}

func TestEngine_Aggregate(t *testing.T) {
	var logs bytes.Buffer
	e, err := New(WithWorkers(2), WithLogger(logger.NewLogger(logger.DEBUG, &logs)))
	require.NoError(t, err)

	res, err := e.Aggregate(context.Background(), metricsTable(t), []string{"device"},
		Agg{Op: functions.Avg, Column: "temperature", Alias: "avg_temp"},
		Agg{Op: functions.Max, Column: "temperature"},
		Agg{Op: functions.Sum, Column: "readings"},
		Agg{Op: functions.CountRows},
	)
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, []string{"device", "avg_temp", "max(temperature)", "sum(readings)", "count(*)"}, res.Columns())
	rows := res.SortedRows()
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"aa", 27.75, 30.0, int64(4), int64(2)}, rows[0].Fields())
	assert.Equal(t, []any{"bb", 22.0, 22.0, int64(6), int64(2)}, rows[1].Fields())
	assert.Equal(t, []any{"cc", 18.5, 18.5, int64(5), int64(1)}, rows[2].Fields())
	assert.Contains(t, logs.String(), "compiled plan")
}

func TestEngine_AggregatePostAggregation(t *testing.T) {
	e, err := New(WithWorkers(2), WithDiscardLog())
	require.NoError(t, err)

	res, err := e.Aggregate(context.Background(), metricsTable(t), []string{"device"},
		Agg{Op: functions.Sum, Column: "readings"},
		Agg{Op: functions.CountRows},
		Agg{Op: functions.Max, Column: "temperature", Alias: "hottest"},
	)
	require.NoError(t, err)
	defer res.Close()

	require.NoError(t, res.AddPostAggregation("mean_readings", "sum_readings / count_rows"))
	require.NoError(t, res.AddPostAggregation("hot", "hottest > 25"))
	assert.Error(t, res.AddPostAggregation("x", "sum_2 / count_rows"))
	assert.Error(t, res.AddPostAggregation("y", "sum_reading / count_rows"))

	assert.Equal(t, []string{"device", "sum(readings)", "count(*)", "hottest", "mean_readings", "hot"}, res.Columns())
	rows := res.SortedRows()
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"aa", int64(4), int64(2), 30.0, 2.0, true}, rows[0].Fields())
	assert.Equal(t, []any{"bb", int64(6), int64(2), 22.0, 3.0, false}, rows[1].Fields())
	assert.Equal(t, []any{"cc", int64(5), int64(1), 18.5, 5.0, false}, rows[2].Fields())
}

func TestEngine_AggregateErrors(t *testing.T) {
	e, err := New(WithDiscardLog())
	require.NoError(t, err)
	tbl := metricsTable(t)
	ctx := context.Background()

	_, err = e.Aggregate(ctx, tbl, []string{"missing"}, Agg{Op: functions.CountRows})
	assert.Error(t, err)
	_, err = e.Aggregate(ctx, tbl, []string{"device"}, Agg{Op: functions.Sum, Column: "missing"})
	assert.Error(t, err)
	_, err = e.Aggregate(ctx, tbl, []string{"device"}, Agg{Op: functions.Sum, Column: "device"})
	assert.Error(t, err)

	limited, err := New(WithDiscardLog(), WithMaxGroups(2), WithWorkers(1))
	require.NoError(t, err)
	_, err = limited.Aggregate(ctx, tbl, []string{"device"}, Agg{Op: functions.CountRows})
	assert.True(t, errors.Is(err, types.ErrResourceExhausted))
}

func TestEngine_CompileExecute(t *testing.T) {
	e, err := New(WithWorkers(4), WithDiscardLog())
	require.NoError(t, err)
	tbl := metricsTable(t)

	plan, err := e.Compile(
		[]aggregator.KeyColumn{{Name: "device", Column: 0, Type: types.String}},
		[]functions.Spec{
			{Op: functions.First, Type: types.Float64, Column: 1},
			{Op: functions.Last, Type: types.Float64, Column: 1},
			{Op: functions.Min, Type: types.Int16, Column: 2},
		})
	require.NoError(t, err)

	res, err := e.Execute(context.Background(), plan, tbl.Split(3)...)
	require.NoError(t, err)
	vals, ok, err := res.Lookup("bb")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{22.0, nil, int16(2)}, vals)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Execute(ctx, plan, tbl.Split(3)...)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintTable(t *testing.T) {
	e, err := New(WithDiscardLog())
	require.NoError(t, err)
	res, err := e.Aggregate(context.Background(), metricsTable(t), []string{"device"},
		Agg{Op: functions.Min, Column: "temperature", Alias: "min_temp"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, res))
	want := "" +
		"+--------+----------+\n" +
		"| device | min_temp |\n" +
		"+--------+----------+\n" +
		"| aa     | 25.5     |\n" +
		"| bb     | 22       |\n" +
		"| cc     | 18.5     |\n" +
		"+--------+----------+\n" +
		"(3 rows)\n"
	assert.Equal(t, want, buf.String())
}
