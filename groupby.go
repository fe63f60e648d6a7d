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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/rulego/groupby/aggregator"
	"github.com/rulego/groupby/dataset"
	"github.com/rulego/groupby/functions"
	"github.com/rulego/groupby/logger"
	"github.com/rulego/groupby/types"
	"github.com/rulego/groupby/utils/table"
)

// Engine 是分组聚合引擎的主要入口。
// 它持有配置与日志记录器，负责编译聚合计划并在多个工作协程上执行。
//
// 使用示例:
//
//	engine, err := groupby.New(groupby.WithWorkers(4))
//	res, err := engine.Aggregate(ctx, tbl, []string{"region"},
//	    groupby.Agg{Op: functions.Sum, Column: "qty"},
//	    groupby.Agg{Op: functions.CountRows})
type Engine struct {
	cfg types.Config
	log logger.Logger
	err error
}

// New 创建一个新的聚合引擎，按顺序应用配置选项。
// 配置文件无法读取或配置非法时返回错误。
func New(options ...Option) (*Engine, error) {
	e := &Engine{cfg: types.DefaultConfig()}
	for _, option := range options {
		option(e)
	}
	if e.err != nil {
		return nil, e.err
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.log == nil {
		e.log = newConfiguredLogger(e.cfg.Log)
	}
	return e, nil
}

func newConfiguredLogger(c types.LogConfig) logger.Logger {
	level := logger.ParseLevel(c.Level)
	if c.File != "" {
		return logger.NewFileLogger(level, c.File, c.MaxSizeMB, c.MaxBackup)
	}
	return logger.NewLogger(level, os.Stdout)
}

func (e *Engine) Config() types.Config {
	return e.cfg
}

func (e *Engine) Logger() logger.Logger {
	return e.log
}

// Compile 编译聚合计划。keys 为分组列，specs 为聚合输出，按顺序分配状态槽位。
func (e *Engine) Compile(keys []aggregator.KeyColumn, specs []functions.Spec) (*aggregator.Plan, error) {
	plan, err := aggregator.Compile(keys, specs, e.cfg)
	if err != nil {
		return nil, err
	}
	e.log.Debug("compiled plan: %d keys, %d aggregates, region size %d", len(keys), len(specs), plan.Layout().Size())
	return plan, nil
}

// Execute 在给定的输入分区上执行计划，每个分区由一个工作协程扫描。
// 任一分区失败或 ctx 被取消时返回错误，不返回部分结果。
func (e *Engine) Execute(ctx context.Context, plan *aggregator.Plan, cursors ...types.RecordCursor) (*aggregator.Result, error) {
	return aggregator.NewExecutor(plan, e.log).Run(ctx, cursors...)
}

// Agg names one aggregate over a dataset column.
type Agg struct {
	Op functions.Op
	// Column is the input column name; ignored for count_rows.
	Column string
	// Alias defaults to op(column). Post-aggregation expressions refer to
	// the aggregate by Alias when it is an identifier, else as op_column
	// (count_rows for count(*)).
	Alias string
}

// Aggregate 对数据表按列名分组聚合，数据表按配置的工作协程数切分。
func (e *Engine) Aggregate(ctx context.Context, tbl *dataset.Table, keys []string, aggs ...Agg) (*aggregator.Result, error) {
	schema := tbl.Schema()
	keyCols := make([]aggregator.KeyColumn, len(keys))
	for i, name := range keys {
		idx, ok := schema.Index(name)
		if !ok {
			return nil, errors.Newf("unknown group column %q", name)
		}
		keyCols[i] = aggregator.KeyColumn{Name: name, Column: idx, Type: schema.Column(idx).Type}
	}

	specs := make([]functions.Spec, len(aggs))
	for i, a := range aggs {
		if a.Op == functions.CountRows {
			specs[i] = functions.Spec{Op: a.Op, Column: -1, Alias: a.Alias}
			continue
		}
		idx, ok := schema.Index(a.Column)
		if !ok {
			return nil, errors.Newf("unknown aggregate column %q", a.Column)
		}
		spec := functions.Spec{Op: a.Op, Type: schema.Column(idx).Type, Column: idx, Alias: a.Alias}
		if spec.Alias == "" {
			spec.Alias = fmt.Sprintf("%s(%s)", a.Op, a.Column)
		}
		if !functions.IsIdentifier(spec.Alias) {
			spec.Ident = functions.ToIdentifier(fmt.Sprintf("%s_%s", a.Op, a.Column))
		}
		specs[i] = spec
	}

	plan, err := e.Compile(keyCols, specs)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, plan, tbl.Split(e.cfg.Workers)...)
}

// PrintTable 以表格形式输出结果，按分组键排序。
//
// 输出格式:
//
//	+--------+----------+
//	| region | sum(qty) |
//	+--------+----------+
//	| eu     | 4        |
//	| us     | 15       |
//	+--------+----------+
//	(2 rows)
func PrintTable(w io.Writer, res *aggregator.Result) error {
	sorted := res.SortedRows()
	rows := make([][]any, len(sorted))
	for i, r := range sorted {
		rows[i] = r.Fields()
	}
	return table.Write(w, res.Columns(), rows)
}
