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
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/rulego/groupby/logger"
	"github.com/rulego/groupby/types"
)

// Executor runs a plan over partitioned input. Each cursor is scanned by its
// own worker into its own table; at most Config.Workers run at once.
type Executor struct {
	plan *Plan
	log  logger.Logger
}

// NewExecutor creates an executor. A nil log uses the package default.
func NewExecutor(p *Plan, log logger.Logger) *Executor {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Executor{plan: p, log: log}
}

// Run scans every cursor, merges the partial tables and returns the result.
// Cursors are closed before Run returns.
//
// If any worker fails, or ctx is cancelled, every partial table is discarded
// without merging and the error is returned; there are no partial results.
func (e *Executor) Run(ctx context.Context, cursors ...types.RecordCursor) (*Result, error) {
	cfg := e.plan.cfg
	stats := NewStatsCollector()
	stats.setPartials(int64(len(cursors)))
	tables := make([]*GroupTable, len(cursors))

	e.log.Debug("aggregation started: %d partitions, %d workers", len(cursors), cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, cur := range cursors {
		i, cur := i, cur
		g.Go(func() error {
			t := e.plan.NewTable()
			tables[i] = t
			err := e.scan(gctx, t, cur, stats)
			if cerr := cur.Close(); cerr != nil {
				err = multierr.Append(err, errors.Wrapf(cerr, "close partition %d", i))
			}
			return errors.Wrapf(err, "partition %d", i)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		discard(tables)
		e.log.Warn("aggregation aborted: %v", err)
		return nil, err
	}

	merged, err := mergeTables(ctx, e.plan, tables, cfg.MergeFanIn, stats)
	if err != nil {
		discard(tables)
		e.log.Warn("merge aborted: %v", err)
		return nil, err
	}
	if err := e.plan.seedEmpty(merged); err != nil {
		merged.Clear()
		return nil, err
	}
	stats.setResult(int64(merged.Len()), merged.MemoryUsage())
	e.log.Debug("aggregation finished: %d rows, %d groups, %s merge",
		stats.GetRowsScanned(), merged.Len(), stats.GetDetailedStats()[MergeStrategy])
	return newResult(e.plan, merged, stats), nil
}

func (e *Executor) scan(ctx context.Context, t *GroupTable, cur types.RecordCursor, stats *StatsCollector) error {
	interval := e.plan.cfg.CancelCheckInterval
	var n int64
	defer func() {
		stats.AddRows(n)
		stats.AddGroups(int64(t.Len()))
	}()
	for cur.Next() {
		if n%int64(interval) == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := e.plan.Accumulate(t, cur.Record()); err != nil {
			return err
		}
		n++
	}
	if err := cur.Err(); err != nil {
		return err
	}
	return ctx.Err()
}

func discard(tables []*GroupTable) {
	for _, t := range tables {
		if t != nil {
			t.Clear()
		}
	}
}
