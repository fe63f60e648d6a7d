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
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
)

// mergeCheckInterval is the number of groups merged between context polls.
const mergeCheckInterval = 1024

// MergeTables combines completed partial tables into one. The returned table
// is one of the inputs; every other input is cleared.
//
// Plans containing order-sensitive accumulators (first, last), or a fanIn of
// 1, merge sequentially into the first table in input order. Otherwise tables
// are reduced pairwise, level by level, with at most fanIn merges running at
// once. Each merge owns both of its tables, so no locking is needed.
func MergeTables(ctx context.Context, p *Plan, tables []*GroupTable, fanIn int) (*GroupTable, error) {
	return mergeTables(ctx, p, tables, fanIn, nil)
}

func mergeTables(ctx context.Context, p *Plan, tables []*GroupTable, fanIn int, stats *StatsCollector) (*GroupTable, error) {
	live := tables[:0:0]
	for _, t := range tables {
		if t != nil {
			live = append(live, t)
		}
	}
	switch {
	case len(live) == 0:
		return p.NewTable(), nil
	case len(live) == 1:
		return live[0], nil
	case fanIn <= 1 || len(live) == 2 || !p.Commutative():
		return mergeSequential(ctx, p, live, stats)
	}
	if stats != nil {
		stats.setParallelMerge(true)
	}
	return mergeTree(ctx, p, live, fanIn, stats)
}

func mergeSequential(ctx context.Context, p *Plan, tables []*GroupTable, stats *StatsCollector) (*GroupTable, error) {
	dst := tables[0]
	for _, src := range tables[1:] {
		if err := mergeInto(ctx, p, dst, src, stats); err != nil {
			return nil, err
		}
		src.Clear()
	}
	return dst, nil
}

func mergeTree(ctx context.Context, p *Plan, level []*GroupTable, fanIn int, stats *StatsCollector) (*GroupTable, error) {
	pool, err := ants.NewPool(fanIn)
	if err != nil {
		return nil, errors.Wrap(err, "create merge pool")
	}
	defer pool.Release()

	for len(level) > 1 {
		pairs := len(level) / 2
		errs := make([]error, pairs)
		var wg sync.WaitGroup
		for i := 0; i < pairs; i++ {
			i := i
			dst, src := level[2*i], level[2*i+1]
			wg.Add(1)
			task := func() {
				defer wg.Done()
				if errs[i] = mergeInto(ctx, p, dst, src, stats); errs[i] == nil {
					src.Clear()
				}
			}
			if err := pool.Submit(task); err != nil {
				wg.Done()
				errs[i] = errors.Wrap(err, "submit merge task")
			}
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}

		next := level[:0]
		for i := 0; i < pairs; i++ {
			next = append(next, level[2*i])
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0], nil
}

// mergeInto folds every group of src into dst. New keys take a copy of the
// source region; existing keys are combined with MergePartial.
func mergeInto(ctx context.Context, p *Plan, dst, src *GroupTable, stats *StatsCollector) error {
	if !dst.layout.Equal(src.layout) {
		return errors.AssertionFailedf("merging tables with different layouts")
	}
	for i := range src.groups {
		if i%mergeCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		g := &src.groups[i]
		rg, isNew, err := dst.probe(g.hash, g.key)
		if err != nil {
			return err
		}
		if isNew {
			rg.CopyFrom(g.region)
		} else {
			p.mergeRegion(rg, g.region)
		}
	}
	if stats != nil {
		stats.AddMerged(int64(len(src.groups)))
	}
	return nil
}
