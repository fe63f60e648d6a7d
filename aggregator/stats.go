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
	"go.uber.org/atomic"
)

// Statistics field constants
const (
	RowsScanned    = "rows_scanned"
	GroupsCreated  = "groups_created"
	GroupsMerged   = "groups_merged"
	PartialTables  = "partial_tables"
	ResultGroups   = "result_groups"
	MemoryBytes    = "memory_bytes"
	MergeStrategy  = "merge_strategy"
	RowsPerGroup   = "rows_per_group"
	MergeReduction = "merge_reduction"
)

// StatsCollector collects execution counters. Workers update it
// concurrently.
type StatsCollector struct {
	rowsScanned   atomic.Int64
	groupsCreated atomic.Int64
	groupsMerged  atomic.Int64
	partialTables atomic.Int64
	resultGroups  atomic.Int64
	memoryBytes   atomic.Int64
	parallelMerge atomic.Bool
}

// NewStatsCollector creates a new statistics collector
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

// AddRows adds n scanned rows
func (sc *StatsCollector) AddRows(n int64) {
	sc.rowsScanned.Add(n)
}

// AddGroups adds n groups created by a worker
func (sc *StatsCollector) AddGroups(n int64) {
	sc.groupsCreated.Add(n)
}

// AddMerged adds n partial groups folded into another table
func (sc *StatsCollector) AddMerged(n int64) {
	sc.groupsMerged.Add(n)
}

func (sc *StatsCollector) setPartials(n int64) { sc.partialTables.Store(n) }
func (sc *StatsCollector) setResult(groups, mem int64) {
	sc.resultGroups.Store(groups)
	sc.memoryBytes.Store(mem)
}
func (sc *StatsCollector) setParallelMerge(v bool) { sc.parallelMerge.Store(v) }

// GetRowsScanned gets the number of scanned rows
func (sc *StatsCollector) GetRowsScanned() int64 {
	return sc.rowsScanned.Load()
}

// GetGroupsCreated gets the number of groups created across all partial tables
func (sc *StatsCollector) GetGroupsCreated() int64 {
	return sc.groupsCreated.Load()
}

// GetGroupsMerged gets the number of partial groups merged
func (sc *StatsCollector) GetGroupsMerged() int64 {
	return sc.groupsMerged.Load()
}

// GetResultGroups gets the number of groups in the final table
func (sc *StatsCollector) GetResultGroups() int64 {
	return sc.resultGroups.Load()
}

// Reset resets statistics information
func (sc *StatsCollector) Reset() {
	sc.rowsScanned.Store(0)
	sc.groupsCreated.Store(0)
	sc.groupsMerged.Store(0)
	sc.partialTables.Store(0)
	sc.resultGroups.Store(0)
	sc.memoryBytes.Store(0)
	sc.parallelMerge.Store(false)
}

// GetBasicStats gets basic statistics information
func (sc *StatsCollector) GetBasicStats() map[string]int64 {
	return map[string]int64{
		RowsScanned:   sc.GetRowsScanned(),
		GroupsCreated: sc.GetGroupsCreated(),
		GroupsMerged:  sc.GetGroupsMerged(),
		PartialTables: sc.partialTables.Load(),
		ResultGroups:  sc.GetResultGroups(),
		MemoryBytes:   sc.memoryBytes.Load(),
	}
}

// GetDetailedStats gets derived statistics on top of the basic counters
func (sc *StatsCollector) GetDetailedStats() map[string]interface{} {
	basic := sc.GetBasicStats()

	var rowsPerGroup, reduction float64
	if basic[ResultGroups] > 0 {
		rowsPerGroup = float64(basic[RowsScanned]) / float64(basic[ResultGroups])
	}
	if basic[GroupsCreated] > 0 {
		reduction = float64(basic[GroupsCreated]-basic[ResultGroups]) / float64(basic[GroupsCreated]) * 100
	}
	strategy := "sequential"
	if sc.parallelMerge.Load() {
		strategy = "tree"
	}
	return map[string]interface{}{
		"basic_stats":  basic,
		RowsPerGroup:   rowsPerGroup,
		MergeReduction: reduction,
		MergeStrategy:  strategy,
	}
}
