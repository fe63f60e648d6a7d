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

/*
Package aggregator implements the GROUP BY execution core: group keys, the
per-worker group table, plan compilation, parallel execution, partial table
merging and result materialization.

# Core Features

• Packed Group State - Every group owns one fixed-layout value region shared by all accumulators
• Parallel Scan - One worker and one group table per input partition, no locking
• Partial Merge - Sequential or pairwise tree merge of completed tables
• Resource Limits - Group count and memory caps fail the query as a whole
• Ordered Output - Group keys encode in an order-preserving byte format

# Usage

	keys := []aggregator.KeyColumn{{Name: "region", Column: 0, Type: types.String}}
	specs := []functions.Spec{
		{Op: functions.Sum, Type: types.Int32, Column: 3},
		{Op: functions.Avg, Type: types.Float64, Column: 2, Alias: "avg_price"},
	}
	plan, err := aggregator.Compile(keys, specs, types.DefaultConfig())
	if err != nil {
		return err
	}
	res, err := aggregator.NewExecutor(plan, nil).Run(ctx, table.Split(4)...)
	if err != nil {
		return err
	}
	defer res.Close()
	for _, row := range res.SortedRows() {
		fmt.Println(row.Fields()...)
	}

# Execution

Run starts one worker per cursor, bounded by Config.Workers. A worker probes
its table with each row's key; a new group seeds every accumulator from the
row, an existing group folds the row in. Workers poll the context every
Config.CancelCheckInterval rows. When every worker is done the tables are
merged: plans with first or last merge sequentially, others reduce pairwise
on an ants pool of Config.MergeFanIn goroutines. A keyless aggregation over
zero rows yields one group seeded to the null state.

Any worker error, merge error or cancellation discards all partial tables.
*/
package aggregator
