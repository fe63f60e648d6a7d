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
Package groupby 是一个并行的分组聚合执行引擎。

每个分组的聚合状态存放在一块定长、紧凑排列的内存区域中，由一组可插拔的累加器
（min/max/sum/count/avg/first/last）共享。输入被切分为多个分区并行扫描，
每个工作协程独占一张分组表，扫描完成后再合并为最终结果。

# 核心特性

• 紧凑状态布局 - 编译期分配槽位偏移，无填充浪费
• 增量与可合并 - 逐行折叠，部分结果可跨工作协程合并
• 一致的空值语义 - 每种类型固定的空值哨兵
• 溢出安全 - 窄整数求和提升为 int64，int64 求和提升为 128 位
• 资源限制 - 分组数与内存上限，超出时整个查询失败

# 入门示例

	engine, err := groupby.New(groupby.WithWorkers(4), groupby.WithDiscardLog())
	if err != nil {
		panic(err)
	}

	tbl := dataset.NewTable(dataset.MustSchema(
		dataset.Column{Name: "region", Type: types.String},
		dataset.Column{Name: "qty", Type: types.Int32},
	))
	_ = tbl.Append("eu", 3)
	_ = tbl.Append("us", 5)

	res, err := engine.Aggregate(context.Background(), tbl, []string{"region"},
		groupby.Agg{Op: functions.Sum, Column: "qty"},
		groupby.Agg{Op: functions.Avg, Column: "qty", Alias: "avg_qty"},
	)
	if err != nil {
		panic(err)
	}
	defer res.Close()
	_ = groupby.PrintTable(os.Stdout, res)

# 配置

配置可由选项或 TOML 文件提供:

	workers = 8
	max_groups = 1000000
	max_memory_bytes = 268435456
	merge_fan_in = 4

	[log]
	level = "warn"
	file = "/var/log/groupby.log"
*/
package groupby
