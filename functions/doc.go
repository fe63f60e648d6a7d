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
Package functions provides the accumulator registry and the built-in
accumulators of the aggregation engine.

An accumulator is the policy for one (operation, input type) pair. It claims
one or more typed slots in the group's value region at plan compile time and
afterwards only reads and writes those slots, so a single instance serves
every group on every worker.

# Built-in Accumulators

	min, max, count, first, last - every fixed-width type
	sum, avg                     - int8, int16, int32, int64, float32, float64
	count_rows                   - count(*), independent of any column

Sum promotion: int8/16/32 accumulate in int64, int64 in a 128-bit slot,
floats in float64. avg keeps a float64 sum and an int64 count.

# Nulls

int32, int64, date and timestamp reserve their minimum value as null; floats
use NaN; int8 and int16 have no null. Null inputs are skipped, except that a
group whose first row is null starts out null. first and last keep nulls as
values.

# Custom Accumulators

	err := functions.Register("rms", types.Float64, func(col int) functions.Accumulator {
		return &rms{col: col}
	})

Operation names are case-insensitive.
*/
package functions
