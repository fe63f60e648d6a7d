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
Package types provides the column types, null sentinels, record interfaces,
errors and configuration shared by the aggregation engine.

# Column Types

	Int8, Int16, Int32, Int64, Float32, Float64 - numeric
	Date                                        - milliseconds since epoch
	Timestamp                                   - microseconds since epoch
	String                                      - group keys only
	Int128                                      - promoted int64 sum slots

# Errors

	SchemaFrozenError      - slot registration after the layout was frozen
	TypeMismatchError      - region access with the wrong type or offset
	ResourceExhaustedError - group or memory limit reached

Each matches its sentinel with errors.Is:

	if errors.Is(err, types.ErrResourceExhausted) {
		// the query failed as a whole
	}

# Configuration

Config is loaded from TOML with LoadConfig or ParseConfig on top of
DefaultConfig. DebugConfig runs single-threaded with checked offsets.
*/
package types
