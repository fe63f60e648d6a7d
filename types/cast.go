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

package types

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
)

// ToIntE coerces v to an integer of type t. Values outside the range of t
// are rejected instead of wrapping.
func ToIntE(v any, t ColumnType) (int64, error) {
	switch t {
	case Int8, Int16, Int32, Int64, Date, Timestamp:
	default:
		return 0, errors.Newf("%s is not an integer type", t)
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, err
	}
	if w := t.Width(); w < 8 {
		bits := uint(w * 8)
		lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
		if n < lo || n > hi {
			return 0, errors.Newf("value %d out of range for %s", n, t)
		}
	}
	return n, nil
}
