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

package region

import (
	"math"
	"math/bits"
)

// Int128 is a two's complement 128-bit integer used to sum int64 values
// without overflow.
type Int128 struct {
	Hi int64
	Lo uint64
}

// NullInt128 is the smallest Int128. Summing fewer than 2^63 int64 values can
// never reach it.
var NullInt128 = Int128{Hi: math.MinInt64}

func Int128From(v int64) Int128 {
	return Int128{Hi: v >> 63, Lo: uint64(v)}
}

func (a Int128) IsNull() bool {
	return a == NullInt128
}

func (a Int128) Add(b Int128) Int128 {
	lo, carry := bits.Add64(a.Lo, b.Lo, 0)
	return Int128{Hi: a.Hi + b.Hi + int64(carry), Lo: lo}
}

func (a Int128) AddInt64(v int64) Int128 {
	return a.Add(Int128From(v))
}

// Int64 returns the value and whether it fits in an int64.
func (a Int128) Int64() (int64, bool) {
	return int64(a.Lo), a.Hi == int64(a.Lo)>>63
}

func (a Int128) Float64() float64 {
	if a.Hi < 0 {
		n := Int128{}.Sub(a)
		return -(float64(uint64(n.Hi))*(1<<64) + float64(n.Lo))
	}
	return float64(a.Hi)*(1<<64) + float64(a.Lo)
}

func (a Int128) Sub(b Int128) Int128 {
	lo, borrow := bits.Sub64(a.Lo, b.Lo, 0)
	return Int128{Hi: a.Hi - b.Hi - int64(borrow), Lo: lo}
}
