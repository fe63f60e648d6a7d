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
	"encoding/binary"
	"math"

	"github.com/rulego/groupby/types"
)

// Region is the fixed-size state block of one group. It is a small value
// wrapping a byte slice owned by a group table; copies share the same memory.
//
// Accessors are unchecked unless the layout was frozen in checked mode, in
// which case an access through the wrong type or at an unregistered offset
// panics with a TypeMismatchError.
type Region struct {
	layout *Layout
	buf    []byte
}

func (r Region) Layout() *Layout {
	return r.layout
}

// Bytes exposes the raw state, mainly for copying between tables.
func (r Region) Bytes() []byte {
	return r.buf
}

func (r Region) Valid() bool {
	return r.layout != nil && len(r.buf) == r.layout.size
}

// CopyFrom overwrites r with the state of src. Both must share a layout.
func (r Region) CopyFrom(src Region) {
	if r.layout.checked && !r.layout.Equal(src.layout) {
		panic(types.NewTypeMismatchError(0, types.Unknown, types.Unknown))
	}
	copy(r.buf, src.buf)
}

// Reset zeroes the region.
func (r Region) Reset() {
	clear(r.buf)
}

func (r Region) check(offset int, t types.ColumnType) {
	if !r.layout.checked {
		return
	}
	if got := r.layout.TypeAt(offset); got != t {
		panic(types.NewTypeMismatchError(offset, t, got))
	}
}

func (r Region) GetInt8(offset int) int8 {
	r.check(offset, types.Int8)
	return int8(r.buf[offset])
}

func (r Region) PutInt8(offset int, v int8) {
	r.check(offset, types.Int8)
	r.buf[offset] = byte(v)
}

func (r Region) GetInt16(offset int) int16 {
	r.check(offset, types.Int16)
	return int16(binary.LittleEndian.Uint16(r.buf[offset:]))
}

func (r Region) PutInt16(offset int, v int16) {
	r.check(offset, types.Int16)
	binary.LittleEndian.PutUint16(r.buf[offset:], uint16(v))
}

func (r Region) GetInt32(offset int) int32 {
	r.check(offset, types.Int32)
	return int32(binary.LittleEndian.Uint32(r.buf[offset:]))
}

func (r Region) PutInt32(offset int, v int32) {
	r.check(offset, types.Int32)
	binary.LittleEndian.PutUint32(r.buf[offset:], uint32(v))
}

func (r Region) GetInt64(offset int) int64 {
	r.check(offset, types.Int64)
	return int64(binary.LittleEndian.Uint64(r.buf[offset:]))
}

func (r Region) PutInt64(offset int, v int64) {
	r.check(offset, types.Int64)
	binary.LittleEndian.PutUint64(r.buf[offset:], uint64(v))
}

func (r Region) GetFloat32(offset int) float32 {
	r.check(offset, types.Float32)
	return math.Float32frombits(binary.LittleEndian.Uint32(r.buf[offset:]))
}

func (r Region) PutFloat32(offset int, v float32) {
	r.check(offset, types.Float32)
	binary.LittleEndian.PutUint32(r.buf[offset:], math.Float32bits(v))
}

func (r Region) GetFloat64(offset int) float64 {
	r.check(offset, types.Float64)
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[offset:]))
}

func (r Region) PutFloat64(offset int, v float64) {
	r.check(offset, types.Float64)
	binary.LittleEndian.PutUint64(r.buf[offset:], math.Float64bits(v))
}

func (r Region) GetDate(offset int) int64 {
	r.check(offset, types.Date)
	return int64(binary.LittleEndian.Uint64(r.buf[offset:]))
}

func (r Region) PutDate(offset int, v int64) {
	r.check(offset, types.Date)
	binary.LittleEndian.PutUint64(r.buf[offset:], uint64(v))
}

func (r Region) GetTimestamp(offset int) int64 {
	r.check(offset, types.Timestamp)
	return int64(binary.LittleEndian.Uint64(r.buf[offset:]))
}

func (r Region) PutTimestamp(offset int, v int64) {
	r.check(offset, types.Timestamp)
	binary.LittleEndian.PutUint64(r.buf[offset:], uint64(v))
}

func (r Region) GetInt128(offset int) Int128 {
	r.check(offset, types.Int128)
	return Int128{
		Lo: binary.LittleEndian.Uint64(r.buf[offset:]),
		Hi: int64(binary.LittleEndian.Uint64(r.buf[offset+8:])),
	}
}

func (r Region) PutInt128(offset int, v Int128) {
	r.check(offset, types.Int128)
	binary.LittleEndian.PutUint64(r.buf[offset:], v.Lo)
	binary.LittleEndian.PutUint64(r.buf[offset+8:], uint64(v.Hi))
}
