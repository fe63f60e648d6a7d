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
	"math"
)

// ColumnType identifies the primitive type of an input column or a value slot.
type ColumnType uint8

const (
	Unknown ColumnType = iota
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	// Date is milliseconds since the Unix epoch.
	Date
	// Timestamp is microseconds since the Unix epoch.
	Timestamp
	// String may only be used as a group key column.
	String
	// Int128 is a slot-only type used by promoted int64 sums.
	Int128
)

var columnTypeNames = [...]string{
	Unknown:   "unknown",
	Int8:      "int8",
	Int16:     "int16",
	Int32:     "int32",
	Int64:     "int64",
	Float32:   "float32",
	Float64:   "float64",
	Date:      "date",
	Timestamp: "timestamp",
	String:    "string",
	Int128:    "int128",
}

func (t ColumnType) String() string {
	if int(t) < len(columnTypeNames) {
		return columnTypeNames[t]
	}
	return "unknown"
}

// Width returns the number of bytes a value of this type occupies in a value
// region, or 0 if the type has no fixed width.
func (t ColumnType) Width() int {
	switch t {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64, Date, Timestamp:
		return 8
	case Int128:
		return 16
	default:
		return 0
	}
}

// Fixed reports whether the type can be stored in a value region slot.
func (t ColumnType) Fixed() bool {
	return t.Width() > 0
}

// HasNull reports whether the type reserves a null sentinel. Int8 and Int16
// use their whole range for values and therefore have none.
func (t ColumnType) HasNull() bool {
	switch t {
	case Int32, Int64, Float32, Float64, Date, Timestamp, Int128:
		return true
	default:
		return false
	}
}

// ParseColumnType resolves a type name as printed by ColumnType.String.
func ParseColumnType(name string) (ColumnType, bool) {
	for i, n := range columnTypeNames {
		if n == name && ColumnType(i) != Unknown {
			return ColumnType(i), true
		}
	}
	return Unknown, false
}

// Null sentinels.
const (
	NullInt32     int32 = math.MinInt32
	NullInt64     int64 = math.MinInt64
	NullDate            = NullInt64
	NullTimestamp       = NullInt64
)

var (
	NullFloat32 = float32(math.NaN())
	NullFloat64 = math.NaN()
)

func IsNullInt32(v int32) bool     { return v == NullInt32 }
func IsNullInt64(v int64) bool     { return v == NullInt64 }
func IsNullFloat32(v float32) bool { return v != v }
func IsNullFloat64(v float64) bool { return v != v }

// Record is one input row as produced by the execution cursor. Columns are
// addressed by ordinal position; the caller is expected to use the accessor
// matching the column's declared type.
type Record interface {
	GetInt8(col int) int8
	GetInt16(col int) int16
	GetInt32(col int) int32
	GetInt64(col int) int64
	GetFloat32(col int) float32
	GetFloat64(col int) float64
	GetDate(col int) int64
	GetTimestamp(col int) int64
	GetString(col int) string
	// RowID is the row's position in the original scan order. It must be
	// monotonically increasing across the whole input, including across
	// partitions handed to different workers.
	RowID() int64
}

// RecordCursor is a pull-based row source.
type RecordCursor interface {
	// Next advances to the next record, returning false at end of stream or
	// on error.
	Next() bool
	// Record returns the current record. It is only valid until the next call
	// to Next.
	Record() Record
	Err() error
	Close() error
}
