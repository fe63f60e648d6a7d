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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dchest/siphash"
	"github.com/spf13/cast"

	"github.com/rulego/groupby/types"
)

// SipHash keys for group key hashing. They are fixed so that hashes are
// reproducible across tables and processes.
const (
	hashK0 = 0x736f6d6570736575
	hashK1 = 0x646f72616e646f6d
)

// string escaping for the order preserving key encoding
const (
	escape      byte = 0x00
	escapedNull byte = 0xff
	terminator  byte = 0x01
)

// canonical NaN so every null float key lands in the same group
var (
	canonicalNaN32 = math.Float32bits(float32(math.NaN()))
	canonicalNaN64 = math.Float64bits(math.NaN())
)

// KeyColumn is one GROUP BY column of the input.
type KeyColumn struct {
	Name   string
	Column int
	Type   types.ColumnType
}

// GroupKey is an immutable, encoded group key tuple. The encoding preserves
// the natural order of each column, so byte order equals tuple order, and
// byte equality equals structural equality.
type GroupKey struct {
	types []types.ColumnType
	data  []byte
}

// NewGroupKey encodes values, coercing each to its key column type. A nil
// value stands for the type's null.
func NewGroupKey(keyTypes []types.ColumnType, values ...any) (GroupKey, error) {
	if len(values) != len(keyTypes) {
		return GroupKey{}, errors.Newf("group key has %d columns, got %d values", len(keyTypes), len(values))
	}
	var buf []byte
	for i, t := range keyTypes {
		var err error
		if buf, err = appendValue(buf, t, values[i]); err != nil {
			return GroupKey{}, errors.Wrapf(err, "group key column %d", i)
		}
	}
	return GroupKey{types: keyTypes, data: buf}, nil
}

func appendValue(buf []byte, t types.ColumnType, v any) ([]byte, error) {
	if v == nil {
		return appendNull(buf, t)
	}
	switch t {
	case types.Int8, types.Int16, types.Int32, types.Int64, types.Date, types.Timestamp:
		n, err := types.ToIntE(v, t)
		if err != nil {
			return buf, err
		}
		return appendInt(buf, n, t.Width()), nil
	case types.Float32:
		f, err := cast.ToFloat32E(v)
		return appendFloat32(buf, f), err
	case types.Float64:
		f, err := cast.ToFloat64E(v)
		return appendFloat64(buf, f), err
	case types.String:
		s, err := cast.ToStringE(v)
		return appendString(buf, s), err
	default:
		return buf, errors.Newf("unsupported group key type %s", t)
	}
}

func appendNull(buf []byte, t types.ColumnType) ([]byte, error) {
	switch t {
	case types.Int8, types.Int16:
		return buf, errors.Newf("%s has no null representation", t)
	case types.Int32:
		return appendInt(buf, int64(types.NullInt32), 4), nil
	case types.Int64, types.Date, types.Timestamp:
		return appendInt(buf, types.NullInt64, 8), nil
	case types.Float32:
		return appendFloat32(buf, types.NullFloat32), nil
	case types.Float64:
		return appendFloat64(buf, types.NullFloat64), nil
	case types.String:
		return appendString(buf, ""), nil
	default:
		return buf, errors.Newf("unsupported group key type %s", t)
	}
}

// appendInt writes the low width bytes big-endian with the sign bit flipped.
func appendInt(buf []byte, v int64, width int) []byte {
	u := uint64(v) ^ (1 << (width*8 - 1))
	for i := width - 1; i >= 0; i-- {
		buf = append(buf, byte(u>>(uint(i)*8)))
	}
	return buf
}

func appendFloat32(buf []byte, f float32) []byte {
	u := math.Float32bits(f)
	switch {
	case f != f:
		u = canonicalNaN32
	case f == 0:
		// -0 groups with +0
		u = 0
	}
	if u&(1<<31) != 0 {
		u = ^u
	} else {
		u |= 1 << 31
	}
	return binary.BigEndian.AppendUint32(buf, u)
}

func appendFloat64(buf []byte, f float64) []byte {
	u := math.Float64bits(f)
	switch {
	case f != f:
		u = canonicalNaN64
	case f == 0:
		// -0 groups with +0
		u = 0
	}
	if u&(1<<63) != 0 {
		u = ^u
	} else {
		u |= 1 << 63
	}
	return binary.BigEndian.AppendUint64(buf, u)
}

func appendString(buf []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		if s[i] == escape {
			buf = append(buf, escape, escapedNull)
			continue
		}
		buf = append(buf, s[i])
	}
	return append(buf, escape, terminator)
}

// appendRecordKey encodes the key columns of rec.
func appendRecordKey(buf []byte, rec types.Record, keys []KeyColumn) []byte {
	for _, k := range keys {
		switch k.Type {
		case types.Int8:
			buf = appendInt(buf, int64(rec.GetInt8(k.Column)), 1)
		case types.Int16:
			buf = appendInt(buf, int64(rec.GetInt16(k.Column)), 2)
		case types.Int32:
			buf = appendInt(buf, int64(rec.GetInt32(k.Column)), 4)
		case types.Int64:
			buf = appendInt(buf, rec.GetInt64(k.Column), 8)
		case types.Date:
			buf = appendInt(buf, rec.GetDate(k.Column), 8)
		case types.Timestamp:
			buf = appendInt(buf, rec.GetTimestamp(k.Column), 8)
		case types.Float32:
			buf = appendFloat32(buf, rec.GetFloat32(k.Column))
		case types.Float64:
			buf = appendFloat64(buf, rec.GetFloat64(k.Column))
		case types.String:
			buf = appendString(buf, rec.GetString(k.Column))
		}
	}
	return buf
}

func hashKey(data []byte) uint64 {
	return siphash.Hash(hashK0, hashK1, data)
}

func (k GroupKey) Bytes() []byte {
	return k.data
}

func (k GroupKey) Types() []types.ColumnType {
	return k.types
}

func (k GroupKey) Hash() uint64 {
	return hashKey(k.data)
}

func (k GroupKey) Equal(o GroupKey) bool {
	return bytes.Equal(k.data, o.data)
}

// Compare orders keys by their column values, left to right.
func (k GroupKey) Compare(o GroupKey) int {
	return bytes.Compare(k.data, o.data)
}

// Values decodes the key. Null key values decode as nil.
func (k GroupKey) Values() []any {
	out := make([]any, len(k.types))
	data := k.data
	for i, t := range k.types {
		out[i], data = decodeValue(t, data)
	}
	return out
}

func (k GroupKey) String() string {
	vals := k.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		if v == nil {
			parts[i] = "NULL"
			continue
		}
		parts[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func decodeInt(data []byte, width int) (int64, []byte) {
	var u uint64
	for i := 0; i < width; i++ {
		u = u<<8 | uint64(data[i])
	}
	u ^= 1 << (width*8 - 1)
	shift := uint(64 - width*8)
	return int64(u<<shift) >> shift, data[width:]
}

func decodeValue(t types.ColumnType, data []byte) (any, []byte) {
	switch t {
	case types.Int8:
		v, rest := decodeInt(data, 1)
		return int8(v), rest
	case types.Int16:
		v, rest := decodeInt(data, 2)
		return int16(v), rest
	case types.Int32:
		v, rest := decodeInt(data, 4)
		if int32(v) == types.NullInt32 {
			return nil, rest
		}
		return int32(v), rest
	case types.Int64, types.Date, types.Timestamp:
		v, rest := decodeInt(data, 8)
		if v == types.NullInt64 {
			return nil, rest
		}
		return v, rest
	case types.Float32:
		u := binary.BigEndian.Uint32(data)
		if u&(1<<31) != 0 {
			u &^= 1 << 31
		} else {
			u = ^u
		}
		f := math.Float32frombits(u)
		if f != f {
			return nil, data[4:]
		}
		return f, data[4:]
	case types.Float64:
		u := binary.BigEndian.Uint64(data)
		if u&(1<<63) != 0 {
			u &^= 1 << 63
		} else {
			u = ^u
		}
		f := math.Float64frombits(u)
		if f != f {
			return nil, data[8:]
		}
		return f, data[8:]
	case types.String:
		var sb strings.Builder
		for i := 0; i < len(data); i++ {
			if data[i] != escape {
				sb.WriteByte(data[i])
				continue
			}
			i++
			if data[i] == terminator {
				return sb.String(), data[i+1:]
			}
			sb.WriteByte(escape)
		}
		return sb.String(), nil
	}
	return nil, data
}
