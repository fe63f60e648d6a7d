package types

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnTypeWidth(t *testing.T) {
	tests := []struct {
		typ   ColumnType
		width int
		null  bool
	}{
		{Int8, 1, false},
		{Int16, 2, false},
		{Int32, 4, true},
		{Int64, 8, true},
		{Float32, 4, true},
		{Float64, 8, true},
		{Date, 8, true},
		{Timestamp, 8, true},
		{Int128, 16, true},
		{String, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.width, tt.typ.Width())
			assert.Equal(t, tt.width > 0, tt.typ.Fixed())
			assert.Equal(t, tt.null, tt.typ.HasNull())
		})
	}
}

func TestParseColumnType(t *testing.T) {
	typ, ok := ParseColumnType("timestamp")
	assert.True(t, ok)
	assert.Equal(t, Timestamp, typ)

	_, ok = ParseColumnType("unknown")
	assert.False(t, ok)
	_, ok = ParseColumnType("decimal")
	assert.False(t, ok)
}

func TestNullSentinels(t *testing.T) {
	assert.True(t, IsNullInt32(math.MinInt32))
	assert.False(t, IsNullInt32(0))
	assert.True(t, IsNullInt64(math.MinInt64))
	assert.True(t, IsNullFloat32(NullFloat32))
	assert.True(t, IsNullFloat64(NullFloat64))
	assert.False(t, IsNullFloat64(0))
}

func TestErrorsMatch(t *testing.T) {
	err := NewSchemaFrozenError(Int64, 3)
	assert.True(t, errors.Is(err, ErrSchemaFrozen))
	assert.False(t, errors.Is(err, ErrTypeMismatch))
	var sf *SchemaFrozenError
	assert.True(t, errors.As(err, &sf))
	assert.Equal(t, 3, sf.Slots)

	err = errors.Wrap(NewResourceExhaustedError("groups", 10, 10), "worker 1")
	assert.True(t, errors.Is(err, ErrResourceExhausted))
	assert.Contains(t, err.Error(), "groups limit 10 exceeded")

	err = NewTypeMismatchError(8, Int32, Float64)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.Equal(t, "int32 access to float64 slot at offset 8", err.Error())
}

func TestToIntE(t *testing.T) {
	n, err := ToIntE("42", Int8)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = ToIntE(300, Int8)
	assert.Error(t, err)
	_, err = ToIntE(-32769, Int16)
	assert.Error(t, err)
	n, err = ToIntE(int64(1)<<40, Int64)
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<40, n)
	_, err = ToIntE(1, Float64)
	assert.Error(t, err)
}
