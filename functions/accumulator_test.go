package functions

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecord holds a single column value at ordinal 0.
type testRecord struct {
	v   any
	rid int64
}

func (r testRecord) GetInt8(int) int8       { return r.v.(int8) }
func (r testRecord) GetInt16(int) int16     { return r.v.(int16) }
func (r testRecord) GetInt32(int) int32     { return r.v.(int32) }
func (r testRecord) GetInt64(int) int64     { return r.v.(int64) }
func (r testRecord) GetFloat32(int) float32 { return r.v.(float32) }
func (r testRecord) GetFloat64(int) float64 { return r.v.(float64) }
func (r testRecord) GetDate(int) int64      { return r.v.(int64) }
func (r testRecord) GetTimestamp(int) int64 { return r.v.(int64) }
func (r testRecord) GetString(int) string   { return r.v.(string) }
func (r testRecord) RowID() int64           { return r.rid }

func records[T any](vals ...T) []types.Record {
	out := make([]types.Record, len(vals))
	for i, v := range vals {
		out[i] = testRecord{v: v, rid: int64(i)}
	}
	return out
}

func compile(t *testing.T, op Op, typ types.ColumnType) (Accumulator, *region.Layout) {
	t.Helper()
	acc, err := New(op, typ, 0)
	require.NoError(t, err)
	reg := region.NewRegistry()
	require.NoError(t, acc.Register(reg))
	return acc, reg.Freeze(true)
}

func fold(acc Accumulator, l *region.Layout, recs []types.Record) region.Region {
	rg := l.NewRegion()
	if len(recs) == 0 {
		acc.SeedNull(rg)
		return rg
	}
	acc.SeedFirst(rg, recs[0])
	for _, rec := range recs[1:] {
		acc.FoldNext(rg, rec)
	}
	return rg
}

func aggregate(t *testing.T, op Op, typ types.ColumnType, recs []types.Record) any {
	t.Helper()
	acc, l := compile(t, op, typ)
	return acc.Extract(fold(acc, l, recs))
}

func TestMinInt8AnyOrder(t *testing.T) {
	vals := []int8{5, 3, 9, 1}
	perms := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}
	for _, p := range perms {
		ordered := make([]int8, len(p))
		for i, j := range p {
			ordered[i] = vals[j]
		}
		assert.Equal(t, int8(1), aggregate(t, Min, types.Int8, records(ordered...)))
		assert.Equal(t, int8(9), aggregate(t, Max, types.Int8, records(ordered...)))
	}
}

func TestSumPromotion(t *testing.T) {
	assert.Equal(t, int64(4000000000),
		aggregate(t, Sum, types.Int32, records(int32(2_000_000_000), int32(2_000_000_000))))
	assert.Equal(t, int64(-256),
		aggregate(t, Sum, types.Int8, records(int8(-128), int8(-128))))
	assert.Equal(t, int64(math.MaxInt16)*3,
		aggregate(t, Sum, types.Int16, records(int16(math.MaxInt16), int16(math.MaxInt16), int16(math.MaxInt16))))

	// int64 totals that leave the int64 range come back as float64
	got := aggregate(t, Sum, types.Int64, records(int64(math.MaxInt64), int64(math.MaxInt64)))
	require.IsType(t, float64(0), got)
	assert.InDelta(t, 2*float64(math.MaxInt64), got.(float64), 1e4)

	// and return to int64 once they fit again
	assert.Equal(t, int64(math.MaxInt64),
		aggregate(t, Sum, types.Int64, records(int64(math.MaxInt64), int64(math.MaxInt64), int64(-math.MaxInt64))))

	assert.Equal(t, 4.0, aggregate(t, Sum, types.Float32, records(float32(1.5), float32(2.5))))
}

func TestAvg(t *testing.T) {
	assert.Equal(t, 4.0, aggregate(t, Avg, types.Int32, records(int32(2), int32(4), int32(6))))
	assert.Equal(t, 4.0, aggregate(t, Avg, types.Float64, records(2.0, 4.0, 6.0)))
	assert.Nil(t, aggregate(t, Avg, types.Int64, nil))
	assert.Nil(t, aggregate(t, Avg, types.Float64, records(math.NaN(), math.NaN())))

	// int64 sums exactly before dividing: a float64 running sum would drop the +1s
	big := int64(1) << 60
	assert.Equal(t, 0.5, aggregate(t, Avg, types.Int64, records(big, int64(1), int64(1), -big)))
	assert.Equal(t, float64(math.MaxInt64), aggregate(t, Avg, types.Int64, records(int64(math.MaxInt64), int64(math.MaxInt64))))
}

func TestCountSkipsNulls(t *testing.T) {
	assert.Equal(t, int64(1), aggregate(t, Count, types.Int32, records(types.NullInt32, int32(7), types.NullInt32)))
	assert.Equal(t, int64(0), aggregate(t, Count, types.Float64, records(math.NaN())))
	// int8 has no null sentinel, so every row counts
	assert.Equal(t, int64(3), aggregate(t, Count, types.Int8, records(int8(math.MinInt8), int8(0), int8(1))))
	assert.Equal(t, int64(0), aggregate(t, Count, types.Date, nil))
}

func TestCountRows(t *testing.T) {
	acc, err := New(CountRows, types.Float64, 3)
	require.NoError(t, err)
	assert.Equal(t, -1, acc.Column())
	reg := region.NewRegistry()
	require.NoError(t, acc.Register(reg))
	l := reg.Freeze(false)
	rg := fold(acc, l, records(math.NaN(), 1.0, math.NaN()))
	assert.Equal(t, int64(3), acc.Extract(rg))
}

func TestNullSkipLaw(t *testing.T) {
	for _, op := range []Op{Min, Max, Sum, Count, Avg} {
		t.Run(string(op), func(t *testing.T) {
			acc, l := compile(t, op, types.Float64)
			rg := fold(acc, l, records(3.0, 1.0, 2.0))
			before := append([]byte(nil), rg.Bytes()...)
			acc.FoldNext(rg, testRecord{v: math.NaN(), rid: 9})
			assert.Equal(t, before, rg.Bytes())
		})
	}
	t.Run("int64 sentinel", func(t *testing.T) {
		acc, l := compile(t, Max, types.Timestamp)
		rg := fold(acc, l, records(int64(10), int64(20)))
		acc.FoldNext(rg, testRecord{v: types.NullTimestamp})
		assert.Equal(t, int64(20), acc.Extract(rg))
	})
}

func TestNullFirstRowSeedsNull(t *testing.T) {
	assert.Nil(t, aggregate(t, Min, types.Float64, records(math.NaN())))
	assert.Nil(t, aggregate(t, Max, types.Int32, records(types.NullInt32, types.NullInt32)))
	assert.Nil(t, aggregate(t, Sum, types.Int64, records(types.NullInt64)))
	assert.Equal(t, int64(0), aggregate(t, Count, types.Int64, records(types.NullInt64)))
	assert.Nil(t, aggregate(t, Avg, types.Float32, records(types.NullFloat32)))

	// a later non-null row replaces the null seed
	assert.Equal(t, 5.0, aggregate(t, Min, types.Float64, records(math.NaN(), 5.0, 7.0)))
	assert.Equal(t, int64(12), aggregate(t, Sum, types.Int32, records(types.NullInt32, int32(5), int32(7))))
}

func TestTieKeepsExisting(t *testing.T) {
	negZero := math.Copysign(0, -1)
	got := aggregate(t, Max, types.Float64, records(negZero, 0.0))
	assert.True(t, math.Signbit(got.(float64)))
	got = aggregate(t, Min, types.Float64, records(0.0, negZero))
	assert.False(t, math.Signbit(got.(float64)))
}

func TestSeedNull(t *testing.T) {
	tests := []struct {
		op   Op
		typ  types.ColumnType
		want any
	}{
		{Min, types.Int64, nil},
		{Max, types.Float32, nil},
		{Min, types.Int8, int8(0)},
		{Sum, types.Int16, nil},
		{Sum, types.Int64, nil},
		{Count, types.Int32, int64(0)},
		{Avg, types.Int8, nil},
		{First, types.Date, nil},
		{Last, types.Float64, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.op)+"_"+tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, aggregate(t, tt.op, tt.typ, nil))
		})
	}
}

func TestFirstLast(t *testing.T) {
	recs := records(int32(4), types.NullInt32, int32(8))
	assert.Equal(t, int32(4), aggregate(t, First, types.Int32, recs))
	assert.Equal(t, int32(8), aggregate(t, Last, types.Int32, recs))
	// nulls are values for first/last
	assert.Nil(t, aggregate(t, Last, types.Int32, recs[:2]))

	acc, err := New(First, types.Int32, 0)
	require.NoError(t, err)
	assert.False(t, acc.Commutative())
	minAcc, err := New(Min, types.Int32, 0)
	require.NoError(t, err)
	assert.True(t, minAcc.Commutative())
}

func TestFirstLastMergeUsesRowIDs(t *testing.T) {
	for _, op := range []Op{First, Last} {
		acc, l := compile(t, op, types.Int64)
		early := fold(acc, l, []types.Record{testRecord{v: int64(1), rid: 0}, testRecord{v: int64(2), rid: 1}})
		late := fold(acc, l, []types.Record{testRecord{v: int64(3), rid: 2}, testRecord{v: int64(4), rid: 3}})

		// merging in reverse scan order still gives the scan-order answer
		dst := l.NewRegion()
		dst.CopyFrom(late)
		acc.MergePartial(dst, early)
		if op == First {
			assert.Equal(t, int64(1), acc.Extract(dst))
		} else {
			assert.Equal(t, int64(4), acc.Extract(dst))
		}
	}
}

func TestExtractIdempotent(t *testing.T) {
	for _, op := range []Op{Min, Max, Sum, Count, Avg, First, Last} {
		acc, l := compile(t, op, types.Int32)
		rg := fold(acc, l, records(int32(3), int32(1), int32(2)))
		snapshot := append([]byte(nil), rg.Bytes()...)
		first := acc.Extract(rg)
		assert.Equal(t, first, acc.Extract(rg), op)
		assert.Equal(t, snapshot, rg.Bytes(), op)
	}
}

func randomRecords(rnd *rand.Rand, typ types.ColumnType, n int) []types.Record {
	out := make([]types.Record, n)
	for i := range out {
		var v any
		null := rnd.Intn(5) == 0
		switch typ {
		case types.Int8:
			v = int8(rnd.Intn(256) - 128)
		case types.Int16:
			v = int16(rnd.Intn(65536) - 32768)
		case types.Int32:
			v = int32(rnd.Int63() - math.MaxInt32)
			if null {
				v = types.NullInt32
			}
		case types.Int64:
			v = rnd.Int63() - rnd.Int63()
			if null {
				v = types.NullInt64
			}
		case types.Float64:
			// integral values keep float sums exact regardless of order
			v = float64(rnd.Intn(2000) - 1000)
			if null {
				v = math.NaN()
			}
		case types.Timestamp:
			v = rnd.Int63()
			if null {
				v = types.NullTimestamp
			}
		}
		out[i] = testRecord{v: v, rid: int64(i)}
	}
	return out
}

func TestMergeEqualsSequentialFold(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	cases := []struct {
		typ types.ColumnType
		ops []Op
	}{
		{types.Int8, []Op{Min, Max, Sum, Count, Avg}},
		{types.Int16, []Op{Min, Max, Sum, Count, Avg}},
		{types.Int32, []Op{Min, Max, Sum, Count, Avg}},
		{types.Int64, []Op{Min, Max, Sum, Count}},
		{types.Float64, []Op{Min, Max, Sum, Count, Avg}},
		{types.Timestamp, []Op{Min, Max, Count, First, Last}},
	}
	for _, c := range cases {
		for _, op := range c.ops {
			t.Run(string(op)+"_"+c.typ.String(), func(t *testing.T) {
				acc, l := compile(t, op, c.typ)
				for trial := 0; trial < 20; trial++ {
					recs := randomRecords(rnd, c.typ, 1+rnd.Intn(40))
					want := acc.Extract(fold(acc, l, recs))

					// cut the rows into contiguous partitions, some possibly empty
					parts := 1 + rnd.Intn(4)
					var partials []region.Region
					start := 0
					for p := 0; p < parts; p++ {
						end := len(recs)
						if p < parts-1 {
							end = start + rnd.Intn(len(recs)-start+1)
						}
						if end > start {
							partials = append(partials, fold(acc, l, recs[start:end]))
						}
						start = end
					}
					dst := l.NewRegion()
					dst.CopyFrom(partials[0])
					for _, src := range partials[1:] {
						acc.MergePartial(dst, src)
					}
					if f, ok := want.(float64); ok {
						assert.InDelta(t, f, acc.Extract(dst), 1e-9)
						continue
					}
					assert.Equal(t, want, acc.Extract(dst))
				}
			})
		}
	}
}

func TestMergeExample(t *testing.T) {
	acc, l := compile(t, Sum, types.Int64)
	a := fold(acc, l, records(int64(1), int64(2)))
	b := fold(acc, l, records(int64(3)))
	acc.MergePartial(a, b)
	assert.Equal(t, int64(6), acc.Extract(a))

	// merging an all-null partial changes nothing
	n := fold(acc, l, nil)
	acc.MergePartial(a, n)
	assert.Equal(t, int64(6), acc.Extract(a))
	acc.MergePartial(n, a)
	assert.Equal(t, int64(6), acc.Extract(n))
}
