package functions

import (
	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

// sum adds non-null inputs of type T into a wider accumulator of type A. The
// accumulator slot is null until the first non-null value arrives.
type sum[T, A any] struct {
	baseAccumulator
	in    kind[T]
	acc   kind[A]
	widen func(T) A
	add   func(A, A) A
	out   func(A) any
	off   int
}

func (s *sum[T, A]) Register(r *region.Registry) (err error) {
	s.off, err = r.RegisterSlot(s.acc.typ)
	return err
}

func (s *sum[T, A]) SeedFirst(rg region.Region, rec types.Record) {
	v := s.in.read(rec, s.col)
	if s.in.nullable(v) {
		s.acc.store(rg, s.off, s.acc.null)
		return
	}
	s.acc.store(rg, s.off, s.widen(v))
}

func (s *sum[T, A]) FoldNext(rg region.Region, rec types.Record) {
	v := s.in.read(rec, s.col)
	if s.in.nullable(v) {
		return
	}
	s.fold(rg, s.widen(v))
}

func (s *sum[T, A]) SeedNull(rg region.Region) {
	s.acc.store(rg, s.off, s.acc.null)
}

func (s *sum[T, A]) MergePartial(dst, src region.Region) {
	v := s.acc.load(src, s.off)
	if s.acc.nullable(v) {
		return
	}
	s.fold(dst, v)
}

func (s *sum[T, A]) fold(rg region.Region, v A) {
	cur := s.acc.load(rg, s.off)
	if s.acc.nullable(cur) {
		s.acc.store(rg, s.off, v)
		return
	}
	s.acc.store(rg, s.off, s.add(cur, v))
}

func (s *sum[T, A]) Extract(rg region.Region) any {
	v := s.acc.load(rg, s.off)
	if s.acc.nullable(v) {
		return nil
	}
	return s.out(v)
}

func newSum[T, A any](in kind[T], acc kind[A], out types.ColumnType, col int,
	widen func(T) A, add func(A, A) A, extract func(A) any) *sum[T, A] {
	return &sum[T, A]{
		baseAccumulator: baseAccumulator{name: SumStr, col: col, in: in.typ, out: out},
		in:              in,
		acc:             acc,
		widen:           widen,
		add:             add,
		out:             extract,
	}
}

func addInt64(a, b int64) int64                  { return a + b }
func addFloat64(a, b float64) float64            { return a + b }
func boxInt64(v int64) any                       { return v }
func boxFloat64(v float64) any                   { return v }
func addInt128(a, b region.Int128) region.Int128 { return a.Add(b) }

// boxInt128 returns an int64 when the total fits, a float64 otherwise.
func boxInt128(v region.Int128) any {
	if n, ok := v.Int64(); ok {
		return n
	}
	return v.Float64()
}

// newSumInt promotes narrow integers to an int64 accumulator.
func newSumInt[T int8 | int16 | int32](in kind[T], col int) Accumulator {
	return newSum(in, int64Kind, types.Int64, col,
		func(v T) int64 { return int64(v) }, addInt64, boxInt64)
}

// newSumInt64 promotes int64 to a 128-bit accumulator.
func newSumInt64(col int) Accumulator {
	return newSum(int64Kind, int128Kind, types.Int64, col,
		region.Int128From, addInt128, boxInt128)
}

func newSumFloat[T float32 | float64](in kind[T], col int) Accumulator {
	return newSum(in, float64Kind, types.Float64, col,
		func(v T) float64 { return float64(v) }, addFloat64, boxFloat64)
}
