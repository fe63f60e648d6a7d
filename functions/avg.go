package functions

import (
	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

// avg keeps a sum slot of type A and an int64 count slot. Narrow integers
// and floats sum into float64; int64 sums into an Int128 slot so large
// inputs stay exact until the final division. An empty or all-null group
// extracts as null.
type avg[T, A any] struct {
	baseAccumulator
	in       kind[T]
	acc      kind[A]
	zero     A
	widen    func(T) A
	add      func(A, A) A
	toFloat  func(A) float64
	sumOff   int
	countOff int
}

func newAvg[T int8 | int16 | int32 | float32 | float64](k kind[T], col int) Accumulator {
	return &avg[T, float64]{
		baseAccumulator: baseAccumulator{name: AvgStr, col: col, in: k.typ, out: types.Float64},
		in:              k,
		acc:             float64Kind,
		widen:           func(v T) float64 { return float64(v) },
		add:             addFloat64,
		toFloat:         func(v float64) float64 { return v },
	}
}

func newAvgInt64(col int) Accumulator {
	return &avg[int64, region.Int128]{
		baseAccumulator: baseAccumulator{name: AvgStr, col: col, in: types.Int64, out: types.Float64},
		in:              int64Kind,
		acc:             int128Kind,
		zero:            region.Int128From(0),
		widen:           region.Int128From,
		add:             addInt128,
		toFloat:         region.Int128.Float64,
	}
}

func (a *avg[T, A]) Register(r *region.Registry) (err error) {
	if a.sumOff, err = r.RegisterSlot(a.acc.typ); err != nil {
		return err
	}
	a.countOff, err = r.RegisterSlot(types.Int64)
	return err
}

func (a *avg[T, A]) SeedFirst(rg region.Region, rec types.Record) {
	a.SeedNull(rg)
	a.FoldNext(rg, rec)
}

func (a *avg[T, A]) FoldNext(rg region.Region, rec types.Record) {
	v := a.in.read(rec, a.col)
	if a.in.nullable(v) {
		return
	}
	a.acc.store(rg, a.sumOff, a.add(a.acc.load(rg, a.sumOff), a.widen(v)))
	rg.PutInt64(a.countOff, rg.GetInt64(a.countOff)+1)
}

func (a *avg[T, A]) SeedNull(rg region.Region) {
	a.acc.store(rg, a.sumOff, a.zero)
	rg.PutInt64(a.countOff, 0)
}

func (a *avg[T, A]) MergePartial(dst, src region.Region) {
	a.acc.store(dst, a.sumOff, a.add(a.acc.load(dst, a.sumOff), a.acc.load(src, a.sumOff)))
	dst.PutInt64(a.countOff, dst.GetInt64(a.countOff)+src.GetInt64(a.countOff))
}

func (a *avg[T, A]) Extract(rg region.Region) any {
	n := rg.GetInt64(a.countOff)
	if n == 0 {
		return nil
	}
	return a.toFloat(a.acc.load(rg, a.sumOff)) / float64(n)
}
