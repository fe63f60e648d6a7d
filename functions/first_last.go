package functions

import (
	"math"

	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

// firstLast keeps the value of the row with the lowest (first) or highest
// (last) row id. The row id slot makes the result independent of fold and
// merge order as long as row ids follow the original scan order, but the
// merge coordinator still treats it as order sensitive. Null values are kept
// like any other value.
type firstLast[T any] struct {
	baseAccumulator
	k      kind[T]
	last   bool
	valOff int
	ridOff int
}

func newFirstLast[T any](k kind[T], last bool, col int) Accumulator {
	name := FirstStr
	if last {
		name = LastStr
	}
	return &firstLast[T]{
		baseAccumulator: baseAccumulator{name: name, col: col, in: k.typ, out: k.typ},
		k:               k,
		last:            last,
	}
}

func (f *firstLast[T]) Commutative() bool { return false }

func (f *firstLast[T]) Register(r *region.Registry) (err error) {
	if f.valOff, err = r.RegisterSlot(f.k.typ); err != nil {
		return err
	}
	f.ridOff, err = r.RegisterSlot(types.Int64)
	return err
}

func (f *firstLast[T]) SeedFirst(rg region.Region, rec types.Record) {
	f.k.store(rg, f.valOff, f.k.read(rec, f.col))
	rg.PutInt64(f.ridOff, rec.RowID())
}

func (f *firstLast[T]) FoldNext(rg region.Region, rec types.Record) {
	rid := rec.RowID()
	if f.replaces(rid, rg.GetInt64(f.ridOff)) {
		f.k.store(rg, f.valOff, f.k.read(rec, f.col))
		rg.PutInt64(f.ridOff, rid)
	}
}

func (f *firstLast[T]) SeedNull(rg region.Region) {
	f.k.store(rg, f.valOff, f.k.null)
	if f.last {
		rg.PutInt64(f.ridOff, math.MinInt64)
	} else {
		rg.PutInt64(f.ridOff, math.MaxInt64)
	}
}

func (f *firstLast[T]) MergePartial(dst, src region.Region) {
	rid := src.GetInt64(f.ridOff)
	if f.replaces(rid, dst.GetInt64(f.ridOff)) {
		f.k.store(dst, f.valOff, f.k.load(src, f.valOff))
		dst.PutInt64(f.ridOff, rid)
	}
}

func (f *firstLast[T]) replaces(rid, cur int64) bool {
	if f.last {
		return rid > cur
	}
	return rid < cur
}

func (f *firstLast[T]) Extract(rg region.Region) any {
	v := f.k.load(rg, f.valOff)
	if f.k.nullable(v) {
		return nil
	}
	return v
}
