package functions

import (
	"golang.org/x/exp/constraints"

	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

// minMax keeps the smallest or largest non-null value seen. Ties keep the
// stored value. A group whose first row is null starts out null and takes
// the first non-null value folded into it.
type minMax[T constraints.Ordered] struct {
	baseAccumulator
	k   kind[T]
	max bool
	off int
}

func newMinMax[T constraints.Ordered](k kind[T], max bool, col int) *minMax[T] {
	name := MinStr
	if max {
		name = MaxStr
	}
	return &minMax[T]{
		baseAccumulator: baseAccumulator{name: name, col: col, in: k.typ, out: k.typ},
		k:               k,
		max:             max,
	}
}

func (m *minMax[T]) Register(r *region.Registry) (err error) {
	m.off, err = r.RegisterSlot(m.k.typ)
	return err
}

func (m *minMax[T]) SeedFirst(rg region.Region, rec types.Record) {
	m.k.store(rg, m.off, m.k.read(rec, m.col))
}

func (m *minMax[T]) FoldNext(rg region.Region, rec types.Record) {
	m.fold(rg, m.k.read(rec, m.col))
}

func (m *minMax[T]) SeedNull(rg region.Region) {
	m.k.store(rg, m.off, m.k.null)
}

func (m *minMax[T]) MergePartial(dst, src region.Region) {
	m.fold(dst, m.k.load(src, m.off))
}

func (m *minMax[T]) fold(rg region.Region, v T) {
	if m.k.nullable(v) {
		return
	}
	cur := m.k.load(rg, m.off)
	if m.k.nullable(cur) || (m.max && v > cur) || (!m.max && v < cur) {
		m.k.store(rg, m.off, v)
	}
}

func (m *minMax[T]) Extract(rg region.Region) any {
	v := m.k.load(rg, m.off)
	if m.k.nullable(v) {
		return nil
	}
	return v
}
