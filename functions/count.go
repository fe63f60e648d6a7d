package functions

import (
	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

// count counts non-null values of a column. Its result is never null.
type count[T any] struct {
	baseAccumulator
	k   kind[T]
	off int
}

func newCount[T any](k kind[T], col int) Accumulator {
	return &count[T]{
		baseAccumulator: baseAccumulator{name: CountStr, col: col, in: k.typ, out: types.Int64},
		k:               k,
	}
}

func (c *count[T]) Register(r *region.Registry) (err error) {
	c.off, err = r.RegisterSlot(types.Int64)
	return err
}

func (c *count[T]) SeedFirst(rg region.Region, rec types.Record) {
	if c.k.nullable(c.k.read(rec, c.col)) {
		rg.PutInt64(c.off, 0)
		return
	}
	rg.PutInt64(c.off, 1)
}

func (c *count[T]) FoldNext(rg region.Region, rec types.Record) {
	if c.k.nullable(c.k.read(rec, c.col)) {
		return
	}
	rg.PutInt64(c.off, rg.GetInt64(c.off)+1)
}

func (c *count[T]) SeedNull(rg region.Region) {
	rg.PutInt64(c.off, 0)
}

func (c *count[T]) MergePartial(dst, src region.Region) {
	dst.PutInt64(c.off, dst.GetInt64(c.off)+src.GetInt64(c.off))
}

func (c *count[T]) Extract(rg region.Region) any {
	return rg.GetInt64(c.off)
}

// countRows is count(*): every row counts regardless of its values.
type countRows struct {
	baseAccumulator
	off int
}

func newCountRows() Accumulator {
	return &countRows{
		baseAccumulator: baseAccumulator{name: CountRowsStr, col: -1, in: types.Unknown, out: types.Int64},
	}
}

func (c *countRows) Register(r *region.Registry) (err error) {
	c.off, err = r.RegisterSlot(types.Int64)
	return err
}

func (c *countRows) SeedFirst(rg region.Region, _ types.Record) {
	rg.PutInt64(c.off, 1)
}

func (c *countRows) FoldNext(rg region.Region, _ types.Record) {
	rg.PutInt64(c.off, rg.GetInt64(c.off)+1)
}

func (c *countRows) SeedNull(rg region.Region) {
	rg.PutInt64(c.off, 0)
}

func (c *countRows) MergePartial(dst, src region.Region) {
	dst.PutInt64(c.off, dst.GetInt64(c.off)+src.GetInt64(c.off))
}

func (c *countRows) Extract(rg region.Region) any {
	return rg.GetInt64(c.off)
}
