/*
Package dataset provides an in-memory columnar table that feeds the
aggregation engine.

A Table is built from a Schema and filled with Append. Values are coerced to
the column types; nil stores the type's null. Derived columns are computed
by expr-lang expressions:

	t := dataset.NewTable(dataset.MustSchema(
		dataset.Column{Name: "host", Type: types.String},
		dataset.Column{Name: "price", Type: types.Float64},
		dataset.Column{Name: "qty", Type: types.Int32},
	))
	_ = t.AddExprColumn("total", types.Float64, "price * qty")
	_ = t.Append("web-1", 2.5, 4)

Cursor returns a single row cursor, Split partitions the rows into
contiguous cursors for parallel workers. Row ids are table indexes, so they
stay in scan order across partitions.
*/
package dataset
