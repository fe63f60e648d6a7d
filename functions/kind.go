package functions

import (
	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

// kind binds a Go primitive to its record accessor, its region accessors and
// its null sentinel. isNull is nil for types without a sentinel.
type kind[T any] struct {
	typ    types.ColumnType
	read   func(types.Record, int) T
	load   func(region.Region, int) T
	store  func(region.Region, int, T)
	isNull func(T) bool
	null   T
}

func (k kind[T]) nullable(v T) bool {
	return k.isNull != nil && k.isNull(v)
}

var (
	int8Kind = kind[int8]{
		typ:   types.Int8,
		read:  types.Record.GetInt8,
		load:  region.Region.GetInt8,
		store: region.Region.PutInt8,
	}
	int16Kind = kind[int16]{
		typ:   types.Int16,
		read:  types.Record.GetInt16,
		load:  region.Region.GetInt16,
		store: region.Region.PutInt16,
	}
	int32Kind = kind[int32]{
		typ:    types.Int32,
		read:   types.Record.GetInt32,
		load:   region.Region.GetInt32,
		store:  region.Region.PutInt32,
		isNull: types.IsNullInt32,
		null:   types.NullInt32,
	}
	int64Kind = kind[int64]{
		typ:    types.Int64,
		read:   types.Record.GetInt64,
		load:   region.Region.GetInt64,
		store:  region.Region.PutInt64,
		isNull: types.IsNullInt64,
		null:   types.NullInt64,
	}
	float32Kind = kind[float32]{
		typ:    types.Float32,
		read:   types.Record.GetFloat32,
		load:   region.Region.GetFloat32,
		store:  region.Region.PutFloat32,
		isNull: types.IsNullFloat32,
		null:   types.NullFloat32,
	}
	float64Kind = kind[float64]{
		typ:    types.Float64,
		read:   types.Record.GetFloat64,
		load:   region.Region.GetFloat64,
		store:  region.Region.PutFloat64,
		isNull: types.IsNullFloat64,
		null:   types.NullFloat64,
	}
	dateKind = kind[int64]{
		typ:    types.Date,
		read:   types.Record.GetDate,
		load:   region.Region.GetDate,
		store:  region.Region.PutDate,
		isNull: types.IsNullInt64,
		null:   types.NullDate,
	}
	timestampKind = kind[int64]{
		typ:    types.Timestamp,
		read:   types.Record.GetTimestamp,
		load:   region.Region.GetTimestamp,
		store:  region.Region.PutTimestamp,
		isNull: types.IsNullInt64,
		null:   types.NullTimestamp,
	}
	// int128Kind is slot-only.
	int128Kind = kind[region.Int128]{
		typ:    types.Int128,
		load:   region.Region.GetInt128,
		store:  region.Region.PutInt128,
		isNull: region.Int128.IsNull,
		null:   region.NullInt128,
	}
)
