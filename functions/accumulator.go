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

package functions

import (
	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

// Accumulator is the per-(operation, type) policy of one aggregate output. It
// owns no state of its own: after Register it only remembers the offsets of
// its slots, so a single instance is shared read-only by every group and
// every worker.
type Accumulator interface {
	// Name is the operation name, e.g. "min".
	Name() string
	// Column is the input column ordinal, -1 for count_rows.
	Column() int
	InputType() types.ColumnType
	ResultType() types.ColumnType

	// Register claims the accumulator's slots. It is called exactly once,
	// during plan compilation, before the registry is frozen.
	Register(r *region.Registry) error

	// SeedFirst initializes the slots from the first row of a new group.
	SeedFirst(rg region.Region, rec types.Record)
	// FoldNext combines a later row of the same group into the slots.
	FoldNext(rg region.Region, rec types.Record)
	// SeedNull initializes the slots to the empty-group state.
	SeedNull(rg region.Region)
	// MergePartial folds src, built by another worker for the same key, into dst.
	MergePartial(dst, src region.Region)
	// Extract reads the final value. It never modifies the region. A nil
	// result is SQL null.
	Extract(rg region.Region) any

	// Commutative reports whether partials may be merged in any order.
	Commutative() bool
}

type baseAccumulator struct {
	name string
	col  int
	in   types.ColumnType
	out  types.ColumnType
}

func (b *baseAccumulator) Name() string                 { return b.name }
func (b *baseAccumulator) Column() int                  { return b.col }
func (b *baseAccumulator) InputType() types.ColumnType  { return b.in }
func (b *baseAccumulator) ResultType() types.ColumnType { return b.out }
func (b *baseAccumulator) Commutative() bool            { return true }
