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

package region

import (
	"github.com/cockroachdb/errors"
	"github.com/rulego/groupby/types"
)

// Slot is one registered entry of a layout.
type Slot struct {
	Type   types.ColumnType
	Offset int
}

// Registry assigns byte offsets to accumulator slots during plan compilation.
// Slots are packed back to back in registration order, so the region size is
// exactly the sum of the slot widths. A registry is not safe for concurrent
// use; it is built by a single compiler goroutine and then frozen.
type Registry struct {
	slots  []Slot
	size   int
	layout *Layout
}

func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterSlot appends a slot of type t and returns its offset.
func (r *Registry) RegisterSlot(t types.ColumnType) (int, error) {
	if r.layout != nil {
		return 0, types.NewSchemaFrozenError(t, len(r.slots))
	}
	if !t.Fixed() {
		return 0, types.NewTypeMismatchError(r.size, t, types.Unknown)
	}
	offset := r.size
	r.slots = append(r.slots, Slot{Type: t, Offset: offset})
	r.size += t.Width()
	return offset, nil
}

// Size is the current total of registered slot widths.
func (r *Registry) Size() int {
	return r.size
}

func (r *Registry) Frozen() bool {
	return r.layout != nil
}

// Freeze ends registration and returns the immutable layout. Calling Freeze
// again returns the same layout; the checked flag of the first call wins.
func (r *Registry) Freeze(checked bool) *Layout {
	if r.layout != nil {
		return r.layout
	}
	l := &Layout{
		slots:   append([]Slot(nil), r.slots...),
		size:    r.size,
		checked: checked,
		byOff:   make([]types.ColumnType, r.size),
	}
	for _, s := range l.slots {
		l.byOff[s.Offset] = s.Type
	}
	r.layout = l
	return l
}

// Layout is a frozen registry. It is read-only and shared by every worker.
type Layout struct {
	slots   []Slot
	size    int
	checked bool
	// byOff maps a slot's first byte to its type, Unknown elsewhere.
	byOff []types.ColumnType
}

func (l *Layout) Size() int {
	return l.size
}

func (l *Layout) Checked() bool {
	return l.checked
}

// Slots returns a copy of the registered slots in offset order.
func (l *Layout) Slots() []Slot {
	return append([]Slot(nil), l.slots...)
}

// TypeAt returns the type of the slot starting at offset, or Unknown.
func (l *Layout) TypeAt(offset int) types.ColumnType {
	if offset < 0 || offset >= len(l.byOff) {
		return types.Unknown
	}
	return l.byOff[offset]
}

// Equal reports whether two layouts assign the same types to the same offsets.
func (l *Layout) Equal(o *Layout) bool {
	if l == o {
		return true
	}
	if l == nil || o == nil || l.size != o.size || len(l.slots) != len(o.slots) {
		return false
	}
	for i := range l.slots {
		if l.slots[i] != o.slots[i] {
			return false
		}
	}
	return true
}

// NewRegion allocates a zeroed region for this layout.
func (l *Layout) NewRegion() Region {
	return Region{layout: l, buf: make([]byte, l.size)}
}

// Bind wraps buf, which must be exactly Size bytes, as a region.
func (l *Layout) Bind(buf []byte) Region {
	if len(buf) != l.size {
		panic(errors.AssertionFailedf("region buffer has %d bytes, layout needs %d", len(buf), l.size))
	}
	return Region{layout: l, buf: buf}
}
