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

package aggregator

import (
	"bytes"

	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

const (
	minCells = 16
	// groupOverhead approximates the bookkeeping bytes per group counted
	// against the memory limit besides key and region bytes.
	groupOverhead = 48
)

type group struct {
	hash   uint64
	key    []byte
	region region.Region
}

// GroupTable maps encoded group keys to value regions. It uses open
// addressing with linear probing over a power-of-two cell array; a cell holds
// the index of its group plus one. Keys and regions live in an arena so
// region references stay valid for the table's lifetime even as the cell
// array grows.
//
// A table is owned by a single worker and is not safe for concurrent use.
type GroupTable struct {
	layout   *region.Layout
	keys     []KeyColumn
	keyTypes []types.ColumnType

	cells  []int32
	mask   uint64
	groups []group
	arena  arena

	maxGroups int
	maxBytes  int64
	scratch   []byte
}

// NewGroupTable creates an empty table for the given layout and key columns.
// Capacity and limits come from cfg.
func NewGroupTable(layout *region.Layout, keys []KeyColumn, cfg types.Config) *GroupTable {
	t := &GroupTable{
		layout:    layout,
		keys:      keys,
		keyTypes:  make([]types.ColumnType, len(keys)),
		maxGroups: cfg.MaxGroups,
		maxBytes:  cfg.MaxMemoryBytes,
	}
	for i, k := range keys {
		t.keyTypes[i] = k.Type
	}
	t.init(cfg.InitialCapacity)
	return t
}

func (t *GroupTable) init(capacity int) {
	n := minCells
	for n*3 < capacity*4 {
		n <<= 1
	}
	t.cells = make([]int32, n)
	t.mask = uint64(n - 1)
	t.groups = make([]group, 0, capacity)
}

func (t *GroupTable) Layout() *region.Layout {
	return t.layout
}

func (t *GroupTable) KeyTypes() []types.ColumnType {
	return t.keyTypes
}

// Len is the number of groups.
func (t *GroupTable) Len() int {
	return len(t.groups)
}

// MemoryUsage approximates the bytes held by keys, regions and cells.
func (t *GroupTable) MemoryUsage() int64 {
	return t.arena.used + int64(len(t.groups))*groupOverhead + int64(len(t.cells))*4
}

// Probe returns the region of key, creating a zeroed one if the key is new.
// When wasNew is true the caller must seed every accumulator.
func (t *GroupTable) Probe(key GroupKey) (rg region.Region, wasNew bool, err error) {
	return t.probe(key.Hash(), key.data)
}

// ProbeRecord is Probe for the key columns of rec.
func (t *GroupTable) ProbeRecord(rec types.Record) (rg region.Region, wasNew bool, err error) {
	t.scratch = appendRecordKey(t.scratch[:0], rec, t.keys)
	return t.probe(hashKey(t.scratch), t.scratch)
}

// Find looks a key up without inserting it.
func (t *GroupTable) Find(key GroupKey) (region.Region, bool) {
	h := key.Hash()
	for i := h & t.mask; ; i = (i + 1) & t.mask {
		c := t.cells[i]
		if c == 0 {
			return region.Region{}, false
		}
		g := &t.groups[c-1]
		if g.hash == h && bytes.Equal(g.key, key.data) {
			return g.region, true
		}
	}
}

// probe finds or inserts the encoded key. key is copied on insert, so callers
// may reuse its memory.
func (t *GroupTable) probe(h uint64, key []byte) (region.Region, bool, error) {
	i := h & t.mask
	for {
		c := t.cells[i]
		if c == 0 {
			break
		}
		g := &t.groups[c-1]
		if g.hash == h && bytes.Equal(g.key, key) {
			return g.region, false, nil
		}
		i = (i + 1) & t.mask
	}

	if t.maxGroups > 0 && len(t.groups) >= t.maxGroups {
		return region.Region{}, false, types.NewResourceExhaustedError("groups", int64(t.maxGroups), int64(len(t.groups)))
	}
	need := int64(len(key) + t.layout.Size() + groupOverhead)
	if t.maxBytes > 0 && t.MemoryUsage()+need > t.maxBytes {
		return region.Region{}, false, types.NewResourceExhaustedError("memory bytes", t.maxBytes, t.MemoryUsage())
	}

	g := group{hash: h, key: t.arena.alloc(len(key))}
	copy(g.key, key)
	g.region = t.layout.Bind(t.arena.alloc(t.layout.Size()))
	t.groups = append(t.groups, g)
	t.cells[i] = int32(len(t.groups))

	if len(t.groups)*4 > len(t.cells)*3 {
		t.grow()
	}
	return g.region, true, nil
}

func (t *GroupTable) grow() {
	n := len(t.cells) * 2
	t.cells = make([]int32, n)
	t.mask = uint64(n - 1)
	for idx := range t.groups {
		i := t.groups[idx].hash & t.mask
		for t.cells[i] != 0 {
			i = (i + 1) & t.mask
		}
		t.cells[i] = int32(idx + 1)
	}
}

// Each calls fn for every group in insertion order until fn returns false.
// The region must not be modified through fn unless the table is owned by
// the caller.
func (t *GroupTable) Each(fn func(key GroupKey, rg region.Region) bool) {
	for i := range t.groups {
		g := &t.groups[i]
		if !fn(GroupKey{types: t.keyTypes, data: g.key}, g.region) {
			return
		}
	}
}

// Clear releases every group and region and resets the table for reuse.
func (t *GroupTable) Clear() {
	t.arena.reset()
	t.scratch = nil
	t.init(minCells)
}
