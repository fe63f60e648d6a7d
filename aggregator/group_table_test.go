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
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

func int64Layout(t *testing.T) (*region.Layout, int) {
	t.Helper()
	reg := region.NewRegistry()
	off, err := reg.RegisterSlot(types.Int64)
	require.NoError(t, err)
	return reg.Freeze(true), off
}

var stringKey = []KeyColumn{{Name: "k", Column: 0, Type: types.String}}

func TestGroupTable_Probe(t *testing.T) {
	layout, off := int64Layout(t)
	tbl := NewGroupTable(layout, stringKey, types.DefaultConfig())
	kt := tbl.KeyTypes()

	rg, isNew, err := tbl.Probe(mustKey(t, kt, "a"))
	require.NoError(t, err)
	assert.True(t, isNew)
	rg.PutInt64(off, 41)

	rg2, isNew, err := tbl.Probe(mustKey(t, kt, "a"))
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, int64(41), rg2.GetInt64(off))
	assert.Equal(t, 1, tbl.Len())

	_, ok := tbl.Find(mustKey(t, kt, "b"))
	assert.False(t, ok)
	found, ok := tbl.Find(mustKey(t, kt, "a"))
	assert.True(t, ok)
	assert.Equal(t, int64(41), found.GetInt64(off))
}

func TestGroupTable_GrowthKeepsRegions(t *testing.T) {
	layout, off := int64Layout(t)
	cfg := types.DefaultConfig()
	cfg.InitialCapacity = 1
	tbl := NewGroupTable(layout, stringKey, cfg)
	kt := tbl.KeyTypes()

	const n = 5000
	regions := make([]region.Region, n)
	for i := 0; i < n; i++ {
		rg, isNew, err := tbl.Probe(mustKey(t, kt, fmt.Sprintf("key-%d", i)))
		require.NoError(t, err)
		require.True(t, isNew)
		rg.PutInt64(off, int64(i))
		regions[i] = rg
	}
	assert.Equal(t, n, tbl.Len())

	// regions handed out before growth still address the live state
	for i := 0; i < n; i++ {
		rg, isNew, err := tbl.Probe(mustKey(t, kt, fmt.Sprintf("key-%d", i)))
		require.NoError(t, err)
		require.False(t, isNew)
		rg.PutInt64(off, rg.GetInt64(off)+1)
		assert.Equal(t, int64(i+1), regions[i].GetInt64(off))
	}

	var seen int
	tbl.Each(func(key GroupKey, rg region.Region) bool {
		assert.Equal(t, fmt.Sprintf("key-%d", seen), key.Values()[0])
		seen++
		return true
	})
	assert.Equal(t, n, seen)
}

func TestGroupTable_MaxGroups(t *testing.T) {
	layout, _ := int64Layout(t)
	cfg := types.DefaultConfig()
	cfg.MaxGroups = 2
	tbl := NewGroupTable(layout, stringKey, cfg)
	kt := tbl.KeyTypes()

	for _, k := range []string{"a", "b", "a"} {
		_, _, err := tbl.Probe(mustKey(t, kt, k))
		require.NoError(t, err)
	}
	_, _, err := tbl.Probe(mustKey(t, kt, "c"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrResourceExhausted))

	var re *types.ResourceExhaustedError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "groups", re.Resource)
	assert.Equal(t, 2, tbl.Len())
}

func TestGroupTable_MaxMemory(t *testing.T) {
	layout, _ := int64Layout(t)
	cfg := types.DefaultConfig()
	cfg.InitialCapacity = 0
	cfg.MaxMemoryBytes = 1024
	tbl := NewGroupTable(layout, stringKey, cfg)
	kt := tbl.KeyTypes()

	var err error
	for i := 0; i < 1000 && err == nil; i++ {
		_, _, err = tbl.Probe(mustKey(t, kt, fmt.Sprintf("key-%d", i)))
	}
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrResourceExhausted))
	assert.LessOrEqual(t, tbl.MemoryUsage(), int64(1024))
}

func TestGroupTable_Clear(t *testing.T) {
	layout, _ := int64Layout(t)
	tbl := NewGroupTable(layout, stringKey, types.DefaultConfig())
	kt := tbl.KeyTypes()
	for i := 0; i < 100; i++ {
		_, _, err := tbl.Probe(mustKey(t, kt, i))
		require.NoError(t, err)
	}
	assert.Positive(t, tbl.MemoryUsage())

	tbl.Clear()
	assert.Zero(t, tbl.Len())
	_, ok := tbl.Find(mustKey(t, kt, 1))
	assert.False(t, ok)

	_, isNew, err := tbl.Probe(mustKey(t, kt, 1))
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestArena(t *testing.T) {
	var a arena
	b1 := a.alloc(10)
	b2 := a.alloc(arenaChunkSize)
	b3 := a.alloc(3)
	assert.Len(t, b1, 10)
	assert.Len(t, b2, arenaChunkSize)
	assert.Equal(t, 3, cap(b3))
	assert.Equal(t, int64(arenaChunkSize+13), a.used)

	b1[9] = 1
	b3[0] = 2
	assert.Equal(t, byte(1), b1[9])
	a.reset()
	assert.Zero(t, a.used)
}
