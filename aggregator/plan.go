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
	"github.com/cockroachdb/errors"

	"github.com/rulego/groupby/functions"
	"github.com/rulego/groupby/region"
	"github.com/rulego/groupby/types"
)

// Plan is a compiled aggregation: key columns, accumulators and the frozen
// region layout they share. A plan is immutable and may be executed any
// number of times, concurrently.
type Plan struct {
	keys     []KeyColumn
	keyTypes []types.ColumnType
	accs     []functions.Accumulator
	names    []string
	idents   []string
	layout   *region.Layout
	cfg      types.Config
}

// Compile builds the accumulators of specs, registers their slots in spec
// order and freezes the layout. Compiling the same inputs twice yields
// identical layouts.
func Compile(keys []KeyColumn, specs []functions.Spec, cfg types.Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Plan{
		keys:     append([]KeyColumn(nil), keys...),
		keyTypes: make([]types.ColumnType, len(keys)),
		cfg:      cfg,
	}
	seen := make(map[string]struct{}, len(keys)+len(specs))
	for i, k := range keys {
		if err := validateKey(k); err != nil {
			return nil, err
		}
		p.keyTypes[i] = k.Type
		name := k.Name
		if name == "" {
			name = k.Type.String()
		}
		seen[name] = struct{}{}
	}

	idents := make(map[string]struct{}, len(keys)+len(specs))
	for _, k := range keys {
		idents[k.Name] = struct{}{}
	}
	reg := region.NewRegistry()
	for _, s := range specs {
		acc, err := functions.NewFromSpec(s)
		if err != nil {
			return nil, err
		}
		if err := acc.Register(reg); err != nil {
			return nil, errors.Wrapf(err, "register %s", s.OutputName())
		}
		name := s.OutputName()
		if _, dup := seen[name]; dup {
			return nil, errors.Newf("duplicate output column %q", name)
		}
		seen[name] = struct{}{}
		ident := s.Identifier()
		if !functions.IsIdentifier(ident) {
			return nil, errors.Newf("%s: %q is not an identifier", name, ident)
		}
		if _, dup := idents[ident]; dup {
			return nil, errors.Newf("duplicate expression name %q", ident)
		}
		idents[ident] = struct{}{}
		p.accs = append(p.accs, acc)
		p.names = append(p.names, name)
		p.idents = append(p.idents, ident)
	}
	p.layout = reg.Freeze(cfg.CheckedOffsets)
	return p, nil
}

func validateKey(k KeyColumn) error {
	if k.Column < 0 {
		return errors.Newf("key column %q has negative ordinal %d", k.Name, k.Column)
	}
	switch k.Type {
	case types.Unknown, types.Int128:
		return errors.Newf("key column %q: %s cannot be a group key", k.Name, k.Type)
	}
	return nil
}

func (p *Plan) Keys() []KeyColumn {
	return p.keys
}

func (p *Plan) KeyTypes() []types.ColumnType {
	return p.keyTypes
}

func (p *Plan) Accumulators() []functions.Accumulator {
	return p.accs
}

func (p *Plan) Layout() *region.Layout {
	return p.layout
}

func (p *Plan) Config() types.Config {
	return p.cfg
}

// OutputNames returns the key column names followed by the aggregate names.
func (p *Plan) OutputNames() []string {
	out := make([]string, 0, len(p.keys)+len(p.names))
	for _, k := range p.keys {
		out = append(out, k.Name)
	}
	return append(out, p.names...)
}

// Commutative reports whether every accumulator tolerates merging partials
// in any order.
func (p *Plan) Commutative() bool {
	for _, a := range p.accs {
		if !a.Commutative() {
			return false
		}
	}
	return true
}

// NewTable creates an empty group table for this plan.
func (p *Plan) NewTable() *GroupTable {
	return NewGroupTable(p.layout, p.keys, p.cfg)
}

// Accumulate folds one row into table.
func (p *Plan) Accumulate(t *GroupTable, rec types.Record) error {
	rg, isNew, err := t.ProbeRecord(rec)
	if err != nil {
		return err
	}
	if isNew {
		for _, a := range p.accs {
			a.SeedFirst(rg, rec)
		}
		return nil
	}
	for _, a := range p.accs {
		a.FoldNext(rg, rec)
	}
	return nil
}

// seedEmpty gives a keyless aggregation over zero rows its single group,
// seeded to the null state.
func (p *Plan) seedEmpty(t *GroupTable) error {
	if len(p.keys) != 0 || t.Len() != 0 {
		return nil
	}
	rg, _, err := t.probe(hashKey(nil), nil)
	if err != nil {
		return err
	}
	for _, a := range p.accs {
		a.SeedNull(rg)
	}
	return nil
}

// mergeRegion folds src into dst for the same key.
func (p *Plan) mergeRegion(dst, src region.Region) {
	for _, a := range p.accs {
		a.MergePartial(dst, src)
	}
}
