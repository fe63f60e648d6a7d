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

package dataset

import (
	"github.com/cockroachdb/errors"

	"github.com/rulego/groupby/types"
)

// Column describes one table column.
type Column struct {
	Name string
	Type types.ColumnType
}

// Schema is an ordered list of uniquely named columns.
type Schema struct {
	columns []Column
	index   map[string]int
}

// NewSchema validates columns and builds a schema.
func NewSchema(columns ...Column) (*Schema, error) {
	s := &Schema{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if err := s.add(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error.
func MustSchema(columns ...Column) *Schema {
	s, err := NewSchema(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) add(c Column) error {
	if c.Name == "" {
		return errors.New("column name must not be empty")
	}
	if _, dup := s.index[c.Name]; dup {
		return errors.Newf("duplicate column %q", c.Name)
	}
	switch c.Type {
	case types.Unknown, types.Int128:
		return errors.Newf("column %q: unsupported type %s", c.Name, c.Type)
	}
	s.index[c.Name] = len(s.columns)
	s.columns = append(s.columns, c)
	return nil
}

func (s *Schema) Len() int {
	return len(s.columns)
}

func (s *Schema) Columns() []Column {
	return s.columns
}

func (s *Schema) Column(i int) Column {
	return s.columns[i]
}

// Index returns the ordinal of the named column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}
