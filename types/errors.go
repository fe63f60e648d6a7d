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

package types

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Reference errors for errors.Is matching.
var (
	ErrSchemaFrozen      = errors.New("value region schema is frozen")
	ErrTypeMismatch      = errors.New("value region type mismatch")
	ErrResourceExhausted = errors.New("resource exhausted")
)

// SchemaFrozenError is returned when a slot is registered after the layout
// has been frozen. It always indicates a plan compiler bug.
type SchemaFrozenError struct {
	Type  ColumnType
	Slots int
}

func (e *SchemaFrozenError) Error() string {
	return fmt.Sprintf("cannot register %s slot: layout frozen with %d slots", e.Type, e.Slots)
}

func (e *SchemaFrozenError) Is(target error) bool { return target == ErrSchemaFrozen }

func NewSchemaFrozenError(t ColumnType, slots int) error {
	return errors.WithStack(&SchemaFrozenError{Type: t, Slots: slots})
}

// TypeMismatchError reports an access through the wrong typed accessor or at
// an offset that was never registered.
type TypeMismatchError struct {
	Offset int
	Want   ColumnType
	Got    ColumnType
}

func (e *TypeMismatchError) Error() string {
	if e.Got == Unknown {
		return fmt.Sprintf("no %s slot at offset %d", e.Want, e.Offset)
	}
	return fmt.Sprintf("%s access to %s slot at offset %d", e.Want, e.Got, e.Offset)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

func NewTypeMismatchError(offset int, want, got ColumnType) error {
	return errors.WithStack(&TypeMismatchError{Offset: offset, Want: want, Got: got})
}

// ResourceExhaustedError is returned when a group table cannot take another
// group. The query must fail as a whole.
type ResourceExhaustedError struct {
	Resource string
	Limit    int64
	Used     int64
}

func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("%s limit %d exceeded (in use %d)", e.Resource, e.Limit, e.Used)
}

func (e *ResourceExhaustedError) Is(target error) bool { return target == ErrResourceExhausted }

func NewResourceExhaustedError(resource string, limit, used int64) error {
	return errors.WithStack(&ResourceExhaustedError{Resource: resource, Limit: limit, Used: used})
}
