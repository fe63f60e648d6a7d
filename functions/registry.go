package functions

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/rulego/groupby/types"
)

// Op 聚合操作名称
type Op string

const (
	Min       Op = "min"
	Max       Op = "max"
	Sum       Op = "sum"
	Count     Op = "count"
	CountRows Op = "count_rows"
	Avg       Op = "avg"
	First     Op = "first"
	Last      Op = "last"
)

// 为了方便使用，提供字符串常量版本
const (
	MinStr       = string(Min)
	MaxStr       = string(Max)
	SumStr       = string(Sum)
	CountStr     = string(Count)
	CountRowsStr = string(CountRows)
	AvgStr       = string(Avg)
	FirstStr     = string(First)
	LastStr      = string(Last)
)

// Constructor builds an unregistered accumulator reading input column col.
type Constructor func(col int) Accumulator

// Spec is one requested aggregate output as handed over by the plan compiler.
type Spec struct {
	Op     Op
	Type   types.ColumnType
	Column int
	// Alias names the output column; defaults to op(column).
	Alias string
	// Ident is the variable name expressions use for the output. Defaults to
	// Alias when it is an identifier, else op_column.
	Ident string
}

// Identifier returns the variable name of the output in expressions.
func (s Spec) Identifier() string {
	switch {
	case s.Ident != "":
		return s.Ident
	case IsIdentifier(s.Alias):
		return s.Alias
	case s.Op == CountRows:
		return CountRowsStr
	default:
		return fmt.Sprintf("%s_%d", s.Op, s.Column)
	}
}

var reservedWords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "matches": true,
	"contains": true, "startsWith": true, "endsWith": true, "let": true,
	"nil": true, "true": true, "false": true,
}

// IsIdentifier reports whether name can be read as an expression variable.
func IsIdentifier(name string) bool {
	if name == "" || reservedWords[name] {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// ToIdentifier replaces every character of name that cannot appear in an
// identifier with '_'.
func ToIdentifier(name string) string {
	out := []rune(name)
	for i, r := range out {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			out[i] = '_'
		}
	}
	if len(out) == 0 || unicode.IsDigit(out[0]) {
		out = append([]rune{'_'}, out...)
	}
	return string(out)
}

func (s Spec) OutputName() string {
	if s.Alias != "" {
		return s.Alias
	}
	if s.Op == CountRows {
		return "count(*)"
	}
	return fmt.Sprintf("%s(%d)", s.Op, s.Column)
}

type registryKey struct {
	op  Op
	typ types.ColumnType
}

// AccumulatorRegistry maps (operation, input type) pairs to constructors.
type AccumulatorRegistry struct {
	mu    sync.RWMutex
	ctors map[registryKey]Constructor
}

// 全局注册器实例
var globalRegistry = NewAccumulatorRegistry()

func NewAccumulatorRegistry() *AccumulatorRegistry {
	return &AccumulatorRegistry{ctors: make(map[registryKey]Constructor)}
}

// Register adds a constructor. count_rows ignores the type and is registered
// with types.Unknown.
func (r *AccumulatorRegistry) Register(op Op, typ types.ColumnType, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{op: Op(strings.ToLower(string(op))), typ: typ}
	if _, exists := r.ctors[key]; exists {
		return errors.Newf("accumulator %s(%s) already registered", op, typ)
	}
	r.ctors[key] = ctor
	return nil
}

// Unregister removes a constructor, reporting whether it existed.
func (r *AccumulatorRegistry) Unregister(op Op, typ types.ColumnType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{op: Op(strings.ToLower(string(op))), typ: typ}
	if _, exists := r.ctors[key]; !exists {
		return false
	}
	delete(r.ctors, key)
	return true
}

// New builds the accumulator for op over a column of type typ.
func (r *AccumulatorRegistry) New(op Op, typ types.ColumnType, col int) (Accumulator, error) {
	op = Op(strings.ToLower(string(op)))
	if op == CountRows {
		typ = types.Unknown
	}
	r.mu.RLock()
	ctor, exists := r.ctors[registryKey{op: op, typ: typ}]
	r.mu.RUnlock()
	if !exists {
		return nil, errors.Newf("unsupported aggregate %s(%s)", op, typ)
	}
	return ctor(col), nil
}

// List returns the registered signatures as "op(type)", sorted.
func (r *AccumulatorRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		if k.op == CountRows {
			out = append(out, "count_rows(*)")
			continue
		}
		out = append(out, fmt.Sprintf("%s(%s)", k.op, k.typ))
	}
	sort.Strings(out)
	return out
}

// 全局注册和获取方法
func Register(op Op, typ types.ColumnType, ctor Constructor) error {
	return globalRegistry.Register(op, typ, ctor)
}

func Unregister(op Op, typ types.ColumnType) bool {
	return globalRegistry.Unregister(op, typ)
}

func New(op Op, typ types.ColumnType, col int) (Accumulator, error) {
	return globalRegistry.New(op, typ, col)
}

// NewFromSpec builds the accumulator described by s.
func NewFromSpec(s Spec) (Accumulator, error) {
	return globalRegistry.New(s.Op, s.Type, s.Column)
}

func List() []string {
	return globalRegistry.List()
}

// registerOrdered registers the operations every fixed-width type supports.
func registerOrdered[T int8 | int16 | int32 | int64 | float32 | float64](k kind[T]) {
	mustRegister(Min, k.typ, func(col int) Accumulator { return newMinMax(k, false, col) })
	mustRegister(Max, k.typ, func(col int) Accumulator { return newMinMax(k, true, col) })
	mustRegister(Count, k.typ, func(col int) Accumulator { return newCount(k, col) })
	mustRegister(First, k.typ, func(col int) Accumulator { return newFirstLast(k, false, col) })
	mustRegister(Last, k.typ, func(col int) Accumulator { return newFirstLast(k, true, col) })
}

func registerNumeric[T int8 | int16 | int32 | int64 | float32 | float64](k kind[T], sum, avg Constructor) {
	registerOrdered(k)
	mustRegister(Sum, k.typ, sum)
	mustRegister(Avg, k.typ, avg)
}

func mustRegister(op Op, typ types.ColumnType, ctor Constructor) {
	if err := Register(op, typ, ctor); err != nil {
		panic(err)
	}
}

func init() {
	registerNumeric(int8Kind,
		func(col int) Accumulator { return newSumInt(int8Kind, col) },
		func(col int) Accumulator { return newAvg(int8Kind, col) })
	registerNumeric(int16Kind,
		func(col int) Accumulator { return newSumInt(int16Kind, col) },
		func(col int) Accumulator { return newAvg(int16Kind, col) })
	registerNumeric(int32Kind,
		func(col int) Accumulator { return newSumInt(int32Kind, col) },
		func(col int) Accumulator { return newAvg(int32Kind, col) })
	registerNumeric(int64Kind, newSumInt64, newAvgInt64)
	registerNumeric(float32Kind,
		func(col int) Accumulator { return newSumFloat(float32Kind, col) },
		func(col int) Accumulator { return newAvg(float32Kind, col) })
	registerNumeric(float64Kind,
		func(col int) Accumulator { return newSumFloat(float64Kind, col) },
		func(col int) Accumulator { return newAvg(float64Kind, col) })

	// dates and timestamps are ordered but not summable
	registerOrdered(dateKind)
	registerOrdered(timestampKind)

	mustRegister(CountRows, types.Unknown, func(int) Accumulator { return newCountRows() })
}
