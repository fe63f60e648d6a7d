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

package condition

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Condition is a compiled row predicate.
type Condition interface {
	Evaluate(env map[string]any) (bool, error)
}

// ExprCondition evaluates an expr-lang boolean expression against a row's
// named values.
type ExprCondition struct {
	source  string
	program *vm.Program
}

// Options returns the expr-lang options shared by row predicates and derived
// columns: SQL-style helpers and undefined variables evaluating to nil.
func Options() []expr.Option {
	return []expr.Option{
		expr.Function("like_match", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, errors.New("like_match function requires 2 parameters")
			}
			text, ok1 := params[0].(string)
			pattern, ok2 := params[1].(string)
			if !ok1 || !ok2 {
				return false, errors.New("like_match function requires string parameters")
			}
			return Like(text, pattern), nil
		}),
		expr.Function("is_null", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, errors.New("is_null function requires 1 parameter")
			}
			return isNull(params[0]), nil
		}),
		expr.Function("is_not_null", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, errors.New("is_not_null function requires 1 parameter")
			}
			return !isNull(params[0]), nil
		}),
		expr.AllowUndefinedVariables(),
	}
}

// NewExprCondition compiles a boolean expression.
func NewExprCondition(expression string) (*ExprCondition, error) {
	program, err := expr.Compile(expression, append(Options(), expr.AsBool())...)
	if err != nil {
		return nil, errors.Wrapf(err, "compile condition %q", expression)
	}
	return &ExprCondition{source: expression, program: program}, nil
}

func (ec *ExprCondition) String() string {
	return ec.source
}

func (ec *ExprCondition) Evaluate(env map[string]any) (bool, error) {
	result, err := expr.Run(ec.program, env)
	if err != nil {
		return false, errors.Wrapf(err, "evaluate condition %q", ec.source)
	}
	b, _ := result.(bool)
	return b, nil
}

func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return x != x
	}
	return false
}

// Variables returns the environment names an expression reads, in order of
// first use. Called function names and let-bound names are not included.
func Variables(expression string) ([]string, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, errors.Wrapf(err, "parse expression %q", expression)
	}
	c := &variableCollector{
		callees: make(map[*ast.IdentifierNode]bool),
		bound:   make(map[string]bool),
	}
	ast.Walk(&tree.Node, c)

	var names []string
	seen := make(map[string]bool)
	for _, id := range c.idents {
		if c.callees[id] || c.bound[id.Value] || seen[id.Value] || id.Value == "$env" {
			continue
		}
		seen[id.Value] = true
		names = append(names, id.Value)
	}
	return names, nil
}

type variableCollector struct {
	idents  []*ast.IdentifierNode
	callees map[*ast.IdentifierNode]bool
	bound   map[string]bool
}

func (c *variableCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		c.idents = append(c.idents, n)
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.callees[id] = true
		}
	case *ast.VariableDeclaratorNode:
		c.bound[n.Name] = true
	}
}

// Like reports whether text matches a SQL LIKE pattern, where % matches any
// sequence of bytes and _ matches exactly one.
func Like(text, pattern string) bool {
	t, p := 0, 0
	// position of the last % seen, and the text index it is matched up to
	star, mark := -1, 0
	for t < len(text) {
		switch {
		case p < len(pattern) && (pattern[p] == '_' || pattern[p] == text[t]):
			t++
			p++
		case p < len(pattern) && pattern[p] == '%':
			star, mark = p, t
			p++
		case star >= 0:
			mark++
			t = mark
			p = star + 1
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '%' {
		p++
	}
	return p == len(pattern)
}
