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
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rulego/groupby/condition"
)

// postAggregation is an output column computed from a group's key and
// aggregate values after extraction, e.g. "sum_3 / count_rows".
type postAggregation struct {
	name    string
	source  string
	program *vm.Program
}

// AddPostAggregation appends an output column computed by an expr-lang
// expression. The expression sees the key columns by name and each
// aggregate by its expression name (see functions.Spec.Identifier).
// Earlier post-aggregation columns are visible too; any other name is an
// error.
func (r *Result) AddPostAggregation(name, expression string) error {
	for _, c := range r.Columns() {
		if c == name {
			return errors.Newf("duplicate output column %q", name)
		}
	}
	vars, err := condition.Variables(expression)
	if err != nil {
		return errors.Wrapf(err, "compile post-aggregation %q", name)
	}
	known := r.variables()
	for _, v := range vars {
		if _, ok := known[v]; !ok {
			return errors.Newf("post-aggregation %q: unknown name %q", name, v)
		}
	}
	program, err := expr.Compile(expression, condition.Options()...)
	if err != nil {
		return errors.Wrapf(err, "compile post-aggregation %q", name)
	}
	r.post = append(r.post, &postAggregation{name: name, source: expression, program: program})
	return nil
}

// variables returns the names visible to the next post-aggregation.
func (r *Result) variables() map[string]struct{} {
	known := make(map[string]struct{}, len(r.plan.keys)+len(r.plan.idents)+len(r.post))
	for _, k := range r.plan.keys {
		known[k.Name] = struct{}{}
	}
	for _, id := range r.plan.idents {
		known[id] = struct{}{}
	}
	for _, pa := range r.post {
		known[pa.name] = struct{}{}
	}
	return known
}

// evalPost appends the post-aggregation values of one group to values.
func (r *Result) evalPost(key GroupKey, values []any) []any {
	env := make(map[string]any, len(r.plan.keys)+len(values)+len(r.post))
	for i, v := range key.Values() {
		env[r.plan.keys[i].Name] = v
	}
	for i, v := range values {
		env[r.plan.idents[i]] = v
	}
	for _, pa := range r.post {
		v, err := expr.Run(pa.program, env)
		if err != nil {
			// a failing row yields null rather than aborting the scan
			v = nil
		}
		env[pa.name] = v
		values = append(values, v)
	}
	return values
}
