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

/*
Package condition compiles row predicates with the expr-lang library.

Predicates are boolean expressions over a row's named column values. Besides
the expr-lang operators, SQL-style helpers are available:

	like_match(text, pattern) - SQL LIKE with % and _ wildcards
	is_null(value)            - true for nil and NaN
	is_not_null(value)        - negation of is_null

Example:

	cond, err := NewExprCondition("region == 'eu' && like_match(host, 'web-%')")
	if err != nil {
		return err
	}
	ok, err := cond.Evaluate(map[string]any{"region": "eu", "host": "web-1"})

Columns that are missing from the environment evaluate to nil.
*/
package condition
