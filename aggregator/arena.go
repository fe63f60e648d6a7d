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

const arenaChunkSize = 64 << 10

// arena hands out byte slices carved from large chunks. Chunks are never
// moved or reused while the arena lives, so returned slices stay valid until
// reset.
type arena struct {
	chunks [][]byte
	cur    []byte
	used   int64
}

func (a *arena) alloc(n int) []byte {
	if n > len(a.cur) {
		size := arenaChunkSize
		if n > size {
			size = n
		}
		a.cur = make([]byte, size)
		a.chunks = append(a.chunks, a.cur)
	}
	b := a.cur[:n:n]
	a.cur = a.cur[n:]
	a.used += int64(n)
	return b
}

// reset drops every chunk.
func (a *arena) reset() {
	a.chunks = nil
	a.cur = nil
	a.used = 0
}
