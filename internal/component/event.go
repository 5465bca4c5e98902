/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package component

import "panelforge/internal/vector"

type EventKind int

const (
	PointerPress EventKind = iota
	PointerRelease
	PointerMove
)

func (k EventKind) String() string {
	switch k {
	case PointerPress:
		return "press"
	case PointerRelease:
		return "release"
	case PointerMove:
		return "move"
	}
	return "unknown"
}

// Event is a pointer event in canvas coordinates.
type Event struct {
	Kind   EventKind
	Pos    vector.Vec2
	Button int
}

// Dispatch hands ev to every node, in every layer, whose last drawn zone
// contains the pointer. Overlapping nodes all receive it. The return value
// counts matching nodes, including those without a handler.
func (v *View) Dispatch(ev Event) int {
	hits := 0
	v.Walk(func(id NodeID, _ int) bool {
		n := &v.nodes[id]
		if n.drawn.IsEmpty() || !n.drawn.Contains(ev.Pos) {
			return true
		}
		hits++
		n.inst.handle(n.drawn, ev)
		return true
	})
	return hits
}

// HitTest lists the nodes whose drawn zone contains p, parents first.
func (v *View) HitTest(p vector.Vec2) []NodeID {
	var out []NodeID
	v.Walk(func(id NodeID, _ int) bool {
		if z := v.nodes[id].drawn; !z.IsEmpty() && z.Contains(p) {
			out = append(out, id)
		}
		return true
	})
	return out
}
