/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package component

import (
	"fmt"

	"panelforge/internal/vector"
)

type node struct {
	tag      string
	name     string
	inst     instance
	children []NodeID
	parent   NodeID // -1 for roots and detached nodes
	drawn    vector.Zone
}

// View owns every node of one scene. Nodes live in a flat arena and refer
// to their children by id; the whole arena is dropped with the View.
// Layers are ordered lists of roots drawn one after the other, layer 0 is
// the document.
type View struct {
	m      *Manager
	nodes  []node
	layers [][]NodeID
}

// NewView returns an empty view for programmatic construction.
func (m *Manager) NewView() *View { return &View{m: m} }

func (v *View) add(tag, name string, inst instance, kids []NodeID) NodeID {
	id := NodeID(len(v.nodes))
	for _, k := range kids {
		v.nodes[k].parent = id
	}
	v.nodes = append(v.nodes, node{tag: tag, name: name, inst: inst, children: kids, parent: -1})
	return id
}

func (v *View) geometries(ids []NodeID) []ControlGeometry {
	out := make([]ControlGeometry, len(ids))
	for i, id := range ids {
		out[i] = v.nodes[id].inst.geometry()
	}
	return out
}

func (v *View) valid(id NodeID) bool { return id >= 0 && int(id) < len(v.nodes) }

// Instantiate creates a node from code. data may be the component's public
// data value (or a pointer to it), raw JSON, or nil for the defaults.
// Children must exist and must not have a parent yet.
func (v *View) Instantiate(ctx *Context, tag, name string, data any, children ...NodeID) (NodeID, error) {
	f, ok := v.m.factories[tag]
	if !ok {
		return 0, fmt.Errorf("instantiate: %w %q", ErrUnknownType, tag)
	}
	if limit := f.maxChildren(); limit != Unbounded && len(children) > limit {
		return 0, fmt.Errorf("instantiate %s: %w: allows %d, got %d", tag, ErrTooManyChildren, limit, len(children))
	}
	for _, c := range children {
		if !v.valid(c) {
			return 0, fmt.Errorf("instantiate %s: %w: %d", tag, ErrNoNode, c)
		}
		if v.nodes[c].parent >= 0 || v.isRoot(c) {
			return 0, fmt.Errorf("instantiate %s: %w: %d", tag, ErrHasParent, c)
		}
	}
	inst, err := f.fromValue(ctx, data, v.geometries(children))
	if err != nil {
		return 0, fmt.Errorf("instantiate %s: %w", tag, err)
	}
	return v.add(tag, name, inst, append([]NodeID(nil), children...)), nil
}

func (v *View) isRoot(id NodeID) bool {
	for _, l := range v.layers {
		for _, r := range l {
			if r == id {
				return true
			}
		}
	}
	return false
}

// PushLayer appends a layer drawn above all existing ones and returns its
// index.
func (v *View) PushLayer(roots ...NodeID) (int, error) {
	for _, r := range roots {
		if !v.valid(r) {
			return 0, fmt.Errorf("push layer: %w: %d", ErrNoNode, r)
		}
	}
	v.layers = append(v.layers, append([]NodeID(nil), roots...))
	return len(v.layers) - 1, nil
}

// RemoveLayer drops layer i. Higher layers move down by one.
func (v *View) RemoveLayer(i int) error {
	if i < 0 || i >= len(v.layers) {
		return fmt.Errorf("remove layer %d: %w", i, ErrNoLayer)
	}
	v.layers = append(v.layers[:i], v.layers[i+1:]...)
	return nil
}

func (v *View) Layers() int { return len(v.layers) }

// Layer returns a copy of the roots of layer i.
func (v *View) Layer(i int) []NodeID {
	if i < 0 || i >= len(v.layers) {
		return nil
	}
	return append([]NodeID(nil), v.layers[i]...)
}

// Root is the first root of layer 0, -1 for an empty view.
func (v *View) Root() NodeID {
	if len(v.layers) == 0 || len(v.layers[0]) == 0 {
		return -1
	}
	return v.layers[0][0]
}

func (v *View) Len() int { return len(v.nodes) }

func (v *View) Type(id NodeID) string {
	if !v.valid(id) {
		return ""
	}
	return v.nodes[id].tag
}

func (v *View) Name(id NodeID) string {
	if !v.valid(id) {
		return ""
	}
	return v.nodes[id].name
}

func (v *View) Children(id NodeID) []NodeID {
	if !v.valid(id) {
		return nil
	}
	return append([]NodeID(nil), v.nodes[id].children...)
}

// Drawn is the zone the node covered in the last frame. Empty before the
// first draw.
func (v *View) Drawn(id NodeID) vector.Zone {
	if !v.valid(id) {
		return vector.Zone{}
	}
	return v.nodes[id].drawn
}

// Geometry is the node's current preference towards its parent.
func (v *View) Geometry(id NodeID) ControlGeometry {
	if !v.valid(id) {
		return Free()
	}
	return v.nodes[id].inst.geometry()
}

// Data returns a copy of the node's public data.
func (v *View) Data(id NodeID) any {
	if !v.valid(id) {
		return nil
	}
	return v.nodes[id].inst.public()
}

// DataOf returns the node's public data as P.
func DataOf[P any](v *View, id NodeID) (P, bool) {
	p, ok := v.Data(id).(P)
	return p, ok
}

// FindByName returns the first node in arena order carrying name.
func (v *View) FindByName(name string) (NodeID, bool) {
	for i := range v.nodes {
		if v.nodes[i].name == name {
			return NodeID(i), true
		}
	}
	return -1, false
}

// Walk visits every node reachable from the layers depth first, parents
// before children. fn returning false skips the node's subtree.
func (v *View) Walk(fn func(id NodeID, depth int) bool) {
	var rec func(id NodeID, depth int)
	rec = func(id NodeID, depth int) {
		if !fn(id, depth) {
			return
		}
		for _, c := range v.nodes[id].children {
			rec(c, depth+1)
		}
	}
	for _, l := range v.layers {
		for _, r := range l {
			rec(r, 0)
		}
	}
}
