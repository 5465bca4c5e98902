/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"panelforge/internal/vector"
)

// instance is one node's typed payload behind a uniform interface.
type instance interface {
	draw(ctx *Context, zone vector.Zone, children []ChildDrawer, props map[string]any)
	handle(drawn vector.Zone, ev Event) bool
	geometry() ControlGeometry
	public() any
}

// factory creates instances for one type tag.
type factory interface {
	maxChildren() int
	fromJSON(ctx *Context, raw json.RawMessage, children []ControlGeometry) (instance, error)
	fromValue(ctx *Context, data any, children []ControlGeometry) (instance, error)
}

type typed[P, I any] struct {
	comp  Component[P, I]
	data  P
	state I
	// hookErr is the last hook merge failure, logged once until it changes.
	hookErr string
}

func (t *typed[P, I]) draw(ctx *Context, zone vector.Zone, children []ChildDrawer, props map[string]any) {
	if len(props) == 0 {
		t.hookErr = ""
		t.comp.Draw(ctx, zone, children, &t.state, &t.data)
		return
	}
	// hooks apply to this frame only, the stored data stays untouched
	data, err := JoinHooks(t.data, props)
	switch {
	case err != nil && err.Error() != t.hookErr:
		t.hookErr = err.Error()
		ctx.Log.Warn("hook merge failed, drawing unpatched data",
			slog.String("type", t.comp.Name()), slog.Any("err", err))
	case err == nil && t.hookErr != "":
		t.hookErr = ""
		ctx.Log.Info("hook merge recovered", slog.String("type", t.comp.Name()))
	}
	t.comp.Draw(ctx, zone, children, &t.state, &data)
}

func (t *typed[P, I]) handle(drawn vector.Zone, ev Event) bool {
	h, ok := t.comp.(EventHandler[P, I])
	if !ok {
		return false
	}
	h.HandleEvent(drawn, ev, &t.state, &t.data)
	return true
}

func (t *typed[P, I]) geometry() ControlGeometry {
	if g, ok := t.comp.(GeometryReporter[P, I]); ok {
		return g.Geometry(&t.state, &t.data)
	}
	return Free()
}

func (t *typed[P, I]) public() any { return t.data }

type typedFactory[P, I any] struct{ comp Component[P, I] }

func (f typedFactory[P, I]) maxChildren() int { return f.comp.MaxChildren() }

func (f typedFactory[P, I]) fromJSON(ctx *Context, raw json.RawMessage, children []ControlGeometry) (instance, error) {
	data, err := decodeData(ctx.Log, f.comp, raw)
	if err != nil {
		return nil, err
	}
	return f.init(ctx, data, children), nil
}

func (f typedFactory[P, I]) fromValue(ctx *Context, data any, children []ControlGeometry) (instance, error) {
	switch v := data.(type) {
	case nil:
		return f.fromJSON(ctx, nil, children)
	case P:
		return f.init(ctx, v, children), nil
	case *P:
		return f.init(ctx, *v, children), nil
	case json.RawMessage:
		return f.fromJSON(ctx, v, children)
	case []byte:
		return f.fromJSON(ctx, v, children)
	}
	return nil, fmt.Errorf("%w: %s got %T", ErrDataType, f.comp.Name(), data)
}

func (f typedFactory[P, I]) init(ctx *Context, data P, children []ControlGeometry) instance {
	t := &typed[P, I]{comp: f.comp, data: data}
	t.state = f.comp.Init(ctx, &t.data, children)
	return t
}

// decodeData decodes raw over a copy of the defaults so absent fields keep
// their default values. When the object does not decode as a whole, every
// field is tried on its own and the malformed ones are dropped.
func decodeData[P, I any](l *slog.Logger, c Component[P, I], raw json.RawMessage) (P, error) {
	def, hasDef := c.DefaultData()
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if !hasDef {
			var zero P
			return zero, fmt.Errorf("%w: %s", ErrNoData, c.Name())
		}
		return def, nil
	}

	out := cloneData(def)
	err := json.Unmarshal(raw, &out)
	if err == nil {
		return out, nil
	}
	if !hasDef {
		var zero P
		return zero, fmt.Errorf("%w: %s: %v", ErrNoData, c.Name(), err)
	}

	var fields map[string]json.RawMessage
	if jerr := json.Unmarshal(raw, &fields); jerr != nil {
		l.Warn("data is not an object, using defaults", slog.String("type", c.Name()), slog.Any("err", err))
		return def, nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cur := def
	var dropped []string
	for _, k := range keys {
		one, _ := json.Marshal(map[string]json.RawMessage{k: fields[k]})
		// a failed decode may already have written into next's slices
		next := cloneData(cur)
		if ferr := json.Unmarshal(one, &next); ferr != nil {
			dropped = append(dropped, k)
			continue
		}
		cur = next
	}
	l.Warn("malformed fields replaced by defaults",
		slog.String("type", c.Name()), slog.Any("fields", dropped), slog.Any("err", err))
	return cur, nil
}

// cloneData deep-copies v through JSON so decoding into the copy never
// touches slices or maps still shared with v.
func cloneData[P any](v P) P {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out P
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// Manager maps type tags to component factories.
type Manager struct {
	factories map[string]factory
}

func NewManager() *Manager { return &Manager{factories: make(map[string]factory)} }

// Register adds a component under its Name. Registering an empty or
// duplicate name is a programming error and panics.
func Register[P, I any](m *Manager, c Component[P, I]) {
	name := c.Name()
	if name == "" {
		panic("component: empty type name")
	}
	if _, dup := m.factories[name]; dup {
		panic(fmt.Sprintf("component: type %q registered twice", name))
	}
	m.factories[name] = typedFactory[P, I]{comp: c}
}

// Types lists registered tags in sorted order.
func (m *Manager) Types() []string {
	out := make([]string, 0, len(m.factories))
	for k := range m.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) Has(tag string) bool {
	_, ok := m.factories[tag]
	return ok
}

// Node is one entry of a scene document.
type Node struct {
	Type     string          `json:"type"`
	Name     string          `json:"name,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Children []Node          `json:"children,omitempty"`
}

// Document is the versioned envelope of a scene. A bare Node is accepted
// as well.
type Document struct {
	Version int  `json:"version"`
	Root    Node `json:"root"`
}

// ParseDocument accepts either a Document or a bare root Node.
func ParseDocument(b []byte) (Node, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return Node{}, fmt.Errorf("parse scene: %w", err)
	}
	if _, ok := probe["root"]; ok {
		var d Document
		if err := json.Unmarshal(b, &d); err != nil {
			return Node{}, fmt.Errorf("parse scene: %w", err)
		}
		if d.Version > 1 {
			return Node{}, fmt.Errorf("parse scene: unsupported version %d", d.Version)
		}
		return d.Root, nil
	}
	var n Node
	if err := json.Unmarshal(b, &n); err != nil {
		return Node{}, fmt.Errorf("parse scene: %w", err)
	}
	return n, nil
}

// Build parses doc and instantiates the whole tree. Any construction error
// aborts the build; no partial view is returned.
func (m *Manager) Build(ctx *Context, doc []byte) (*View, error) {
	root, err := ParseDocument(doc)
	if err != nil {
		return nil, err
	}
	return m.BuildNode(ctx, root)
}

// BuildNode instantiates an already parsed tree.
func (m *Manager) BuildNode(ctx *Context, root Node) (*View, error) {
	if root.Type == "" {
		return nil, errors.New("build: scene has no root type")
	}
	v := m.NewView()
	id, err := v.build(ctx, &root, "root")
	if err != nil {
		return nil, err
	}
	v.layers = [][]NodeID{{id}}
	return v, nil
}

func (v *View) build(ctx *Context, n *Node, path string) (NodeID, error) {
	f, ok := v.m.factories[n.Type]
	if !ok {
		return 0, fmt.Errorf("%s: %w %q", path, ErrUnknownType, n.Type)
	}
	if limit := f.maxChildren(); limit != Unbounded && len(n.Children) > limit {
		return 0, fmt.Errorf("%s: %w: %s allows %d, got %d", path, ErrTooManyChildren, n.Type, limit, len(n.Children))
	}
	kids := make([]NodeID, len(n.Children))
	for i := range n.Children {
		id, err := v.build(ctx, &n.Children[i], fmt.Sprintf("%s/children[%d]", path, i))
		if err != nil {
			return 0, err
		}
		kids[i] = id
	}
	inst, err := f.fromJSON(ctx, n.Data, v.geometries(kids))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return v.add(n.Type, n.Name, inst, kids), nil
}
