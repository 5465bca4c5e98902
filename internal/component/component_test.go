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
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	applog "panelforge/internal/log"
	"panelforge/internal/vector"
)

type boxData struct {
	Color vector.Color `json:"color"`
	Count int          `json:"count"`
	Label string       `json:"label,omitempty"`
}

type boxState struct{ draws int }

// box is a leaf that fills its zone and counts presses in its public data.
type box struct{}

func (box) Name() string     { return "Box" }
func (box) MaxChildren() int { return 0 }
func (box) DefaultData() (boxData, bool) {
	return boxData{Color: vector.RGB(255, 0, 0)}, true
}
func (box) Init(*Context, *boxData, []ControlGeometry) boxState { return boxState{} }
func (box) Draw(ctx *Context, zone vector.Zone, _ []ChildDrawer, s *boxState, d *boxData) {
	s.draws++
	ctx.Canvas().FillRect(zone.Scale(0.5), d.Color)
}
func (box) HandleEvent(_ vector.Zone, ev Event, _ *boxState, d *boxData) {
	if ev.Kind == PointerPress {
		d.Count++
	}
}
func (box) Geometry(*boxState, *boxData) ControlGeometry { return Fixed(2) }

type stackData struct {
	Shrink float32 `json:"shrink"`
}

// stack draws all children into the same zone; it remembers the child
// geometry it was initialised with.
type stack struct{ seen *[]ControlGeometry }

func (stack) Name() string                   { return "Stack" }
func (stack) MaxChildren() int               { return Unbounded }
func (stack) DefaultData() (stackData, bool) { return stackData{Shrink: 1}, true }
func (s stack) Init(_ *Context, _ *stackData, children []ControlGeometry) struct{} {
	if s.seen != nil {
		*s.seen = append([]ControlGeometry(nil), children...)
	}
	return struct{}{}
}
func (stack) Draw(_ *Context, zone vector.Zone, children []ChildDrawer, _ *struct{}, d *stackData) {
	for _, c := range children {
		c(zone.Scale(d.Shrink))
	}
}

type pair struct{ stack }

func (pair) Name() string     { return "Pair" }
func (pair) MaxChildren() int { return 2 }

type strictData struct {
	Value int `json:"value"`
}

// strict has no defaults.
type strict struct{}

func (strict) Name() string                                                 { return "Strict" }
func (strict) MaxChildren() int                                             { return 0 }
func (strict) DefaultData() (strictData, bool)                              { return strictData{}, false }
func (strict) Init(*Context, *strictData, []ControlGeometry) int            { return 0 }
func (strict) Draw(*Context, vector.Zone, []ChildDrawer, *int, *strictData) {}

type fill struct {
	zone  vector.Zone
	color vector.Color
}

type captureCanvas struct {
	vector.Nop
	fills []fill
}

func (c *captureCanvas) FillRect(z vector.Zone, col vector.Color) {
	c.fills = append(c.fills, fill{z, col})
}

func newTestManager(seen *[]ControlGeometry) *Manager {
	m := NewManager()
	Register[boxData, boxState](m, box{})
	Register[stackData, struct{}](m, stack{seen: seen})
	Register[stackData, struct{}](m, pair{stack{seen: seen}})
	Register[strictData, int](m, strict{})
	return m
}

func testContext(c vector.Canvas) *Context { return NewContext(c, nil, applog.Discard()) }

func TestBuildFailsOnUnknownType(t *testing.T) {
	m := newTestManager(nil)
	v, err := m.Build(testContext(nil), []byte(`{"type":"Stack","children":[{"type":"Nope"}]}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	if v != nil {
		t.Fatalf("expected no view on failure")
	}
	if !strings.Contains(err.Error(), "root/children[0]") {
		t.Fatalf("error should name the node path: %v", err)
	}
}

func TestBuildFailsOnTooManyChildren(t *testing.T) {
	m := newTestManager(nil)
	cases := map[string]string{
		"leaf":   `{"type":"Box","children":[{"type":"Box"}]}`,
		"pair":   `{"type":"Pair","children":[{"type":"Box"},{"type":"Box"},{"type":"Box"}]}`,
		"nested": `{"type":"Stack","children":[{"type":"Pair","children":[{"type":"Box"},{"type":"Box"},{"type":"Box"}]}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			v, err := m.Build(testContext(nil), []byte(doc))
			if !errors.Is(err, ErrTooManyChildren) || v != nil {
				t.Fatalf("Build = %v, %v; want ErrTooManyChildren", v, err)
			}
		})
	}
	v, err := m.Build(testContext(nil), []byte(`{"type":"Pair","children":[{"type":"Box"},{"type":"Box"}]}`))
	if err != nil || v.Len() != 3 {
		t.Fatalf("two children must be accepted: %v", err)
	}
}

func TestBuildDecodesOverDefaults(t *testing.T) {
	m := newTestManager(nil)
	cases := []struct {
		name string
		data string
		want boxData
	}{
		{"absent", ``, boxData{Color: vector.RGB(255, 0, 0)}},
		{"partial", `{"count":3}`, boxData{Color: vector.RGB(255, 0, 0), Count: 3}},
		{"malformed field", `{"count":"three","label":"ok"}`, boxData{Color: vector.RGB(255, 0, 0), Label: "ok"}},
		{"malformed colour", `{"color":17,"count":2}`, boxData{Color: vector.RGB(255, 0, 0), Count: 2}},
		{"not an object", `[1,2]`, boxData{Color: vector.RGB(255, 0, 0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := `{"type":"Box"}`
			if tc.data != "" {
				doc = `{"type":"Box","data":` + tc.data + `}`
			}
			v, err := m.Build(testContext(nil), []byte(doc))
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			got, ok := DataOf[boxData](v, v.Root())
			if !ok || got != tc.want {
				t.Fatalf("data = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBuildWithoutDefaultsNeedsData(t *testing.T) {
	m := newTestManager(nil)
	for _, doc := range []string{`{"type":"Strict"}`, `{"type":"Strict","data":{"value":"x"}}`} {
		if _, err := m.Build(testContext(nil), []byte(doc)); !errors.Is(err, ErrNoData) {
			t.Fatalf("%s: err = %v, want ErrNoData", doc, err)
		}
	}
	// the failure propagates through the parent
	if _, err := m.Build(testContext(nil), []byte(`{"type":"Stack","children":[{"type":"Strict"}]}`)); !errors.Is(err, ErrNoData) {
		t.Fatalf("parent build should fail with ErrNoData, got %v", err)
	}
	v, err := m.Build(testContext(nil), []byte(`{"type":"Strict","data":{"value":4}}`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if d, _ := DataOf[strictData](v, v.Root()); d.Value != 4 {
		t.Fatalf("value = %d, want 4", d.Value)
	}
}

func TestInitReceivesChildGeometry(t *testing.T) {
	var seen []ControlGeometry
	m := newTestManager(&seen)
	if _, err := m.Build(testContext(nil), []byte(`{"type":"Stack","children":[{"type":"Box"},{"type":"Stack"}]}`)); err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []ControlGeometry{Fixed(2), Free()}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("child geometry = %+v, want %+v", seen, want)
	}
}

func TestParseDocumentEnvelope(t *testing.T) {
	bare, err := ParseDocument([]byte(`{"type":"Box","name":"a"}`))
	if err != nil || bare.Type != "Box" || bare.Name != "a" {
		t.Fatalf("bare = %+v, %v", bare, err)
	}
	env, err := ParseDocument([]byte(`{"version":1,"root":{"type":"Stack","children":[{"type":"Box"}]}}`))
	if err != nil || env.Type != "Stack" || len(env.Children) != 1 {
		t.Fatalf("envelope = %+v, %v", env, err)
	}
	if _, err := ParseDocument([]byte(`{"version":2,"root":{"type":"Box"}}`)); err == nil {
		t.Fatalf("expected error for unsupported version")
	}
	if _, err := ParseDocument([]byte(`{"type":`)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	m := newTestManager(nil)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	Register[boxData, boxState](m, box{})
}

func TestDrawRecordsZonesAndAppliesHooks(t *testing.T) {
	m := newTestManager(nil)
	doc := `{"type":"Stack","name":"root","children":[
		{"type":"Box","name":"a"},
		{"type":"Box","name":"b","data":{"color":"#00ff00"}}
	]}`
	c := &captureCanvas{}
	ctx := testContext(c)
	v, err := m.Build(ctx, []byte(doc))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	zone := vector.Z(100, 100, 200, 100)
	total := v.Draw(ctx, zone, Hooks{"a": {"color": "#0000ff"}, "b": {"color": 5}})

	want := zone.Scale(0.5)
	for _, id := range []NodeID{0, 1, 2} {
		if v.Drawn(id) != want {
			t.Fatalf("node %d drawn = %+v, want %+v", id, v.Drawn(id), want)
		}
	}
	if total != want {
		t.Fatalf("total = %+v, want %+v", total, want)
	}
	if len(c.fills) != 2 {
		t.Fatalf("fills = %d, want 2", len(c.fills))
	}
	if c.fills[0].color != vector.RGB(0, 0, 255) {
		t.Fatalf("hooked colour = %v, want blue", c.fills[0].color)
	}
	if c.fills[1].color != vector.RGB(0, 255, 0) {
		t.Fatalf("bad hook must fall back to stored colour, got %v", c.fills[1].color)
	}
	a, _ := v.FindByName("a")
	if d, _ := DataOf[boxData](v, a); d.Color != vector.RGB(255, 0, 0) {
		t.Fatalf("hooks must not be stored on the node: %v", d.Color)
	}
	if ctx.Frame != 1 {
		t.Fatalf("frame = %d, want 1", ctx.Frame)
	}
}

func TestMarkGrowsDrawnZone(t *testing.T) {
	m := newTestManager(nil)
	ctx := testContext(nil)
	v, _ := m.Build(ctx, []byte(`{"type":"Stack","data":{"shrink":0.1}}`))
	v.Draw(ctx, vector.Z(0, 0, 10, 10), nil)
	if !v.Drawn(v.Root()).IsEmpty() {
		t.Fatalf("a container without children draws nothing: %+v", v.Drawn(v.Root()))
	}
	ctx.push()
	ctx.Mark(vector.Z(5, 5, 2, 2))
	if got := ctx.pop(); got != vector.Z(5, 5, 2, 2) {
		t.Fatalf("mark = %+v", got)
	}
}

func TestDispatchHitTest(t *testing.T) {
	m := newTestManager(nil)
	ctx := testContext(nil)
	v, err := m.Build(ctx, []byte(`{"type":"Box"}`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Box draws at half size, so offer 100x100 to cover (100,100) 50x50.
	v.Draw(ctx, vector.Z(100, 100, 100, 100), nil)
	if got := v.Drawn(v.Root()); got != vector.Z(100, 100, 50, 50) {
		t.Fatalf("drawn = %+v", got)
	}

	if n := v.Dispatch(Event{Kind: PointerPress, Pos: vector.V(120, 110)}); n != 1 {
		t.Fatalf("hits = %d, want 1", n)
	}
	if d, _ := DataOf[boxData](v, v.Root()); d.Count != 1 {
		t.Fatalf("handler ran %d times, want 1", d.Count)
	}
	if n := v.Dispatch(Event{Kind: PointerPress, Pos: vector.V(200, 200)}); n != 0 {
		t.Fatalf("hits = %d, want 0", n)
	}
	if d, _ := DataOf[boxData](v, v.Root()); d.Count != 1 {
		t.Fatalf("miss must not invoke handler, count = %d", d.Count)
	}
}

func TestDispatchBeforeDrawMatchesNothing(t *testing.T) {
	m := newTestManager(nil)
	v, _ := m.Build(testContext(nil), []byte(`{"type":"Box"}`))
	if n := v.Dispatch(Event{Kind: PointerPress, Pos: vector.V(0, 0)}); n != 0 {
		t.Fatalf("undrawn nodes must not match, hits = %d", n)
	}
}

func TestOverlappingLayersAllReceiveEvent(t *testing.T) {
	m := newTestManager(nil)
	ctx := testContext(nil)
	v, _ := m.Build(ctx, []byte(`{"type":"Box","name":"base"}`))
	over, err := v.Instantiate(ctx, "Box", "over", nil)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	layer, err := v.PushLayer(over)
	if err != nil || layer != 1 || v.Layers() != 2 {
		t.Fatalf("push layer = %d, %v", layer, err)
	}
	v.Draw(ctx, vector.Z(0, 0, 10, 10), nil)
	if n := v.Dispatch(Event{Kind: PointerPress, Pos: vector.V(1, 1)}); n != 2 {
		t.Fatalf("hits = %d, want 2", n)
	}
	if ids := v.HitTest(vector.V(1, 1)); len(ids) != 2 || ids[0] != v.Root() || ids[1] != over {
		t.Fatalf("hit test = %v", ids)
	}
	if err := v.RemoveLayer(1); err != nil {
		t.Fatalf("remove layer: %v", err)
	}
	if err := v.RemoveLayer(1); !errors.Is(err, ErrNoLayer) {
		t.Fatalf("err = %v, want ErrNoLayer", err)
	}
	if n := v.Dispatch(Event{Kind: PointerPress, Pos: vector.V(1, 1)}); n != 1 {
		t.Fatalf("hits after removing overlay = %d, want 1", n)
	}
}

func TestInstantiateProgrammatically(t *testing.T) {
	m := newTestManager(nil)
	ctx := testContext(nil)
	v := m.NewView()
	a, err := v.Instantiate(ctx, "Box", "a", boxData{Count: 7})
	if err != nil {
		t.Fatalf("instantiate a: %v", err)
	}
	b, _ := v.Instantiate(ctx, "Box", "b", []byte(`{"label":"x"}`))
	c, _ := v.Instantiate(ctx, "Box", "c", nil)
	if _, err := v.Instantiate(ctx, "Pair", "", nil, a, b, c); !errors.Is(err, ErrTooManyChildren) {
		t.Fatalf("err = %v, want ErrTooManyChildren", err)
	}
	p, err := v.Instantiate(ctx, "Pair", "p", nil, a, b)
	if err != nil {
		t.Fatalf("instantiate pair: %v", err)
	}
	if _, err := v.Instantiate(ctx, "Stack", "", nil, a); !errors.Is(err, ErrHasParent) {
		t.Fatalf("err = %v, want ErrHasParent", err)
	}
	if _, err := v.Instantiate(ctx, "Stack", "", nil, NodeID(99)); !errors.Is(err, ErrNoNode) {
		t.Fatalf("err = %v, want ErrNoNode", err)
	}
	if _, err := v.Instantiate(ctx, "Box", "", 3.5); !errors.Is(err, ErrDataType) {
		t.Fatalf("err = %v, want ErrDataType", err)
	}
	if _, err := v.PushLayer(p); err != nil {
		t.Fatalf("push: %v", err)
	}
	if v.Root() != p || !reflect.DeepEqual(v.Children(p), []NodeID{a, b}) {
		t.Fatalf("unexpected tree: root=%d children=%v", v.Root(), v.Children(p))
	}
	if d, _ := DataOf[boxData](v, a); d.Count != 7 || d.Color != (vector.Color{}) {
		t.Fatalf("explicit data should be used as given: %+v", d)
	}
	if d, _ := DataOf[boxData](v, b); d.Label != "x" || d.Color != vector.RGB(255, 0, 0) {
		t.Fatalf("json data should decode over defaults: %+v", d)
	}

	var order []string
	v.Walk(func(id NodeID, depth int) bool {
		order = append(order, strings.Repeat(" ", depth)+v.Name(id))
		return true
	})
	if strings.Join(order, ",") != "p, a, b" {
		t.Fatalf("walk order = %q", order)
	}
}

func TestHookMergeFailureLoggedOnce(t *testing.T) {
	var logs bytes.Buffer
	ctx := NewContext(&captureCanvas{}, nil, slog.New(slog.NewJSONHandler(&logs, nil)))
	v, err := newTestManager(nil).Build(ctx, []byte(`{"type":"Box","name":"b"}`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	zone := vector.Z(50, 50, 100, 100)
	bad := Hooks{"b": {"count": "nine"}}
	for i := 0; i < 5; i++ {
		v.Draw(ctx, zone, bad)
	}
	if n := strings.Count(logs.String(), "hook merge failed"); n != 1 {
		t.Fatalf("warnings after 5 bad frames = %d, want 1", n)
	}
	v.Draw(ctx, zone, Hooks{"b": {"count": 2}})
	if !strings.Contains(logs.String(), "hook merge recovered") {
		t.Fatalf("recovery not logged:\n%s", logs.String())
	}
	v.Draw(ctx, zone, bad)
	if n := strings.Count(logs.String(), "hook merge failed"); n != 2 {
		t.Fatalf("warnings after failing again = %d, want 2", n)
	}
}

func TestJoinHooks(t *testing.T) {
	in := boxData{Color: vector.RGB(1, 2, 3), Count: 4, Label: "l"}

	out, err := JoinHooks(in, nil)
	if err != nil || out != in {
		t.Fatalf("nil hooks = %+v, %v", out, err)
	}
	out, err = JoinHooks(in, map[string]any{})
	if err != nil || out != in {
		t.Fatalf("empty hooks = %+v, %v", out, err)
	}

	out, err = JoinHooks(in, map[string]any{"count": 9, "color": "#ffffff"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if out.Count != 9 || out.Color != vector.White || out.Label != "l" {
		t.Fatalf("patched = %+v", out)
	}
	if in.Count != 4 {
		t.Fatalf("input must not change")
	}

	out, err = JoinHooks(in, map[string]any{"count": 7, "speed": 3})
	if err != nil || out.Count != 7 {
		t.Fatalf("unknown field must not block the others: %+v, %v", out, err)
	}

	for name, props := range map[string]map[string]any{
		"wrong type":     {"count": "nine"},
		"bad colour":     {"color": true},
		"unmarshallable": {"label": func() {}},
	} {
		t.Run(name, func(t *testing.T) {
			out, err := JoinHooks(in, props)
			if err == nil {
				t.Fatalf("expected error")
			}
			if out != in {
				t.Fatalf("failed merge must return the input, got %+v", out)
			}
		})
	}
}

func TestHooksSetAndMerge(t *testing.T) {
	h := Hooks{}
	h.Set("speed", "value", 12.5)
	h.Set("speed", "unit", "kt")
	h.Merge(Hooks{"speed": {"value": 20}, "alt": {"value": 3}})
	want := Hooks{"speed": {"value": 20, "unit": "kt"}, "alt": {"value": 3}}
	if !reflect.DeepEqual(h, want) {
		t.Fatalf("hooks = %v, want %v", h, want)
	}
}
