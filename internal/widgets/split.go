/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgets

import (
	"encoding/json"
	"fmt"

	"panelforge/internal/component"
	"panelforge/internal/vector"
)

// Direction is the axis a Split lays its children along.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch Direction(s) {
	case Horizontal, Vertical:
		*d = Direction(s)
		return nil
	}
	return fmt.Errorf("direction must be %q or %q, got %q", Horizontal, Vertical, s)
}

type SplitData struct {
	Spacing   float32   `json:"spacing"`
	Direction Direction `json:"direction"`
}

// splitState holds per-child weights: each child's realised aspect along
// the primary axis (width/height for horizontal splits, height/width for
// vertical ones). aspect is the whole split's preferred aspect, 0 if not
// known yet.
type splitState struct {
	weights []float32
	aspect  float32
}

// Split lays children side by side (or stacked) and sizes each slot by
// the child's realised aspect from the previous frame.
type Split struct{}

func (Split) Name() string     { return "Split" }
func (Split) MaxChildren() int { return component.Unbounded }
func (Split) DefaultData() (SplitData, bool) {
	return SplitData{Spacing: DefaultSpacing, Direction: Horizontal}, true
}

// Init seeds the weights when every child announced an aspect.
func (Split) Init(_ *component.Context, d *SplitData, children []component.ControlGeometry) splitState {
	st := splitState{}
	if len(children) == 0 {
		return st
	}
	w := make([]float32, len(children))
	for i, g := range children {
		if !g.HasAspect {
			return st
		}
		w[i] = d.ratio(g.Aspect)
	}
	st.weights = w
	st.aspect = d.aspectOf(sum(w))
	return st
}

func (Split) Draw(ctx *component.Context, zone vector.Zone, children []component.ChildDrawer, st *splitState, d *SplitData) {
	n := len(children)
	if n == 0 {
		return
	}
	if len(st.weights) != n {
		st.weights = make([]float32, n)
		for i := range st.weights {
			st.weights[i] = 1
		}
		st.aspect = 0
	}
	if st.aspect > 0 && zone.HasArea() {
		zone = zone.ConstraintToAspect(sqrt32(zone.Aspect() * st.aspect))
	}

	unit := d.primary(zone.Size) / sum(st.weights)
	cursor := d.start(zone)
	next := make([]float32, n)
	for i, child := range children {
		span := st.weights[i] * unit
		drawn := drawSpaced(ctx, child, d.slot(zone, cursor, span), d.Spacing)
		w := d.ratio(drawn.Aspect())
		if drawn.IsEmpty() || w <= 0 || !finite(w) {
			w = st.weights[i]
		}
		next[i] = w
		cursor += span
	}
	st.weights = next
	st.aspect = d.aspectOf(sum(next))
}

func (Split) Geometry(st *splitState, d *SplitData) component.ControlGeometry {
	if st.aspect <= 0 {
		return component.Free()
	}
	return component.Fixed(st.aspect)
}

func (d *SplitData) vertical() bool { return d.Direction == Vertical }

// ratio converts an aspect to primary/secondary.
func (d *SplitData) ratio(aspect float32) float32 {
	if !d.vertical() {
		return aspect
	}
	if aspect == 0 {
		return 0
	}
	return 1 / aspect
}

// aspectOf converts a summed primary/secondary ratio back to an aspect.
func (d *SplitData) aspectOf(total float32) float32 { return d.ratio(total) }

func (d *SplitData) primary(v vector.Vec2) float32 {
	if d.vertical() {
		return v.Y
	}
	return v.X
}

func (d *SplitData) start(z vector.Zone) float32 {
	if d.vertical() {
		return z.Top()
	}
	return z.Left()
}

func (d *SplitData) slot(z vector.Zone, from, span float32) vector.Zone {
	if d.vertical() {
		return vector.FromRect(vector.V(z.Left(), from), vector.V(z.Right(), from+span))
	}
	return vector.FromRect(vector.V(from, z.Top()), vector.V(from+span, z.Bottom()))
}

func sum(w []float32) float32 {
	var s float32
	for _, v := range w {
		s += v
	}
	return s
}
