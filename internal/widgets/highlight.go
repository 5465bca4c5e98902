/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgets

import (
	"fmt"
	"math"

	"panelforge/internal/component"
	"panelforge/internal/vector"
)

type HighlightData struct {
	Target component.NodeID `json:"target"`
	Color  vector.Color     `json:"color"`
	Width  float32          `json:"width"`
}

const (
	dashLen   float32 = 8
	dashGap   float32 = 6
	dashSpeed float32 = 24 // px per second
)

// Highlight outlines another node's last drawn zone with crawling dashes.
// It ignores the zone it is offered.
type Highlight struct{}

func (Highlight) Name() string     { return "Highlight" }
func (Highlight) MaxChildren() int { return 0 }
func (Highlight) DefaultData() (HighlightData, bool) {
	return HighlightData{Target: -1, Color: SelectionColor, Width: 2}, true
}

func (Highlight) Init(*component.Context, *HighlightData, []component.ControlGeometry) struct{} {
	return struct{}{}
}

func (Highlight) Draw(ctx *component.Context, _ vector.Zone, _ []component.ChildDrawer, _ *struct{}, d *HighlightData) {
	v := ctx.View()
	if v == nil {
		return
	}
	z := v.Drawn(d.Target)
	if !z.HasArea() {
		return
	}
	z = z.Shrink(-d.Width)
	s := vector.Stroke{Color: d.Color, Width: d.Width}
	phase := float32(math.Mod(ctx.Elapsed.Seconds()*float64(dashSpeed), float64(dashLen+dashGap)))
	cv := ctx.Canvas()
	corners := []vector.Vec2{z.TopLeft(), z.TopRight(), z.BottomRight(), z.BottomLeft(), z.TopLeft()}
	for i := 0; i+1 < len(corners); i++ {
		phase = dashed(cv, corners[i], corners[i+1], phase, s)
	}
}

// dashed strokes a-b as dashes starting phase pixels into the pattern and
// returns the phase at b so corners continue the pattern.
func dashed(cv vector.Canvas, a, b vector.Vec2, phase float32, s vector.Stroke) float32 {
	period := dashLen + dashGap
	length := b.Sub(a).Len()
	if length == 0 {
		return phase
	}
	dir := b.Sub(a).Mul(1 / length)
	for t := -phase; t < length; t += period {
		from, to := max(t, 0), min(t+dashLen, length)
		if to > from {
			cv.Line(a.Add(dir.Mul(from)), a.Add(dir.Mul(to)), s)
		}
	}
	return float32(math.Mod(float64(phase+length), float64(period)))
}

// Selection is an overlay layer highlighting one node.
type Selection struct {
	view *component.View
	node component.NodeID
}

// Select pushes a layer above the view outlining target.
func Select(ctx *component.Context, v *component.View, target component.NodeID) (Selection, error) {
	if target < 0 || int(target) >= v.Len() {
		return Selection{}, fmt.Errorf("select %d: %w", target, component.ErrNoNode)
	}
	data, _ := Highlight{}.DefaultData()
	data.Target = target
	id, err := v.Instantiate(ctx, "Highlight", "", data)
	if err != nil {
		return Selection{}, fmt.Errorf("select %d: %w", target, err)
	}
	if _, err := v.PushLayer(id); err != nil {
		return Selection{}, fmt.Errorf("select %d: %w", target, err)
	}
	return Selection{view: v, node: id}, nil
}

// Target is the selected node.
func (s Selection) Target() component.NodeID {
	if d, ok := component.DataOf[HighlightData](s.view, s.node); ok {
		return d.Target
	}
	return -1
}

// Clear removes the overlay. Clearing twice is a no-op.
func (s Selection) Clear() error {
	if s.view == nil {
		return nil
	}
	for i := s.view.Layers() - 1; i > 0; i-- {
		for _, r := range s.view.Layer(i) {
			if r == s.node {
				return s.view.RemoveLayer(i)
			}
		}
	}
	return nil
}
