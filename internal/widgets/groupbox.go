/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgets

import (
	"panelforge/internal/component"
	"panelforge/internal/textlayout"
	"panelforge/internal/vector"
)

type GroupingBoxData struct {
	Spacing float32 `json:"spacing"`
	Title   string  `json:"title"`
	// TitleSize is a fraction of the box height, or pixels when
	// TitleAbsolute is set.
	TitleSize     float32      `json:"title_size"`
	TitleAbsolute bool         `json:"title_absolute"`
	Color         vector.Color `json:"color"`
	LineWidth     float32      `json:"line_width"`
}

// groupingBoxState is the child's aspect as drawn last frame, 0 before
// the first frame.
type groupingBoxState struct {
	childAspect float32
}

// GroupingBox frames a single child under a title strip.
type GroupingBox struct{}

func (GroupingBox) Name() string     { return "GroupingBox" }
func (GroupingBox) MaxChildren() int { return 1 }
func (GroupingBox) DefaultData() (GroupingBoxData, bool) {
	return GroupingBoxData{
		Spacing:   DefaultSpacing,
		Title:     "GroupingBox",
		TitleSize: 0.2,
		Color:     SoftFront,
		LineWidth: 3,
	}, true
}

func (GroupingBox) Init(_ *component.Context, _ *GroupingBoxData, children []component.ControlGeometry) groupingBoxState {
	if len(children) == 1 && children[0].HasAspect {
		return groupingBoxState{childAspect: children[0].Aspect}
	}
	return groupingBoxState{}
}

// boxAspect is the aspect of a box whose child area has aspect child,
// given the box height.
func (d *GroupingBoxData) boxAspect(child, height float32) float32 {
	if d.TitleAbsolute {
		if height <= d.TitleSize || height <= 0 {
			return child
		}
		return child * (height - d.TitleSize) / height
	}
	return child * (1 - clamp01(d.TitleSize))
}

func (d *GroupingBoxData) titleHeight(height float32) float32 {
	if d.TitleAbsolute {
		return min(max(d.TitleSize, 0), height)
	}
	return height * clamp01(d.TitleSize)
}

func (GroupingBox) Draw(ctx *component.Context, zone vector.Zone, children []component.ChildDrawer, st *groupingBoxState, d *GroupingBoxData) {
	if st.childAspect > 0 && zone.HasArea() {
		want := d.boxAspect(st.childAspect, zone.Size.Y)
		zone = zone.ConstraintToAspect(sqrt32(want * zone.Aspect()))
	}
	th := d.titleHeight(zone.Size.Y)
	titleZone := vector.FromRect(zone.TopLeft(), vector.V(zone.Right(), zone.Top()+th))
	childZone := vector.FromRect(vector.V(zone.Left(), zone.Top()+th), zone.BottomRight())

	cv := ctx.Canvas()
	stroke := vector.Stroke{Color: d.Color, Width: d.LineWidth}
	midY := titleZone.Center.Y
	gap := float32(0)
	if d.Title != "" {
		cv.Text(d.Title, titleZone, d.Color)
		b := textlayout.MeasureBlock(ctx.Text, textlayout.FontSpec{}, d.Title)
		size := b.FitSize(titleZone.Size.X, titleZone.Size.Y)
		gap = b.Width * size / textlayout.RefSize / 2 * 1.2
	}
	cx := zone.Center.X
	pts := []vector.Vec2{
		vector.V(max(cx-gap, zone.Left()), midY),
		vector.V(zone.Left(), midY),
		zone.BottomLeft(),
		zone.BottomRight(),
		vector.V(zone.Right(), midY),
		vector.V(min(cx+gap, zone.Right()), midY),
	}
	for i := 1; i < len(pts); i++ {
		cv.Line(pts[i-1], pts[i], stroke)
	}

	if len(children) == 1 {
		drawn := drawSpaced(ctx, children[0], childZone, d.Spacing)
		if a := drawn.Aspect(); !drawn.IsEmpty() && a > 0 && finite(a) {
			st.childAspect = a
		}
	}
}

func (GroupingBox) Geometry(st *groupingBoxState, d *GroupingBoxData) component.ControlGeometry {
	if st.childAspect <= 0 || d.TitleAbsolute {
		return component.Free()
	}
	return component.Fixed(d.boxAspect(st.childAspect, 0))
}

func clamp01(v float32) float32 { return min(max(v, 0), 1) }
