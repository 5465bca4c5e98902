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
	"panelforge/internal/vector"
)

type ToggleData struct {
	On    bool   `json:"on"`
	Label string `json:"label"`
}

// Toggle is a two-state switch flipped by pointer presses.
type Toggle struct{}

func (Toggle) Name() string                    { return "Toggle" }
func (Toggle) MaxChildren() int                { return 0 }
func (Toggle) DefaultData() (ToggleData, bool) { return ToggleData{Label: "Toggle"}, true }

func (Toggle) Init(*component.Context, *ToggleData, []component.ControlGeometry) struct{} {
	return struct{}{}
}

func (Toggle) Geometry(*struct{}, *ToggleData) component.ControlGeometry {
	return component.Fixed(2.5)
}

func (Toggle) Draw(ctx *component.Context, zone vector.Zone, _ []component.ChildDrawer, _ *struct{}, d *ToggleData) {
	z := zone.ConstraintToAspect(2.5)
	if !z.HasArea() {
		return
	}
	cv := ctx.Canvas()
	// the whole box is clickable, not only the painted knob
	ctx.Mark(z)
	track := z.SliceX(0, 0.45).Shrink(z.Size.Y * 0.15)
	knob := track.SliceX(0, 0.5)
	back := StatusBackground(StatusOK)
	if d.On {
		knob = track.SliceX(0.5, 1)
		back = StatusColor(StatusOK)
	}
	cv.FillRect(track, back)
	cv.StrokeRect(track, vector.Stroke{Color: SoftFront, Width: 1})
	cv.FillRect(knob.Shrink(knob.Size.Y*0.1), Front)
	if d.Label != "" {
		cv.Text(d.Label, z.SliceX(0.5, 1), Caption)
	}
}

func (Toggle) HandleEvent(_ vector.Zone, ev component.Event, _ *struct{}, d *ToggleData) {
	if ev.Kind == component.PointerPress {
		d.On = !d.On
	}
}
