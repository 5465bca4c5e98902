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

type LampData struct {
	On     bool   `json:"on"`
	Status Status `json:"status"`
	Label  string `json:"label"`
}

// Lamp is an annunciator light with an optional label below it.
type Lamp struct{}

func (Lamp) Name() string                  { return "Lamp" }
func (Lamp) MaxChildren() int              { return 0 }
func (Lamp) DefaultData() (LampData, bool) { return LampData{}, true }

func (Lamp) Init(*component.Context, *LampData, []component.ControlGeometry) struct{} {
	return struct{}{}
}

func (Lamp) Geometry(_ *struct{}, d *LampData) component.ControlGeometry {
	if d.Label == "" {
		return component.Fixed(1)
	}
	return component.Fixed(0.75)
}

func (Lamp) Draw(ctx *component.Context, zone vector.Zone, _ []component.ChildDrawer, _ *struct{}, d *LampData) {
	cv := ctx.Canvas()
	lamp := zone
	if d.Label != "" {
		z := zone.ConstraintToAspect(0.75)
		lamp = z.SliceY(0, 0.75)
		cv.Text(d.Label, z.SliceY(0.75, 1), Caption)
	}
	lamp = lamp.ConstraintToAspect(1)
	r := lamp.Size.X / 2 * 0.85
	if r <= 0 {
		return
	}
	fill := StatusBackground(d.Status)
	if d.On {
		fill = StatusColor(d.Status)
	}
	cv.FillCircle(lamp.Center, r, fill)
	cv.StrokeCircle(lamp.Center, r, vector.Stroke{Color: SoftFront, Width: r / 8})
}
