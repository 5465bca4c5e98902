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

type BarData struct {
	Value  float32 `json:"value"`
	Min    float32 `json:"min"`
	Max    float32 `json:"max"`
	Status Status  `json:"status"`
	// Aspect is the width/height of the bar; tall bars fill upwards.
	Aspect float32 `json:"aspect"`
}

// Bar is a linear fill indicator.
type Bar struct{}

func (Bar) Name() string     { return "Bar" }
func (Bar) MaxChildren() int { return 0 }
func (Bar) DefaultData() (BarData, bool) {
	return BarData{Value: 50, Max: 100, Aspect: 5}, true
}

func (Bar) Init(*component.Context, *BarData, []component.ControlGeometry) struct{} {
	return struct{}{}
}

func (Bar) Geometry(_ *struct{}, d *BarData) component.ControlGeometry {
	return component.Fixed(d.Aspect)
}

// Fill is the filled fraction of the bar.
func (d *BarData) Fill() float32 {
	if d.Max <= d.Min {
		return 0
	}
	return clamp01((d.Value - d.Min) / (d.Max - d.Min))
}

func (Bar) Draw(ctx *component.Context, zone vector.Zone, _ []component.ChildDrawer, _ *struct{}, d *BarData) {
	z := zone
	if d.Aspect > 0 {
		z = zone.ConstraintToAspect(d.Aspect)
	}
	if !z.HasArea() {
		return
	}
	cv := ctx.Canvas()
	cv.FillRect(z, StatusBackground(d.Status))
	f := d.Fill()
	if f > 0 {
		var fill vector.Zone
		if z.Size.X >= z.Size.Y {
			fill = vector.FromRect(z.TopLeft(), vector.V(z.Left()+z.Size.X*f, z.Bottom()))
		} else {
			fill = vector.FromRect(vector.V(z.Left(), z.Bottom()-z.Size.Y*f), z.BottomRight())
		}
		cv.FillRect(fill, StatusColor(d.Status))
	}
	cv.StrokeRect(z, vector.Stroke{Color: SoftFront, Width: 1})
}
