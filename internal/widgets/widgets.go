/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package widgets is the stock component library: layout containers that
// negotiate aspect with their children frame over frame, and instrument
// leaves (text fields, gauges, bars, lamps, toggles, attitude indicator).
package widgets

import (
	"math"

	"panelforge/internal/component"
	"panelforge/internal/vector"
)

// DefaultSpacing is the fraction of a slot containers hand to a child.
const DefaultSpacing float32 = 0.9

// Register adds every stock component to m.
func Register(m *component.Manager) {
	component.Register[SpacerData, component.ControlGeometry](m, Spacer{})
	component.Register[SplitData, splitState](m, Split{})
	component.Register[GridData, gridState](m, Grid{})
	component.Register[GroupingBoxData, groupingBoxState](m, GroupingBox{})
	component.Register[TextFieldData, textFieldState](m, TextField{})
	component.Register[GaugeData, gaugeState](m, Gauge{})
	component.Register[BarData, struct{}](m, Bar{})
	component.Register[LampData, struct{}](m, Lamp{})
	component.Register[ToggleData, struct{}](m, Toggle{})
	component.Register[SpatialIndicatorData, struct{}](m, SpatialIndicator{})
	component.Register[HighlightData, struct{}](m, Highlight{})
}

// NewManager returns a manager with the stock components registered.
func NewManager() *component.Manager {
	m := component.NewManager()
	Register(m)
	return m
}

// drawSpaced draws child into zone shrunk by spacing. The child's footprint
// grown back by 1/spacing is claimed for the container, so margins count as
// used space.
func drawSpaced(ctx *component.Context, child component.ChildDrawer, zone vector.Zone, spacing float32) vector.Zone {
	if spacing <= 0 || spacing > 1 {
		spacing = 1
	}
	drawn := child(zone.Scale(spacing))
	if drawn.IsEmpty() {
		return drawn
	}
	grown := drawn.Scale(1 / spacing)
	ctx.Mark(grown)
	return grown
}

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// normalize scales w to sum 1. Entries that are zero stay zero; every
// other entry is kept above floor/len(w). A zero vector is left alone.
func normalize(w []float32, floor float32) {
	var sum float32
	for _, v := range w {
		sum += v
	}
	if sum <= 0 || !finite(sum) {
		return
	}
	minShare := floor / float32(len(w))
	sum2 := float32(0)
	for i := range w {
		w[i] /= sum
		if w[i] > 0 && w[i] < minShare {
			w[i] = minShare
		}
		sum2 += w[i]
	}
	for i := range w {
		w[i] /= sum2
	}
}
