/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgets

import (
	"math"
	"strconv"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"panelforge/internal/component"
	"panelforge/internal/vector"
)

// Range is one coloured band of a gauge scale ending at Max.
type Range struct {
	Max    float32 `json:"max"`
	Status Status  `json:"status"`
}

type GaugeData struct {
	Value     float32 `json:"value"`
	Min       float32 `json:"min"`
	Ranges    []Range `json:"ranges"`
	Precision int     `json:"precision"`
	Unit      string  `json:"unit"`
	Caption   string  `json:"caption"`
	// SmoothingMS eases the needle towards a new value over this time.
	SmoothingMS int `json:"smoothing_ms"`
}

// GaugeAspect is the width/height of a drawn gauge.
const GaugeAspect float32 = 1.15

const (
	gaugeStart = 3 * math.Pi / 4 // bottom left
	gaugeSweep = 3 * math.Pi / 2
)

type gaugeState struct {
	shown  float32
	target float32
	tween  *gween.Tween
	primed bool
}

// Gauge is a 270 degree rotational indicator with coloured ranges.
type Gauge struct{}

func (Gauge) Name() string     { return "Gauge" }
func (Gauge) MaxChildren() int { return 0 }
func (Gauge) DefaultData() (GaugeData, bool) {
	return GaugeData{
		Value:     50,
		Precision: 1,
		Ranges:    []Range{{Max: 100, Status: StatusOK}},
	}, true
}

func (Gauge) Init(_ *component.Context, d *GaugeData, _ []component.ControlGeometry) gaugeState {
	return gaugeState{shown: d.Value, target: d.Value, primed: true}
}

func (Gauge) Geometry(*gaugeState, *GaugeData) component.ControlGeometry {
	return component.Fixed(GaugeAspect)
}

func (d *GaugeData) max() float32 {
	if len(d.Ranges) == 0 {
		return d.Min + 100
	}
	return d.Ranges[len(d.Ranges)-1].Max
}

// normalize maps v onto [0,1] of the scale.
func (d *GaugeData) normalize(v float32) float32 {
	lo, hi := d.Min, d.max()
	if hi <= lo {
		return 0
	}
	return clamp01((v - lo) / (hi - lo))
}

// StatusOf returns the status of the range holding v. Values outside the
// scale are errors.
func (d *GaugeData) StatusOf(v float32) Status {
	if v < d.Min {
		return StatusError
	}
	for _, r := range d.Ranges {
		if v <= r.Max {
			return r.Status
		}
	}
	return StatusError
}

// step advances the needle towards value and returns the value to show.
func (st *gaugeState) step(value float32, smoothingMS int, dt float32) float32 {
	if smoothingMS <= 0 || !st.primed {
		st.shown, st.target, st.tween, st.primed = value, value, nil, true
		return value
	}
	if value != st.target {
		st.target = value
		st.tween = gween.New(st.shown, value, float32(smoothingMS)/1000, ease.OutCubic)
	}
	if st.tween != nil {
		v, done := st.tween.Update(dt)
		st.shown = v
		if done {
			st.shown, st.tween = st.target, nil
		}
	}
	return st.shown
}

func (Gauge) Draw(ctx *component.Context, zone vector.Zone, _ []component.ChildDrawer, st *gaugeState, d *GaugeData) {
	z := zone.ConstraintToAspect(GaugeAspect)
	if !z.HasArea() {
		return
	}
	cv := ctx.Canvas()
	shown := st.step(d.Value, d.SmoothingMS, float32(ctx.Delta.Seconds()))
	status := d.StatusOf(d.Value)

	r := z.Size.X / 2.4
	thick := r / 10
	center := z.Center.Add(vector.V(0, r/11))
	angle := func(n float32) float32 { return gaugeStart + n*gaugeSweep }

	cv.FillCircle(center, r*1.09, StatusBackground(StatusOK))
	from := d.normalize(d.Min)
	for _, rg := range d.Ranges {
		to := d.normalize(rg.Max)
		if to > from {
			cv.Arc(center, r*1.13, angle(from), angle(to), vector.Stroke{Color: StatusColor(rg.Status), Width: thick})
		}
		from = to
	}
	n := d.normalize(shown)
	if n > 0 {
		cv.Arc(center, r, angle(0), angle(n), vector.Stroke{Color: Front, Width: thick * 1.75})
	}
	cv.Line(center, center.Polar(r*0.8, angle(n)), vector.Stroke{Color: Front, Width: thick / 2})

	valueZone := vector.Z(center.X, center.Y-r/10+r/3, r*1.2, r/2.5)
	cv.Text(FormatValue(d.Value, d.Precision)+d.Unit, valueZone, StatusText(status))

	// captions blink while the value is out of range
	blinkOn := float32(math.Mod(ctx.Elapsed.Seconds()*2, 1)) < 0.66
	if d.Caption != "" && (status != StatusError || blinkOn) {
		capZone := vector.Z(center.X, center.Y+r/1.5, r*1.6, r/3)
		cv.Text(d.Caption, capZone, Caption)
	}
}

// FormatValue renders v with a fixed number of decimals, truncating rather
// than rounding so a needle never reads higher than the value.
func FormatValue(v float32, precision int) string {
	if precision < 0 {
		precision = 0
	}
	p := math.Pow(10, float64(precision))
	t := math.Trunc(float64(v)*p) / p
	return strconv.FormatFloat(t, 'f', precision, 32)
}
