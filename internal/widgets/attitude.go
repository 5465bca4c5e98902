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

	"panelforge/internal/component"
	"panelforge/internal/vector"
)

// SpatialIndicatorData holds the attitude shown by a SpatialIndicator.
// Angles are radians; zoom scales the projected sphere.
type SpatialIndicatorData struct {
	ProjectionZoom float32 `json:"projection_zoom"`
	Yaw            float32 `json:"yaw"`
	Pitch          float32 `json:"pitch"`
	Roll           float32 `json:"roll"`
}

// SpatialIndicator is an attitude indicator: a pitch and heading ladder
// projected from the aircraft's orientation onto a round dial, with a fixed
// flight director marker in the middle.
type SpatialIndicator struct{}

func (SpatialIndicator) Name() string     { return "SpatialSituationIndicator" }
func (SpatialIndicator) MaxChildren() int { return 0 }

func (SpatialIndicator) DefaultData() (SpatialIndicatorData, bool) {
	return SpatialIndicatorData{ProjectionZoom: 1.5}, true
}

func (SpatialIndicator) Init(*component.Context, *SpatialIndicatorData, []component.ControlGeometry) struct{} {
	return struct{}{}
}

func (SpatialIndicator) Geometry(*struct{}, *SpatialIndicatorData) component.ControlGeometry {
	return component.Fixed(1)
}

var (
	ladderStroke = vector.Stroke{Color: vector.RGB(0x50, 0x50, 0x50), Width: 1.5}
	dialStroke   = vector.Stroke{Color: vector.Color{R: 0xa0, G: 0xa0, B: 0xa0, A: 0xa0}, Width: 3}
)

// attitude rotates body axes into world axes: yaw about z, then pitch
// about y, then roll about x.
type attitude [3][3]float64

func newAttitude(roll, pitch, yaw float32) attitude {
	sr, cr := math.Sincos(float64(roll))
	sp, cp := math.Sincos(float64(pitch))
	sy, cy := math.Sincos(float64(yaw))
	return attitude{
		{cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr},
		{sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr},
		{-sp, cp * sr, cp * cr},
	}
}

// body expresses world vector v in body axes.
func (a attitude) body(v [3]float64) [3]float64 {
	return [3]float64{
		a[0][0]*v[0] + a[1][0]*v[1] + a[2][0]*v[2],
		a[0][1]*v[0] + a[1][1]*v[1] + a[2][1]*v[2],
		a[0][2]*v[0] + a[1][2]*v[1] + a[2][2]*v[2],
	}
}

// project maps the sky point at heading/elevation (degrees) to an offset
// from the dial centre in units of the dial size. Points behind the viewer
// or outside overhead*0.9/zoom are not visible.
func (a attitude) project(heading, elevation, zoom, overhead float32) (vector.Vec2, bool) {
	h := float64(heading) * math.Pi / 180
	e := float64(elevation) * math.Pi / 180
	dir := [3]float64{math.Cos(h) * math.Cos(e), math.Sin(h) * math.Cos(e), -math.Sin(e)}
	out := a.body(dir)
	if out[0] <= 0 || math.Hypot(out[1], out[2]) > float64(overhead)*0.9/float64(zoom) {
		return vector.Vec2{}, false
	}
	return vector.V(float32(out[1])*zoom/2, float32(out[2])*zoom/2), true
}

func (SpatialIndicator) Draw(ctx *component.Context, zone vector.Zone, _ []component.ChildDrawer, _ *struct{}, d *SpatialIndicatorData) {
	z := zone.ConstraintToAspect(1)
	if !z.HasArea() {
		return
	}
	zoom := d.ProjectionZoom
	if zoom <= 0 {
		zoom = 1.5
	}
	cv := ctx.Canvas()
	size := z.Size.X
	at := func(off vector.Vec2) vector.Vec2 { return z.Center.Add(off.Mul(size)) }
	att := newAttitude(d.Roll, d.Pitch, d.Yaw)

	line := func(h1, e1, h2, e2 float32) {
		a, ok1 := att.project(h1, e1, zoom, 0.97)
		b, ok2 := att.project(h2, e2, zoom, 0.96)
		if ok1 && ok2 {
			cv.Line(at(a), at(b), ladderStroke)
		}
	}
	label := func(s string, h, e float32) {
		if p, ok := att.project(h, e, zoom, 0.85); ok {
			c := at(p)
			cv.Text(s, vector.Z(c.X, c.Y, size/2.5, size/20), vector.White)
		}
	}

	cv.StrokeCircle(z.Center, size/2, dialStroke)
	cv.StrokeCircle(z.Center, 0.9*size/2, dialStroke)

	yawDeg := d.Yaw * 180 / math.Pi
	pitchDeg := d.Pitch * 180 / math.Pi

	// pitch ladder, one rung per 5 degrees, the horizon rung wider
	for i := -22; i < 22; i++ {
		e := float32(i * 5)
		w := float32(5)
		if i == 0 {
			w = 25 * float32(math.Cos(float64(d.Pitch)*3))
		}
		line(w+yawDeg, e, -w+yawDeg, e)
		if i != 0 && i*5 <= 90 {
			label(strconv.Itoa(i*5), 7+yawDeg, e)
		}
	}

	// heading ticks follow the pitch up to 75 degrees
	spacing := 10
	if abs32(pitchDeg) > 60 {
		spacing = 30
	}
	band := min(max(pitchDeg, -75), 75)
	for hd := 0; hd < 360; hd += spacing {
		h := float32(hd)
		line(h, 2+band, h, -2+band)
		label(strconv.Itoa(hd), h, -4+band)
	}

	drawFlightDirector(cv, z)
}

func drawFlightDirector(cv vector.Canvas, z vector.Zone) {
	u := z.Size.Y / 20
	c := z.Center
	s := vector.Stroke{Color: SelectionColor, Width: 3}
	pts := []vector.Vec2{
		{X: c.X - 2*u, Y: c.Y},
		{X: c.X - 0.66*u, Y: c.Y},
		{X: c.X, Y: c.Y + u},
		{X: c.X + 0.66*u, Y: c.Y},
		{X: c.X + 2*u, Y: c.Y},
	}
	for i := 1; i < len(pts); i++ {
		cv.Line(pts[i-1], pts[i], s)
	}
	cv.StrokeCircle(c, 1, s)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
