/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Canvas is the drawing surface components paint on. Implementations live
// in the export package (raster, SVG, PDF) and in the viewer.
type Canvas interface {
	FillRect(z Zone, c Color)
	StrokeRect(z Zone, s Stroke)
	FillCircle(center Vec2, r float32, c Color)
	StrokeCircle(center Vec2, r float32, s Stroke)
	Line(a, b Vec2, s Stroke)
	// Arc strokes the circle segment from angle from to angle to (radians,
	// clockwise on screen, 0 pointing right).
	Arc(center Vec2, r, from, to float32, s Stroke)
	// Text draws s (lines split on newlines) centred in z at the largest
	// size that fits.
	Text(s string, z Zone, c Color)
}

// Nop discards all drawing. Used for settle passes before export.
type Nop struct{}

func (Nop) FillRect(Zone, Color)                        {}
func (Nop) StrokeRect(Zone, Stroke)                     {}
func (Nop) FillCircle(Vec2, float32, Color)             {}
func (Nop) StrokeCircle(Vec2, float32, Stroke)          {}
func (Nop) Arc(Vec2, float32, float32, float32, Stroke) {}
func (Nop) Line(Vec2, Vec2, Stroke)                     {}
func (Nop) Text(string, Zone, Color)                    {}

// Recorder keeps the bounding zone of everything drawn through it and
// forwards to an inner canvas.
type Recorder struct {
	Inner  Canvas
	Bounds Zone
	Ops    int
}

func (r *Recorder) mark(z Zone) {
	r.Ops++
	r.Bounds.MergeGrow(z)
}

func (r *Recorder) FillRect(z Zone, c Color) {
	r.mark(z)
	r.Inner.FillRect(z, c)
}

func (r *Recorder) StrokeRect(z Zone, s Stroke) {
	r.mark(z)
	r.Inner.StrokeRect(z, s)
}

func (r *Recorder) FillCircle(center Vec2, rad float32, c Color) {
	r.mark(Zone{Center: center, Size: Vec2{2 * rad, 2 * rad}})
	r.Inner.FillCircle(center, rad, c)
}

func (r *Recorder) StrokeCircle(center Vec2, rad float32, s Stroke) {
	r.mark(Zone{Center: center, Size: Vec2{2 * rad, 2 * rad}})
	r.Inner.StrokeCircle(center, rad, s)
}

func (r *Recorder) Line(a, b Vec2, s Stroke) {
	r.mark(FromRect(a, b))
	r.Inner.Line(a, b, s)
}

func (r *Recorder) Arc(center Vec2, rad, from, to float32, s Stroke) {
	r.mark(Zone{Center: center, Size: Vec2{2 * rad, 2 * rad}})
	r.Inner.Arc(center, rad, from, to, s)
}

func (r *Recorder) Text(s string, z Zone, c Color) {
	r.mark(z)
	r.Inner.Text(s, z, c)
}
