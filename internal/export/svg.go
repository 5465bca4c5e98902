/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo/float"

	"panelforge/internal/textlayout"
	"panelforge/internal/vector"
)

// SVG is a canvas writing SVG elements as they are drawn. Close must be
// called once the frame is complete.
type SVG struct {
	s     *svg.SVG
	fonts textlayout.Provider
}

// NewSVG starts a width x height document on w with a bg filled
// background. Text is fitted with fonts, Go by default, and rendered by
// the viewer in the Go family when installed.
func NewSVG(w io.Writer, width, height int, bg vector.Color, fonts textlayout.Provider) *SVG {
	if fonts == nil {
		fonts = textlayout.GoFonts()
	}
	s := svg.New(w)
	s.Start(float64(width), float64(height))
	s.Rect(0, 0, float64(width), float64(height), fillStyle(bg))
	return &SVG{s: s, fonts: fonts}
}

// Close ends the document.
func (c *SVG) Close() { c.s.End() }

func rgb(c vector.Color) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func opacity(a uint8) string {
	if a == 255 {
		return ""
	}
	return fmt.Sprintf(";opacity:%.3f", float64(a)/255)
}

func fillStyle(c vector.Color) string { return "fill:" + rgb(c) + opacity(c.A) }

func strokeStyle(s vector.Stroke) string {
	return fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f%s", rgb(s.Color), s.Width, opacity(s.Color.A))
}

func (c *SVG) FillRect(z vector.Zone, col vector.Color) {
	c.s.Rect(f64(z.Left()), f64(z.Top()), f64(z.Size.X), f64(z.Size.Y), fillStyle(col))
}

func (c *SVG) StrokeRect(z vector.Zone, s vector.Stroke) {
	c.s.Rect(f64(z.Left()), f64(z.Top()), f64(z.Size.X), f64(z.Size.Y), strokeStyle(s))
}

func (c *SVG) FillCircle(center vector.Vec2, r float32, col vector.Color) {
	c.s.Circle(f64(center.X), f64(center.Y), f64(r), fillStyle(col))
}

func (c *SVG) StrokeCircle(center vector.Vec2, r float32, s vector.Stroke) {
	c.s.Circle(f64(center.X), f64(center.Y), f64(r), strokeStyle(s))
}

func (c *SVG) Line(a, b vector.Vec2, s vector.Stroke) {
	c.s.Line(f64(a.X), f64(a.Y), f64(b.X), f64(b.Y), strokeStyle(s)+";stroke-linecap:round")
}

func (c *SVG) Arc(center vector.Vec2, r, from, to float32, s vector.Stroke) {
	sweep := float64(to - from)
	if sweep <= 0 {
		return
	}
	if sweep >= 2*math.Pi-1e-4 {
		c.StrokeCircle(center, r, s)
		return
	}
	a, b := center.Polar(r, from), center.Polar(r, to)
	c.s.Arc(f64(a.X), f64(a.Y), f64(r), f64(r), 0, sweep > math.Pi, true, f64(b.X), f64(b.Y), strokeStyle(s))
}

func (c *SVG) Text(s string, z vector.Zone, col vector.Color) {
	ft, ok := fitText(c.fonts, s, z)
	if !ok {
		return
	}
	style := fmt.Sprintf("text-anchor:middle;dominant-baseline:central;font-family:Go,sans-serif;font-size:%.2fpx;%s",
		ft.size, fillStyle(col))
	for i, ln := range ft.lines {
		c.s.Text(f64(z.Center.X), f64(ft.lineCenter(i)), ln, style)
	}
}
