/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"io"

	"github.com/fogleman/gg"

	"panelforge/internal/textlayout"
	"panelforge/internal/vector"
)

// Raster is a canvas painting into an RGBA image through gg.
type Raster struct {
	dc    *gg.Context
	fonts textlayout.Provider
}

// NewRaster returns a w x h canvas cleared to bg. A nil fonts provider
// uses Go Regular.
func NewRaster(w, h int, bg vector.Color, fonts textlayout.Provider) *Raster {
	if fonts == nil {
		fonts = GoRegular()
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(bg.NRGBA())
	dc.Clear()
	return &Raster{dc: dc, fonts: fonts}
}

func (r *Raster) Image() image.Image         { return r.dc.Image() }
func (r *Raster) WritePNG(w io.Writer) error { return r.dc.EncodePNG(w) }
func (r *Raster) SavePNG(path string) error  { return r.dc.SavePNG(path) }

func f64(v float32) float64 { return float64(v) }

func (r *Raster) rect(z vector.Zone) {
	r.dc.DrawRectangle(f64(z.Left()), f64(z.Top()), f64(z.Size.X), f64(z.Size.Y))
}

func (r *Raster) circle(c vector.Vec2, rad float32) {
	r.dc.DrawCircle(f64(c.X), f64(c.Y), f64(rad))
}

func (r *Raster) fill(c vector.Color) {
	r.dc.SetColor(c.NRGBA())
	r.dc.Fill()
}

func (r *Raster) stroke(s vector.Stroke) {
	r.dc.SetColor(s.Color.NRGBA())
	r.dc.SetLineWidth(f64(max(s.Width, 0.5)))
	r.dc.Stroke()
}

func (r *Raster) FillRect(z vector.Zone, c vector.Color) {
	r.rect(z)
	r.fill(c)
}

func (r *Raster) StrokeRect(z vector.Zone, s vector.Stroke) {
	r.rect(z)
	r.stroke(s)
}

func (r *Raster) FillCircle(center vector.Vec2, rad float32, c vector.Color) {
	r.circle(center, rad)
	r.fill(c)
}

func (r *Raster) StrokeCircle(center vector.Vec2, rad float32, s vector.Stroke) {
	r.circle(center, rad)
	r.stroke(s)
}

func (r *Raster) Line(a, b vector.Vec2, s vector.Stroke) {
	r.dc.DrawLine(f64(a.X), f64(a.Y), f64(b.X), f64(b.Y))
	r.stroke(s)
}

func (r *Raster) Arc(center vector.Vec2, rad, from, to float32, s vector.Stroke) {
	r.dc.NewSubPath()
	r.dc.DrawArc(f64(center.X), f64(center.Y), f64(rad), f64(from), f64(to))
	r.stroke(s)
}

func (r *Raster) Text(s string, z vector.Zone, c vector.Color) {
	ft, ok := fitText(r.fonts, s, z)
	if !ok {
		return
	}
	face, _ := r.fonts.Resolve(textlayout.FontSpec{SizePt: ft.size})
	r.dc.SetFontFace(face)
	r.dc.SetColor(c.NRGBA())
	for i, ln := range ft.lines {
		r.dc.DrawStringAnchored(ln, f64(z.Center.X), f64(ft.lineCenter(i)), 0.5, 0.35)
	}
}
