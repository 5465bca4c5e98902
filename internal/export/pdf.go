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
	"strings"

	"github.com/jung-kurt/gofpdf"

	"panelforge/internal/vector"
)

// PDF is a single-page canvas in points. Text uses the built-in Helvetica
// so nothing is embedded.
type PDF struct {
	pdf *gofpdf.Fpdf
}

// NewPDF returns a width x height pt page filled with bg.
func NewPDF(width, height float64, bg vector.Color) *PDF {
	size := gofpdf.SizeType{Wd: width, Ht: height}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("panelforge", false)
	pdf.AddPageFormat("", size)
	pdf.SetFont("Helvetica", "", 12)
	p := &PDF{pdf: pdf}
	p.FillRect(vector.Z(float32(width)/2, float32(height)/2, float32(width), float32(height)), bg)
	return p
}

// WriteFile writes the document to path.
func (p *PDF) WriteFile(path string) error { return p.pdf.OutputFileAndClose(path) }

// Write writes the document to w.
func (p *PDF) Write(w io.Writer) error { return p.pdf.Output(w) }

func (p *PDF) alpha(a uint8) {
	p.pdf.SetAlpha(float64(a)/255, "Normal")
}

func (p *PDF) setFill(c vector.Color) {
	p.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	p.alpha(c.A)
}

func (p *PDF) setStroke(s vector.Stroke) {
	p.pdf.SetDrawColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	p.pdf.SetLineWidth(float64(max(s.Width, 0.1)))
	p.alpha(s.Color.A)
}

func (p *PDF) FillRect(z vector.Zone, c vector.Color) {
	p.setFill(c)
	p.pdf.Rect(f64(z.Left()), f64(z.Top()), f64(z.Size.X), f64(z.Size.Y), "F")
}

func (p *PDF) StrokeRect(z vector.Zone, s vector.Stroke) {
	p.setStroke(s)
	p.pdf.Rect(f64(z.Left()), f64(z.Top()), f64(z.Size.X), f64(z.Size.Y), "D")
}

func (p *PDF) FillCircle(center vector.Vec2, r float32, c vector.Color) {
	p.setFill(c)
	p.pdf.Circle(f64(center.X), f64(center.Y), f64(r), "F")
}

func (p *PDF) StrokeCircle(center vector.Vec2, r float32, s vector.Stroke) {
	p.setStroke(s)
	p.pdf.Circle(f64(center.X), f64(center.Y), f64(r), "D")
}

func (p *PDF) Line(a, b vector.Vec2, s vector.Stroke) {
	p.setStroke(s)
	p.pdf.Line(f64(a.X), f64(a.Y), f64(b.X), f64(b.Y))
}

// Arc converts clockwise screen radians to gofpdf's counter-clockwise
// degrees.
func (p *PDF) Arc(center vector.Vec2, r, from, to float32, s vector.Stroke) {
	if to <= from {
		return
	}
	deg := func(rad float32) float64 { return float64(rad) * 180 / math.Pi }
	p.setStroke(s)
	p.pdf.Arc(f64(center.X), f64(center.Y), f64(r), f64(r), 0, -deg(to), -deg(from), "D")
}

func (p *PDF) Text(s string, z vector.Zone, c vector.Color) {
	lines := strings.Split(s, "\n")
	p.pdf.SetFontSize(1)
	var widest float64
	for _, ln := range lines {
		widest = max(widest, p.pdf.GetStringWidth(ln))
	}
	const leading = 1.2
	if widest == 0 {
		return
	}
	size := min(f64(z.Size.X)/widest, f64(z.Size.Y)/(leading*float64(len(lines))))
	if size < 1 {
		return
	}
	p.pdf.SetFontSize(size)
	p.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	p.alpha(c.A)
	lh := size * leading
	top := f64(z.Center.Y) - lh*float64(len(lines))/2
	for i, ln := range lines {
		x := f64(z.Center.X) - p.pdf.GetStringWidth(ln)/2
		// baseline sits about a third of the size below the line centre
		y := top + lh*(float64(i)+0.5) + size*0.35
		p.pdf.Text(x, y, ln)
	}
}

// Err reports the first error gofpdf ran into.
func (p *PDF) Err() error {
	if err := p.pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return nil
}
