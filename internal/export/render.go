/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"panelforge/internal/component"
	"panelforge/internal/textlayout"
	"panelforge/internal/vector"
)

// ErrFormat is returned for output paths with an unknown extension.
var ErrFormat = errors.New("unsupported output format")

// Options controls a single-frame render.
type Options struct {
	Width, Height int
	Background    vector.Color
	// Settle draws this many frames on a discarding canvas first so the
	// layouts can relax before the frame that is kept.
	Settle int
	// Step advances the frame clock before each drawn frame. Defaults to
	// 1/60 s; live hosts pass the real frame delta.
	Step  time.Duration
	Hooks component.Hooks
	// Fonts measures and paints text in raster output. Defaults to Go Regular.
	Fonts textlayout.Provider
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.Background == (vector.Color{}) {
		o.Background = vector.Black
	}
	if o.Settle < 0 {
		o.Settle = 0
	}
	if o.Step <= 0 {
		o.Step = settleStep
	}
	return o
}

// Zone covers the whole output surface.
func (o Options) Zone() vector.Zone {
	return vector.Z(float32(o.Width)/2, float32(o.Height)/2, float32(o.Width), float32(o.Height))
}

// Format maps an output path to png, svg or pdf.
func Format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf":
		return ext, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
}

const settleStep = time.Second / 60

// settle relaxes the view without painting and returns with the canvas set
// to target.
func settle(v *component.View, ctx *component.Context, opt Options, target vector.Canvas) {
	ctx.SetCanvas(vector.Nop{})
	for i := 0; i < opt.Settle; i++ {
		ctx.Advance(settleStep)
		v.Draw(ctx, opt.Zone(), opt.Hooks)
	}
	ctx.Advance(opt.Step)
	ctx.SetCanvas(target)
}

// RenderImage draws one frame of v into an image.
func RenderImage(v *component.View, ctx *component.Context, opt Options) image.Image {
	opt = opt.withDefaults()
	r := NewRaster(opt.Width, opt.Height, opt.Background, opt.Fonts)
	settle(v, ctx, opt, r)
	v.Draw(ctx, opt.Zone(), opt.Hooks)
	ctx.SetCanvas(nil)
	return r.Image()
}

// RenderFile draws one frame of v to path, picking the backend from the
// extension.
func RenderFile(v *component.View, ctx *component.Context, path string, opt Options) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	opt = opt.withDefaults()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	defer ctx.SetCanvas(nil)

	switch format {
	case "png":
		r := NewRaster(opt.Width, opt.Height, opt.Background, opt.Fonts)
		settle(v, ctx, opt, r)
		v.Draw(ctx, opt.Zone(), opt.Hooks)
		if err := r.SavePNG(path); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
	case "svg":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create svg: %w", err)
		}
		s := NewSVG(f, opt.Width, opt.Height, opt.Background, nil)
		settle(v, ctx, opt, s)
		v.Draw(ctx, opt.Zone(), opt.Hooks)
		s.Close()
		if err := f.Close(); err != nil {
			return fmt.Errorf("close svg: %w", err)
		}
	case "pdf":
		p := NewPDF(float64(opt.Width), float64(opt.Height), opt.Background)
		settle(v, ctx, opt, p)
		v.Draw(ctx, opt.Zone(), opt.Hooks)
		if err := p.WriteFile(path); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
	}
	return nil
}

// fitted is a text block scaled into a zone.
type fitted struct {
	lines      []string
	size       float32
	lineHeight float32
	top        float32
}

// fitText scales s to the largest size fitting z. It reports false when the
// text would be smaller than a pixel.
func fitText(p textlayout.Provider, s string, z vector.Zone) (fitted, bool) {
	b := textlayout.MeasureBlock(p, textlayout.FontSpec{}, s)
	size := b.FitSize(z.Size.X, z.Size.Y)
	if size < 1 {
		return fitted{}, false
	}
	lh := b.LineHeight * size / textlayout.RefSize
	return fitted{
		lines:      b.Lines,
		size:       size,
		lineHeight: lh,
		top:        z.Center.Y - lh*float32(len(b.Lines))/2,
	}, true
}

// lineCenter is the vertical centre of line i.
func (f fitted) lineCenter(i int) float32 { return f.top + f.lineHeight*(float32(i)+0.5) }
