/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"panelforge/internal/component"
	applog "panelforge/internal/log"
	"panelforge/internal/textlayout"
	"panelforge/internal/vector"
	"panelforge/internal/widgets"
)

const panelDoc = `{"version":1,"root":{"type":"Split","children":[
	{"type":"Gauge","name":"rpm","data":{"value":72,"unit":"%","caption":"RPM",
		"ranges":[{"max":80,"status":"ok"},{"max":95,"status":"warning"},{"max":110,"status":"error"}]}},
	{"type":"GroupingBox","data":{"title":"Gear"},"children":[{"type":"Lamp","data":{"on":true,"label":"DOWN"}}]},
	{"type":"TextField","name":"msg","data":{"text":"Hi & bye"}}]}}`

func samplePanel(t *testing.T) (*component.View, *component.Context) {
	t.Helper()
	ctx := component.NewContext(nil, textlayout.GoFonts(), applog.Discard())
	v, err := widgets.NewManager().Build(ctx, []byte(panelDoc))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return v, ctx
}

func TestRenderFileFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out/panel.png", "panel.svg", "panel.PDF"} {
		v, ctx := samplePanel(t)
		path := filepath.Join(dir, name)
		if err := RenderFile(v, ctx, path, Options{Width: 480, Height: 200, Settle: 10}); err != nil {
			t.Fatalf("render %s: %v", name, err)
		}
		st, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if st.Size() <= 0 {
			t.Fatalf("%s empty", name)
		}
		if ctx.Frame != 11 {
			t.Fatalf("%s: frames drawn = %d, want 11", name, ctx.Frame)
		}
	}

	f, err := os.Open(filepath.Join(dir, "out", "panel.png"))
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 480 || b.Dy() != 200 {
		t.Fatalf("png bounds = %v", b)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "panel.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	s := string(svg)
	if !strings.HasPrefix(strings.TrimSpace(s), "<?xml") || !strings.Contains(s, "</svg>") {
		t.Fatalf("svg not a complete document")
	}
	if !strings.Contains(s, "Hi &amp; bye") || !strings.Contains(s, "RPM") {
		t.Fatalf("svg lacks escaped text")
	}
}

func TestRenderFileRejectsUnknownExtension(t *testing.T) {
	v, ctx := samplePanel(t)
	err := RenderFile(v, ctx, filepath.Join(t.TempDir(), "panel.jpg"), Options{})
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

func TestRenderImagePaintsZones(t *testing.T) {
	ctx := component.NewContext(nil, nil, applog.Discard())
	v, err := widgets.NewManager().Build(ctx, []byte(`{"type":"TextField","data":{"text":"","back_color":"#ff0000"}}`))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	img := RenderImage(v, ctx, Options{Width: 40, Height: 20, Background: vector.RGB(0, 0, 255)})
	r, g, b, _ := img.At(20, 10).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 {
		t.Fatalf("centre pixel = %v, want red", img.At(20, 10))
	}
	if got := v.Drawn(v.Root()); got != vector.Z(20, 10, 40, 20) {
		t.Fatalf("drawn = %+v", got)
	}
}

func TestRasterBackground(t *testing.T) {
	r := NewRaster(8, 8, vector.RGB(10, 20, 30), nil)
	want := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	if got := color.RGBAModel.Convert(r.Image().At(3, 3)); got != want {
		t.Fatalf("pixel = %v, want %v", got, want)
	}
	var buf bytes.Buffer
	if err := r.WritePNG(&buf); err != nil || buf.Len() == 0 {
		t.Fatalf("encode: %v", err)
	}
}

func TestTrueTypeCachesFaces(t *testing.T) {
	tt := GoRegular()
	a, m := tt.Resolve(textlayout.FontSpec{SizePt: 20})
	b, _ := tt.Resolve(textlayout.FontSpec{SizePt: 20})
	if a != b {
		t.Fatalf("face not cached")
	}
	if m.Ascent <= 0 || m.Ascent > 20 {
		t.Fatalf("ascent = %v", m.Ascent)
	}
	if _, err := NewTrueType([]byte("nope")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPDFCanvas(t *testing.T) {
	p := NewPDF(200, 100, vector.Black)
	p.Arc(vector.V(100, 50), 40, 0, 3, vector.Stroke{Color: vector.White, Width: 2})
	p.Text("one\ntwo", vector.Z(100, 50, 100, 50), vector.White)
	if err := p.Err(); err != nil {
		t.Fatalf("pdf error: %v", err)
	}
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
}

func TestFormat(t *testing.T) {
	for in, want := range map[string]string{"a.png": "png", "b.SVG": "svg", "c/d.pdf": "pdf"} {
		if got, err := Format(in); err != nil || got != want {
			t.Fatalf("Format(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := Format("noext"); !errors.Is(err, ErrFormat) {
		t.Fatalf("noext err = %v", err)
	}
}
