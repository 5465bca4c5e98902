/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
)

func TestBasicProviderMetrics(t *testing.T) {
	_, m := BasicProvider{}.Resolve(FontSpec{SizePt: 40})
	if m.Ascent <= 0 || m.Descent <= 0 || m.LineGap < 0 {
		t.Fatalf("metrics = %+v", m)
	}
	_, m2 := BasicProvider{}.Resolve(FontSpec{SizePt: 8})
	if m != m2 {
		t.Fatalf("fixed face changed with size: %+v vs %+v", m, m2)
	}
}

func TestGoFontsFallback(t *testing.T) {
	p := GoFonts()
	bold := MeasureBlock(p, FontSpec{Weight: 700}, "Hello world")
	boldItalic := MeasureBlock(p, FontSpec{Weight: 700, Italic: true}, "Hello world")
	regular := MeasureBlock(p, FontSpec{}, "Hello world")
	if bold.Width != boldItalic.Width {
		t.Fatalf("italic bold should fall back to bold: %v vs %v", bold.Width, boldItalic.Width)
	}
	if bold.Width <= regular.Width {
		t.Fatalf("bold %v not wider than regular %v", bold.Width, regular.Width)
	}
	unknown := MeasureBlock(p, FontSpec{Family: "Nope"}, "Hello world")
	if unknown.Width <= 0 {
		t.Fatalf("unknown family measured %v", unknown.Width)
	}
}

func TestFontLibraryLoadTTF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.ttf")
	if err := os.WriteFile(path, gomono.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	fl := NewFontLibrary()
	if err := fl.LoadTTF("Mono", 400, false, path); err != nil {
		t.Fatalf("LoadTTF: %v", err)
	}
	p := OTProvider{Lib: fl, Default: "Mono"}
	narrow := MeasureBlock(p, FontSpec{}, "iiii")
	wide := MeasureBlock(p, FontSpec{}, "WWWW")
	if narrow.Width != wide.Width {
		t.Fatalf("monospace widths differ: %v vs %v", narrow.Width, wide.Width)
	}
	if err := fl.LoadTTF("Broken", 400, false, filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Fatal("missing file loaded")
	}
}
