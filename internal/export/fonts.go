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
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"panelforge/internal/textlayout"
)

// TrueType is a text provider rasterised by freetype. Faces are cached per
// size, so a provider must not be shared between goroutines.
type TrueType struct {
	font  *truetype.Font
	faces map[int]font.Face
}

// NewTrueType parses a TTF file's bytes.
func NewTrueType(ttf []byte) (*TrueType, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse ttf: %w", err)
	}
	return &TrueType{font: f, faces: make(map[int]font.Face)}, nil
}

// LoadTrueType reads and parses a TTF file.
func LoadTrueType(path string) (*TrueType, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return NewTrueType(b)
}

// Clone shares the parsed font but not the face cache, for use on
// another goroutine.
func (t *TrueType) Clone() *TrueType {
	return &TrueType{font: t.font, faces: make(map[int]font.Face)}
}

var goRegular = sync.OnceValue(func() *truetype.Font {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	return f
})

// GoRegular returns a provider for the embedded Go Regular font.
func GoRegular() *TrueType {
	return &TrueType{font: goRegular(), faces: make(map[int]font.Face)}
}

// Resolve ignores family and weight; a TrueType provider holds one face.
// Sizes are quantised to quarter points.
func (t *TrueType) Resolve(spec textlayout.FontSpec) (font.Face, textlayout.Metrics) {
	size := spec.SizePt
	if size <= 0 {
		size = 12
	}
	key := int(size*4 + 0.5)
	face, ok := t.faces[key]
	if !ok {
		face = truetype.NewFace(t.font, &truetype.Options{Size: float64(key) / 4, Hinting: font.HintingFull})
		t.faces[key] = face
	}
	m := face.Metrics()
	return face, textlayout.Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}
