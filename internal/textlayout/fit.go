/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"strings"

	"golang.org/x/image/font"
)

// RefSize is the size blocks are measured at before scaling to a zone.
const RefSize float32 = 100

// Block is the extent of a multi-line string measured at RefSize.
type Block struct {
	Lines      []string
	Width      float32 // widest line
	LineHeight float32
}

// Height of all lines stacked.
func (b Block) Height() float32 { return b.LineHeight * float32(len(b.Lines)) }

// Aspect is width/height of the block, 0 for empty text.
func (b Block) Aspect() float32 {
	h := b.Height()
	if h == 0 || b.Width == 0 {
		return 0
	}
	return b.Width / h
}

// MeasureBlock splits text on newlines and measures every line.
func MeasureBlock(provider Provider, spec FontSpec, text string) Block {
	if provider == nil {
		provider = BasicProvider{}
	}
	spec.SizePt = RefSize
	face, met := provider.Resolve(spec)
	d := &font.Drawer{Face: face}
	b := Block{Lines: strings.Split(text, "\n"), LineHeight: met.Ascent + met.Descent + met.LineGap}
	for _, ln := range b.Lines {
		b.Width = max(b.Width, advance(d, ln))
	}
	return b
}

// FitSize returns the largest font size at which b fits into w x h.
// Providers with fixed-size faces scale proportionally.
func (b Block) FitSize(w, h float32) float32 {
	if b.Width == 0 || b.Height() == 0 || w <= 0 || h <= 0 {
		return 0
	}
	return RefSize * min(w/b.Width, h/b.Height())
}
