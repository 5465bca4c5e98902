/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgets

import (
	"panelforge/internal/component"
	"panelforge/internal/textlayout"
	"panelforge/internal/vector"
)

type TextFieldData struct {
	Text       string       `json:"text"`
	FrontColor vector.Color `json:"front_color"`
	BackColor  vector.Color `json:"back_color"`
}

// textFieldState caches the measured aspect of text.
type textFieldState struct {
	text   string
	aspect float32
}

func (st *textFieldState) measure(p textlayout.Provider, text string) {
	st.text = text
	st.aspect = textlayout.MeasureBlock(p, textlayout.FontSpec{}, text).Aspect()
}

// TextField fills a box sized to its text's aspect.
type TextField struct{}

func (TextField) Name() string     { return "TextField" }
func (TextField) MaxChildren() int { return 0 }
func (TextField) DefaultData() (TextFieldData, bool) {
	return TextFieldData{
		Text:       "<Placeholder>",
		FrontColor: vector.RGB(0x80, 0x80, 0x80),
		BackColor:  vector.RGB(0x00, 0x00, 0x60),
	}, true
}

func (TextField) Init(ctx *component.Context, d *TextFieldData, _ []component.ControlGeometry) textFieldState {
	var st textFieldState
	st.measure(ctx.Text, d.Text)
	return st
}

func (TextField) Draw(ctx *component.Context, zone vector.Zone, _ []component.ChildDrawer, st *textFieldState, d *TextFieldData) {
	// hooks may swap the text for a frame
	if d.Text != st.text {
		st.measure(ctx.Text, d.Text)
	}
	z := zone.ConstraintToAspect(st.aspect)
	cv := ctx.Canvas()
	cv.FillRect(z, d.BackColor)
	if d.Text != "" {
		cv.Text(d.Text, z, d.FrontColor)
	}
}

func (TextField) Geometry(st *textFieldState, _ *TextFieldData) component.ControlGeometry {
	return component.Fixed(st.aspect)
}
