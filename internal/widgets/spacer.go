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
	"panelforge/internal/vector"
)

type SpacerData struct {
	// Factor scales the child's zone around the same centre.
	Factor float32 `json:"factor"`
}

// Spacer hands its single child a scaled copy of its own zone. Its
// geometry is the child's.
type Spacer struct{}

func (Spacer) Name() string                    { return "Spacer" }
func (Spacer) MaxChildren() int                { return 1 }
func (Spacer) DefaultData() (SpacerData, bool) { return SpacerData{Factor: 1}, true }

func (Spacer) Init(_ *component.Context, _ *SpacerData, children []component.ControlGeometry) component.ControlGeometry {
	if len(children) == 0 {
		return component.Free()
	}
	return children[0]
}

func (Spacer) Draw(_ *component.Context, zone vector.Zone, children []component.ChildDrawer, _ *component.ControlGeometry, d *SpacerData) {
	if len(children) == 0 {
		return
	}
	children[0](zone.Scale(d.Factor))
}

func (Spacer) Geometry(child *component.ControlGeometry, _ *SpacerData) component.ControlGeometry {
	return *child
}
