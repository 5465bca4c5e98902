/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"panelforge/internal/component"
)

var (
	typeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
	layerHead = lipgloss.NewStyle().Underline(true)
)

func geometryString(g component.ControlGeometry) string {
	if g.HasAspect {
		return fmt.Sprintf("aspect %.3g, pref %.3g", g.Aspect, g.SizePreference)
	}
	return fmt.Sprintf("free, pref %.3g", g.SizePreference)
}

// printTree writes every layer of v, one node per line.
func printTree(w io.Writer, v *component.View) {
	var node func(id component.NodeID, depth int)
	node = func(id component.NodeID, depth int) {
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(typeStyle.Render(v.Type(id)))
		if name := v.Name(id); name != "" {
			b.WriteString(" ")
			b.WriteString(nameStyle.Render(fmt.Sprintf("%q", name)))
		}
		info := fmt.Sprintf("#%d  %s", id, geometryString(v.Geometry(id)))
		if z := v.Drawn(id); !z.IsEmpty() {
			info += fmt.Sprintf("  drawn %.0fx%.0f at (%.0f,%.0f)", z.Size.X, z.Size.Y, z.Left(), z.Top())
		}
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(info))
		fmt.Fprintln(w, b.String())
		for _, c := range v.Children(id) {
			node(c, depth+1)
		}
	}
	for i := 0; i < v.Layers(); i++ {
		if v.Layers() > 1 {
			fmt.Fprintln(w, layerHead.Render(fmt.Sprintf("layer %d", i)))
		}
		for _, root := range v.Layer(i) {
			node(root, 0)
		}
	}
}
