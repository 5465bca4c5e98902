/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package component

import (
	"log/slog"
	"time"

	applog "panelforge/internal/log"
	"panelforge/internal/textlayout"
	"panelforge/internal/vector"
)

// Context carries per-frame resources through Init and Draw. It also keeps
// the shell stack: one recorder per node currently being drawn, so every
// primitive a node or its descendants paint grows that node's drawn zone.
type Context struct {
	Text    textlayout.Provider
	Log     *slog.Logger
	Frame   uint64
	Delta   time.Duration
	Elapsed time.Duration

	base   vector.Canvas
	shells []*vector.Recorder
	view   *View
}

// NewContext returns a context drawing to canvas. nil arguments fall back
// to a discarding canvas, the fixed 7x13 font and the app logger.
func NewContext(canvas vector.Canvas, text textlayout.Provider, l *slog.Logger) *Context {
	if canvas == nil {
		canvas = vector.Nop{}
	}
	if text == nil {
		text = textlayout.BasicProvider{}
	}
	if l == nil {
		l = applog.WithComponent("component")
	}
	return &Context{Text: text, Log: l, base: canvas}
}

// SetCanvas swaps the target surface between frames.
func (c *Context) SetCanvas(canvas vector.Canvas) {
	if canvas == nil {
		canvas = vector.Nop{}
	}
	c.base = canvas
}

// Canvas returns the surface for the node being drawn. Outside a draw call
// it is the raw target.
func (c *Context) Canvas() vector.Canvas {
	if n := len(c.shells); n > 0 {
		return c.shells[n-1]
	}
	return c.base
}

// Mark claims z for the node being drawn without painting.
func (c *Context) Mark(z vector.Zone) {
	if n := len(c.shells); n > 0 {
		c.shells[n-1].Bounds.MergeGrow(z)
	}
}

// Advance moves the frame clock. Hosts call it once before each Draw.
func (c *Context) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	c.Delta = dt
	c.Elapsed += dt
}

// View is the view currently drawn, nil outside View.Draw.
func (c *Context) View() *View { return c.view }

func (c *Context) push() {
	c.shells = append(c.shells, &vector.Recorder{Inner: c.base})
}

func (c *Context) pop() vector.Zone {
	n := len(c.shells)
	top := c.shells[n-1]
	c.shells = c.shells[:n-1]
	if n > 1 {
		c.shells[n-2].Bounds.MergeGrow(top.Bounds)
	}
	return top.Bounds
}

// Draw renders every layer into zone and records each node's drawn zone.
// It returns the zone covered by all layers together.
func (v *View) Draw(ctx *Context, zone vector.Zone, hooks Hooks) vector.Zone {
	ctx.view = v
	ctx.shells = ctx.shells[:0]
	defer func() { ctx.view = nil }()

	var total vector.Zone
	for li := 0; li < len(v.layers); li++ {
		for _, r := range v.layers[li] {
			total.MergeGrow(v.drawNode(ctx, r, zone, hooks))
		}
	}
	ctx.Frame++
	return total
}

func (v *View) drawNode(ctx *Context, id NodeID, zone vector.Zone, hooks Hooks) vector.Zone {
	n := &v.nodes[id]
	drawers := make([]ChildDrawer, len(n.children))
	for i, c := range n.children {
		drawers[i] = func(offered vector.Zone) vector.Zone {
			return v.drawNode(ctx, c, offered, hooks)
		}
	}
	var props map[string]any
	if n.name != "" {
		props = hooks[n.name]
	}

	ctx.push()
	n.inst.draw(ctx, zone, drawers, props)
	drawn := ctx.pop()
	v.nodes[id].drawn = drawn
	return drawn
}
