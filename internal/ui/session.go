/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"panelforge/internal/component"
	"panelforge/internal/export"
	"panelforge/internal/hooks"
	applog "panelforge/internal/log"
	"panelforge/internal/storage"
	"panelforge/internal/vector"
	"panelforge/internal/widgets"
)

// Session drives a live scene for a host: it follows the scene file,
// pulls hooks once per frame and renders frames. Frame, Tap and SelectAt
// may be called from different goroutines.
type Session struct {
	reloader *storage.Reloader
	hooks    hooks.Source
	opt      export.Options
	log      *slog.Logger

	mu      sync.Mutex
	view    *component.View
	gen     uint64
	ctx     *component.Context
	sel     *widgets.Selection
	hookErr string
}

// NewSession loads the scene at path; the first build must succeed.
// src may be nil for a scene without dynamic data.
func NewSession(path string, src hooks.Source, opt export.Options, poll time.Duration) (*Session, error) {
	if opt.Fonts == nil {
		opt.Fonts = export.GoRegular()
	}
	if src == nil {
		src = hooks.Static{}
	}
	l := applog.WithComponent("ui").With(slog.String("scene", path))
	// builds run on the watcher goroutine; give them their own face cache
	buildFonts := opt.Fonts
	if tt, ok := buildFonts.(*export.TrueType); ok {
		buildFonts = tt.Clone()
	}
	build := func(doc []byte) (*component.View, error) {
		return widgets.NewManager().Build(component.NewContext(nil, buildFonts, l), doc)
	}
	r, err := storage.NewReloader(path, build, poll)
	if err != nil {
		return nil, err
	}
	s := &Session{
		reloader: r,
		hooks:    src,
		opt:      opt,
		log:      l,
		ctx:      component.NewContext(nil, opt.Fonts, l),
	}
	s.view, s.gen = r.View()
	return s, nil
}

// Run watches the scene file until ctx is done.
func (s *Session) Run(ctx context.Context) error { return s.reloader.Run(ctx) }

// Updates signals after each successful reload.
func (s *Session) Updates() <-chan struct{} { return s.reloader.Updates() }

// Check reloads the scene now if the file changed.
func (s *Session) Check() (bool, error) { return s.reloader.Check() }

// adopt swaps in a newer view. Node ids change, so the selection goes.
func (s *Session) adopt() {
	v, gen := s.reloader.View()
	if gen == s.gen {
		return
	}
	s.view, s.gen, s.sel = v, gen, nil
	s.log.Info("view replaced", slog.Uint64("generation", gen))
}

// Frame advances the clock by dt and renders a w x h frame.
func (s *Session) Frame(ctx context.Context, dt time.Duration, w, h int) image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adopt()

	hk, err := s.hooks.Hooks(ctx, s.ctx.Frame+1, s.ctx.Elapsed+dt)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg != s.hookErr {
		// log transitions only, not every frame
		if err != nil {
			s.log.Warn("hook source failed", slog.Any("err", err))
		} else {
			s.log.Info("hook source recovered")
		}
		s.hookErr = msg
	}

	opt := s.opt
	opt.Width, opt.Height = w, h
	opt.Settle = 0
	opt.Step = dt
	opt.Hooks = hk
	return export.RenderImage(s.view, s.ctx, opt)
}

// Tap delivers a press and release at pixel position (x, y) of the last
// frame and returns the number of nodes hit.
func (s *Session) Tap(x, y float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := vector.V(x, y)
	n := s.view.Dispatch(component.Event{Kind: component.PointerPress, Pos: p})
	s.view.Dispatch(component.Event{Kind: component.PointerRelease, Pos: p})
	return n
}

// SelectAt highlights the innermost node under (x, y), replacing any
// previous selection. A point over nothing clears the selection.
func (s *Session) SelectAt(x, y float32) (component.NodeID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	var target component.NodeID = -1
	for _, id := range s.view.HitTest(vector.V(x, y)) {
		if s.view.Type(id) != "Highlight" {
			target = id
		}
	}
	if target < 0 {
		return -1, false
	}
	sel, err := widgets.Select(s.ctx, s.view, target)
	if err != nil {
		s.log.Warn("select failed", slog.Int("node", int(target)), slog.Any("err", err))
		return -1, false
	}
	s.sel = &sel
	return target, true
}

// ClearSelection removes the highlight, if any.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	if s.sel == nil {
		return
	}
	if err := s.sel.Clear(); err != nil {
		s.log.Warn("clear selection failed", slog.Any("err", err))
	}
	s.sel = nil
}

// Status is a one-line summary for a status bar.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := fmt.Sprintf("scene v%d, %d nodes, frame %d", s.gen, s.view.Len(), s.ctx.Frame)
	if s.sel != nil {
		id := s.sel.Target()
		out += fmt.Sprintf(", selected %s %q", s.view.Type(id), s.view.Name(id))
	}
	if err := s.reloader.Err(); err != nil {
		out += " | reload: " + err.Error()
	}
	if s.hookErr != "" {
		out += " | hooks: " + s.hookErr
	}
	return out
}

// View returns the current view and its generation.
func (s *Session) View() (*component.View, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view, s.gen
}
