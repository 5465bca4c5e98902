//go:build fyne && cgo

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
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"panelforge/internal/config"
	"panelforge/internal/crash"
	"panelforge/internal/export"
	"panelforge/internal/hooks"
	applog "panelforge/internal/log"
	"panelforge/internal/vector"
)

// Run opens a window showing the scene at scenePath, redrawn at the
// configured frame rate. Left click delivers a pointer press, right click
// selects the node under the pointer.
func Run(scenePath string) error {
	defer crash.Recover(scenePath)
	cfg, password, err := config.Load()
	if err != nil {
		return err
	}
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("ui")
	l.Info("starting viewer", slog.String("scene", scenePath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, closeHooks, err := hooks.Open(ctx, cfg.Hooks, password)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeHooks(); err != nil {
			l.Warn("closing hook sources", slog.Any("err", err))
		}
	}()

	bg, err := vector.ParseHex(cfg.Render.Background)
	if err != nil {
		l.Warn("bad background colour, using black", slog.Any("err", err))
		bg = vector.Black
	}
	opt := export.Options{Background: bg}
	if cfg.Render.FontFile != "" {
		if tt, err := export.LoadTrueType(cfg.Render.FontFile); err != nil {
			l.Warn("font not loaded, using Go Regular", slog.Any("err", err))
		} else {
			opt.Fonts = tt
		}
	}

	sess, err := NewSession(scenePath, src, opt, cfg.Scene.Poll())
	if err != nil {
		return err
	}
	go func() {
		if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error("scene watcher stopped", slog.Any("err", err))
		}
	}()

	fyneApp := app.NewWithID("dev.panelforge.viewer")
	w := fyneApp.NewWindow("panelforge - " + filepath.Base(scenePath))
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", cfg.Render.Width)
	winH := prefs.IntWithFallback("window.height", cfg.Render.Height)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	surface := NewPanelSurface(sess, cfg.Render.FrameInterval())
	w.SetContent(container.NewBorder(nil, status, nil, nil, surface))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		cancel()
	})

	go func() {
		tick := time.NewTicker(cfg.Render.FrameInterval())
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				fyne.Do(func() {
					surface.Refresh()
					status.SetText(sess.Status())
				})
			}
		}
	}()

	w.ShowAndRun()
	return nil
}

// PanelSurface paints session frames into a raster and forwards taps.
type PanelSurface struct {
	widget.BaseWidget
	sess  *Session
	frame time.Duration

	raster *canvas.Raster
	last   time.Time
}

var (
	_ fyne.Tappable          = (*PanelSurface)(nil)
	_ fyne.SecondaryTappable = (*PanelSurface)(nil)
	_ desktop.Hoverable      = (*PanelSurface)(nil)
)

func NewPanelSurface(sess *Session, frame time.Duration) *PanelSurface {
	p := &PanelSurface{sess: sess, frame: frame}
	p.raster = canvas.NewRaster(p.render)
	p.ExtendBaseWidget(p)
	return p
}

func (p *PanelSurface) render(w, h int) image.Image {
	now := time.Now()
	dt := p.frame
	if !p.last.IsZero() {
		dt = now.Sub(p.last)
	}
	p.last = now
	if w <= 0 || h <= 0 {
		return image.NewUniform(color.Black)
	}
	return p.sess.Frame(context.Background(), dt, w, h)
}

// toPixels converts a widget position to raster pixels.
func (p *PanelSurface) toPixels(pos fyne.Position) (float32, float32) {
	scale := float32(1)
	if c := fyne.CurrentApp().Driver().CanvasForObject(p); c != nil {
		scale = c.Scale()
	}
	return pos.X * scale, pos.Y * scale
}

func (p *PanelSurface) Tapped(e *fyne.PointEvent) {
	x, y := p.toPixels(e.Position)
	p.sess.Tap(x, y)
	p.Refresh()
}

func (p *PanelSurface) TappedSecondary(e *fyne.PointEvent) {
	x, y := p.toPixels(e.Position)
	if _, ok := p.sess.SelectAt(x, y); !ok {
		p.sess.ClearSelection()
	}
	p.Refresh()
}

func (p *PanelSurface) MouseIn(*desktop.MouseEvent)    {}
func (p *PanelSurface) MouseMoved(*desktop.MouseEvent) {}
func (p *PanelSurface) MouseOut()                      {}

func (p *PanelSurface) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (p *PanelSurface) CreateRenderer() fyne.WidgetRenderer {
	return &surfaceRenderer{p: p, objects: []fyne.CanvasObject{p.raster}}
}

type surfaceRenderer struct {
	p       *PanelSurface
	objects []fyne.CanvasObject
}

func (r *surfaceRenderer) Destroy()                     {}
func (r *surfaceRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *surfaceRenderer) MinSize() fyne.Size           { return r.p.MinSize() }
func (r *surfaceRenderer) Layout(size fyne.Size)        { r.p.raster.Resize(size) }
func (r *surfaceRenderer) Refresh()                     { canvas.Refresh(r.p.raster) }
