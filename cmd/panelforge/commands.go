/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fogleman/gg"

	"panelforge/internal/backend"
	"panelforge/internal/component"
	"panelforge/internal/config"
	"panelforge/internal/export"
	"panelforge/internal/hooks"
	"panelforge/internal/storage"
	"panelforge/internal/textlayout"
	"panelforge/internal/ui"
	"panelforge/internal/vector"
	"panelforge/internal/widgets"
)

// settleFrames lets the relaxing layouts converge before a one-shot render.
const settleFrames = 30

type cli struct {
	cfg      config.AppConfig
	password string
	out      io.Writer
	log      *slog.Logger
}

func parseSize(s string) (w, h int, err error) {
	a, b, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	if w, err = strconv.Atoi(a); err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("size %q: bad width", s)
	}
	if h, err = strconv.Atoi(b); err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("size %q: bad height", s)
	}
	return w, h, nil
}

func (c *cli) fonts() textlayout.Provider {
	if f := c.cfg.Render.FontFile; f != "" {
		tt, err := export.LoadTrueType(f)
		if err == nil {
			return tt
		}
		c.log.Warn("font not loaded, using Go Regular", slog.String("font", f), slog.Any("err", err))
	}
	return export.GoRegular()
}

// options builds render options from the config; size overrides it.
func (c *cli) options(size string) (export.Options, error) {
	opt := export.Options{
		Width:  c.cfg.Render.Width,
		Height: c.cfg.Render.Height,
		Settle: settleFrames,
		Fonts:  c.fonts(),
	}
	if size != "" {
		w, h, err := parseSize(size)
		if err != nil {
			return opt, err
		}
		opt.Width, opt.Height = w, h
	}
	if bg := c.cfg.Render.Background; bg != "" {
		col, err := vector.ParseHex(bg)
		if err != nil {
			return opt, fmt.Errorf("render.background: %w", err)
		}
		opt.Background = col
	}
	return opt, nil
}

func (c *cli) loadScene(path string) ([]byte, error) {
	if c.cfg.Scene.Validate {
		return storage.Load(path)
	}
	return os.ReadFile(path)
}

func (c *cli) build(path string, text textlayout.Provider) (*component.View, *component.Context, error) {
	doc, err := c.loadScene(path)
	if err != nil {
		return nil, nil, err
	}
	ctx := component.NewContext(nil, text, c.log)
	v, err := widgets.NewManager().Build(ctx, doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, ctx, nil
}

// snapshotHooks reads one frame of hooks from the configured sources.
func (c *cli) snapshotHooks(ctx context.Context) component.Hooks {
	if len(c.cfg.Hooks.Kinds()) == 0 {
		return nil
	}
	src, closeAll, err := hooks.Open(ctx, c.cfg.Hooks, c.password)
	if err != nil {
		c.log.Warn("hook sources unavailable, rendering without hooks", slog.Any("err", err))
		return nil
	}
	defer func() { _ = closeAll() }()
	h, err := src.Hooks(ctx, 0, 0)
	if err != nil {
		c.log.Warn("hook source failed", slog.Any("err", err))
	}
	return h
}

func (c *cli) validate(path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := storage.Validate(doc); err != nil {
		var ve *storage.ValidationError
		if errors.As(err, &ve) {
			for _, p := range ve.Problems {
				fmt.Fprintln(c.out, "  -", p)
			}
		}
		return err
	}
	v, err := widgets.NewManager().Build(component.NewContext(nil, c.fonts(), c.log), doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "ok: %s (%d nodes)\n", path, v.Len())
	return nil
}

func (c *cli) render(scene, out, size string) error {
	opt, err := c.options(size)
	if err != nil {
		return err
	}
	v, ctx, err := c.build(scene, opt.Fonts)
	if err != nil {
		return err
	}
	opt.Hooks = c.snapshotHooks(context.Background())
	if err := export.RenderFile(v, ctx, out, opt); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %s (%dx%d)\n", out, opt.Width, opt.Height)
	return nil
}

func (c *cli) tree(scene string) error {
	opt, err := c.options("")
	if err != nil {
		return err
	}
	v, ctx, err := c.build(scene, opt.Fonts)
	if err != nil {
		return err
	}
	// lay out once so drawn zones are known
	_ = export.RenderImage(v, ctx, opt)
	printTree(c.out, v)
	return nil
}

func (c *cli) click(scene, xs, ys, out string) error {
	x, err := strconv.ParseFloat(xs, 32)
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(ys, 32)
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}
	opt, err := c.options("")
	if err != nil {
		return err
	}
	v, ctx, err := c.build(scene, opt.Fonts)
	if err != nil {
		return err
	}
	opt.Hooks = c.snapshotHooks(context.Background())
	_ = export.RenderImage(v, ctx, opt)

	p := vector.V(float32(x), float32(y))
	hits := v.Dispatch(component.Event{Kind: component.PointerPress, Pos: p})
	v.Dispatch(component.Event{Kind: component.PointerRelease, Pos: p})
	for _, id := range v.HitTest(p) {
		fmt.Fprintf(c.out, "hit %s %q\n", v.Type(id), v.Name(id))
	}
	fmt.Fprintf(c.out, "%d node(s) hit\n", hits)

	opt.Settle = 0
	if err := export.RenderFile(v, ctx, out, opt); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %s\n", out)
	return nil
}

func (c *cli) watch(scene, out string) error {
	if f, err := export.Format(out); err != nil || f != "png" {
		return fmt.Errorf("watch writes png frames, got %q", out)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src, closeAll, err := hooks.Open(ctx, c.cfg.Hooks, c.password)
	if err != nil {
		return err
	}
	defer func() { _ = closeAll() }()
	opt, err := c.options("")
	if err != nil {
		return err
	}
	sess, err := ui.NewSession(scene, src, opt, c.cfg.Scene.Poll())
	if err != nil {
		return err
	}
	go func() {
		if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
			c.log.Error("scene watcher stopped", slog.Any("err", err))
		}
	}()
	fmt.Fprintf(c.out, "watching %s, writing %s (Ctrl+C to stop)\n", scene, out)
	return c.watchLoop(ctx, sess, out, opt.Width, opt.Height, c.cfg.Render.FrameInterval(), 0)
}

// watchLoop renders a frame per interval and writes one to out whenever
// the scene reloads and otherwise about once a second. maxFrames > 0 stops
// after that many frames.
func (c *cli) watchLoop(ctx context.Context, sess *ui.Session, out string, w, h int, interval time.Duration, maxFrames int) error {
	perSecond := int(time.Second / interval)
	if perSecond < 1 {
		perSecond = 1
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	dirty := true
	for frame := 0; maxFrames <= 0 || frame < maxFrames; frame++ {
		select {
		case <-ctx.Done():
			return nil
		case <-sess.Updates():
			dirty = true
		case <-tick.C:
		}
		img := sess.Frame(ctx, interval, w, h)
		if dirty || frame%perSecond == 0 {
			if err := gg.SavePNG(out, img); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
			if dirty {
				_, gen := sess.View()
				fmt.Fprintf(c.out, "wrote %s (scene v%d)\n", out, gen)
			}
			dirty = false
		}
	}
	return nil
}

func (c *cli) format(scene string) error {
	doc, err := storage.Load(scene)
	if err != nil {
		return err
	}
	if err := storage.Save(scene, doc); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "formatted %s\n", scene)
	return nil
}

func (c *cli) hook(db, comp, prop, raw string) error {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if strings.HasPrefix(db, "postgres://") || strings.HasPrefix(db, "postgresql://") {
		pg, err := backend.Open(ctx, backend.WithPassword(db, c.password))
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := backend.SetHook(ctx, pg, comp, prop, value); err != nil {
			return err
		}
	} else {
		store, err := storage.OpenHookStore(db)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Set(ctx, comp, prop, value); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.out, "%s.%s = %v\n", comp, prop, value)
	return nil
}
