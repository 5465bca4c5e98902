/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"panelforge/internal/component"
	applog "panelforge/internal/log"
)

// Builder turns a validated scene document into a view.
type Builder func(doc []byte) (*component.View, error)

type fileStamp struct {
	mod  time.Time
	size int64
}

// Reloader keeps the latest good view of a scene file. A rebuild that fails
// leaves the current view in place and is reported by Err. It is safe to
// read the view from the frame goroutine while Run watches the file.
type Reloader struct {
	path  string
	build Builder
	poll  time.Duration
	log   *slog.Logger

	mu      sync.Mutex
	view    *component.View
	gen     uint64
	lastErr error
	stamp   fileStamp

	updates chan struct{}
}

// NewReloader builds the scene once. The first build must succeed. poll is
// the mtime check interval used alongside file events, 0 for one second.
func NewReloader(path string, build Builder, poll time.Duration) (*Reloader, error) {
	if poll <= 0 {
		poll = time.Second
	}
	r := &Reloader{
		path:    path,
		build:   build,
		poll:    poll,
		log:     applog.WithComponent("storage").With(slog.String("scene", path)),
		updates: make(chan struct{}, 1),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// View returns the current view and its generation, which grows by one per
// successful reload.
func (r *Reloader) View() (*component.View, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view, r.gen
}

// Err is the error of the last reload attempt, nil after a success.
func (r *Reloader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Updates signals after each successful reload. Signals coalesce.
func (r *Reloader) Updates() <-chan struct{} { return r.updates }

func stampOf(path string) (fileStamp, error) {
	st, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{mod: st.ModTime(), size: st.Size()}, nil
}

// Reload reads and rebuilds the scene unconditionally.
func (r *Reloader) Reload() error {
	stamp, _ := stampOf(r.path)
	v, err := r.load()

	r.mu.Lock()
	r.stamp = stamp
	r.lastErr = err
	if err == nil {
		r.view = v
		r.gen++
	}
	gen := r.gen
	r.mu.Unlock()

	if err != nil {
		r.log.Warn("scene reload failed, keeping previous view", slog.Any("err", err))
		return err
	}
	r.log.Info("scene loaded", slog.Uint64("generation", gen), slog.Int("nodes", v.Len()))
	select {
	case r.updates <- struct{}{}:
	default:
	}
	return nil
}

func (r *Reloader) load() (*component.View, error) {
	doc, err := Load(r.path)
	if err != nil {
		return nil, err
	}
	v, err := r.build(doc)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", r.path, err)
	}
	return v, nil
}

// Check reloads when the file's size or mtime changed since the last
// attempt. changed reports whether a reload was attempted.
func (r *Reloader) Check() (changed bool, err error) {
	stamp, err := stampOf(r.path)
	if err != nil {
		return false, fmt.Errorf("stat scene: %w", err)
	}
	r.mu.Lock()
	same := stamp.size == r.stamp.size && stamp.mod.Equal(r.stamp.mod)
	r.mu.Unlock()
	if same {
		return false, nil
	}
	return true, r.Reload()
}

// Run watches the scene until ctx is done. File events trigger a check;
// the poll ticker covers file systems without notifications.
func (r *Reloader) Run(ctx context.Context) error {
	var events <-chan fsnotify.Event
	var errs <-chan error
	w, err := fsnotify.NewWatcher()
	if err == nil {
		// editors replace files by rename, so watch the directory
		if aerr := w.Add(filepath.Dir(r.path)); aerr != nil {
			r.log.Warn("watch scene dir failed, polling only", slog.Any("err", aerr))
		} else {
			events, errs = w.Events, w.Errors
		}
		defer w.Close()
	} else {
		r.log.Warn("file watcher unavailable, polling only", slog.Any("err", err))
	}

	tick := time.NewTicker(r.poll)
	defer tick.Stop()
	base := filepath.Clean(r.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != base || ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			r.check()
		case werr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.log.Warn("file watcher error", slog.Any("err", werr))
		case <-tick.C:
			r.check()
		}
	}
}

func (r *Reloader) check() {
	if _, err := r.Check(); err != nil && errors.Is(err, os.ErrNotExist) {
		// mid-rename; the next event or tick picks up the new file
		r.log.Debug("scene missing", slog.Any("err", err))
	}
}
