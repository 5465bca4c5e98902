/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"panelforge/internal/component"
	applog "panelforge/internal/log"
)

// FileSource reads hooks from a YAML or JSON file, re-reading it only when
// its size or modification time changes. A file that fails to parse keeps
// the previous values and reports the error.
type FileSource struct {
	path string
	log  *slog.Logger

	mu    sync.Mutex
	mod   time.Time
	size  int64
	read  bool
	hooks component.Hooks
}

// NewFileSource returns a source for path. The file need not exist yet.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path: path,
		log:  applog.WithComponent("hooks").With(slog.String("source", "file"), slog.String("path", path)),
	}
}

func (f *FileSource) Hooks(context.Context, uint64, time.Duration) (component.Hooks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return component.Hooks{}, nil
		}
		return clone(f.hooks), fmt.Errorf("stat hooks file: %w", err)
	}
	if f.read && st.ModTime().Equal(f.mod) && st.Size() == f.size {
		return clone(f.hooks), nil
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		return clone(f.hooks), fmt.Errorf("read hooks file: %w", err)
	}
	f.mod, f.size, f.read = st.ModTime(), st.Size(), true
	h, err := ParseDocument(f.path, b)
	if err != nil {
		f.log.Warn("hooks file rejected, keeping previous values", slog.Any("err", err))
		return clone(f.hooks), err
	}
	f.hooks = h
	f.log.Debug("hooks file loaded", slog.Int("components", len(h)))
	return clone(h), nil
}

// ParseDocument decodes a hooks document; names ending in .json are
// decoded as JSON, everything else as YAML.
func ParseDocument(name string, b []byte) (component.Hooks, error) {
	var m map[string]any
	if strings.EqualFold(filepath.Ext(name), ".json") {
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	} else if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return fromMap(m)
}
