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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"panelforge/internal/component"
	applog "panelforge/internal/log"
)

// DefaultScriptTimeout bounds one call of the script's hooks function.
const DefaultScriptTimeout = 200 * time.Millisecond

// ErrNoHooksFunc is returned when a script does not define hooks().
var ErrNoHooksFunc = errors.New("script does not define function hooks(frame, seconds)")

// ScriptSource runs a JavaScript program defining
//
//	function hooks(frame, seconds) { return {name: {property: value}} }
//
// and calls it once per frame. Top-level state in the script persists
// between calls.
type ScriptSource struct {
	name    string
	log     *slog.Logger
	Timeout time.Duration

	mu sync.Mutex
	vm *goja.Runtime
	fn goja.Callable
}

// LoadScript reads and compiles the script at path.
func LoadScript(path string) (*ScriptSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return NewScriptSource(path, string(b))
}

// NewScriptSource runs src once and looks up its hooks function.
func NewScriptSource(name, src string) (*ScriptSource, error) {
	s := &ScriptSource{
		name:    name,
		log:     applog.WithComponent("hooks").With(slog.String("source", "script"), slog.String("script", name)),
		Timeout: DefaultScriptTimeout,
		vm:      goja.New(),
	}
	s.registerConsole()
	if _, err := s.vm.RunScript(name, src); err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	fn, ok := goja.AssertFunction(s.vm.Get("hooks"))
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoHooksFunc)
	}
	s.fn = fn
	return s, nil
}

func (s *ScriptSource) registerConsole() {
	console := s.vm.NewObject()
	logAt := func(level slog.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, a := range call.Arguments {
				parts[i] = a.String()
			}
			s.log.Log(context.Background(), level, strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	_ = console.Set("log", logAt(slog.LevelInfo))
	_ = console.Set("warn", logAt(slog.LevelWarn))
	_ = console.Set("error", logAt(slog.LevelError))
	_ = s.vm.Set("console", console)
}

func (s *ScriptSource) Hooks(ctx context.Context, frame uint64, elapsed time.Duration) (component.Hooks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, func() { s.vm.Interrupt(ctx.Err()) })
	res, err := s.fn(goja.Undefined(), s.vm.ToValue(frame), s.vm.ToValue(elapsed.Seconds()))
	stop()
	s.vm.ClearInterrupt()
	if err != nil {
		return nil, fmt.Errorf("%s: hooks(%d): %w", s.name, frame, err)
	}
	if res == nil || goja.IsUndefined(res) || goja.IsNull(res) {
		return component.Hooks{}, nil
	}
	m, ok := res.Export().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w: got %s", s.name, ErrShape, res.ExportType())
	}
	return fromMap(m)
}
