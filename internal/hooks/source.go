/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package hooks provides the sources hosts poll once per frame for hook
// values: files, scripts, database tables and UDP telemetry.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"panelforge/internal/component"
)

// Source yields the hook values for one frame. Implementations may cache;
// the returned map belongs to the caller.
type Source interface {
	Hooks(ctx context.Context, frame uint64, elapsed time.Duration) (component.Hooks, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context, frame uint64, elapsed time.Duration) (component.Hooks, error)

func (f Func) Hooks(ctx context.Context, frame uint64, elapsed time.Duration) (component.Hooks, error) {
	return f(ctx, frame, elapsed)
}

// Static always yields a copy of the same values.
type Static component.Hooks

func (s Static) Hooks(context.Context, uint64, time.Duration) (component.Hooks, error) {
	return clone(component.Hooks(s)), nil
}

// Multi merges its sources in order; later sources win on conflicts. A
// failing source is skipped and its error joined into the result, so the
// caller still gets the values of the others.
type Multi []Source

func (m Multi) Hooks(ctx context.Context, frame uint64, elapsed time.Duration) (component.Hooks, error) {
	out := component.Hooks{}
	var errs []error
	for i, s := range m {
		h, err := s.Hooks(ctx, frame, elapsed)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %d: %w", i, err))
			continue
		}
		out.Merge(h)
	}
	return out, errors.Join(errs...)
}

func clone(h component.Hooks) component.Hooks {
	out := make(component.Hooks, len(h))
	out.Merge(h)
	return out
}

// fromMap converts a decoded document of the form
// {component: {property: value}} into Hooks.
func fromMap(m map[string]any) (component.Hooks, error) {
	out := make(component.Hooks, len(m))
	for name, v := range m {
		props, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is %T, want an object", ErrShape, name, v)
		}
		for k, pv := range props {
			out.Set(name, k, pv)
		}
	}
	return out, nil
}

// ErrShape reports hook input that is not a two level object.
var ErrShape = errors.New("hooks must map component names to property objects")
