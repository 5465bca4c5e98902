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
	"path/filepath"
	"testing"
	"time"

	"panelforge/internal/storage"
)

func TestSQLSourceReadsHookTable(t *testing.T) {
	store, err := storage.OpenHookStore(filepath.Join(t.TempDir(), "hooks.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	if err := store.Set(ctx, "rpm", "value", 1200); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "gear", "on", true); err != nil {
		t.Fatal(err)
	}
	// a raw, non-JSON value is passed through as a string
	if _, err := store.DB().ExecContext(ctx, `INSERT INTO hooks(component, property, value, updated_at) VALUES('msg','text','hello','0')`); err != nil {
		t.Fatal(err)
	}

	src := NewSQLSource(store.DB(), "", time.Second)
	clock := time.Unix(1000, 0)
	src.now = func() time.Time { return clock }

	h, err := src.Hooks(ctx, 0, 0)
	if err != nil {
		t.Fatalf("Hooks: %v", err)
	}
	if num(t, h["rpm"]["value"]) != 1200 || h["gear"]["on"] != true || h["msg"]["text"] != "hello" {
		t.Fatalf("hooks = %v", h)
	}

	if err := store.Set(ctx, "rpm", "value", 3000); err != nil {
		t.Fatal(err)
	}
	clock = clock.Add(500 * time.Millisecond)
	h, _ = src.Hooks(ctx, 1, 0)
	if num(t, h["rpm"]["value"]) != 1200 {
		t.Fatalf("cache bypassed: %v", h["rpm"])
	}
	clock = clock.Add(time.Second)
	h, _ = src.Hooks(ctx, 2, 0)
	if num(t, h["rpm"]["value"]) != 3000 {
		t.Fatalf("stale after interval: %v", h["rpm"])
	}
}

func TestSQLSourceBadQuery(t *testing.T) {
	store, err := storage.OpenHookStore(filepath.Join(t.TempDir(), "hooks.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	src := NewSQLSource(store.DB(), "SELECT nope FROM missing", 0)
	h, err := src.Hooks(context.Background(), 0, 0)
	if err == nil || len(h) != 0 {
		t.Fatalf("bad query: %v, %v", h, err)
	}
}
