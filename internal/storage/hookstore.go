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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "panelforge/internal/log"
	"panelforge/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// hookSchemaVersion tracks the hook table layout.
const hookSchemaVersion = 1

// HookStore is a SQLite file holding the hooks table
// (component, property, value) where value is JSON. External feeders write
// it; a hooks.SQLSource reads it every frame.
type HookStore struct {
	db   *sql.DB
	path string
}

// OpenHookStore creates or opens the store at path in WAL mode so readers
// never block the writer.
func OpenHookStore(path string) (*HookStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "hookstore_open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("hook store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create hook store dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create hook store dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS hooks (
			component  TEXT NOT NULL,
			property   TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY(component, property)
		);`); err != nil {
		_ = db.Close()
		l.Error("ensure hooks table failed", slog.Any("err", err))
		return nil, fmt.Errorf("create hooks table: %w", err)
	}
	l.Info("hook store ready")
	return &HookStore{db: db, path: path}, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, hookSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	case cur > hookSchemaVersion:
		return fmt.Errorf("hook store schema %d is newer than supported %d", cur, hookSchemaVersion)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// DB exposes the handle for hook sources.
func (s *HookStore) DB() *sql.DB { return s.db }

func (s *HookStore) Path() string { return s.path }

func (s *HookStore) Close() error { return s.db.Close() }

// Set stores value as the JSON override of component.property.
func (s *HookStore) Set(ctx context.Context, component, property string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode hook %s.%s: %w", component, property, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO hooks(component, property, value, updated_at) VALUES(?, ?, ?, ?)
		ON CONFLICT(component, property) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		component, property, string(b), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set hook %s.%s: %w", component, property, err)
	}
	return nil
}

// Delete removes one override. Missing rows are not an error.
func (s *HookStore) Delete(ctx context.Context, component, property string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hooks WHERE component=? AND property=?`, component, property); err != nil {
		return fmt.Errorf("delete hook %s.%s: %w", component, property, err)
	}
	return nil
}

// Clear removes every override.
func (s *HookStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hooks`); err != nil {
		return fmt.Errorf("clear hooks: %w", err)
	}
	return nil
}
