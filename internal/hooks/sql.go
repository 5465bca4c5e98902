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
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"panelforge/internal/component"
	applog "panelforge/internal/log"
)

// DefaultQuery reads the hook table shared by the SQLite and Postgres stores.
const DefaultQuery = `SELECT component, property, value FROM hooks`

// SQLSource reads hooks from a table of (component, property, value) rows
// where value holds JSON. Values that are not valid JSON are used as plain
// strings. The table is queried at most once per Every; frames in between
// get the cached result.
type SQLSource struct {
	db    *sql.DB
	query string
	Every time.Duration
	log   *slog.Logger

	mu      sync.Mutex
	fetched time.Time
	hooks   component.Hooks
	now     func() time.Time
}

// NewSQLSource returns a source running query against db. An empty query
// selects DefaultQuery.
func NewSQLSource(db *sql.DB, query string, every time.Duration) *SQLSource {
	if query == "" {
		query = DefaultQuery
	}
	return &SQLSource{
		db:    db,
		query: query,
		Every: every,
		log:   applog.WithComponent("hooks").With(slog.String("source", "sql")),
		now:   time.Now,
	}
}

func (s *SQLSource) Hooks(ctx context.Context, _ uint64, _ time.Duration) (component.Hooks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.hooks != nil && now.Sub(s.fetched) < s.Every {
		return clone(s.hooks), nil
	}
	h, err := s.fetch(ctx)
	if err != nil {
		if s.hooks == nil {
			return component.Hooks{}, err
		}
		return clone(s.hooks), err
	}
	s.hooks, s.fetched = h, now
	return clone(h), nil
}

func (s *SQLSource) fetch(ctx context.Context) (component.Hooks, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query hooks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Warn("rows close", slog.Any("err", err))
		}
	}()
	out := component.Hooks{}
	for rows.Next() {
		var comp, prop, raw string
		if err := rows.Scan(&comp, &prop, &raw); err != nil {
			return nil, fmt.Errorf("scan hook row: %w", err)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out.Set(comp, prop, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hooks: %w", err)
	}
	return out, nil
}
