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

	"panelforge/internal/backend"
	"panelforge/internal/config"
	applog "panelforge/internal/log"
	"panelforge/internal/storage"
)

// Open builds the sources named by cfg, merged with Multi when there are
// several. Background readers run until ctx is done. The returned func releases
// sockets and database handles. With no kinds configured Open returns an
// empty Static source.
func Open(ctx context.Context, cfg config.HooksConfig, password string) (_ Source, _ func() error, err error) {
	if err := cfg.Check(); err != nil {
		return nil, nil, err
	}
	l := applog.WithComponent("hooks")
	var (
		sources []Source
		closers []func() error
	)
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = cleanup()
		}
	}()

	for _, kind := range cfg.Kinds() {
		switch kind {
		case config.HooksFile:
			sources = append(sources, NewFileSource(cfg.Path))
		case config.HooksScript:
			s, err := LoadScript(cfg.Script)
			if err != nil {
				return nil, nil, err
			}
			sources = append(sources, s)
		case config.HooksSQLite:
			store, err := storage.OpenHookStore(cfg.Path)
			if err != nil {
				return nil, nil, err
			}
			closers = append(closers, store.Close)
			sources = append(sources, NewSQLSource(store.DB(), cfg.Query, cfg.Poll()))
		case config.HooksPostgres:
			dsn := cfg.DSN
			if dsn == "" {
				dsn = backend.DSNFromEnv()
			}
			db, err := backend.Open(ctx, backend.WithPassword(dsn, password))
			if err != nil {
				return nil, nil, err
			}
			closers = append(closers, db.Close)
			sources = append(sources, NewSQLSource(db, cfg.Query, cfg.Poll()))
		case config.HooksUDP:
			b, err := os.ReadFile(cfg.Mapping)
			if err != nil {
				return nil, nil, fmt.Errorf("read udp mapping: %w", err)
			}
			maps, err := ParseMappings(string(b))
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", cfg.Mapping, err)
			}
			u, err := ListenUDP(cfg.Addr, maps)
			if err != nil {
				return nil, nil, err
			}
			closers = append(closers, u.Close)
			go func() {
				if rerr := u.Run(ctx); rerr != nil && !errors.Is(rerr, context.Canceled) {
					l.Error("udp reader stopped", slog.Any("err", rerr))
				}
			}()
			sources = append(sources, u)
		}
		l.Info("hook source ready", slog.String("kind", kind))
	}

	switch len(sources) {
	case 0:
		return Static{}, cleanup, nil
	case 1:
		return sources[0], cleanup, nil
	default:
		return Multi(sources), cleanup, nil
	}
}
