/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

type memSecrets map[string]string

func (m memSecrets) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}
func (m memSecrets) Set(service, key, value string) error { m[service+"/"+key] = value; return nil }
func (m memSecrets) Delete(service, key string) error {
	if _, ok := m[service+"/"+key]; !ok {
		return keyring.ErrNotFound
	}
	delete(m, service+"/"+key)
	return nil
}

// isolate points the config at a temp file and clears PF_* overrides.
func isolate(t *testing.T) (string, memSecrets) {
	t.Helper()
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "PF_") {
			t.Setenv(name, "")
		}
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, path)
	secrets := memSecrets{}
	t.Cleanup(SetSecretStore(secrets))
	return path, secrets
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, pw, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if pw != "" {
		t.Fatalf("password = %q, want empty", pw)
	}
	if cfg.Render.Width != 800 || cfg.Render.Height != 600 || !cfg.Scene.Validate || cfg.Hooks.Kinds() != nil {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestLoadMergesFile(t *testing.T) {
	path, _ := isolate(t)
	doc := `
render:
  width: 1024
  fps: 60
scene:
  path: panels/main.json
hooks:
  kind: file, UDP
  path: hooks.yaml
  mapping: xplane.map
logging:
  level: DEBUG
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Render.Width != 1024 || cfg.Render.Height != 600 || cfg.Render.FPS != 60 {
		t.Fatalf("render = %#v", cfg.Render)
	}
	if !cfg.Scene.Validate || cfg.Scene.Path != "panels/main.json" {
		t.Fatalf("scene = %#v", cfg.Scene)
	}
	if got := strings.Join(cfg.Hooks.Kinds(), "+"); got != "file+udp" {
		t.Fatalf("kinds = %q", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level = %q", cfg.Logging.Level)
	}
	if got, want := cfg.Render.FrameInterval(), time.Second/60; got != want {
		t.Fatalf("FrameInterval = %v, want %v", got, want)
	}
}

func TestValidateFalseInFileIsKept(t *testing.T) {
	path, _ := isolate(t)
	if err := os.WriteFile(path, []byte("scene:\n  validate: false\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene.Validate {
		t.Fatalf("scene.validate not merged")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path, _ := isolate(t)
	if err := os.WriteFile(path, []byte("render: [1,"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvWidth, "320")
	t.Setenv(EnvHeight, "nope")
	t.Setenv(EnvSceneNoCheck, "yes")
	t.Setenv(EnvHooksKind, "Postgres")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/pf.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Render.Width != 320 || cfg.Render.Height != 600 {
		t.Fatalf("render = %#v", cfg.Render)
	}
	if cfg.Scene.Validate {
		t.Fatalf("PF_SCENE_NO_VALIDATE ignored")
	}
	if k := cfg.Hooks.Kinds(); len(k) != 1 || k[0] != HooksPostgres {
		t.Fatalf("kinds = %v", k)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/pf.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
	if name, ok := EnvOverrideFor("render.width"); !ok || name != EnvWidth {
		t.Fatalf("EnvOverrideFor(render.width) = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("render.fps"); ok {
		t.Fatalf("render.fps reported as overridden")
	}
	opts := cfg.Logging.LogOptions()
	if opts.Level != "error" || !opts.AddSource {
		t.Fatalf("LogOptions = %#v", opts)
	}
}

func TestHooksCheck(t *testing.T) {
	cases := []struct {
		name string
		h    HooksConfig
		ok   bool
	}{
		{"none", HooksConfig{}, true},
		{"explicit none", HooksConfig{Kind: "none"}, true},
		{"file ok", HooksConfig{Kind: "file", Path: "h.yaml"}, true},
		{"file missing path", HooksConfig{Kind: "file"}, false},
		{"script missing", HooksConfig{Kind: "script"}, false},
		{"postgres env dsn", HooksConfig{Kind: "postgres"}, true},
		{"udp missing mapping", HooksConfig{Kind: "udp"}, false},
		{"unknown", HooksConfig{Kind: "mqtt"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.h.Check(); (err == nil) != c.ok {
				t.Fatalf("Check() = %v, want ok=%v", err, c.ok)
			}
		})
	}
}

func TestSaveRoundTripAndPassword(t *testing.T) {
	path, secrets := isolate(t)
	cfg := Defaults()
	cfg.Hooks.Kind = HooksPostgres
	cfg.Hooks.DSN = "postgres://pf@db/panels"
	if err := Save(cfg, "hunter2"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "hunter2") {
		t.Fatalf("password written to config file")
	}
	got, pw, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if pw != "hunter2" || got.Hooks.DSN != cfg.Hooks.DSN {
		t.Fatalf("round trip: pw=%q dsn=%q", pw, got.Hooks.DSN)
	}
	if err := ForgetPassword(); err != nil {
		t.Fatalf("ForgetPassword: %v", err)
	}
	if err := ForgetPassword(); err != nil {
		t.Fatalf("second ForgetPassword: %v", err)
	}
	if len(secrets) != 0 {
		t.Fatalf("secrets left: %v", secrets)
	}
}

func TestPollDefaults(t *testing.T) {
	if got := (HooksConfig{}).Poll(); got != 100*time.Millisecond {
		t.Fatalf("hooks poll = %v", got)
	}
	if got := (SceneConfig{PollMs: 250}).Poll(); got != 250*time.Millisecond {
		t.Fatalf("scene poll = %v", got)
	}
}
