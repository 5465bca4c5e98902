/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the user
// config directory, overridden by PF_* environment variables. The Postgres
// password for the hook table lives in the OS keyring, never in the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	applog "panelforge/internal/log"
)

type RenderConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	FPS        int    `yaml:"fps"`
	Background string `yaml:"background"`
	// FontFile is a TTF used for raster text; empty selects Go Regular.
	FontFile string `yaml:"font_file"`
}

type SceneConfig struct {
	Path string `yaml:"path"`
	// Validate checks scenes against the JSON schema before building.
	Validate bool `yaml:"validate"`
	PollMs   int  `yaml:"poll_ms"`
}

// HooksConfig selects where per-frame hook values come from. Kind is a
// comma separated list of file, script, sqlite, postgres and udp; several
// kinds are merged in the order given.
type HooksConfig struct {
	Kind    string `yaml:"kind"`
	Path    string `yaml:"path"`
	Script  string `yaml:"script"`
	DSN     string `yaml:"dsn"`
	Query   string `yaml:"query"`
	Addr    string `yaml:"addr"`
	Mapping string `yaml:"mapping"`
	PollMs  int    `yaml:"poll_ms"`
	// Password is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the user-editable configuration.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Render        RenderConfig  `yaml:"render"`
	Scene         SceneConfig   `yaml:"scene"`
	Hooks         HooksConfig   `yaml:"hooks"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Hook source kinds.
const (
	HooksFile     = "file"
	HooksScript   = "script"
	HooksSQLite   = "sqlite"
	HooksPostgres = "postgres"
	HooksUDP      = "udp"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Render:        RenderConfig{Width: 800, Height: 600, FPS: 30, Background: "#000000"},
		Scene:         SceneConfig{Validate: true, PollMs: 500},
		Hooks:         HooksConfig{Addr: "127.0.0.1:49000", PollMs: 100},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "PF_CONFIG"
	EnvWidth        = "PF_RENDER_WIDTH"
	EnvHeight       = "PF_RENDER_HEIGHT"
	EnvFPS          = "PF_RENDER_FPS"
	EnvBackground   = "PF_RENDER_BACKGROUND"
	EnvFontFile     = "PF_FONT_FILE"
	EnvScene        = "PF_SCENE"
	EnvSceneNoCheck = "PF_SCENE_NO_VALIDATE"
	EnvScenePollMs  = "PF_SCENE_POLL_MS"
	EnvHooksKind    = "PF_HOOKS_KIND"
	EnvHooksPath    = "PF_HOOKS_PATH"
	EnvHooksScript  = "PF_HOOKS_SCRIPT"
	EnvHooksDSN     = "PF_HOOKS_DSN"
	EnvHooksQuery   = "PF_HOOKS_QUERY"
	EnvHooksAddr    = "PF_HOOKS_ADDR"
	EnvHooksMapping = "PF_HOOKS_MAPPING"
	EnvHooksPollMs  = "PF_HOOKS_POLL_MS"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "PF_LOG_LEVEL"
	EnvLogFormat = "PF_LOG_FORMAT"
	EnvLogSource = "PF_LOG_SOURCE"
	EnvLogFile   = "PF_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "panelforge"
	keyringDBPass  = "hooks_db_password"
)

// SecretStore abstracts the keyring so tests can stub it.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var secretStore SecretStore = osKeyring{}

// SetSecretStore replaces the keyring and returns a function restoring the
// previous one.
func SetSecretStore(s SecretStore) (restore func()) {
	prev := secretStore
	secretStore = s
	return func() { secretStore = prev }
}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path. PF_CONFIG wins.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "panelforge")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "panelforge")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "panelforge")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "panelforge")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file (if present), applies defaults and merges
// environment overrides. The database password comes from the keyring and
// is returned separately; a missing keyring entry yields "".
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg, data)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, "", fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Hooks.Check(); err != nil {
		return cfg, "", err
	}
	pw, _ := secretStore.Get(keyringService, keyringDBPass)
	return cfg, pw, nil
}

// Save writes the config YAML and stores the password in the keyring
// when non-empty.
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := secretStore.Set(keyringService, keyringDBPass, password); err != nil {
			return fmt.Errorf("store password: %w", err)
		}
	}
	return nil
}

// ForgetPassword removes the stored database password.
func ForgetPassword() error {
	if err := secretStore.Delete(keyringService, keyringDBPass); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// mergeInto copies the non-zero fields of src over dst. Booleans are only
// copied when the file mentions them, so a file without a scene section
// keeps validation on.
func mergeInto(dst *AppConfig, src *AppConfig, raw []byte) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// render
	if src.Render.Width > 0 {
		dst.Render.Width = src.Render.Width
	}
	if src.Render.Height > 0 {
		dst.Render.Height = src.Render.Height
	}
	if src.Render.FPS > 0 {
		dst.Render.FPS = src.Render.FPS
	}
	setStr(&dst.Render.Background, src.Render.Background)
	setStr(&dst.Render.FontFile, src.Render.FontFile)
	// scene
	setStr(&dst.Scene.Path, src.Scene.Path)
	if mentions(raw, "scene", "validate") {
		dst.Scene.Validate = src.Scene.Validate
	}
	if src.Scene.PollMs > 0 {
		dst.Scene.PollMs = src.Scene.PollMs
	}
	// hooks
	if k := strings.TrimSpace(src.Hooks.Kind); k != "" {
		dst.Hooks.Kind = strings.ToLower(k)
	}
	setStr(&dst.Hooks.Path, src.Hooks.Path)
	setStr(&dst.Hooks.Script, src.Hooks.Script)
	setStr(&dst.Hooks.DSN, src.Hooks.DSN)
	setStr(&dst.Hooks.Query, src.Hooks.Query)
	setStr(&dst.Hooks.Addr, src.Hooks.Addr)
	setStr(&dst.Hooks.Mapping, src.Hooks.Mapping)
	if src.Hooks.PollMs > 0 {
		dst.Hooks.PollMs = src.Hooks.PollMs
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	setStr(&dst.Logging.File, src.Logging.File)
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// mentions reports whether the YAML document sets section.key.
func mentions(raw []byte, section, key string) bool {
	var probe map[string]map[string]any
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return false
	}
	_, ok := probe[section][key]
	return ok
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envInt(name string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func envStr(name string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envInt(EnvWidth, &cfg.Render.Width)
	envInt(EnvHeight, &cfg.Render.Height)
	envInt(EnvFPS, &cfg.Render.FPS)
	envStr(EnvBackground, &cfg.Render.Background)
	envStr(EnvFontFile, &cfg.Render.FontFile)

	envStr(EnvScene, &cfg.Scene.Path)
	if v := os.Getenv(EnvSceneNoCheck); v != "" {
		cfg.Scene.Validate = !parseBool(v)
	}
	envInt(EnvScenePollMs, &cfg.Scene.PollMs)

	if v := strings.TrimSpace(os.Getenv(EnvHooksKind)); v != "" {
		cfg.Hooks.Kind = strings.ToLower(v)
	}
	envStr(EnvHooksPath, &cfg.Hooks.Path)
	envStr(EnvHooksScript, &cfg.Hooks.Script)
	envStr(EnvHooksDSN, &cfg.Hooks.DSN)
	envStr(EnvHooksQuery, &cfg.Hooks.Query)
	envStr(EnvHooksAddr, &cfg.Hooks.Addr)
	envStr(EnvHooksMapping, &cfg.Hooks.Mapping)
	envInt(EnvHooksPollMs, &cfg.Hooks.PollMs)

	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	envStr(EnvLogFile, &cfg.Logging.File)
}

var overrideEnv = map[string]string{
	"render.width":      EnvWidth,
	"render.height":     EnvHeight,
	"render.fps":        EnvFPS,
	"render.background": EnvBackground,
	"render.font_file":  EnvFontFile,
	"scene.path":        EnvScene,
	"scene.validate":    EnvSceneNoCheck,
	"scene.poll_ms":     EnvScenePollMs,
	"hooks.kind":        EnvHooksKind,
	"hooks.path":        EnvHooksPath,
	"hooks.script":      EnvHooksScript,
	"hooks.dsn":         EnvHooksDSN,
	"hooks.query":       EnvHooksQuery,
	"hooks.addr":        EnvHooksAddr,
	"hooks.mapping":     EnvHooksMapping,
	"hooks.poll_ms":     EnvHooksPollMs,
	"logging.level":     EnvLogLevel,
	"logging.format":    EnvLogFormat,
	"logging.source":    EnvLogSource,
	"logging.file":      EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := overrideEnv[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Kinds returns the configured hook source kinds in order.
func (h HooksConfig) Kinds() []string {
	var out []string
	for _, k := range strings.Split(h.Kind, ",") {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && k != "none" {
			out = append(out, k)
		}
	}
	return out
}

// Check reports unknown kinds and kinds missing their required setting.
func (h HooksConfig) Check() error {
	var errs []error
	for _, k := range h.Kinds() {
		switch k {
		case HooksFile:
			if h.Path == "" {
				errs = append(errs, errors.New("hooks: file source needs path"))
			}
		case HooksScript:
			if h.Script == "" {
				errs = append(errs, errors.New("hooks: script source needs script"))
			}
		case HooksSQLite:
			if h.Path == "" {
				errs = append(errs, errors.New("hooks: sqlite source needs path"))
			}
		case HooksPostgres:
			// empty DSN falls back to PF_PG_DSN / DATABASE_URL
		case HooksUDP:
			if h.Mapping == "" {
				errs = append(errs, errors.New("hooks: udp source needs mapping"))
			}
		default:
			errs = append(errs, fmt.Errorf("hooks: unknown kind %q", k))
		}
	}
	return errors.Join(errs...)
}

// Poll returns the hook poll interval.
func (h HooksConfig) Poll() time.Duration {
	if h.PollMs <= 0 {
		return time.Duration(Defaults().Hooks.PollMs) * time.Millisecond
	}
	return time.Duration(h.PollMs) * time.Millisecond
}

// Poll returns the scene poll interval.
func (s SceneConfig) Poll() time.Duration {
	if s.PollMs <= 0 {
		return time.Duration(Defaults().Scene.PollMs) * time.Millisecond
	}
	return time.Duration(s.PollMs) * time.Millisecond
}

// FrameInterval returns the time between frames at the configured FPS.
func (r RenderConfig) FrameInterval() time.Duration {
	fps := r.FPS
	if fps <= 0 {
		fps = Defaults().Render.FPS
	}
	return time.Second / time.Duration(fps)
}

// LogOptions converts the logging section for applog.Init.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}
