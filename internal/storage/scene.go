/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"panelforge/internal/component"
	applog "panelforge/internal/log"
)

const (
	BackupsDirName = ".panelforge-backups"
	// MaxBackups is the number of backups kept per scene file.
	MaxBackups = 20

	stampLayout = "20060102-150405.000"
)

// ErrInvalidScene marks documents rejected by the scene schema or the JSON
// parser.
var ErrInvalidScene = errors.New("invalid scene")

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid scene: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidScene }

//go:embed scene.schema.json
var schemaJSON []byte

var sceneSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Schema returns the scene JSON schema.
func Schema() []byte { return bytes.Clone(schemaJSON) }

// Validate checks doc against the scene schema. Only the tree shape is
// checked; component data is validated by the components when building.
func Validate(doc []byte) error {
	s, err := sceneSchema()
	if err != nil {
		return fmt.Errorf("compile scene schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range res.Errors() {
		ve.Problems = append(ve.Problems, e.String())
	}
	return ve
}

// Load reads and validates the scene at path.
func Load(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	if err := Validate(b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// LoadWithBackup loads path and falls back to the newest valid backup when
// the scene itself is unreadable or invalid. from names the file used.
func LoadWithBackup(path string) (doc []byte, from string, err error) {
	doc, err = Load(path)
	if err == nil {
		return doc, path, nil
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "load").With(slog.String("path", path))
	backups, berr := Backups(path)
	if berr != nil || len(backups) == 0 {
		if berr == nil {
			berr = errors.New("no backups found")
		}
		return nil, "", fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	for i := len(backups) - 1; i >= 0; i-- {
		b, lerr := Load(backups[i])
		if lerr != nil {
			l.Warn("skipping unusable backup", slog.String("backup", backups[i]), slog.Any("err", lerr))
			continue
		}
		l.Warn("scene unusable, loaded backup", slog.String("backup", backups[i]), slog.Any("err", err))
		return b, backups[i], nil
	}
	return nil, "", fmt.Errorf("%w; backup attempt: no valid backup", err)
}

// BuildFile loads the scene at path and builds it with m.
func BuildFile(ctx *component.Context, m *component.Manager, path string) (*component.View, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	v, err := m.Build(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Save validates doc and writes it indented to path with transactional
// semantics, keeping a timestamped backup of the previous file.
func Save(path string, doc []byte) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("scene path is required")
	}
	if err := Validate(doc); err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, doc, "", "  "); err != nil {
		return fmt.Errorf("format scene: %w", err)
	}
	pretty.WriteByte('\n')

	l := applog.WithOperation(applog.WithComponent("storage"), "save").With(slog.String("path", path))
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure scene dir: %w", err)
	}

	// back up the current file before replacing it
	if _, statErr := os.Stat(path); statErr == nil {
		bpath := backupPath(path, time.Now())
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current scene: %w", cerr)
		}
		if perr := pruneBackups(path, MaxBackups); perr != nil {
			l.Warn("prune backups failed", slog.Any("err", perr))
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, pretty.Bytes()); werr != nil {
		return fmt.Errorf("write temp scene: %w", werr)
	}
	// Windows refuses to rename over an existing file
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		l.Error("replace scene failed", slog.Any("err", rerr))
		return fmt.Errorf("replace scene: %w", rerr)
	}
	l.Debug("scene saved", slog.Int("bytes", pretty.Len()))
	return nil
}

// SaveNode marshals a node tree in the versioned envelope and saves it.
func SaveNode(path string, root component.Node) error {
	b, err := json.Marshal(component.Document{Version: 1, Root: root})
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	return Save(path, b)
}

func backupDir(path string) string { return filepath.Join(filepath.Dir(path), BackupsDirName) }

func backupPath(path string, t time.Time) string {
	return filepath.Join(backupDir(path), fmt.Sprintf("%s.%s.bak", filepath.Base(path), t.Format(stampLayout)))
}

// Backups lists the backups of path, oldest first.
func Backups(path string) ([]string, error) {
	ents, err := os.ReadDir(backupDir(path))
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(backupDir(path), name))
		}
	}
	// the timestamp in the name sorts lexicographically
	sort.Strings(out)
	return out, nil
}

func pruneBackups(path string, keep int) error {
	all, err := Backups(path)
	if err != nil {
		return err
	}
	var errs []error
	for len(all) > keep {
		if err := os.Remove(all[0]); err != nil {
			errs = append(errs, err)
		}
		all = all[1:]
	}
	return errors.Join(errs...)
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
