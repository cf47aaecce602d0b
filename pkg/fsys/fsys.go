// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fsys

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidPath is returned for paths no filesystem can hold, before the
// filesystem is touched.
var ErrInvalidPath = errors.Base("invalid path")

// 💾 FileManager handles the whole-file operations the pipeline needs
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, content []byte) error
	Open(ctx context.Context, path string) (afero.File, error)
	Exists(path string) bool
}

// 🔧 Manager implements FileManager on top of an afero filesystem
type Manager struct {
	fs afero.Fs
}

var _ FileManager = (*Manager)(nil)

// 🏭 New creates a manager over fs
func New(fs afero.Fs) *Manager {
	return &Manager{fs: fs}
}

// 🏭 NewOS creates a manager over the operating system filesystem
func NewOS() *Manager {
	return New(afero.NewOsFs())
}

// Fs exposes the underlying filesystem
func (m *Manager) Fs() afero.Fs {
	return m.fs
}

// 🚫 IsValidPath reports whether path can name a file at all. A NUL byte is
// never valid.
func IsValidPath(path string) bool {
	return !strings.ContainsRune(path, 0)
}

// 🔍 Exists reports whether path names an existing file
func (m *Manager) Exists(path string) bool {
	if !IsValidPath(path) {
		return false
	}
	_, err := m.fs.Stat(path)
	return err == nil
}

func (m *Manager) Open(ctx context.Context, path string) (afero.File, error) {
	if !IsValidPath(path) {
		return nil, errors.Errorf("opening %q: %w", path, ErrInvalidPath)
	}
	f, err := m.fs.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening file: %w", err)
	}
	return f, nil
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if !IsValidPath(path) {
		return nil, errors.Errorf("reading %q: %w", path, ErrInvalidPath)
	}
	content, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// WriteFile overwrites path in full, keeping its permission bits
func (m *Manager) WriteFile(ctx context.Context, path string, content []byte) error {
	if !IsValidPath(path) {
		return errors.Errorf("writing %q: %w", path, ErrInvalidPath)
	}

	mode := os.FileMode(0o644)
	if info, err := m.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := afero.WriteFile(m.fs, path, content, mode); err != nil {
		return errors.Errorf("writing file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("file written")
	return nil
}
