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

package config

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Reader reads whole files
type Reader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// 🎯 LoadFile loads a run profile from path and validates it. The format is
// determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
func LoadFile(ctx context.Context, r Reader, path string) (*Options, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading profile")

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	data, err := r.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.Errorf("reading profile: %w", err)
	}

	opts, err := p.Parse(ctx, filepath.Base(path), data)
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", path, err)
	}

	if err := opts.Validate(); err != nil {
		return nil, errors.Errorf("validating profile %s: %w", path, err)
	}

	return opts, nil
}
