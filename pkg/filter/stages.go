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

package filter

import (
	"context"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/pcrx/pkg/fsys"
	"github.com/walteh/pcrx/pkg/lines"
	"gitlab.com/tozd/go/errors"
)

// Stage names as shown in diagnostics
const (
	NameGlob      = "--fnmatch"
	NamePath      = "--fnpcre"
	NameOnly      = "--only"
	NameFileMatch = "--file-match"
)

// Reader is what content stages need from the filesystem
type Reader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// IOErrorFunc is told about paths a content stage could not read
type IOErrorFunc func(path string, err error)

// 🌟 glob matches the path against a doublestar glob
type glob struct {
	pattern string
	invert  bool
}

// Glob creates a glob stage. The pattern must be valid.
func Glob(pattern string, invert bool) (Stage, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid glob pattern %q", pattern)
	}
	return &glob{pattern: pattern, invert: invert}, nil
}

func (g *glob) Name() string    { return NameGlob }
func (g *glob) Pattern() string { return g.pattern }

func (g *glob) Accept(ctx context.Context, path string) bool {
	matched, err := doublestar.Match(g.pattern, path)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Str("pattern", g.pattern).Str("path", path).Err(err).Msg("error matching pattern")
		return false
	}
	return matched != g.invert
}

// 🔤 pathRegex matches the path string against a regular expression
type pathRegex struct {
	expr   string
	re     *regexp.Regexp
	invert bool
}

// PathRegex creates a stage matching the path itself. expr is kept for
// diagnostics.
func PathRegex(expr string, re *regexp.Regexp, invert bool) Stage {
	return &pathRegex{expr: expr, re: re, invert: invert}
}

func (p *pathRegex) Name() string    { return NamePath }
func (p *pathRegex) Pattern() string { return p.expr }

func (p *pathRegex) Accept(ctx context.Context, path string) bool {
	return p.re.MatchString(path) != p.invert
}

// 📄 content stages read the file named by the path
type content struct {
	name    string
	expr    string
	re      *regexp.Regexp
	invert  bool
	fs      Reader
	onError IOErrorFunc
	match   func(re *regexp.Regexp, content []byte) bool
}

func (c *content) Name() string    { return c.name }
func (c *content) Pattern() string { return c.expr }

func (c *content) Accept(ctx context.Context, path string) bool {
	data, err := c.fs.ReadFile(ctx, path)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Str("stage", c.name).Str("path", path).Err(err).Msg("reading file for filter")
		if c.onError != nil {
			c.onError(path, err)
		}
		return false
	}
	return c.match(c.re, data) != c.invert
}

// LineContains creates a stage accepting files that hold a line matching re.
// invert accepts files without such a line. Unreadable files are rejected.
func LineContains(fs Reader, expr string, re *regexp.Regexp, invert bool, onError IOErrorFunc) Stage {
	return &content{
		name:    NameOnly,
		expr:    expr,
		re:      re,
		invert:  invert,
		fs:      fs,
		onError: onError,
		match: func(re *regexp.Regexp, data []byte) bool {
			for _, line := range lines.Split(string(data)) {
				if re.MatchString(lines.Body(line)) {
					return true
				}
			}
			return false
		},
	}
}

// ContentMatches creates a stage accepting files whose whole content matches
// re. invert accepts files that do not match. Unreadable files are rejected.
func ContentMatches(fs Reader, expr string, re *regexp.Regexp, invert bool, onError IOErrorFunc) Stage {
	return &content{
		name:    NameFileMatch,
		expr:    expr,
		re:      re,
		invert:  invert,
		fs:      fs,
		onError: onError,
		match: func(re *regexp.Regexp, data []byte) bool {
			return re.Match(data)
		},
	}
}

var (
	_ Stage  = (*glob)(nil)
	_ Stage  = (*pathRegex)(nil)
	_ Stage  = (*content)(nil)
	_ Reader = (*fsys.Manager)(nil)
)
