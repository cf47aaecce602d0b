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

// Package pathnorm resolves raw path-list records into paths that exist.
//
// Both rules are guess work and only kick in when the raw record does not
// already name an existing file:
//
//	"dir/a\tb.txt"   git core.quotePath style quoting is undone
//	dir/a.txt:12     a trailing line number is split off
//
// Nothing is ever fabricated: when no rule resolves to an existing file the
// raw record is used as is.
package pathnorm

import (
	"strconv"
	"strings"

	"github.com/walteh/pcrx/pkg/fsys"
)

// 📍 Path is a resolved path with an optional 1-based target line
type Path struct {
	Name string
	Line int // 0 when no line range was given
}

// HasRange reports whether the path targets a single line
func (p Path) HasRange() bool {
	return p.Line > 0
}

// String renders the path back in "path:N" form when it has a range
func (p Path) String() string {
	if !p.HasRange() {
		return p.Name
	}
	return p.Name + ":" + strconv.Itoa(p.Line)
}

// Existence is the one filesystem question normalization asks
type Existence interface {
	Exists(path string) bool
}

// 🧭 Normalizer resolves raw records against a filesystem
type Normalizer struct {
	fs Existence
}

// 🏭 New creates a normalizer
func New(fs Existence) *Normalizer {
	return &Normalizer{fs: fs}
}

// 🧭 Resolve maps a raw record to a path and optional line
func (n *Normalizer) Resolve(raw string) Path {
	if !fsys.IsValidPath(raw) || n.fs.Exists(raw) {
		return Path{Name: raw}
	}

	candidates := []string{raw}
	if IsQuoted(raw) {
		unquoted := Unquote(raw)
		if n.fs.Exists(unquoted) {
			return Path{Name: unquoted}
		}
		candidates = []string{unquoted, raw}
	}

	for _, candidate := range candidates {
		prefix, line, ok := SplitRange(candidate)
		if !ok {
			continue
		}
		if n.fs.Exists(prefix) {
			return Path{Name: prefix, Line: line}
		}
		if IsQuoted(prefix) {
			if unquoted := Unquote(prefix); n.fs.Exists(unquoted) {
				return Path{Name: unquoted, Line: line}
			}
		}
	}

	return Path{Name: raw}
}

// IsQuoted is an (incomplete) test for a git core.quotePath quoted path
func IsQuoted(path string) bool {
	if !fsys.IsValidPath(path) || len(path) < 2 {
		return false
	}
	return path[0] == '"' && path[len(path)-1] == '"'
}

// Unquote strips the quotes of a quoted path and undoes its C style
// backslash escapes. Unquoted input is returned unchanged.
func Unquote(path string) string {
	if !IsQuoted(path) {
		return path
	}
	return unescapeC(path[1 : len(path)-1])
}

func unescapeC(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}

		i++
		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'v':
			b.WriteByte('\v')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'x':
			j := i + 1
			for j < len(s) && j < i+3 && isHex(s[j]) {
				j++
			}
			if j == i+1 {
				b.WriteByte('x')
				continue
			}
			v, _ := strconv.ParseUint(s[i+1:j], 16, 8)
			b.WriteByte(byte(v))
			i = j - 1
		default:
			if !isOctal(c) {
				b.WriteByte(c)
				continue
			}
			j := i
			for j < len(s) && j < i+3 && isOctal(s[j]) {
				j++
			}
			v, _ := strconv.ParseUint(s[i:j], 8, 16)
			b.WriteByte(byte(v))
			i = j - 1
		}
	}

	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

// ✂️ SplitRange splits "<prefix>:<line>" at the last colon. line must be a
// positive integer written canonically, and the colon must not be the first
// character.
func SplitRange(path string) (prefix string, line int, ok bool) {
	i := strings.LastIndexByte(path, ':')
	if i <= 0 {
		return path, 0, false
	}

	suffix := path[i+1:]
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 1 || strconv.Itoa(n) != suffix {
		return path, 0, false
	}

	return path[:i], n, true
}
