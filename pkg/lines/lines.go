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

// Package lines holds a file's lines and narrows them down to the ones a run
// may touch.
package lines

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrNoTrailingNewline marks a file whose last line is not terminated
var ErrNoTrailingNewline = errors.Base("no newline at end of file")

// Terminator ends every line
const Terminator = "\n"

// 📄 Snapshot is the full content of one file split into lines, each keeping
// its terminator
type Snapshot struct {
	Path  string
	Lines []string
}

// 🏭 NewSnapshot splits content into lines. A final unterminated line is kept
// as is.
func NewSnapshot(path string, content []byte) *Snapshot {
	return &Snapshot{Path: path, Lines: Split(string(content))}
}

// Split splits s after every terminator
func Split(s string) []string {
	var out []string
	for s != "" {
		i := strings.Index(s, Terminator)
		if i < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:i+len(Terminator)])
		s = s[i+len(Terminator):]
	}
	return out
}

// Terminated reports whether the snapshot's last line ends with a terminator.
// An empty snapshot is not terminated.
func (s *Snapshot) Terminated() bool {
	if len(s.Lines) == 0 {
		return false
	}
	return strings.HasSuffix(s.Lines[len(s.Lines)-1], Terminator)
}

// Check returns ErrNoTrailingNewline for snapshots that must not be rewritten
func (s *Snapshot) Check() error {
	if !s.Terminated() {
		return errors.Errorf("%s: %w", s.Path, ErrNoTrailingNewline)
	}
	return nil
}

// ✏️ With returns the file content with the lines at the given 0-based
// indexes replaced. All other lines are copied byte for byte.
func (s *Snapshot) With(changed map[int]string) []byte {
	var b strings.Builder
	for i, line := range s.Lines {
		if c, ok := changed[i]; ok {
			line = c
		}
		b.WriteString(line)
	}
	return []byte(b.String())
}

// Body strips the terminator from line
func Body(line string) string {
	return strings.TrimSuffix(line, Terminator)
}

// 🎯 Selector narrows lines down by pattern and line number
type Selector struct {
	// Only keeps lines matching every pattern
	Only []*regexp.Regexp
	// Not drops lines matching any pattern
	Not []*regexp.Regexp
	// Line restricts to a single 1-based line when positive
	Line int
}

// ForLine returns a copy of s restricted to line
func (s Selector) ForLine(line int) Selector {
	s.Line = line
	return s
}

// 🎯 Select returns the 0-based indexes of the selected lines in order.
// Patterns see the line without its terminator.
func (s Selector) Select(lines []string) []int {
	selected := make([]int, 0, len(lines))

outer:
	for i, line := range lines {
		if s.Line > 0 && i+1 != s.Line {
			continue
		}

		body := Body(line)
		for _, re := range s.Only {
			if !re.MatchString(body) {
				continue outer
			}
		}
		for _, re := range s.Not {
			if re.MatchString(body) {
				continue outer
			}
		}

		selected = append(selected, i)
	}

	return selected
}
