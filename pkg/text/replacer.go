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

package text

import (
	"regexp"
	"strconv"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidReplacement is wrapped by every replacement compile error
var ErrInvalidReplacement = errors.Base("invalid replacement")

// 🔄 Pass is one substitution over a line
type Pass struct {
	Before string
	After  string
}

// 📋 ReplacementResult contains the outcome of replacing within one line
type ReplacementResult struct {
	// Original is the line before any pass
	Original string

	// Modified is the line after the last pass
	Modified string

	// Passes lists every pass that changed the line
	Passes []Pass
}

// WasModified reports whether the line differs from the original
func (r *ReplacementResult) WasModified() bool {
	return r.Modified != r.Original
}

// 🔄 Replacer substitutes every match of a pattern by a replacement.
//
// The replacement uses PCRE conventions: \N, $N and ${N} (N up to 99) refer
// to capture groups, a backslash escapes a following backslash or dollar.
type Replacer struct {
	pattern     *regexp.Regexp
	replacement string
	template    string
}

// 🏭 NewReplacer compiles replacement against pattern. Referring to a group
// the pattern does not have is an error.
func NewReplacer(pattern *regexp.Regexp, replacement string) (*Replacer, error) {
	template, err := Template(replacement, pattern.NumSubexp())
	if err != nil {
		return nil, err
	}
	return &Replacer{
		pattern:     pattern,
		replacement: replacement,
		template:    template,
	}, nil
}

// Apply runs a single substitution pass over s
func (r *Replacer) Apply(s string) string {
	return r.pattern.ReplaceAllString(s, r.template)
}

// 🔁 ReplaceLine substitutes within line. With multiple set, passes repeat
// until one leaves the line unchanged. A pattern and replacement that keep
// changing the line (e.g. /a/ -> aa) never reach that point and loop forever;
// callers must not combine such a pair with multiple.
func (r *Replacer) ReplaceLine(line string, multiple bool) *ReplacementResult {
	result := &ReplacementResult{Original: line, Modified: line}

	buffer := line
	for {
		next := r.Apply(buffer)
		if next == buffer {
			break
		}
		result.Passes = append(result.Passes, Pass{Before: buffer, After: next})
		buffer = next
		if !multiple {
			break
		}
	}

	result.Modified = buffer
	return result
}

// 🔍 Matches returns the first match of pattern in s, or all of them. Empty
// matches are included.
func Matches(pattern *regexp.Regexp, s string, all bool) []string {
	if all {
		return pattern.FindAllString(s, -1)
	}
	loc := pattern.FindStringIndex(s)
	if loc == nil {
		return nil
	}
	return []string{s[loc[0]:loc[1]]}
}

// 📝 Template converts a PCRE style replacement into a regexp.Expand
// template. groups is the number of capture groups available.
func Template(replacement string, groups int) (string, error) {
	out := make([]byte, 0, len(replacement)+8)

	lastBackslash := false
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]

		if c != '\\' && c != '$' {
			out = append(out, c)
			lastBackslash = false
			continue
		}

		if lastBackslash {
			// the backslash already written escapes this character
			out = appendLiteral(out[:len(out)-1], c)
			lastBackslash = false
			continue
		}

		n, width, ok := backref(replacement[i:])
		if !ok {
			out = appendLiteral(out, c)
			lastBackslash = c == '\\'
			continue
		}
		if n > groups {
			return "", errors.Errorf("reference to non-existent subpattern %d in %q: %w", n, replacement, ErrInvalidReplacement)
		}

		out = append(out, "${"+strconv.Itoa(n)+"}"...)
		i += width - 1
		lastBackslash = false
	}

	return string(out), nil
}

func appendLiteral(out []byte, c byte) []byte {
	if c == '$' {
		return append(out, '$', '$')
	}
	return append(out, c)
}

// backref parses \N, $N or ${N} at the start of s
func backref(s string) (n, width int, ok bool) {
	if len(s) < 2 {
		return 0, 0, false
	}

	i := 1
	braced := s[0] == '$' && s[1] == '{'
	if braced {
		i = 2
	}

	start := i
	for i < len(s) && i < start+2 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, 0, false
	}
	n, _ = strconv.Atoi(s[start:i])

	if braced {
		if i >= len(s) || s[i] != '}' {
			return 0, 0, false
		}
		i++
	}

	return n, i, true
}
