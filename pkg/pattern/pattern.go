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

// Package pattern compiles delimited, PCRE style patterns such as
//
//	/foo(bar)?/i   (^\s+$)   {\d+}x   #a|b#
//
// onto the standard regexp engine. The delimiter is the first character; a
// bracket opens a pair closed by its counterpart. Modifiers follow the
// closing delimiter.
package pattern

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalid is wrapped by every compile error
var ErrInvalid = errors.Base("invalid pattern")

var closers = map[byte]byte{
	'(': ')',
	'[': ']',
	'{': '}',
	'<': '>',
}

// 🧩 Compile compiles a delimited pattern
func Compile(expr string) (*regexp.Regexp, error) {
	body, flags, err := Split(expr)
	if err != nil {
		return nil, err
	}

	var prefix, suffix string
	var inline []byte
	extended := false
	for i := 0; i < len(flags); i++ {
		switch c := flags[i]; c {
		case 'i', 'm', 's', 'U':
			if strings.IndexByte(string(inline), c) < 0 {
				inline = append(inline, c)
			}
		case 'A':
			prefix, suffix = `\A(?:`, `)`
		case 'x':
			extended = true
		case 'D', 'u', 'S':
			// dollar-end-only, utf-8 and study are the engine's defaults or no-ops
		case '\n', '\r', ' ':
		default:
			return nil, errors.Errorf("unknown modifier '%c' in %q: %w", c, expr, ErrInvalid)
		}
	}

	if extended {
		body = stripExtended(body)
	}
	if len(inline) > 0 {
		prefix = "(?" + string(inline) + ")" + prefix
	}

	re, err := regexp.Compile(prefix + body + suffix)
	if err != nil {
		return nil, errors.Errorf("compiling %q: %w: %s", expr, ErrInvalid, err.Error())
	}
	return re, nil
}

// ✂️ Split separates a delimited pattern into its body and modifiers
func Split(expr string) (body, flags string, err error) {
	trimmed := strings.TrimLeftFunc(expr, unicode.IsSpace)
	if trimmed == "" {
		return "", "", errors.Errorf("empty pattern: %w", ErrInvalid)
	}

	open := trimmed[0]
	r, _ := utf8.DecodeRuneInString(trimmed)
	if open == '\\' || r >= utf8.RuneSelf || unicode.IsLetter(r) || unicode.IsDigit(r) {
		return "", "", errors.Errorf("delimiter must not be alphanumeric or backslash in %q: %w", expr, ErrInvalid)
	}

	closeDelim, paired := closers[open]
	if !paired {
		closeDelim = open
	}

	end := -1
	if paired {
		end = matchingBracket(trimmed, open, closeDelim)
	} else {
		for i := 1; i < len(trimmed); i++ {
			switch trimmed[i] {
			case '\\':
				i++
			case closeDelim:
				end = i
			}
			if end >= 0 {
				break
			}
		}
	}
	if end < 0 {
		return "", "", errors.Errorf("no ending delimiter '%c' found in %q: %w", closeDelim, expr, ErrInvalid)
	}

	return trimmed[1:end], trimmed[end+1:], nil
}

// 🧹 stripExtended drops unescaped whitespace and '#' comments outside
// character classes, the way the x modifier reads a pattern
func stripExtended(body string) string {
	var b strings.Builder
	b.Grow(len(body))

	inClass := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			if isSpace(body[i]) {
				// the escape keeps the whitespace, regexp has no such escape
				b.WriteByte(body[i])
				continue
			}
			b.WriteByte(c)
			b.WriteByte(body[i])
		case inClass:
			b.WriteByte(c)
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			b.WriteByte(c)
			// a ']' right after the opening (or its negation) is literal
			if i+1 < len(body) && body[i+1] == '^' {
				i++
				b.WriteByte('^')
			}
			if i+1 < len(body) && body[i+1] == ']' {
				i++
				b.WriteByte(']')
			}
		case isSpace(c):
		case c == '#':
			for i+1 < len(body) && body[i+1] != '\n' {
				i++
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func matchingBracket(s string, open, closeDelim byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case open:
			depth++
		case closeDelim:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// MustCompile is Compile for patterns known to be valid
func MustCompile(expr string) *regexp.Regexp {
	re, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return re
}
