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
	"fmt"
	"strings"
)

// 👀 Pascii renders s as printable ASCII: control bytes and bytes above 0x7E
// become \xHH escapes (space stays). A backslash that would read as such an
// escape is shown as \x5C.
func Pascii(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c < 0x20 || c >= 0x7F:
			fmt.Fprintf(&b, `\x%02X`, c)
		case c == '\\' && looksLikeEscape(s[i+1:]):
			b.WriteString(`\x5C`)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func looksLikeEscape(s string) bool {
	if len(s) < 3 || s[0] != 'x' {
		return false
	}
	return isUpperHex(s[1]) && isUpperHex(s[2])
}

func isUpperHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')
}

// 👀 PasciiLine is Pascii for a single line, keeping a final "\n" as is
func PasciiLine(line string) string {
	if body, ok := strings.CutSuffix(line, "\n"); ok {
		return Pascii(body) + "\n"
	}
	return Pascii(line)
}
