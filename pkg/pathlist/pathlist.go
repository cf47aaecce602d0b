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

// Package pathlist reads the list of candidate paths a run operates on.
//
// A list is either newline separated (the common case, special characters
// then being quoted, compare git core.quotePath) or NUL separated. The first
// DetectSize bytes decide: if they hold a NUL byte the whole list is NUL
// separated, otherwise it is newline separated.
package pathlist

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"iter"

	"github.com/rs/zerolog"
	"github.com/walteh/pcrx/pkg/fsys"
	"gitlab.com/tozd/go/errors"
)

// DetectSize is the number of leading bytes inspected for a NUL byte
const DetectSize = 4096

// StdinName names standard input as a path list
const StdinName = "-"

// 📜 Source yields the paths of one path list. It is single use.
type Source struct {
	r   io.Reader
	sep byte
	err error
}

// 🏭 New creates a source reading from r
func New(r io.Reader) *Source {
	return &Source{r: r}
}

// Separator returns the detected record separator, zero before detection
func (s *Source) Separator() byte {
	return s.sep
}

// Err returns the read error that ended the sequence, if any
func (s *Source) Err() error {
	return s.err
}

// 📜 Paths yields each non-empty record of the list. A final record without
// separator is yielded as well.
func (s *Source) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		head := make([]byte, DetectSize)
		n, err := io.ReadFull(s.r, head)
		head = head[:n]
		switch {
		case err == io.EOF:
			return
		case err != nil && err != io.ErrUnexpectedEOF:
			s.err = errors.Errorf("reading path list: %w", err)
			return
		}

		s.sep = '\n'
		if bytes.IndexByte(head, 0) >= 0 {
			s.sep = 0
		}

		var rest io.Reader = bytes.NewReader(head)
		if err == nil {
			rest = io.MultiReader(rest, s.r)
		}

		br := bufio.NewReader(rest)
		for {
			record, err := br.ReadString(s.sep)
			if err != nil && err != io.EOF {
				s.err = errors.Errorf("reading path list: %w", err)
				return
			}
			eof := err == io.EOF

			if len(record) > 0 && record[len(record)-1] == s.sep {
				record = record[:len(record)-1]
			}
			if record != "" && !yield(record) {
				return
			}
			if eof {
				return
			}
		}
	}
}

// 📂 Open opens the path list called name. StdinName and the empty name read
// from stdin. The caller closes the returned reader.
func Open(ctx context.Context, fm fsys.FileManager, name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == "" || name == StdinName {
		zerolog.Ctx(ctx).Debug().Msg("reading paths from standard input")
		if stdin == nil {
			stdin = bytes.NewReader(nil)
		}
		return io.NopCloser(stdin), nil
	}

	f, err := fm.Open(ctx, name)
	if err != nil {
		return nil, errors.Errorf("can not read files from '%s': %w", name, err)
	}
	return f, nil
}
