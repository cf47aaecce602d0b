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

// Package engine runs the search, and optionally the replacement, over the
// lines of one file at a time.
package engine

import (
	"context"
	"regexp"

	"github.com/walteh/pcrx/pkg/fsys"
	"github.com/walteh/pcrx/pkg/lines"
	"github.com/walteh/pcrx/pkg/log"
	"github.com/walteh/pcrx/pkg/pathnorm"
	"github.com/walteh/pcrx/pkg/stats"
	"github.com/walteh/pcrx/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// Skip reasons as shown on the diagnostics channel
const (
	ReasonOpenError   = "error opening file"
	ReasonNoNewline   = "no newline at end of file"
	ReasonWriteFailed = "error writing file"
)

// 🔧 Options configures an engine
type Options struct {
	// Pattern is the search pattern
	Pattern *regexp.Regexp
	// Replacer performs the replacement; nil means match-only mode
	Replacer *text.Replacer
	// Multiple repeats replacement passes until a line no longer changes. In
	// count-matches mode it records every match of a line instead of the
	// first.
	Multiple bool
	// ShowMatch prints matching lines, and in replace mode every match with
	// its replacement
	ShowMatch bool
	// CountMatches records matches for the ranking instead of printing paths
	CountMatches bool
	// DryRun never writes files
	DryRun bool
	// Selector narrows down the lines of each file
	Selector lines.Selector
}

// ⚙️ Engine processes paths one at a time
type Engine struct {
	opts   Options
	fs     fsys.FileManager
	stats  *stats.Aggregator
	logger *log.Logger
}

// 🏭 New creates an engine. Matches and counters go to agg.
func New(opts Options, fs fsys.FileManager, agg *stats.Aggregator, logger *log.Logger) (*Engine, error) {
	if opts.Pattern == nil {
		return nil, errors.Errorf("pattern is required")
	}
	if fs == nil {
		return nil, errors.Errorf("file manager is required")
	}
	if agg == nil {
		return nil, errors.Errorf("stats aggregator is required")
	}
	if logger == nil {
		return nil, errors.Errorf("logger is required")
	}
	return &Engine{opts: opts, fs: fs, stats: agg, logger: logger}, nil
}

// 📋 Result describes what happened to one path
type Result struct {
	// Skipped is set when the file was not processed
	Skipped bool
	// Matched lists the 0-based indexes of the matching lines
	Matched []int
	// Changed maps 0-based indexes to the replaced lines, terminators
	// included
	Changed map[int]string
	// Written is set when the file was rewritten
	Written bool
}

// 🏃 Process searches, and replaces within, the file named by p. Per-path
// failures are counted and reported, never returned.
func (e *Engine) Process(ctx context.Context, p pathnorm.Path) *Result {
	result := &Result{}

	content, err := e.fs.ReadFile(ctx, p.Name)
	if err != nil {
		e.logger.Zerolog().Debug().Str("path", p.Name).Err(err).Msg("reading file")
		e.stats.AddOpenError(p.Name)
		e.logger.Skipping(p.Name, ReasonOpenError)
		result.Skipped = true
		return result
	}

	snapshot := lines.NewSnapshot(p.Name, content)
	if err := snapshot.Check(); err != nil {
		e.stats.AddSkipped(p.Name)
		e.logger.Skipping(p.Name, ReasonNoNewline)
		result.Skipped = true
		return result
	}

	for _, i := range e.opts.Selector.ForLine(p.Line).Select(snapshot.Lines) {
		if e.opts.Pattern.MatchString(lines.Body(snapshot.Lines[i])) {
			result.Matched = append(result.Matched, i)
		}
	}

	if len(result.Matched) == 0 {
		e.stats.AddNonMatchingPath()
		return result
	}

	if e.opts.Replacer == nil {
		e.tally(p.Name, snapshot, result)
		e.reportMatches(p.Name, snapshot, result.Matched)
		return result
	}

	result.Changed = e.replace(p.Name, snapshot, result.Matched)

	if len(result.Changed) > 0 && !e.opts.DryRun {
		if err := e.fs.WriteFile(ctx, p.Name, snapshot.With(result.Changed)); err != nil {
			e.logger.Zerolog().Debug().Str("path", p.Name).Err(err).Msg("writing file")
			e.stats.AddOpenError(p.Name)
			e.logger.Skipping(p.Name, ReasonWriteFailed)
			result.Skipped = true
			return result
		}
		result.Written = true
	}

	e.tally(p.Name, snapshot, result)

	return result
}

// tally counts a processed path that had at least one matching line. Skipped
// paths never reach it.
func (e *Engine) tally(path string, snapshot *lines.Snapshot, result *Result) {
	e.stats.AddMatchingPath()
	if len(result.Changed) > 0 {
		e.stats.AddReplacedPath()
	}
	if e.opts.CountMatches {
		e.countMatches(path, snapshot, result.Matched)
	}
}

func (e *Engine) countMatches(path string, snapshot *lines.Snapshot, matched []int) {
	for _, i := range matched {
		for _, m := range text.Matches(e.opts.Pattern, lines.Body(snapshot.Lines[i]), e.opts.Multiple) {
			e.stats.RecordMatch(m, path, i+1)
		}
	}
}

func (e *Engine) reportMatches(path string, snapshot *lines.Snapshot, matched []int) {
	if !e.opts.CountMatches {
		e.logger.Path(path)
	}
	if !e.opts.ShowMatch {
		return
	}
	for _, i := range matched {
		e.logger.Resultf(" %4d: %s", i+1, text.PasciiLine(snapshot.Lines[i]))
	}
}

// 🔄 replace runs the replacer over every matched line and returns the lines
// that ended up different
func (e *Engine) replace(path string, snapshot *lines.Snapshot, matched []int) map[int]string {
	if e.opts.ShowMatch {
		e.logger.Resultf("%s: %d line(s) match\n", path, len(matched))
	}

	changed := make(map[int]string)
	for _, i := range matched {
		line := snapshot.Lines[i]
		res := e.opts.Replacer.ReplaceLine(lines.Body(line), e.opts.Multiple)

		if e.opts.ShowMatch && len(res.Passes) > 0 {
			e.logger.Resultf(" %4d: %s", i+1, text.PasciiLine(line))
			for _, pass := range res.Passes {
				e.showPass(pass.Before)
			}
		}

		if res.WasModified() {
			changed[i] = res.Modified + lines.Terminator
		}
	}
	return changed
}

// showPass prints each match within before together with its replacement
func (e *Engine) showPass(before string) {
	for _, m := range e.opts.Pattern.FindAllString(before, -1) {
		e.logger.Resultf("    ^%s$\n", m)
		e.logger.Resultf("    ^%s$\n", e.opts.Replacer.Apply(m))
	}
}
