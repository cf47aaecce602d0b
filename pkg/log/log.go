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

package log

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/pcrx/pkg/text"
)

// 🎯 Logger writes to two channels: results (paths, matched and changed
// lines, rankings) and diagnostics (filter and skip reasons, tallies).
// Keeping them apart lets callers redirect each on its own.
type Logger struct {
	zlog    zerolog.Logger
	results io.Writer
	diag    io.Writer
	verbose bool
}

// 🏭 New creates a new logger. Structured zerolog events go to the
// diagnostics channel at level and above.
func New(results, diag io.Writer, verbose bool, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: diag, NoColor: color.NoColor}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		results: results,
		diag:    diag,
		verbose: verbose,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger, and its zerolog logger, to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	ctx = l.zlog.WithContext(ctx)
	return context.WithValue(ctx, contextKey{}, l)
}

// Zerolog returns the structured logger
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// Results returns the results channel
func (l *Logger) Results() io.Writer {
	return l.results
}

// 📝 Path prints a path on the results channel, escaped for display
func (l *Logger) Path(path string) {
	fmt.Fprintln(l.results, text.Pascii(path))
}

// 📝 Resultf prints to the results channel as is
func (l *Logger) Resultf(format string, args ...interface{}) {
	fmt.Fprintf(l.results, format, args...)
}

// 📝 Infof prints an info line, in verbose mode only
func (l *Logger) Infof(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.zlog.Debug().Msg(msg)
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.diag, "%s %s\n", color.New(color.FgCyan).Sprint("info:"), msg)
}

// 📝 Diagf prints a plain diagnostics line
func (l *Logger) Diagf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.zlog.Debug().Msg(msg)
	fmt.Fprintln(l.diag, msg)
}

// ⚠️ Warningf prints a warning
func (l *Logger) Warningf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.zlog.Debug().Msg(msg)
	fmt.Fprintln(l.diag, color.New(color.FgYellow).Sprint(msg))
}

// ❌ Errorf prints an error
func (l *Logger) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.zlog.Debug().Msg(msg)
	fmt.Fprintln(l.diag, color.New(color.FgRed).Sprint(msg))
}

// 🚫 Filtered reports a path rejected by a filter stage, in verbose mode only
func (l *Logger) Filtered(stage, pattern, path string) {
	l.zlog.Debug().Str("stage", stage).Str("pattern", pattern).Str("path", path).Msg("path filtered")
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.diag, "%s %s %s: %s\n", color.New(color.Faint).Sprint("filter:"), stage, pattern, text.Pascii(path))
}

// ⏭️ Skipping reports a path that is not processed
func (l *Logger) Skipping(path, reason string) {
	l.zlog.Debug().Str("path", path).Str("reason", reason).Msg("path skipped")
	fmt.Fprintf(l.diag, "%s %s '%s'\n", color.New(color.FgYellow).Sprint("skipping path:"), reason, text.Pascii(path))
}
