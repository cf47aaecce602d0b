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

package operation

import (
	"context"
	"io"
	"regexp"

	"github.com/walteh/pcrx/pkg/config"
	"github.com/walteh/pcrx/pkg/filter"
	"github.com/walteh/pcrx/pkg/fsys"
	"github.com/walteh/pcrx/pkg/lines"
	"github.com/walteh/pcrx/pkg/log"
	"github.com/walteh/pcrx/pkg/pattern"
	"github.com/walteh/pcrx/pkg/stats"
	"github.com/walteh/pcrx/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrConfig is wrapped by every error that stops a run before it starts
var ErrConfig = errors.Base("configuration error")

// 🎯 Operator runs a configured operation
type Operator interface {
	// Execute processes every path and returns the final report
	Execute(ctx context.Context) (*stats.Report, error)
}

// 🔧 Options contains what an operation needs
type Options struct {
	// Config is the run configuration
	Config *config.Options
	// FS is where paths are resolved, read and written
	FS fsys.FileManager
	// Logger receives results and diagnostics
	Logger *log.Logger
	// Stdin is read when no path list file is configured
	Stdin io.Reader
}

// 🎮 Operation is one compiled run
type Operation struct {
	cfg    *config.Options
	fs     fsys.FileManager
	logger *log.Logger
	stdin  io.Reader

	pattern  *regexp.Regexp
	replacer *text.Replacer
	selector lines.Selector
	stages   []filter.Stage
}

// 🏭 New compiles the configuration. Any invalid pattern, replacement or
// filter is an error wrapping ErrConfig.
func New(opts Options) (*Operation, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.FS == nil {
		return nil, errors.Errorf("file manager is required")
	}
	if opts.Logger == nil {
		return nil, errors.Errorf("logger is required")
	}

	op := &Operation{
		cfg:    opts.Config,
		fs:     opts.FS,
		logger: opts.Logger,
		stdin:  opts.Stdin,
	}

	if err := op.compile(); err != nil {
		return nil, err
	}
	return op, nil
}

func (op *Operation) compile() error {
	cfg := op.cfg

	if cfg.Pattern != nil {
		re, err := pattern.Compile(*cfg.Pattern)
		if err != nil {
			return errors.Errorf("invalid pattern: `%s`: %w", *cfg.Pattern, ErrConfig)
		}
		op.pattern = re
	}

	if cfg.Replacing() {
		if op.pattern == nil {
			return errors.Errorf("replacement without pattern: %w", ErrConfig)
		}
		r, err := text.NewReplacer(op.pattern, *cfg.Replacement)
		if err != nil {
			return errors.Errorf("invalid replacement: `%s`: %w", *cfg.Replacement, ErrConfig)
		}
		op.replacer = r
	}

	only, err := config.CompileLines(cfg.LinesOnly)
	if err != nil {
		return errors.Errorf("invalid --lines-only pattern: %w", ErrConfig)
	}
	not, err := config.CompileLines(cfg.LinesNot)
	if err != nil {
		return errors.Errorf("invalid --lines-not pattern: %w", ErrConfig)
	}
	op.selector = lines.Selector{Only: only, Not: not}

	for _, spec := range cfg.Filters {
		stage, err := op.stage(spec)
		if err != nil {
			return err
		}
		op.stages = append(op.stages, stage)
	}

	return nil
}

// 🧪 stage builds one filter stage from its spec
func (op *Operation) stage(spec config.FilterSpec) (filter.Stage, error) {
	if spec.Kind == config.KindGlob {
		s, err := filter.Glob(spec.Pattern, spec.Invert)
		if err != nil {
			return nil, errors.Errorf("invalid %s pattern: `%s`: %w", filter.NameGlob, spec.Pattern, ErrConfig)
		}
		return s, nil
	}

	re, err := pattern.Compile(spec.Pattern)
	if err != nil {
		return nil, errors.Errorf("invalid %s pattern: `%s`: %w", spec.Kind, spec.Pattern, ErrConfig)
	}

	switch spec.Kind {
	case config.KindPath:
		return filter.PathRegex(spec.Pattern, re, spec.Invert), nil
	case config.KindOnly:
		return filter.LineContains(op.fs, spec.Pattern, re, spec.Invert, op.readError), nil
	case config.KindFileMatch:
		return filter.ContentMatches(op.fs, spec.Pattern, re, spec.Invert, op.readError), nil
	default:
		return nil, errors.Errorf("unknown filter kind %q: %w", spec.Kind, ErrConfig)
	}
}

func (op *Operation) readError(path string, err error) {
	op.logger.Errorf("i/o error: can not read file '%s'", text.Pascii(path))
}

var _ Operator = (*Operation)(nil)
