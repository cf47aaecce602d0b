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

package config

import (
	"context"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/walteh/pcrx/pkg/pattern"
	"github.com/walteh/pcrx/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for profile parsers
type Parser interface {
	// 📝 Parse decodes a profile from bytes. filename is used in diagnostics.
	Parse(ctx context.Context, filename string, data []byte) (*Options, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// Filter kinds
const (
	KindGlob      = "glob"
	KindPath      = "path"
	KindOnly      = "only"
	KindFileMatch = "file-match"
)

// 🧪 FilterSpec is one stage of the path filter chain
type FilterSpec struct {
	Kind    string `json:"kind" yaml:"kind" hcl:"kind,label"`
	Pattern string `json:"pattern" yaml:"pattern" hcl:"pattern"`
	Invert  bool   `json:"invert,omitempty" yaml:"invert,omitempty" hcl:"invert,optional"`
}

// 🔍 Validate checks the kind and that the pattern compiles for it
func (f FilterSpec) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Kind, validation.Required, validation.In(KindGlob, KindPath, KindOnly, KindFileMatch)),
		validation.Field(&f.Pattern, validation.Required, validation.By(func(value interface{}) error {
			if f.Kind == KindGlob {
				if !doublestar.ValidatePattern(f.Pattern) {
					return errors.Errorf("invalid glob pattern")
				}
				return nil
			}
			return compiles(value)
		})),
	)
}

// 📚 Options are the settings of one run
type Options struct {
	DryRun       bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`
	Verbose      bool `json:"verbose,omitempty" yaml:"verbose,omitempty" hcl:"verbose,optional"`
	ShowMatch    bool `json:"show_match,omitempty" yaml:"show_match,omitempty" hcl:"show_match,optional"`
	CountMatches bool `json:"count_matches,omitempty" yaml:"count_matches,omitempty" hcl:"count_matches,optional"`
	Multiple     bool `json:"multiple,omitempty" yaml:"multiple,omitempty" hcl:"multiple,optional"`
	PrintPaths   bool `json:"print_paths,omitempty" yaml:"print_paths,omitempty" hcl:"print_paths,optional"`

	LinesOnly []string `json:"lines_only,omitempty" yaml:"lines_only,omitempty" hcl:"lines_only,optional"`
	LinesNot  []string `json:"lines_not,omitempty" yaml:"lines_not,omitempty" hcl:"lines_not,optional"`

	// Pattern is the search pattern; nil only prints the paths
	Pattern *string `json:"pattern,omitempty" yaml:"pattern,omitempty" hcl:"pattern,optional"`
	// Replacement switches to replace mode when set
	Replacement *string `json:"replacement,omitempty" yaml:"replacement,omitempty" hcl:"replacement,optional"`

	// FilesFrom names the path list, standard input when empty or "-"
	FilesFrom string `json:"files_from,omitempty" yaml:"files_from,omitempty" hcl:"files_from,optional"`
	// Directory is changed into before the run
	Directory string `json:"directory,omitempty" yaml:"directory,omitempty" hcl:"directory,optional"`

	Filters []FilterSpec `json:"filters,omitempty" yaml:"filters,omitempty" hcl:"filter,block"`
}

// 🔍 Validate checks that every pattern compiles and that the replacement
// only refers to groups the pattern has
func (o *Options) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Pattern, validation.By(compiles)),
		validation.Field(&o.Replacement, validation.By(o.replacementCompiles)),
		validation.Field(&o.LinesOnly, validation.Each(validation.By(compiles))),
		validation.Field(&o.LinesNot, validation.Each(validation.By(compiles))),
		validation.Field(&o.Filters),
	)
}

// 🔄 Replacing reports whether the run replaces
func (o *Options) Replacing() bool {
	return o.Replacement != nil
}

// CompileLines compiles a list of line patterns
func CompileLines(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := pattern.Compile(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func (o *Options) replacementCompiles(value interface{}) error {
	v, _ := validation.Indirect(value)
	replacement, ok := v.(string)
	if !ok {
		return nil
	}
	if o.Pattern == nil {
		return errors.Errorf("needs a pattern")
	}
	re, err := pattern.Compile(*o.Pattern)
	if err != nil {
		// reported on the pattern field
		return nil
	}
	_, err = text.Template(replacement, re.NumSubexp())
	return err
}

func compiles(value interface{}) error {
	v, _ := validation.Indirect(value)
	expr, ok := v.(string)
	if !ok {
		return nil
	}
	_, err := pattern.Compile(expr)
	return err
}
