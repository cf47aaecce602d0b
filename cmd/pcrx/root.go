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

package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/pcrx/pkg/config"
	"github.com/walteh/pcrx/pkg/fsys"
	"github.com/walteh/pcrx/pkg/log"
	"github.com/walteh/pcrx/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// ConfigEnv names a profile to load when --config is not given
const ConfigEnv = "PCRX_CONFIG"

// 🎛️ Handler holds the command line flags of a run
type Handler struct {
	configFile string
	debug      bool
	version    bool
	dirs       []string

	flags config.Options

	fnmatch         string
	fnpcre          string
	only            string
	invert          bool
	fileMatch       string
	fileMatchInvert bool
}

// 🏭 NewRootCmd creates the pcrx command
func NewRootCmd() *cobra.Command {
	h := &Handler{}

	cmd := &cobra.Command{
		Use:   "pcrx [flags] [<search> [<replace>]]",
		Short: "Search and replace lines of many files with regular expressions",
		Long: `pcrx reads a list of paths from standard input (or --files-from), one per
line or NUL separated, and searches every file line by line for <search>, a
delimited pattern like /colou?r/i. With <replace> matching lines are rewritten
in place. Without <search> the paths are only listed.

A path of the form file.txt:N limits the run to line N of file.txt; filters
see file.txt.

<replace> may refer to groups as $1, \\1 or ${1}. A reference to a group that
<search> does not have is an error, it is never replaced by an empty string.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.Run(cmd, args)
		},
	}

	addFlags(cmd, h)
	return cmd
}

// addFlags wires every flag to the handler
func addFlags(cmd *cobra.Command, h *Handler) {
	f := cmd.Flags()
	f.StringVar(&h.configFile, "config", "", "run profile (.yaml, .json or .hcl), defaults to $"+ConfigEnv)
	f.BoolVar(&h.debug, "debug", false, "enable debug logging")
	f.BoolVar(&h.version, "version", false, "display version information and exit")
	f.StringArrayVarP(&h.dirs, "directory", "C", nil, "change to directory before doing anything")

	f.BoolVarP(&h.flags.DryRun, "dry-run", "n", false, "do not write changes to files")
	f.BoolVarP(&h.flags.Verbose, "verbose", "v", false, "be more verbose")
	f.BoolVar(&h.flags.ShowMatch, "show-match", false, "show the matching lines, in replace mode every match and its replacement")
	f.BoolVar(&h.flags.CountMatches, "count-matches", false, "count matches and rank them instead of listing paths")
	f.BoolVar(&h.flags.PrintPaths, "print-paths", false, "print the paths that pass the filters and exit")
	f.BoolVarP(&h.flags.Multiple, "multiple", "m", false, "replace until a line does not change any longer, count every match")
	f.StringArrayVar(&h.flags.LinesOnly, "lines-only", nil, "only lines matching pattern, can be repeated")
	f.StringArrayVar(&h.flags.LinesNot, "lines-not", nil, "no lines matching pattern, can be repeated")
	f.StringVarP(&h.flags.FilesFrom, "files-from", "T", "", "read paths from file, - for standard input")

	f.StringVar(&h.fnmatch, "fnmatch", "", "only paths matching glob")
	f.StringVar(&h.fnpcre, "fnpcre", "", "only paths matching pattern")
	f.StringVar(&h.only, "only", "", "only files with a line matching pattern")
	f.BoolVar(&h.invert, "invert", false, "invert --only, files without a matching line")
	f.StringVar(&h.fileMatch, "file-match", "", "only files whose contents match pattern")
	f.BoolVar(&h.fileMatchInvert, "file-match-invert", false, "invert --file-match")
}

// 🏃 Run executes the command
func (h *Handler) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if h.version {
		return writeVersion(cmd.OutOrStdout(), h.flags.Verbose)
	}

	level := zerolog.WarnLevel
	if h.debug {
		level = zerolog.DebugLevel
	}
	ctx = zerolog.Ctx(ctx).Level(level).WithContext(ctx)

	opts, err := h.options(ctx, cmd, args)
	if err != nil {
		return err
	}

	logger := log.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Verbose, level)
	ctx = log.NewContext(ctx, logger)

	dirs := h.dirs
	if opts.Directory != "" && !cmd.Flags().Changed("directory") {
		dirs = []string{opts.Directory}
	}
	for _, dir := range dirs {
		if err := os.Chdir(dir); err != nil {
			return errors.Errorf("can not change to '%s': %w", dir, err)
		}
	}

	op, err := operation.New(operation.Options{
		Config: opts,
		FS:     fsys.NewOS(),
		Logger: logger,
		Stdin:  cmd.InOrStdin(),
	})
	if err != nil {
		return err
	}

	_, err = op.Execute(ctx)
	return err
}

// 🔀 options loads the profile, if any, and lays the flags over it. Flags win
// over profile values, list flags and filters add to them.
func (h *Handler) options(ctx context.Context, cmd *cobra.Command, args []string) (*config.Options, error) {
	opts := &config.Options{}

	profile := h.configFile
	if profile == "" {
		profile = os.Getenv(ConfigEnv)
	}
	if profile != "" {
		loaded, err := config.LoadFile(ctx, fsys.NewOS(), profile)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}

	flags := cmd.Flags()
	set := func(name string, dst *bool, v bool) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("dry-run", &opts.DryRun, h.flags.DryRun)
	set("verbose", &opts.Verbose, h.flags.Verbose)
	set("show-match", &opts.ShowMatch, h.flags.ShowMatch)
	set("count-matches", &opts.CountMatches, h.flags.CountMatches)
	set("print-paths", &opts.PrintPaths, h.flags.PrintPaths)
	set("multiple", &opts.Multiple, h.flags.Multiple)

	if flags.Changed("files-from") {
		opts.FilesFrom = h.flags.FilesFrom
	}
	opts.LinesOnly = append(opts.LinesOnly, h.flags.LinesOnly...)
	opts.LinesNot = append(opts.LinesNot, h.flags.LinesNot...)

	if len(args) > 0 {
		opts.Pattern = &args[0]
	}
	if len(args) > 1 {
		opts.Replacement = &args[1]
	}

	opts.Filters = append(opts.Filters, h.filters()...)

	return opts, nil
}

// filters turns the filter flags into filter specs in chain order
func (h *Handler) filters() []config.FilterSpec {
	var specs []config.FilterSpec
	if h.fnmatch != "" {
		specs = append(specs, config.FilterSpec{Kind: config.KindGlob, Pattern: h.fnmatch})
	}
	if h.fnpcre != "" {
		specs = append(specs, config.FilterSpec{Kind: config.KindPath, Pattern: h.fnpcre})
	}
	if h.only != "" {
		specs = append(specs, config.FilterSpec{Kind: config.KindOnly, Pattern: h.only, Invert: h.invert})
	}
	if h.fileMatch != "" {
		specs = append(specs, config.FilterSpec{Kind: config.KindFileMatch, Pattern: h.fileMatch, Invert: h.fileMatchInvert})
	}
	return specs
}

// writeVersion prints the version, with build details when verbose
func writeVersion(w io.Writer, verbose bool) error {
	_, err := io.WriteString(w, FormatVersion(verbose))
	return err
}
