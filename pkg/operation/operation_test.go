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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/pcrx/pkg/config"
	"github.com/walteh/pcrx/pkg/fsys"
	"github.com/walteh/pcrx/pkg/log"
	"github.com/walteh/pcrx/pkg/stats"
	"gitlab.com/tozd/go/errors"
)

func ptr(s string) *string {
	return &s
}

type runResult struct {
	fs      afero.Fs
	results string
	diag    string
	report  *stats.Report
	err     error
}

func (r *runResult) read(t *testing.T, name string) string {
	data, err := afero.ReadFile(r.fs, name)
	require.NoError(t, err)
	return string(data)
}

func run(t *testing.T, files map[string]string, stdin string, cfg *config.Options, fm func(afero.Fs) fsys.FileManager) *runResult {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	if fm == nil {
		fm = func(fs afero.Fs) fsys.FileManager { return fsys.New(fs) }
	}

	var results, diag bytes.Buffer
	logger := log.New(&results, &diag, cfg.Verbose, zerolog.Disabled)
	ctx := log.NewContext(zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background()), logger)

	out := &runResult{fs: fs}
	op, err := New(Options{Config: cfg, FS: fm(fs), Logger: logger, Stdin: strings.NewReader(stdin)})
	if err != nil {
		out.err = err
		return out
	}
	out.report, out.err = op.Execute(ctx)
	out.results = results.String()
	out.diag = diag.String()
	return out
}

var corpus = map[string]string{
	"a.txt": "hay\nneedle\n",
	"b.txt": "hay\nhay\n",
	"c.txt": "needle needle\nhay\n",
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		cfg         *config.Options
		wantResults string
		wantDiag    string
		wantFiles   map[string]string
	}{
		{
			name:        "match_lists_paths",
			stdin:       "a.txt\nb.txt\nc.txt\n",
			cfg:         &config.Options{Pattern: ptr("/needle/")},
			wantResults: "a.txt\nc.txt\n",
			wantDiag:    "matches in 2 out of 3 files (66.7%)\n",
		},
		{
			name:        "nul_separated_list",
			stdin:       "a.txt\x00b.txt\x00c.txt",
			cfg:         &config.Options{Pattern: ptr("/needle/")},
			wantResults: "a.txt\nc.txt\n",
			wantDiag:    "matches in 2 out of 3 files (66.7%)\n",
		},
		{
			name:        "show_match",
			stdin:       "a.txt\nb.txt\n",
			cfg:         &config.Options{Pattern: ptr("/needle/"), ShowMatch: true},
			wantResults: "a.txt\n    2: needle\n",
			wantDiag:    "matches in 1 out of 2 files (50.0%)\n",
		},
		{
			name:     "replace_writes_back",
			stdin:    "a.txt\nb.txt\nc.txt\n",
			cfg:      &config.Options{Pattern: ptr("/needle/"), Replacement: ptr("pin")},
			wantDiag: "changes in 2 of 3 files\n",
			wantFiles: map[string]string{
				"a.txt": "hay\npin\n",
				"b.txt": "hay\nhay\n",
				"c.txt": "pin pin\nhay\n",
			},
		},
		{
			name:     "dry_run_writes_nothing",
			stdin:    "a.txt\nb.txt\nc.txt\n",
			cfg:      &config.Options{Pattern: ptr("/needle/"), Replacement: ptr("pin"), DryRun: true},
			wantDiag: "dry run: not writing changes to 2 of 3 files (66.7%), 0 filtered (0.0%)\n",
			wantFiles: corpus,
		},
		{
			name:      "range_path",
			stdin:     "c.txt:2\n",
			cfg:       &config.Options{Pattern: ptr("/needle|hay/"), Replacement: ptr("x")},
			wantDiag:  "changes in 1 of 1 files\n",
			wantFiles: map[string]string{"c.txt": "needle needle\nx\n"},
		},
		{
			name:  "range_path_through_filters",
			stdin: "c.txt:2\n",
			cfg: &config.Options{
				Pattern:     ptr("/needle|hay/"),
				Replacement: ptr("x"),
				Filters: []config.FilterSpec{
					{Kind: config.KindGlob, Pattern: "*.txt"},
					{Kind: config.KindOnly, Pattern: "/hay/"},
				},
			},
			wantDiag:  "changes in 1 of 1 files\n",
			wantFiles: map[string]string{"c.txt": "needle needle\nx\n"},
		},
		{
			name:  "print_paths_keeps_range",
			stdin: "c.txt:2\nb.txt:1\n",
			cfg: &config.Options{
				PrintPaths: true,
				Filters:    []config.FilterSpec{{Kind: config.KindOnly, Pattern: "/needle/"}},
			},
			wantResults: "c.txt:2\n",
		},
		{
			name:      "lines_not",
			stdin:     "c.txt\n",
			cfg:       &config.Options{Pattern: ptr("/needle|hay/"), Replacement: ptr("x"), LinesNot: []string{"/^hay/"}},
			wantDiag:  "changes in 1 of 1 files\n",
			wantFiles: map[string]string{"c.txt": "x x\nhay\n"},
		},
		{
			name:        "no_pattern_prints_paths",
			stdin:       "a.txt\nc.txt:1\n",
			cfg:         &config.Options{},
			wantResults: "a.txt\nc.txt\n",
			wantDiag:    "matches in 0 out of 2 files (0.0%)\n",
		},
		{
			name:  "glob_filter",
			stdin: "a.txt\nb.md\n",
			cfg: &config.Options{
				Pattern: ptr("/needle/"),
				Filters: []config.FilterSpec{{Kind: config.KindGlob, Pattern: "*.txt"}},
			},
			wantResults: "a.txt\n",
			wantDiag:    "filtered path(s): 1 (50.0% / 1:1.00)\nmatches in 1 out of 1 files (100.0%)\n",
		},
		{
			name:  "verbose_reports_filtered",
			stdin: "a.txt\nb.txt\n",
			cfg: &config.Options{
				Pattern: ptr("/needle/"),
				Verbose: true,
				Filters: []config.FilterSpec{{Kind: config.KindOnly, Pattern: "/needle/", Invert: true}},
			},
			wantDiag: "info: reading paths from standard input\nfilter: --only /needle/: a.txt\nfiltered path(s): 1 (50.0% / 1:1.00)\nmatches in 0 out of 1 files (0.0%)\n",
		},
		{
			name:  "unreadable_file_is_filtered",
			stdin: "missing.txt\na.txt\n",
			cfg: &config.Options{
				Pattern: ptr("/needle/"),
				Filters: []config.FilterSpec{{Kind: config.KindFileMatch, Pattern: "/hay/"}},
			},
			wantResults: "a.txt\n",
			wantDiag:    "i/o error: can not read file 'missing.txt'\nfiltered path(s): 1 (50.0% / 1:1.00)\nmatches in 1 out of 1 files (100.0%)\n",
		},
		{
			name:        "missing_file_is_skipped",
			stdin:       "a.txt\nmissing.txt\n",
			cfg:         &config.Options{Pattern: ptr("/needle/")},
			wantResults: "a.txt\n",
			wantDiag: "skipping path: error opening file 'missing.txt'\n" +
				"skipped paths: 1 out of 2 files were skipped\n" +
				"matches in 1 out of 2 files (50.0%)\n",
		},
		{
			name:  "print_paths",
			stdin: "a.txt\nb.md\n\"c\\056txt\"\n",
			cfg: &config.Options{
				PrintPaths: true,
				Verbose:    true,
				Filters:    []config.FilterSpec{{Kind: config.KindPath, Pattern: `/\.txt$/`}},
			},
			wantResults: "a.txt\nc.txt\n",
			wantDiag:    "info: reading paths from standard input\nfilter: --fnpcre /\\.txt$/: b.md\ninfo: printed 2 path(s), 1 filtered\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, corpus, tt.stdin, tt.cfg, nil)
			require.NoError(t, res.err)

			assert.Equal(t, tt.wantResults, res.results)
			assert.Equal(t, tt.wantDiag, res.diag)
			for name, want := range tt.wantFiles {
				assert.Equal(t, want, res.read(t, name), "file %s", name)
			}
		})
	}
}

func TestExecuteCountMatches(t *testing.T) {
	res := run(t, corpus, "a.txt\nb.txt\nc.txt\n", &config.Options{
		Pattern:      ptr("/needle|hay/"),
		CountMatches: true,
		Multiple:     true,
	}, nil)
	require.NoError(t, res.err)

	require.Len(t, res.report.Ranking, 2)
	assert.Equal(t, "hay", res.report.Ranking[0].Match)
	assert.Equal(t, 4, res.report.Ranking[0].Count)
	assert.Equal(t, "needle", res.report.Ranking[1].Match)
	assert.Equal(t, 3, res.report.Ranking[1].Count)
	assert.Equal(t, 7, res.report.TotalMatches)

	assert.Contains(t, res.results, "'hay'")
	assert.Contains(t, res.results, "'needle'")
	assert.NotContains(t, res.results, "a.txt")
	assert.Equal(t, "matches in 3 out of 3 files (100.0%)\n", res.diag)
}

func TestExecuteStatistics(t *testing.T) {
	res := run(t, corpus, "a.txt\nb.txt\nc.txt\nmissing.txt\n", &config.Options{
		Pattern: ptr("/needle/"),
		Filters: []config.FilterSpec{{Kind: config.KindGlob, Pattern: "[abm]*"}},
	}, nil)
	require.NoError(t, res.err)

	c := res.report.Counters
	assert.Equal(t, 3, c.Paths)
	assert.Equal(t, 1, c.PathsWithMatch)
	assert.Equal(t, 1, c.PathsWithoutMatch)
	assert.Equal(t, c.Paths-c.Skipped-c.PathsWithMatch, c.PathsWithoutMatch)
	assert.Equal(t, 1, c.Filtered)
	assert.Equal(t, 1, c.Skipped)
	assert.Equal(t, 1, c.OpenErrors)
	assert.Equal(t, []string{"c.txt"}, res.report.Filtered)
	assert.Equal(t, []string{"missing.txt"}, res.report.OpenErrors)
}

func TestExecuteFilesFrom(t *testing.T) {
	files := map[string]string{
		"list.txt": "a.txt\n",
		"a.txt":    "needle\n",
	}

	res := run(t, files, "ignored.txt\n", &config.Options{Pattern: ptr("/needle/"), FilesFrom: "list.txt"}, nil)
	require.NoError(t, res.err)
	assert.Equal(t, "a.txt\n", res.results)

	res = run(t, files, "", &config.Options{Pattern: ptr("/needle/"), FilesFrom: "nope.txt"}, nil)
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, ErrConfig))
	assert.Contains(t, res.err.Error(), "can not read files from 'nope.txt'")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Options
		errContains string
	}{
		{
			name:        "invalid_pattern",
			cfg:         &config.Options{Pattern: ptr("/(/")},
			errContains: "invalid pattern: `/(/`",
		},
		{
			name:        "invalid_replacement",
			cfg:         &config.Options{Pattern: ptr("/a/"), Replacement: ptr("$3")},
			errContains: "invalid replacement: `$3`",
		},
		{
			name:        "replacement_without_pattern",
			cfg:         &config.Options{Replacement: ptr("x")},
			errContains: "replacement without pattern",
		},
		{
			name:        "invalid_lines_only",
			cfg:         &config.Options{Pattern: ptr("/a/"), LinesOnly: []string{"x"}},
			errContains: "invalid --lines-only pattern",
		},
		{
			name:        "invalid_lines_not",
			cfg:         &config.Options{Pattern: ptr("/a/"), LinesNot: []string{"/[/"}},
			errContains: "invalid --lines-not pattern",
		},
		{
			name:        "invalid_glob",
			cfg:         &config.Options{Filters: []config.FilterSpec{{Kind: config.KindGlob, Pattern: "["}}},
			errContains: "invalid --fnmatch pattern",
		},
		{
			name:        "invalid_filter_pattern",
			cfg:         &config.Options{Filters: []config.FilterSpec{{Kind: config.KindOnly, Pattern: "only"}}},
			errContains: "invalid only pattern",
		},
		{
			name:        "unknown_filter_kind",
			cfg:         &config.Options{Filters: []config.FilterSpec{{Kind: "what", Pattern: "/x/"}}},
			errContains: "unknown filter kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, nil, "", tt.cfg, nil)
			require.Error(t, res.err)
			assert.True(t, errors.Is(res.err, ErrConfig))
			assert.Contains(t, res.err.Error(), tt.errContains)
		})
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{Config: &config.Options{}})
	assert.Error(t, err)
}

// 🔧 failingWrites lets reads through and fails writes
type failingWrites struct {
	*fsys.Manager
	mock.Mock
}

func (m *failingWrites) WriteFile(ctx context.Context, path string, content []byte) error {
	return m.Called(path).Error(0)
}

func TestExecuteWriteFailure(t *testing.T) {
	var mfs *failingWrites
	res := run(t, corpus, "a.txt\nb.txt\n", &config.Options{Pattern: ptr("/needle/"), Replacement: ptr("pin")}, func(fs afero.Fs) fsys.FileManager {
		mfs = &failingWrites{Manager: fsys.New(fs)}
		mfs.On("WriteFile", "a.txt").Return(errors.New("disk full"))
		return mfs
	})
	require.NoError(t, res.err)
	mfs.AssertExpectations(t)

	assert.Equal(t, "hay\nneedle\n", res.read(t, "a.txt"))
	assert.Equal(t, "skipping path: error writing file 'a.txt'\n"+
		"skipped paths: 1 out of 2 files were skipped\n"+
		"changes in 0 of 2 files\n", res.diag)

	c := res.report.Counters
	assert.Equal(t, 1, c.OpenErrors)
	assert.Equal(t, 0, c.PathsWithMatch)
	assert.Equal(t, 0, c.PathsWithReplacement)
	assert.Equal(t, c.Paths-c.Skipped, c.PathsWithMatch+c.PathsWithoutMatch)
}
