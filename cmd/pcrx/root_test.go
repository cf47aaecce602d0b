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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cmdResult struct {
	dir    string
	stdout string
	stderr string
	err    error
}

func (r *cmdResult) read(t *testing.T, name string) string {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	require.NoError(t, err)
	return string(data)
}

// runCmd runs pcrx in a fresh directory holding files
func runCmd(t *testing.T, files map[string]string, stdin string, args ...string) *cmdResult {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })
	t.Setenv(ConfigEnv, "")

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"-C", dir}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err = cmd.Execute()
	return &cmdResult{dir: dir, stdout: stdout.String(), stderr: stderr.String(), err: err}
}

var files = map[string]string{
	"a.txt":     "hello world\n",
	"b.txt":     "nothing here\n",
	"sub/c.txt": "say hello\nhello again\n",
}

const list = "a.txt\nb.txt\nsub/c.txt\n"

func TestRootCmd(t *testing.T) {
	tests := []struct {
		name       string
		stdin      string
		args       []string
		wantStdout string
		wantStderr string
		wantFiles  map[string]string
	}{
		{
			name:       "list_matching_paths",
			stdin:      list,
			args:       []string{"/hello/"},
			wantStdout: "a.txt\nsub/c.txt\n",
			wantStderr: "matches in 2 out of 3 files (66.7%)\n",
		},
		{
			name:       "replace",
			stdin:      list,
			args:       []string{"/hel(l)o/", "j$1o"},
			wantStderr: "changes in 2 of 3 files\n",
			wantFiles: map[string]string{
				"a.txt":     "jlo world\n",
				"sub/c.txt": "say jlo\njlo again\n",
			},
		},
		{
			name:       "dry_run",
			stdin:      list,
			args:       []string{"-n", "/hello/", "bye"},
			wantStderr: "dry run: not writing changes to 2 of 3 files (66.7%), 0 filtered (0.0%)\n",
			wantFiles:  files,
		},
		{
			name:       "fnmatch_filter",
			stdin:      list,
			args:       []string{"--fnmatch", "*.txt", "/hello/"},
			wantStdout: "a.txt\n",
			wantStderr: "filtered path(s): 1 (33.3% / 1:2.00)\nmatches in 1 out of 2 files (50.0%)\n",
		},
		{
			name:       "only_inverted",
			stdin:      list,
			args:       []string{"--only", "/again/", "--invert", "--print-paths"},
			wantStdout: "a.txt\nb.txt\n",
		},
		{
			name:       "lines_only_and_multiple",
			stdin:      "sub/c.txt\n",
			args:       []string{"--lines-only", "/^say/", "-m", "/l/", ""},
			wantStderr: "changes in 1 of 1 files\n",
			wantFiles:  map[string]string{"sub/c.txt": "say heo\nhello again\n"},
		},
		{
			name:       "files_from",
			args:       []string{"-T", "list.txt", "/world/"},
			wantStdout: "a.txt\n",
			wantStderr: "matches in 1 out of 1 files (100.0%)\n",
		},
		{
			name:       "no_pattern",
			stdin:      "b.txt\x00a.txt\x00",
			wantStdout: "b.txt\na.txt\n",
			wantStderr: "matches in 0 out of 2 files (0.0%)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withList := map[string]string{"list.txt": "a.txt\n"}
			for k, v := range files {
				withList[k] = v
			}

			res := runCmd(t, withList, tt.stdin, tt.args...)
			require.NoError(t, res.err)

			assert.Equal(t, tt.wantStdout, res.stdout)
			assert.Equal(t, tt.wantStderr, res.stderr)
			for name, want := range tt.wantFiles {
				assert.Equal(t, want, res.read(t, name), "file %s", name)
			}
		})
	}
}

func TestRootCmdErrors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errContains string
	}{
		{
			name:        "invalid_pattern",
			args:        []string{"/(/"},
			errContains: "invalid pattern: `/(/`",
		},
		{
			name:        "invalid_replacement",
			args:        []string{"/a/", `\2`},
			errContains: "invalid replacement",
		},
		{
			name:        "too_many_args",
			args:        []string{"/a/", "b", "c"},
			errContains: "accepts at most 2 arg(s)",
		},
		{
			name:        "missing_directory",
			args:        []string{"-C", "does-not-exist", "/a/"},
			errContains: "can not change to 'does-not-exist'",
		},
		{
			name:        "missing_files_from",
			args:        []string{"-T", "nope.txt", "/a/"},
			errContains: "can not read files from 'nope.txt'",
		},
		{
			name:        "missing_profile",
			args:        []string{"--config", "nope.yaml"},
			errContains: "reading profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCmd(t, files, "", tt.args...)
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), tt.errContains)
		})
	}
}

func TestRootCmdProfile(t *testing.T) {
	profileDir := t.TempDir()
	profile := filepath.Join(profileDir, "run.yaml")
	require.NoError(t, os.WriteFile(profile, []byte(`
pattern: /hello/
replacement: bye
dry_run: true
filters:
  - kind: path
    pattern: "#^sub/#"
`), 0o644))

	t.Run("profile_from_flag", func(t *testing.T) {
		res := runCmd(t, files, list, "--config", profile)
		require.NoError(t, res.err)
		assert.Equal(t, "dry run: not writing changes to 1 of 1 files (100.0%), 2 filtered (200.0%)\n", res.stderr)
		assert.Equal(t, files["sub/c.txt"], res.read(t, "sub/c.txt"))
	})

	t.Run("flags_override_profile", func(t *testing.T) {
		res := runCmd(t, files, list, "--config", profile, "--dry-run=false", "/again/", "AGAIN")
		require.NoError(t, res.err)
		assert.Equal(t, "filtered path(s): 2 (66.7% / 1:0.50)\nchanges in 1 of 1 files\n", res.stderr)
		assert.Equal(t, "say hello\nhello AGAIN\n", res.read(t, "sub/c.txt"))
	})

	t.Run("profile_from_environment", func(t *testing.T) {
		color.NoColor = true
		wd, err := os.Getwd()
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\n"), 0o644))
		t.Setenv(ConfigEnv, profile)

		var stdout, stderr bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetArgs([]string{"-C", dir, "--print-paths"})
		cmd.SetIn(strings.NewReader("a.txt\nsub/x.txt\n"))
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "sub/x.txt\n", stdout.String())
	})
}

func TestVersion(t *testing.T) {
	res := runCmd(t, nil, "", "--version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "pcrx "))
	assert.Equal(t, 1, strings.Count(res.stdout, "\n"))

	res = runCmd(t, nil, "", "--version", "-v")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "    go: ")
	assert.Contains(t, res.stdout, "    platform: ")
}

func TestHelp(t *testing.T) {
	res := runCmd(t, nil, "", "--help")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "A reference to a group that\n<search> does not have is an error")
	assert.Contains(t, res.stdout, "filters\nsee file.txt")
}
