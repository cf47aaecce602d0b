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

package stats

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/walteh/pcrx/pkg/text"
)

// 📋 Report is the read-only outcome of a run
type Report struct {
	Counters     Counters
	TotalMatches int
	Ranking      []Rank
	Filtered     []string
	Skipped      []string
	OpenErrors   []string

	occurrences map[string][]Occurrence
}

// Occurrences returns where match was found, in discovery order
func (r *Report) Occurrences(match string) []Occurrence {
	return r.occurrences[match]
}

// SummaryOptions select the summary lines that apply to a run
type SummaryOptions struct {
	DryRun  bool
	Replace bool
}

// 🏆 RenderRanking writes the distinct matches, most frequent first, followed
// by the number of processed paths without any match.
func (r *Report) RenderRanking(w io.Writer) {
	if len(r.Ranking) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "Match", "Count", "Matches", "Files"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetColumnAlignment([]int{
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
		})

		for i, rank := range r.Ranking {
			table.Append([]string{
				fmt.Sprintf("%d.", i+1),
				"'" + text.Pascii(rank.Match) + "'",
				fmt.Sprintf("%d", rank.Count),
				fmt.Sprintf("%.1f%%", rank.Share),
				fmt.Sprintf("%.1f%%", rank.PathShare),
			})
		}
		table.Render()
	}

	if n := r.Counters.PathsWithoutMatch; n > 0 {
		fmt.Fprintf(w, "non-skipped files w/o matches: %d (%.1f%%)\n", n, Percent(n, r.Counters.Paths))
	}
}

// 📝 Summary returns the closing tallies, one message per line
func (r *Report) Summary(opts SummaryOptions) []string {
	c := r.Counters
	var out []string

	if c.Skipped > 0 {
		if c.Skipped == c.Paths {
			out = append(out, "skipped paths: all files were skipped")
		} else {
			out = append(out, fmt.Sprintf("skipped paths: %d out of %d files were skipped", c.Skipped, c.Paths))
		}
	}

	if opts.DryRun {
		filteredShare := Percent(c.Filtered, c.Paths)
		if c.Paths == 0 && c.Filtered > 0 {
			filteredShare = 100
		}
		return append(out, fmt.Sprintf("dry run: not writing changes to %d of %d files%s, %d filtered (%.1f%%)",
			c.PathsWithReplacement, c.Paths, share(c.PathsWithReplacement, c.Paths), c.Filtered, filteredShare))
	}

	if c.Filtered > 0 {
		out = append(out, fmt.Sprintf("filtered path(s): %d (%.1f%% / 1:%.2f)",
			c.Filtered, Percent(c.Filtered, c.Filtered+c.Paths), float64(c.Paths)/float64(c.Filtered)))
	}

	if !opts.Replace {
		out = append(out, fmt.Sprintf("matches in %d out of %d files%s", c.PathsWithMatch, c.Paths, share(c.PathsWithMatch, c.Paths)))
	} else {
		out = append(out, fmt.Sprintf("changes in %d of %d files", c.PathsWithReplacement, c.Paths))
	}

	return out
}

// share renders " (P%)" or nothing when there is no total
func share(n, total int) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf(" (%.1f%%)", Percent(n, total))
}
