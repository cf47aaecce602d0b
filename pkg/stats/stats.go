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

// Package stats accumulates what happened to every path of a run and renders
// the end-of-run report.
package stats

import (
	"slices"
	"sort"
)

// 📊 Counters are the run wide tallies
type Counters struct {
	Paths                int // paths that made it through the filters
	PathsWithMatch       int
	PathsWithoutMatch    int
	PathsWithReplacement int
	Filtered             int
	Skipped              int // includes open errors
	OpenErrors           int
}

// 📍 Occurrence is one place a match was found
type Occurrence struct {
	Path string
	Line int // 1-based
}

// 🏆 Rank is one distinct match in the ranking
type Rank struct {
	Match     string
	Count     int     // occurrences
	Paths     int     // distinct paths holding the match
	Share     float64 // percent of all occurrences
	PathShare float64 // percent of processed paths
}

// 📈 Aggregator collects counters and match distributions for one run. It is
// owned by the run and not safe for concurrent use.
type Aggregator struct {
	counters   Counters
	filtered   []string
	skipped    []string
	openErrors []string

	order   []string
	matches map[string][]Occurrence
	paths   map[string]map[string]int
}

// 🏭 New creates an empty aggregator
func New() *Aggregator {
	return &Aggregator{
		matches: make(map[string][]Occurrence),
		paths:   make(map[string]map[string]int),
	}
}

// AddPath counts a path entering processing
func (a *Aggregator) AddPath() { a.counters.Paths++ }

// AddMatchingPath counts a path with at least one matching line
func (a *Aggregator) AddMatchingPath() { a.counters.PathsWithMatch++ }

// AddNonMatchingPath counts a processed path without any matching line
func (a *Aggregator) AddNonMatchingPath() { a.counters.PathsWithoutMatch++ }

// AddReplacedPath counts a path with at least one changed line
func (a *Aggregator) AddReplacedPath() { a.counters.PathsWithReplacement++ }

// AddFiltered records a path rejected by a filter stage
func (a *Aggregator) AddFiltered(path string) {
	a.counters.Filtered++
	a.filtered = append(a.filtered, path)
}

// AddSkipped records a path that could not be processed
func (a *Aggregator) AddSkipped(path string) {
	a.counters.Skipped++
	a.skipped = append(a.skipped, path)
}

// AddOpenError records a path that could not be read or written. It is
// skipped as well.
func (a *Aggregator) AddOpenError(path string) {
	a.counters.OpenErrors++
	a.openErrors = append(a.openErrors, path)
	a.AddSkipped(path)
}

// 📝 RecordMatch adds one occurrence of match
func (a *Aggregator) RecordMatch(match, path string, line int) {
	if _, seen := a.matches[match]; !seen {
		a.order = append(a.order, match)
		a.paths[match] = make(map[string]int)
	}
	a.matches[match] = append(a.matches[match], Occurrence{Path: path, Line: line})
	a.paths[match][path]++
}

// Counters returns the current tallies
func (a *Aggregator) Counters() Counters {
	return a.counters
}

// 🏁 Finalize freezes the collected data into a report
func (a *Aggregator) Finalize() *Report {
	r := &Report{
		Counters:    a.counters,
		Filtered:    slices.Clone(a.filtered),
		Skipped:     slices.Clone(a.skipped),
		OpenErrors:  slices.Clone(a.openErrors),
		occurrences: make(map[string][]Occurrence, len(a.matches)),
	}

	for _, match := range a.order {
		occ := a.matches[match]
		r.occurrences[match] = slices.Clone(occ)
		r.TotalMatches += len(occ)
	}

	r.Ranking = make([]Rank, 0, len(a.order))
	for _, match := range a.order {
		count := len(a.matches[match])
		paths := len(a.paths[match])
		r.Ranking = append(r.Ranking, Rank{
			Match:     match,
			Count:     count,
			Paths:     paths,
			Share:     Percent(count, r.TotalMatches),
			PathShare: Percent(paths, a.counters.Paths),
		})
	}

	// ties keep first-seen order
	sort.SliceStable(r.Ranking, func(i, j int) bool {
		return r.Ranking[i].Count > r.Ranking[j].Count
	})

	return r
}

// Percent is 100*n/total, 0 when total is 0
func Percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
