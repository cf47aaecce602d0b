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
	"iter"

	"github.com/rs/zerolog"
	"github.com/walteh/pcrx/pkg/engine"
	"github.com/walteh/pcrx/pkg/filter"
	"github.com/walteh/pcrx/pkg/pathlist"
	"github.com/walteh/pcrx/pkg/pathnorm"
	"github.com/walteh/pcrx/pkg/seq"
	"github.com/walteh/pcrx/pkg/stats"
	"gitlab.com/tozd/go/errors"
)

// 🏃 Execute runs the operation over every path of the path list
func (op *Operation) Execute(ctx context.Context) (*stats.Report, error) {
	logger := zerolog.Ctx(ctx)

	if op.cfg.FilesFrom == "" || op.cfg.FilesFrom == pathlist.StdinName {
		op.logger.Infof("reading paths from standard input")
	}
	input, err := pathlist.Open(ctx, op.fs, op.cfg.FilesFrom, op.stdin)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrConfig, err.Error())
	}
	defer input.Close()

	agg := stats.New()
	normalizer := pathnorm.New(op.fs)
	source := pathlist.New(input)

	chain := filter.NewChain(op.stages...)
	chain.OnReject(func(r filter.Rejection) {
		op.logger.Filtered(r.Stage, r.Pattern, r.Path)
		agg.AddFiltered(r.Path)
	})

	paths := filter.Apply(ctx, chain, seq.Map(source.Paths(), normalizer.Resolve), func(p pathnorm.Path) string { return p.Name })

	logger.Debug().Int("filters", chain.Len()).Bool("replace", op.replacer != nil).Msg("starting run")

	if op.cfg.PrintPaths {
		op.printPaths(paths, chain)
	} else if err := op.process(ctx, paths, agg); err != nil {
		return nil, err
	}

	if err := source.Err(); err != nil {
		op.logger.Errorf("i/o error: reading path list: %s", err)
	}

	report := agg.Finalize()
	if op.cfg.PrintPaths {
		return report, nil
	}

	if op.cfg.CountMatches {
		report.RenderRanking(op.logger.Results())
	}
	for _, line := range report.Summary(stats.SummaryOptions{DryRun: op.cfg.DryRun, Replace: op.replacer != nil}) {
		op.logger.Diagf("%s", line)
	}

	return report, nil
}

// 📝 printPaths lists the paths that pass the filters and stops there
func (op *Operation) printPaths(paths iter.Seq[pathnorm.Path], chain *filter.Chain) {
	printed := 0
	for p := range paths {
		op.logger.Path(p.String())
		printed++
	}
	op.logger.Infof("printed %d path(s), %d filtered", printed, len(chain.Rejected()))
}

// ⚙️ process hands every path to the engine. Without a pattern paths are
// only printed.
func (op *Operation) process(ctx context.Context, paths iter.Seq[pathnorm.Path], agg *stats.Aggregator) error {
	var eng *engine.Engine
	if op.pattern != nil {
		var err error
		eng, err = engine.New(engine.Options{
			Pattern:      op.pattern,
			Replacer:     op.replacer,
			Multiple:     op.cfg.Multiple,
			ShowMatch:    op.cfg.ShowMatch,
			CountMatches: op.cfg.CountMatches,
			DryRun:       op.cfg.DryRun,
			Selector:     op.selector,
		}, op.fs, agg, op.logger)
		if err != nil {
			return errors.Errorf("creating engine: %w", err)
		}
	}

	for p := range paths {
		agg.AddPath()

		if eng == nil {
			op.logger.Path(p.Name)
			continue
		}

		eng.Process(ctx, p)
	}

	return nil
}
