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

// Package filter decides which paths of a run get processed.
//
//	paths ──▶ [stage 1] ──▶ [stage 2] ──▶ … ──▶ accepted
//	              │              │
//	              ▼              ▼
//	          rejected       rejected   (recorded with the stage name)
//
// A chain accepts a path only when every stage does and stops at the first
// rejecting stage. Stages are independent, so their order only affects which
// stage a rejection is attributed to.
package filter

import (
	"context"
	"iter"

	"github.com/walteh/pcrx/pkg/seq"
)

// 🧪 Stage is one named predicate over a path
type Stage interface {
	// Name identifies the stage in diagnostics, e.g. "--fnmatch"
	Name() string
	// Pattern is the stage's pattern as configured
	Pattern() string
	// Accept decides over path. Failing to inspect path means rejection.
	Accept(ctx context.Context, path string) bool
}

// 🚫 Rejection records which stage rejected a path
type Rejection struct {
	Path    string
	Stage   string
	Pattern string
}

// 🔗 Chain runs stages in order
type Chain struct {
	stages   []Stage
	rejected []Rejection
	onReject func(Rejection)
}

// 🏭 NewChain creates a chain over stages
func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// Add appends a stage
func (c *Chain) Add(s Stage) {
	c.stages = append(c.stages, s)
}

// Len returns the number of stages
func (c *Chain) Len() int {
	return len(c.stages)
}

// OnReject registers fn to be called for every rejection
func (c *Chain) OnReject(fn func(Rejection)) {
	c.onReject = fn
}

// Rejected returns the rejections so far, in order
func (c *Chain) Rejected() []Rejection {
	return c.rejected
}

// 🔍 Accept runs path through the stages
func (c *Chain) Accept(ctx context.Context, path string) bool {
	for _, s := range c.stages {
		if s.Accept(ctx, path) {
			continue
		}

		r := Rejection{Path: path, Stage: s.Name(), Pattern: s.Pattern()}
		c.rejected = append(c.rejected, r)
		if c.onReject != nil {
			c.onReject(r)
		}
		return false
	}
	return true
}

// 🌊 Apply filters a lazy sequence of values through the chain. key picks
// the path each value is judged by.
func Apply[T any](ctx context.Context, c *Chain, values iter.Seq[T], key func(T) string) iter.Seq[T] {
	return seq.Filter(values, func(v T) bool {
		return c.Accept(ctx, key(v))
	})
}
