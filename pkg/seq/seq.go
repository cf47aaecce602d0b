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

// Package seq holds small pull-based helpers over iter.Seq.
//
// Every helper wraps the sequence it is given and does no work until the
// result is ranged over. Ordering is strictly that of the source.
package seq

import "iter"

// 🔍 Filter yields the elements keep accepts
func Filter[T any](s iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range s {
			if !keep(v) {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// 🔄 Map yields fn(v) for every element
func Map[T, U any](s iter.Seq[T], fn func(T) U) iter.Seq[U] {
	return func(yield func(U) bool) {
		for v := range s {
			if !yield(fn(v)) {
				return
			}
		}
	}
}

// ▶️ First drops elements until start accepts one, then yields that element
// and every element after it.
func First[T any](s iter.Seq[T], start func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		started := false
		for v := range s {
			if !started {
				if !start(v) {
					continue
				}
				started = true
			}
			if !yield(v) {
				return
			}
		}
	}
}

// ⏹️ Last yields elements up to and including the first one stop accepts.
func Last[T any](s iter.Seq[T], stop func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range s {
			if !yield(v) || stop(v) {
				return
			}
		}
	}
}

// 🌊 Stream chains stages over a single sequence.
type Stream[T any] struct {
	seq iter.Seq[T]
}

// 🏭 From wraps s
func From[T any](s iter.Seq[T]) *Stream[T] {
	return &Stream[T]{seq: s}
}

// Filter adds a Filter stage
func (s *Stream[T]) Filter(keep func(T) bool) *Stream[T] {
	s.seq = Filter(s.seq, keep)
	return s
}

// Map adds a same-type Map stage. Use the package-level Map to change type.
func (s *Stream[T]) Map(fn func(T) T) *Stream[T] {
	s.seq = Map(s.seq, fn)
	return s
}

// First adds a First stage
func (s *Stream[T]) First(start func(T) bool) *Stream[T] {
	s.seq = First(s.seq, start)
	return s
}

// Last adds a Last stage
func (s *Stream[T]) Last(stop func(T) bool) *Stream[T] {
	s.seq = Last(s.seq, stop)
	return s
}

// Each drains the stream
func (s *Stream[T]) Each(fn func(T)) {
	for v := range s.seq {
		fn(v)
	}
}

// Seq returns the composed sequence
func (s *Stream[T]) Seq() iter.Seq[T] {
	return s.seq
}
