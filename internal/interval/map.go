// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package interval provides a map keyed by disjoint half-open intervals.
package interval

import (
	"fmt"
	"iter"

	"github.com/tidwall/btree"
	"golang.org/x/exp/constraints" //nolint:exptostd // Integer has no cmp equivalent.
)

// Endpoint is a type that may be used as an interval endpoint.
type Endpoint = constraints.Integer

// Interval is an entry in a [Map]: the half-open range [Start, End) and the
// value associated with it.
type Interval[K Endpoint, V any] struct {
	Start, End K
	Value      V
}

// Contains returns whether point lies within this interval.
func (i Interval[K, V]) Contains(point K) bool {
	return i.Start <= point && point < i.End
}

// Map is a collection of disjoint, non-empty half-open intervals, each with
// an associated value, that can be searched by point.
//
// A zero Map is empty and ready to use.
type Map[K Endpoint, V any] struct {
	// Keyed by the (exclusive) end of each interval. Because intervals are
	// disjoint, ordering by end is the same as ordering by start.
	tree btree.Map[K, entry[K, V]]
}

type entry[K Endpoint, V any] struct {
	start K
	value V
}

// Len returns the number of intervals in this map.
func (m *Map[K, V]) Len() int {
	return m.tree.Len()
}

// Get returns the interval containing point, if there is one.
func (m *Map[K, V]) Get(point K) (Interval[K, V], bool) {
	iter := m.tree.Iter()
	// The interval containing point is the one with the least end strictly
	// greater than point.
	if !iter.Seek(point+1) || point < iter.Value().start {
		return Interval[K, V]{}, false
	}

	return Interval[K, V]{
		Start: iter.Value().start,
		End:   iter.Key(),
		Value: iter.Value().value,
	}, true
}

// Insert adds [start, end) to the map.
//
// If the new interval overlaps an existing one, the map is left unchanged and
// the overlapped interval with the least start is returned along with false.
//
// Panics if start >= end.
func (m *Map[K, V]) Insert(start, end K, value V) (overlap Interval[K, V], ok bool) {
	if start >= end {
		panic(fmt.Sprintf("interval: empty or inverted interval [%#v, %#v)", start, end))
	}

	// The first interval whose end is past start is the only candidate for
	// an overlap with the least start: every interval before it ends at or
	// before start.
	iter := m.tree.Iter()
	if iter.Seek(start+1) && iter.Value().start < end {
		return Interval[K, V]{
			Start: iter.Value().start,
			End:   iter.Key(),
			Value: iter.Value().value,
		}, false
	}

	m.tree.Set(end, entry[K, V]{start: start, value: value})
	return Interval[K, V]{}, true
}

// All returns an iterator over the intervals in this map, in order.
func (m *Map[K, V]) All() iter.Seq[Interval[K, V]] {
	return func(yield func(Interval[K, V]) bool) {
		iter := m.tree.Iter()
		for more := iter.First(); more; more = iter.Next() {
			if !yield(Interval[K, V]{
				Start: iter.Value().start,
				End:   iter.Key(),
				Value: iter.Value().value,
			}) {
				return
			}
		}
	}
}

// Format implements [fmt.Formatter].
func (m *Map[K, V]) Format(s fmt.State, v rune) {
	fmt.Fprint(s, "{")
	first := true
	m.tree.Scan(func(end K, e entry[K, V]) bool {
		if !first {
			fmt.Fprint(s, ", ")
		}
		first = false
		fmt.Fprintf(s, "[%#v, %#v): ", e.start, end)
		fmt.Fprintf(s, fmt.FormatString(s, v), e.value)
		return true
	})
	fmt.Fprint(s, "}")
}
