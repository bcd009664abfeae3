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

// Package arena defines an Arena type addressed by compressed pointers.
//
// Compressed pointers are four-byte indices rather than machine pointers.
// This keeps pointer-heavy structures such as syntax trees small, gives the GC
// far less to trace (a tree of indices looks like a handful of flat slices),
// and keeps values allocated together close together in memory.
//
// Values in an arena never move once allocated, so a *T obtained from an
// arena remains valid for as long as the arena's storage is alive.
package arena

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"
)

// minLenShift is the log2 of the length of the first chunk of an arena.
const (
	minLenShift = 4
	minLen      = 1 << minLenShift
)

// Untyped is an untyped arena pointer.
//
// The value of a pointer is one plus the number of values allocated before
// it. Zero is the nil pointer.
type Untyped uint32

// Nil returns whether this pointer is nil.
func (p Untyped) Nil() bool {
	return p == 0
}

// Pointer is a typed compressed arena pointer.
//
// It cannot be dereferenced directly; see [Pointer.In]. The zero value is nil.
type Pointer[T any] Untyped

// Nil returns whether this pointer is nil.
func (p Pointer[T]) Nil() bool {
	return Untyped(p).Nil()
}

// In looks up this pointer in the given arena.
//
// arena must be the arena that allocated p, otherwise this returns an
// arbitrary value or panics. Panics if p is nil.
func (p Pointer[T]) In(arena *Arena[T]) *T {
	return arena.At(Untyped(p))
}

// Arena is a growable slice of T whose elements never move.
//
// It keeps a table of chunks whose capacities double, mimicking the growth of
// an ordinary slice without ever copying old elements. Lookup is O(1): two
// pointer loads and a leading-zeros count.
//
// A zero Arena is empty and ready to use. An Arena is not safe for concurrent
// use; callers that share one must provide their own synchronization.
type Arena[T any] struct {
	// Invariants:
	// 1. cap(table[0]) == minLen.
	// 2. cap(table[n]) == 2*cap(table[n-1]).
	// 3. len(table[n]) == cap(table[n]) for n < len(table)-1.
	table [][]T
}

// New allocates a new value on the arena and returns a pointer to it.
func (a *Arena[T]) New(value T) Pointer[T] {
	if a.table == nil {
		a.table = [][]T{make([]T, 0, minLen)}
	}

	last := &a.table[len(a.table)-1]
	if len(*last) == cap(*last) {
		a.table = append(a.table, make([]T, 0, 2*cap(*last)))
		last = &a.table[len(a.table)-1]
	}

	*last = append(*last, value)
	return Pointer[T](a.Len())
}

// At dereferences an untyped pointer, as if by [Pointer.In].
//
// Panics if ptr is nil or was not allocated by this arena.
func (a *Arena[T]) At(ptr Untyped) *T {
	if ptr.Nil() {
		panic("arena: dereferenced nil pointer")
	}
	chunk, idx := a.coordinates(int(ptr) - 1)
	return &a.table[chunk][idx]
}

// Contains returns whether ptr is a non-nil pointer into this arena.
func (a *Arena[T]) Contains(ptr Untyped) bool {
	return !ptr.Nil() && int(ptr) <= a.Len()
}

// Len returns the number of values allocated on this arena.
func (a *Arena[T]) Len() int {
	if len(a.table) == 0 {
		return 0
	}

	// Only the last chunk can be partially filled.
	return lenOfFirstN(len(a.table)-1) + len(a.table[len(a.table)-1])
}

// All returns an iterator over the pointers and values in this arena, in
// allocation order.
func (a *Arena[T]) All() iter.Seq2[Pointer[T], *T] {
	return func(yield func(Pointer[T], *T) bool) {
		n := 0
		for _, chunk := range a.table {
			for i := range chunk {
				n++
				if !yield(Pointer[T](n), &chunk[i]) {
					return
				}
			}
		}
	}
}

// Reset drops all values in the arena. Pointers allocated before the reset
// must not be used afterwards.
func (a *Arena[T]) Reset() {
	a.table = nil
}

// String implements [fmt.Stringer].
//
// Chunk boundaries are rendered with a |.
func (a *Arena[T]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, chunk := range a.table {
		if i != 0 {
			b.WriteByte('|')
		}
		for j, v := range chunk {
			if j != 0 {
				b.WriteByte(' ')
			}
			fmt.Fprint(&b, v)
		}
	}
	b.WriteByte(']')
	return b.String()
}

// lenOfNth returns the capacity of the nth chunk, even if it has not been
// allocated yet.
func lenOfNth(n int) int {
	return minLen << n
}

// lenOfFirstN returns the total capacity of the first n chunks.
func lenOfFirstN(n int) int {
	// 2^m + 2^(m+1) + ... + 2^(m+n-1) = 2^(m+n) - 2^m.
	return max(0, lenOfNth(n)-lenOfNth(0))
}

// coordinates returns the chunk and offset of idx, after bounds-checking it.
func (a *Arena[T]) coordinates(idx int) (int, int) {
	if idx < 0 || idx >= a.Len() {
		panic(fmt.Sprintf("arena: pointer out of range: %#x", idx+1))
	}

	// The first index of chunk k is (2^k - 1) << minLenShift. Adding minLen
	// turns that into 2^k << minLenShift, whose bit length is
	// k + minLenShift + 1.
	chunk := bits.UintSize - bits.LeadingZeros(uint(idx)+minLen)
	chunk -= minLenShift + 1

	return chunk, idx - lenOfFirstN(chunk)
}
