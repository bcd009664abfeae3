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

package syntree

import "fmt"

// Kind is the syntactic category of a token or node, e.g. "identifier" or
// "call expression".
//
// Kinds are chosen by the parser; this package attaches no meaning to them.
// Parsers will usually define their own named constants of this type and
// pass a naming function to [WithKindNames] so that dumps are readable.
type Kind uint16

// String implements [fmt.Stringer].
func (k Kind) String() string {
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// Range is a half-open range of byte offsets, [Start, End), into the text
// that a tree spells out.
type Range struct {
	Start, End int
}

// Len returns the length of this range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns whether this range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains returns whether offset lies within r.
func (r Range) Contains(offset int) bool {
	return r.Start <= offset && offset < r.End
}

// Covers returns whether other lies entirely within r. An empty range at
// r.End is covered.
func (r Range) Covers(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// String implements [fmt.Stringer].
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
