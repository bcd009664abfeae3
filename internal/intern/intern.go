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

// Package intern provides the string table that syntax tree arenas store
// token text in.
//
// Interning token text means that every occurrence of, say, "foo" in a file
// shares one string, and that two tokens have the same text exactly when they
// have the same [ID]. The node store relies on the latter to hash-cons tokens
// without comparing strings.
package intern

import (
	"fmt"
	"strings"
)

// ID is an interned string in a particular [Table].
//
// The zero ID is always the empty string.
//
// # Representation
//
// If the high bit is clear, an ID is a one-based index into the strings
// stored in its [Table]. Otherwise it holds up to five characters of a
// variant of the [LLVM char6 encoding] in-line; short identifiers and
// punctuation-free keywords never touch the table at all.
//
// [LLVM char6 encoding]: https://llvm.org/docs/BitCodeFormat.html#bit-characters
type ID int32

// Inlined returns whether this ID holds its string in-line.
func (id ID) Inlined() bool {
	return id < 0
}

// String implements [fmt.Stringer].
//
// This does not recover the interned string; use [Table.Value] for that.
func (id ID) String() string {
	switch {
	case id == 0:
		return `intern.ID("")`
	case id < 0:
		return fmt.Sprintf("intern.ID(%q)", decodeChar6(id))
	default:
		return fmt.Sprintf("intern.ID(%d)", int32(id))
	}
}

// Table is an interning table.
//
// The zero Table is empty and ready to use. A Table is not safe for
// concurrent use: it is owned by an arena, which serializes access to it.
type Table struct {
	index map[string]ID
	table []string

	// Number of Intern calls answered without storing anything new.
	hits int
}

// Intern interns s and returns its ID.
func (t *Table) Intern(s string) ID {
	if id, ok := t.Query(s); ok {
		t.hits++
		return id
	}

	// Token text is usually a substring of a much larger source buffer; clone
	// it so the table does not pin that buffer.
	s = strings.Clone(s)
	t.table = append(t.table, s)

	id := ID(len(t.table))
	if id < 0 {
		panic(fmt.Sprintf("intern: %d interning IDs exhausted", len(t.table)))
	}

	if t.index == nil {
		t.index = make(map[string]ID)
	}
	t.index[s] = id
	return id
}

// Query returns the ID of s if it has already been interned.
//
// Strings that can be held in-line are always considered interned.
func (t *Table) Query(s string) (ID, bool) {
	if id, ok := encodeChar6(s); ok {
		return id, true
	}
	id, ok := t.index[s]
	return id, ok
}

// Value converts id back into its string.
//
// If id came from a different table, the result is unspecified and may be a
// panic.
func (t *Table) Value(id ID) string {
	switch {
	case id == 0:
		return ""
	case id < 0:
		return decodeChar6(id)
	default:
		return t.table[int(id)-1]
	}
}

// Len returns the number of strings stored in the table. In-line strings are
// not counted.
func (t *Table) Len() int {
	return len(t.table)
}

// Hits returns how many calls to [Table.Intern] found their string already
// present.
func (t *Table) Hits() int {
	return t.hits
}

// Reset drops every string in the table. IDs issued before the reset, other
// than in-line ones, must not be used afterwards.
func (t *Table) Reset() {
	*t = Table{}
}
