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

// Package source maps byte offsets in a tree's text to human-readable line
// and column locations.
package source

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/rivo/uniseg"
)

// TabstopWidth is the width that tabs are rendered as when measuring columns
// in [TermWidth].
const TabstopWidth = 4

// Unit is a unit of length for columns.
type Unit int

const (
	// Bytes counts columns in bytes.
	Bytes Unit = iota
	// Runes counts columns in Unicode code points.
	Runes
	// UTF16 counts columns in UTF-16 code units, as LSP clients do.
	UTF16
	// TermWidth counts columns as rendered in a monospace terminal, with
	// tabstops every [TabstopWidth] columns.
	TermWidth
)

// String implements [fmt.Stringer].
func (u Unit) String() string {
	switch u {
	case Bytes:
		return "Bytes"
	case Runes:
		return "Runes"
	case UTF16:
		return "UTF16"
	case TermWidth:
		return "TermWidth"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Location is a position in some text. Line and Column are 1-indexed.
type Location struct {
	Offset       int
	Line, Column int
}

// String implements [fmt.Stringer].
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Index is a line index over some text.
//
// The index is computed on first use. An Index is safe for concurrent use.
// A nil *Index behaves like an index over empty text.
type Index struct {
	text string

	once sync.Once
	// The offset of the start of each line; that is, zero followed by the
	// offset immediately after each \n.
	lines []int
}

// NewIndex returns a new index over text.
func NewIndex(text string) *Index {
	return &Index{text: text}
}

// Text returns the indexed text.
func (i *Index) Text() string {
	if i == nil {
		return ""
	}
	return i.text
}

// Lines returns the number of lines in the text. Text that ends in a newline
// has an empty last line.
func (i *Index) Lines() int {
	return max(1, len(i.lineStarts()))
}

// LineByOffset returns the 0-indexed line containing offset.
//
// This operation is O(log n).
func (i *Index) LineByOffset(offset int) int {
	lines := i.lineStarts()
	if len(lines) == 0 {
		return 0
	}

	line, exact := slices.BinarySearch(lines, offset)
	if !exact {
		line--
	}
	return line
}

// Line returns the given 1-indexed line, including its trailing newline.
func (i *Index) Line(line int) string {
	start, end := i.LineOffsets(line)
	return i.Text()[start:end]
}

// LineOffsets returns the offsets of the given 1-indexed line, including its
// trailing newline.
//
// Panics if line is out of range.
func (i *Index) LineOffsets(line int) (start, end int) {
	lines := i.lineStarts()
	if line < 1 || line > max(1, len(lines)) {
		panic(fmt.Sprintf("source: line %d out of range [1, %d]", line, max(1, len(lines))))
	}
	if len(lines) == 0 {
		return 0, 0
	}
	if line == len(lines) {
		return lines[line-1], len(i.text)
	}
	return lines[line-1], lines[line]
}

// Location returns the location of the given byte offset, with the column
// measured in units.
//
// This operation is O(log n) in the number of lines, plus the length of the
// line.
func (i *Index) Location(offset int, units Unit) Location {
	if offset < 0 || offset > len(i.Text()) {
		panic(fmt.Sprintf("source: offset %d out of range [0, %d]", offset, len(i.Text())))
	}
	if offset == 0 {
		return Location{Offset: 0, Line: 1, Column: 1}
	}

	line := i.LineByOffset(offset)
	chunk := i.text[i.lines[line]:offset]

	var column int
	switch units {
	case Bytes:
		column = len(chunk)
	case Runes:
		for range chunk {
			column++
		}
	case UTF16:
		for _, r := range chunk {
			column += utf16.RuneLen(r)
		}
	case TermWidth:
		column = termWidth(chunk)
	default:
		panic(fmt.Sprintf("source: unknown unit %v", units))
	}

	return Location{
		Offset: offset,
		Line:   line + 1,
		Column: column + 1,
	}
}

// InverseLocation returns the byte offset of the given 1-indexed line and
// column, with the column measured in units. Columns past the end of the
// line are clamped to the line's end.
//
// Panics if units is [TermWidth], since terminal columns do not map back to
// offsets unambiguously.
func (i *Index) InverseLocation(line, column int, units Unit) int {
	start, end := i.LineOffsets(line)
	chunk := i.text[start:end]

	var offset int
	switch units {
	case Bytes:
		offset = min(column-1, len(chunk))
	case Runes:
		offset = len(chunk)
		for j := range chunk {
			if column <= 1 {
				offset = j
				break
			}
			column--
		}
	case UTF16:
		offset = len(chunk)
		for j, r := range chunk {
			if column <= 1 {
				offset = j
				break
			}
			column -= utf16.RuneLen(r)
		}
	case TermWidth:
		panic("source: passed TermWidth to Index.InverseLocation")
	default:
		panic(fmt.Sprintf("source: unknown unit %v", units))
	}

	return start + max(offset, 0)
}

func (i *Index) lineStarts() []int {
	if i == nil {
		return nil
	}

	i.once.Do(func() {
		next := 0
		text := i.text
		i.lines = append(i.lines, 0)
		for {
			// The start of the next line is the index immediately after the
			// newline byte.
			newline := strings.IndexByte(text, '\n') + 1
			if newline == 0 {
				break
			}
			text = text[newline:]
			next += newline
			i.lines = append(i.lines, next)
		}
	})
	return i.lines
}

// termWidth measures the rendered width of text, which must not contain
// newlines.
func termWidth(text string) int {
	column := 0
	for j, chunk := range strings.Split(text, "\t") {
		if j > 0 {
			column += TabstopWidth - column%TabstopWidth
		}
		column += uniseg.StringWidth(chunk)
	}
	return column
}
