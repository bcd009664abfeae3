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

package syntree_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/syntree"
	"github.com/bufbuild/syntree/policy"
	"github.com/bufbuild/syntree/seq"
	"github.com/bufbuild/syntree/source"
)

func TestRanges(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	tree := buildCall(a).Freeze()
	defer tree.Release()

	root := tree.Root()
	assert.Equal(t, syntree.Range{Start: 0, End: 7}, root.Range())
	assert.Equal(t, "foo bar", root.Text())
	_, ok := root.Parent()
	assert.False(t, ok)

	var ranges []string
	for child := range seq.Values(root.Children()) {
		ranges = append(ranges, child.Range().String())
		parent, ok := child.Parent()
		require.True(t, ok)
		assert.Equal(t, root, parent)
	}
	assert.Equal(t, []string{"[0, 3)", "[3, 4)", "[4, 7)"}, ranges)

	bar := root.Child(2)
	text, ok := bar.TokenText()
	assert.True(t, ok)
	assert.Equal(t, "bar", text)
	assert.Equal(t, "IDENT@[4, 7)", bar.String())
	assert.Equal(t, a.Token(Ident, "bar"), bar.Green())
}

func TestNavigation(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	tree := buildCall(a).Freeze()
	defer tree.Release()
	root := tree.Root()

	first, ok := root.FirstChild()
	require.True(t, ok)
	last, ok := root.LastChild()
	require.True(t, ok)
	assert.Equal(t, root.Child(0), first)
	assert.Equal(t, root.Child(2), last)

	next, ok := first.NextSibling()
	require.True(t, ok)
	assert.Equal(t, root.Child(1), next)
	_, ok = first.PrevSibling()
	assert.False(t, ok)
	_, ok = last.NextSibling()
	assert.False(t, ok)
	_, ok = last.FirstChild()
	assert.False(t, ok)

	assert.Equal(t, 2, last.Index())
	assert.Equal(t, []syntree.Node[*policy.Local]{root}, slices.Collect(last.Ancestors()))
	assert.Panics(t, func() { root.Child(3) })
}

// Shared green subtrees get a distinct occurrence, with its own range, for
// each place they appear.
func TestSharedOccurrences(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	tree := buildList(a, 3).Freeze()
	defer tree.Release()

	root := tree.Root()
	first, third := root.Child(0), root.Child(4)
	assert.Equal(t, first.Green(), third.Green())
	assert.NotEqual(t, first, third)
	assert.Equal(t, syntree.Range{Start: 0, End: 7}, first.Range())
	assert.Equal(t, syntree.Range{Start: 16, End: 23}, third.Range())
	assert.Equal(t, 4, third.Index())
	assert.Equal(t, 15, tree.Len())
}

// Every internal node spans exactly its children, and siblings are
// contiguous.
func TestRangeCoverage(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	b := syntree.NewBuilder(a)
	var build func(depth, fanout int)
	build = func(depth, fanout int) {
		if depth == 0 {
			b.Token(Ident, "x")
			b.Token(Space, "")
			return
		}
		b.StartNode(List)
		for i := range fanout {
			build(depth-1, fanout-i%2)
			b.Token(Comma, ", ")
		}
		b.FinishNode()
	}
	b.StartNode(Call)
	build(4, 3)
	b.FinishNode()

	tree := b.FinishFrozen()
	defer tree.Release()
	assert.Equal(t, len(tree.Text()), tree.Root().Range().End)

	for node := range tree.Root().Preorder() {
		r := node.Range()
		assert.LessOrEqual(t, r.Start, r.End)
		if node.IsToken() {
			text, _ := node.TokenText()
			assert.Equal(t, len(text), r.Len())
			continue
		}

		start := r.Start
		for child := range seq.Values(node.Children()) {
			assert.Equal(t, start, child.Range().Start, "%v in %v", child, node)
			start = child.Range().End
		}
		assert.Equal(t, r.End, start, "%v", node)
		assert.Equal(t, tree.Text()[r.Start:r.End], node.Text())
	}
}

func TestTokenAt(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	tree := a.Node(Call,
		a.Token(Ident, "foo"),
		a.Token(Space, ""),
		a.Token(Space, " "),
		a.Token(Ident, "bar"),
	).Freeze()
	defer tree.Release()

	tests := []struct {
		offset int
		want   string
	}{
		{0, "IDENT@[0, 3)"},
		{2, "IDENT@[0, 3)"},
		{3, "SPACE@[3, 4)"}, // The empty token is skipped.
		{4, "IDENT@[4, 7)"},
		{6, "IDENT@[4, 7)"},
	}
	for _, tt := range tests {
		tok, ok := tree.TokenAt(tt.offset)
		if assert.True(t, ok, "%d", tt.offset) {
			assert.Equal(t, tt.want, tok.String())
		}
	}

	_, ok := tree.TokenAt(7)
	assert.False(t, ok)
	_, ok = tree.TokenAt(-1)
	assert.False(t, ok)
}

func TestCovering(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	tree := buildList(a, 2).Freeze()
	defer tree.Release()

	// LIST "foo bar,foo baz"
	tests := []struct {
		start, end int
		want       string
	}{
		{0, 15, "LIST@[0, 15)"},
		{0, 3, "IDENT@[0, 3)"},
		{1, 2, "IDENT@[0, 3)"},
		{2, 5, "CALL@[0, 7)"},
		{3, 3, "IDENT@[0, 3)"},
		{6, 9, "LIST@[0, 15)"},
		{7, 8, "COMMA@[7, 8)"},
		{12, 15, "IDENT@[12, 15)"},
		{15, 15, "IDENT@[12, 15)"},
	}
	for _, tt := range tests {
		node, ok := tree.Covering(syntree.Range{Start: tt.start, End: tt.end})
		if assert.True(t, ok) {
			assert.Equal(t, tt.want, node.String(), "[%d, %d)", tt.start, tt.end)
		}
	}

	_, ok := tree.Covering(syntree.Range{Start: 3, End: 16})
	assert.False(t, ok)
	_, ok = tree.Covering(syntree.Range{Start: 4, End: 3})
	assert.False(t, ok)
}

func TestWalk(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	tree := a.Node(List, buildCall(a), a.Token(Comma, ",")).Freeze()
	defer tree.Release()

	var events []string
	for event, node := range tree.Root().Walk() {
		events = append(events, event.String()+" "+kindName(node.Kind()))
	}
	assert.Equal(t, []string{
		"Enter LIST",
		"Enter CALL",
		"Enter IDENT", "Leave IDENT",
		"Enter SPACE", "Leave SPACE",
		"Enter IDENT", "Leave IDENT",
		"Leave CALL",
		"Enter COMMA", "Leave COMMA",
		"Leave LIST",
	}, events)

	// Walking a subtree stays within it, and stopping early is respected.
	events = events[:0]
	for event, node := range tree.Root().Child(0).Walk() {
		events = append(events, event.String()+" "+kindName(node.Kind()))
		if len(events) == 3 {
			break
		}
	}
	assert.Equal(t, []string{"Enter CALL", "Enter IDENT", "Leave IDENT"}, events)

	var tokens []string
	for tok := range tree.Root().Tokens() {
		tokens = append(tokens, tok.Text())
	}
	assert.Equal(t, []string{"foo", " ", "bar", ","}, tokens)
}

func TestDump(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	tree := a.Node(List, buildCall(a), a.Token(Comma, ",")).Freeze()
	defer tree.Release()

	assert.Equal(t, `LIST@[0, 8)
  CALL@[0, 7)
    IDENT@[0, 3) "foo"
    SPACE@[3, 4) " "
    IDENT@[4, 7) "bar"
  COMMA@[7, 8) ","
`, tree.Root().Dump())
}

func TestLocation(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	tree := a.Node(List,
		a.Token(Ident, "foo"),
		a.Token(Space, "\n  "),
		a.Token(Ident, "bär"),
	).Freeze()
	defer tree.Release()

	start, end := tree.Root().Child(2).Location(source.Runes)
	assert.Equal(t, source.Location{Offset: 6, Line: 2, Column: 3}, start)
	assert.Equal(t, source.Location{Offset: 10, Line: 2, Column: 6}, end)
	assert.Equal(t, 2, tree.Source().Lines())
}
