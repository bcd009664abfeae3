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

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bufbuild/syntree/internal/interval"
	"github.com/bufbuild/syntree/policy"
	"github.com/bufbuild/syntree/seq"
	"github.com/bufbuild/syntree/source"
)

// Frozen is an immutable tree with absolute text ranges.
//
// A Frozen tree records every occurrence of every node in a flat pre-order
// table, so that [Node] views can answer parent, sibling and range queries in
// constant time without locking. Frozen trees are safe for concurrent reads
// under either policy, so long as the tree itself is retained.
//
// Each Frozen holds a reference to its arena; call [Frozen.Release] when done
// with it.
type Frozen[P policy.Policy[P]] struct {
	arena    *Arena[P]
	released atomic.Bool

	entries []entry
	kids    []int32

	tokens struct {
		once  sync.Once
		index interval.Map[uint32, int32]
	}
	lines struct {
		once  sync.Once
		index *source.Index
	}
}

// entry is a single occurrence of a green value in a frozen tree.
type entry struct {
	green  Handle
	kind   Kind
	token  bool
	parent int32 // -1 for the root.
	index  int32 // Index within the parent.

	start, end uint32

	// Number of entries in this subtree, including this one. The subtree
	// occupies entries [i, i+size).
	size int32
	// This node's children are kids[kids:kids+nkids].
	kids, nkids int32

	text string
}

// Arena returns the arena that owns this tree.
func (t *Frozen[P]) Arena() *Arena[P] {
	return t.arena
}

// Root returns the root node of this tree.
func (t *Frozen[P]) Root() Node[P] {
	return Node[P]{t, 0}
}

// Len returns the number of nodes and tokens in this tree.
func (t *Frozen[P]) Len() int {
	return len(t.entries)
}

// Text returns the full text of this tree.
func (t *Frozen[P]) Text() string {
	return t.Root().Text()
}

// Source returns a line index over this tree's text, for converting ranges
// into line and column locations. It is computed on first use.
func (t *Frozen[P]) Source() *source.Index {
	t.lines.once.Do(func() {
		t.lines.index = source.NewIndex(t.Text())
	})
	return t.lines.index
}

// TokenAt returns the token whose range contains offset.
//
// Returns false if offset is outside the tree's text. Empty tokens never
// contain any offset.
func (t *Frozen[P]) TokenAt(offset int) (Node[P], bool) {
	t.tokens.once.Do(func() {
		for i := range t.entries {
			e := &t.entries[i]
			if e.token && e.start < e.end {
				t.tokens.index.Insert(e.start, e.end, int32(i))
			}
		}
	})

	if offset < 0 || offset >= int(t.entries[0].end) {
		return Node[P]{}, false
	}
	found, ok := t.tokens.index.Get(uint32(offset))
	if !ok {
		return Node[P]{}, false
	}
	return Node[P]{t, found.Value}, true
}

// Covering returns the deepest node whose range covers r. When r is empty and
// sits on the boundary between two siblings, the left one is preferred.
//
// Returns false if r is not within the tree's range.
func (t *Frozen[P]) Covering(r Range) (Node[P], bool) {
	n := t.Root()
	if r.Start > r.End || !n.Range().Covers(r) {
		return Node[P]{}, false
	}

outer:
	for {
		e := n.entry()
		kids := t.kids[e.kids : e.kids+e.nkids]
		// Children are sorted and contiguous, so the first child ending at or
		// after r.End is the only candidate.
		i := sort.Search(len(kids), func(i int) bool {
			return int(t.entries[kids[i]].end) >= r.End
		})
		for ; i < len(kids); i++ {
			c := Node[P]{t, kids[i]}
			cr := c.Range()
			if cr.Start > r.Start {
				break
			}
			if cr.Covers(r) {
				n = c
				continue outer
			}
		}
		return n, true
	}
}

// Thaw returns a mutable copy of this tree. The copy shares every subtree with
// this one until it is edited.
func (t *Frozen[P]) Thaw() *Mutable[P] {
	return t.arena.thaw(t.entries[0].green)
}

// Clone returns a new reference to this tree, which must be released
// separately.
func (t *Frozen[P]) Clone() *Frozen[P] {
	t.arena.Retain()
	clone := &Frozen[P]{
		arena:   t.arena,
		entries: t.entries,
		kids:    t.kids,
	}
	return clone
}

// Release gives up this tree's reference to its arena. The tree must not be
// used afterwards.
func (t *Frozen[P]) Release() {
	if t.released.Swap(true) {
		panic("syntree: Frozen released twice")
	}
	t.arena.Release()
}

// Node is a view of one occurrence of a token or node in a [Frozen] tree.
//
// Node is a small value type; it refers to its tree rather than owning
// anything. The zero Node is nil.
type Node[P policy.Policy[P]] struct {
	tree *Frozen[P]
	idx  int32
}

// Nil returns whether this is the zero Node.
func (n Node[P]) Nil() bool {
	return n.tree == nil
}

// Tree returns the tree this node belongs to.
func (n Node[P]) Tree() *Frozen[P] {
	return n.tree
}

// Kind returns this node's kind.
func (n Node[P]) Kind() Kind {
	return n.entry().kind
}

// Range returns the range of text this node spans.
func (n Node[P]) Range() Range {
	e := n.entry()
	return Range{int(e.start), int(e.end)}
}

// IsToken returns whether this is a token.
func (n Node[P]) IsToken() bool {
	return n.entry().token
}

// TokenText returns this token's text, or false if this is not a token.
func (n Node[P]) TokenText() (string, bool) {
	e := n.entry()
	return e.text, e.token
}

// Green returns the green value this is an occurrence of.
func (n Node[P]) Green() Green[P] {
	return Green[P]{n.tree.arena, n.entry().green}
}

// Text returns the text this node spans.
func (n Node[P]) Text() string {
	e := n.entry()
	if e.token {
		return e.text
	}

	var out strings.Builder
	out.Grow(int(e.end - e.start))
	for tok := range n.Tokens() {
		text, _ := tok.TokenText()
		out.WriteString(text)
	}
	return out.String()
}

// Location returns the line and column locations of the start and end of
// this node's range, with columns measured in units.
func (n Node[P]) Location(units source.Unit) (start, end source.Location) {
	idx := n.tree.Source()
	r := n.Range()
	return idx.Location(r.Start, units), idx.Location(r.End, units)
}

// Parent returns this node's parent, or false if this is the root.
func (n Node[P]) Parent() (Node[P], bool) {
	e := n.entry()
	if e.parent < 0 {
		return Node[P]{}, false
	}
	return Node[P]{n.tree, e.parent}, true
}

// Index returns this node's index among its parent's children. The root has
// index zero.
func (n Node[P]) Index() int {
	return int(n.entry().index)
}

// Len returns the number of children. Tokens have none.
func (n Node[P]) Len() int {
	return int(n.entry().nkids)
}

// Child returns the ith child. Panics if i is out of bounds.
func (n Node[P]) Child(i int) Node[P] {
	e := n.entry()
	if i < 0 || i >= int(e.nkids) {
		panic(fmt.Sprintf("syntree: child index %d out of bounds for %d children", i, e.nkids))
	}
	return Node[P]{n.tree, n.tree.kids[int(e.kids)+i]}
}

// Children returns an indexer over this node's children.
func (n Node[P]) Children() seq.Indexer[Node[P]] {
	e := n.entry()
	return seq.NewSlice(n.tree.kids[e.kids:e.kids+e.nkids], func(_ int, idx int32) Node[P] {
		return Node[P]{n.tree, idx}
	})
}

// FirstChild returns this node's first child, or false if it has none.
func (n Node[P]) FirstChild() (Node[P], bool) {
	if n.Len() == 0 {
		return Node[P]{}, false
	}
	return n.Child(0), true
}

// LastChild returns this node's last child, or false if it has none.
func (n Node[P]) LastChild() (Node[P], bool) {
	if n.Len() == 0 {
		return Node[P]{}, false
	}
	return n.Child(n.Len() - 1), true
}

// NextSibling returns the sibling after this node, or false if there is none.
func (n Node[P]) NextSibling() (Node[P], bool) {
	return n.sibling(1)
}

// PrevSibling returns the sibling before this node, or false if there is
// none.
func (n Node[P]) PrevSibling() (Node[P], bool) {
	return n.sibling(-1)
}

// String implements [fmt.Stringer].
func (n Node[P]) String() string {
	if n.Nil() {
		return "<nil>"
	}
	return fmt.Sprintf("%s@%v", n.tree.arena.name(n.Kind()), n.Range())
}

func (n Node[P]) sibling(delta int) (Node[P], bool) {
	parent, ok := n.Parent()
	if !ok {
		return Node[P]{}, false
	}
	i := n.Index() + delta
	if i < 0 || i >= parent.Len() {
		return Node[P]{}, false
	}
	return parent.Child(i), true
}

func (n Node[P]) entry() *entry {
	return &n.tree.entries[n.idx]
}
