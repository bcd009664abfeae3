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
	"strings"

	"github.com/bufbuild/syntree/policy"
	"github.com/bufbuild/syntree/seq"
)

// Green is a position-independent view of a token or an immutable internal
// node.
//
// Green values are interned: two Greens from the same arena are equal (as
// compared with ==) exactly when they spell out structurally identical
// subtrees. A Green does not know where it occurs, so it has no parent and no
// range; for those, freeze it into a [Frozen] tree.
//
// The zero Green is nil and most methods will panic on it.
type Green[P policy.Policy[P]] struct {
	arena  *Arena[P]
	handle Handle
}

// Nil returns whether this is the zero Green.
func (g Green[P]) Nil() bool {
	return g.arena == nil
}

// Arena returns the arena that owns this value.
func (g Green[P]) Arena() *Arena[P] {
	return g.arena
}

// Handle returns this value's handle in its arena.
func (g Green[P]) Handle() Handle {
	return g.handle
}

// Kind returns this value's kind.
func (g Green[P]) Kind() Kind {
	return g.slot().kind
}

// IsToken returns whether this is a token.
func (g Green[P]) IsToken() bool {
	return g.slot().tag == tagToken
}

// TokenText returns this token's text, or false if this is not a token.
func (g Green[P]) TokenText() (string, bool) {
	s := g.slot()
	return s.text, s.tag == tagToken
}

// Width returns the length of the text this subtree spells out.
func (g Green[P]) Width() int {
	return int(g.slot().width)
}

// Len returns the number of children. Tokens have none.
func (g Green[P]) Len() int {
	return len(g.slot().children)
}

// Child returns the ith child. Panics if i is out of bounds.
func (g Green[P]) Child(i int) Green[P] {
	return Green[P]{g.arena, g.slot().children[i]}
}

// Children returns an indexer over this value's children.
func (g Green[P]) Children() seq.Indexer[Green[P]] {
	return seq.NewSlice(g.slot().children, func(_ int, h Handle) Green[P] {
		return Green[P]{g.arena, h}
	})
}

// Text returns the text this subtree spells out: the concatenation of its
// tokens' texts, in order.
func (g Green[P]) Text() string {
	var out strings.Builder
	out.Grow(g.Width())
	g.arena.writeText(&out, g.handle)
	return out.String()
}

// Freeze builds a frozen tree rooted at this value.
func (g Green[P]) Freeze() *Frozen[P] {
	return g.arena.freeze(g.handle)
}

// Thaw builds a mutable tree rooted at this value. The tree shares every
// subtree with g until it is edited.
func (g Green[P]) Thaw() *Mutable[P] {
	return g.arena.thaw(g.handle)
}

// String implements [fmt.Stringer].
func (g Green[P]) String() string {
	if g.Nil() {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", g.arena.name(g.Kind()), g.handle)
}

func (g Green[P]) slot() *slot[P] {
	return g.arena.get(g.handle)
}

func (g Green[P]) subtree() (*Arena[P], Handle) {
	return g.arena, g.handle
}

// writeText appends the text of the subtree at h, which may contain mutable
// nodes.
func (a *Arena[P]) writeText(out *strings.Builder, h Handle) {
	s := a.get(h)
	switch s.tag {
	case tagToken:
		out.WriteString(s.text)
	case tagGreen:
		for _, child := range s.children {
			a.writeText(out, child)
		}
	case tagMutable:
		for _, child := range s.mut.snapshot() {
			a.writeText(out, child)
		}
	}
}
