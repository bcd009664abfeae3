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

	"github.com/bufbuild/syntree/policy"
)

// Builder constructs a green tree from a flat stream of start, token and
// finish events, the way a recursive-descent parser naturally produces them.
//
//	b := syntree.NewBuilder(arena)
//	b.StartNode(Call)
//	b.Token(Ident, "foo")
//	b.Token(Space, " ")
//	b.Token(Ident, "bar")
//	b.FinishNode()
//	tree := b.FinishFrozen()
//
// Misuse, such as finishing a node that was never started, panics. A Builder
// is not safe for concurrent use, even over a [policy.Shared] arena.
type Builder[P policy.Policy[P]] struct {
	arena    *Arena[P]
	parents  []frame
	children []Handle
}

type frame struct {
	kind  Kind
	first int // Index of this node's first child in children.
}

// Checkpoint is a position in a [Builder]'s event stream. See
// [Builder.StartNodeAt].
type Checkpoint struct {
	children, depth int
}

// NewBuilder returns a new builder that allocates in the given arena.
func NewBuilder[P policy.Policy[P]](arena *Arena[P]) *Builder[P] {
	return &Builder[P]{arena: arena}
}

// StartNode starts a new internal node. Every token and node added until the
// matching [Builder.FinishNode] becomes one of its children.
func (b *Builder[P]) StartNode(kind Kind) {
	b.parents = append(b.parents, frame{kind, len(b.children)})
}

// Token adds a token to the current node.
func (b *Builder[P]) Token(kind Kind, text string) {
	b.children = append(b.children, b.arena.token(kind, text))
}

// Green adds an existing green subtree to the current node.
func (b *Builder[P]) Green(g Green[P]) {
	b.arena.checkOwned("Builder.Green", g.arena)
	b.children = append(b.children, g.handle)
}

// FinishNode finishes the most recently started node.
func (b *Builder[P]) FinishNode() {
	if len(b.parents) == 0 {
		panic("syntree: FinishNode called without a matching StartNode")
	}
	top := b.parents[len(b.parents)-1]
	b.parents = b.parents[:len(b.parents)-1]

	node := b.arena.node(top.kind, b.children[top.first:])
	b.children = append(b.children[:top.first], node)
}

// Checkpoint returns the current position, so that a node can later be
// started retroactively at it. This is how a parser handles a production
// whose kind is only known after parsing its first child, such as a binary
// expression.
func (b *Builder[P]) Checkpoint() Checkpoint {
	return Checkpoint{len(b.children), len(b.parents)}
}

// StartNodeAt starts a node as if [Builder.StartNode] had been called at cp.
// Everything added to the current node since cp becomes the new node's
// children.
//
// Panics if cp was taken inside a node that has since been finished, or
// before children that have since been folded into a node.
func (b *Builder[P]) StartNodeAt(cp Checkpoint, kind Kind) {
	if cp.depth != len(b.parents) || cp.children > len(b.children) {
		panic(fmt.Sprintf("syntree: checkpoint %v is no longer valid", cp))
	}
	if n := len(b.parents); n > 0 && cp.children < b.parents[n-1].first {
		panic(fmt.Sprintf("syntree: checkpoint %v is no longer valid", cp))
	}
	b.parents = append(b.parents, frame{kind, cp.children})
}

// Finish completes the tree and returns its root, resetting the builder for
// reuse.
//
// Panics unless exactly one root was built and every node was finished.
func (b *Builder[P]) Finish() Green[P] {
	if len(b.parents) != 0 {
		panic(fmt.Sprintf("syntree: Finish called with %d unfinished nodes", len(b.parents)))
	}
	if len(b.children) != 1 {
		panic(fmt.Sprintf("syntree: Finish called with %d roots", len(b.children)))
	}
	root := Green[P]{b.arena, b.children[0]}
	b.children = b.children[:0]
	return root
}

// FinishFrozen is like [Builder.Finish], but returns a frozen tree.
func (b *Builder[P]) FinishFrozen() *Frozen[P] {
	return b.Finish().Freeze()
}

// FinishMutable is like [Builder.Finish], but returns a mutable tree.
func (b *Builder[P]) FinishMutable() *Mutable[P] {
	return b.Finish().Thaw()
}
