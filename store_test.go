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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/syntree"
	"github.com/bufbuild/syntree/policy"
)

func TestTokenInterning(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	foo := a.Token(Ident, "foo")
	assert.Equal(t, foo, a.Token(Ident, "foo"))
	assert.NotEqual(t, foo, a.Token(Num, "foo"))
	assert.NotEqual(t, foo, a.Token(Ident, "fooo"))

	text, ok := foo.TokenText()
	assert.True(t, ok)
	assert.Equal(t, "foo", text)
	assert.Equal(t, 3, foo.Width())
	assert.True(t, foo.IsToken())
	assert.Equal(t, 0, foo.Len())

	stats := a.Stats()
	assert.Equal(t, 3, stats.Tokens)
	assert.Equal(t, 1, stats.TokenHits)
}

func TestNodeInterning(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	call := buildCall(a)
	assert.Equal(t, call, buildCall(a))
	assert.Equal(t, call, a.Get(call.Handle()))

	// Same children, different kind or order.
	assert.NotEqual(t, call, a.Node(List, a.Token(Ident, "foo"), a.Token(Space, " "), a.Token(Ident, "bar")))
	assert.NotEqual(t, call, a.Node(Call, a.Token(Ident, "bar"), a.Token(Space, " "), a.Token(Ident, "foo")))

	assert.Equal(t, Call, call.Kind())
	assert.False(t, call.IsToken())
	assert.Equal(t, 3, call.Len())
	assert.Equal(t, 7, call.Width())
	assert.Equal(t, "foo bar", call.Text())
	assert.Equal(t, a.Token(Space, " "), call.Child(1))

	stats := a.Stats()
	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 1, stats.NodeHits)
	assert.Equal(t, 3, stats.Tokens)
}

func TestHashCollision(t *testing.T) {
	t.Parallel()
	// Every node lands in one bucket, so lookups must compare contents.
	a := newArena[*policy.Local](t, syntree.WithNodeHash(func(syntree.Kind, []syntree.Handle) uint64 {
		return 42
	}))

	foo, bar := a.Token(Ident, "foo"), a.Token(Ident, "bar")
	fooBar := a.Node(Call, foo, bar)
	barFoo := a.Node(Call, bar, foo)
	list := a.Node(List, foo, bar)
	short := a.Node(Call, foo)

	handles := []syntree.Handle{fooBar.Handle(), barFoo.Handle(), list.Handle(), short.Handle()}
	for i, h := range handles {
		for _, other := range handles[i+1:] {
			assert.NotEqual(t, h, other)
		}
	}
	assert.Equal(t, "barfoo", barFoo.Text())
	assert.Equal(t, List, list.Kind())
	assert.Equal(t, 1, short.Len())

	assert.Equal(t, fooBar, a.Node(Call, foo, bar))
	assert.Equal(t, barFoo, a.Node(Call, bar, foo))
	assert.Equal(t, list, a.Node(List, foo, bar))
	assert.Equal(t, short, a.Node(Call, foo))

	stats := a.Stats()
	assert.Equal(t, 4, stats.Nodes)
	assert.Equal(t, 4, stats.NodeHits)
}

func TestCrossBuildSharing(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)

	// Two separate parses of the same text produce the same tree.
	first := buildList(a, 4)
	stats := a.Stats()
	second := buildList(a, 4)
	assert.Equal(t, first, second)
	assert.Equal(t, stats.Nodes, a.Stats().Nodes)
	assert.Equal(t, stats.Tokens, a.Stats().Tokens)

	// Within one tree, identical subtrees are one green node.
	assert.Equal(t, first.Child(0), first.Child(4))
	assert.NotEqual(t, first.Child(0), first.Child(2))

	// A longer list shares its calls with the shorter one.
	longer := buildList(a, 6)
	assert.NotEqual(t, first, longer)
	assert.Equal(t, first.Child(2), longer.Child(2))
	assert.Equal(t, stats.Nodes+1, a.Stats().Nodes)
}

func TestMisuse(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)
	b := newArena[*policy.Local](t)

	assert.Panics(t, func() { a.Node(Call, b.Token(Ident, "foo")) })
	assert.Panics(t, func() { a.Get(0) })
	assert.Panics(t, func() { a.Get(1000) })

	n := a.NewNode(Call)
	assert.Panics(t, func() { a.Get(n.Handle()) })
}

func TestRelease(t *testing.T) {
	t.Parallel()

	a := syntree.NewArena[*policy.Local]()
	tree := buildCall(a).Freeze()
	foo := a.Token(Ident, "foo")

	// The tree keeps the arena alive.
	a.Release()
	assert.Equal(t, "foo bar", tree.Text())
	assert.Equal(t, Ident, foo.Kind())

	clone := tree.Clone()
	tree.Release()
	assert.Panics(t, tree.Release)
	assert.Equal(t, "foo bar", clone.Root().Text())

	clone.Release()
	assert.Panics(t, func() { foo.Kind() })
	assert.Panics(t, func() { a.Token(Ident, "foo") })
}

func TestStatsString(t *testing.T) {
	t.Parallel()
	a := newArena[*policy.Local](t)
	buildCall(a)

	require.Equal(t, syntree.Stats{Tokens: 3, Nodes: 1, Texts: 1}, a.Stats())
	assert.Equal(t, "syntree.Arena{3 1 0 1 0 0}", a.String())
}
