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
	"context"
	"fmt"
	"hash/maphash"

	"github.com/bufbuild/syntree/internal/arena"
	"github.com/bufbuild/syntree/internal/intern"
	"github.com/bufbuild/syntree/policy"
)

// Handle is a compressed reference to a slot in an [Arena].
//
// Handles are only meaningful together with the arena that issued them. The
// zero Handle is nil.
type Handle uint32

// Nil returns whether this handle is nil.
func (h Handle) Nil() bool {
	return h == 0
}

// Arena owns every token and node of one or more trees.
//
// The type parameter selects the concurrency policy: an Arena[*policy.Local]
// must only be used by one goroutine and pays nothing for synchronization,
// while an Arena[*policy.Shared] may be used from many.
//
// Arenas are reference counted. [NewArena] returns one reference, which the
// caller gives up with [Arena.Release]; every [Frozen] and [Mutable] tree
// holds one more. When the last reference is released, all storage is
// dropped at once and any further use of the arena panics.
type Arena[P policy.Policy[P]] struct {
	// sync is both the arena lock and the arena's reference count. The lock
	// guards everything below; it is only ever held briefly and never while
	// acquiring a node lock.
	sync   P
	config arenaConfig
	dead   bool

	slots  arena.Arena[slot[P]]
	texts  intern.Table
	tokens map[tokenKey]Handle
	nodes  map[uint64][]Handle
	seed   maphash.Seed
	stats  Stats
}

type slotTag uint8

const (
	tagToken slotTag = iota + 1
	tagGreen
	tagMutable
)

// slot is a single arena entry.
//
// Every field is immutable once the slot is allocated, except for the
// contents of mut, which are guarded by mut.lock.
type slot[P policy.Policy[P]] struct {
	tag  slotTag
	kind Kind

	// Tokens only.
	textID intern.ID
	text   string

	// Tokens and green nodes: width is the length of the text spelled out by
	// this subtree, size the number of tokens and nodes in it.
	width, size uint32

	// Green nodes only.
	children []Handle

	// Mutable nodes only.
	mut *mutable[P]
}

// mutable is the interior-mutable part of a mutable node slot.
type mutable[P policy.Policy[P]] struct {
	lock     P
	parent   Handle
	children []Handle
}

type tokenKey struct {
	kind Kind
	text intern.ID
}

// NewArena returns a new arena. The caller owns one reference to it.
func NewArena[P policy.Policy[P]](options ...ArenaOption) *Arena[P] {
	var zero P
	a := &Arena[P]{
		sync: zero.New(),
		seed: maphash.MakeSeed(),
	}
	for _, opt := range options {
		opt(&a.config)
	}
	a.config.defaults()
	a.tokens = make(map[tokenKey]Handle, a.config.capacity)
	a.nodes = make(map[uint64][]Handle, a.config.capacity)

	a.sync.Retain()
	return a
}

// Retain adds a reference to this arena.
func (a *Arena[P]) Retain() {
	a.rlock()
	a.sync.Retain()
	a.sync.RUnlock()
}

// Release gives up a reference to this arena. Releasing the last reference
// drops all of the arena's storage.
func (a *Arena[P]) Release() {
	if !a.sync.Release() {
		return
	}

	a.lock()
	stats := a.stats
	a.dead = true
	a.slots.Reset()
	a.texts.Reset()
	a.tokens = nil
	a.nodes = nil
	a.sync.Unlock()

	a.config.logger.Debug("syntree: arena released",
		"tokens", stats.Tokens,
		"nodes", stats.Nodes,
		"mutable", stats.Mutable,
	)
}

// Token returns the token with the given kind and text, allocating it if
// this arena has not seen it before.
func (a *Arena[P]) Token(kind Kind, text string) Green[P] {
	return Green[P]{a, a.token(kind, text)}
}

// Node returns the internal node with the given kind and children, allocating
// it if this arena has not seen it before.
//
// Panics if any child belongs to a different arena.
func (a *Arena[P]) Node(kind Kind, children ...Green[P]) Green[P] {
	handles := make([]Handle, len(children))
	for i, child := range children {
		a.checkOwned("Node", child.arena)
		handles[i] = child.handle
	}
	return Green[P]{a, a.node(kind, handles)}
}

// Get returns a view of the token or green node with the given handle.
//
// Panics if h is nil, was not issued by this arena or refers to a mutable
// node.
func (a *Arena[P]) Get(h Handle) Green[P] {
	if s := a.get(h); s.tag == tagMutable {
		panic(fmt.Sprintf("syntree: handle %d refers to a mutable node", h))
	}
	return Green[P]{a, h}
}

// String implements [fmt.Stringer].
func (a *Arena[P]) String() string {
	return fmt.Sprintf("syntree.Arena%v", a.Stats())
}

// name returns the display name of a kind.
func (a *Arena[P]) name(k Kind) string {
	return a.config.kindName(k)
}

// get looks up a slot.
//
// Because slots never move and their immutable fields are written before the
// slot is published, the result may be read without holding the arena lock.
func (a *Arena[P]) get(h Handle) *slot[P] {
	a.rlock()
	defer a.sync.RUnlock()
	return a.at(h)
}

// at looks up a slot. The arena lock must be held.
func (a *Arena[P]) at(h Handle) *slot[P] {
	if !a.slots.Contains(arena.Untyped(h)) {
		panic(fmt.Sprintf("syntree: handle %d is not valid in this arena", h))
	}
	return a.slots.At(arena.Untyped(h))
}

// alloc allocates a new slot. The arena lock must be held.
func (a *Arena[P]) alloc(s slot[P]) Handle {
	if a.slots.Len() == int(^uint32(0)) {
		panic("syntree: arena is full")
	}
	return Handle(a.slots.New(s))
}

// newMutable allocates a mutable node with the given parent and children,
// taking ownership of children.
func (a *Arena[P]) newMutable(kind Kind, parent Handle, children []Handle) Handle {
	var zero P
	m := &mutable[P]{lock: zero.New(), parent: parent, children: children}

	a.lock()
	defer a.sync.Unlock()
	a.stats.Mutable++
	return a.alloc(slot[P]{tag: tagMutable, kind: kind, mut: m})
}

// rlock acquires the arena lock for reading.
func (a *Arena[P]) rlock() {
	// Cannot fail: the context has no deadline.
	_ = a.sync.RLock(context.Background())
	if a.dead {
		a.sync.RUnlock()
		panic("syntree: use of released arena")
	}
}

// lock acquires the arena lock for writing.
func (a *Arena[P]) lock() {
	_ = a.sync.Lock(context.Background())
	if a.dead {
		a.sync.Unlock()
		panic("syntree: use of released arena")
	}
}

// lockContext returns the context that edits use to acquire node locks.
func (a *Arena[P]) lockContext() (context.Context, context.CancelFunc) {
	if a.config.lockTimeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), a.config.lockTimeout)
}

func (a *Arena[P]) checkOwned(op string, other *Arena[P]) {
	if other != a {
		panic(fmt.Sprintf("syntree: %s: value belongs to a different arena", op))
	}
}
