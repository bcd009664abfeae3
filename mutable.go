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
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/bufbuild/syntree/policy"
	"github.com/bufbuild/syntree/seq"
)

// Mutable is a tree whose internal nodes can be edited in place.
//
// A Mutable tree does not track text ranges; [MutNode.Range] always fails.
// Use [Mutable.Freeze] to obtain a [Frozen] tree with fresh ranges.
//
// A thawed tree shares its subtrees with the frozen tree it came from. Only
// the nodes that are navigated into via [MutNode.Child] become mutable, so
// the cost of thawing is proportional to the part of the tree that is
// actually visited.
type Mutable[P policy.Policy[P]] struct {
	arena    *Arena[P]
	root     Handle
	released atomic.Bool
}

// Arena returns the arena that owns this tree.
func (m *Mutable[P]) Arena() *Arena[P] {
	return m.arena
}

// Root returns the root of this tree.
func (m *Mutable[P]) Root() MutNode[P] {
	return MutNode[P]{arena: m.arena, handle: m.root}
}

// Text returns the full text of this tree.
func (m *Mutable[P]) Text() string {
	return m.Root().Text()
}

// Freeze builds a frozen tree with the current contents of this tree.
//
// Mutable nodes are re-interned, so an edited tree whose contents match an
// existing green subtree shares it. Freezing does not consume m, which may
// continue to be edited.
//
// Freeze takes each node's read lock in turn; under [policy.Shared] with a
// lock timeout configured, it fails with [ErrLockTimeout] if a writer holds a
// node for too long.
func (m *Mutable[P]) Freeze() (*Frozen[P], error) {
	ctx, cancel := m.arena.lockContext()
	defer cancel()

	root, err := m.arena.resolve(ctx, m.root)
	if err != nil {
		return nil, err
	}
	return m.arena.freeze(root), nil
}

// Clone returns a new reference to this tree, which must be released
// separately. Both references see the same nodes.
func (m *Mutable[P]) Clone() *Mutable[P] {
	m.arena.Retain()
	return &Mutable[P]{arena: m.arena, root: m.root}
}

// Release gives up this tree's reference to its arena.
func (m *Mutable[P]) Release() {
	if m.released.Swap(true) {
		panic("syntree: Mutable released twice")
	}
	m.arena.Release()
}

// NewNode allocates a new, detached mutable node with the given children.
//
// The node can be attached to a mutable tree with any of the [MutNode] edits.
func (a *Arena[P]) NewNode(kind Kind, children ...Green[P]) MutNode[P] {
	handles := make([]Handle, len(children))
	for i, child := range children {
		a.checkOwned("NewNode", child.arena)
		handles[i] = child.handle
	}
	return MutNode[P]{arena: a, handle: a.newMutable(kind, 0, handles)}
}

// Subtree is a value that can be attached to a mutable node: a [Green], or a
// detached [MutNode] from the same arena.
type Subtree[P policy.Policy[P]] interface {
	subtree() (*Arena[P], Handle)
}

var (
	_ Subtree[*policy.Local] = Green[*policy.Local]{}
	_ Subtree[*policy.Local] = MutNode[*policy.Local]{}
)

// MutNode is a view of a node in a [Mutable] tree.
//
// MutNodes of internal nodes refer to a mutable arena slot, and every view of
// the same node observes the same edits. MutNodes of tokens refer to the
// shared green token, plus the parent they were reached through.
//
// The zero MutNode is nil.
type MutNode[P policy.Policy[P]] struct {
	arena  *Arena[P]
	handle Handle

	// The parent this view was reached through, and the index within it.
	// These are only a hint for mutable nodes, whose slot records the
	// authoritative parent.
	parent Handle
	index  int32
}

// Nil returns whether this is the zero MutNode.
func (n MutNode[P]) Nil() bool {
	return n.arena == nil
}

// Arena returns the arena that owns this node.
func (n MutNode[P]) Arena() *Arena[P] {
	return n.arena
}

// Handle returns this node's handle in its arena.
func (n MutNode[P]) Handle() Handle {
	return n.handle
}

// Kind returns this node's kind.
func (n MutNode[P]) Kind() Kind {
	return n.slot().kind
}

// IsToken returns whether this is a token.
func (n MutNode[P]) IsToken() bool {
	return n.slot().tag == tagToken
}

// TokenText returns this token's text, or false if this is not a token.
func (n MutNode[P]) TokenText() (string, bool) {
	s := n.slot()
	return s.text, s.tag == tagToken
}

// Range always fails with [ErrRangesUnavailable]: mutable trees do not track
// ranges, and any range computed before an edit may be wrong after it.
func (MutNode[P]) Range() (Range, error) {
	return Range{}, ErrRangesUnavailable
}

// Text returns the text this subtree currently spells out.
func (n MutNode[P]) Text() string {
	var out strings.Builder
	n.arena.writeText(&out, n.handle)
	return out.String()
}

// Parent returns this node's parent, or false if it is a root or has been
// detached.
func (n MutNode[P]) Parent() (MutNode[P], bool) {
	parent := n.parent
	if s := n.slot(); s.tag == tagMutable {
		parent, _ = s.mut.getParent(context.Background())
	}
	if parent.Nil() {
		return MutNode[P]{}, false
	}
	return MutNode[P]{arena: n.arena, handle: parent}, true
}

// Len returns the current number of children. Tokens have none.
func (n MutNode[P]) Len() int {
	s := n.slot()
	if s.tag != tagMutable {
		return len(s.children)
	}
	_ = s.mut.lock.RLock(context.Background())
	defer s.mut.lock.RUnlock()
	return len(s.mut.children)
}

// Child returns the ith child.
//
// If the child is an internal node that is still shared with a frozen tree,
// it is first replaced in this node with a mutable copy, so that it can be
// edited without affecting any other tree. That replacement is a write, and
// fails with [ErrLockTimeout] like any other edit.
func (n MutNode[P]) Child(i int) (MutNode[P], error) {
	s := n.slot()
	if s.tag != tagMutable {
		return MutNode[P]{}, editError("child", i, 0, ErrToken)
	}
	m := s.mut

	// Fast path: the child needs no promotion.
	_ = m.lock.RLock(context.Background())
	if i < 0 || i >= len(m.children) {
		k := len(m.children)
		m.lock.RUnlock()
		return MutNode[P]{}, editError("child", i, k, ErrOutOfBounds)
	}
	h := m.children[i]
	m.lock.RUnlock()
	if n.arena.get(h).tag != tagGreen {
		return MutNode[P]{arena: n.arena, handle: h, parent: n.handle, index: int32(i)}, nil
	}

	ctx, cancel := n.arena.lockContext()
	defer cancel()
	if err := m.lock.Lock(ctx); err != nil {
		return MutNode[P]{}, editError("child", i, -1, lockTimeout(err))
	}
	defer m.lock.Unlock()
	if i >= len(m.children) {
		// Edited out from under us.
		return MutNode[P]{}, editError("child", i, len(m.children), ErrOutOfBounds)
	}
	h = m.children[i]
	if c := n.arena.get(h); c.tag == tagGreen {
		h = n.arena.newMutable(c.kind, n.handle, slices.Clone(c.children))
		m.children[i] = h
	}
	return MutNode[P]{arena: n.arena, handle: h, parent: n.handle, index: int32(i)}, nil
}

// Children returns an indexer over this node's children, as if by
// [MutNode.Child]. The indexer panics if [MutNode.Child] fails, which happens
// when this node is edited concurrently such that a child index it reported
// becomes invalid, or when promoting a child times out.
func (n MutNode[P]) Children() seq.Indexer[MutNode[P]] {
	return seq.NewFunc(n.Len(), func(i int) MutNode[P] {
		child, err := n.Child(i)
		if err != nil {
			panic(err)
		}
		return child
	})
}

// ReplaceChild replaces the ith child with sub.
func (n MutNode[P]) ReplaceChild(i int, sub Subtree[P]) error {
	return n.edit("replace", i, func(k int) (int, int, bool) {
		return i, i + 1, i >= 0 && i < k
	}, sub)
}

// InsertChild inserts sub so that it becomes the ith child. i may be equal to
// the number of children.
func (n MutNode[P]) InsertChild(i int, sub Subtree[P]) error {
	return n.edit("insert", i, func(k int) (int, int, bool) {
		return i, i, i >= 0 && i <= k
	}, sub)
}

// AppendChild adds sub as the last child.
func (n MutNode[P]) AppendChild(sub Subtree[P]) error {
	return n.edit("append", -1, func(k int) (int, int, bool) {
		return k, k, true
	}, sub)
}

// RemoveChild removes the ith child and returns it, detached.
//
// Internal children are returned as mutable nodes that may be attached
// elsewhere.
func (n MutNode[P]) RemoveChild(i int) (MutNode[P], error) {
	// Promote first, so the removed node comes back editable.
	child, err := n.Child(i)
	if err != nil {
		var edit *EditError
		if errors.As(err, &edit) {
			edit.Op = "remove"
		}
		return MutNode[P]{}, err
	}

	err = n.edit("remove", i, func(k int) (int, int, bool) {
		return i, i + 1, i < k && n.arena.childAt(n.handle, i) == child.handle
	})
	if err != nil {
		return MutNode[P]{}, err
	}
	return MutNode[P]{arena: n.arena, handle: child.handle}, nil
}

// Splice replaces the children in [start, end) with subs, as a single edit:
// either every change is made or none is.
func (n MutNode[P]) Splice(start, end int, subs ...Subtree[P]) error {
	return n.edit("splice", start, func(k int) (int, int, bool) {
		return start, end, start >= 0 && start <= end && end <= k
	}, subs...)
}

// InsertBefore inserts sub immediately before this node in its parent.
func (n MutNode[P]) InsertBefore(sub Subtree[P]) error {
	return n.relative("insert before", 0, sub)
}

// InsertAfter inserts sub immediately after this node in its parent.
func (n MutNode[P]) InsertAfter(sub Subtree[P]) error {
	return n.relative("insert after", 1, sub)
}

// Detach removes this node from its parent.
//
// Fails with [ErrDetached] if this node has no parent, or is no longer at the
// position it was reached through.
func (n MutNode[P]) Detach() error {
	return n.relative("detach", -1, nil)
}

// String implements [fmt.Stringer].
func (n MutNode[P]) String() string {
	if n.Nil() {
		return "<nil>"
	}
	return fmt.Sprintf("%s@mut#%d", n.arena.name(n.Kind()), n.handle)
}

func (n MutNode[P]) slot() *slot[P] {
	return n.arena.get(n.handle)
}

func (n MutNode[P]) subtree() (*Arena[P], Handle) {
	return n.arena, n.handle
}

// relative performs a sibling-relative edit. If sub is nil, this node is
// removed; otherwise sub is inserted at this node's index plus offset.
func (n MutNode[P]) relative(op string, offset int, sub Subtree[P]) error {
	ctx, cancel := n.arena.lockContext()
	defer cancel()

	parent := MutNode[P]{arena: n.arena, handle: n.parent}
	if s := n.slot(); s.tag == tagMutable {
		h, err := s.mut.getParent(ctx)
		if err != nil {
			return editError(op, int(n.index), -1, lockTimeout(err))
		}
		parent.handle = h
	}
	if parent.Nil() {
		return editError(op, int(n.index), -1, ErrDetached)
	}

	// Resolved under the parent's lock: our index may have shifted since this
	// view was created.
	var detached bool
	bounds := func(int) (int, int, bool) {
		at := n.arena.indexIn(parent.handle, n.handle, int(n.index))
		if at < 0 {
			detached = true
			return 0, 0, false
		}
		if sub == nil {
			return at, at + 1, true
		}
		return at + offset, at + offset, true
	}

	var err error
	if sub == nil {
		err = parent.splice(ctx, op, int(n.index), bounds)
	} else {
		err = parent.splice(ctx, op, int(n.index), bounds, sub)
	}
	if err != nil && detached {
		return editError(op, int(n.index), -1, ErrDetached)
	}
	return err
}

// edit runs splice under the arena's lock timeout.
func (n MutNode[P]) edit(
	op string, idx int,
	bounds func(k int) (start, end int, ok bool),
	subs ...Subtree[P],
) error {
	ctx, cancel := n.arena.lockContext()
	defer cancel()
	return n.splice(ctx, op, idx, bounds, subs...)
}

// splice is the primitive that every edit is built on. Every lock it takes
// is acquired with ctx.
//
// bounds is called with the node's lock held and the current number of
// children; it returns the range of children to replace and whether that
// range is valid. idx is only used for error reporting.
func (n MutNode[P]) splice(
	ctx context.Context,
	op string, idx int,
	bounds func(k int) (start, end int, ok bool),
	subs ...Subtree[P],
) error {
	a := n.arena
	s := n.slot()
	if s.tag != tagMutable {
		return editError(op, idx, 0, ErrToken)
	}

	// Validate the new children before taking any locks. The attachment
	// checks are repeated under the child's lock below.
	handles := make([]Handle, len(subs))
	for i, sub := range subs {
		sa, h := sub.subtree()
		a.checkOwned(op, sa)
		handles[i] = h
		if a.get(h).tag != tagMutable {
			continue
		}
		if slices.Contains(handles[:i], h) {
			return editError(op, idx, -1, ErrAttached)
		}
		cycle, err := a.isAncestor(ctx, h, n.handle)
		if err != nil {
			return editError(op, idx, -1, lockTimeout(err))
		}
		if cycle {
			return editError(op, idx, -1, ErrCycle)
		}
	}

	m := s.mut
	if err := m.lock.Lock(ctx); err != nil {
		return editError(op, idx, -1, lockTimeout(err))
	}
	defer m.lock.Unlock()

	start, end, ok := bounds(len(m.children))
	if !ok {
		return editError(op, idx, len(m.children), ErrOutOfBounds)
	}

	// Lock every mutable child whose parent changes before changing any of
	// them, so that a timeout leaves the tree untouched. Lock order is parent
	// before child.
	var locked []*mutable[P]
	defer func() {
		for _, c := range locked {
			c.lock.Unlock()
		}
	}()
	for _, h := range handles {
		c := a.get(h)
		if c.tag != tagMutable {
			continue
		}
		if err := c.mut.lock.Lock(ctx); err != nil {
			return editError(op, idx, len(m.children), lockTimeout(err))
		}
		locked = append(locked, c.mut)
		// A child of this node also fails here, so it is never locked twice
		// by the loop below.
		if !c.mut.parent.Nil() {
			return editError(op, idx, len(m.children), ErrAttached)
		}
	}
	adopted := len(locked)
	for _, h := range m.children[start:end] {
		c := a.get(h)
		if c.tag != tagMutable {
			continue
		}
		if err := c.mut.lock.Lock(ctx); err != nil {
			return editError(op, idx, len(m.children), lockTimeout(err))
		}
		locked = append(locked, c.mut)
	}

	for _, c := range locked[:adopted] {
		c.parent = n.handle
	}
	for _, c := range locked[adopted:] {
		c.parent = 0
	}
	m.children = slices.Replace(m.children, start, end, handles...)
	return nil
}

// isAncestor returns whether node is h or one of its ancestors, following
// mutable parent links.
func (a *Arena[P]) isAncestor(ctx context.Context, node, h Handle) (bool, error) {
	for p := h; !p.Nil(); {
		if p == node {
			return true, nil
		}
		s := a.get(p)
		if s.tag != tagMutable {
			return false, nil
		}
		var err error
		if p, err = s.mut.getParent(ctx); err != nil {
			return false, err
		}
	}
	return false, nil
}

// indexIn returns the index of child in parent's children, trying hint first.
// Returns -1 if it is not present, or if it is a token that occurs more than
// once and is not at hint. parent's lock must be held.
func (a *Arena[P]) indexIn(parent, child Handle, hint int) int {
	children := a.get(parent).mut.children
	if hint >= 0 && hint < len(children) && children[hint] == child {
		return hint
	}

	found := -1
	for i, h := range children {
		if h != child {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = i
	}
	return found
}

// childAt returns parent's ith child. parent's lock must be held.
func (a *Arena[P]) childAt(parent Handle, i int) Handle {
	children := a.get(parent).mut.children
	if i < 0 || i >= len(children) {
		return 0
	}
	return children[i]
}

func (m *mutable[P]) snapshot() []Handle {
	_ = m.lock.RLock(context.Background())
	defer m.lock.RUnlock()
	return slices.Clone(m.children)
}

func (m *mutable[P]) getParent(ctx context.Context) (Handle, error) {
	if err := m.lock.RLock(ctx); err != nil {
		return 0, err
	}
	defer m.lock.RUnlock()
	return m.parent, nil
}

// lockTimeout wraps a failed lock acquisition.
func lockTimeout(err error) error {
	return fmt.Errorf("%w: %w", ErrLockTimeout, err)
}
