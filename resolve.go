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
	"slices"
)

// resolve returns the green handle for the subtree at h, re-interning any
// mutable nodes in it bottom-up. Green subtrees are returned as-is, so the
// parts of a thawed tree that were never edited keep their original handles.
//
// Each mutable node's children are snapshotted under its read lock; edits
// that race with resolve may or may not be observed, but each node is seen
// in a consistent state.
func (a *Arena[P]) resolve(ctx context.Context, h Handle) (Handle, error) {
	s := a.get(h)
	if s.tag != tagMutable {
		return h, nil
	}

	if err := s.mut.lock.RLock(ctx); err != nil {
		return 0, lockTimeout(err)
	}
	children := slices.Clone(s.mut.children)
	s.mut.lock.RUnlock()

	for i, child := range children {
		green, err := a.resolve(ctx, child)
		if err != nil {
			return 0, err
		}
		children[i] = green
	}
	return a.node(s.kind, children), nil
}

// freeze builds the occurrence table of the green subtree at root.
func (a *Arena[P]) freeze(root Handle) *Frozen[P] {
	a.rlock()
	defer a.sync.RUnlock()

	r := a.at(root)
	if r.tag == tagMutable {
		panic("syntree: cannot freeze a mutable node without resolving it")
	}

	tree := &Frozen[P]{
		arena:   a,
		entries: make([]entry, 0, r.size),
		kids:    make([]int32, 0, r.size-1),
	}
	tree.visit(root, -1, 0, 0)

	// The arena lock is held, so retain directly.
	a.sync.Retain()

	a.config.logger.Debug("syntree: froze tree",
		"root", a.name(r.kind),
		"nodes", len(tree.entries),
		"width", r.width,
	)
	return tree
}

// visit appends the occurrence of h, and those of its descendants, to the
// occurrence table in pre-order. Returns the end offset of the occurrence.
//
// The arena lock must be held.
func (t *Frozen[P]) visit(h Handle, parent, index int32, start uint32) uint32 {
	s := t.arena.at(h)
	idx := int32(len(t.entries))
	t.entries = append(t.entries, entry{
		green:  h,
		kind:   s.kind,
		parent: parent,
		index:  index,
		start:  start,
		size:   int32(s.size),
	})

	if s.tag == tagToken {
		e := &t.entries[idx]
		e.token = true
		e.text = s.text
		e.end = start + s.width
		return e.end
	}

	// Reserve this node's run of child indices before recursing, since the
	// children will append their own runs.
	kids := int32(len(t.kids))
	t.kids = append(t.kids, make([]int32, len(s.children))...)
	t.entries[idx].kids = kids
	t.entries[idx].nkids = int32(len(s.children))

	end := start
	for i, child := range s.children {
		t.kids[int(kids)+i] = int32(len(t.entries))
		end = t.visit(child, idx, int32(i), end)
	}
	t.entries[idx].end = end
	return end
}

// thaw builds a mutable tree over the green subtree at root.
func (a *Arena[P]) thaw(root Handle) *Mutable[P] {
	s := a.get(root)
	if s.tag == tagGreen {
		root = a.newMutable(s.kind, 0, slices.Clone(s.children))
	}

	a.Retain()
	a.config.logger.Debug("syntree: thawed tree",
		"root", a.name(s.kind),
		"nodes", s.size,
	)
	return &Mutable[P]{arena: a, root: root}
}
