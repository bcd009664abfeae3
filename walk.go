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

import "iter"

// Event is an event yielded by [Node.Walk].
type Event int8

const (
	// Enter is yielded before a node's children.
	Enter Event = iota
	// Leave is yielded after a node's children.
	Leave
)

// String implements [fmt.Stringer].
func (e Event) String() string {
	if e == Enter {
		return "Enter"
	}
	return "Leave"
}

// Walk returns an iterator over the subtree rooted at this node, yielding
// [Enter] when a node is reached and [Leave] once all of its children have
// been visited. Tokens are entered and left immediately.
func (n Node[P]) Walk() iter.Seq2[Event, Node[P]] {
	return func(yield func(Event, Node[P]) bool) {
		var open []int32
		leave := func(before int32) bool {
			for len(open) > 0 {
				top := open[len(open)-1]
				if before < top+n.tree.entries[top].size {
					break
				}
				open = open[:len(open)-1]
				if !yield(Leave, Node[P]{n.tree, top}) {
					return false
				}
			}
			return true
		}

		end := n.idx + n.entry().size
		for i := n.idx; i < end; i++ {
			if !leave(i) || !yield(Enter, Node[P]{n.tree, i}) {
				return
			}
			open = append(open, i)
		}
		leave(end)
	}
}

// Preorder returns an iterator over the subtree rooted at this node, in
// pre-order. This node comes first.
func (n Node[P]) Preorder() iter.Seq[Node[P]] {
	return func(yield func(Node[P]) bool) {
		end := n.idx + n.entry().size
		for i := n.idx; i < end; i++ {
			if !yield(Node[P]{n.tree, i}) {
				return
			}
		}
	}
}

// Tokens returns an iterator over the tokens in the subtree rooted at this
// node, in text order.
func (n Node[P]) Tokens() iter.Seq[Node[P]] {
	return func(yield func(Node[P]) bool) {
		end := n.idx + n.entry().size
		for i := n.idx; i < end; i++ {
			if n.tree.entries[i].token && !yield(Node[P]{n.tree, i}) {
				return
			}
		}
	}
}

// Ancestors returns an iterator over this node's ancestors, starting with its
// parent and ending with the root.
func (n Node[P]) Ancestors() iter.Seq[Node[P]] {
	return func(yield func(Node[P]) bool) {
		for p, ok := n.Parent(); ok; p, ok = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}
