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
)

// Dump renders the subtree rooted at this node as an indented listing, one
// node per line, for debugging and golden tests:
//
//	CALL@[0, 7)
//	  IDENT@[0, 3) "foo"
//	  SPACE@[3, 4) " "
//	  IDENT@[4, 7) "bar"
func (n Node[P]) Dump() string {
	var out strings.Builder
	depth := 0
	for event, node := range n.Walk() {
		if event == Leave {
			depth--
			continue
		}

		for range depth {
			out.WriteString("  ")
		}
		out.WriteString(node.String())
		if text, ok := node.TokenText(); ok {
			fmt.Fprintf(&out, " %q", text)
		}
		out.WriteByte('\n')
		depth++
	}
	return out.String()
}

// Dump renders the subtree rooted at this node like [Node.Dump], except that
// mutable trees have no ranges, so nodes are labelled only by kind.
//
// Dump does not promote shared children, so it does not change the tree.
func (n MutNode[P]) Dump() string {
	var out strings.Builder
	n.arena.dump(&out, n.handle, 0)
	return out.String()
}

func (a *Arena[P]) dump(out *strings.Builder, h Handle, depth int) {
	for range depth {
		out.WriteString("  ")
	}

	s := a.get(h)
	out.WriteString(a.name(s.kind))
	var children []Handle
	switch s.tag {
	case tagToken:
		fmt.Fprintf(out, " %q\n", s.text)
		return
	case tagGreen:
		children = s.children
	case tagMutable:
		out.WriteString(" (mut)")
		children = s.mut.snapshot()
	}
	out.WriteByte('\n')

	for _, child := range children {
		a.dump(out, child, depth+1)
	}
}
