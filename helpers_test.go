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

	"github.com/bufbuild/syntree"
	"github.com/bufbuild/syntree/policy"
)

const (
	Call syntree.Kind = iota + 1
	Ident
	Space
	Num
	Plus
	Binary
	List
	Comma
)

var kindNames = map[syntree.Kind]string{
	Call:   "CALL",
	Ident:  "IDENT",
	Space:  "SPACE",
	Num:    "NUM",
	Plus:   "PLUS",
	Binary: "BINARY",
	List:   "LIST",
	Comma:  "COMMA",
}

func kindName(k syntree.Kind) string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return k.String()
}

// newArena returns an arena that is released when the test ends.
func newArena[P policy.Policy[P]](t *testing.T, options ...syntree.ArenaOption) *syntree.Arena[P] {
	t.Helper()
	options = append([]syntree.ArenaOption{syntree.WithKindNames(kindName)}, options...)
	a := syntree.NewArena[P](options...)
	t.Cleanup(a.Release)
	return a
}

// buildCall builds the tree for "foo bar":
//
//	CALL
//	  IDENT "foo"
//	  SPACE " "
//	  IDENT "bar"
func buildCall[P policy.Policy[P]](a *syntree.Arena[P]) syntree.Green[P] {
	return a.Node(Call,
		a.Token(Ident, "foo"),
		a.Token(Space, " "),
		a.Token(Ident, "bar"),
	)
}

// buildList builds a LIST of n CALLs separated by commas, with the CALLs
// alternating between "foo bar" and "foo baz", so that the tree has both
// shared and distinct subtrees.
func buildList[P policy.Policy[P]](a *syntree.Arena[P], n int) syntree.Green[P] {
	b := syntree.NewBuilder(a)
	b.StartNode(List)
	for i := range n {
		if i > 0 {
			b.Token(Comma, ",")
		}
		b.StartNode(Call)
		b.Token(Ident, "foo")
		b.Token(Space, " ")
		if i%2 == 0 {
			b.Token(Ident, "bar")
		} else {
			b.Token(Ident, "baz")
		}
		b.FinishNode()
	}
	b.FinishNode()
	return b.Finish()
}
