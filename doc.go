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

// Package syntree provides lossless syntax trees for parsers: an arena-backed
// tree of tokens and nested productions, built for re-parsing near-identical
// inputs, cheap read-only traversal and occasional in-place editing.
//
// # Green and red
//
// Trees are stored in two layers. The green layer, [Green], is made of
// immutable, position-independent tokens and nodes that live in an [Arena].
// Green values are hash-consed: building the same subtree twice, in the same
// arena, yields the same value, so a tree that is re-parsed after a small edit
// shares almost all of its storage with the previous version.
//
// The red layer gives green values a position. A [Frozen] tree records every
// occurrence of every green value in a flat table, and a [Node] is a small
// view of one such occurrence that knows its parent, its siblings and the
// absolute range of text it spans.
//
// # Editing
//
// [Frozen.Thaw] returns a [Mutable] tree, whose internal nodes ([MutNode])
// may be edited in place. Mutable trees do not track ranges; ranges are only
// ever computed from scratch, by [Mutable.Freeze].
//
// # Concurrency
//
// Every arena is parameterized by a [policy.Policy], which decides how
// reference counts and node locks are implemented: [policy.Local] for trees
// that never leave one goroutine, [policy.Shared] for trees that are read and
// edited from many.
package syntree
