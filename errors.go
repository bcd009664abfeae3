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
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when an edit names a child index past the
	// end of a node's children.
	ErrOutOfBounds = errors.New("child index out of bounds")

	// ErrRangesUnavailable is returned when asking a mutable tree for text
	// ranges. Mutable trees do not track ranges; freeze the tree first.
	ErrRangesUnavailable = errors.New("ranges are unavailable on a mutable tree")

	// ErrLockTimeout is returned when an edit could not acquire a node's lock
	// within the arena's configured timeout. See [WithLockTimeout].
	ErrLockTimeout = errors.New("timed out waiting for node lock")

	// ErrToken is returned when attempting to edit the children of a token.
	ErrToken = errors.New("tokens have no children")

	// ErrAttached is returned when attaching a mutable node that already has
	// a parent. Detach it first.
	ErrAttached = errors.New("node already has a parent")

	// ErrCycle is returned when an edit would make a node its own ancestor.
	ErrCycle = errors.New("node would become its own ancestor")

	// ErrDetached is returned by sibling-relative edits on a node that is no
	// longer a child of the parent it was reached through.
	ErrDetached = errors.New("node is not attached to a parent")
)

// EditError is the error returned by a failed edit on a [MutNode].
//
// A failed edit leaves the tree exactly as it was.
type EditError struct {
	// The edit that failed, e.g. "insert".
	Op string
	// The child index the edit was given, and the number of children the
	// node had when the edit was attempted. Len is -1 if the edit failed
	// before the node's children could be inspected.
	Index, Len int

	// The underlying error; one of the Err* values in this package.
	Err error
}

// Error implements [error].
func (e *EditError) Error() string {
	if e.Len < 0 {
		return fmt.Sprintf("syntree: %s at %d: %v", e.Op, e.Index, e.Err)
	}
	return fmt.Sprintf("syntree: %s at %d of %d children: %v", e.Op, e.Index, e.Len, e.Err)
}

// Unwrap returns the underlying error.
func (e *EditError) Unwrap() error {
	return e.Err
}

func editError(op string, idx, n int, err error) error {
	return &EditError{Op: op, Index: idx, Len: n, Err: err}
}
