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

// Package policy defines the concurrency policies that a syntax tree arena
// can be instantiated with.
//
// A policy bundles two things: an ownership count, used to decide when an
// arena may drop its storage, and a reader/writer lock, used to guard the
// interior-mutable children lists of mutable nodes. The rest of the module is
// written against [Policy] and never inspects which policy is in use; the
// choice is made by the type argument, e.g.
//
//	syntree.NewArena[*policy.Local]()
//	syntree.NewArena[*policy.Shared]()
//
// There are two policies:
//
//  1. [Local] is for trees that never leave the goroutine that built them.
//     Counting is a plain integer and locking is a no-op. Using a Local value
//     from more than one goroutine is a data race. Building with the
//     syntree_debug tag makes Local panic when this happens.
//
//  2. [Shared] is for trees that are handed to other goroutines. Counting is
//     atomic and locking is a reader/writer lock that honours context
//     deadlines.
package policy

import "context"

// Policy is the constraint satisfied by the pointer types of all policies.
//
// P is the policy's own pointer type, e.g. *Local. New must be callable on
// the zero value of P (a nil pointer); every other method requires a value
// returned by New.
type Policy[P any] interface {
	// New returns a fresh policy value with a zero count and an unlocked lock.
	New() P

	// Retain increments the ownership count.
	Retain()

	// Release decrements the ownership count, and returns whether this was
	// the last owner.
	//
	// Panics if the count is already zero.
	Release() (last bool)

	// Count returns the current ownership count.
	Count() int32

	// RLock acquires the lock for reading. Readers do not exclude each other.
	//
	// Returns ctx's error if ctx expires before the lock could be acquired; in
	// that case, the lock is not held.
	RLock(ctx context.Context) error

	// RUnlock releases a read lock acquired with RLock.
	RUnlock()

	// Lock acquires the lock for writing, excluding all other readers and
	// writers.
	//
	// Returns ctx's error if ctx expires before the lock could be acquired; in
	// that case, the lock is not held.
	Lock(ctx context.Context) error

	// Unlock releases a write lock acquired with Lock.
	Unlock()
}

var (
	_ Policy[*Local]  = (*Local)(nil)
	_ Policy[*Shared] = (*Shared)(nil)
)
