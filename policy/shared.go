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

package policy

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// maxReaders is the capacity of a Shared lock's semaphore. A reader takes one
// unit and a writer takes all of them.
const maxReaders = 1 << 24

// Shared is the policy for values that are shared across goroutines.
//
// Its count is atomic. Its lock is a reader/writer lock built on a weighted
// semaphore, which is what lets acquisitions give up when a context expires;
// a [sync.RWMutex] has no such operation.
//
// Waiters are served in FIFO order, so a blocked writer also holds back
// readers that arrive after it. There is no other fairness guarantee.
type Shared struct {
	refs atomic.Int32
	sema *semaphore.Weighted
}

// New implements [Policy].
func (*Shared) New() *Shared {
	return &Shared{sema: semaphore.NewWeighted(maxReaders)}
}

// Retain implements [Policy].
func (s *Shared) Retain() {
	s.refs.Add(1)
}

// Release implements [Policy].
func (s *Shared) Release() bool {
	n := s.refs.Add(-1)
	if n < 0 {
		s.refs.Add(1)
		panic("policy: Release called on a value with no owners")
	}
	return n == 0
}

// Count implements [Policy].
func (s *Shared) Count() int32 {
	return s.refs.Load()
}

// RLock implements [Policy].
func (s *Shared) RLock(ctx context.Context) error {
	return s.sema.Acquire(ctx, 1)
}

// RUnlock implements [Policy].
func (s *Shared) RUnlock() {
	s.sema.Release(1)
}

// Lock implements [Policy].
func (s *Shared) Lock(ctx context.Context) error {
	return s.sema.Acquire(ctx, maxReaders)
}

// Unlock implements [Policy].
func (s *Shared) Unlock() {
	s.sema.Release(maxReaders)
}
