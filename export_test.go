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

	"github.com/bufbuild/syntree/policy"
)

// LockNode acquires n's write lock, for testing lock timeouts. The returned
// function releases it.
func LockNode[P policy.Policy[P]](n MutNode[P]) (unlock func()) {
	m := n.slot().mut
	_ = m.lock.Lock(context.Background())
	return m.lock.Unlock
}

// WithNodeHash replaces the structural hash of green nodes, so that tests can
// force distinct nodes into the same bucket.
func WithNodeHash(hash func(Kind, []Handle) uint64) ArenaOption {
	return func(c *arenaConfig) {
		c.nodeHash = hash
	}
}

// RLockNode acquires n's read lock. The returned function releases it.
func RLockNode[P policy.Policy[P]](n MutNode[P]) (unlock func()) {
	m := n.slot().mut
	_ = m.lock.RLock(context.Background())
	return m.lock.RUnlock
}
