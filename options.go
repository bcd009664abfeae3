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
	"log/slog"
	"time"
)

// ArenaOption configures an [Arena] at construction.
type ArenaOption func(*arenaConfig)

type arenaConfig struct {
	lockTimeout time.Duration
	logger      *slog.Logger
	kindName    func(Kind) string
	capacity    int

	// Overrides the structural hash of green nodes. Only set by tests.
	nodeHash func(Kind, []Handle) uint64
}

// WithLockTimeout bounds how long an edit waits for a node's lock before
// failing with [ErrLockTimeout]. Zero or negative means wait forever.
//
// This only matters under [policy.Shared]. It bounds every lock an edit
// takes, including the parent lookups of sibling-relative edits and the
// write that [MutNode.Child] makes to promote a shared child, as well as
// [Mutable.Freeze]. Plain reads and arena-internal allocation never time out.
func WithLockTimeout(d time.Duration) ArenaOption {
	return func(c *arenaConfig) {
		c.lockTimeout = d
	}
}

// WithLogger sets a logger for debug events such as freezing and arena
// teardown. By default nothing is logged.
func WithLogger(logger *slog.Logger) ArenaOption {
	return func(c *arenaConfig) {
		c.logger = logger
	}
}

// WithKindNames sets the function used to name kinds in dumps and in the
// String methods of tree views.
func WithKindNames(name func(Kind) string) ArenaOption {
	return func(c *arenaConfig) {
		c.kindName = name
	}
}

// WithCapacity pre-sizes the node store for roughly n distinct nodes.
func WithCapacity(n int) ArenaOption {
	return func(c *arenaConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

func (c *arenaConfig) defaults() {
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.kindName == nil {
		c.kindName = Kind.String
	}
}
