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

import "context"

// Local is the single-owner policy.
//
// Its count is a plain integer and its lock does nothing. A Local value, and
// anything that embeds one, must only ever be touched by one goroutine.
type Local struct {
	refs  int32
	owner owner
}

// New implements [Policy].
func (*Local) New() *Local {
	l := new(Local)
	l.owner.claim()
	return l
}

// Retain implements [Policy].
func (l *Local) Retain() {
	l.owner.check()
	l.refs++
}

// Release implements [Policy].
func (l *Local) Release() bool {
	l.owner.check()
	if l.refs <= 0 {
		panic("policy: Release called on a value with no owners")
	}
	l.refs--
	return l.refs == 0
}

// Count implements [Policy].
func (l *Local) Count() int32 {
	return l.refs
}

// RLock implements [Policy]. It never blocks and never fails.
func (l *Local) RLock(context.Context) error {
	l.owner.check()
	return nil
}

// RUnlock implements [Policy].
func (*Local) RUnlock() {}

// Lock implements [Policy]. It never blocks and never fails.
func (l *Local) Lock(context.Context) error {
	l.owner.check()
	return nil
}

// Unlock implements [Policy].
func (*Local) Unlock() {}
