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

//go:build syntree_debug

package policy

import (
	"fmt"

	"github.com/petermattis/goid"
)

// owner records the goroutine that created a [Local], so that debug builds
// can catch a Local escaping to another goroutine.
type owner struct {
	gid int64
}

func (o *owner) claim() {
	o.gid = goid.Get()
}

func (o *owner) check() {
	if gid := goid.Get(); gid != o.gid {
		panic(fmt.Sprintf(
			"policy: Local value created on goroutine %d used on goroutine %d; use policy.Shared",
			o.gid, gid,
		))
	}
}
