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

package interval_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/syntree/internal/interval"
)

func TestMap(t *testing.T) {
	t.Parallel()

	var m interval.Map[uint32, string]
	for _, iv := range []struct {
		start, end uint32
		v          string
	}{
		{0, 3, "foo"},
		{3, 4, " "},
		{4, 7, "bar"},
		{10, 12, "baz"},
	} {
		_, ok := m.Insert(iv.start, iv.end, iv.v)
		require.True(t, ok)
	}
	assert.Equal(t, 4, m.Len())

	tests := []struct {
		point uint32
		want  string
	}{
		{0, "foo"}, {2, "foo"}, {3, " "}, {4, "bar"}, {6, "bar"},
		{7, ""}, {9, ""}, {10, "baz"}, {11, "baz"}, {12, ""}, {100, ""},
	}
	for _, tt := range tests {
		got, ok := m.Get(tt.point)
		assert.Equal(t, tt.want != "", ok, "point %d", tt.point)
		assert.Equal(t, tt.want, got.Value, "point %d", tt.point)
		if ok {
			assert.True(t, got.Contains(tt.point))
		}
	}

	assert.Equal(t, `{[0x0, 0x3): foo, [0x3, 0x4):  , [0x4, 0x7): bar, [0xa, 0xc): baz}`, fmt.Sprintf("%v", &m))
}

func TestMapOverlap(t *testing.T) {
	t.Parallel()

	var m interval.Map[int, int]
	_, ok := m.Insert(10, 20, 1)
	require.True(t, ok)
	_, ok = m.Insert(30, 40, 2)
	require.True(t, ok)

	for _, tt := range []struct {
		start, end, want int
	}{
		{5, 11, 1},
		{19, 25, 1},
		{12, 15, 1},
		{0, 100, 1},
		{25, 31, 2},
		{39, 45, 2},
	} {
		overlap, ok := m.Insert(tt.start, tt.end, -1)
		assert.False(t, ok, "[%d, %d)", tt.start, tt.end)
		assert.Equal(t, tt.want, overlap.Value, "[%d, %d)", tt.start, tt.end)
	}

	_, ok = m.Insert(20, 30, 3)
	assert.True(t, ok)
	_, ok = m.Insert(0, 10, 0)
	assert.True(t, ok)

	var values []int
	for iv := range m.All() {
		values = append(values, iv.Value)
	}
	assert.Equal(t, []int{0, 1, 3, 2}, values)

	assert.Panics(t, func() { m.Insert(50, 50, 9) })
}
