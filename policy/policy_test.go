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

package policy_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/syntree/policy"
)

func TestCounting(t *testing.T) {
	t.Parallel()

	t.Run("local", func(t *testing.T) {
		t.Parallel()
		testCounting[*policy.Local](t)
	})
	t.Run("shared", func(t *testing.T) {
		t.Parallel()
		testCounting[*policy.Shared](t)
	})
}

func testCounting[P policy.Policy[P]](t *testing.T) {
	var z P
	p := z.New()
	assert.Equal(t, int32(0), p.Count())

	p.Retain()
	p.Retain()
	assert.Equal(t, int32(2), p.Count())
	assert.False(t, p.Release())
	assert.True(t, p.Release())
	assert.Equal(t, int32(0), p.Count())

	assert.Panics(t, func() { p.Release() })
}

func TestLocalLockNeverBlocks(t *testing.T) {
	t.Parallel()

	l := (*policy.Local)(nil).New()
	ctx := context.Background()
	require.NoError(t, l.Lock(ctx))
	require.NoError(t, l.RLock(ctx))
	require.NoError(t, l.Lock(ctx))
	l.Unlock()
	l.RUnlock()
	l.Unlock()
}

func TestSharedReadersDoNotExclude(t *testing.T) {
	t.Parallel()

	s := (*policy.Shared)(nil).New()
	ctx := context.Background()

	require.NoError(t, s.RLock(ctx))
	require.NoError(t, s.RLock(ctx))
	s.RUnlock()
	s.RUnlock()

	require.NoError(t, s.Lock(ctx))
	s.Unlock()
}

func TestSharedWriterTimeout(t *testing.T) {
	t.Parallel()

	s := (*policy.Shared)(nil).New()
	require.NoError(t, s.RLock(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Lock(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The failed writer must not have left anything held.
	s.RUnlock()
	require.NoError(t, s.Lock(context.Background()))

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, s.RLock(ctx), context.DeadlineExceeded)
	s.Unlock()
}

func TestSharedSerializesWriters(t *testing.T) {
	t.Parallel()

	s := (*policy.Shared)(nil).New()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if err := s.Lock(context.Background()); err != nil {
					t.Error(err)
					return
				}
				counter++
				s.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3200, counter)
}
