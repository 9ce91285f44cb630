// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCachedBackend(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		next      Backend
		size      int
		wantErr   bool
		wantIsErr error
	}{
		{name: "valid", next: NewMemoryBackend(), size: 10},
		{name: "default-size", next: NewMemoryBackend()},
		{name: "nil-next", size: 10, wantErr: true, wantIsErr: ErrNilParameter},
		{name: "negative-size", next: NewMemoryBackend(), size: -1, wantErr: true, wantIsErr: ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewCachedBackend(tt.next, tt.size)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.NotNil(got.cache)
		})
	}
}

func TestCachedBackend(t *testing.T) {
	t.Parallel()
	t.Run("contract", func(t *testing.T) {
		b, err := NewCachedBackend(NewMemoryBackend(), 2)
		require.NoError(t, err)
		testBackendContract(t, b)
	})
	t.Run("read-through", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		ctx := context.Background()
		next := NewMemoryBackend()
		require.NoError(next.SetItem(ctx, "oidc.session", "1"))
		b, err := NewCachedBackend(next, 0)
		require.NoError(err)

		got, ok, err := b.GetItem(ctx, "oidc.session")
		require.NoError(err)
		assert.True(ok)
		assert.Equal("1", got)

		// served from the cache until purged
		require.NoError(next.SetItem(ctx, "oidc.session", "2"))
		got, _, _ = b.GetItem(ctx, "oidc.session")
		assert.Equal("1", got)
		b.Purge()
		got, _, _ = b.GetItem(ctx, "oidc.session")
		assert.Equal("2", got)
	})
	t.Run("failed-write-not-cached", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		ctx := context.Background()
		b, err := NewCachedBackend(testFailingBackend{}, 0)
		require.NoError(err)
		assert.Error(b.SetItem(ctx, "k", "v"))
		_, ok := b.cache.Get("k")
		assert.False(ok)
	})
}
