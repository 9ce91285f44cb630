// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend(t *testing.T) {
	t.Parallel()
	t.Run("contract", func(t *testing.T) {
		testBackendContract(t, NewMemoryBackend())
	})
	t.Run("ttl", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		ctx := context.Background()
		b := NewMemoryBackend(WithTTL(50 * time.Millisecond))
		t.Cleanup(b.Stop)

		require.NoError(b.SetItem(ctx, "oidc.providers.st_1", `"https://oidc.example.com"`))
		_, ok, err := b.GetItem(ctx, "oidc.providers.st_1")
		require.NoError(err)
		assert.True(ok)

		assert.Eventually(func() bool {
			_, ok, err := b.GetItem(ctx, "oidc.providers.st_1")
			return err == nil && !ok
		}, 2*time.Second, 10*time.Millisecond)
	})
	t.Run("canceled-ctx", func(t *testing.T) {
		assert := assert.New(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		b := NewMemoryBackend()
		assert.Error(b.SetItem(ctx, "k", "v"))
		_, _, err := b.GetItem(ctx, "k")
		assert.Error(err)
		assert.Error(b.RemoveItem(ctx, "k"))
		_, err = b.Keys(ctx, "")
		assert.Error(err)
	})
	t.Run("stop", func(t *testing.T) {
		b := NewMemoryBackend(WithTTL(time.Minute))
		b.Stop()
		b.Stop()
		NewMemoryBackend().Stop()
		var nilBackend *MemoryBackend
		nilBackend.Stop()
	})
}

func Test_WithTTL(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	opts := getMemoryOpts(WithTTL(time.Second))
	testOpts := memoryDefaults()
	testOpts.withTTL = time.Second
	assert.Equal(opts.withTTL, testOpts.withTTL)
}
