// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestBackend = errors.New("test backend failure")

// testFailingBackend fails every operation, like a browser with storage
// disabled.
type testFailingBackend struct{}

func (testFailingBackend) GetItem(context.Context, string) (string, bool, error) {
	return "", false, errTestBackend
}
func (testFailingBackend) SetItem(context.Context, string, string) error { return errTestBackend }
func (testFailingBackend) RemoveItem(context.Context, string) error      { return errTestBackend }
func (testFailingBackend) Keys(context.Context, string) ([]string, error) {
	return nil, errTestBackend
}

// testBackendContract exercises the Backend contract every implementation
// must honor.
func testBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()
	assert, require := assert.New(t), require.New(t)

	_, ok, err := b.GetItem(ctx, "missing")
	require.NoError(err)
	assert.False(ok)

	require.NoError(b.SetItem(ctx, "oidc.clients.a", `"one"`))
	require.NoError(b.SetItem(ctx, "oidc.clients.b", `"two"`))
	require.NoError(b.SetItem(ctx, "oidc.session", `{}`))

	got, ok, err := b.GetItem(ctx, "oidc.clients.a")
	require.NoError(err)
	assert.True(ok)
	assert.Equal(`"one"`, got)

	require.NoError(b.SetItem(ctx, "oidc.clients.a", `"uno"`))
	got, ok, err = b.GetItem(ctx, "oidc.clients.a")
	require.NoError(err)
	assert.True(ok)
	assert.Equal(`"uno"`, got)

	keys, err := b.Keys(ctx, "oidc.clients")
	require.NoError(err)
	sort.Strings(keys)
	assert.Equal([]string{"oidc.clients.a", "oidc.clients.b"}, keys)

	keys, err = b.Keys(ctx, "oidc.")
	require.NoError(err)
	assert.Len(keys, 3)

	require.NoError(b.RemoveItem(ctx, "oidc.clients.a"))
	require.NoError(b.RemoveItem(ctx, "oidc.clients.a"), "removing a missing key is not an error")
	_, ok, err = b.GetItem(ctx, "oidc.clients.a")
	require.NoError(err)
	assert.False(ok)
}
