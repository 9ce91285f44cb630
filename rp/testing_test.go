// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"context"
	"testing"

	"github.com/hashicorp/webclient/storage"
	"github.com/stretchr/testify/require"
)

const testRedirectURI = "https://app.example.com/"

// testClient returns a Client trusting the test provider, and the backend its
// requests are recorded in.
func testClient(t *testing.T, tp *TestProvider, opt ...Option) (*Client, *storage.MemoryBackend) {
	t.Helper()
	require := require.New(t)
	backend := storage.NewMemoryBackend()
	t.Cleanup(backend.Stop)
	c, err := NewClient(backend, append([]Option{WithProviderCA(tp.CACert())}, opt...)...)
	require.NoError(err)
	t.Cleanup(c.Done)
	return c, backend
}

// testRegister registers an implicit flow client with the test provider.
func testRegister(t *testing.T, c *Client, tp *TestProvider, responseType string) *Registration {
	t.Helper()
	require := require.New(t)
	reg, err := c.Register(context.Background(), tp.Addr(), &RegistrationRequest{
		RedirectURIs:  []string{testRedirectURI},
		GrantTypes:    []string{GrantTypeImplicit},
		ResponseTypes: []string{responseType},
		Scope:         DefaultScope,
	}, &ClientOptions{Defaults: AuthenticateDefaults{RedirectURI: testRedirectURI, ResponseType: responseType}})
	require.NoError(err)
	return reg
}
