// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

/*
Package client is the OIDC web client a single page application uses to
authenticate its users against an external provider with the implicit flow.

There's no server side session: a WebClient reconstructs its state on every
CurrentSession call from persisted storage and the current URL.  A user is
either unauthenticated (no persisted session and no response in the URL),
pending (the URL's fragment carries an authentication response) or
authenticated (a session is persisted).

Persisted data lives in three namespaces of a shared storage.Backend, see
NewStores:

	oidc.clients    registrations, keyed by provider
	oidc.session    the single session
	oidc.providers  the provider of each in-flight login, keyed by state

Protocol work (registration, authentication requests and token validation) is
delegated to a RelyingParty, which rp.Client implements.  The browsing
context is reached only through a Browser, which browser.Adapter implements.

Example:

	stores, _ := client.NewStores(backend)
	rpClient, _ := rp.NewClient(backend)
	wc, _ := client.NewWebClient(rpClient, browser.NewAdapter(ctx), stores)

	if s := wc.CurrentSession(ctx); s.IsAnonymous() {
		_ = wc.Login(ctx, "https://op.example.com")
	}
*/
package client
