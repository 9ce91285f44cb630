// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package webclient_test

import (
	"context"
	"fmt"

	"github.com/hashicorp/webclient/browser"
	"github.com/hashicorp/webclient/client"
	"github.com/hashicorp/webclient/rp"
	"github.com/hashicorp/webclient/storage"
)

func Example_webClient() {
	ctx := context.Background()

	// A single backend is shared by the relying party's request records and
	// the web client's stores.  In a browser, use storage.NewLocalStorage().
	backend := storage.NewMemoryBackend()
	defer backend.Stop()

	rpClient, err := rp.NewClient(backend)
	if err != nil {
		// handle error
	}
	defer rpClient.Done()

	stores, err := client.NewStores(backend)
	if err != nil {
		// handle error
	}

	// In a browser, use browser.NewWindow().
	window := browser.NewMemory("https://app.example.com/")

	wc, err := client.NewWebClient(rpClient, browser.NewAdapter(window), stores,
		client.WithProvider("https://op.example.com"),
	)
	if err != nil {
		// handle error
	}

	// On every page load, resolve the session.  When the page is the
	// provider's redirect, the response is validated and the session
	// persisted.
	s := wc.CurrentSession(ctx)
	if !s.IsAnonymous() {
		fmt.Println("authenticated as:", s.Subject)
		return
	}

	// Registers with the provider on first use, then redirects to it.
	if err := wc.Login(ctx, ""); err != nil {
		// handle error
	}
}

func Example_logout() {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	defer backend.Stop()

	rpClient, _ := rp.NewClient(backend)
	defer rpClient.Done()
	stores, _ := client.NewStores(backend)
	wc, _ := client.NewWebClient(rpClient, browser.NewAdapter(browser.None{}), stores)

	// Forgets the registrations and the session.  The provider isn't
	// contacted.
	if err := wc.Logout(ctx); err != nil {
		// handle error
	}
	fmt.Println(wc.CurrentSession(ctx).IsAnonymous())
	// Output: true
}
