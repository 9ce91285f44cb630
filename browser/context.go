// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package browser

import "sync"

// Context is the set of browsing context primitives an Adapter needs.
type Context interface {
	// Href returns the current full URL.  The bool is false when there is no
	// browsing context.
	Href() (string, bool)

	// ReplaceState replaces the current history entry's URL without
	// navigating.
	ReplaceState(url string)

	// Assign navigates the browsing context to url.
	Assign(url string)
}

// None is a Context for non-interactive hosts: there's no current location
// and every mutation is a no-op.
type None struct{}

// ensure that None implements the Context interface
var _ Context = None{}

func (None) Href() (string, bool) { return "", false } // Href implements Context.Href
func (None) ReplaceState(string)  {}                   // ReplaceState implements Context.ReplaceState
func (None) Assign(string)        {}                   // Assign implements Context.Assign

// Memory is an in-memory Context.  It records every history replacement and
// navigation, which makes it useful for tests and for hosts that drive the
// login flow themselves (a CLI that opens the system browser, for example).
// It is concurrently safe.
type Memory struct {
	mu        sync.Mutex
	href      string
	replaced  []string
	navigated []string
}

// ensure that Memory implements the Context interface
var _ Context = (*Memory)(nil)

// NewMemory creates a Memory whose current location is href.
func NewMemory(href string) *Memory {
	return &Memory{href: href}
}

// Href implements Context.Href.  An empty location reports no browsing
// context.
func (m *Memory) Href() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.href, m.href != ""
}

// SetHref sets the current location, as if the user followed a link.
func (m *Memory) SetHref(href string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.href = href
}

// ReplaceState implements Context.ReplaceState.
func (m *Memory) ReplaceState(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.href = url
	m.replaced = append(m.replaced, url)
}

// Assign implements Context.Assign.  The navigation is recorded but the
// current location is left alone: the page which called Assign is gone, and
// whatever the provider redirects back to is set with SetHref.
func (m *Memory) Assign(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigated = append(m.navigated, url)
}

// Replaced returns every URL passed to ReplaceState, oldest first.
func (m *Memory) Replaced() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.replaced...)
}

// Navigations returns every URL passed to Assign, oldest first.
func (m *Memory) Navigations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.navigated...)
}
