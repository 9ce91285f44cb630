// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testAuthFragments = "&id_token=idt0ken&access_token=acce$$&state=state123&token_type=bearer&expires_in=1234"

func TestWithoutAuthFragments(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{
			name: "no-hash",
			uri:  "https://app.com/",
			want: "https://app.com/",
		},
		{
			name: "no-hash-with-query",
			uri:  "https://app.com/?state=abc",
			want: "https://app.com/?state=abc",
		},
		{
			name: "hash-preserved",
			uri:  "https://app.com/#test",
			want: "https://app.com/#test",
		},
		{
			name: "auth-fragments-filtered",
			uri:  "https://app.com/#test" + testAuthFragments,
			want: "https://app.com/#test",
		},
		{
			name: "only-auth-fragments",
			uri:  "https://app.com/#" + testAuthFragments,
			want: "https://app.com/",
		},
		{
			name: "order-preserved",
			uri:  "https://app.com/app#b=2&state=s&a=1&token_type=bearer&c",
			want: "https://app.com/app#b=2&a=1&c",
		},
		{
			name: "empty-parts-preserved",
			uri:  "https://app.com/#a&&b",
			want: "https://app.com/#a&&b",
		},
		{
			name: "empty-parts-preserved-around-auth-fragments",
			uri:  "https://app.com/#a&&state=s&b",
			want: "https://app.com/#a&&b",
		},
		{
			name: "only-empty-parts-remain",
			uri:  "https://app.com/#&state=s&",
			want: "https://app.com/",
		},
		{
			name: "empty-hash",
			uri:  "https://app.com/#",
			want: "https://app.com/",
		},
		{
			name: "lookalike-names-kept",
			uri:  "https://app.com/#states=1&my_state=2",
			want: "https://app.com/#states=1&my_state=2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			got := WithoutAuthFragments(tt.uri)
			assert.Equal(tt.want, got)
			assert.Equal(got, WithoutAuthFragments(got), "not idempotent")
		})
	}
}

func TestStateFromURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		uri       string
		loc       ParamLocation
		wantState string
		wantOk    bool
	}{
		{"empty-uri", "", Hash, "", false},
		{"hash", "https://app.com/#state=abc&id_token=x", Hash, "abc", true},
		{"hash-missing", "https://app.com/#id_token=x", Hash, "", false},
		{"hash-ignores-query", "https://app.com/?state=q#id_token=x", Hash, "", false},
		{"query", "https://op.example.com/authorize?client_id=c&state=st_1", Query, "st_1", true},
		{"query-ignores-hash", "https://op.example.com/authorize#state=h", Query, "", false},
		{"query-missing", "https://op.example.com/authorize?client_id=c", Query, "", false},
		{"escaped", "https://app.com/#state=a%20b", Hash, "a b", true},
		{"empty-value", "https://app.com/#state=", Hash, "", true},
		{"unknown-location", "https://app.com/#state=abc", ParamLocation("path"), "", false},
		{"invalid-uri", "https://app.com/%zz#state=abc", Hash, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			got, ok := StateFromURI(tt.uri, tt.loc)
			assert.Equal(tt.wantOk, ok)
			assert.Equal(tt.wantState, got)
		})
	}
}

func TestAdapter(t *testing.T) {
	t.Parallel()
	t.Run("current-location", func(t *testing.T) {
		assert := assert.New(t)
		a := NewAdapter(NewMemory("https://app.com/"))
		got, ok := a.CurrentLocation()
		assert.True(ok)
		assert.Equal("https://app.com/", got)
	})
	t.Run("has-auth-response", func(t *testing.T) {
		assert := assert.New(t)
		m := NewMemory("https://app.com/#test" + testAuthFragments)
		a := NewAdapter(m)
		assert.True(a.CurrentURIHasAuthResponse())

		m.SetHref("https://app.com/#state=")
		assert.False(a.CurrentURIHasAuthResponse(), "empty state is not a response")

		m.SetHref("https://app.com/?state=abc")
		assert.False(a.CurrentURIHasAuthResponse(), "state in the query is not a response")
	})
	t.Run("clear-auth-response", func(t *testing.T) {
		assert := assert.New(t)
		m := NewMemory("https://app.com/#test" + testAuthFragments)
		a := NewAdapter(m)
		assert.Equal("https://app.com/#test", a.CurrentLocationWithoutAuthFragments())
		a.ClearAuthResponseFromURL()
		got, _ := a.CurrentLocation()
		assert.Equal("https://app.com/#test", got)
		assert.Equal([]string{"https://app.com/#test"}, m.Replaced())
		assert.False(a.CurrentURIHasAuthResponse())
	})
	t.Run("redirect", func(t *testing.T) {
		assert := assert.New(t)
		m := NewMemory("https://app.com/")
		a := NewAdapter(m)
		a.RedirectTo("https://op.example.com/authorize?state=abc")
		assert.Equal([]string{"https://op.example.com/authorize?state=abc"}, m.Navigations())
		got, _ := a.CurrentLocation()
		assert.Equal("https://app.com/", got)
	})
	t.Run("no-browsing-context", func(t *testing.T) {
		assert := assert.New(t)
		for _, c := range []Context{None{}, nil, NewMemory("")} {
			a := NewAdapter(c)
			got, ok := a.CurrentLocation()
			assert.False(ok)
			assert.Empty(got)
			assert.Empty(a.CurrentLocationWithoutAuthFragments())
			assert.False(a.CurrentURIHasAuthResponse())
			a.ClearAuthResponseFromURL()
			a.ReplaceCurrentURL("https://app.com/")
			a.RedirectTo("https://op.example.com/")
		}
	})
}
