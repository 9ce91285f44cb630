// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package browser

import (
	"net/url"
	"strings"
)

// ParamLocation selects which part of a URI carries a parameter.
type ParamLocation string

const (
	// Hash is the URI's fragment, used by implicit flow responses.
	Hash ParamLocation = "hash"

	// Query is the URI's query string, used by authentication requests.
	Query ParamLocation = "query"
)

// authResponseParams are the hash fragment parameters of an implicit flow
// authentication response.
var authResponseParams = map[string]struct{}{
	"id_token":     {},
	"access_token": {},
	"state":        {},
	"token_type":   {},
	"expires_in":   {},
}

// Adapter provides the browser operations a web client uses on top of a
// Context.
type Adapter struct {
	ctx Context
}

// NewAdapter creates an Adapter for the Context.  A nil Context is treated
// as None.
func NewAdapter(c Context) *Adapter {
	if c == nil {
		c = None{}
	}
	return &Adapter{ctx: c}
}

// CurrentLocation returns the current full URL.  The bool is false when
// there's no browsing context.
func (a *Adapter) CurrentLocation() (string, bool) {
	return a.ctx.Href()
}

// CurrentLocationWithoutAuthFragments returns the current URL with the
// authentication response parameters removed from its hash fragment.  It
// returns "" when there's no browsing context.
func (a *Adapter) CurrentLocationWithoutAuthFragments() string {
	href, ok := a.ctx.Href()
	if !ok {
		return ""
	}
	return WithoutAuthFragments(href)
}

// ReplaceCurrentURL replaces the current history entry's URL without
// navigating.
func (a *Adapter) ReplaceCurrentURL(newURL string) {
	a.ctx.ReplaceState(newURL)
}

// ClearAuthResponseFromURL removes the authentication response (tokens,
// state, etc) from the current URL's hash fragment, so a reload doesn't
// process the response again.
func (a *Adapter) ClearAuthResponseFromURL() {
	if _, ok := a.ctx.Href(); !ok {
		return
	}
	a.ReplaceCurrentURL(a.CurrentLocationWithoutAuthFragments())
}

// CurrentURIHasAuthResponse returns true when the current URL's hash fragment
// carries a non-empty state parameter: the page was loaded by a provider's
// authentication response redirect.
func (a *Adapter) CurrentURIHasAuthResponse() bool {
	href, ok := a.ctx.Href()
	if !ok {
		return false
	}
	state, ok := StateFromURI(href, Hash)
	return ok && state != ""
}

// RedirectTo navigates the browsing context to uri.  Callers should treat it
// as the last thing their page does.
func (a *Adapter) RedirectTo(uri string) {
	a.ctx.Assign(uri)
}

// StateFromURI returns the state parameter from either the hash fragment or
// the query string of uri.  The bool is false when uri is empty or invalid,
// or the parameter is missing.
func StateFromURI(uri string, loc ParamLocation) (string, bool) {
	if uri == "" {
		return "", false
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", false
	}
	var params url.Values
	switch loc {
	case Hash:
		params, err = url.ParseQuery(u.EscapedFragment())
		if err != nil {
			return "", false
		}
	case Query:
		params = u.Query()
	default:
		return "", false
	}
	if _, ok := params["state"]; !ok {
		return "", false
	}
	return params.Get("state"), true
}

// WithoutAuthFragments removes the authentication response parameters
// (id_token, access_token, state, token_type and expires_in) from uri's hash
// fragment.  Other fragment parts, empty ones included, are kept verbatim and
// in order.  When no non-empty part remains, the "#" is removed as well.  A uri without a hash fragment
// is returned unchanged.
func WithoutAuthFragments(uri string) string {
	i := strings.IndexByte(uri, '#')
	if i < 0 {
		return uri
	}
	base, fragment := uri[:i], uri[i+1:]
	var kept []string
	empty := true
	for _, part := range strings.Split(fragment, "&") {
		if part == "" {
			kept = append(kept, part)
			continue
		}
		name := part
		if j := strings.IndexByte(part, '='); j >= 0 {
			name = part[:j]
		}
		if unescaped, err := url.QueryUnescape(name); err == nil {
			name = unescaped
		}
		if _, ok := authResponseParams[name]; ok {
			continue
		}
		kept = append(kept, part)
		empty = false
	}
	if empty {
		return base
	}
	return base + "#" + strings.Join(kept, "&")
}
