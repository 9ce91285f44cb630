// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ValidateResponse validates the authentication response carried by the
// responseURI (in its fragment, or its query when the fragment is empty) for
// the registration.  The recorded request matching the response's state is
// consumed, so a response can only be validated once.
//
// The id_token's signature, issuer, audience and expiry are verified, then its
// nonce and (when an access_token is returned) its at_hash.
//
// See: https://openid.net/specs/openid-connect-core-1_0.html#ImplicitAuthResponse
func (c *Client) ValidateResponse(ctx context.Context, responseURI string, reg *Registration) (*Session, error) {
	const op = "Client.ValidateResponse"
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	params, err := responseParams(responseURI)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	state := params.Get("state")
	if code := params.Get("error"); code != "" {
		if state != "" {
			// a failed request can't be retried with the same state
			_, _ = c.consumeRequest(ctx, state)
		}
		if desc := params.Get("error_description"); desc != "" {
			code = code + ": " + desc
		}
		return nil, fmt.Errorf("%s: %w: %s", op, ErrAuthenticationFailed, code)
	}
	if state == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingState)
	}
	req, err := c.consumeRequest(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case req.Issuer != reg.Issuer || req.ClientID != reg.ClientID:
		return nil, fmt.Errorf("%s: request was not created for client %q of %q: %w", op, reg.ClientID, reg.Issuer, ErrResponseStateInvalid)
	case req.isExpired(c.now()):
		return nil, fmt.Errorf("%s: %w", op, ErrExpiredRequest)
	}

	rawIDToken := params.Get("id_token")
	if rawIDToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingIDToken)
	}
	accessToken := params.Get("access_token")
	if accessToken == "" && responseTypeIncludes(req.ResponseType, "token") {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingAccessToken)
	}

	d, err := c.discover(ctx, reg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	verifier := d.provider.Verifier(&oidc.Config{
		ClientID:             reg.ClientID,
		SupportedSigningAlgs: c.signingAlgs,
		Now:                  c.now,
	})
	tok, err := verifier.Verify(oidc.ClientContext(ctx, c.httpClient), rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrIDTokenVerificationFailed, err)
	}
	if tok.Nonce != req.Nonce {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidNonce)
	}
	if accessToken != "" {
		if tok.AccessTokenHash == "" {
			return nil, fmt.Errorf("%s: id_token has no at_hash: %w", op, ErrInvalidAtHash)
		}
		if err := tok.VerifyAccessToken(accessToken); err != nil {
			return nil, fmt.Errorf("%s: %w: %s", op, ErrInvalidAtHash, err)
		}
	}

	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s: unable to read id_token claims: %w", op, err)
	}
	s := &Session{
		Issuer:      reg.Issuer,
		ClientID:    reg.ClientID,
		Subject:     tok.Subject,
		IDToken:     IDToken(rawIDToken),
		AccessToken: AccessToken(accessToken),
		TokenType:   params.Get("token_type"),
		Expiry:      tok.Expiry,
		Claims:      claims,
	}
	if secs, err := strconv.ParseInt(params.Get("expires_in"), 10, 64); err == nil && secs > 0 {
		s.Expiry = c.now().Add(time.Duration(secs) * time.Second)
	}
	c.logger.Debug("validated authentication response", "issuer", reg.Issuer, "sub", tok.Subject)
	return s, nil
}

// consumeRequest returns the request recorded for the state and deletes it.
func (c *Client) consumeRequest(ctx context.Context, state string) (*authRequest, error) {
	const op = "Client.consumeRequest"
	req, ok := c.requests.Get(ctx, state)
	if !ok || req == nil {
		return nil, fmt.Errorf("%s: no request for state: %w", op, ErrNotFound)
	}
	if err := c.requests.Delete(ctx, state); err != nil {
		c.logger.Warn("unable to delete consumed request", "error", err)
	}
	return req, nil
}

// responseParams returns the authentication response parameters of the uri:
// its fragment's, or its query's when the fragment is empty.
func responseParams(uri string) (url.Values, error) {
	const op = "rp.responseParams"
	if uri == "" {
		return nil, fmt.Errorf("%s: response URI is empty: %w", op, ErrInvalidParameter)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrInvalidParameter, err)
	}
	if frag := u.EscapedFragment(); frag != "" {
		params, err := url.ParseQuery(frag)
		if err != nil {
			return nil, fmt.Errorf("%s: unable to parse fragment: %w: %s", op, ErrInvalidParameter, err)
		}
		return params, nil
	}
	return u.Query(), nil
}

// responseTypeIncludes returns true when the space separated response type
// includes the value.
func responseTypeIncludes(responseType, value string) bool {
	for _, v := range strings.Fields(responseType) {
		if v == value {
			return true
		}
	}
	return false
}
