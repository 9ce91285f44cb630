// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// authRequest is the record of an authentication request, keyed by its
// state.  A response is only valid for a recorded, unexpired request.
type authRequest struct {
	State        string    `json:"state"`
	Nonce        string    `json:"nonce"`
	Issuer       string    `json:"issuer"`
	ClientID     string    `json:"client_id"`
	RedirectURI  string    `json:"redirect_uri"`
	ResponseType string    `json:"response_type"`
	Expiration   time.Time `json:"expiration"`
}

// isExpired returns true when the request expired before now.
func (r *authRequest) isExpired(now time.Time) bool {
	return r.Expiration.Before(now)
}

// CreateAuthenticationRequestURI creates an implicit flow authentication
// request URI for the registration.  A fresh state and nonce are generated and
// recorded, and the state is carried in the URI's query.
//
// Supported options:
//
//	WithScopes
//	WithPrompts
//	WithMaxAge
//	WithDisplay
//	WithLoginHint
//	WithUILocales
//
// See: https://openid.net/specs/openid-connect-core-1_0.html#ImplicitAuthRequest
func (c *Client) CreateAuthenticationRequestURI(ctx context.Context, reg *Registration, opt ...Option) (string, error) {
	const op = "Client.CreateAuthenticationRequestURI"
	if err := reg.Validate(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	opts := getRequestOpts(opt...)
	d, err := c.discover(ctx, reg.Issuer)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	state, err := NewID(WithPrefix("st"))
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate state: %w", op, err)
	}
	nonce, err := NewID(WithPrefix("n"))
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate nonce: %w", op, err)
	}
	req := &authRequest{
		State:        state,
		Nonce:        nonce,
		Issuer:       reg.Issuer,
		ClientID:     reg.ClientID,
		RedirectURI:  reg.redirectURI(),
		ResponseType: reg.responseType(),
		Expiration:   c.now().Add(c.requestExpiry),
	}
	if _, err := c.requests.Save(ctx, state, req); err != nil {
		return "", fmt.Errorf("%s: unable to record request: %w", op, err)
	}

	scopes := reg.scopes()
	if len(opts.withScopes) > 0 {
		scopes = withOpenID(opts.withScopes)
	}
	oauth2Config := oauth2.Config{
		ClientID:    reg.ClientID,
		RedirectURL: req.RedirectURI,
		Endpoint:    d.provider.Endpoint(),
		Scopes:      scopes,
	}
	authOpts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("response_type", req.ResponseType),
		oidc.Nonce(nonce),
	}
	if len(opts.withPrompts) > 0 {
		prompts := make([]string, 0, len(opts.withPrompts))
		for _, p := range opts.withPrompts {
			prompts = append(prompts, string(p))
		}
		authOpts = append(authOpts, oauth2.SetAuthURLParam("prompt", strings.Join(prompts, " ")))
	}
	if opts.withMaxAge != nil {
		authOpts = append(authOpts, oauth2.SetAuthURLParam("max_age", strconv.FormatUint(uint64(*opts.withMaxAge), 10)))
	}
	if opts.withDisplay != "" {
		authOpts = append(authOpts, oauth2.SetAuthURLParam("display", string(opts.withDisplay)))
	}
	if opts.withLoginHint != "" {
		authOpts = append(authOpts, oauth2.SetAuthURLParam("login_hint", opts.withLoginHint))
	}
	if len(opts.withUILocales) > 0 {
		locales := make([]string, 0, len(opts.withUILocales))
		for _, l := range opts.withUILocales {
			locales = append(locales, l.String())
		}
		authOpts = append(authOpts, oauth2.SetAuthURLParam("ui_locales", strings.Join(locales, " ")))
	}
	c.logger.Debug("created authentication request", "issuer", reg.Issuer, "client_id", reg.ClientID)
	return oauth2Config.AuthCodeURL(state, authOpts...), nil
}
