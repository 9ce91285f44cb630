// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultResponseType is the implicit flow response type used when a
	// registration doesn't specify one.
	DefaultResponseType = "id_token token"

	// DefaultScope is requested when a registration doesn't specify one.
	DefaultScope = "openid profile"

	// GrantTypeImplicit is the implicit flow grant type.
	GrantTypeImplicit = "implicit"

	// ScopeOpenID is the required "openid" scope.
	ScopeOpenID = "openid"
)

// RegistrationRequest is the client metadata sent to a provider's
// registration endpoint.
//
// See: https://tools.ietf.org/html/rfc7591#section-2
type RegistrationRequest struct {
	RedirectURIs  []string `json:"redirect_uris"`
	GrantTypes    []string `json:"grant_types,omitempty"`
	ResponseTypes []string `json:"response_types,omitempty"`
	Scope         string   `json:"scope,omitempty"`
	ClientName    string   `json:"client_name,omitempty"`

	// TokenEndpointAuthMethod is "none" for the public clients this package
	// registers.
	TokenEndpointAuthMethod string `json:"token_endpoint_auth_method,omitempty"`
}

// AuthenticateDefaults are applied to every authentication request created
// for a Registration.
type AuthenticateDefaults struct {
	RedirectURI  string `json:"redirect_uri,omitempty"`
	ResponseType string `json:"response_type,omitempty"`
}

// ClientOptions are the local (never sent to the provider) settings of a
// Registration.
type ClientOptions struct {
	Defaults AuthenticateDefaults
}

// Registration represents a client's registration with a specific provider.
// A Registration is never mutated once created: registering again replaces
// it.
type Registration struct {
	Issuer                  string               `json:"issuer"`
	ClientID                string               `json:"client_id"`
	ClientSecret            string               `json:"client_secret,omitempty"`
	ClientIDIssuedAt        int64                `json:"client_id_issued_at,omitempty"`
	RegistrationAccessToken string               `json:"registration_access_token,omitempty"`
	RegistrationClientURI   string               `json:"registration_client_uri,omitempty"`
	RedirectURIs            []string             `json:"redirect_uris"`
	GrantTypes              []string             `json:"grant_types,omitempty"`
	ResponseTypes           []string             `json:"response_types,omitempty"`
	Scope                   string               `json:"scope,omitempty"`
	Defaults                AuthenticateDefaults `json:"defaults"`
}

// Validate the registration.  It verifies the issuer, client id and at least
// one redirect URI are present.
func (r *Registration) Validate() error {
	const op = "Registration.Validate"
	switch {
	case r == nil:
		return fmt.Errorf("%s: registration is nil: %w", op, ErrNilParameter)
	case r.Issuer == "":
		return fmt.Errorf("%s: issuer is empty: %w", op, ErrInvalidParameter)
	case r.ClientID == "":
		return fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter)
	case r.redirectURI() == "":
		return fmt.Errorf("%s: redirect URI is empty: %w", op, ErrInvalidParameter)
	}
	return nil
}

// IssuedAt returns when the provider issued the client id, or the zero time
// if the provider didn't say.
func (r *Registration) IssuedAt() time.Time {
	if r.ClientIDIssuedAt == 0 {
		return time.Time{}
	}
	return time.Unix(r.ClientIDIssuedAt, 0)
}

// redirectURI is the default authentication redirect, falling back to the
// first registered redirect URI.
func (r *Registration) redirectURI() string {
	if r.Defaults.RedirectURI != "" {
		return r.Defaults.RedirectURI
	}
	if len(r.RedirectURIs) > 0 {
		return r.RedirectURIs[0]
	}
	return ""
}

// responseType is the default authentication response type, falling back to
// the first registered response type and then DefaultResponseType.
func (r *Registration) responseType() string {
	if r.Defaults.ResponseType != "" {
		return r.Defaults.ResponseType
	}
	if len(r.ResponseTypes) > 0 {
		return r.ResponseTypes[0]
	}
	return DefaultResponseType
}

// scopes returns the registration's scope as a list, with "openid" first.
func (r *Registration) scopes() []string {
	scope := r.Scope
	if scope == "" {
		scope = DefaultScope
	}
	return withOpenID(strings.Fields(scope))
}

// RegistrationFromJSON reconstructs a Registration persisted as JSON.  It's
// the decoder for stores of registrations.
func RegistrationFromJSON(raw json.RawMessage) (*Registration, error) {
	const op = "rp.RegistrationFromJSON"
	var r Registration
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &r, nil
}

// withOpenID returns scopes with "openid" as its first element and no
// duplicates of it.
func withOpenID(scopes []string) []string {
	out := []string{ScopeOpenID}
	for _, s := range scopes {
		if s == ScopeOpenID || s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
