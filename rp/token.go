// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"fmt"

	"gopkg.in/square/go-jose.v2/jwt"
)

// IDToken is an oidc id_token.
//
// Unlike the rest of its formatting, IDToken marshals to JSON unredacted,
// since Sessions are persisted.
type IDToken string

// RedactedIDToken is the redacted string for an oidc id_token
const RedactedIDToken = "[REDACTED: id_token]"

// String will redact the token
func (t IDToken) String() string {
	return RedactedIDToken
}

// GoString will redact the token
func (t IDToken) GoString() string {
	return RedactedIDToken
}

// Claims retrieves the IDToken claims without verifying the token's
// signature.  Only use it on tokens which have already been verified.
func (t IDToken) Claims(claims interface{}) error {
	const op = "IDToken.Claims"
	if len(t) == 0 {
		return fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	if claims == nil {
		return fmt.Errorf("%s: claims interface is nil: %w", op, ErrNilParameter)
	}
	parsed, err := jwt.ParseSigned(string(t))
	if err != nil {
		return fmt.Errorf("%s: %w: %s", op, ErrMalformedToken, err)
	}
	if err := parsed.UnsafeClaimsWithoutVerification(claims); err != nil {
		return fmt.Errorf("%s: unable to unmarshal claims: %w", op, err)
	}
	return nil
}

// AccessToken is an oauth access_token.
type AccessToken string

// RedactedAccessToken is the redacted string for an oauth access_token.
const RedactedAccessToken = "[REDACTED: access_token]"

// String will redact the token
func (t AccessToken) String() string {
	return RedactedAccessToken
}

// GoString will redact the token
func (t AccessToken) GoString() string {
	return RedactedAccessToken
}
