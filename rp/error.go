// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import "errors"

var (
	ErrInvalidParameter          = errors.New("invalid parameter")
	ErrNilParameter              = errors.New("nil parameter")
	ErrInvalidCACert             = errors.New("invalid CA certificate")
	ErrInvalidIssuer             = errors.New("invalid issuer")
	ErrIDGeneratorFailed         = errors.New("id generation failed")
	ErrDiscoveryFailed           = errors.New("provider discovery failed")
	ErrRegistrationNotSupported  = errors.New("provider does not support dynamic client registration")
	ErrRegistrationFailed        = errors.New("client registration failed")
	ErrAuthenticationFailed      = errors.New("authentication failed")
	ErrMissingState              = errors.New("state is missing")
	ErrExpiredRequest            = errors.New("request is expired")
	ErrResponseStateInvalid      = errors.New("oidc response state")
	ErrMissingIDToken            = errors.New("id_token is missing")
	ErrMissingAccessToken        = errors.New("access_token is missing")
	ErrIDTokenVerificationFailed = errors.New("id_token verification failed")
	ErrInvalidNonce              = errors.New("invalid nonce")
	ErrInvalidAtHash             = errors.New("access_token hash does not match value in id_token")
	ErrNotFound                  = errors.New("not found")
	ErrMalformedToken            = errors.New("malformed token")
)
