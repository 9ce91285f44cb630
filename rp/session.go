// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"encoding/json"
	"fmt"
	"time"
)

// expirySkew is subtracted from a Session's expiry when checking it.
const expirySkew = 10 * time.Second

// Session represents an authenticated user context: the tokens of a validated
// authentication response.  A Session without tokens is anonymous.
type Session struct {
	Issuer      string                 `json:"issuer,omitempty"`
	ClientID    string                 `json:"client_id,omitempty"`
	Subject     string                 `json:"sub,omitempty"`
	IDToken     IDToken                `json:"id_token,omitempty"`
	AccessToken AccessToken            `json:"access_token,omitempty"`
	TokenType   string                 `json:"token_type,omitempty"`
	Expiry      time.Time              `json:"expiry"`
	Claims      map[string]interface{} `json:"claims,omitempty"`
}

// NewAnonymousSession returns a Session without tokens.
func NewAnonymousSession() *Session {
	return &Session{}
}

// IsAnonymous returns true when the session carries neither an id_token nor
// an access_token.
func (s *Session) IsAnonymous() bool {
	return s == nil || (s.IDToken == "" && s.AccessToken == "")
}

// Expired will return true if the session's expiry is in the past (with a
// small skew).  A session without an expiry never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Expiry.IsZero() {
		return false
	}
	return s.Expiry.Round(0).Before(now.Add(expirySkew))
}

// Valid will ensure that the session is not anonymous and not expired.
func (s *Session) Valid(now time.Time) bool {
	if s.IsAnonymous() {
		return false
	}
	return !s.Expired(now)
}

// SessionFromJSON reconstructs a Session persisted as JSON.  It's the decoder
// for session stores.  An anonymous session is never persisted, so one is
// rejected.
func SessionFromJSON(raw json.RawMessage) (*Session, error) {
	const op = "rp.SessionFromJSON"
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.IsAnonymous() {
		return nil, fmt.Errorf("%s: session has no tokens: %w", op, ErrInvalidParameter)
	}
	return &s, nil
}
