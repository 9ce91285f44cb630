// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tests := []struct {
		name          string
		s             *Session
		wantAnonymous bool
		wantExpired   bool
		wantValid     bool
	}{
		{
			name:          "nil",
			wantAnonymous: true,
		},
		{
			name:          "anonymous",
			s:             NewAnonymousSession(),
			wantAnonymous: true,
		},
		{
			name:      "id-token-only",
			s:         &Session{IDToken: "id"},
			wantValid: true,
		},
		{
			name:      "unexpired",
			s:         &Session{IDToken: "id", AccessToken: "at", Expiry: now.Add(time.Hour)},
			wantValid: true,
		},
		{
			name:        "expired",
			s:           &Session{IDToken: "id", AccessToken: "at", Expiry: now.Add(-time.Hour)},
			wantExpired: true,
		},
		{
			name:        "within-skew",
			s:           &Session{AccessToken: "at", Expiry: now.Add(expirySkew / 2)},
			wantExpired: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tt.wantAnonymous, tt.s.IsAnonymous())
			assert.Equal(tt.wantExpired, tt.s.Expired(now))
			assert.Equal(tt.wantValid, tt.s.Valid(now))
		})
	}
}

func TestSessionFromJSON(t *testing.T) {
	t.Parallel()
	t.Run("round-trip", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := &Session{
			Issuer:      "https://op.example.com",
			ClientID:    "client",
			Subject:     "alice",
			IDToken:     "id",
			AccessToken: "at",
			TokenType:   "Bearer",
			Expiry:      time.Unix(1700000000, 0).UTC(),
			Claims:      map[string]interface{}{"sub": "alice"},
		}
		raw, err := json.Marshal(s)
		require.NoError(err)
		got, err := SessionFromJSON(raw)
		require.NoError(err)
		assert.Equal(s, got)
	})
	t.Run("anonymous", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := SessionFromJSON(json.RawMessage(`{}`))
		require.Error(err)
		assert.Truef(errors.Is(err, ErrInvalidParameter), "wanted \"%s\" but got \"%s\"", ErrInvalidParameter, err)
	})
	t.Run("malformed", func(t *testing.T) {
		require := require.New(t)
		_, err := SessionFromJSON(json.RawMessage(`[]`))
		require.Error(err)
	})
}
