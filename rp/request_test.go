// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestClient_CreateAuthenticationRequestURI(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now()
	tp := StartTestProvider(t)
	c, backend := testClient(t, tp, WithNow(func() time.Time { return now }))
	reg := testRegister(t, c, tp, DefaultResponseType)

	t.Run("defaults", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := c.CreateAuthenticationRequestURI(ctx, reg)
		require.NoError(err)

		u, err := url.Parse(got)
		require.NoError(err)
		assert.Equal(tp.Addr()+"/auth", u.Scheme+"://"+u.Host+u.Path)
		q := u.Query()
		assert.Equal(reg.ClientID, q.Get("client_id"))
		assert.Equal(testRedirectURI, q.Get("redirect_uri"))
		assert.Equal(DefaultResponseType, q.Get("response_type"))
		assert.Equal("openid profile", q.Get("scope"))
		assert.True(strings.HasPrefix(q.Get("state"), "st_"))
		assert.True(strings.HasPrefix(q.Get("nonce"), "n_"))
		for _, p := range []string{"prompt", "max_age", "display", "login_hint", "ui_locales"} {
			assert.Falsef(q.Has(p), "unexpected %s parameter", p)
		}

		req, ok := c.requests.Get(ctx, q.Get("state"))
		require.True(ok)
		assert.True(req.Expiration.Equal(now.Add(DefaultRequestExpiry)))
		req.Expiration = time.Time{}
		assert.Equal(&authRequest{
			State:        q.Get("state"),
			Nonce:        q.Get("nonce"),
			Issuer:       tp.Addr(),
			ClientID:     reg.ClientID,
			RedirectURI:  testRedirectURI,
			ResponseType: DefaultResponseType,
		}, req)
		_, ok, err = backend.GetItem(ctx, RequestsNamespace+"."+q.Get("state"))
		require.NoError(err)
		assert.True(ok)
	})
	t.Run("fresh-state-per-request", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		first, err := c.CreateAuthenticationRequestURI(ctx, reg)
		require.NoError(err)
		second, err := c.CreateAuthenticationRequestURI(ctx, reg)
		require.NoError(err)
		u1, _ := url.Parse(first)
		u2, _ := url.Parse(second)
		assert.NotEqual(u1.Query().Get("state"), u2.Query().Get("state"))
		assert.NotEqual(u1.Query().Get("nonce"), u2.Query().Get("nonce"))
	})
	t.Run("with-options", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := c.CreateAuthenticationRequestURI(ctx, reg,
			WithScopes("email"),
			WithPrompts(Login, Consent),
			WithMaxAge(60),
			WithDisplay(Popup),
			WithLoginHint("alice@example.com"),
			WithUILocales(language.English, language.Spanish),
		)
		require.NoError(err)
		u, err := url.Parse(got)
		require.NoError(err)
		q := u.Query()
		assert.Equal("openid email", q.Get("scope"))
		assert.Equal("login consent", q.Get("prompt"))
		assert.Equal("60", q.Get("max_age"))
		assert.Equal("popup", q.Get("display"))
		assert.Equal("alice@example.com", q.Get("login_hint"))
		assert.Equal("en es", q.Get("ui_locales"))
	})
	t.Run("invalid-registration", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := c.CreateAuthenticationRequestURI(ctx, &Registration{Issuer: tp.Addr()})
		require.Error(err)
		assert.Truef(errors.Is(err, ErrInvalidParameter), "wanted \"%s\" but got \"%s\"", ErrInvalidParameter, err)
	})
	t.Run("canceled", func(t *testing.T) {
		require := require.New(t)
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := c.CreateAuthenticationRequestURI(canceled, reg)
		require.Error(err)
	})
}

func Test_requestOptions(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	age := uint(30)
	opts := getRequestOpts(WithScopes("email"), WithMaxAge(30), WithDisplay(Page), nil)
	testOpts := requestDefaults()
	testOpts.withScopes = []string{"email"}
	testOpts.withMaxAge = &age
	testOpts.withDisplay = Page
	assert.Equal(testOpts, opts)
}
