// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// TestProvider is local server that supports test provider capabilities which
// make writing tests much easier: discovery, dynamic client registration, the
// implicit flow /auth endpoint and a JWKS endpoint.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string
	nowFunc    func() time.Time

	jwks *jose.JSONWebKeySet

	mu                  sync.Mutex
	replySubject        string
	customClaims        map[string]interface{}
	clients             map[string]*Registration
	registrations       []RegistrationRequest
	disableRegistration bool
	registrationError   string
	authError           string
	omitIDToken         bool
	omitAccessToken     bool
	expiresIn           int

	ecdsaPublicKey  string
	ecdsaPrivateKey string

	t *testing.T
}

// StartTestProvider creates a disposable TestProvider, which is stopped when
// the test completes.
//
// Supported options:
//
//	WithNow
func StartTestProvider(t *testing.T, opt ...Option) *TestProvider {
	t.Helper()
	require := require.New(t)
	opts := getTestProviderOpts(opt...)

	p := &TestProvider{
		nowFunc:      opts.withNowFunc,
		replySubject: "alice@example.com",
		clients:      map[string]*Registration{},
		expiresIn:    3600,
		t:            t,
	}
	p.ecdsaPublicKey, p.ecdsaPrivateKey = TestGenerateKeys(t)
	p.jwks = testJWKS(t, p.ecdsaPublicKey)

	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	var buf bytes.Buffer
	err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: p.httpServer.Certificate().Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// Addr returns the current base URL for the test provider's running
// webserver, which is also its issuer.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// CACert returns the pem-encoded CA certificate used by the test provider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// SigningKeys returns the test provider's pem-encoded keys used to sign JWTs.
func (p *TestProvider) SigningKeys() (pub, priv string) {
	return p.ecdsaPublicKey, p.ecdsaPrivateKey
}

// SetSubject configures the subject of the id_tokens issued.
func (p *TestProvider) SetSubject(sub string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replySubject = sub
}

// SetCustomClaims lets you set claims to return in the id_tokens issued.
func (p *TestProvider) SetCustomClaims(customClaims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customClaims = customClaims
}

// DisableRegistration omits the registration endpoint from the discovery
// document and makes it return 404.
func (p *TestProvider) DisableRegistration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disableRegistration = true
}

// SetRegistrationError makes the registration endpoint fail with the error
// code.  An empty code restores successful registrations.
func (p *TestProvider) SetRegistrationError(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registrationError = code
}

// SetAuthError makes /auth respond with the error code.  An empty code
// restores successful authentications.
func (p *TestProvider) SetAuthError(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authError = code
}

// OmitIDTokens forces an error state where /auth does not return an id_token.
func (p *TestProvider) OmitIDTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitIDToken = true
}

// OmitAccessTokens forces an error state where /auth does not return an
// access_token even when one is requested.
func (p *TestProvider) OmitAccessTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitAccessToken = true
}

// Registrations returns the registration requests the provider has received.
func (p *TestProvider) Registrations() []RegistrationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RegistrationRequest(nil), p.registrations...)
}

// HTTPClient returns an http client which trusts the provider's certificate
// and doesn't follow redirects.
func (p *TestProvider) HTTPClient() *http.Client {
	pool := x509.NewCertPool()
	pool.AddCert(p.httpServer.Certificate())
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Authorize plays the user agent for an authentication request URI: it
// requests the URI and returns where the provider redirects to.
func (p *TestProvider) Authorize(authURI string) (string, error) {
	const op = "TestProvider.Authorize"
	resp, err := p.HTTPClient().Get(authURI)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%s: unexpected response %s: %s", op, resp.Status, body)
	}
	return resp.Header.Get("Location"), nil
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, status int, out interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

func (p *TestProvider) writeErrorResponse(w http.ResponseWriter, status int, errorCode, errorMessage string) {
	body := struct {
		Code string `json:"error"`
		Desc string `json:"error_description,omitempty"`
	}{
		Code: errorCode,
		Desc: errorMessage,
	}
	_ = p.writeJSON(w, status, &body)
}

// writeAuthRedirect redirects to the redirectURI with the response params in
// its fragment.
func (p *TestProvider) writeAuthRedirect(w http.ResponseWriter, req *http.Request, redirectURI string, params url.Values) {
	http.Redirect(w, req, redirectURI+"#"+params.Encode(), http.StatusFound)
}

func (p *TestProvider) writeAuthErrorResponse(w http.ResponseWriter, req *http.Request, redirectURI, state, errorCode, errorMessage string) {
	params := url.Values{}
	params.Set("error", errorCode)
	if errorMessage != "" {
		params.Set("error_description", errorMessage)
	}
	if state != "" {
		params.Set("state", state)
	}
	p.writeAuthRedirect(w, req, redirectURI, params)
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.t.Helper()

	switch req.URL.Path {
	case "/.well-known/openid-configuration":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		reply := struct {
			Issuer               string   `json:"issuer"`
			AuthEndpoint         string   `json:"authorization_endpoint"`
			JWKSURI              string   `json:"jwks_uri"`
			RegistrationEndpoint string   `json:"registration_endpoint,omitempty"`
			ResponseTypes        []string `json:"response_types_supported"`
			SubjectTypes         []string `json:"subject_types_supported"`
			IDTokenSigningAlgs   []string `json:"id_token_signing_alg_values_supported"`
			GrantTypes           []string `json:"grant_types_supported"`
		}{
			Issuer:               p.Addr(),
			AuthEndpoint:         p.Addr() + "/auth",
			JWKSURI:              p.Addr() + "/certs",
			RegistrationEndpoint: p.Addr() + "/register",
			ResponseTypes:        []string{"id_token token", "id_token"},
			SubjectTypes:         []string{"public"},
			IDTokenSigningAlgs:   []string{string(ES256)},
			GrantTypes:           []string{GrantTypeImplicit},
		}
		if p.disableRegistration {
			reply.RegistrationEndpoint = ""
		}
		_ = p.writeJSON(w, http.StatusOK, &reply)

	case "/register":
		if p.disableRegistration {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var r RegistrationRequest
		if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
			p.writeErrorResponse(w, http.StatusBadRequest, "invalid_client_metadata", err.Error())
			return
		}
		p.registrations = append(p.registrations, r)
		switch {
		case p.registrationError != "":
			p.writeErrorResponse(w, http.StatusBadRequest, p.registrationError, "registration refused")
			return
		case len(r.RedirectURIs) == 0:
			p.writeErrorResponse(w, http.StatusBadRequest, "invalid_redirect_uri", "missing redirect_uris")
			return
		}
		clientID, err := NewID(WithPrefix("client"))
		if err != nil {
			p.writeErrorResponse(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		reg := &Registration{
			Issuer:           p.Addr(),
			ClientID:         clientID,
			ClientIDIssuedAt: p.nowFunc().Unix(),
			RedirectURIs:     r.RedirectURIs,
			GrantTypes:       r.GrantTypes,
			ResponseTypes:    r.ResponseTypes,
			Scope:            r.Scope,
		}
		p.clients[clientID] = reg
		reply := struct {
			ClientID                string   `json:"client_id"`
			ClientIDIssuedAt        int64    `json:"client_id_issued_at"`
			RedirectURIs            []string `json:"redirect_uris"`
			GrantTypes           []string `json:"grant_types,omitempty"`
			ResponseTypes        []string `json:"response_types,omitempty"`
			Scope                   string   `json:"scope,omitempty"`
			TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
		}{
			ClientID:                reg.ClientID,
			ClientIDIssuedAt:        reg.ClientIDIssuedAt,
			RedirectURIs:            reg.RedirectURIs,
			GrantTypes:              reg.GrantTypes,
			ResponseTypes:           reg.ResponseTypes,
			Scope:                   reg.Scope,
			TokenEndpointAuthMethod: "none",
		}
		_ = p.writeJSON(w, http.StatusCreated, &reply)

	case "/auth":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		qv := req.URL.Query()

		client, ok := p.clients[qv.Get("client_id")]
		if !ok {
			p.writeErrorResponse(w, http.StatusBadRequest, "invalid_client", "unknown client_id")
			return
		}
		redirectURI := qv.Get("redirect_uri")
		if !contains(client.RedirectURIs, redirectURI) {
			p.writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "redirect_uri is not registered")
			return
		}
		state := qv.Get("state")
		responseType := qv.Get("response_type")
		nonce := qv.Get("nonce")
		switch {
		case responseType != "id_token token" && responseType != "id_token":
			p.writeAuthErrorResponse(w, req, redirectURI, state, "unsupported_response_type", "")
			return
		case !contains(strings.Fields(qv.Get("scope")), ScopeOpenID):
			p.writeAuthErrorResponse(w, req, redirectURI, state, "invalid_scope", "")
			return
		case nonce == "":
			p.writeAuthErrorResponse(w, req, redirectURI, state, "invalid_request", "missing nonce parameter")
			return
		case p.authError != "":
			p.writeAuthErrorResponse(w, req, redirectURI, state, p.authError, "")
			return
		}

		params := url.Values{}
		privateClaims := map[string]interface{}{
			"nonce": nonce,
		}
		for k, v := range p.customClaims {
			privateClaims[k] = v
		}
		if responseType == "id_token token" && !p.omitAccessToken {
			accessToken, err := NewID(WithPrefix("at"))
			if err != nil {
				p.writeAuthErrorResponse(w, req, redirectURI, state, "server_error", err.Error())
				return
			}
			privateClaims["at_hash"] = TestAccessTokenHash(accessToken)
			params.Set("access_token", accessToken)
			params.Set("token_type", "Bearer")
			params.Set("expires_in", fmt.Sprint(p.expiresIn))
		}
		now := p.nowFunc()
		stdClaims := jwt.Claims{
			Subject:   p.replySubject,
			Issuer:    p.Addr(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			Expiry:    jwt.NewNumericDate(now.Add(5 * time.Minute)),
			Audience:  jwt.Audience{client.ClientID},
		}
		if !p.omitIDToken {
			params.Set("id_token", TestSignJWT(p.t, p.ecdsaPrivateKey, stdClaims, privateClaims))
		}
		if state != "" {
			params.Set("state", state)
		}
		p.writeAuthRedirect(w, req, redirectURI, params)

	case "/certs":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = p.writeJSON(w, http.StatusOK, p.jwks)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// testJWKS converts a pem-encoded public key into JWKS data suitable for a
// verification endpoint response
func testJWKS(t *testing.T, pubKey string) *jose.JSONWebKeySet {
	t.Helper()
	require := require.New(t)

	block, _ := pem.Decode([]byte(pubKey))
	require.NotNil(block)

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(err)

	return &jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{
			{
				Key: pub,
			},
		},
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
