// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/webclient/browser"
	"github.com/hashicorp/webclient/rp"
	"github.com/hashicorp/webclient/storage"
	"github.com/stretchr/testify/require"
)

const (
	testProvider    = "https://oidc.example.com"
	testAppLocation = "https://app.com/"
)

var errTest = errors.New("test failure")

// testRegisterCall records a call to testRelyingParty.Register.
type testRegisterCall struct {
	issuer string
	req    rp.RegistrationRequest
	opts   rp.ClientOptions
}

// testRelyingParty is a RelyingParty fake which records its calls.
type testRelyingParty struct {
	mu              sync.Mutex
	registerCalls   []testRegisterCall
	requestOpts     [][]rp.Option
	validated       []string
	registerErr     error
	registerGate    chan struct{}
	createErr       error
	omitState       bool
	validateErr     error
	session         *rp.Session
	requestsCreated int
}

var _ RelyingParty = (*testRelyingParty)(nil)

func (r *testRelyingParty) Register(ctx context.Context, issuer string, req *rp.RegistrationRequest, opts *rp.ClientOptions) (*rp.Registration, error) {
	r.mu.Lock()
	r.registerCalls = append(r.registerCalls, testRegisterCall{issuer: issuer, req: *req, opts: *opts})
	n := len(r.registerCalls)
	gate, err := r.registerGate, r.registerErr
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &rp.Registration{
		Issuer:        issuer,
		ClientID:      fmt.Sprintf("client-%d", n),
		RedirectURIs:  req.RedirectURIs,
		GrantTypes:    req.GrantTypes,
		ResponseTypes: req.ResponseTypes,
		Scope:         req.Scope,
		Defaults:      opts.Defaults,
	}, nil
}

func (r *testRelyingParty) CreateAuthenticationRequestURI(_ context.Context, reg *rp.Registration, opt ...rp.Option) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.requestsCreated++
	r.requestOpts = append(r.requestOpts, opt)
	q := url.Values{}
	q.Set("client_id", reg.ClientID)
	q.Set("redirect_uri", reg.Defaults.RedirectURI)
	q.Set("response_type", reg.Defaults.ResponseType)
	if !r.omitState {
		q.Set("state", fmt.Sprintf("st_%d", r.requestsCreated))
	}
	return reg.Issuer + "/auth?" + q.Encode(), nil
}

func (r *testRelyingParty) ValidateResponse(_ context.Context, responseURI string, reg *rp.Registration) (*rp.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validated = append(r.validated, responseURI)
	if r.validateErr != nil {
		return nil, r.validateErr
	}
	if r.session != nil {
		return r.session, nil
	}
	return &rp.Session{
		Issuer:      reg.Issuer,
		ClientID:    reg.ClientID,
		IDToken:     "idt0ken",
		AccessToken: "acce$$",
		TokenType:   "bearer",
	}, nil
}

func (r *testRelyingParty) RegisterCalls() []testRegisterCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]testRegisterCall(nil), r.registerCalls...)
}

func (r *testRelyingParty) Validated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.validated...)
}

// testFailingBackend fails writes and removals of keys with the prefix, like
// a browser whose storage quota is exceeded.
type testFailingBackend struct {
	storage.Backend
	prefix string
}

func (b *testFailingBackend) SetItem(ctx context.Context, key, value string) error {
	if strings.HasPrefix(key, b.prefix) {
		return errTest
	}
	return b.Backend.SetItem(ctx, key, value)
}

func (b *testFailingBackend) RemoveItem(ctx context.Context, key string) error {
	if strings.HasPrefix(key, b.prefix) {
		return errTest
	}
	return b.Backend.RemoveItem(ctx, key)
}

// testWebClient returns a WebClient over the fakes, whose browser is at
// location.
func testWebClient(t *testing.T, r *testRelyingParty, backend storage.Backend, location string, opt ...Option) (*WebClient, *browser.Memory, *Stores) {
	t.Helper()
	require := require.New(t)
	if backend == nil {
		mem := storage.NewMemoryBackend()
		t.Cleanup(mem.Stop)
		backend = mem
	}
	stores, err := NewStores(backend)
	require.NoError(err)
	b := browser.NewMemory(location)
	c, err := NewWebClient(r, browser.NewAdapter(b), stores, opt...)
	require.NoError(err)
	return c, b, stores
}
