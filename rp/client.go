// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/webclient/storage"
	"golang.org/x/sync/singleflight"
)

// RequestsNamespace is the storage namespace of the authentication requests
// a Client records.
const RequestsNamespace = "oidc.rp.requests"

// maxResponseSize bounds the provider responses the Client reads.
const maxResponseSize = 1 << 20

// discoveryTimeout bounds a discovery shared by concurrent calls.
const discoveryTimeout = 30 * time.Second

// Client is a relying party which registers with, authenticates through and
// validates responses from OIDC providers.  Providers are discovered on first
// use and cached for the lifetime of the Client.
//
// See Client.Done() which must be called to release client resources.
type Client struct {
	requests      *storage.Store[*authRequest]
	httpClient    *http.Client
	logger        hclog.Logger
	now           func() time.Time
	requestExpiry time.Duration
	signingAlgs   []string

	// backgroundCtx carries the http client and is canceled by Done(), which
	// stops any discovery in flight.
	backgroundCtx       context.Context
	backgroundCtxCancel context.CancelFunc

	mu        sync.Mutex
	providers map[string]*discovered

	// discovering de-duplicates concurrent discovery per issuer.
	discovering singleflight.Group
}

// discovered is a provider's discovery document.
type discovered struct {
	provider             *oidc.Provider
	registrationEndpoint string
}

// NewClient creates a Client which records its authentication requests in the
// backend.
//
// Supported options:
//
//	WithLogger
//	WithNow
//	WithProviderCA
//	WithSupportedSigningAlgs
//	WithRequestExpiry
func NewClient(backend storage.Backend, opt ...Option) (*Client, error) {
	const op = "rp.NewClient"
	if backend == nil {
		return nil, fmt.Errorf("%s: backend is nil: %w", op, ErrNilParameter)
	}
	opts := getClientOpts(opt...)
	if opts.withRequestExpiry <= 0 {
		return nil, fmt.Errorf("%s: request expiry must be positive: %w", op, ErrInvalidParameter)
	}
	if len(opts.withSupportedSigningAlgs) == 0 {
		return nil, fmt.Errorf("%s: no supported signing algorithms: %w", op, ErrInvalidParameter)
	}
	algs := make([]string, 0, len(opts.withSupportedSigningAlgs))
	for _, a := range opts.withSupportedSigningAlgs {
		if !supportedAlgorithms[a] {
			return nil, fmt.Errorf("%s: unsupported signing algorithm %q: %w", op, a, ErrInvalidParameter)
		}
		algs = append(algs, string(a))
	}
	logger := opts.withLogger.Named("rp")
	requests, err := storage.NewStore[*authRequest](RequestsNamespace, backend, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	httpClient, err := newHTTPClient(opts.withProviderCA)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		requests:            requests,
		httpClient:          httpClient,
		logger:              logger,
		now:                 opts.withNowFunc,
		requestExpiry:       opts.withRequestExpiry,
		signingAlgs:         algs,
		backgroundCtx:       oidc.ClientContext(ctx, httpClient),
		backgroundCtxCancel: cancel,
		providers:           map[string]*discovered{},
	}, nil
}

// Done with the client's background resources and must be called for every
// Client created
func (c *Client) Done() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backgroundCtxCancel != nil {
		c.backgroundCtxCancel()
		c.backgroundCtxCancel = nil
	}
}

// Register the client with the issuer, using OpenID Connect Dynamic Client
// Registration.  The issuer is discovered first.  The returned Registration
// carries the opts defaults, which every authentication request created for
// it uses.
//
// See: https://tools.ietf.org/html/rfc7591
func (c *Client) Register(ctx context.Context, issuer string, req *RegistrationRequest, opts *ClientOptions) (*Registration, error) {
	const op = "Client.Register"
	switch {
	case req == nil:
		return nil, fmt.Errorf("%s: registration request is nil: %w", op, ErrNilParameter)
	case len(req.RedirectURIs) == 0:
		return nil, fmt.Errorf("%s: at least one redirect URI is required: %w", op, ErrInvalidParameter)
	}
	if opts == nil {
		opts = &ClientOptions{}
	}
	d, err := c.discover(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if d.registrationEndpoint == "" {
		return nil, fmt.Errorf("%s: %s: %w", op, issuer, ErrRegistrationNotSupported)
	}

	body := *req
	if body.TokenEndpointAuthMethod == "" {
		body.TokenEndpointAuthMethod = "none"
	}
	payload, err := json.Marshal(&body)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to encode registration request: %w", op, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.registrationEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create registration request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrRegistrationFailed, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read registration response: %w: %s", op, ErrRegistrationFailed, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrRegistrationFailed, errorResponse(resp.Status, raw))
	}

	var reply Registration
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("%s: unable to decode registration response: %w: %s", op, ErrRegistrationFailed, err)
	}
	if reply.ClientID == "" {
		return nil, fmt.Errorf("%s: registration response is missing a client_id: %w", op, ErrRegistrationFailed)
	}
	r := &Registration{
		Issuer:                  issuer,
		ClientID:                reply.ClientID,
		ClientSecret:            reply.ClientSecret,
		ClientIDIssuedAt:        reply.ClientIDIssuedAt,
		RegistrationAccessToken: reply.RegistrationAccessToken,
		RegistrationClientURI:   reply.RegistrationClientURI,
		RedirectURIs:            firstNonEmpty(reply.RedirectURIs, req.RedirectURIs),
		GrantTypes:              firstNonEmpty(reply.GrantTypes, req.GrantTypes),
		ResponseTypes:           firstNonEmpty(reply.ResponseTypes, req.ResponseTypes),
		Scope:                   reply.Scope,
		Defaults:                opts.Defaults,
	}
	if r.Scope == "" {
		r.Scope = req.Scope
	}
	if r.Defaults.RedirectURI == "" {
		r.Defaults.RedirectURI = r.RedirectURIs[0]
	}
	if r.Defaults.ResponseType == "" {
		r.Defaults.ResponseType = r.responseType()
	}
	c.logger.Debug("registered client", "issuer", issuer, "client_id", r.ClientID)
	return r, nil
}

// discover returns the issuer's cached discovery document, fetching it on
// first use.  Concurrent calls for an issuer share one fetch, and each call
// stops waiting when its ctx is done.
func (c *Client) discover(ctx context.Context, issuer string) (*discovered, error) {
	const op = "Client.discover"
	if err := validIssuer(issuer); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.mu.Lock()
	d, ok := c.providers[issuer]
	done := c.backgroundCtxCancel == nil
	c.mu.Unlock()
	switch {
	case ok:
		return d, nil
	case done:
		return nil, fmt.Errorf("%s: client is done: %w", op, ErrInvalidParameter)
	}

	ch := c.discovering.DoChan(issuer, func() (interface{}, error) {
		return c.fetchProvider(ctx, issuer)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%s: %w", op, res.Err)
		}
		return res.Val.(*discovered), nil
	}
}

// fetchProvider fetches and caches the issuer's discovery document.  The
// fetch is bounded by discoveryTimeout and Done() rather than by the ctx of
// the call which started it.
func (c *Client) fetchProvider(ctx context.Context, issuer string) (*discovered, error) {
	const op = "Client.fetchProvider"
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discoveryTimeout)
	defer cancel()
	stop := context.AfterFunc(c.backgroundCtx, cancel)
	defer stop()

	// the provider's key set keeps only the http client of this context
	p, err := oidc.NewProvider(oidc.ClientContext(fetchCtx, c.httpClient), issuer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrDiscoveryFailed, err)
	}
	var metadata struct {
		RegistrationEndpoint string `json:"registration_endpoint"`
	}
	if err := p.Claims(&metadata); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrDiscoveryFailed, err)
	}
	d := &discovered{
		provider:             p,
		registrationEndpoint: metadata.RegistrationEndpoint,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.providers[issuer]; ok {
		return existing, nil
	}
	c.providers[issuer] = d
	c.logger.Debug("discovered provider", "issuer", issuer)
	return d, nil
}

// validIssuer checks the issuer is an absolute http(s) URL without a query or
// fragment.
func validIssuer(issuer string) error {
	const op = "rp.validIssuer"
	if issuer == "" {
		return fmt.Errorf("%s: issuer is empty: %w", op, ErrInvalidIssuer)
	}
	u, err := url.Parse(issuer)
	if err != nil {
		return fmt.Errorf("%s: %w: %s", op, ErrInvalidIssuer, err)
	}
	switch {
	case u.Scheme != "https" && u.Scheme != "http":
		return fmt.Errorf("%s: issuer %q must use https or http: %w", op, issuer, ErrInvalidIssuer)
	case u.Host == "":
		return fmt.Errorf("%s: issuer %q has no host: %w", op, issuer, ErrInvalidIssuer)
	case u.RawQuery != "" || u.Fragment != "":
		return fmt.Errorf("%s: issuer %q must not have a query or fragment: %w", op, issuer, ErrInvalidIssuer)
	}
	return nil
}

// errorResponse describes an oauth error response body, falling back to the
// http status when the body isn't one.
func errorResponse(status string, raw []byte) string {
	var e struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &e); err != nil || e.Error == "" {
		return status
	}
	if e.Description == "" {
		return e.Error
	}
	return strings.Join([]string{e.Error, e.Description}, ": ")
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}
