// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/webclient/browser"
	"github.com/hashicorp/webclient/rp"
	"golang.org/x/sync/singleflight"
)

// DefaultRegistrationTimeout is the time limit of a registration shared by
// concurrent RPFor calls.
const DefaultRegistrationTimeout = 30 * time.Second

// RelyingParty does the protocol work of a WebClient.  rp.Client implements
// it.
type RelyingParty interface {
	// Register a public client with the issuer.
	Register(ctx context.Context, issuer string, req *rp.RegistrationRequest, opts *rp.ClientOptions) (*rp.Registration, error)

	// CreateAuthenticationRequestURI creates an authentication request URI
	// for the registration, with a fresh state in its query.
	CreateAuthenticationRequestURI(ctx context.Context, reg *rp.Registration, opt ...rp.Option) (string, error)

	// ValidateResponse validates the authentication response in the
	// responseURI for the registration.
	ValidateResponse(ctx context.Context, responseURI string, reg *rp.Registration) (*rp.Session, error)
}

// Browser is the browsing context of a WebClient.  browser.Adapter implements
// it.
type Browser interface {
	CurrentLocation() (string, bool)
	ClearAuthResponseFromURL()
	CurrentURIHasAuthResponse() bool
	RedirectTo(uri string)
}

// WebClient coordinates registration, login redirects and session
// persistence for a single page application.  It holds no authentication
// state of its own: see CurrentSession.
type WebClient struct {
	rp       RelyingParty
	browser  Browser
	stores   *Stores
	config   *Config
	provider string
	logger   hclog.Logger

	registrationTimeout time.Duration

	// registering de-duplicates concurrent registrations per provider.
	registering singleflight.Group
}

// NewWebClient creates a WebClient.
//
// Supported options:
//
//	WithConfig
//	WithLogger
//	WithProvider
//	WithRegistrationTimeout
func NewWebClient(relyingParty RelyingParty, b Browser, stores *Stores, opt ...Option) (*WebClient, error) {
	const op = "client.NewWebClient"
	switch {
	case relyingParty == nil:
		return nil, fmt.Errorf("%s: relying party is nil: %w", op, ErrNilParameter)
	case b == nil:
		return nil, fmt.Errorf("%s: browser is nil: %w", op, ErrNilParameter)
	case stores == nil || stores.Clients == nil || stores.Session == nil || stores.Providers == nil:
		return nil, fmt.Errorf("%s: stores are missing: %w", op, ErrNilParameter)
	}
	opts := getWebClientOpts(opt...)
	config := opts.withConfig
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if opts.withRegistrationTimeout <= 0 {
		return nil, fmt.Errorf("%s: registration timeout must be positive: %w", op, ErrInvalidParameter)
	}
	return &WebClient{
		rp:                  relyingParty,
		browser:             b,
		stores:              stores,
		config:              config,
		provider:            opts.withProvider,
		logger:              opts.withLogger.Named("webclient"),
		registrationTimeout: opts.withRegistrationTimeout,
	}, nil
}

// Provider returns the provider used when a call doesn't name one: the
// WithProvider option, else the config's provider.
func (c *WebClient) Provider() string {
	if c.provider != "" {
		return c.provider
	}
	return c.config.Provider
}

// CurrentSession resolves the current session: the persisted one, else one
// established from an authentication response in the current URL, else an
// anonymous session.  It never returns nil, and a response which fails
// validation yields an anonymous session rather than an error.
func (c *WebClient) CurrentSession(ctx context.Context) *rp.Session {
	if s, ok := c.stores.Session.Get(ctx, ""); ok && s != nil {
		return s
	}
	s, err := c.SessionFromResponse(ctx)
	switch {
	case err != nil:
		c.logger.Warn("unable to establish session from response", "error", err)
		return rp.NewAnonymousSession()
	case s == nil:
		return rp.NewAnonymousSession()
	}
	return s
}

// SessionFromResponse establishes a session from the authentication response
// in the current URL's fragment.  It returns a nil session without an error
// when there's no response, or when the response's state wasn't issued by a
// Login (an unrecognized or already consumed state).
//
// On success the response is cleared from the URL and the session persisted.
func (c *WebClient) SessionFromResponse(ctx context.Context) (*rp.Session, error) {
	const op = "WebClient.SessionFromResponse"
	if !c.browser.CurrentURIHasAuthResponse() {
		return nil, nil
	}
	responseURI, ok := c.browser.CurrentLocation()
	if !ok {
		return nil, nil
	}
	state, ok := browser.StateFromURI(responseURI, browser.Hash)
	if !ok || state == "" {
		return nil, nil
	}
	provider, ok := c.stores.Providers.Get(ctx, state)
	if !ok || provider == "" {
		c.logger.Debug("ignoring response with unrecognized state")
		return nil, nil
	}
	reg, err := c.RPFor(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// consumed once a registration is in hand; the relying party's own
	// request record rejects a replayed response
	if err := c.stores.Providers.Delete(ctx, state); err != nil {
		c.logger.Warn("unable to delete consumed state", "error", err)
	}
	s, err := c.rp.ValidateResponse(ctx, responseURI, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%s: relying party returned no session: %w", op, ErrNilParameter)
	}

	c.browser.ClearAuthResponseFromURL()
	if _, err := c.stores.Session.Save(ctx, "", s); err != nil {
		c.logger.Warn("unable to persist session", "error", err)
	}
	c.logger.Debug("session established", "issuer", s.Issuer)
	return s, nil
}

// Login starts authenticating with the provider (or Provider() when it's
// empty): it registers if needed, creates an authentication request, records
// the request's state and finally redirects the browser to the provider.
//
// Supported options:
//
//	WithRedirectURI
//	WithScope
//	WithGrantTypes
//	WithResponseTypes
//	WithIssuer
//	WithRequestOptions
func (c *WebClient) Login(ctx context.Context, provider string, opt ...Option) error {
	const op = "WebClient.Login"
	opts := getCallOpts(opt...)
	provider = c.resolveProvider(provider, opts)
	if provider == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingProvider)
	}
	reg, err := c.RPFor(ctx, provider, opt...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	authURI, err := c.rp.CreateAuthenticationRequestURI(ctx, reg, opts.withRequestOptions...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	state, ok := browser.StateFromURI(authURI, browser.Query)
	if !ok || state == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingState)
	}
	if _, err := c.stores.Providers.Save(ctx, state, provider); err != nil {
		return fmt.Errorf("%s: unable to record state: %w", op, err)
	}
	c.logger.Debug("redirecting to provider", "provider", provider)
	c.browser.RedirectTo(authURI)
	return nil
}

// RPFor returns the provider's registration, registering (see Register) when
// none is persisted.  Concurrent calls for the same provider share a single
// registration, which a caller's cancellation doesn't interrupt: the caller
// stops waiting and the others still get its result.
//
// Supported options:
//
//	WithRedirectURI
//	WithScope
//	WithGrantTypes
//	WithResponseTypes
//	WithIssuer
func (c *WebClient) RPFor(ctx context.Context, provider string, opt ...Option) (*rp.Registration, error) {
	const op = "WebClient.RPFor"
	provider = c.resolveProvider(provider, getCallOpts(opt...))
	if provider == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingProvider)
	}
	if reg, ok := c.stores.Clients.Get(ctx, provider); ok && reg != nil {
		return reg, nil
	}
	// the flight outlives any one caller's cancellation, within its own limit
	ch := c.registering.DoChan(provider, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.registrationTimeout)
		defer cancel()
		// a registration which completed since the lookup above wins
		if reg, ok := c.stores.Clients.Get(flightCtx, provider); ok && reg != nil {
			return reg, nil
		}
		return c.Register(flightCtx, provider, opt...)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%s: %w", op, res.Err)
		}
		return res.Val.(*rp.Registration), nil
	}
}

// Register a public client with the provider (see RegisterPublicClient) and
// persist the registration, replacing any existing one.
//
// Supported options:
//
//	WithRedirectURI
//	WithScope
//	WithGrantTypes
//	WithResponseTypes
//	WithIssuer
func (c *WebClient) Register(ctx context.Context, provider string, opt ...Option) (*rp.Registration, error) {
	const op = "WebClient.Register"
	provider = c.resolveProvider(provider, getCallOpts(opt...))
	reg, err := c.RegisterPublicClient(ctx, provider, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := c.stores.Clients.Save(ctx, provider, reg); err != nil {
		return nil, fmt.Errorf("%s: unable to persist registration: %w", op, err)
	}
	return reg, nil
}

// RegisterPublicClient registers a public implicit flow client with the
// provider, without persisting it.  The registration request is built from
// the options, falling back to the config.  The redirect URI falls back to
// the current location.
//
// Supported options:
//
//	WithRedirectURI
//	WithScope
//	WithGrantTypes
//	WithResponseTypes
//	WithIssuer
func (c *WebClient) RegisterPublicClient(ctx context.Context, provider string, opt ...Option) (*rp.Registration, error) {
	const op = "WebClient.RegisterPublicClient"
	opts := getCallOpts(opt...)
	provider = c.resolveProvider(provider, opts)
	if provider == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingProvider)
	}

	redirectURI := opts.withRedirectURI
	if redirectURI == "" {
		redirectURI = c.config.RedirectURI
	}
	if redirectURI == "" {
		redirectURI, _ = c.browser.CurrentLocation()
	}
	if redirectURI == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingRedirect)
	}
	req := &rp.RegistrationRequest{
		RedirectURIs:  []string{redirectURI},
		GrantTypes:    firstNonEmpty(opts.withGrantTypes, c.config.GrantTypes),
		ResponseTypes: firstNonEmpty(opts.withResponseTypes, c.config.ResponseTypes),
		Scope:         opts.withScope,
	}
	if req.Scope == "" {
		req.Scope = c.config.Scope
	}
	clientOpts := &rp.ClientOptions{
		Defaults: rp.AuthenticateDefaults{
			RedirectURI:  redirectURI,
			ResponseType: req.ResponseTypes[0],
		},
	}
	return c.RegisterClient(ctx, provider, req, clientOpts)
}

// RegisterClient registers with the provider using the request as is.
func (c *WebClient) RegisterClient(ctx context.Context, provider string, req *rp.RegistrationRequest, opts *rp.ClientOptions) (*rp.Registration, error) {
	const op = "WebClient.RegisterClient"
	switch {
	case provider == "":
		return nil, fmt.Errorf("%s: %w", op, ErrMissingProvider)
	case req == nil:
		return nil, fmt.Errorf("%s: registration request is nil: %w", op, ErrNilParameter)
	}
	reg, err := c.rp.Register(ctx, provider, req, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if reg == nil {
		return nil, fmt.Errorf("%s: relying party returned no registration: %w", op, ErrNilParameter)
	}
	c.logger.Debug("registered", "provider", provider)
	return reg, nil
}

// Logout clears the persisted registrations and session.  The provider isn't
// contacted.
func (c *WebClient) Logout(ctx context.Context) error {
	const op = "WebClient.Logout"
	var result *multierror.Error
	if err := c.stores.Clients.Clear(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.stores.Session.Clear(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.logger.Debug("logged out")
	return nil
}

// resolveProvider returns the provider, falling back to the WithIssuer
// option and then Provider().
func (c *WebClient) resolveProvider(provider string, opts callOptions) string {
	switch {
	case provider != "":
		return provider
	case opts.withIssuer != "":
		return opts.withIssuer
	default:
		return c.Provider()
	}
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}
