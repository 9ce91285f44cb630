// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package rp

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/language"
)

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// WithNow provides an optional func for determining what the current time it
// is.
//
// Valid for: Client and TestProvider
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if now == nil {
			return
		}
		switch v := o.(type) {
		case *clientOptions:
			v.withNowFunc = now
		case *testProviderOptions:
			v.withNowFunc = now
		}
	}
}

// WithLogger provides an optional logger.
//
// Valid for: Client
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withLogger = l
		}
	}
}

// WithProviderCA provides optional CA certs (PEM encoded) for the connection
// to the provider.
//
// Valid for: Client
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withProviderCA = cert
		}
	}
}

// WithSupportedSigningAlgs provides the id_token signing algorithms the
// Client accepts.  The default is every Alg the package defines.
//
// Valid for: Client
func WithSupportedSigningAlgs(algs ...Alg) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withSupportedSigningAlgs = algs
		}
	}
}

// WithRequestExpiry provides how long an authentication request stays valid.
// A response to a request older than this fails validation.
//
// Valid for: Client
func WithRequestExpiry(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withRequestExpiry = d
		}
	}
}

// WithScopes provides the scopes to request, overriding the registration's
// scope.  The required "openid" scope is always requested.
//
// Valid for: CreateAuthenticationRequestURI
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withScopes = scopes
		}
	}
}

// WithPrompts provides an optional list of values that specifies whether the
// Authorization Server prompts the End-User for reauthentication and consent.
//
// Valid for: CreateAuthenticationRequestURI
func WithPrompts(prompts ...Prompt) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withPrompts = prompts
		}
	}
}

// WithMaxAge provides an optional maximum authentication age, which is the
// allowable elapsed time in seconds since the last time the user was actively
// authenticated by the provider.
//
// Valid for: CreateAuthenticationRequestURI
func WithMaxAge(seconds uint) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withMaxAge = &seconds
		}
	}
}

// WithDisplay optionally specifies how the Authorization Server displays the
// authentication and consent user interface pages to the End-User.
//
// Valid for: CreateAuthenticationRequestURI
func WithDisplay(d Display) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withDisplay = d
		}
	}
}

// WithLoginHint provides an optional hint to the provider about the login
// identifier the End-User might use.
//
// Valid for: CreateAuthenticationRequestURI
func WithLoginHint(hint string) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withLoginHint = hint
		}
	}
}

// WithUILocales optionally specifies End-User's preferred languages via
// language Tags, ordered by preference.
//
// Valid for: CreateAuthenticationRequestURI
func WithUILocales(locales ...language.Tag) Option {
	return func(o interface{}) {
		if o, ok := o.(*requestOptions); ok {
			o.withUILocales = locales
		}
	}
}

// DefaultRequestExpiry is how long an authentication request stays valid when
// no WithRequestExpiry option is given.
const DefaultRequestExpiry = 10 * time.Minute

// clientOptions is the set of available options for a Client
type clientOptions struct {
	withNowFunc              func() time.Time
	withLogger               hclog.Logger
	withProviderCA           string
	withSupportedSigningAlgs []Alg
	withRequestExpiry        time.Duration
}

// clientDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func clientDefaults() clientOptions {
	return clientOptions{
		withNowFunc:              time.Now,
		withLogger:               hclog.NewNullLogger(),
		withSupportedSigningAlgs: defaultSigningAlgs,
		withRequestExpiry:        DefaultRequestExpiry,
	}
}

// getClientOpts gets the client defaults and applies the opt overrides passed
// in
func getClientOpts(opt ...Option) clientOptions {
	opts := clientDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withLogger == nil {
		opts.withLogger = hclog.NewNullLogger()
	}
	return opts
}

// requestOptions is the set of available options for
// CreateAuthenticationRequestURI
type requestOptions struct {
	withScopes    []string
	withPrompts   []Prompt
	withMaxAge    *uint
	withDisplay   Display
	withLoginHint string
	withUILocales []language.Tag
}

// requestDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func requestDefaults() requestOptions {
	return requestOptions{}
}

// getRequestOpts gets the request defaults and applies the opt overrides
// passed in
func getRequestOpts(opt ...Option) requestOptions {
	opts := requestDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// testProviderOptions is the set of available options for a TestProvider
type testProviderOptions struct {
	withNowFunc func() time.Time
}

// testProviderDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func testProviderDefaults() testProviderOptions {
	return testProviderOptions{
		withNowFunc: time.Now,
	}
}

// getTestProviderOpts gets the test provider defaults and applies the opt
// overrides passed in
func getTestProviderOpts(opt ...Option) testProviderOptions {
	opts := testProviderDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
