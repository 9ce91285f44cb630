// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package client

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/webclient/rp"
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

// WithLogger provides an optional logger.
//
// Valid for: WebClient and Stores
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *webClientOptions:
			v.withLogger = l
		case *storesOptions:
			v.withLogger = l
		}
	}
}

// WithConfig provides the registration defaults of a WebClient.
//
// Valid for: WebClient
func WithConfig(c *Config) Option {
	return func(o interface{}) {
		if o, ok := o.(*webClientOptions); ok {
			o.withConfig = c
		}
	}
}

// WithProvider provides the provider a WebClient uses when a call doesn't
// name one.  It takes precedence over the config's provider.
//
// Valid for: WebClient
func WithProvider(provider string) Option {
	return func(o interface{}) {
		if o, ok := o.(*webClientOptions); ok {
			o.withProvider = provider
		}
	}
}

// WithRegistrationTimeout provides the time limit of a registration shared by
// concurrent RPFor calls.  The default is DefaultRegistrationTimeout.
//
// Valid for: WebClient
func WithRegistrationTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*webClientOptions); ok {
			o.withRegistrationTimeout = d
		}
	}
}

// WithRedirectURI provides the redirect URI to register.  The default is the
// config's redirect URI, then the current location.
//
// Valid for: Login, RPFor, Register and RegisterPublicClient
func WithRedirectURI(uri string) Option {
	return func(o interface{}) {
		if o, ok := o.(*callOptions); ok {
			o.withRedirectURI = uri
		}
	}
}

// WithScope provides the space separated scope to register.
//
// Valid for: Login, RPFor, Register and RegisterPublicClient
func WithScope(scope string) Option {
	return func(o interface{}) {
		if o, ok := o.(*callOptions); ok {
			o.withScope = scope
		}
	}
}

// WithGrantTypes provides the grant types to register.
//
// Valid for: Login, RPFor, Register and RegisterPublicClient
func WithGrantTypes(grantTypes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*callOptions); ok {
			o.withGrantTypes = grantTypes
		}
	}
}

// WithResponseTypes provides the response types to register.  The first is
// used for authentication requests.
//
// Valid for: Login, RPFor, Register and RegisterPublicClient
func WithResponseTypes(responseTypes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*callOptions); ok {
			o.withResponseTypes = responseTypes
		}
	}
}

// WithIssuer provides the provider to register with when the call's provider
// is empty.
//
// Valid for: Login, RPFor, Register and RegisterPublicClient
func WithIssuer(issuer string) Option {
	return func(o interface{}) {
		if o, ok := o.(*callOptions); ok {
			o.withIssuer = issuer
		}
	}
}

// WithRequestOptions provides options passed through to the creation of the
// authentication request, like rp.WithPrompts.
//
// Valid for: Login
func WithRequestOptions(opt ...rp.Option) Option {
	return func(o interface{}) {
		if o, ok := o.(*callOptions); ok {
			o.withRequestOptions = opt
		}
	}
}

// WithEnvironment provides the environment to load a Config from, instead of
// the process environment.
//
// Valid for: ConfigFromEnv
func WithEnvironment(env map[string]string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withEnvironment = env
		}
	}
}

// webClientOptions is the set of available options for a WebClient
type webClientOptions struct {
	withConfig              *Config
	withLogger              hclog.Logger
	withProvider            string
	withRegistrationTimeout time.Duration
}

func webClientDefaults() webClientOptions {
	return webClientOptions{
		withLogger:              hclog.NewNullLogger(),
		withRegistrationTimeout: DefaultRegistrationTimeout,
	}
}

func getWebClientOpts(opt ...Option) webClientOptions {
	opts := webClientDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withLogger == nil {
		opts.withLogger = hclog.NewNullLogger()
	}
	return opts
}

// storesOptions is the set of available options for Stores
type storesOptions struct {
	withLogger hclog.Logger
}

func storesDefaults() storesOptions {
	return storesOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getStoresOpts(opt ...Option) storesOptions {
	opts := storesDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withLogger == nil {
		opts.withLogger = hclog.NewNullLogger()
	}
	return opts
}

// callOptions is the set of available options for the WebClient's
// registration and login calls
type callOptions struct {
	withRedirectURI    string
	withScope          string
	withGrantTypes     []string
	withResponseTypes  []string
	withIssuer         string
	withRequestOptions []rp.Option
}

func callDefaults() callOptions {
	return callOptions{}
}

func getCallOpts(opt ...Option) callOptions {
	opts := callDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// configOptions is the set of available options for ConfigFromEnv
type configOptions struct {
	withEnvironment map[string]string
}

func configDefaults() configOptions {
	return configOptions{}
}

func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
