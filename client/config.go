// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package client

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/webclient/rp"
)

// Config represents the registration defaults of a WebClient.
type Config struct {
	// Provider is the provider used when a call doesn't name one.  It's
	// optional.
	Provider string `env:"OIDC_PROVIDER"`

	// RedirectURI is registered when a call doesn't provide one.  When it's
	// empty, the current location is registered.
	RedirectURI string `env:"OIDC_REDIRECT_URI"`

	// Scope is the space separated scope registered.
	Scope string `env:"OIDC_SCOPE" envDefault:"openid profile"`

	// GrantTypes are the grant types registered.
	GrantTypes []string `env:"OIDC_GRANT_TYPES" envSeparator:"," envDefault:"implicit"`

	// ResponseTypes are the response types registered.  The first one is used
	// for authentication requests.
	ResponseTypes []string `env:"OIDC_RESPONSE_TYPES" envSeparator:"," envDefault:"id_token token"`
}

// DefaultConfig returns the single page application defaults: the implicit
// grant, "id_token token" responses and the "openid profile" scope.
func DefaultConfig() *Config {
	return &Config{
		Scope:         rp.DefaultScope,
		GrantTypes:    []string{rp.GrantTypeImplicit},
		ResponseTypes: []string{rp.DefaultResponseType},
	}
}

// ConfigFromEnv loads a Config from the environment, applying the defaults
// for unset variables:
//
//	OIDC_PROVIDER
//	OIDC_REDIRECT_URI
//	OIDC_SCOPE
//	OIDC_GRANT_TYPES     (comma separated)
//	OIDC_RESPONSE_TYPES  (comma separated)
//
// Supported options:
//
//	WithEnvironment
func ConfigFromEnv(opt ...Option) (*Config, error) {
	const op = "client.ConfigFromEnv"
	opts := getConfigOpts(opt...)
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Environment: opts.withEnvironment}); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// Validate the Config.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if c.Provider != "" {
		if err := absoluteURL(c.Provider); err != nil {
			return fmt.Errorf("%s: provider: %w", op, err)
		}
	}
	if c.RedirectURI != "" {
		if err := absoluteURL(c.RedirectURI); err != nil {
			return fmt.Errorf("%s: redirect URI: %w", op, err)
		}
	}
	switch {
	case c.Scope == "":
		return fmt.Errorf("%s: scope is empty: %w", op, ErrInvalidConfig)
	case len(c.GrantTypes) == 0:
		return fmt.Errorf("%s: no grant types: %w", op, ErrInvalidConfig)
	case len(c.ResponseTypes) == 0 || c.ResponseTypes[0] == "":
		return fmt.Errorf("%s: no response types: %w", op, ErrInvalidConfig)
	}
	return nil
}

func absoluteURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL: %w", s, ErrInvalidConfig)
	}
	return nil
}
