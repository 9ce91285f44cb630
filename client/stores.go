// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package client

import (
	"fmt"

	"github.com/hashicorp/webclient/rp"
	"github.com/hashicorp/webclient/storage"
)

const (
	// ClientsNamespace holds registrations, keyed by provider.
	ClientsNamespace = "oidc.clients"

	// SessionNamespace holds the single session.
	SessionNamespace = "oidc.session"

	// ProvidersNamespace holds the provider of each in-flight login, keyed by
	// the login's state.
	ProvidersNamespace = "oidc.providers"
)

// Stores are the stores a WebClient persists its state in.
type Stores struct {
	Clients   *storage.Store[*rp.Registration]
	Session   *storage.Store[*rp.Session]
	Providers *storage.Store[string]
}

// NewStores creates the clients, session and providers stores over a shared
// backend.
//
// Supported options:
//
//	WithLogger
func NewStores(backend storage.Backend, opt ...Option) (*Stores, error) {
	const op = "client.NewStores"
	if backend == nil {
		return nil, fmt.Errorf("%s: backend is nil: %w", op, ErrNilParameter)
	}
	opts := getStoresOpts(opt...)
	logger := opts.withLogger.Named("storage")

	clients, err := storage.NewStore[*rp.Registration](ClientsNamespace, backend,
		storage.WithDecoder(storage.DecodeFunc[*rp.Registration](rp.RegistrationFromJSON)),
		storage.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	session, err := storage.NewStore[*rp.Session](SessionNamespace, backend,
		storage.WithDecoder(storage.DecodeFunc[*rp.Session](rp.SessionFromJSON)),
		storage.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	providers, err := storage.NewStore[string](ProvidersNamespace, backend, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Stores{
		Clients:   clients,
		Session:   session,
		Providers: providers,
	}, nil
}
