// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package client

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
	ErrMissingProvider  = errors.New("no provider")
	ErrMissingRedirect  = errors.New("no redirect URI")
	ErrMissingState     = errors.New("authentication request has no state")
	ErrInvalidConfig    = errors.New("invalid config")
)
