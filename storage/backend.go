// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import "context"

// Backend is the persistent key/value contract a Store is built on.  Keys and
// values are strings.  Implementations must be concurrently safe since a
// single Backend is shared by several Stores.
type Backend interface {
	// GetItem returns the value stored at key.  The bool is false when no
	// entry exists.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem writes value at key, replacing any existing entry.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes the entry at key.  Removing a missing key is not an
	// error.
	RemoveItem(ctx context.Context, key string) error

	// Keys returns every key which starts with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
