// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of entries a CachedBackend keeps when no
// size is given.
const DefaultCacheSize = 128

// CachedBackend is a read-through, write-through LRU cache in front of another
// Backend, typically a RedisBackend or SQLiteBackend.  Writes reach the
// underlying Backend before the cache is updated.  Writes made to the
// underlying Backend by other processes are not observed until the entry is
// evicted.
type CachedBackend struct {
	next  Backend
	cache *lru.Cache[string, string]
}

// ensure that CachedBackend implements the Backend interface
var _ Backend = (*CachedBackend)(nil)

// NewCachedBackend wraps next with an LRU cache of size entries.  A size of
// zero uses DefaultCacheSize.
func NewCachedBackend(next Backend, size int) (*CachedBackend, error) {
	const op = "storage.NewCachedBackend"
	switch {
	case next == nil:
		return nil, fmt.Errorf("%s: backend is nil: %w", op, ErrNilParameter)
	case size < 0:
		return nil, fmt.Errorf("%s: size %d is negative: %w", op, size, ErrInvalidParameter)
	case size == 0:
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create cache: %w", op, err)
	}
	return &CachedBackend{next: next, cache: cache}, nil
}

// GetItem implements Backend.GetItem.
func (c *CachedBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	if v, ok := c.cache.Get(key); ok {
		return v, true, nil
	}
	v, ok, err := c.next.GetItem(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}
	c.cache.Add(key, v)
	return v, true, nil
}

// SetItem implements Backend.SetItem.
func (c *CachedBackend) SetItem(ctx context.Context, key, value string) error {
	if err := c.next.SetItem(ctx, key, value); err != nil {
		c.cache.Remove(key)
		return err
	}
	c.cache.Add(key, value)
	return nil
}

// RemoveItem implements Backend.RemoveItem.
func (c *CachedBackend) RemoveItem(ctx context.Context, key string) error {
	c.cache.Remove(key)
	return c.next.RemoveItem(ctx, key)
}

// Keys implements Backend.Keys.  The underlying Backend is authoritative.
func (c *CachedBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	return c.next.Keys(ctx, prefix)
}

// Purge drops every cached entry without touching the underlying Backend.
func (c *CachedBackend) Purge() {
	c.cache.Purge()
}
