// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/jellydator/ttlcache/v3"
)

// MemoryBackend is an in-process Backend.  It stands in for a browser's
// localStorage in non-browser hosts and tests.  When created WithTTL, entries
// expire, which bounds ephemeral data like abandoned login attempts.
//
// See MemoryBackend.Stop() which must be called to release the expiry
// goroutine when a TTL is configured.
type MemoryBackend struct {
	cache  *ttlcache.Cache[string, string]
	ttl    time.Duration
	logger hclog.Logger

	stopOnce sync.Once
}

// ensure that MemoryBackend implements the Backend interface
var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates a MemoryBackend.
//
// Supported options:
//
//	WithTTL
//	WithLogger
func NewMemoryBackend(opt ...Option) *MemoryBackend {
	opts := getMemoryOpts(opt...)
	ttl := ttlcache.NoTTL
	if opts.withTTL > 0 {
		ttl = opts.withTTL
	}
	cache := ttlcache.New(
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	m := &MemoryBackend{
		cache:  cache,
		ttl:    ttl,
		logger: opts.withLogger,
	}
	if opts.withTTL > 0 {
		cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, string]) {
			if reason == ttlcache.EvictionReasonExpired {
				m.logger.Trace("entry expired", "key", item.Key())
			}
		})
		go cache.Start()
	}
	return m
}

// Stop releases the expiry goroutine.  It's safe to call Stop more than once,
// and on a MemoryBackend without a TTL.
func (m *MemoryBackend) Stop() {
	if m == nil || m.ttl <= 0 {
		return
	}
	m.stopOnce.Do(m.cache.Stop)
}

// GetItem implements Backend.GetItem.
func (m *MemoryBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	item := m.cache.Get(key)
	if item == nil || item.IsExpired() {
		return "", false, nil
	}
	return item.Value(), true, nil
}

// SetItem implements Backend.SetItem.
func (m *MemoryBackend) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Set(key, value, ttlcache.DefaultTTL)
	return nil
}

// RemoveItem implements Backend.RemoveItem.
func (m *MemoryBackend) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Delete(key)
	return nil
}

// Keys implements Backend.Keys.
func (m *MemoryBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	for _, k := range m.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Len returns the number of entries, including ones which have expired but
// haven't been evicted yet.
func (m *MemoryBackend) Len() int {
	return m.cache.Len()
}

// memoryOptions is the set of available options for a MemoryBackend
type memoryOptions struct {
	withTTL    time.Duration
	withLogger hclog.Logger
}

func memoryDefaults() memoryOptions {
	return memoryOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getMemoryOpts(opt ...Option) memoryOptions {
	opts := memoryDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withLogger == nil {
		opts.withLogger = hclog.NewNullLogger()
	}
	return opts
}
