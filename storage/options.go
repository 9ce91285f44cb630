// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"time"

	"github.com/hashicorp/go-hclog"
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

// WithLogger provides an optional logger for: Store, MemoryBackend,
// RedisBackend, SQLiteBackend
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *storeOptions:
			v.withLogger = l
		case *memoryOptions:
			v.withLogger = l
		case *redisOptions:
			v.withLogger = l
		case *sqliteOptions:
			v.withLogger = l
		}
	}
}

// WithTTL provides an optional time-to-live for every entry written to a
// MemoryBackend.  Zero (the default) means entries never expire.
func WithTTL(ttl time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*memoryOptions); ok {
			o.withTTL = ttl
		}
	}
}

// WithKeyPrefix provides an optional prefix which a RedisBackend prepends to
// every key it reads or writes.  It allows several applications to share one
// redis database.
func WithKeyPrefix(prefix string) Option {
	return func(o interface{}) {
		if o, ok := o.(*redisOptions); ok {
			o.withKeyPrefix = prefix
		}
	}
}

// WithDecoder provides an optional reconstruction strategy used by a Store[T]
// when reading entries.  Without a decoder, entries are unmarshalled into T.
func WithDecoder[T any](fn DecodeFunc[T]) Option {
	return func(o interface{}) {
		if o, ok := o.(*storeOptions); ok {
			o.withDecoder = fn
		}
	}
}
