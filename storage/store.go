// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// DecodeFunc reconstructs a T from an entry's raw JSON.  It is only called for
// well-formed, non-null JSON.  Returning an error makes the entry read as
// absent.
type DecodeFunc[T any] func(raw json.RawMessage) (T, error)

// Store is a namespaced JSON store over a Backend.  A Store only ever touches
// keys inside its own namespace.
type Store[T any] struct {
	namespace string
	backend   Backend
	decode    DecodeFunc[T]
	logger    hclog.Logger
}

// NewStore creates a Store for the namespace over the backend.
//
// Supported options:
//
//	WithDecoder
//	WithLogger
func NewStore[T any](namespace string, backend Backend, opt ...Option) (*Store[T], error) {
	const op = "storage.NewStore"
	switch {
	case namespace == "":
		return nil, fmt.Errorf("%s: namespace is empty: %w", op, ErrInvalidParameter)
	case strings.HasSuffix(namespace, "."):
		return nil, fmt.Errorf("%s: namespace %q must not end with a \".\": %w", op, namespace, ErrInvalidParameter)
	case backend == nil:
		return nil, fmt.Errorf("%s: backend is nil: %w", op, ErrNilParameter)
	}
	opts := getStoreOpts(opt...)
	s := &Store[T]{
		namespace: namespace,
		backend:   backend,
		decode:    unmarshalDecoder[T],
		logger:    opts.withLogger.Named(namespace),
	}
	if opts.withDecoder != nil {
		fn, ok := opts.withDecoder.(DecodeFunc[T])
		if !ok {
			return nil, fmt.Errorf("%s: decoder %T does not produce %T: %w", op, opts.withDecoder, *new(T), ErrInvalidParameter)
		}
		if fn != nil {
			s.decode = fn
		}
	}
	return s, nil
}

// Namespace returns the store's namespace.
func (s *Store[T]) Namespace() string { return s.namespace }

// Key returns the backend key for key: "<namespace>.<key>", or the bare
// namespace when key is empty.
func (s *Store[T]) Key(key string) string {
	if key == "" {
		return s.namespace
	}
	return s.namespace + "." + key
}

// Get reads the entry at key.  It never fails: a missing entry, malformed or
// null JSON, a decoding error and a backend error all return false.
func (s *Store[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	k := s.Key(key)
	contents, ok, err := s.backend.GetItem(ctx, k)
	if err != nil {
		s.logger.Debug("unable to read entry", "key", k, "error", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}
	raw := json.RawMessage(contents)
	if !json.Valid(raw) {
		s.logger.Debug("ignoring malformed entry", "key", k)
		return zero, false
	}
	if strings.TrimSpace(contents) == "null" {
		return zero, false
	}
	v, err := s.decode(raw)
	if err != nil {
		s.logger.Debug("unable to decode entry", "key", k, "error", err)
		return zero, false
	}
	return v, true
}

// Save serializes value and writes it at key, overwriting any existing entry.
// It returns value so calls can be chained.
func (s *Store[T]) Save(ctx context.Context, key string, value T) (T, error) {
	const op = "Store.Save"
	k := s.Key(key)
	contents, err := json.Marshal(value)
	if err != nil {
		return value, fmt.Errorf("%s: unable to marshal %s: %w", op, k, err)
	}
	if err := s.backend.SetItem(ctx, k, string(contents)); err != nil {
		return value, fmt.Errorf("%s: unable to write %s: %w", op, k, err)
	}
	return value, nil
}

// Delete removes the entry at key.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	const op = "Store.Delete"
	k := s.Key(key)
	if err := s.backend.RemoveItem(ctx, k); err != nil {
		return fmt.Errorf("%s: unable to remove %s: %w", op, k, err)
	}
	return nil
}

// Clear removes every entry in the store's namespace.  Entries of other
// namespaces sharing the backend are left untouched, including ones whose
// namespace merely starts with the same characters.
func (s *Store[T]) Clear(ctx context.Context) error {
	const op = "Store.Clear"
	keys, err := s.backend.Keys(ctx, s.namespace)
	if err != nil {
		return fmt.Errorf("%s: unable to list %s: %w", op, s.namespace, err)
	}
	var result *multierror.Error
	for _, k := range keys {
		if !s.owns(k) {
			continue
		}
		if err := s.backend.RemoveItem(ctx, k); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: unable to remove %s: %w", op, k, err))
		}
	}
	return result.ErrorOrNil()
}

func (s *Store[T]) owns(key string) bool {
	return key == s.namespace || strings.HasPrefix(key, s.namespace+".")
}

func unmarshalDecoder[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, err
	}
	return v, nil
}

// storeOptions is the set of available options for a Store
type storeOptions struct {
	withDecoder interface{}
	withLogger  hclog.Logger
}

func storeDefaults() storeOptions {
	return storeOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getStoreOpts(opt ...Option) storeOptions {
	opts := storeDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withLogger == nil {
		opts.withLogger = hclog.NewNullLogger()
	}
	return opts
}
