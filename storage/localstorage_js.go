// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build js && wasm

package storage

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"
)

// LocalStorage is a Backend over the browser's window.localStorage.  Entries
// are shared with every tab of the same origin.
type LocalStorage struct {
	ls js.Value
}

// ensure that LocalStorage implements the Backend interface
var _ Backend = (*LocalStorage)(nil)

// NewLocalStorage binds window.localStorage.  It returns ErrBackendUnavailable
// when there's no browsing context or storage has been disabled.
func NewLocalStorage() (*LocalStorage, error) {
	const op = "storage.NewLocalStorage"
	w := js.Global().Get("window")
	if w.IsUndefined() || w.IsNull() {
		return nil, fmt.Errorf("%s: no window: %w", op, ErrBackendUnavailable)
	}
	ls, err := jsGet(w, "localStorage")
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrBackendUnavailable, err)
	}
	if ls.IsUndefined() || ls.IsNull() {
		return nil, fmt.Errorf("%s: localStorage is missing: %w", op, ErrBackendUnavailable)
	}
	return &LocalStorage{ls: ls}, nil
}

// GetItem implements Backend.GetItem.
func (l *LocalStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	const op = "LocalStorage.GetItem"
	v, err := jsCall(l.ls, "getItem", key)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

// SetItem implements Backend.SetItem.  Quota errors surface here.
func (l *LocalStorage) SetItem(_ context.Context, key, value string) error {
	const op = "LocalStorage.SetItem"
	if _, err := jsCall(l.ls, "setItem", key, value); err != nil {
		return fmt.Errorf("%s: %w: %s", op, ErrBackendUnavailable, err)
	}
	return nil
}

// RemoveItem implements Backend.RemoveItem.
func (l *LocalStorage) RemoveItem(_ context.Context, key string) error {
	const op = "LocalStorage.RemoveItem"
	if _, err := jsCall(l.ls, "removeItem", key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Keys implements Backend.Keys.
func (l *LocalStorage) Keys(_ context.Context, prefix string) ([]string, error) {
	const op = "LocalStorage.Keys"
	n := l.ls.Get("length").Int()
	var keys []string
	for i := 0; i < n; i++ {
		v, err := jsCall(l.ls, "key", i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if v.IsNull() {
			continue
		}
		if k := v.String(); strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// jsCall invokes method on v, turning a thrown DOMException into an error.
func jsCall(v js.Value, method string, args ...interface{}) (result js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", method, r)
		}
	}()
	return v.Call(method, args...), nil
}

// jsGet reads a property of v, turning a thrown SecurityError into an error.
func jsGet(v js.Value, property string) (result js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", property, r)
		}
	}()
	return v.Get(property), nil
}
