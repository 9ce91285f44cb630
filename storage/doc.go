// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

/*
Package storage provides namespaced, type-aware JSON persistence over a
string key/value Backend.

Primary types provided by the package

* Store: a KeyedJsonStore.  Every entry lives under "<namespace>.<key>" (or
the bare "<namespace>" when the key is empty) in a shared Backend.  Reads never
fail: a missing entry, malformed JSON or a Backend error all read as "no value".
Writes overwrite and surface Backend errors.  Clear only removes the Store's
own namespace.

* Backend: the persistent key/value contract.  Implementations:
MemoryBackend (ttlcache), RedisBackend (go-redis), SQLiteBackend
(modernc.org/sqlite), CachedBackend (an LRU in front of another Backend) and
LocalStorage (window.localStorage, js/wasm builds only).
*/
package storage
