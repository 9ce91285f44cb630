// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

// Package browser isolates every interaction with the ambient browsing
// context (the current URL, history and navigation) behind a small Context
// interface.  An Adapter layers the operations a web client needs on top of
// a Context: reading the current location, detecting and clearing an
// authentication response in the URL's hash fragment and redirecting.
//
// Outside a browsing context (see None) every operation degrades to a no-op
// or an empty value and never panics.
package browser
