// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build js && wasm

package browser

import "syscall/js"

// Window is the Context of a real browser, bound to the global window.
type Window struct {
	w js.Value
}

// ensure that Window implements the Context interface
var _ Context = (*Window)(nil)

// NewWindow binds the global window.  In a worker, or any host without a
// window, the returned Window behaves like None.
func NewWindow() *Window {
	return &Window{w: js.Global().Get("window")}
}

func (w *Window) present() bool {
	return !w.w.IsUndefined() && !w.w.IsNull()
}

// Href implements Context.Href.
func (w *Window) Href() (string, bool) {
	if !w.present() {
		return "", false
	}
	loc := w.w.Get("location")
	if loc.IsUndefined() || loc.IsNull() {
		return "", false
	}
	return loc.Get("href").String(), true
}

// ReplaceState implements Context.ReplaceState using history.replaceState.
func (w *Window) ReplaceState(url string) {
	if !w.present() {
		return
	}
	history := w.w.Get("history")
	if history.IsUndefined() || history.IsNull() {
		return
	}
	title := js.Undefined()
	if doc := w.w.Get("document"); !doc.IsUndefined() && !doc.IsNull() {
		title = doc.Get("title")
	}
	history.Call("replaceState", history.Get("state"), title, url)
}

// Assign implements Context.Assign by setting location.href.
func (w *Window) Assign(url string) {
	if !w.present() {
		return
	}
	w.w.Get("location").Set("href", url)
}
