// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views guarded by the session store:
//  1. [LoginView] : Unauthenticated entry point (email/password form)
//  2. [BrowseView] : Recommended/category grid with an independent search panel
//  3. [ProfileView] : Profile editor driving typed partial updates
//
// The [Model] implements bubbletea's standard Init/Update/View pattern. A
// watcher command subscribed to the session store acts as the navigator:
// whenever the identity becomes absent — explicit logout or a 401 observed
// by the gateway on any in-flight call — the model redirects to the login
// view before any further protected fetch is issued. Fetch results carry
// the session generation at issue time, so responses that arrive after a
// transition are discarded instead of populating view state.
//
// Keyboard navigation uses vim-style bindings (j/k, /, tab, 1-5, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
