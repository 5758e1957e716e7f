// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI renders two surfaces over the same favorites controller:
//  1. [GridView] : Browse the movie catalog, with ♥ marking favorites
//  2. [FavoritesView] : The signed-in user's profile and favorite movies
//
// [InfoView] shows a synopsis, genre or director page for the selected movie.
//
// Both surfaces subscribe to favorites events. A toggle in either one is applied optimistically by the controller,
// and the resulting events re-render both lists without polling. Network calls run inside [tea.Cmd] functions,
// and failures are shown in the status line.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, enter, space, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
