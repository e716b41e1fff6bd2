// Package ui implements an interactive deck browser using bubbletea's Elm architecture.
//
// The TUI walks through a deck update:
//  1. [DeckListView] : Browse tracked decklists
//  2. [CardListView] : Inspect a deck's cards and how many copies are free in the ledger
//  3. [PreviewView] : Review the swaps and order of an update fetched from the deck's URL
//  4. [ApplyView] : Wait for the update to be applied
//  5. [ResultView] : Display the applied summary
//
// The [Model] implements bubbletea's Init/Update/View pattern, receiving messages via the [Msg] union type.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, u, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
