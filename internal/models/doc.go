// Package models defines domain entities for the netdecker proxy inventory.
//
// The package contains two categories of types:
//
// 1. Value types passed between the workflow, services and formatters
//   - [CardMap] : card name to quantity, the currency of every ledger and diff operation
//   - [DeckTarget] : a remote decklist to reconcile (name, format, url)
//   - [DecklistPatch] : partial metadata update for a tracked deck
//
// 2. Persistent entities backed by the sqlite store
//   - [Card] : ledger row with owned and available quantities
//   - [Decklist] : a tracked deck identified by (name, format)
//   - [DeckEntry] : one card line of a deck's current composition
//
// Persistent entities implement the Model interface so repositories can validate them before writes.
package models
