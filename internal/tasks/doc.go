// Package tasks reconciles remote decklists with the proxy card ledger.
//
// # Core Operations
//
// [DeckEngine] exposes preview (read-only) and apply (mutating) variants, per deck or batched:
//
//  1. [DeckEngine.PreviewDeckUpdate] : Forecast a deck update
//     - Fetches the decklist from its URL
//     - New decks add every card; tracked decks are diffed with [ComputeSwaps]
//     - Removed cards are treated as released when deciding what must be ordered
//
//  2. [DeckEngine.ApplyDeckUpdate] : Persist a deck update
//     - Runs the preview first and stops if it recorded errors
//     - Fetches the decklist again, releases the old allocation, stores the new composition
//     - Allocates the deck, creating any shortage as new proxies
//
//  3. [DeckEngine.PreviewBatchUpdate] and [DeckEngine.ApplyBatchUpdate]
//     - Run the single-deck operation for each target in input order
//     - One failing deck never blocks the rest
//     - [BatchUpdatePreview.TotalOrder] sums the order across decks
//
// # Error Reporting
//
// Per-deck failures are recorded in [DeckUpdatePreview.Errors] rather than returned, so a batch
// always produces one preview per target.
//
// # Progress Reporting
//
// Batch operations send [ProgressUpdate] values on an optional channel. Sends never block; a full
// channel drops the update.
package tasks
