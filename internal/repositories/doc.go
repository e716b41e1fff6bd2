// Package repositories implements SQLite persistence for the proxy ledger and tracked decklists.
//
// Key Implementations:
//   - [CardRepository] : ledger rows keyed by unique card name
//   - [DeckEntryRepository] : the card composition of a decklist, replaced wholesale
//   - [DecklistRepository] : tracked decks with (name, format) lookups
//
// CardRepository and DeckEntryRepository run over a [Querier] so callers can bind them to a
// transaction; DecklistRepository owns its *sql.DB and opens a transaction per multi-statement write.
//
// Sequence numbers provide stable ordering for decklists independent of UUIDs and creation timestamps,
// and decide the "first match" for name-only lookups. The [NextSequence] function increments the
// counter row in a dedicated sequence table.
package repositories
