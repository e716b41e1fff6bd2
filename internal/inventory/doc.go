// Package inventory maintains the proxy card ledger and the allocation of its stock to decks.
//
// [Ledger] records how many copies of each card are owned and how many are still available.
// [Allocator] moves quantities between available and allocated on behalf of decklists and
// computes shortages. Every public call runs in its own transaction, so one call is the unit
// of atomicity; a workflow spanning several calls is not atomic as a whole.
//
// The invariant 0 <= available <= owned is checked before every write and enforced again by a
// CHECK constraint in the schema.
package inventory
