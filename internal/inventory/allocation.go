package inventory

import (
	"database/sql"
	"errors"

	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/repositories"
	"github.com/desertthunder/netdecker/internal/shared"
)

// Allocator commits and releases ledger stock on behalf of decklists.
//
// Shortages are always reported as the positive quantity still missing; available never goes below zero.
type Allocator struct {
	db *sql.DB
}

// NewAllocator creates an Allocator over db.
func NewAllocator(db *sql.DB) *Allocator {
	return &Allocator{db: db}
}

// Allocate takes the requested quantities out of available stock and returns the shortages.
//
// Unknown cards are short by the full request. When fewer copies are available than requested
// the available copies are still taken and the remainder is reported. Cards missing from the
// returned map were fully allocated.
func (a *Allocator) Allocate(requested models.CardMap) (models.CardMap, error) {
	shortages := make(models.CardMap)
	err := repositories.WithTx(a.db, func(tx *sql.Tx) error {
		repo := repositories.NewCardRepository(tx)
		for _, name := range requested.Names() {
			qty := requested[name]
			if qty <= 0 {
				continue
			}

			card, err := repo.Get(name)
			if errors.Is(err, shared.ErrCardNotFound) {
				shortages[name] = qty
				continue
			}
			if err != nil {
				return err
			}

			if card.QuantityAvailable < qty {
				shortages[name] = qty - card.QuantityAvailable
				card.QuantityAvailable = 0
			} else {
				card.QuantityAvailable -= qty
			}

			if err := repo.Save(card); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shortages, nil
}

// Release returns quantities to available stock.
//
// Unknown cards are skipped. A release that would leave more available than owned fails with
// [shared.InsufficientQuantityError] and the whole release is rolled back.
func (a *Allocator) Release(cards models.CardMap) error {
	return repositories.WithTx(a.db, func(tx *sql.Tx) error {
		repo := repositories.NewCardRepository(tx)
		for _, name := range cards.Names() {
			qty := cards[name]
			if qty <= 0 {
				continue
			}

			card, err := repo.Get(name)
			if errors.Is(err, shared.ErrCardNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			if card.QuantityAvailable+qty > card.QuantityOwned {
				return &shared.InsufficientQuantityError{
					Name:      name,
					Requested: qty,
					Available: card.QuantityOwned - card.QuantityAvailable,
				}
			}

			card.QuantityAvailable += qty
			if err := repo.Save(card); err != nil {
				return err
			}
		}
		return nil
	})
}

// CheckFeasibility reports the shortages [Allocator.Allocate] would return without changing the ledger.
func (a *Allocator) CheckFeasibility(requested models.CardMap) (models.CardMap, error) {
	return shortages(repositories.NewCardRepository(a.db), requested)
}

// CalculateNeeded reports how many copies of each card are needed beyond current availability.
//
// It is the same computation as [Allocator.CheckFeasibility] and is used when a deck holds no
// allocation yet.
func (a *Allocator) CalculateNeeded(required models.CardMap) (models.CardMap, error) {
	return shortages(repositories.NewCardRepository(a.db), required)
}

// ReleaseDecklist returns every card of the decklist's current entries to available stock.
//
// Each card is capped at its owned quantity: entries can exceed the copies still in use after
// owned stock was removed by hand.
func (a *Allocator) ReleaseDecklist(decklistID string) error {
	return repositories.WithTx(a.db, func(tx *sql.Tx) error {
		entries, err := repositories.NewDeckEntryRepository(tx).List(decklistID)
		if err != nil {
			return err
		}

		repo := repositories.NewCardRepository(tx)
		for _, name := range entries.Names() {
			card, err := repo.Get(name)
			if errors.Is(err, shared.ErrCardNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			card.QuantityAvailable = min(card.QuantityAvailable+entries[name], card.QuantityOwned)
			if err := repo.Save(card); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeckAllocation returns the decklist's entries, which is what it holds from the ledger.
func (a *Allocator) DeckAllocation(decklistID string) (models.CardMap, error) {
	return repositories.NewDeckEntryRepository(a.db).List(decklistID)
}

// Discrepancy is a card whose in-use quantity differs from the sum of its deck entries.
type Discrepancy struct {
	Name      string `json:"name"`
	InUse     int    `json:"in_use"`
	Allocated int    `json:"allocated"`
}

// Audit compares owned minus available against the deck entries of every decklist and returns
// the cards where the two disagree, sorted by name.
func (a *Allocator) Audit() ([]Discrepancy, error) {
	cards, err := repositories.NewCardRepository(a.db).List()
	if err != nil {
		return nil, err
	}
	allocated, err := repositories.NewDeckEntryRepository(a.db).Totals()
	if err != nil {
		return nil, err
	}

	inUse := make(models.CardMap, len(cards))
	for _, card := range cards {
		inUse[card.Name] = card.InUse()
	}

	names := inUse.Clone()
	names.Merge(allocated)

	var out []Discrepancy
	for _, name := range names.Names() {
		if inUse[name] != allocated[name] {
			out = append(out, Discrepancy{Name: name, InUse: inUse[name], Allocated: allocated[name]})
		}
	}
	return out, nil
}

func shortages(repo *repositories.CardRepository, requested models.CardMap) (models.CardMap, error) {
	out := make(models.CardMap)
	for _, name := range requested.Names() {
		qty := requested[name]
		if qty <= 0 {
			continue
		}

		card, err := repo.Get(name)
		if errors.Is(err, shared.ErrCardNotFound) {
			out[name] = qty
			continue
		}
		if err != nil {
			return nil, err
		}

		if card.QuantityAvailable < qty {
			out[name] = qty - card.QuantityAvailable
		}
	}
	return out, nil
}
