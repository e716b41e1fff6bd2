package inventory

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/repositories"
	"github.com/desertthunder/netdecker/internal/shared"
)

// Ledger tracks owned and available quantities per unique card name.
type Ledger struct {
	db *sql.DB
}

// NewLedger creates a Ledger over db.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Add increments both owned and available for each card, creating missing cards.
// Non-positive quantities are ignored.
func (l *Ledger) Add(cards models.CardMap) error {
	return repositories.WithTx(l.db, func(tx *sql.Tx) error {
		repo := repositories.NewCardRepository(tx)
		for _, name := range cards.Names() {
			if cards[name] <= 0 {
				continue
			}
			if err := repo.Upsert(name, cards[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Remove decrements owned for each card, clamping available down to the new owned quantity.
//
// Unknown cards are skipped. Removing more than is owned fails with
// [shared.InsufficientQuantityError] and nothing is written.
func (l *Ledger) Remove(cards models.CardMap) error {
	return repositories.WithTx(l.db, func(tx *sql.Tx) error {
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

			if qty > card.QuantityOwned {
				return &shared.InsufficientQuantityError{Name: name, Requested: qty, Available: card.QuantityOwned}
			}

			card.QuantityOwned -= qty
			card.QuantityAvailable = min(card.QuantityAvailable, card.QuantityOwned)
			if err := repo.Save(card); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear removes every owned copy of every card, keeping the rows at zero.
func (l *Ledger) Clear() (int, error) {
	removed := 0
	err := repositories.WithTx(l.db, func(tx *sql.Tx) error {
		repo := repositories.NewCardRepository(tx)
		cards, err := repo.List()
		if err != nil {
			return err
		}
		for _, card := range cards {
			removed += card.QuantityOwned
			card.QuantityOwned = 0
			card.QuantityAvailable = 0
			if err := repo.Save(card); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Get returns the ledger entry for name, or [shared.ErrCardNotFound].
func (l *Ledger) Get(name string) (*models.Card, error) {
	return repositories.NewCardRepository(l.db).Get(name)
}

// List returns every card ordered by name.
func (l *Ledger) List() ([]*models.Card, error) {
	return repositories.NewCardRepository(l.db).List()
}

// Available returns the available quantity of name, or 0 when the card is unknown.
func (l *Ledger) Available(name string) (int, error) {
	card, err := l.lookup(name)
	if card == nil || err != nil {
		return 0, err
	}
	return card.QuantityAvailable, nil
}

// Owned returns the owned quantity of name, or 0 when the card is unknown.
func (l *Ledger) Owned(name string) (int, error) {
	card, err := l.lookup(name)
	if card == nil || err != nil {
		return 0, err
	}
	return card.QuantityOwned, nil
}

// Totals returns the number of distinct cards and the summed owned and available quantities.
func (l *Ledger) Totals() (distinct, owned, available int, err error) {
	cards, err := l.List()
	if err != nil {
		return 0, 0, 0, err
	}
	for _, card := range cards {
		if card.QuantityOwned > 0 {
			distinct++
		}
		owned += card.QuantityOwned
		available += card.QuantityAvailable
	}
	return distinct, owned, available, nil
}

func (l *Ledger) lookup(name string) (*models.Card, error) {
	card, err := l.Get(name)
	if errors.Is(err, shared.ErrCardNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", name, err)
	}
	return card, nil
}
