package repositories

import (
	"fmt"

	"github.com/desertthunder/netdecker/internal/models"
)

// DeckEntryRepository reads and replaces the composition of decklists.
type DeckEntryRepository struct {
	q Querier
}

// NewDeckEntryRepository creates a DeckEntryRepository over a database or transaction.
func NewDeckEntryRepository(q Querier) *DeckEntryRepository {
	return &DeckEntryRepository{q: q}
}

// List returns the cards of a decklist as a map.
func (r *DeckEntryRepository) List(decklistID string) (models.CardMap, error) {
	rows, err := r.q.Query(`SELECT card_name, quantity FROM deck_entries WHERE decklist_id = ?`, decklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck entries: %w", err)
	}
	defer rows.Close()

	return scanCardMap(rows)
}

// Replace deletes every entry of the decklist and inserts cards in their place.
// Non-positive quantities are not stored.
func (r *DeckEntryRepository) Replace(decklistID string, cards models.CardMap) error {
	if _, err := r.q.Exec(`DELETE FROM deck_entries WHERE decklist_id = ?`, decklistID); err != nil {
		return fmt.Errorf("failed to clear deck entries: %w", err)
	}

	query := `INSERT INTO deck_entries (decklist_id, card_name, quantity) VALUES (?, ?, ?)`
	for _, name := range cards.Names() {
		entry := models.DeckEntry{DecklistID: decklistID, CardName: name, Quantity: cards[name]}
		if entry.Quantity <= 0 {
			continue
		}
		if err := entry.Validate(); err != nil {
			return err
		}
		if _, err := r.q.Exec(query, entry.DecklistID, entry.CardName, entry.Quantity); err != nil {
			return fmt.Errorf("failed to insert deck entry %s: %w", name, err)
		}
	}
	return nil
}

// Totals sums each card name across every decklist.
func (r *DeckEntryRepository) Totals() (models.CardMap, error) {
	rows, err := r.q.Query(`SELECT card_name, SUM(quantity) FROM deck_entries GROUP BY card_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck entry totals: %w", err)
	}
	defer rows.Close()

	return scanCardMap(rows)
}

type rowIterator interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCardMap(rows rowIterator) (models.CardMap, error) {
	cards := make(models.CardMap)
	for rows.Next() {
		var name string
		var qty int
		if err := rows.Scan(&name, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan deck entry: %w", err)
		}
		cards[name] += qty
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck entries: %w", err)
	}
	return cards, nil
}
