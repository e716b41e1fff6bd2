package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
)

const cardColumns = `id, name, quantity_owned, quantity_available, created_at, updated_at`

// CardRepository persists ledger rows.
type CardRepository struct {
	q Querier
}

// NewCardRepository creates a CardRepository over a database or transaction.
func NewCardRepository(q Querier) *CardRepository {
	return &CardRepository{q: q}
}

// Get retrieves a card by its exact stored name.
func (r *CardRepository) Get(name string) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM proxy_cards WHERE name = ?`

	card, err := scanCard(r.q.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCardNotFound, name)
	}
	return card, err
}

// List returns every ledger row ordered by name.
func (r *CardRepository) List() ([]*models.Card, error) {
	rows, err := r.q.Query(`SELECT ` + cardColumns + ` FROM proxy_cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}

// Upsert adds qty to both the owned and available quantities of name, creating the row when absent.
func (r *CardRepository) Upsert(name string, qty int) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO proxy_cards (name, quantity_owned, quantity_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			quantity_owned = quantity_owned + excluded.quantity_owned,
			quantity_available = quantity_available + excluded.quantity_available,
			updated_at = excluded.updated_at
	`

	if _, err := r.q.Exec(query, name, qty, qty, now, now); err != nil {
		return fmt.Errorf("failed to upsert card %s: %w", name, err)
	}
	return nil
}

// Save writes the quantities of an existing card.
func (r *CardRepository) Save(card *models.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}

	card.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE proxy_cards
		SET quantity_owned = ?, quantity_available = ?, updated_at = ?
		WHERE name = ?
	`

	result, err := r.q.Exec(query, card.QuantityOwned, card.QuantityAvailable, card.UpdatedAt, card.Name)
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", card.Name, err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrCardNotFound, card.Name)
	}
	return nil
}

// Delete removes the ledger row for name.
func (r *CardRepository) Delete(name string) (bool, error) {
	result, err := r.q.Exec(`DELETE FROM proxy_cards WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete card %s: %w", name, err)
	}
	return affected(result)
}

func scanCard(row scanner) (*models.Card, error) {
	var card models.Card
	err := row.Scan(
		&card.ID,
		&card.Name,
		&card.QuantityOwned,
		&card.QuantityAvailable,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}
	return &card, nil
}
