package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
)

const decklistColumns = `id, sequence, name, format, url, created_at, updated_at`

// DecklistRepository persists tracked decks and their card entries.
//
// (name, format) is the natural key but is not unique in the schema; lookups return the
// lowest sequence when several rows match.
type DecklistRepository struct {
	db *sql.DB
}

// NewDecklistRepository creates a new DecklistRepository with the given database connection
func NewDecklistRepository(db *sql.DB) *DecklistRepository {
	return &DecklistRepository{db: db}
}

// Create inserts a new decklist with generated ID, sequence and timestamps.
func (r *DecklistRepository) Create(deck *models.Decklist) error {
	if err := deck.Validate(); err != nil {
		return err
	}

	return WithTx(r.db, func(tx *sql.Tx) error {
		sequence, err := NextSequence(tx, "decklists")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		now := time.Now().UTC()
		id := shared.GenerateID()
		query := `
			INSERT INTO decklists (id, sequence, name, format, url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.Exec(query, id, sequence, deck.Name, deck.Format, deck.URL, now, now); err != nil {
			return fmt.Errorf("failed to insert decklist: %w", err)
		}

		deck.ID = id
		deck.Sequence = sequence
		deck.CreatedAt = now
		deck.UpdatedAt = now
		return nil
	})
}

// Get retrieves a decklist by ID.
func (r *DecklistRepository) Get(id string) (*models.Decklist, error) {
	query := `SELECT ` + decklistColumns + ` FROM decklists WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id), id)
}

// GetByNameFormat retrieves a decklist by its natural key.
func (r *DecklistRepository) GetByNameFormat(name, format string) (*models.Decklist, error) {
	query := `
		SELECT ` + decklistColumns + `
		FROM decklists
		WHERE name = ? AND format = ?
		ORDER BY sequence
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(query, name, format), name+" ("+format+")")
}

// GetByName retrieves the first decklist (lowest sequence) with the given name in any format.
func (r *DecklistRepository) GetByName(name string) (*models.Decklist, error) {
	query := `
		SELECT ` + decklistColumns + `
		FROM decklists
		WHERE name = ?
		ORDER BY sequence
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(query, name), name)
}

// Find looks a deck up by name and format, or by name alone when format is empty.
func (r *DecklistRepository) Find(name, format string) (*models.Decklist, error) {
	if format == "" {
		return r.GetByName(name)
	}
	return r.GetByNameFormat(name, format)
}

// Delete removes a decklist. Its entries are removed by the ON DELETE CASCADE constraint.
func (r *DecklistRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM decklists WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete decklist: %w", err)
	}
	return affected(result)
}

// UpdateCards replaces the decklist's entries with cards in one transaction.
func (r *DecklistRepository) UpdateCards(id string, cards models.CardMap) error {
	return WithTx(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(`UPDATE decklists SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("failed to touch decklist: %w", err)
		}
		ok, err := affected(result)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrDecklistNotFound, id)
		}

		return NewDeckEntryRepository(tx).Replace(id, cards)
	})
}

// UpdateURL changes the stored source URL.
func (r *DecklistRepository) UpdateURL(id, url string) (bool, error) {
	url = strings.TrimSpace(url)
	return r.UpdateMetadata(id, models.DecklistPatch{URL: &url})
}

// UpdateMetadata applies the non-nil fields of patch.
func (r *DecklistRepository) UpdateMetadata(id string, patch models.DecklistPatch) (bool, error) {
	if patch.Empty() {
		return false, nil
	}

	var sets []string
	var args []any
	for _, field := range []struct {
		column string
		value  *string
	}{
		{"name", patch.Name},
		{"format", patch.Format},
		{"url", patch.URL},
	} {
		if field.value == nil {
			continue
		}
		if strings.TrimSpace(*field.value) == "" {
			return false, fmt.Errorf("%w: %s must not be empty", models.ErrValidation, field.column)
		}
		sets = append(sets, field.column+" = ?")
		args = append(args, *field.value)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := `UPDATE decklists SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update decklist: %w", err)
	}
	return affected(result)
}

// List returns every decklist ordered by sequence.
func (r *DecklistRepository) List() ([]*models.Decklist, error) {
	rows, err := r.db.Query(`SELECT ` + decklistColumns + ` FROM decklists ORDER BY sequence`)
	if err != nil {
		return nil, fmt.Errorf("failed to query decklists: %w", err)
	}
	defer rows.Close()

	var decks []*models.Decklist
	for rows.Next() {
		deck, err := scanDecklist(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decklists: %w", err)
	}
	return decks, nil
}

// Cards returns the current composition of a decklist.
func (r *DecklistRepository) Cards(id string) (models.CardMap, error) {
	return NewDeckEntryRepository(r.db).List(id)
}

func (r *DecklistRepository) scanOne(row *sql.Row, key string) (*models.Decklist, error) {
	deck, err := scanDecklist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrDecklistNotFound, key)
	}
	return deck, err
}

func scanDecklist(row scanner) (*models.Decklist, error) {
	var deck models.Decklist
	err := row.Scan(
		&deck.ID,
		&deck.Sequence,
		&deck.Name,
		&deck.Format,
		&deck.URL,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan decklist: %w", err)
	}
	return &deck, nil
}
