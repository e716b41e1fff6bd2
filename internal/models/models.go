// package models defines the data model for the proxy inventory
package models

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// ErrValidation is wrapped by every Validate failure.
var ErrValidation = errors.New("validation failed")

// Model is implemented by every persisted entity.
type Model interface {
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// CardMap maps card names to quantities.
//
// A nil CardMap is a valid empty map for reads.
type CardMap map[string]int

// Total returns the sum of all quantities.
func (m CardMap) Total() int {
	total := 0
	for _, qty := range m {
		total += qty
	}
	return total
}

// Names returns the card names in ascending order.
func (m CardMap) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// Add increments name by qty.
func (m CardMap) Add(name string, qty int) {
	m[name] += qty
}

// Merge adds every quantity of other into m.
func (m CardMap) Merge(other CardMap) {
	for name, qty := range other {
		m[name] += qty
	}
}

// Clone returns a copy of m that is never nil.
func (m CardMap) Clone() CardMap {
	out := make(CardMap, len(m))
	maps.Copy(out, m)
	return out
}

// Positive returns a copy of m without zero or negative quantities.
func (m CardMap) Positive() CardMap {
	out := make(CardMap, len(m))
	for name, qty := range m {
		if qty > 0 {
			out[name] = qty
		}
	}
	return out
}

// Card is a ledger entry for one unique card name.
type Card struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	QuantityOwned     int       `json:"quantity_owned"`
	QuantityAvailable int       `json:"quantity_available"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// InUse returns how many copies are allocated to decks.
func (c *Card) InUse() int {
	return c.QuantityOwned - c.QuantityAvailable
}

func (c *Card) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: card name is required", ErrValidation)
	case c.QuantityOwned < 0:
		return fmt.Errorf("%w: %s: owned quantity must not be negative", ErrValidation, c.Name)
	case c.QuantityAvailable < 0 || c.QuantityAvailable > c.QuantityOwned:
		return fmt.Errorf("%w: %s: available quantity %d outside 0..%d", ErrValidation, c.Name, c.QuantityAvailable, c.QuantityOwned)
	}
	return nil
}

// Decklist is a tracked deck. Name and Format together form its natural key.
type Decklist struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	Name      string    `json:"name"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Decklist) Validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return fmt.Errorf("%w: deck name is required", ErrValidation)
	case strings.TrimSpace(d.Format) == "":
		return fmt.Errorf("%w: deck format is required", ErrValidation)
	case strings.TrimSpace(d.URL) == "":
		return fmt.Errorf("%w: deck url is required", ErrValidation)
	}
	return nil
}

// Label renders the deck as "name (format)".
func (d *Decklist) Label() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Format)
}

// DeckEntry is one card line of a decklist's composition.
type DeckEntry struct {
	DecklistID string
	CardName   string
	Quantity   int
}

func (e *DeckEntry) Validate() error {
	switch {
	case e.DecklistID == "":
		return fmt.Errorf("%w: entry has no decklist", ErrValidation)
	case strings.TrimSpace(e.CardName) == "":
		return fmt.Errorf("%w: entry card name is required", ErrValidation)
	case e.Quantity <= 0:
		return fmt.Errorf("%w: %s: quantity must be positive", ErrValidation, e.CardName)
	}
	return nil
}

// DecklistPatch carries the metadata fields to change; nil fields are left alone.
type DecklistPatch struct {
	Name   *string
	Format *string
	URL    *string
}

// Empty reports whether the patch changes nothing.
func (p DecklistPatch) Empty() bool {
	return p.Name == nil && p.Format == nil && p.URL == nil
}

// DefaultFormat is used when a batch entry names no format.
const DefaultFormat = "Unknown"

// DeckTarget identifies a remote decklist to reconcile against a tracked deck.
type DeckTarget struct {
	Name   string `json:"name" yaml:"name"`
	Format string `json:"format" yaml:"format"`
	URL    string `json:"url" yaml:"url"`
}
