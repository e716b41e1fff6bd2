package tasks

import (
	"encoding/json"

	"github.com/desertthunder/netdecker/internal/models"
)

// DeckUpdatePreview describes a single deck update, previewed or applied.
//
// Errors and InfoMessages are human-readable; a preview with errors has empty swaps and order.
type DeckUpdatePreview struct {
	DeckName     string
	DeckFormat   string
	Swaps        DeckSwaps
	CardsToOrder models.CardMap
	Errors       []string
	InfoMessages []string
}

// NewDeckUpdatePreview creates an empty preview for target.
func NewDeckUpdatePreview(target models.DeckTarget) *DeckUpdatePreview {
	return &DeckUpdatePreview{
		DeckName:     target.Name,
		DeckFormat:   target.Format,
		Swaps:        DeckSwaps{ToAdd: make(models.CardMap), ToRemove: make(models.CardMap)},
		CardsToOrder: make(models.CardMap),
		Errors:       []string{},
		InfoMessages: []string{},
	}
}

// TotalCardsToOrder sums the quantities in CardsToOrder.
func (p *DeckUpdatePreview) TotalCardsToOrder() int {
	return p.CardsToOrder.Total()
}

func (p *DeckUpdatePreview) HasErrors() bool {
	return len(p.Errors) > 0
}

// Label returns "name (format)".
func (p *DeckUpdatePreview) Label() string {
	return p.DeckName + " (" + p.DeckFormat + ")"
}

func (p *DeckUpdatePreview) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DeckName          string         `json:"deck_name"`
		DeckFormat        string         `json:"deck_format"`
		Swaps             DeckSwaps      `json:"swaps"`
		CardsToOrder      models.CardMap `json:"cards_to_order"`
		TotalCardsToOrder int            `json:"total_cards_to_order"`
		Errors            []string       `json:"errors"`
		InfoMessages      []string       `json:"info_messages"`
	}{
		DeckName:          p.DeckName,
		DeckFormat:        p.DeckFormat,
		Swaps:             p.Swaps,
		CardsToOrder:      p.CardsToOrder,
		TotalCardsToOrder: p.TotalCardsToOrder(),
		Errors:            p.Errors,
		InfoMessages:      p.InfoMessages,
	})
}

// BatchUpdatePreview collects per-deck previews in input order.
type BatchUpdatePreview struct {
	DeckUpdates []*DeckUpdatePreview
}

// TotalOrder sums CardsToOrder across every deck by card name.
func (b *BatchUpdatePreview) TotalOrder() models.CardMap {
	total := make(models.CardMap)
	for _, update := range b.DeckUpdates {
		total.Merge(update.CardsToOrder)
	}
	return total
}

func (b *BatchUpdatePreview) TotalCardsToOrder() int {
	return b.TotalOrder().Total()
}

// ErrorCount is the number of decks that recorded at least one error.
func (b *BatchUpdatePreview) ErrorCount() int {
	n := 0
	for _, update := range b.DeckUpdates {
		if update.HasErrors() {
			n++
		}
	}
	return n
}

func (b *BatchUpdatePreview) MarshalJSON() ([]byte, error) {
	decks := b.DeckUpdates
	if decks == nil {
		decks = []*DeckUpdatePreview{}
	}
	return json.Marshal(struct {
		DeckUpdates       []*DeckUpdatePreview `json:"deck_updates"`
		TotalOrder        models.CardMap       `json:"total_order"`
		TotalCardsToOrder int                  `json:"total_cards_to_order"`
	}{
		DeckUpdates:       decks,
		TotalOrder:        b.TotalOrder(),
		TotalCardsToOrder: b.TotalCardsToOrder(),
	})
}
