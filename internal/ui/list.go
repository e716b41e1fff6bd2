package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/netdecker/internal/models"
)

var (
	_ list.Item = deckItem{}
	_ list.Item = cardItem{}
)

// deckItem wraps [models.Decklist] to implement [list.Item].
type deckItem struct {
	deck *models.Decklist
}

func (i deckItem) FilterValue() string { return i.deck.Name }
func (i deckItem) Title() string       { return i.deck.Label() }
func (i deckItem) Description() string {
	return fmt.Sprintf("updated %s • %s", i.deck.UpdatedAt.Format("2006-01-02"), i.deck.URL)
}

// cardItem is one card of the selected deck with the ledger's free copies.
type cardItem struct {
	name      string
	quantity  int
	available int
}

func (i cardItem) FilterValue() string { return i.name }
func (i cardItem) Title() string       { return fmt.Sprintf("%dx %s", i.quantity, i.name) }
func (i cardItem) Description() string {
	return styles.stock(fmt.Sprintf("%d spare", i.available), i.available)
}
