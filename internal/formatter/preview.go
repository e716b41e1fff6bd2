package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/tasks"
)

// SplitAdditions separates additions coverable from stock from those that must be ordered.
//
// A card can land in both maps: adding 5 with 2 on order yields 3 available and 2 ordered.
func SplitAdditions(toAdd, toOrder models.CardMap) (available, ordered models.CardMap) {
	available = make(models.CardMap)
	ordered = make(models.CardMap)
	for _, name := range toAdd.Names() {
		qty := toAdd[name]
		need, ok := toOrder[name]
		switch {
		case !ok || need <= 0:
			available[name] = qty
		case qty > need:
			available[name] = qty - need
			ordered[name] = need
		default:
			ordered[name] = qty
		}
	}
	return available, ordered
}

func writeMessages(buf *bytes.Buffer, title string, messages []string) {
	buf.WriteString(title + ":\n")
	for _, msg := range messages {
		fmt.Fprintf(buf, "  - %s\n", msg)
	}
}

func writeCards(buf *bytes.Buffer, title, marker string, cards models.CardMap) {
	if len(cards) == 0 {
		return
	}
	buf.WriteString(title + ":\n")
	for _, name := range cards.Names() {
		fmt.Fprintf(buf, "  %s %dx %s\n", marker, cards[name], name)
	}
	buf.WriteString("\n")
}

func inline(cards models.CardMap) string {
	parts := make([]string, 0, len(cards))
	for _, name := range cards.Names() {
		parts = append(parts, fmt.Sprintf("%dx %s", cards[name], name))
	}
	return strings.Join(parts, ", ")
}

// PreviewToText renders a single deck preview.
func PreviewToText(p *tasks.DeckUpdatePreview) []byte {
	var buf bytes.Buffer

	buf.WriteString("=== Deck Update Preview ===\n")
	fmt.Fprintf(&buf, "Deck: %s\n\n", p.Label())

	if len(p.Errors) > 0 {
		writeMessages(&buf, "ERRORS", p.Errors)
		buf.WriteString("\n")
	}
	if len(p.InfoMessages) > 0 {
		writeMessages(&buf, "INFO", p.InfoMessages)
		buf.WriteString("\n")
	}

	writeCards(&buf, "Cards to Remove", "-", p.Swaps.ToRemove)

	available, ordered := SplitAdditions(p.Swaps.ToAdd, p.CardsToOrder)
	writeCards(&buf, "Cards to Add (Already Available)", "+", available)
	writeCards(&buf, "Cards to Add (Ordered)", "+", ordered)

	if len(p.CardsToOrder) == 0 {
		buf.WriteString("No cards need to be ordered!\n")
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "Cards to Order (%d total):\n", p.TotalCardsToOrder())
	for _, name := range p.CardsToOrder.Names() {
		fmt.Fprintf(&buf, "  * %dx %s\n", p.CardsToOrder[name], name)
	}
	return buf.Bytes()
}

// BatchPreviewToText renders every deck of a batch followed by the combined order.
func BatchPreviewToText(b *tasks.BatchUpdatePreview) []byte {
	var buf bytes.Buffer
	total := len(b.DeckUpdates)

	buf.WriteString("=== Batch Update Preview ===\n")
	fmt.Fprintf(&buf, "Total decks: %d\n", total)
	fmt.Fprintf(&buf, "Total cards to order: %d\n\n", b.TotalCardsToOrder())

	for i, update := range b.DeckUpdates {
		fmt.Fprintf(&buf, "--- Deck %d/%d: %s ---\n", i+1, total, update.DeckName)

		if len(update.Errors) > 0 {
			buf.WriteString("ERRORS: " + strings.Join(update.Errors, ", ") + "\n")
		}

		if update.Swaps.HasChanges() {
			if len(update.Swaps.ToRemove) > 0 {
				fmt.Fprintf(&buf, "Remove: %s\n", inline(update.Swaps.ToRemove))
			}
			if len(update.Swaps.ToAdd) > 0 {
				fmt.Fprintf(&buf, "Add: %s\n", inline(update.Swaps.ToAdd))
			}
		} else {
			buf.WriteString("No changes needed\n")
		}

		if len(update.CardsToOrder) > 0 {
			fmt.Fprintf(&buf, "Order: %s\n", inline(update.CardsToOrder))
		}
		buf.WriteString("\n")
	}

	order := b.TotalOrder()
	if len(order) > 0 {
		buf.WriteString("=== Total Order Summary ===\n")
		for _, name := range order.Names() {
			fmt.Fprintf(&buf, "%dx %s\n", order[name], name)
		}
	}
	return buf.Bytes()
}

// SummaryToText renders the condensed result of an applied deck update.
func SummaryToText(p *tasks.DeckUpdatePreview) []byte {
	var buf bytes.Buffer

	switch {
	case len(p.Errors) > 0:
		writeMessages(&buf, "ERRORS", p.Errors)
	case len(p.InfoMessages) > 0:
		writeMessages(&buf, "INFO", p.InfoMessages)
	}

	if p.Swaps.HasChanges() {
		fmt.Fprintf(&buf, "Updated deck '%s' (%s) - %d changes\n", p.DeckName, p.DeckFormat, p.Swaps.ChangeCount())
	} else {
		fmt.Fprintf(&buf, "No changes needed for deck '%s' (%s)\n", p.DeckName, p.DeckFormat)
	}

	if len(p.CardsToOrder) > 0 {
		fmt.Fprintf(&buf, "Need to order %d cards\n", p.TotalCardsToOrder())
	} else {
		buf.WriteString("No cards need to be ordered\n")
	}
	return buf.Bytes()
}

// BatchSummaryToText renders one line per applied deck and the success/error counts.
func BatchSummaryToText(b *tasks.BatchUpdatePreview) []byte {
	var buf bytes.Buffer
	successful, failed := 0, 0

	for _, update := range b.DeckUpdates {
		if len(update.Errors) > 0 {
			failed++
			fmt.Fprintf(&buf, "ERROR - %s: %s\n", update.Label(), strings.Join(update.Errors, ", "))
			continue
		}
		successful++
		fmt.Fprintf(&buf, "✓ %s - %d changes\n", update.Label(), update.Swaps.ChangeCount())
	}

	fmt.Fprintf(&buf, "\nSummary: %d successful, %d errors\n", successful, failed)
	if order := b.TotalOrder(); len(order) > 0 {
		fmt.Fprintf(&buf, "Total cards to order: %d\n", order.Total())
	}
	return buf.Bytes()
}
