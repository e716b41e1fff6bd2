package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
	"github.com/urfave/cli/v3"
)

// cardsFromArgs reads "<quantity> <name>" entries from the positional arguments and --file.
func cardsFromArgs(cmd *cli.Command) (models.CardMap, error) {
	cards := make(models.CardMap)

	if path := cmd.String("file"); path != "" {
		fromFile, err := shared.ReadCardListFile(path)
		if err != nil {
			return nil, err
		}
		cards.Merge(fromFile)
	}

	if cmd.Args().Len() > 0 {
		fromArgs, err := shared.ParseCardEntries(cmd.Args().Slice())
		if err != nil {
			return nil, err
		}
		cards.Merge(fromArgs)
	}

	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: provide cards as \"<quantity> <cardname>\" or --file", shared.ErrMissingArgument)
	}
	return cards, nil
}

// ProxyAdd adds owned (and available) copies to the ledger.
func (r *Runner) ProxyAdd(ctx context.Context, cmd *cli.Command) error {
	cards, err := cardsFromArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.ledger.Add(cards); err != nil {
		return fmt.Errorf("failed to add cards: %w", err)
	}
	r.logger.Debug("added cards", "distinct", len(cards), "total", cards.Total())
	return r.writePlain("Added %d cards to inventory\n", cards.Total())
}

// ProxyRemove removes owned copies from the ledger.
func (r *Runner) ProxyRemove(ctx context.Context, cmd *cli.Command) error {
	cards, err := cardsFromArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	if err := r.ledger.Remove(cards); err != nil {
		return fmt.Errorf("failed to remove cards: %w", err)
	}
	return r.writePlain("Removed %d cards from inventory\n", cards.Total())
}

type proxyRow struct {
	Name      string `json:"name"`
	Owned     int    `json:"owned"`
	Available int    `json:"available"`
	InUse     int    `json:"in_use"`
}

// ProxyList prints the ledger with owned, available and in-use counts.
func (r *Runner) ProxyList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	cards, err := r.ledger.List()
	if err != nil {
		return err
	}

	rows := make([]proxyRow, 0, len(cards))
	for _, card := range cards {
		if card.QuantityOwned == 0 {
			continue
		}
		rows = append(rows, proxyRow{card.Name, card.QuantityOwned, card.QuantityAvailable, card.InUse()})
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(rows) == 0 {
		return r.writePlain("No proxy cards found.\n")
	}

	var owned, available, inUse int
	r.writePlain("%-40s | %-6s | %-10s | %-6s\n", "Card Name", "Owned", "Available", "In Use")
	r.writePlain("%s\n", strings.Repeat("-", 70))
	for _, row := range rows {
		r.writePlain("%-40s | %-6d | %-10d | %-6d\n", row.Name, row.Owned, row.Available, row.InUse)
		owned += row.Owned
		available += row.Available
		inUse += row.InUse
	}
	r.writePlain("%s\n", strings.Repeat("-", 70))
	return r.writePlain("%-40s | %-6d | %-10d | %-6d\n", "TOTAL", owned, available, inUse)
}

// ProxyClear removes every owned copy after confirmation.
func (r *Runner) ProxyClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	distinct, _, _, err := r.ledger.Totals()
	if err != nil {
		return err
	}
	if distinct == 0 {
		return r.writePlain("No proxy cards to remove\n")
	}

	prompt := fmt.Sprintf("Are you sure you want to remove all %d proxy cards? (y/N): ", distinct)
	if !cmd.Bool("confirm") && !r.confirm(prompt) {
		return r.writePlain("Operation cancelled\n")
	}

	if _, err := r.ledger.Clear(); err != nil {
		return fmt.Errorf("failed to remove cards: %w", err)
	}
	return r.writePlain("Removed %d proxy cards from inventory\n", distinct)
}

// ProxyAudit compares ledger usage with deck entries.
func (r *Runner) ProxyAudit(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	discrepancies, err := r.allocator.Audit()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if discrepancies == nil {
			return r.writeJSON([]any{}, cmd.Bool("pretty"))
		}
		return r.writeJSON(discrepancies, cmd.Bool("pretty"))
	}

	if len(discrepancies) == 0 {
		return r.writePlain("✓ Ledger matches deck allocations\n")
	}

	r.writePlainHeader(fmt.Sprintf("%d cards out of sync", len(discrepancies)))
	r.writePlain("%-40s | %-6s | %-9s\n", "Card Name", "In Use", "Allocated")
	for _, d := range discrepancies {
		r.writePlain("%-40s | %-6d | %-9d\n", d.Name, d.InUse, d.Allocated)
	}
	return nil
}
