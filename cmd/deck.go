package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/netdecker/internal/formatter"
	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
	"github.com/desertthunder/netdecker/internal/tasks"
	"github.com/urfave/cli/v3"
)

// findDeck looks a tracked deck up by name, narrowed by format when given.
func (r *Runner) findDeck(name, format string) (*models.Decklist, error) {
	deck, err := r.decks.Find(name, format)
	if shared.IsNotFound(err) {
		return nil, fmt.Errorf("%w: deck '%s' not found", shared.ErrDecklistNotFound, name)
	}
	return deck, err
}

func deckName(cmd *cli.Command) (string, error) {
	name := strings.TrimSpace(cmd.Args().First())
	if name == "" {
		return "", fmt.Errorf("%w: deck name", shared.ErrMissingArgument)
	}
	return name, nil
}

// truncate shortens s to at most n runes, ending in "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// DeckList prints every tracked deck sorted by format, then name.
func (r *Runner) DeckList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	decks, err := r.decks.List()
	if err != nil {
		return err
	}
	sort.SliceStable(decks, func(i, j int) bool {
		if decks[i].Format != decks[j].Format {
			return decks[i].Format < decks[j].Format
		}
		return decks[i].Name < decks[j].Name
	})

	if cmd.Bool("json") {
		if decks == nil {
			decks = []*models.Decklist{}
		}
		return r.writeJSON(decks, cmd.Bool("pretty"))
	}

	if len(decks) == 0 {
		return r.writePlain("No tracked decks found.\n")
	}

	r.writePlain("%-12s | %-25s | %-20s | %-50s\n", "Format", "Name", "Last Updated", "URL")
	r.writePlain("%s\n", strings.Repeat("-", 110))
	for _, deck := range decks {
		r.writePlain("%-12s | %-25s | %-20s | %-50s\n",
			deck.Format, deck.Name, deck.UpdatedAt.Local().Format("2006-01-02 15:04"), truncate(deck.URL, 50))
	}
	return nil
}

type deckCardRow struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"available"`
}

// DeckShow prints a deck's cards next to the copies still available in the ledger.
func (r *Runner) DeckShow(ctx context.Context, cmd *cli.Command) error {
	name, err := deckName(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	deck, err := r.findDeck(name, cmd.String("format"))
	if err != nil {
		return err
	}
	cards, err := r.decks.Cards(deck.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(deck.URL); err != nil {
			r.logger.Warn("could not open browser", "url", deck.URL, "error", err)
		}
	}

	rows := make([]deckCardRow, 0, len(cards))
	for _, card := range cards.Names() {
		available, err := r.ledger.Available(card)
		if err != nil {
			return err
		}
		rows = append(rows, deckCardRow{card, cards[card], available})
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"deck": deck, "cards": rows}, cmd.Bool("pretty"))
	}

	r.writePlain("Deck: %s\n", deck.Label())
	r.writePlain("URL: %s\n", deck.URL)
	r.writePlain("Total Cards: %d\n\n", cards.Total())
	r.writePlain("%-8s | %-40s | %-9s\n", "Quantity", "Card Name", "Available")
	r.writePlain("%s\n", strings.Repeat("-", 64))
	for _, row := range rows {
		r.writePlain("%-8d | %-40s | %-9d\n", row.Quantity, row.Name, row.Available)
	}
	return nil
}

// DeckAdd tracks a new deck and allocates its cards.
func (r *Runner) DeckAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := deckName(cmd)
	if err != nil {
		return err
	}
	url := strings.TrimSpace(cmd.Args().Get(1))
	if url == "" {
		return fmt.Errorf("%w: deck url", shared.ErrMissingArgument)
	}
	format := cmd.String("format")

	if err := r.open(); err != nil {
		return err
	}

	if _, err := r.decks.GetByNameFormat(name, format); err == nil {
		return fmt.Errorf("%w: Deck '%s' already exists for format '%s'", shared.ErrDecklistExists, name, format)
	} else if !shared.IsNotFound(err) {
		return err
	}

	result := r.engine.ApplyDeckUpdate(ctx, models.DeckTarget{Name: name, Format: format, URL: url})
	if result.HasErrors() {
		return errors.New(result.Errors[0])
	}
	for _, msg := range result.InfoMessages {
		r.logger.Info(msg)
	}

	if total := result.TotalCardsToOrder(); total > 0 {
		return r.writePlain("Added deck '%s' (%s) - need to order %d cards\n", name, format, total)
	}
	return r.writePlain("Added deck '%s' (%s)\n", name, format)
}

// DeckUpdate previews or applies a refetch of a tracked deck, from its stored URL unless one is given.
func (r *Runner) DeckUpdate(ctx context.Context, cmd *cli.Command) error {
	name, err := deckName(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	deck, err := r.findDeck(name, cmd.String("format"))
	if err != nil {
		return err
	}

	target := models.DeckTarget{Name: deck.Name, Format: deck.Format, URL: deck.URL}
	if url := strings.TrimSpace(cmd.Args().Get(1)); url != "" {
		target.URL = url
	}

	preview := cmd.Bool("preview")
	var result *tasks.DeckUpdatePreview
	if preview {
		r.logger.Info("previewing update", "deck", deck.Label())
		result = r.engine.PreviewDeckUpdate(ctx, target)
	} else {
		r.logger.Info("updating", "deck", deck.Label())
		result = r.engine.ApplyDeckUpdate(ctx, target)
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(result, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else if preview {
		r.writeBytes(formatter.PreviewToText(result))
	} else {
		r.writeBytes(formatter.SummaryToText(result))
	}

	if result.HasErrors() {
		return errors.New(result.Errors[0])
	}
	if preview && !cmd.Bool("json") {
		return r.writePlain("\nThis was a preview. Remove --preview to apply changes.\n")
	}
	return nil
}

// DeckDelete releases a deck's cards and stops tracking it.
func (r *Runner) DeckDelete(ctx context.Context, cmd *cli.Command) error {
	name, err := deckName(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	deck, err := r.findDeck(name, cmd.String("format"))
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("Delete deck '%s' (%s) and free its cards? (y/N): ", deck.Name, deck.Format)
	if !cmd.Bool("confirm") && !r.confirm(prompt) {
		return r.writePlain("Cancelled\n")
	}

	if err := r.engine.DeleteDeck(deck); err != nil {
		return fmt.Errorf("failed to delete deck '%s': %w", deck.Name, err)
	}
	return r.writePlain("Deleted deck '%s' and freed its cards\n", deck.Name)
}

// DeckBatch previews or applies every deck of a YAML batch file.
func (r *Runner) DeckBatch(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: batch file", shared.ErrMissingArgument)
	}

	targets, err := shared.LoadBatchConfig(path)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("%w: no decks found in %s", shared.ErrInvalidInput, path)
	}
	if err := r.open(); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, len(targets)*8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Phase == tasks.Done {
				r.logger.Info(update.Message)
				continue
			}
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}()

	preview := cmd.Bool("preview")
	var result *tasks.BatchUpdatePreview
	if preview {
		r.logger.Info("previewing batch", "decks", len(targets))
		result = r.engine.PreviewBatchUpdate(ctx, targets, progress)
	} else {
		r.logger.Info("updating batch", "decks", len(targets))
		result = r.engine.ApplyBatchUpdate(ctx, targets, progress)
	}
	close(progress)
	<-done

	switch {
	case cmd.Bool("json"):
		if err := r.writeJSON(result, cmd.Bool("pretty")); err != nil {
			return err
		}
	case preview:
		r.writeBytes(formatter.BatchPreviewToText(result))
	default:
		r.writeBytes(formatter.BatchSummaryToText(result))
	}

	if orderFile := cmd.String("order-file"); orderFile != "" {
		if order := result.TotalOrder(); len(order) > 0 {
			if err := formatter.WriteOrderFile(ctx, orderFile, order, r.orderOptions(cmd)); err != nil {
				return err
			}
			r.logger.Info("✓ Order written", "path", orderFile)
		}
	}

	if n := result.ErrorCount(); n > 0 {
		r.logger.Warnf("%d decks had errors", n)
		return nil
	}
	if preview && !cmd.Bool("json") {
		return r.writePlain("\nThis was a preview. Remove --preview to apply changes.\n")
	}
	return nil
}

func (r *Runner) orderOptions(cmd *cli.Command) formatter.OrderOptions {
	tokens := !cmd.Bool("no-tokens")
	return formatter.OrderOptions{
		IncludeTokens: tokens,
		FetchTokens:   tokens,
		Resolver:      r.resolver,
		GenericTokens: r.config.Order.GenericTokens,
	}
}

// DeckOrder renders the cards missing for a tracked deck, a decklist URL or a batch file.
func (r *Runner) DeckOrder(ctx context.Context, cmd *cli.Command) error {
	deck, url, yamlPath := cmd.String("deck"), cmd.String("url"), cmd.String("yaml")

	sources := 0
	for _, s := range []string{deck, url, yamlPath} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("%w: exactly one of --deck, --url or --yaml is required", shared.ErrInvalidArgument)
	}
	if url != "" && cmd.String("format") == "" {
		return fmt.Errorf("%w: --format is required when using --url", shared.ErrMissingArgument)
	}

	var targets []models.DeckTarget
	if yamlPath != "" {
		var err error
		if targets, err = shared.LoadBatchConfig(yamlPath); err != nil {
			return err
		}
	}

	if err := r.open(); err != nil {
		return err
	}

	var order models.CardMap
	switch {
	case deck != "":
		found, err := r.findDeck(deck, cmd.String("format"))
		if err != nil {
			return err
		}
		target := models.DeckTarget{Name: found.Name, Format: found.Format, URL: found.URL}
		if order, err = r.engine.OrderForDeck(ctx, target); err != nil {
			return err
		}
	case url != "":
		var err error
		target := models.DeckTarget{Name: "temp-order", Format: cmd.String("format"), URL: url}
		if order, err = r.engine.OrderForDeck(ctx, target); err != nil {
			return err
		}
	default:
		result := r.engine.PreviewBatchUpdate(ctx, targets, nil)
		for _, update := range result.DeckUpdates {
			for _, msg := range update.Errors {
				r.logger.Warn(msg, "deck", update.Label())
			}
		}
		order = result.TotalOrder()
	}

	opts := r.orderOptions(cmd)
	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteOrderFile(ctx, output, order, opts); err != nil {
			return err
		}
		return r.writePlain("Order written to %s\n", output)
	}

	text, err := formatter.OrderToText(ctx, order, opts)
	if err != nil {
		return err
	}
	return r.writeBytes(text)
}

// DeckExport writes a tracked deck as a CubeCobra CSV upload.
func (r *Runner) DeckExport(ctx context.Context, cmd *cli.Command) error {
	name, err := deckName(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	deck, err := r.findDeck(name, cmd.String("format"))
	if err != nil {
		return err
	}
	cards, err := r.decks.Cards(deck.ID)
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteCubeCSVFile(output, cards); err != nil {
			return err
		}
		return r.writePlain("Exported %d cards from '%s' to %s\n", cards.Total(), deck.Name, output)
	}
	return r.writeBytes(formatter.CubeCSV(cards))
}
