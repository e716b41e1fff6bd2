// package tasks implements deck reconciliation against the proxy card ledger.
//
// The core abstraction is DeckEngine, which previews and applies deck updates one at a time or in batches.
// Batch operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/services"
	"github.com/desertthunder/netdecker/internal/shared"
)

// Inventory is the part of the card ledger the engine writes to when provisioning.
type Inventory interface {
	Add(cards models.CardMap) error
	Available(name string) (int, error)
}

// Allocation commits ledger stock to decks.
type Allocation interface {
	Allocate(requested models.CardMap) (models.CardMap, error)
	CalculateNeeded(required models.CardMap) (models.CardMap, error)
	ReleaseDecklist(decklistID string) error
}

// DecklistStore persists decks and their compositions.
type DecklistStore interface {
	GetByNameFormat(name, format string) (*models.Decklist, error)
	Cards(id string) (models.CardMap, error)
	Create(deck *models.Decklist) error
	UpdateCards(id string, cards models.CardMap) error
	UpdateURL(id, url string) (bool, error)
	Delete(id string) (bool, error)
}

// DeckEngine reconciles decklists fetched from the web with the ledger and stored decks.
//
// Apply never fails for lack of stock: shortages are added to the ledger as newly created proxies
// and allocated, so the ledger reflects cards that are on order.
type DeckEngine struct {
	fetcher    services.DecklistFetcher
	inventory  Inventory
	allocation Allocation
	decks      DecklistStore
	logger     *log.Logger
}

// NewDeckEngine creates a DeckEngine. A nil logger discards output.
func NewDeckEngine(fetcher services.DecklistFetcher, inventory Inventory, allocation Allocation, decks DecklistStore, logger *log.Logger) *DeckEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &DeckEngine{
		fetcher:    fetcher,
		inventory:  inventory,
		allocation: allocation,
		decks:      decks,
		logger:     logger,
	}
}

func normalizeTarget(target models.DeckTarget) models.DeckTarget {
	if target.Format == "" {
		target.Format = models.DefaultFormat
	}
	return target
}

// PreviewDeckUpdate computes the swaps and order for target without changing anything.
//
// Failures are recorded as "Error processing deck: ..." in the preview's errors, never returned.
func (e *DeckEngine) PreviewDeckUpdate(ctx context.Context, target models.DeckTarget) *DeckUpdatePreview {
	return e.previewDeck(ctx, normalizeTarget(target), tracker{})
}

func (e *DeckEngine) previewDeck(ctx context.Context, target models.DeckTarget, t tracker) *DeckUpdatePreview {
	preview := NewDeckUpdatePreview(target)
	logger := shared.WithLogger(e.logger, "deck", preview.Label())

	logger.Debug("previewing deck update", "url", target.URL)
	if err := e.preview(ctx, target, preview, t); err != nil {
		logger.Warn("deck preview failed", "error", err)
		failed := NewDeckUpdatePreview(target)
		failed.Errors = append(failed.Errors, fmt.Sprintf("Error processing deck: %v", err))
		return failed
	}
	return preview
}

func (e *DeckEngine) preview(ctx context.Context, target models.DeckTarget, preview *DeckUpdatePreview, t tracker) error {
	t.send(fetchDeckUpdate(t, preview.Label()))
	cards, err := e.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		return err
	}

	deck, err := e.decks.GetByNameFormat(target.Name, target.Format)
	if errors.Is(err, shared.ErrDecklistNotFound) {
		t.send(diffDeckUpdate(t, preview.Label(), false))
		needed, err := e.allocation.CalculateNeeded(cards)
		if err != nil {
			return err
		}
		preview.Swaps.ToAdd = cards.Positive()
		preview.CardsToOrder = needed
		return nil
	}
	if err != nil {
		return err
	}

	t.send(diffDeckUpdate(t, preview.Label(), true))
	current, err := e.decks.Cards(deck.ID)
	if err != nil {
		return err
	}

	swaps := ComputeSwaps(current, cards)
	simulated, err := e.simulateRelease(swaps.ToRemove)
	if err != nil {
		return err
	}
	needed, err := e.orderNeeds(swaps.ToAdd, simulated)
	if err != nil {
		return err
	}

	preview.Swaps = swaps
	preview.CardsToOrder = needed
	return nil
}

// simulateRelease forecasts availability of the removed cards as if they were released.
func (e *DeckEngine) simulateRelease(removed models.CardMap) (models.CardMap, error) {
	simulated := make(models.CardMap, len(removed))
	for _, name := range removed.Names() {
		available, err := e.inventory.Available(name)
		if err != nil {
			return nil, err
		}
		simulated[name] = available + removed[name]
	}
	return simulated, nil
}

// orderNeeds returns the part of each addition not covered by simulated availability.
// Cards without a simulated value are checked against the ledger directly.
func (e *DeckEngine) orderNeeds(additions, simulated models.CardMap) (models.CardMap, error) {
	needs := make(models.CardMap)
	for _, name := range additions.Names() {
		available := simulated[name]
		if available == 0 {
			var err error
			if available, err = e.inventory.Available(name); err != nil {
				return nil, err
			}
		}
		if available < additions[name] {
			needs[name] = additions[name] - available
		}
	}
	return needs, nil
}

// ApplyDeckUpdate previews target, then persists the fetched composition and allocates it.
//
// A preview with errors is returned untouched. The decklist is fetched again for the apply step.
// Failures while applying are recorded as "Error applying update: ..." and can leave partial state.
func (e *DeckEngine) ApplyDeckUpdate(ctx context.Context, target models.DeckTarget) *DeckUpdatePreview {
	return e.applyDeck(ctx, normalizeTarget(target), tracker{})
}

func (e *DeckEngine) applyDeck(ctx context.Context, target models.DeckTarget, t tracker) *DeckUpdatePreview {
	preview := e.previewDeck(ctx, target, t)
	if preview.HasErrors() {
		return preview
	}

	logger := shared.WithLogger(e.logger, "deck", preview.Label())
	logger.Debug("applying deck update")
	if err := e.apply(ctx, target, preview, t); err != nil {
		logger.Warn("deck update failed", "error", err)
		preview.Errors = append(preview.Errors, fmt.Sprintf("Error applying update: %v", err))
	}
	return preview
}

func (e *DeckEngine) apply(ctx context.Context, target models.DeckTarget, preview *DeckUpdatePreview, t tracker) error {
	cards, err := e.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		return err
	}
	cards = cards.Positive()

	deck, err := e.decks.GetByNameFormat(target.Name, target.Format)
	switch {
	case err == nil:
		if err := e.allocation.ReleaseDecklist(deck.ID); err != nil {
			return fmt.Errorf("failed to release deck: %w", err)
		}
		if err := e.decks.UpdateCards(deck.ID, cards); err != nil {
			return fmt.Errorf("failed to update deck cards: %w", err)
		}
		if _, err := e.decks.UpdateURL(deck.ID, target.URL); err != nil {
			return fmt.Errorf("failed to update deck url: %w", err)
		}
	case errors.Is(err, shared.ErrDecklistNotFound):
		deck = &models.Decklist{Name: target.Name, Format: target.Format, URL: target.URL}
		if err := e.decks.Create(deck); err != nil {
			return fmt.Errorf("failed to create deck: %w", err)
		}
		if err := e.decks.UpdateCards(deck.ID, cards); err != nil {
			return fmt.Errorf("failed to update deck cards: %w", err)
		}
	default:
		return err
	}

	return e.allocate(cards, preview, t)
}

// allocate commits cards, creating any shortage as new proxies and allocating it again.
func (e *DeckEngine) allocate(cards models.CardMap, preview *DeckUpdatePreview, t tracker) error {
	t.send(allocateUpdate(t, cards.Total()))
	shortage, err := e.allocation.Allocate(cards)
	if err != nil {
		return err
	}
	if len(shortage) == 0 {
		return nil
	}

	t.send(provisionUpdate(t, shortage.Total()))
	if err := e.inventory.Add(shortage); err != nil {
		return fmt.Errorf("failed to create proxy cards: %w", err)
	}
	remaining, err := e.allocation.Allocate(shortage)
	if err != nil {
		return err
	}

	if n := remaining.Total(); n > 0 {
		preview.Errors = append(preview.Errors, fmt.Sprintf("Warning: Could not fully allocate %d cards", n))
	} else {
		preview.InfoMessages = append(preview.InfoMessages, fmt.Sprintf("Info: Created %d proxy cards for allocation", shortage.Total()))
	}
	return nil
}

// PreviewBatchUpdate previews every target independently, in input order.
func (e *DeckEngine) PreviewBatchUpdate(ctx context.Context, targets []models.DeckTarget, progress chan<- ProgressUpdate) *BatchUpdatePreview {
	return e.batch(ctx, targets, progress, e.previewDeck)
}

// ApplyBatchUpdate applies every target independently, in input order.
// A failing deck does not stop or roll back the others.
func (e *DeckEngine) ApplyBatchUpdate(ctx context.Context, targets []models.DeckTarget, progress chan<- ProgressUpdate) *BatchUpdatePreview {
	return e.batch(ctx, targets, progress, e.applyDeck)
}

func (e *DeckEngine) batch(ctx context.Context, targets []models.DeckTarget, progress chan<- ProgressUpdate,
	run func(context.Context, models.DeckTarget, tracker) *DeckUpdatePreview,
) *BatchUpdatePreview {
	result := &BatchUpdatePreview{DeckUpdates: make([]*DeckUpdatePreview, 0, len(targets))}
	for i, target := range targets {
		t := tracker{progress: progress, step: i + 1, total: len(targets)}
		preview := run(ctx, normalizeTarget(target), t)
		result.DeckUpdates = append(result.DeckUpdates, preview)
		t.send(doneUpdate(t, preview))
	}
	return result
}

// DeleteDeck frees the deck's allocation and deletes it along with its entries.
func (e *DeckEngine) DeleteDeck(deck *models.Decklist) error {
	if err := e.allocation.ReleaseDecklist(deck.ID); err != nil {
		return fmt.Errorf("failed to release deck: %w", err)
	}
	deleted, err := e.decks.Delete(deck.ID)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", shared.ErrDecklistNotFound, deck.Label())
	}
	return nil
}

// OrderForDeck returns the cards that must be ordered to build target from current stock.
func (e *DeckEngine) OrderForDeck(ctx context.Context, target models.DeckTarget) (models.CardMap, error) {
	preview := e.PreviewDeckUpdate(ctx, target)
	if preview.HasErrors() {
		return nil, errors.New(strings.Join(preview.Errors, "; "))
	}
	return preview.CardsToOrder, nil
}
