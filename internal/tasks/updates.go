package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a batch operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current deck number
	Total   int    // Total decks in the batch
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, the finished preview on [Done]
}

// Operation phase enumeration
type Phase int

const (
	FetchDeck Phase = iota
	DiffDeck
	AllocateCards
	ProvisionCards
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchDeck:
		return "fetch"
	case DiffDeck:
		return "diff"
	case AllocateCards:
		return "allocate"
	case ProvisionCards:
		return "provision"
	case Done:
		return "done"
	default:
		return ""
	}
}

// tracker positions progress updates for one deck of a batch. A nil channel drops every update.
type tracker struct {
	progress chan<- ProgressUpdate
	step     int
	total    int
}

// send delivers an update without blocking; a full channel skips it.
func (t tracker) send(update ProgressUpdate) {
	if t.progress == nil {
		return
	}
	update.Step = t.step
	update.Total = t.total
	select {
	case t.progress <- update:
	default:
	}
}

func (t tracker) prefix() string {
	return fmt.Sprintf("[%d/%d]", t.step, t.total)
}

func fetchDeckUpdate(t tracker, target string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchDeck, Message: fmt.Sprintf("%s Fetching %s...", t.prefix(), target)}
}

func diffDeckUpdate(t tracker, target string, exists bool) ProgressUpdate {
	if !exists {
		return ProgressUpdate{Phase: DiffDeck, Message: fmt.Sprintf("%s New deck %s", t.prefix(), target)}
	}
	return ProgressUpdate{Phase: DiffDeck, Message: fmt.Sprintf("%s Comparing %s...", t.prefix(), target)}
}

func allocateUpdate(t tracker, cards int) ProgressUpdate {
	return ProgressUpdate{Phase: AllocateCards, Message: fmt.Sprintf("%s Allocating %d cards...", t.prefix(), cards)}
}

func provisionUpdate(t tracker, cards int) ProgressUpdate {
	return ProgressUpdate{Phase: ProvisionCards, Message: fmt.Sprintf("%s Creating %d proxy cards...", t.prefix(), cards)}
}

func doneUpdate(t tracker, preview *DeckUpdatePreview) ProgressUpdate {
	msg := fmt.Sprintf("%s ✓ %s - %d changes", t.prefix(), preview.Label(), preview.Swaps.ChangeCount())
	if preview.HasErrors() {
		msg = fmt.Sprintf("%s ✗ %s: %s", t.prefix(), preview.Label(), preview.Errors[0])
	}
	return ProgressUpdate{Phase: Done, Message: msg, Data: preview}
}
