package tasks

import (
	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
)

// DeckSwaps is the difference between a deck's current and target composition.
type DeckSwaps struct {
	ToAdd    models.CardMap `json:"add"`
	ToRemove models.CardMap `json:"remove"`
}

// HasChanges reports whether any card is added or removed.
func (s DeckSwaps) HasChanges() bool {
	return len(s.ToAdd) > 0 || len(s.ToRemove) > 0
}

// ChangeCount is the number of distinct cards added or removed.
func (s DeckSwaps) ChangeCount() int {
	return len(s.ToAdd) + len(s.ToRemove)
}

type keyedEntry struct {
	name string
	qty  int
}

// keyed folds cards by [shared.CardKey]. The first spelling in sorted order wins and
// quantities of names that only differ in case are summed.
func keyed(cards models.CardMap) map[string]keyedEntry {
	out := make(map[string]keyedEntry, len(cards))
	for _, name := range cards.Names() {
		key := shared.CardKey(name)
		if entry, ok := out[key]; ok {
			entry.qty += cards[name]
			out[key] = entry
			continue
		}
		out[key] = keyedEntry{name: name, qty: cards[name]}
	}
	return out
}

// ComputeSwaps returns what must be added to and removed from current to reach target.
//
// Names are compared case-insensitively. Additions keep the target's spelling and removals
// keep the current spelling.
func ComputeSwaps(current, target models.CardMap) DeckSwaps {
	swaps := DeckSwaps{ToAdd: make(models.CardMap), ToRemove: make(models.CardMap)}
	have := keyed(current)
	want := keyed(target)

	for key, w := range want {
		h, ok := have[key]
		switch {
		case !ok && w.qty > 0:
			swaps.ToAdd[w.name] = w.qty
		case ok && w.qty > h.qty:
			swaps.ToAdd[w.name] = w.qty - h.qty
		}
	}

	for key, h := range have {
		w, ok := want[key]
		switch {
		case !ok && h.qty > 0:
			swaps.ToRemove[h.name] = h.qty
		case ok && h.qty > w.qty:
			swaps.ToRemove[h.name] = h.qty - w.qty
		}
	}
	return swaps
}
