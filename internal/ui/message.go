package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgDecksFetched MsgKind = iota
	MsgCardsFetched
	MsgPreviewReady
	MsgApplyComplete
)

type decksFetched struct {
	decks []*models.Decklist
	err   error
}

type cardsFetched struct {
	deck  *models.Decklist
	cards []cardItem
	err   error
}

// decksFetchedMsg is the constructor for [MsgDecksFetched]
func decksFetchedMsg(decks []*models.Decklist, err error) Msg {
	return Msg{kind: MsgDecksFetched, data: decksFetched{decks, err}}
}

// cardsFetchedMsg is the constructor for [MsgCardsFetched]
func cardsFetchedMsg(deck *models.Decklist, cards []cardItem, err error) Msg {
	return Msg{kind: MsgCardsFetched, data: cardsFetched{deck, cards, err}}
}

// previewReadyMsg is the constructor for [MsgPreviewReady]
func previewReadyMsg(preview *tasks.DeckUpdatePreview) Msg {
	return Msg{kind: MsgPreviewReady, data: preview}
}

// applyCompleteMsg is the constructor for [MsgApplyComplete]
func applyCompleteMsg(result *tasks.DeckUpdatePreview) Msg {
	return Msg{kind: MsgApplyComplete, data: result}
}
