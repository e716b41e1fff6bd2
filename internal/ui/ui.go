package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/netdecker/internal/formatter"
	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DeckListView ViewState = iota
	CardListView
	PreviewView
	ApplyView
	ResultView
)

// DeckSource lists tracked decks and their compositions.
type DeckSource interface {
	List() ([]*models.Decklist, error)
	Cards(id string) (models.CardMap, error)
}

// Stock reports free copies of a card.
type Stock interface {
	Available(name string) (int, error)
}

// Engine previews and applies deck updates.
type Engine interface {
	PreviewDeckUpdate(ctx context.Context, target models.DeckTarget) *tasks.DeckUpdatePreview
	ApplyDeckUpdate(ctx context.Context, target models.DeckTarget) *tasks.DeckUpdatePreview
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	decks    DeckSource
	stock    Stock
	engine   Engine
	width    int
	height   int
	deckList list.Model
	cardList list.Model
	selected *models.Decklist
	preview  *tasks.DeckUpdatePreview
	result   *tasks.DeckUpdatePreview
	loading  bool
	spinner  spinner.Model
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, decks DeckSource, stock Stock, engine Engine) *Model {
	return &Model{
		ctx:      ctx,
		view:     DeckListView,
		decks:    decks,
		stock:    stock,
		engine:   engine,
		deckList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		cardList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init loads the tracked decks.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.fetchDecks())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.deckList.SetSize(msg.Width-4, msg.Height-8)
		m.cardList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.loading {
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.view {
		case DeckListView:
			return m.handleDeckListKeys(msg)
		case CardListView:
			return m.handleCardListKeys(msg)
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	m.loading = false

	switch msg.kind {
	case MsgDecksFetched:
		data := msg.data.(decksFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.decks))
		for i, deck := range data.decks {
			items[i] = deckItem{deck: deck}
		}
		m.deckList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.deckList.Title = "Decklists"
		m.deckList.SetSize(m.width-4, m.height-8)
		m.view = DeckListView

	case MsgCardsFetched:
		data := msg.data.(cardsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.selected = data.deck
		items := make([]list.Item, len(data.cards))
		for i, card := range data.cards {
			items[i] = card
		}
		m.cardList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.cardList.Title = fmt.Sprintf("Cards in '%s'", data.deck.Label())
		m.cardList.SetSize(m.width-4, m.height-8)
		m.view = CardListView

	case MsgPreviewReady:
		m.preview = msg.data.(*tasks.DeckUpdatePreview)
		m.view = PreviewView

	case MsgApplyComplete:
		m.result = msg.data.(*tasks.DeckUpdatePreview)
		m.view = ResultView
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}
	if m.loading {
		return fmt.Sprintf("%s %s", m.spinner.View(), styles.help.Render(m.loadingText()))
	}

	switch m.view {
	case DeckListView:
		return m.renderDeckList()
	case CardListView:
		return m.renderCardList()
	case PreviewView:
		return m.renderPreview()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) loadingText() string {
	switch m.view {
	case CardListView:
		return "Fetching decklist..."
	case PreviewView, ApplyView:
		return "Applying update..."
	default:
		return "Loading..."
	}
}

func (m *Model) handleDeckListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.deckList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.deckList, cmd = m.deckList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.deckList.SelectedItem().(deckItem); ok {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetchCards(item.deck))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.deckList, cmd = m.deckList.Update(msg)
	return m, cmd
}

func (m *Model) handleCardListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = DeckListView
		return m, nil
	case key.Matches(msg, m.keys.update), key.Matches(msg, m.keys.enter):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.previewUpdate())
	}

	var cmd tea.Cmd
	m.cardList, cmd = m.cardList.Update(msg)
	return m, cmd
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.preview = nil
		m.view = CardListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		if m.preview == nil || m.preview.HasErrors() {
			return m, nil
		}
		m.view = ApplyView
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.applyUpdate())
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.selected = nil
		m.preview = nil
		m.result = nil
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchDecks())
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case DeckListView:
		m.deckList, cmd = m.deckList.Update(msg)
	case CardListView:
		m.cardList, cmd = m.cardList.Update(msg)
	}
	return m, cmd
}

func (m *Model) target() models.DeckTarget {
	return models.DeckTarget{Name: m.selected.Name, Format: m.selected.Format, URL: m.selected.URL}
}

func (m *Model) fetchDecks() tea.Cmd {
	return func() tea.Msg {
		decks, err := m.decks.List()
		return decksFetchedMsg(decks, err)
	}
}

func (m *Model) fetchCards(deck *models.Decklist) tea.Cmd {
	return func() tea.Msg {
		cards, err := m.decks.Cards(deck.ID)
		if err != nil {
			return cardsFetchedMsg(deck, nil, err)
		}

		items := make([]cardItem, 0, len(cards))
		for _, name := range cards.Names() {
			available, err := m.stock.Available(name)
			if err != nil {
				return cardsFetchedMsg(deck, nil, err)
			}
			items = append(items, cardItem{name: name, quantity: cards[name], available: available})
		}
		return cardsFetchedMsg(deck, items, nil)
	}
}

func (m *Model) previewUpdate() tea.Cmd {
	target := m.target()
	return func() tea.Msg {
		return previewReadyMsg(m.engine.PreviewDeckUpdate(m.ctx, target))
	}
}

func (m *Model) applyUpdate() tea.Cmd {
	target := m.target()
	return func() tea.Msg {
		return applyCompleteMsg(m.engine.ApplyDeckUpdate(m.ctx, target))
	}
}

func (m *Model) renderDeckList() string {
	if len(m.deckList.Items()) == 0 {
		return fmt.Sprintf("%s\n\n%s",
			styles.warn.Render("No decks tracked yet. Add one with 'netdecker deck add'."),
			m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.deckList.View(), helpView)
}

func (m *Model) renderCardList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.update, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.cardList.View(), helpView)
}

func (m *Model) renderPreview() string {
	title := styles.title.Render(fmt.Sprintf("Update '%s' from %s?", m.selected.Label(), m.selected.URL))
	body := styles.preview(string(formatter.PreviewToText(m.preview)))

	keys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	if m.preview.HasErrors() {
		keys = []key.Binding{m.keys.back, m.keys.quit}
	}
	return fmt.Sprintf("%s\n%s\n%s", title, body, m.help.ShortHelpView(keys))
}

func (m *Model) renderResult() string {
	title := styles.ok.Render("✓ Update Applied")
	if m.result.HasErrors() {
		title = styles.err.Render("✗ Update Failed")
	}
	body := styles.preview(string(formatter.SummaryToText(m.result)))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, body, helpView)
}
