package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette(Scheme{
	Title:   "#7D56F4",
	OK:      "#04B575",
	Err:     "#FF4F4F",
	Warn:    "#FFA500",
	Help:    "#626262",
	Added:   "#04B575",
	Removed: "#FF4F4F",
})

// Scheme names the hex colors of a [Palette].
type Scheme struct {
	Title, OK, Err, Warn, Help string
	Added, Removed             string // preview lines that add or remove cards
}

// Palette is the stylesheet of the deck browser.
type Palette struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	help    lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
}

func NewPalette(s Scheme) *Palette {
	return &Palette{
		title:   bold(s.Title).MarginBottom(1),
		ok:      bold(s.OK),
		err:     bold(s.Err),
		warn:    fg(s.Warn),
		help:    fg(s.Help).Italic(true),
		added:   fg(s.Added),
		removed: fg(s.Removed),
	}
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func bold(color string) lipgloss.Style {
	return fg(color).Bold(true)
}

// stock colors a spare-copy count: none left is a warning.
func (p *Palette) stock(text string, available int) string {
	if available > 0 {
		return p.ok.Render(text)
	}
	return p.warn.Render(text)
}

// preview colors rendered preview text line by line: "+" additions, "-" removals and error lines.
func (p *Palette) preview(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "+"):
			lines[i] = p.added.Render(line)
		case strings.HasPrefix(trimmed, "-") && !strings.HasPrefix(trimmed, "--"):
			lines[i] = p.removed.Render(line)
		case strings.HasPrefix(trimmed, "Error"), strings.HasPrefix(trimmed, "Warning"):
			lines[i] = p.err.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
