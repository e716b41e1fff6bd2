package shared

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/desertthunder/netdecker/internal/models"
)

// ParseCardList parses "<quantity> <card name>" lines into a [models.CardMap].
//
// Empty lines, comments and lines that do not start with a digit (section headers such as
// "Sideboard") are skipped. Quantities of repeated names are summed. Every malformed line is
// collected into a single [CardListInputError].
func ParseCardList(lines []string) (models.CardMap, error) {
	cards := make(models.CardMap)
	var bad []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if r := []rune(line)[0]; !unicode.IsDigit(r) {
			continue
		}

		qty, name, ok := splitEntry(line)
		if !ok {
			bad = append(bad, line)
			continue
		}
		cards[name] += qty
	}

	if len(bad) > 0 {
		return nil, &CardListInputError{Lines: bad}
	}
	return cards, nil
}

// ParseCardEntries parses CLI arguments shaped like card list lines ("4 Lightning Bolt").
//
// Unlike [ParseCardList] nothing is skipped: every argument must be a valid entry.
func ParseCardEntries(entries []string) (models.CardMap, error) {
	cards := make(models.CardMap)
	var bad []string

	for _, entry := range entries {
		qty, name, ok := splitEntry(strings.TrimSpace(entry))
		if !ok {
			bad = append(bad, entry)
			continue
		}
		cards[name] += qty
	}

	if len(bad) > 0 {
		return nil, &CardListInputError{Lines: bad}
	}
	return cards, nil
}

// ReadCardList parses a card list from r.
func ReadCardList(r io.Reader) (models.CardMap, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read card list: %w", err)
	}
	return ParseCardList(lines)
}

// ReadCardListFile parses the card list stored at path.
func ReadCardListFile(path string) (models.CardMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open card list: %w", err)
	}
	defer f.Close()
	return ReadCardList(f)
}

func splitEntry(line string) (int, string, bool) {
	qtyText, name, found := strings.Cut(line, " ")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return 0, "", false
	}
	qty, err := strconv.Atoi(qtyText)
	if err != nil || qty < 0 {
		return 0, "", false
	}
	return qty, name, true
}
