package shared

import (
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/netdecker/internal/models"
	"gopkg.in/yaml.v3"
)

// BatchConfig is the YAML document consumed by "deck batch" and "deck order --yaml".
//
//	decklists:
//	  - format: Modern
//	    decks:
//	      - name: Burn
//	        url: https://www.moxfield.com/decks/abc
type BatchConfig struct {
	Decklists []BatchGroup `yaml:"decklists"`
}

// BatchGroup is a set of decks sharing a format.
type BatchGroup struct {
	Format string      `yaml:"format"`
	Decks  []BatchDeck `yaml:"decks"`
}

// BatchDeck describes one remote deck.
type BatchDeck struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Targets flattens the document into deck targets in document order.
//
// Groups without a format use [models.DefaultFormat].
func (c *BatchConfig) Targets() ([]models.DeckTarget, error) {
	var targets []models.DeckTarget
	for gi, group := range c.Decklists {
		format := strings.TrimSpace(group.Format)
		if format == "" {
			format = models.DefaultFormat
		}
		for di, deck := range group.Decks {
			name := strings.TrimSpace(deck.Name)
			url := strings.TrimSpace(deck.URL)
			if name == "" || url == "" {
				return nil, fmt.Errorf("%w: decklists[%d].decks[%d] needs both name and url", ErrInvalidInput, gi, di)
			}
			targets = append(targets, models.DeckTarget{Name: name, Format: format, URL: url})
		}
	}
	return targets, nil
}

// ParseBatchConfig decodes a batch YAML document.
func ParseBatchConfig(data []byte) ([]models.DeckTarget, error) {
	var config BatchConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse batch config: %w", err)
	}
	return config.Targets()
}

// LoadBatchConfig reads and decodes the batch YAML document at path.
func LoadBatchConfig(path string) ([]models.DeckTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch config: %w", err)
	}
	return ParseBatchConfig(data)
}
