// package formatter renders deck previews, card orders and cube exports as text, MPCFill lists and CSV
package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/services"
)

// DefaultGenericTokens are appended to orders when generic tokens are requested.
var DefaultGenericTokens = []string{"Treasure Token", "Beast Token", "Elemental Token"}

// CubeCSVHeaders are the columns of CubeCobra's "Replace with CSV File Upload".
var CubeCSVHeaders = []string{
	"name", "CMC", "Type", "Color", "Set", "Collector Number", "Rarity", "Color Category",
	"status", "Finish", "maybeboard", "image URL", "image Back URL", "tags", "Notes", "MTGO ID",
}

// OrderOptions controls the token section of an order.
type OrderOptions struct {
	IncludeTokens bool                   // Append GenericTokens not already listed
	FetchTokens   bool                   // Look up the tokens each ordered card creates
	Resolver      services.TokenResolver // Used when FetchTokens is set
	GenericTokens []string               // Defaults to DefaultGenericTokens
}

// OrderToText renders order in MPCFill format: "<quantity> <name>" lines sorted by name.
//
// A "# Tokens" section follows when tokens were resolved or generic tokens were requested.
// Resolved tokens come first, then generic tokens that were not resolved.
func OrderToText(ctx context.Context, order models.CardMap, opts OrderOptions) ([]byte, error) {
	var buf bytes.Buffer
	for _, name := range order.Names() {
		if order[name] > 0 {
			fmt.Fprintf(&buf, "%d %s\n", order[name], name)
		}
	}

	tokens := make(models.CardMap)
	if opts.FetchTokens && opts.Resolver != nil && len(order) > 0 {
		resolved, err := opts.Resolver.ResolveTokens(ctx, order.Names())
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tokens: %w", err)
		}
		tokens = resolved
	}

	if !opts.IncludeTokens && len(tokens) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("\n# Tokens\n")
	for _, name := range tokens.Names() {
		fmt.Fprintf(&buf, "%d %s\n", tokens[name], name)
	}

	if opts.IncludeTokens {
		generic := opts.GenericTokens
		if len(generic) == 0 {
			generic = DefaultGenericTokens
		}
		for _, name := range generic {
			if _, ok := tokens[name]; !ok {
				fmt.Fprintf(&buf, "1 %s\n", name)
			}
		}
	}
	return buf.Bytes(), nil
}

// CubeCSV renders cards as a CubeCobra CSV: one row per copy, sorted by name, only name set.
// Every field is quoted and rows end with CRLF.
func CubeCSV(cards models.CardMap) []byte {
	var buf bytes.Buffer
	writeQuotedRow(&buf, CubeCSVHeaders)

	row := make([]string, len(CubeCSVHeaders))
	for _, name := range cards.Names() {
		row[0] = name
		for range cards[name] {
			writeQuotedRow(&buf, row)
		}
	}
	return buf.Bytes()
}

func writeQuotedRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}

// WriteOrderFile writes the MPCFill order to path.
func WriteOrderFile(ctx context.Context, path string, order models.CardMap, opts OrderOptions) error {
	data, err := OrderToText(ctx, order, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write order file: %w", err)
	}
	return nil
}

// WriteCubeCSVFile writes the cube CSV for cards to path.
func WriteCubeCSVFile(path string, cards models.CardMap) error {
	if err := os.WriteFile(path, CubeCSV(cards), 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}
