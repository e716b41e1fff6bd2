// package services defines the remote collaborators of the reconciliation workflow
//
// Decklist sites (CubeCobra, MTGGoldfish, Moxfield) and Scryfall
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/netdecker/internal/models"
)

// DecklistFetcher turns a decklist URL into the card quantities it lists.
type DecklistFetcher interface {
	Fetch(ctx context.Context, url string) (models.CardMap, error)
}

// TokenResolver returns the tokens created by the given cards, one copy per distinct token.
type TokenResolver interface {
	ResolveTokens(ctx context.Context, names []string) (models.CardMap, error)
}

// get issues a GET request and returns the response when the status is 2xx.
// The caller must close the body.
func get(ctx context.Context, client *http.Client, url, userAgent, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}
