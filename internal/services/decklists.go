package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	cubeCobraDomain   = "cubecobra.com"
	mtgGoldfishDomain = "mtggoldfish.com"
	moxfieldDomain    = "moxfield.com"
)

// DecklistClientOpts configures a [DecklistClient]. Empty base URLs fall back to the public sites.
type DecklistClientOpts struct {
	CubeCobraURL   string
	MTGGoldfishURL string
	MoxfieldAPIURL string
	UserAgent      string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Logger         *log.Logger
}

// DecklistClient downloads MTGO-format decklists from CubeCobra, MTGGoldfish and Moxfield.
type DecklistClient struct {
	cubeCobraURL   string
	mtgGoldfishURL string
	moxfieldAPIURL string
	userAgent      string
	httpClient     *http.Client
	logger         *log.Logger
}

// NewDecklistClient creates a DecklistClient. A nil HTTPClient gets one bounded by Timeout (30s by default).
func NewDecklistClient(opts DecklistClientOpts) *DecklistClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &DecklistClient{
		cubeCobraURL:   baseOr(opts.CubeCobraURL, "https://www.cubecobra.com"),
		mtgGoldfishURL: baseOr(opts.MTGGoldfishURL, "https://www.mtggoldfish.com"),
		moxfieldAPIURL: baseOr(opts.MoxfieldAPIURL, "https://api2.moxfield.com"),
		userAgent:      opts.UserAgent,
		httpClient:     opts.HTTPClient,
		logger:         opts.Logger,
	}
}

// ParseDeckURL returns the site domain (without "www.") and the deck id, which is the last path segment.
func ParseDeckURL(rawURL string) (domain, deckID string, err error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("%w: %q is not an absolute URL", shared.ErrInvalidArgument, rawURL)
	}

	domain = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	deckID = segments[len(segments)-1]
	if deckID == "" {
		return domain, "", fmt.Errorf("%w: no deck id in %q", shared.ErrInvalidArgument, rawURL)
	}
	return domain, deckID, nil
}

// Fetch downloads the decklist behind rawURL and parses it into card quantities.
func (c *DecklistClient) Fetch(ctx context.Context, rawURL string) (models.CardMap, error) {
	downloadURL, err := c.DownloadURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("downloading decklist", "url", rawURL, "download", downloadURL)

	resp, err := get(ctx, c.httpClient, downloadURL, c.userAgent, "text/plain")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrUnableToFetchDecklist, err)
	}
	defer resp.Body.Close()

	body := transform.NewReader(resp.Body, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cards, err := shared.ReadCardList(body)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// DownloadURL resolves rawURL to the URL of its plain text MTGO export.
//
// Moxfield needs an API round trip to obtain the export id.
func (c *DecklistClient) DownloadURL(ctx context.Context, rawURL string) (string, error) {
	domain, deckID, err := ParseDeckURL(rawURL)
	if err != nil {
		return "", err
	}

	escaped := url.PathEscape(deckID)
	switch domain {
	case cubeCobraDomain:
		return fmt.Sprintf("%s/cube/download/mtgo/%s", c.cubeCobraURL, escaped), nil
	case mtgGoldfishDomain:
		return fmt.Sprintf("%s/deck/download/%s", c.mtgGoldfishURL, escaped), nil
	case moxfieldDomain:
		return c.moxfieldExportURL(ctx, escaped)
	default:
		return "", fmt.Errorf("%w (got %s)", shared.ErrDomainNotSupported, domain)
	}
}

type moxfieldDeck struct {
	Name     string `json:"name"`
	ExportID string `json:"exportId"`
}

func (c *DecklistClient) moxfieldExportURL(ctx context.Context, deckID string) (string, error) {
	resp, err := get(ctx, c.httpClient, fmt.Sprintf("%s/v2/decks/all/%s", c.moxfieldAPIURL, deckID), c.userAgent, "application/json")
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrUnableToFetchDecklist, err)
	}
	defer resp.Body.Close()

	var deck moxfieldDeck
	if err := json.NewDecoder(resp.Body).Decode(&deck); err != nil {
		return "", fmt.Errorf("%w: failed to decode moxfield deck: %w", shared.ErrUnableToFetchDecklist, err)
	}
	if deck.ExportID == "" {
		return "", fmt.Errorf("%w: moxfield deck %s has no export id", shared.ErrUnableToFetchDecklist, deckID)
	}

	return fmt.Sprintf("%s/v3/decks/all/%s/export?format=mtgo&exportId=%s",
		c.moxfieldAPIURL, deckID, url.QueryEscape(deck.ExportID)), nil
}

func baseOr(base, fallback string) string {
	if base == "" {
		return fallback
	}
	return strings.TrimRight(base, "/")
}
