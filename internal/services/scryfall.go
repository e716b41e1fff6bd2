package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
	"golang.org/x/time/rate"
)

// ScryfallCard is the subset of a Scryfall card object used for token lookups.
type ScryfallCard struct {
	Name     string                `json:"name"`
	TypeLine string                `json:"type_line"`
	AllParts []ScryfallRelatedCard `json:"all_parts"`
}

// ScryfallRelatedCard is an entry of a card's all_parts list.
type ScryfallRelatedCard struct {
	Component string `json:"component"`
	Name      string `json:"name"`
	TypeLine  string `json:"type_line"`
}

// ScryfallOpts configures a [ScryfallService].
type ScryfallOpts struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration // per lookup, 10s by default
	Interval   time.Duration // minimum spacing between lookups, 0 disables limiting
	HTTPClient *http.Client
	Logger     *log.Logger
}

// ScryfallService resolves the tokens a card creates through the Scryfall API.
type ScryfallService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewScryfallService creates a ScryfallService.
func NewScryfallService(opts ScryfallOpts) *ScryfallService {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	return &ScryfallService{
		baseURL:    baseOr(opts.BaseURL, "https://api.scryfall.com"),
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     opts.Logger,
	}
}

// Card looks up a card by exact name.
func (s *ScryfallService) Card(ctx context.Context, name string) (*ScryfallCard, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/cards/named?exact=%s", s.baseURL, url.QueryEscape(name))
	resp, err := get(ctx, s.httpClient, endpoint, s.userAgent, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var card ScryfallCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("failed to decode scryfall card: %w", err)
	}
	return &card, nil
}

// ResolveTokens looks up each distinct card once and collects the names of the tokens it makes.
//
// Each token is suggested once no matter how many cards create it. Failed lookups are logged
// and skipped; only cancellation of ctx is returned, together with the tokens found so far.
func (s *ScryfallService) ResolveTokens(ctx context.Context, names []string) (models.CardMap, error) {
	tokens := make(models.CardMap)

	distinct := slices.Clone(names)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	for _, name := range distinct {
		if err := ctx.Err(); err != nil {
			return tokens, err
		}

		card, err := s.Card(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return tokens, ctx.Err()
			}
			s.logger.Warn("token lookup failed", "card", name, "error", err)
			continue
		}

		for _, part := range card.AllParts {
			if part.Component == "token" && part.Name != "" {
				tokens[part.Name] = 1
			}
		}
	}

	return tokens, nil
}
