// Package services talks to the remote sites the reconciliation workflow depends on.
//
// # Decklist Fetcher
//
// [DecklistClient] implements [DecklistFetcher]. It maps a deck URL to the plain text MTGO export
// of its site and parses the download with shared.ParseCardList:
//   - cubecobra.com: {base}/cube/download/mtgo/{id}
//   - mtggoldfish.com: {base}/deck/download/{id}
//   - moxfield.com: {api}/v2/decks/all/{id} for the exportId, then {api}/v3/decks/all/{id}/export
//
// The deck id is always the last path segment of the URL.
//
// # Token Resolver
//
// [ScryfallService] implements [TokenResolver] with one /cards/named lookup per distinct card,
// spaced by a [rate.Limiter] as Scryfall asks API clients to do.
//
// # Error Handling
//
//   - [shared.ErrDomainNotSupported] : URL host is not one of the three supported sites
//   - [shared.ErrUnableToFetchDecklist] : transport failure, non-2xx response, or no Moxfield export id
//   - [shared.CardListInputError] : the downloaded list has malformed lines
//   - [StatusError] : wrapped inside the above with the failing URL and status code
package services
