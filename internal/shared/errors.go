package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Decklist source errors
	ErrDomainNotSupported    = fmt.Errorf("Domain not supported. Supported domains: %s", strings.Join(SupportedDomains, ", "))
	ErrUnableToFetchDecklist = fmt.Errorf("unable to fetch decklist")

	// Store errors
	ErrCardNotFound         = fmt.Errorf("card not found")
	ErrDecklistNotFound     = fmt.Errorf("decklist not found")
	ErrDecklistExists       = fmt.Errorf("decklist already exists")
	ErrInsufficientQuantity = fmt.Errorf("insufficient quantity")
	ErrServiceUnavailable   = fmt.Errorf("service unavailable")
	ErrConfirmationRequired = fmt.Errorf("confirmation required")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// SupportedDomains lists the decklist sites the fetcher understands.
var SupportedDomains = []string{"cubecobra.com", "mtggoldfish.com", "moxfield.com"}

// CardListInputError reports every malformed line of a textual card list.
type CardListInputError struct {
	Lines []string
}

func (e *CardListInputError) Error() string {
	var b strings.Builder
	b.WriteString("Error parsing provided card list... <quantity> <cardname>...")
	for _, line := range e.Lines {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

func (e *CardListInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InsufficientQuantityError is returned when a removal or release would break the
// owned/available bounds of a card.
type InsufficientQuantityError struct {
	Name      string
	Requested int
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity for %s: requested %d, have %d", e.Name, e.Requested, e.Available)
}

func (e *InsufficientQuantityError) Is(target error) bool {
	return target == ErrInsufficientQuantity
}

// IsNotFound reports whether err is one of the store's not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrDecklistNotFound)
}
