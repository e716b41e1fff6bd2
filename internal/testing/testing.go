// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
)

// MustOpenDB returns an in-memory database with all migrations applied, closed when the test ends.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// MockFetcher is a test double for the decklist fetcher keyed by URL.
//
// Unknown URLs return Err, or [shared.ErrUnableToFetchDecklist] when Err is nil.
type MockFetcher struct {
	mu    sync.Mutex
	Decks map[string]models.CardMap
	Err   error
	Calls []string
}

// NewMockFetcher creates a MockFetcher serving decks.
func NewMockFetcher(decks map[string]models.CardMap) *MockFetcher {
	if decks == nil {
		decks = make(map[string]models.CardMap)
	}
	return &MockFetcher{Decks: decks}
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (models.CardMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, url)
	if m.Err != nil {
		return nil, m.Err
	}
	cards, ok := m.Decks[url]
	if !ok {
		return nil, shared.ErrUnableToFetchDecklist
	}
	return cards.Clone(), nil
}

// CallCount reports how many times url was fetched.
func (m *MockFetcher) CallCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, call := range m.Calls {
		if call == url {
			n++
		}
	}
	return n
}

// MockTokenResolver returns a fixed token list per card name.
type MockTokenResolver struct {
	Tokens map[string][]string
	Err    error
	Seen   []string
}

func (m *MockTokenResolver) ResolveTokens(ctx context.Context, names []string) (models.CardMap, error) {
	m.Seen = append(m.Seen, names...)
	tokens := make(models.CardMap)
	for _, name := range names {
		for _, token := range m.Tokens[name] {
			tokens[token] = 1
		}
	}
	return tokens, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
