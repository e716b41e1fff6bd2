package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/desertthunder/netdecker/internal/models"
	"github.com/desertthunder/netdecker/internal/shared"
	tu "github.com/desertthunder/netdecker/internal/testing"
)

const burnURL = "https://www.moxfield.com/decks/burn"

type testRunner struct {
	*Runner
	out     *bytes.Buffer
	fetcher *tu.MockFetcher
}

func newTestRunner(t *testing.T, input string) *testRunner {
	t.Helper()

	out := &bytes.Buffer{}
	fetcher := tu.NewMockFetcher(map[string]models.CardMap{
		burnURL: {"Lightning Bolt": 4, "Lava Spike": 4},
	})
	runner := NewRunner(RunnerOpts{
		Config:   shared.DefaultConfig(),
		DB:       tu.MustOpenDB(t),
		Logger:   shared.NewLogger(io.Discard),
		Output:   out,
		Input:    strings.NewReader(input),
		Fetcher:  fetcher,
		Resolver: &tu.MockTokenResolver{Tokens: map[string][]string{"Lava Spike": {"Goblin Token"}}},
	})
	return &testRunner{Runner: runner, out: out, fetcher: fetcher}
}

// run executes args against a fresh command tree and returns what was written.
func (r *testRunner) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	r.out.Reset()
	err := r.app().Run(context.Background(), append([]string{shared.AppName}, args...))
	return r.out.String(), err
}

func (r *testRunner) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := r.run(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			fetcher := tu.NewMockFetcher(nil)
			resolver := &tu.MockTokenResolver{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/tmp/netdecker.toml",
				Logger:     logger,
				Output:     output,
				Fetcher:    fetcher,
				Resolver:   resolver,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/tmp/netdecker.toml" {
				t.Errorf("expected configPath to be set, got %q", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.fetcher != fetcher || runner.resolver != resolver {
				t.Error("expected sources to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config != nil {
				t.Error("expected config to be resolved later")
			}
			if runner.logger == nil {
				t.Error("expected default logger")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to stdout")
			}
			if runner.input == nil {
				t.Error("expected input to default to stdin")
			}
			if runner.engine != nil {
				t.Error("expected services to be built on first use")
			}
		})
	})

	t.Run("open wires services once", func(t *testing.T) {
		r := newTestRunner(t, "")
		if err := r.open(); err != nil {
			t.Fatalf("open failed: %v", err)
		}
		engine := r.engine
		if err := r.open(); err != nil {
			t.Fatalf("second open failed: %v", err)
		}
		if r.engine != engine {
			t.Error("expected services to be reused")
		}
		if r.ownsDB {
			t.Error("a provided database belongs to the caller")
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"Lightning Bolt": 4}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := output.String(); got != "{\n  \"Lightning Bolt\": 4\n}\n" {
				t.Errorf("unexpected output %q", got)
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"Lightning Bolt": 4}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := output.String(); got != "{\"Lightning Bolt\":4}\n" {
				t.Errorf("unexpected output %q", got)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]int{}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			writer := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &writer})

			err := runner.writeJSON(map[string]int{}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("%d %s\n", 4, "Lightning Bolt"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "4 Lightning Bolt\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("text"); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("confirm", func(t *testing.T) {
		for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Input: strings.NewReader(input)})
			if got := runner.confirm("Continue? "); got != want {
				t.Errorf("confirm(%q) = %v, want %v", input, got, want)
			}
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := []string{}
		for _, c := range commands {
			names = append(names, c.Name)
		}
		if got := strings.Join(names, ","); got != "setup,proxy,deck,tui" {
			t.Errorf("unexpected commands %s", got)
		}
	})
}

func TestLogRedirect(t *testing.T) {
	t.Run("engine logs go to the file when redirected before open", func(t *testing.T) {
		var terminal bytes.Buffer
		path := filepath.Join(t.TempDir(), "tui.log")
		fetcher := tu.NewMockFetcher(nil)
		fetcher.Err = errors.New("boom")

		r := NewRunner(RunnerOpts{
			Config:   shared.DefaultConfig(),
			DB:       tu.MustOpenDB(t),
			Logger:   shared.NewLogger(&terminal),
			Output:   io.Discard,
			Fetcher:  fetcher,
			Resolver: &tu.MockTokenResolver{},
		})

		if err := r.redirectLogs(path); err != nil {
			t.Fatalf("redirectLogs failed: %v", err)
		}
		if err := r.open(); err != nil {
			t.Fatalf("open failed: %v", err)
		}

		preview := r.engine.PreviewDeckUpdate(context.Background(), models.DeckTarget{Name: "Burn", Format: "Modern", URL: burnURL})
		if len(preview.Errors) == 0 {
			t.Fatal("expected the failing fetch to be recorded")
		}
		if err := r.After(context.Background(), nil); err != nil {
			t.Fatalf("After failed: %v", err)
		}

		if terminal.Len() != 0 {
			t.Errorf("expected nothing on the terminal, got %q", terminal.String())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading log file failed: %v", err)
		}
		if !strings.Contains(string(data), "deck preview failed") || !strings.Contains(string(data), "boom") {
			t.Errorf("expected the preview warning in the log file, got %q", data)
		}
	})

	t.Run("After closes the log file", func(t *testing.T) {
		r := newTestRunner(t, "")
		if err := r.redirectLogs(filepath.Join(t.TempDir(), "app.log")); err != nil {
			t.Fatalf("redirectLogs failed: %v", err)
		}
		f, ok := r.logFile.(*os.File)
		if !ok {
			t.Fatalf("expected an open file, got %T", r.logFile)
		}

		if err := r.After(context.Background(), nil); err != nil {
			t.Fatalf("After failed: %v", err)
		}
		if r.logFile != nil {
			t.Error("expected the log file to be released")
		}
		if _, err := f.WriteString("late"); !errors.Is(err, os.ErrClosed) {
			t.Errorf("expected writes to a closed file to fail, got %v", err)
		}
	})

	t.Run("log file setting redirects command logs", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.config.Log.File = filepath.Join(t.TempDir(), "logs", "netdecker.log")
		r.config.Log.Level = "debug"

		r.mustRun(t, "deck", "add", "--format", "Modern", "Burn", burnURL)
		if r.logFile != nil {
			t.Error("expected After to close the log file")
		}
		if _, err := os.Stat(r.config.Log.File); err != nil {
			t.Errorf("expected log file to exist: %v", err)
		}
	})
}

func TestProxyCommands(t *testing.T) {
	t.Run("add, list and remove", func(t *testing.T) {
		r := newTestRunner(t, "")

		out := r.mustRun(t, "proxy", "add", "4 Lightning Bolt", "2 Counterspell")
		if out != "Added 6 cards to inventory\n" {
			t.Errorf("unexpected add output %q", out)
		}

		out = r.mustRun(t, "proxy", "list")
		for _, want := range []string{"Card Name", "Lightning Bolt", "Counterspell", "TOTAL"} {
			if !strings.Contains(out, want) {
				t.Errorf("list output missing %q:\n%s", want, out)
			}
		}

		r.mustRun(t, "proxy", "remove", "2 Counterspell")
		out = r.mustRun(t, "proxy", "list", "--json")
		var rows []proxyRow
		if err := json.Unmarshal([]byte(out), &rows); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(rows) != 1 || rows[0].Name != "Lightning Bolt" || rows[0].Owned != 4 || rows[0].Available != 4 {
			t.Errorf("expected only Lightning Bolt to remain, got %+v", rows)
		}
	})

	t.Run("add reads a card list file", func(t *testing.T) {
		r := newTestRunner(t, "")
		path := filepath.Join(t.TempDir(), "cards.txt")
		if err := os.WriteFile(path, []byte("4 Lightning Bolt\n\n1 Black Lotus\n"), 0644); err != nil {
			t.Fatal(err)
		}

		out := r.mustRun(t, "proxy", "add", "--file", path)
		if out != "Added 5 cards to inventory\n" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("add without cards fails", func(t *testing.T) {
		r := newTestRunner(t, "")
		if _, err := r.run(t, "proxy", "add"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing argument, got %v", err)
		}
	})

	t.Run("remove more than owned fails", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.mustRun(t, "proxy", "add", "1 Lightning Bolt")

		if _, err := r.run(t, "proxy", "remove", "2 Lightning Bolt"); !errors.Is(err, shared.ErrInsufficientQuantity) {
			t.Errorf("expected insufficient quantity, got %v", err)
		}
	})

	t.Run("clear asks for confirmation", func(t *testing.T) {
		r := newTestRunner(t, "n\n")
		r.mustRun(t, "proxy", "add", "4 Lightning Bolt", "2 Counterspell")

		out := r.mustRun(t, "proxy", "clear")
		if !strings.Contains(out, "Operation cancelled") {
			t.Errorf("expected cancellation, got %q", out)
		}

		out = r.mustRun(t, "proxy", "clear", "--confirm")
		if !strings.Contains(out, "Removed 2 proxy cards from inventory") {
			t.Errorf("unexpected output %q", out)
		}

		out = r.mustRun(t, "proxy", "clear", "--confirm")
		if out != "No proxy cards to remove\n" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("audit of a consistent ledger", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.mustRun(t, "deck", "add", "--format", "Modern", "Burn", burnURL)

		out := r.mustRun(t, "proxy", "audit")
		if !strings.Contains(out, "Ledger matches deck allocations") {
			t.Errorf("unexpected audit output %q", out)
		}
	})
}

func TestDeckCommands(t *testing.T) {
	t.Run("add provisions missing cards", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.mustRun(t, "proxy", "add", "4 Lightning Bolt")

		out := r.mustRun(t, "deck", "add", "--format", "Modern", "Burn", burnURL)
		if out != "Added deck 'Burn' (Modern) - need to order 4 cards\n" {
			t.Errorf("unexpected output %q", out)
		}

		out = r.mustRun(t, "proxy", "list", "--json")
		var rows []proxyRow
		if err := json.Unmarshal([]byte(out), &rows); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		for _, row := range rows {
			if row.Available != 0 || row.InUse != 4 {
				t.Errorf("expected every copy in use, got %+v", row)
			}
		}

		if _, err := r.run(t, "deck", "add", "--format", "Modern", "Burn", burnURL); !errors.Is(err, shared.ErrDecklistExists) {
			t.Errorf("expected existing deck error, got %v", err)
		}
	})

	t.Run("add reports fetch errors", func(t *testing.T) {
		r := newTestRunner(t, "")
		_, err := r.run(t, "deck", "add", "--format", "Modern", "Burn", "https://www.moxfield.com/decks/missing")
		if err == nil || !strings.HasPrefix(err.Error(), "Error processing deck") {
			t.Errorf("expected processing error, got %v", err)
		}
	})

	t.Run("list and show", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.mustRun(t, "deck", "add", "--format", "Modern", "Burn", burnURL)

		out := r.mustRun(t, "deck", "list")
		if !strings.Contains(out, "Modern") || !strings.Contains(out, "Burn") || !strings.Contains(out, burnURL) {
			t.Errorf("unexpected list output:\n%s", out)
		}

		out = r.mustRun(t, "deck", "show", "Burn")
		for _, want := range []string{"Deck: Burn (Modern)", "URL: " + burnURL, "Total Cards: 8", "Lava Spike"} {
			if !strings.Contains(out, want) {
				t.Errorf("show output missing %q:\n%s", want, out)
			}
		}

		if _, err := r.run(t, "deck", "show", "Zoo"); !errors.Is(err, shared.ErrDecklistNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("list truncates long URLs", func(t *testing.T) {
		if got := truncate(strings.Repeat("a", 60), 50); len(got) != 50 || !strings.HasSuffix(got, "...") {
			t.Errorf("unexpected truncation %q", got)
		}
		if got := truncate(burnURL, 50); got != burnURL {
			t.Errorf("short URL should be unchanged, got %q", got)
		}

		url := "https://www.moxfield.com/decks/" + strings.Repeat("é", 30)
		got := truncate(url, 50)
		if !utf8.ValidString(got) {
			t.Errorf("truncation split a rune: %q", got)
		}
		if n := utf8.RuneCountInString(got); n != 50 || !strings.HasSuffix(got, "...") {
			t.Errorf("expected 50 runes ending in ..., got %d in %q", n, got)
		}
	})

	t.Run("update previews then applies", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.mustRun(t, "deck", "add", "--format", "Modern", "Burn", burnURL)
		r.fetcher.Decks[burnURL] = models.CardMap{"Lightning Bolt": 4, "Rift Bolt": 4}

		out := r.mustRun(t, "deck", "update", "--preview", "Burn")
		if !strings.Contains(out, "Rift Bolt") || !strings.Contains(out, "This was a preview") {
			t.Errorf("unexpected preview output:\n%s", out)
		}
		cards, err := r.decks.Cards(mustFind(t, r, "Burn").ID)
		if err != nil {
			t.Fatal(err)
		}
		if cards["Lava Spike"] != 4 {
			t.Error("preview must not change the deck")
		}

		r.mustRun(t, "deck", "update", "Burn")
		cards, err = r.decks.Cards(mustFind(t, r, "Burn").ID)
		if err != nil {
			t.Fatal(err)
		}
		if cards["Rift Bolt"] != 4 || cards["Lava Spike"] != 0 {
			t.Errorf("expected swapped deck, got %v", cards)
		}
	})

	t.Run("update with a new url", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.mustRun(t, "deck", "add", "--format", "Modern", "Burn", burnURL)
		newURL := "https://www.mtggoldfish.com/deck/123"
		r.fetcher.Decks[newURL] = models.CardMap{"Lightning Bolt": 4}

		r.mustRun(t, "deck", "update", "Burn", newURL)
		if got := mustFind(t, r, "Burn").URL; got != newURL {
			t.Errorf("expected stored url to change, got %s", got)
		}
	})

	t.Run("delete frees cards", func(t *testing.T) {
		r := newTestRunner(t, "n\ny\n")
		r.mustRun(t, "deck", "add", "--format", "Modern", "Burn", burnURL)

		out := r.mustRun(t, "deck", "delete", "Burn")
		if !strings.Contains(out, "Cancelled") {
			t.Errorf("expected cancellation, got %q", out)
		}

		out = r.mustRun(t, "deck", "delete", "Burn")
		if !strings.Contains(out, "Deleted deck 'Burn' and freed its cards") {
			t.Errorf("unexpected output %q", out)
		}

		available, err := r.ledger.Available("Lightning Bolt")
		if err != nil {
			t.Fatal(err)
		}
		if available != 4 {
			t.Errorf("expected freed copies, got %d available", available)
		}
	})

	t.Run("batch applies every deck and writes the order", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.fetcher.Decks["https://cubecobra.com/cube/list/vintage"] = models.CardMap{"Black Lotus": 1}

		dir := t.TempDir()
		batch := filepath.Join(dir, "decks.yaml")
		orderFile := filepath.Join(dir, "order.txt")
		doc := `decklists:
  - format: Modern
    decks:
      - name: Burn
        url: ` + burnURL + `
  - format: Cube
    decks:
      - name: Vintage
        url: https://cubecobra.com/cube/list/vintage
      - name: Broken
        url: https://cubecobra.com/cube/list/missing
`
		if err := os.WriteFile(batch, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := r.run(t, "deck", "batch", "--order-file", orderFile, "--no-tokens", batch); err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		decks, err := r.decks.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(decks) != 2 {
			t.Errorf("expected two tracked decks, got %d", len(decks))
		}

		tu.AssertFileExists(t, orderFile)
		order := tu.MustReadFile(t, orderFile)
		if order != "1 Black Lotus\n4 Lava Spike\n4 Lightning Bolt\n" {
			t.Errorf("unexpected order file %q", order)
		}
	})

	t.Run("order for a url", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.mustRun(t, "proxy", "add", "4 Lightning Bolt")

		out := r.mustRun(t, "deck", "order", "--url", burnURL, "--format", "Modern", "--no-tokens")
		if out != "4 Lava Spike\n" {
			t.Errorf("unexpected order %q", out)
		}

		out = r.mustRun(t, "deck", "order", "--url", burnURL, "--format", "Modern")
		for _, want := range []string{"# Tokens", "Goblin Token", "Treasure Token"} {
			if !strings.Contains(out, want) {
				t.Errorf("order missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("order for a tracked deck to a file", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.mustRun(t, "deck", "add", "--format", "Modern", "Burn", burnURL)
		path := filepath.Join(t.TempDir(), "order.txt")

		out := r.mustRun(t, "deck", "order", "--deck", "Burn", "-o", path, "--no-tokens")
		if out != "Order written to "+path+"\n" {
			t.Errorf("unexpected output %q", out)
		}
		if got := tu.MustReadFile(t, path); got != "" {
			t.Errorf("fully allocated deck needs no order, got %q", got)
		}
	})

	t.Run("order needs exactly one source", func(t *testing.T) {
		r := newTestRunner(t, "")
		if _, err := r.run(t, "deck", "order"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
		if _, err := r.run(t, "deck", "order", "--url", burnURL); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing format, got %v", err)
		}
	})

	t.Run("export writes a cube csv", func(t *testing.T) {
		r := newTestRunner(t, "")
		r.mustRun(t, "deck", "add", "--format", "Modern", "Burn", burnURL)

		out := r.mustRun(t, "deck", "export", "Burn")
		lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
		if len(lines) != 9 {
			t.Fatalf("expected header plus 8 rows, got %d", len(lines))
		}
		if !strings.HasPrefix(lines[0], `"name","CMC"`) || !strings.HasPrefix(lines[1], `"Lava Spike"`) {
			t.Errorf("unexpected csv:\n%s", out)
		}
	})
}

func mustFind(t *testing.T, r *testRunner, name string) *models.Decklist {
	t.Helper()
	deck, err := r.findDeck(name, "")
	if err != nil {
		t.Fatalf("find %s: %v", name, err)
	}
	return deck
}
