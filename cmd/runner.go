package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/netdecker/internal/inventory"
	"github.com/desertthunder/netdecker/internal/repositories"
	"github.com/desertthunder/netdecker/internal/services"
	"github.com/desertthunder/netdecker/internal/shared"
	"github.com/desertthunder/netdecker/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and the services built on it are opened on first use so that commands such as
// setup can run before a database exists.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	logFile    io.Closer
	output     io.Writer
	input      *bufio.Reader
	fetcher    services.DecklistFetcher
	resolver   services.TokenResolver
	db         *sql.DB
	ownsDB     bool
	ledger     *inventory.Ledger
	allocator  *inventory.Allocator
	decks      *repositories.DecklistRepository
	engine     *tasks.DeckEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB // Already migrated; the Runner does not close it
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Fetcher    services.DecklistFetcher
	Resolver   services.TokenResolver
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
		fetcher:    opts.Fetcher,
		resolver:   opts.Resolver,
		db:         opts.DB,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    shared.AppName,
		Usage:   "Track proxy cards and reconcile them with online decklists",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default: ./config.toml, then the app data directory)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, proxyCommand, deckCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before resolves the configuration and applies the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		config, path, err := shared.ResolveConfig(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.config, r.configPath = config, path
		if path != "" {
			r.logger.Debug("loaded config", "path", path)
		}
	}
	if r.configPath == "" {
		r.configPath = cmd.String("config")
	}

	level := r.config.Log.Level
	if override := cmd.String("log-level"); override != "" {
		level = override
	}
	ll, err := shared.ParseLogLevel(level)
	if err != nil {
		return ctx, err
	}

	if r.config.Log.File != "" {
		if err := r.redirectLogs(r.config.Log.File); err != nil {
			return ctx, err
		}
	}
	shared.SetLogLevel(r.logger, ll)
	return ctx, nil
}

// After closes the database when the Runner opened it, and the log file if one was opened.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	var errs []error
	if r.db != nil && r.ownsDB {
		r.ownsDB = false
		errs = append(errs, r.db.Close())
	}
	if r.logFile != nil {
		errs = append(errs, r.logFile.Close())
		r.logFile = nil
	}
	return errors.Join(errs...)
}

// SetLogger replaces the logger used by the Runner.
//
// Services are built with the logger current at the first call to open, so call it before any
// command touches the database.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// redirectLogs sends all further logging to the file at path, keeping the current level.
// The file is closed in After.
func (r *Runner) redirectLogs(path string) error {
	fileLogger, f, err := shared.NewFileLogger(path)
	if err != nil {
		return err
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	if r.logFile != nil {
		r.logFile.Close()
	}
	r.logFile = f
	r.SetLogger(fileLogger)
	return nil
}

// open connects to the configured database, applies migrations and wires the domain services.
func (r *Runner) open() error {
	if r.engine != nil {
		return nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	if r.db == nil {
		path, err := r.config.DatabasePath()
		if err != nil {
			return err
		}

		r.logger.Debug("opening database", "path", path)
		db, err := shared.NewDatabase(path)
		if err != nil {
			return err
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.db, r.ownsDB = db, true
	}

	if r.fetcher == nil {
		r.fetcher = services.NewDecklistClient(services.DecklistClientOpts{
			CubeCobraURL:   r.config.Sources.CubeCobraURL,
			MTGGoldfishURL: r.config.Sources.MTGGoldfishURL,
			MoxfieldAPIURL: r.config.Sources.MoxfieldAPIURL,
			UserAgent:      r.config.Sources.UserAgent,
			Timeout:        r.config.Sources.Timeout(),
			Logger:         r.logger,
		})
	}
	if r.resolver == nil {
		r.resolver = services.NewScryfallService(services.ScryfallOpts{
			BaseURL:   r.config.Sources.ScryfallURL,
			UserAgent: r.config.Sources.UserAgent,
			Timeout:   r.config.Sources.TokenTimeout(),
			Interval:  r.config.Sources.ScryfallInterval(),
			Logger:    r.logger,
		})
	}

	r.ledger = inventory.NewLedger(r.db)
	r.allocator = inventory.NewAllocator(r.db)
	r.decks = repositories.NewDecklistRepository(r.db)
	r.engine = tasks.NewDeckEngine(r.fetcher, r.ledger, r.allocator, r.decks, r.logger)
	return nil
}

// confirm asks a y/N question on the Runner's input. Anything but y/yes is a no.
func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s", prompt)
	answer, err := r.input.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
