// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for config and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the database",
		Action: r.Setup,
		Commands: []*cli.Command{
			{
				Name:  "rollback",
				Usage: "Roll back the latest database migration",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "confirm",
						Usage: "Skip the confirmation prompt",
					},
				},
				Action: r.SetupRollback,
			},
		},
	}
}

// proxyCommand handles the card ledger.
func proxyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "proxy",
		Aliases: []string{"p"},
		Usage:   "Manage the proxy card inventory",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add proxy cards to inventory",
				ArgsUsage: "[\"<quantity> <cardname>\"...]",
				Flags:     []cli.Flag{fileFlag()},
				Action:    r.ProxyAdd,
			},
			{
				Name:   "list",
				Usage:  "List proxy cards with owned, available and in-use counts",
				Flags:  jsonFlags(),
				Action: r.ProxyList,
			},
			{
				Name:      "remove",
				Usage:     "Remove proxy cards from inventory",
				ArgsUsage: "[\"<quantity> <cardname>\"...]",
				Flags:     []cli.Flag{fileFlag()},
				Action:    r.ProxyRemove,
			},
			{
				Name:  "clear",
				Usage: "Remove all proxy cards from inventory",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "confirm",
						Usage: "Skip the confirmation prompt",
					},
				},
				Action: r.ProxyClear,
			},
			{
				Name:   "audit",
				Usage:  "Check in-use counts against deck allocations",
				Flags:  jsonFlags(),
				Action: r.ProxyAudit,
			},
		},
	}
}

// deckCommand handles tracked decks, batch files and print orders.
func deckCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "deck",
		Aliases: []string{"d"},
		Usage:   "Manage tracked decks",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all tracked decks",
				Flags:  jsonFlags(),
				Action: r.DeckList,
			},
			{
				Name:      "show",
				Usage:     "Show cards in a deck with their availability",
				ArgsUsage: "<name>",
				Flags: append([]cli.Flag{
					formatFlag("Format of the deck, for disambiguation", false),
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the deck URL in the browser",
					},
				}, jsonFlags()...),
				Action: r.DeckShow,
			},
			{
				Name:      "add",
				Usage:     "Track a new deck and allocate its cards",
				ArgsUsage: "<name> <url>",
				Flags:     []cli.Flag{formatFlag("Format of the deck (e.g. Modern, Vintage, Cube)", true)},
				Action:    r.DeckAdd,
			},
			{
				Name:      "update",
				Usage:     "Refetch a tracked deck and reconcile its cards",
				ArgsUsage: "<name> [url]",
				Flags: append([]cli.Flag{
					formatFlag("Format of the deck, for disambiguation", false),
					previewFlag(),
				}, jsonFlags()...),
				Action: r.DeckUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a deck and free its cards",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					formatFlag("Format of the deck, for disambiguation", false),
					&cli.BoolFlag{
						Name:  "confirm",
						Usage: "Skip the confirmation prompt",
					},
				},
				Action: r.DeckDelete,
			},
			{
				Name:      "batch",
				Usage:     "Process every deck in a YAML file",
				ArgsUsage: "<file.yaml>",
				Flags: append([]cli.Flag{
					previewFlag(),
					&cli.StringFlag{
						Name:  "order-file",
						Usage: "Write the combined order to a file",
					},
					noTokensFlag(),
				}, jsonFlags()...),
				Action: r.DeckBatch,
			},
			{
				Name:  "order",
				Usage: "Generate an MPCFill order for missing cards",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "deck", Usage: "Order for a tracked deck"},
					&cli.StringFlag{Name: "url", Usage: "Order for a decklist URL"},
					&cli.StringFlag{Name: "yaml", Usage: "Order for the decks in a YAML file"},
					formatFlag("Format for URL-based orders", false),
					outputFlag("Output file (defaults to stdout)"),
					noTokensFlag(),
				},
				Action: r.DeckOrder,
			},
			{
				Name:      "export",
				Usage:     "Export a deck as a CubeCobra CSV",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					formatFlag("Format of the deck, for disambiguation", false),
					outputFlag("Output file (defaults to stdout)"),
				},
				Action: r.DeckExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing and updating decks.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive deck browser",
		Action:  r.TUI,
	}
}

func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Read \"<quantity> <cardname>\" lines from a file",
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func formatFlag(usage string, required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "format",
		Usage:    usage,
		Required: required,
	}
}

func previewFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "preview",
		Usage: "Preview changes without applying them",
	}
}

func outputFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   usage,
	}
}

func noTokensFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "no-tokens",
		Usage: "Don't include tokens in the order",
	}
}
