// ABOUTME: Entry point for the DoFo relationship assistant
// ABOUTME: Wires config, logging, stores, and state, then routes to CLI, TUI, web, or MCP
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/harperreed/dofo/charm"
	"github.com/harperreed/dofo/cli"
	"github.com/harperreed/dofo/config"
	"github.com/harperreed/dofo/db"
	"github.com/harperreed/dofo/fixtures"
	"github.com/harperreed/dofo/logging"
	"github.com/harperreed/dofo/state"
	"github.com/harperreed/dofo/tui"
	"github.com/harperreed/dofo/web"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	demo := flag.Bool("demo", false, "Run against the built-in sample circle in memory; nothing is saved")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dofo version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		printUsage()
		os.Exit(0)
	}

	if err := run(args[0], args[1:], *demo); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is everything a command may need, opened once at startup.
type app struct {
	env    *cli.Env
	charm  *charm.Client
	closer []func() error
}

func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		_ = a.closer[i]()
	}
}

func open(ctx context.Context, cfg *config.Config, logger *zap.Logger, demo bool) (*app, error) {
	a := &app{env: &cli.Env{Config: cfg, Logger: logger}}

	if demo {
		dir, err := os.MkdirTemp("", "dofo-demo-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create demo state dir: %w", err)
		}
		a.closer = append(a.closer, func() error { return os.RemoveAll(dir) })

		client, err := charm.NewLocalClient(dir)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closer = append(a.closer, client.Close)

		a.env.Set = fixtures.NewMemorySet()
		a.env.State = state.New(client)
		logger.Debug("demo mode", zap.String("state_dir", dir))
		return a, nil
	}

	database, err := db.OpenDatabase(cfg.Paths.DBPath)
	if err != nil {
		return nil, err
	}
	a.closer = append(a.closer, database.Close)

	seeded, err := db.Seed(ctx, database, fixtures.MustLoad())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	if seeded {
		logger.Info("seeded sample circle", zap.String("db", cfg.Paths.DBPath))
	}

	client, err := openState(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closer = append(a.closer, client.Close)

	a.charm = client
	a.env.Set = db.NewSet(database)
	a.env.Imports = db.NewImportLog(database)
	a.env.State = state.New(client)
	logger.Debug("opened stores",
		zap.String("db", cfg.Paths.DBPath),
		zap.Bool("charm", !client.Local()))
	return a, nil
}

// openState returns the Charm KV client when sync is enabled, a local badger store otherwise.
func openState(cfg *config.Config) (*charm.Client, error) {
	if !cfg.Sync.Enabled {
		return charm.NewLocalClient(filepath.Join(cfg.Paths.StateDir, "kv"))
	}

	ccfg, err := charm.LoadConfig(cfg.Paths.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync config: %w", err)
	}
	if cfg.Sync.CharmHost != "" {
		ccfg.Host = cfg.Sync.CharmHost
	}
	return charm.NewClient(ccfg)
}

func run(command string, args []string, demo bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := open(ctx, cfg, logger, demo)
	if err != nil {
		return err
	}
	defer a.Close()
	env := a.env

	sub, subArgs := "", []string(nil)
	if len(args) > 0 {
		sub, subArgs = args[0], args[1:]
	}

	switch command {
	case "home":
		return cli.HomeCommand(env, args)
	case "done":
		return cli.DoneCommand(env, args)

	case "people":
		switch sub {
		case "", "list":
			return cli.PeopleListCommand(env, subArgs)
		case "show":
			return cli.PeopleShowCommand(env, subArgs)
		case "log":
			return cli.PeopleLogCommand(env, subArgs)
		case "promise":
			return cli.PromiseAddCommand(env, subArgs)
		case "keep":
			return cli.PromiseDoneCommand(env, subArgs)
		}
		return unknown("people", sub)

	case "inbox":
		switch sub {
		case "", "list":
			return cli.InboxListCommand(env, subArgs)
		case "dismiss":
			return cli.InboxDismissCommand(env, subArgs)
		case "act":
			return cli.InboxActCommand(env, subArgs)
		}
		return unknown("inbox", sub)

	case "insights":
		if sub == "refresh" {
			return cli.InsightsRefreshCommand(env, subArgs)
		}
		return unknown("insights", sub)

	case "search":
		return cli.SearchCommand(env, args)
	case "classify":
		return cli.ClassifyCommand(env, args)

	case "onboard":
		return cli.OnboardCommand(env, args)
	case "profile":
		switch sub {
		case "", "show":
			return cli.ProfileShowCommand(env, subArgs)
		case "set":
			return cli.ProfileSetCommand(env, subArgs)
		}
		return unknown("profile", sub)

	case "viz":
		switch sub {
		case "", "dashboard":
			return cli.VizDashboardCommand(env, subArgs)
		case "circles":
			return cli.VizCirclesCommand(env, subArgs)
		}
		return unknown("viz", sub)

	case "connect":
		switch sub {
		case "google":
			return cli.ConnectGoogleCommand(ctx, env, subArgs)
		case "", "status":
			return cli.ConnectStatusCommand(ctx, env, subArgs)
		}
		return unknown("connect", sub)

	case "sync":
		if a.charm == nil {
			return fmt.Errorf("sync is unavailable in demo mode")
		}
		switch sub {
		case "", "status":
			return charm.SyncStatusCommand(os.Stdout, a.charm, subArgs)
		case "now":
			return charm.SyncNowCommand(os.Stdout, a.charm, subArgs)
		case "auto":
			ccfg, err := charm.LoadConfig(cfg.Paths.StateDir)
			if err != nil {
				return fmt.Errorf("failed to load sync config: %w", err)
			}
			return charm.SetAutoSyncCommand(os.Stdout, ccfg, subArgs)
		case "wipe":
			return charm.SyncWipeCommand(os.Stdout, a.charm, subArgs)
		}
		return unknown("sync", sub)

	case "mcp":
		return cli.MCPCommand(ctx, env, version)

	case "web":
		fs := flag.NewFlagSet("web", flag.ExitOnError)
		addr := fs.String("addr", cfg.Web.Addr(), "Listen address")
		_ = fs.Parse(args)

		srv, err := web.NewServer(env.Set, env.State, logger, web.WithPolicy(cfg.Urgency.Policy()))
		if err != nil {
			return err
		}
		fmt.Printf("DoFo dashboard on http://%s (Ctrl+C to stop)\n", *addr)
		return srv.Start(ctx, *addr)

	case "tui":
		return tui.Run(env.Set, tui.Options{
			State:   env.State,
			Charm:   a.charm,
			Imports: env.Imports,
			Logger:  logger,
			Policy:  cfg.Urgency.Policy(),
		})
	}

	printUsage()
	return fmt.Errorf("unknown command: %s", command)
}

func unknown(group, sub string) error {
	printUsage()
	return fmt.Errorf("unknown %s command: %s", group, sub)
}

func printUsage() {
	fmt.Printf(`DoFo - Relationship Assistant v%s

Usage:
  dofo [--demo] <command> [args]

Daily:
  home [--all]                         Today's actions, greeting, and progress
  done <action-id>                     Mark a daily action complete

People:
  people list [--relation R] [--sort S] Your circle with health and cadence
  people show <person>                 Profile, history, promises, and notes
  people log --desc D [flags] <person> Log an interaction (--type, --sentiment, --date)
  people promise --desc D <person>     Record a promise (--due, --priority)
  people keep <promise-id>             Mark a promise kept

Inbox:
  inbox list [--all]                   Detected insights with suggested actions
  inbox dismiss <id>                   Dismiss an inbox item
  inbox act <id> [n]                   Turn suggestion n into today's action
  insights refresh [--dry-run]         Scan your circle for new insights

Search:
  search [--explain] <query>           Natural-language search and capture
  classify [--explain] <query>         Show how a query is understood

Profile:
  onboard [--name N] [--tone T]        Set up DoFo
  profile show                         Preferences and today's questions
  profile set <key> <value>            Change one preference

Visualize:
  viz dashboard                        Circle health summary
  viz circles [--person P] [--output F] Circles graph as Graphviz DOT

Connect:
  connect google [--reauth]            Import contacts and birthdays from Google
  connect status                       Last import per service

Sync:
  sync status                          State backend and sync settings
  sync now                             Push and pull device state
  sync auto --enable|--disable         Toggle auto-sync
  sync wipe --confirm                  Delete preferences and onboarding state

Interfaces:
  tui                                  Interactive terminal UI
  web [--addr host:port]               Web dashboard
  mcp                                  MCP server on stdio

Global flags:
  --demo                               Use the sample circle in memory
  --version                            Show version and exit
`, version)
}
