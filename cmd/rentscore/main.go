// Command rentscore ranks rental investment opportunities by zip code.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rewired-gh/rentscore/internal/cache"
	"github.com/rewired-gh/rentscore/internal/config"
	"github.com/rewired-gh/rentscore/internal/logger"
	"github.com/urfave/cli/v3"
)

const (
	appStateKey = "app-state"

	configFlagName   = "config"
	logLevelFlagName = "log-level"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// appState is built once in the root Before hook and shared by every command.
type appState struct {
	cfg       *config.Config
	rentCache cache.RentCache
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		stop()
		logger.Fatal("%v", err)
	}
}

// newApp builds the command tree. Flags keep parse state, so every call
// returns fresh instances.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "rentscore",
		Usage:   "Score and rank rental investment properties",
		Version: fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlagName,
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (optional, defaults and environment are used otherwise)",
				Sources: cli.EnvVars("RENTSCORE_CONFIG"),
			},
			&cli.StringFlag{
				Name:  logLevelFlagName,
				Usage: "Override the configured log level [debug, info, warn, error]",
			},
		},
		Commands: []*cli.Command{
			scoreCommand(),
			compareCommand(),
			watchCommand(),
			serveCommand(),
			profilesCommand(),
		},
		Metadata: map[string]interface{}{},
		Before:   setup,
		After:    teardown,
	}
}

func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String(configFlagName))
	if err != nil {
		return ctx, err
	}
	if lvl := cmd.String(logLevelFlagName); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.SetOutput(cmd.Root().ErrWriter)
	if path := cmd.String(configFlagName); path != "" {
		logger.Debug("Configuration loaded from %s", path)
	}

	rentCache, err := cache.New(cfg.Cache)
	if err != nil {
		return ctx, fmt.Errorf("failed to initialize cache: %w", err)
	}
	if err := cache.Ping(ctx, rentCache); err != nil {
		logger.Warn("Rent cache unavailable, continuing without it: %v", err)
		closeCache(rentCache)
		rentCache = nil
	}

	cmd.Root().Metadata[appStateKey] = &appState{cfg: cfg, rentCache: rentCache}
	return ctx, nil
}

func teardown(_ context.Context, cmd *cli.Command) error {
	if st, ok := cmd.Root().Metadata[appStateKey].(*appState); ok {
		closeCache(st.rentCache)
	}
	return nil
}

func getState(cmd *cli.Command) *appState {
	return cmd.Root().Metadata[appStateKey].(*appState)
}

func closeCache(c cache.RentCache) {
	if r, ok := c.(*cache.Redis); ok {
		if err := r.Close(); err != nil {
			logger.Warn("Failed to close rent cache: %v", err)
		}
	}
}
