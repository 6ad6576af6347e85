// Command insights serves and queries filtered aggregations over the
// insights record collection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-insights-engine/internal/config"
	"go-insights-engine/internal/logger"
	"go-insights-engine/internal/store"
)

// cfgFile holds the --config flag.
var cfgFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "insights",
		Short:         "Filtered aggregations over insight records",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $CONFIG_PATH or ./"+config.DefaultPath+")")

	root.AddCommand(newServeCommand())
	root.AddCommand(newImportCommand())
	root.AddCommand(newQueryCommand())
	root.AddCommand(newShapesCommand())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// app bundles what every store-backed command needs.
type app struct {
	cfg *config.Config
	log logger.Logger
	db  *store.DB
}

func setup(ctx context.Context) (*app, error) {
	path := cfgFile
	if path == "" {
		path = config.GetConfigPath(config.DefaultPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("Failed to close database", logger.Error(err))
	}
	_ = a.log.Sync()
}
