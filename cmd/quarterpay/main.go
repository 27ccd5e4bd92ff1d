package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/quarterpay/internal/config"
	"github.com/MikeSquared-Agency/quarterpay/internal/scoring"
)

// Set by the release build.
var version = "dev"

type options struct {
	configPath string
}

// app is everything a subcommand needs after config has been loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	calc   *scoring.Calculator
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "quarterpay",
		Short:         "Quarterly sales salary calculator.",
		Long:          `Quarterpay scores seven quarterly sales metrics, combines them with per-project weights and computes the payout and salary.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")

	root.AddCommand(newCalcCmd(opts), newServeCmd(opts), newProjectsCmd(opts))
	return root
}

// setup loads config and builds the calculator. Logs go to logOut so that
// command output on stdout stays clean.
func setup(opts *options, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Logging, logOut)
	slog.SetDefault(logger)

	table := scoring.DefaultCoefficients()
	if cfg.Scoring.CoefficientsFile != "" {
		table, err = scoring.LoadCoefficients(cfg.Scoring.CoefficientsFile)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded coefficient table", "file", cfg.Scoring.CoefficientsFile, "version", table.Version)
	}

	catalog, err := scoring.CatalogFromConfig(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		calc:   scoring.NewCalculator(table, catalog, cfg.Pay, logger),
	}, nil
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
