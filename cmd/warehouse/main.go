// Package main implements the warehouse CLI.
//
// Run without arguments to start the interactive terminal UI; every
// operation is also available as a subcommand for scripting.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mywarehouse/cmd/warehouse/ui"
	"mywarehouse/internal/config"
	"mywarehouse/internal/logging"
	"mywarehouse/internal/store"
)

var (
	// Global flags
	cfgPath    string
	dbOverride string
	verbose    bool

	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Warehouse inventory manager",
	Long: `warehouse tracks materials, serial numbers and customer assignments
in a local SQLite database.

Materials are categorized automatically from their name, model and
description. Serial numbers move between stock and customers and keep
their full assignment history.

Run without arguments to start the interactive terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if dbOverride != "" {
			cfg.Database.Path = dbOverride
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := logging.Initialize(cfg.DataDir(), logging.Settings{
			DebugMode:  cfg.Logging.DebugMode || verbose,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		// The interactive UI owns the terminal; console logging would
		// corrupt its output.
		if cmd.Name() == "warehouse" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return ui.Run(st, cfg)
	},
}

// openStore opens the configured database. Callers own the Close.
func openStore() (*store.Store, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}
	return st, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Path to config file (env WAREHOUSE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "Database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(customersCmd)
	rootCmd.AddCommand(materialsCmd)
	rootCmd.AddCommand(serialsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
