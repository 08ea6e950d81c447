package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pbaille/scribble/internal/config"
	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/store"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	dbPath   string
	logLevel string
	envFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "scribble",
		Short:         "Stroke drawings, tube meshes and frame animation stories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default $SCRIBBLE_DB or ~/.scribble/scribble.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load instead of .env")

	rootCmd.AddCommand(newCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(drawCmd())
	rootCmd.AddCommand(objectCmd())
	rootCmd.AddCommand(meshCmd())
	rootCmd.AddCommand(playCmd())
	rootCmd.AddCommand(serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and installs the logger
func setup(cmd *cobra.Command) error {
	var err error
	if envFile != "" {
		cfg, err = config.Load(envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("log-level") {
		if cfg.LogLevel, err = logging.ParseLevel(logLevel); err != nil {
			return err
		}
	}

	logging.SetLogger(logging.NewText(os.Stderr, cfg.LogLevel))
	return nil
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(cfg.DBPath)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
