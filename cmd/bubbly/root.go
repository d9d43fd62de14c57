package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
	"github.com/aretw0/bubbly/internal/platform"
)

var (
	verbose     bool
	dataPath    string
	adapterName string
	formatName  string
	configPath  string
	weekStart   string

	fileConfig *platform.FileConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bubbly",
	Short: "Notes, reminders and a calendar in your terminal",
	Long: `Bubbly keeps notes, reminders, calendar events and settings in a local data
directory (or a SQLite database) and writes every change through in the background.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)

		return loadFileConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Data directory (or database file for sqlite); defaults to $"+platform.DataEnv+" or the OS data dir")
	rootCmd.PersistentFlags().StringVar(&adapterName, "adapter", "fs", "Storage adapter: fs, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&formatName, "format", "json", "Blob format: json or yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: nearest bubbly.yaml)")
	rootCmd.PersistentFlags().StringVar(&weekStart, "week-start", "", "First day of the week for the calendar (default sunday)")
}

// loadFileConfig reads --config, or the nearest bubbly.yaml when the flag is not set.
func loadFileConfig() error {
	fileConfig = nil
	path := configPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil
		}
		found, err := platform.FindConfig(cwd)
		if err != nil {
			return nil
		}
		path = found
	}

	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return err
	}
	slog.Debug("config loaded", "path", path)
	fileConfig = cfg
	return nil
}

// storeOptions merges the config file with the flags; explicit flags win.
func storeOptions(cmd *cobra.Command) (string, []bubbly.Option) {
	opts := []bubbly.Option{bubbly.WithLogger(slog.Default())}
	uri := ""
	if fileConfig != nil {
		uri = fileConfig.DataPath()
		opts = append(opts, fileConfig.Options()...)
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		uri = dataPath
	}
	if flags.Changed("adapter") || fileConfig == nil || fileConfig.Adapter == "" {
		opts = append(opts, bubbly.WithAdapter(adapterName))
	}
	if flags.Changed("format") || fileConfig == nil || fileConfig.Format == "" {
		opts = append(opts, bubbly.WithFormat(formatName))
	}
	return uri, opts
}

// firstWeekday resolves --week-start, then the config file, then Sunday.
func firstWeekday() (time.Weekday, error) {
	if weekStart != "" {
		return platform.ParseWeekday(weekStart)
	}
	if fileConfig != nil {
		return fileConfig.Weekday(), nil
	}
	return time.Sunday, nil
}

// withStore opens the store, runs fn and closes the store, flushing pending writes.
func withStore(cmd *cobra.Command, fn func(st *bubbly.Store) error) error {
	uri, opts := storeOptions(cmd)
	st, err := bubbly.New(uri, opts...)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	runErr := fn(st)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.Close(ctx); err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to save changes: %w", err))
	}
	return runErr
}
