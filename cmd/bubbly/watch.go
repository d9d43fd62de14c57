package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
	bubblylifecycle "github.com/aretw0/bubbly/pkg/adapters/lifecycle"
	"github.com/aretw0/bubbly/pkg/store"
)

var watchReload bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print store changes until interrupted",
	Long: `Print every change made to the store until Ctrl+C. With --reload, edits made by
other processes to the data directory are loaded and printed as RELOAD changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withStore(cmd, func(st *bubbly.Store) error {
			src := bubblylifecycle.NewSource(st.Watch(ctx))
			if err := src.Start(ctx); err != nil {
				return err
			}

			followed := make(chan struct{})
			if !watchReload {
				close(followed)
			} else {
				go func() {
					defer close(followed)
					err := st.Follow(ctx)
					if errors.Is(err, store.ErrNotWatchable) {
						slog.Warn("adapter cannot report external changes; --reload ignored", "adapter", adapterName)
					} else if err != nil {
						slog.Error("follow stopped", "error", err)
					}
				}()
			}

			slog.Info("watching for changes", "reload", watchReload)
			for ev := range src.Events() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mutedStyle.Render(time.Now().Format("15:04:05")), ev)
			}
			<-followed
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchReload, "reload", false, "Reload collections changed by other processes")
}

