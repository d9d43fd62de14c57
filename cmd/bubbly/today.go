package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
	"github.com/aretw0/bubbly/pkg/views"
)

var todayJSON bool

type todayOutput struct {
	Items          []views.TodayItem `json:"items"`
	CompletedToday int               `json:"completedToday"`
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show notes, open reminders and events for today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			now := st.Now().Local()
			snap := st.Snapshot()
			items := views.TodayItems(snap.Notes, snap.Reminders, snap.Events, now)
			completed := views.TodayCompletedCount(snap.Reminders, now)

			if todayJSON {
				return writeJSON(cmd.OutOrStdout(), todayOutput{Items: items, CompletedToday: completed})
			}
			renderToday(cmd.OutOrStdout(), items, completed, now)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output in JSON format")
}
