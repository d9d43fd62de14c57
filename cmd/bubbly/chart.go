package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
	"github.com/aretw0/bubbly/pkg/views"
)

var (
	chartWidth int
	chartJSON  bool
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show how items split across notes, reminders and events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			snap := st.Snapshot()
			segments := views.PieSegments(len(snap.Notes), len(snap.Reminders), len(snap.Events))
			if chartJSON {
				return writeJSON(cmd.OutOrStdout(), segments)
			}
			renderChart(cmd.OutOrStdout(), segments, max(chartWidth, 1))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().IntVar(&chartWidth, "width", 30, "Bar width in cells")
	chartCmd.Flags().BoolVar(&chartJSON, "json", false, "Output in JSON format")
}
