package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
	"github.com/aretw0/bubbly/pkg/views"
)

var calendarMonth string

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Show a month grid with event days marked",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		first, err := firstWeekday()
		if err != nil {
			return err
		}
		return withStore(cmd, func(st *bubbly.Store) error {
			now := st.Now().Local()
			month, err := views.ParseMonth(calendarMonth, now)
			if err != nil {
				return err
			}
			renderCalendar(cmd.OutOrStdout(), month, first, st.Events(), now)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.Flags().StringVarP(&calendarMonth, "month", "m", "", "Month to show as YYYY-MM (default: current month)")
}
