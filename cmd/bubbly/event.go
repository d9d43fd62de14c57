package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
	"github.com/aretw0/bubbly/pkg/core"
	"github.com/aretw0/bubbly/pkg/views"
)

var (
	eventOn   string
	eventJSON bool
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Add and list calendar events",
}

var eventAddCmd = &cobra.Command{
	Use:   "add TITLE...",
	Short: "Add an event",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			on, err := views.ParseTime(eventOn, st.Now().Local())
			if err != nil {
				return err
			}
			e, err := st.AddEvent(core.Event{Title: strings.Join(args, " "), Date: on})
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), fmt.Sprintf("event %s on %s", shortID(e.ID), e.Date.Local().Format(timeLayout)))
			return nil
		})
	},
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events by date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			events := views.SortEvents(st.Events())
			if eventJSON {
				return writeJSON(cmd.OutOrStdout(), events)
			}
			renderEvents(cmd.OutOrStdout(), events)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(eventCmd)
	eventCmd.AddCommand(eventAddCmd, eventListCmd)

	eventAddCmd.Flags().StringVar(&eventOn, "on", "today", "Date of the event")
	eventListCmd.Flags().BoolVar(&eventJSON, "json", false, "Output in JSON format")
}
