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
	reminderAt     string
	reminderRepeat bool
	reminderJSON   bool
	snoozeMinutes  int
)

var reminderCmd = &cobra.Command{
	Use:     "reminder",
	Aliases: []string{"rem"},
	Short:   "Add, complete, snooze and delete reminders",
}

var reminderAddCmd = &cobra.Command{
	Use:   "add TITLE...",
	Short: "Add a reminder",
	Long: `Add a reminder. --at accepts RFC 3339, "YYYY-MM-DD HH:MM", "HH:MM" (today),
"+30m" style offsets, "today" and "tomorrow".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			at, err := views.ParseTime(reminderAt, st.Now().Local())
			if err != nil {
				return err
			}
			r, err := st.AddReminder(core.Reminder{
				Title:       strings.Join(args, " "),
				Time:        at,
				IsRepeating: reminderRepeat,
			})
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), fmt.Sprintf("reminder %s set for %s", shortID(r.ID), r.Time.Local().Format(timeLayout)))
			return nil
		})
	},
}

var reminderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reminders grouped by day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			groups := views.GroupReminders(st.Reminders(), nil)
			if reminderJSON {
				return writeJSON(cmd.OutOrStdout(), groups)
			}
			renderReminderGroups(cmd.OutOrStdout(), groups)
			return nil
		})
	},
}

var reminderDoneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Toggle the completion of a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			id, err := st.ResolveID(core.CollectionReminders, args[0])
			if err != nil {
				return err
			}
			r, found := st.ToggleReminderCompletion(id)
			if !found {
				return fmt.Errorf("reminder %s: %w", args[0], core.ErrNotFound)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReminder(r))
			return nil
		})
	},
}

var reminderSnoozeCmd = &cobra.Command{
	Use:   "snooze ID",
	Short: "Move a reminder later",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			id, err := st.ResolveID(core.CollectionReminders, args[0])
			if err != nil {
				return err
			}
			r, err := st.SnoozeReminder(id, snoozeMinutes)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), fmt.Sprintf("reminder %s snoozed to %s", shortID(r.ID), r.Time.Local().Format(timeLayout)))
			return nil
		})
	},
}

var reminderRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a reminder",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			id, err := st.ResolveID(core.CollectionReminders, args[0])
			if err != nil {
				return err
			}
			if !st.DeleteReminder(id) {
				return fmt.Errorf("reminder %s: %w", args[0], core.ErrNotFound)
			}
			success(cmd.OutOrStdout(), fmt.Sprintf("reminder %s deleted", shortID(id)))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reminderCmd)
	reminderCmd.AddCommand(reminderAddCmd, reminderListCmd, reminderDoneCmd, reminderSnoozeCmd, reminderRmCmd)

	reminderAddCmd.Flags().StringVar(&reminderAt, "at", "", "When the reminder is due")
	reminderAddCmd.Flags().BoolVar(&reminderRepeat, "repeat", false, "Mark as repeating")
	reminderAddCmd.MarkFlagRequired("at")

	reminderListCmd.Flags().BoolVar(&reminderJSON, "json", false, "Output in JSON format")

	reminderSnoozeCmd.Flags().IntVarP(&snoozeMinutes, "minutes", "m", 15, "Minutes to add")
}
