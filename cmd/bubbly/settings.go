package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
	"github.com/aretw0/bubbly/pkg/core"
)

var (
	settingsAnimations    bool
	settingsNotifications bool
	settingsJSON          bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			return printSettings(cmd.OutOrStdout(), st.Settings())
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	Example: `  bubbly settings set --animations=false
  bubbly settings set --notifications=true`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch core.SettingsPatch
		if cmd.Flags().Changed("animations") {
			patch.AnimationsEnabled = &settingsAnimations
		}
		if cmd.Flags().Changed("notifications") {
			patch.NotificationsEnabled = &settingsNotifications
		}
		if patch.AnimationsEnabled == nil && patch.NotificationsEnabled == nil {
			return fmt.Errorf("nothing to change: pass --animations or --notifications")
		}

		return withStore(cmd, func(st *bubbly.Store) error {
			s, err := st.UpdateSettings(patch)
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), s)
		})
	},
}

func printSettings(w io.Writer, s core.Settings) error {
	if settingsJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "animations     %s\n", onOff(s.AnimationsEnabled))
	fmt.Fprintf(w, "notifications  %s\n", onOff(s.NotificationsEnabled))
	return nil
}

func onOff(v bool) string {
	if v {
		return successStyle.Render("on")
	}
	return mutedStyle.Render("off")
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	settingsCmd.PersistentFlags().BoolVar(&settingsJSON, "json", false, "Output in JSON format")
	settingsSetCmd.Flags().BoolVar(&settingsAnimations, "animations", true, "Enable animations")
	settingsSetCmd.Flags().BoolVar(&settingsNotifications, "notifications", true, "Enable notifications")
}
