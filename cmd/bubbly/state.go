package main

import (
	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the internal state of the store and its storage adapter as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			out := map[string]any{
				st.ComponentType(): st.State(),
			}
			prefs := st.Preferences()
			if intro, ok := prefs.(introspection.Introspectable); ok {
				key := "preferences"
				if comp, ok := prefs.(introspection.Component); ok {
					key = comp.ComponentType()
				}
				out[key] = intro.State()
			}
			return writeJSON(cmd.OutOrStdout(), out)
		})
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
