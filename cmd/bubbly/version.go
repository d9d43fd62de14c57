package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/bubbly"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bubbly",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bubbly version %s\n", bubbly.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
