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
	noteContent  string
	noteFavorite bool
	noteOrder    string
	noteSearch   string
	noteJSON     bool
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Add, list and favorite notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add TITLE...",
	Short: "Add a note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			note, err := st.AddNote(core.Note{
				Title:      strings.Join(args, " "),
				Content:    noteContent,
				IsFavorite: noteFavorite,
			})
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), fmt.Sprintf("note %s added", shortID(note.ID)))
			return nil
		})
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := views.ParseNoteOrder(noteOrder)
		if err != nil {
			return err
		}
		return withStore(cmd, func(st *bubbly.Store) error {
			notes := views.SortNotes(st.Notes(), order, noteSearch)
			if noteJSON {
				return writeJSON(cmd.OutOrStdout(), notes)
			}
			renderNotes(cmd.OutOrStdout(), notes)
			return nil
		})
	},
}

var noteFavCmd = &cobra.Command{
	Use:   "fav ID",
	Short: "Toggle the favorite flag of a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *bubbly.Store) error {
			id, err := st.ResolveID(core.CollectionNotes, args[0])
			if err != nil {
				return err
			}
			note, found := st.ToggleFavorite(id)
			if !found {
				return fmt.Errorf("note %s: %w", args[0], core.ErrNotFound)
			}
			state := "unfavorited"
			if note.IsFavorite {
				state = "favorited"
			}
			success(cmd.OutOrStdout(), fmt.Sprintf("note %s %s", shortID(note.ID), state))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteFavCmd)

	noteAddCmd.Flags().StringVarP(&noteContent, "content", "c", "", "Note body")
	noteAddCmd.Flags().BoolVar(&noteFavorite, "fav", false, "Mark as favorite")

	noteListCmd.Flags().StringVar(&noteOrder, "order", "newest", "Order: newest, oldest or favorites")
	noteListCmd.Flags().StringVarP(&noteSearch, "search", "s", "", "Only notes whose title contains this text")
	noteListCmd.Flags().BoolVar(&noteJSON, "json", false, "Output in JSON format")
}
