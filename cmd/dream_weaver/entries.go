package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"dream_weaver/internal/models"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List or add journal entries",
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		entries := a.journal.List()
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), a.bundle.T("noDreamsYet"))
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tMOOD\tTITLE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Local().Format(time.DateTime), a.bundle.T("mood_"+string(e.Mood)), e.Title)
		}
		return tw.Flush()
	},
}

var (
	addTitle   string
	addContent string
	addMood    string
	addTags    []string
)

var entriesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.journal.Create(cmd.Context(), models.EntryInput{
			Title: addTitle,
			Body:  addContent,
			Mood:  models.Mood(addMood),
			Tags:  addTags,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), entry.ID)
		return nil
	},
}

func init() {
	entriesAddCmd.Flags().StringVar(&addTitle, "title", "", "entry title")
	entriesAddCmd.Flags().StringVar(&addContent, "content", "", "what you dreamed")
	entriesAddCmd.Flags().StringVar(&addMood, "mood", string(models.MoodNeutral), "one of Happy, Calm, Anxious, Excited, Confused, Sad, Neutral, Inspired")
	entriesAddCmd.Flags().StringSliceVar(&addTags, "tags", nil, "comma separated tags")
	_ = entriesAddCmd.MarkFlagRequired("title")
	_ = entriesAddCmd.MarkFlagRequired("content")

	entriesCmd.AddCommand(entriesListCmd, entriesAddCmd)
}
