// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gitbook-pandoc/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs recorded in the ledger",
	Long: `History lists the conversion runs recorded in the SQLite ledger given by
--ledger, newest first. With --run it lists the documents of one run with
their outcome.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	historyCmd.Flags().Int64("run", 0, "list the documents of this run")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := viper.GetString("ledger")
	if path == "" {
		return fmt.Errorf("--ledger is required")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetInt64("run")

	store, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if runID != 0 {
		docs, err := store.Documents(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no documents recorded for run %d", runID)
		}
		return printDocuments(cmd.OutOrStdout(), docs)
	}

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}
	return printRuns(cmd.OutOrStdout(), runs)
}

func printRuns(w io.Writer, runs []ledger.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tCONVERTED\tSKIPPED\tFAILED\tSOURCE")
	for _, r := range runs {
		converted := fmt.Sprint(r.Converted)
		if r.FinishedAt.IsZero() {
			converted = "incomplete"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), converted, r.Skipped, r.Failed, r.Source)
	}
	return tw.Flush()
}

func printDocuments(w io.Writer, docs []ledger.Document) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tDEPTH\tSTATUS\tPATH\tDETAIL")
	for _, d := range docs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", d.Seq, d.Depth, d.Status, d.Path, d.Detail)
	}
	return tw.Flush()
}
