package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/types"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit      int
		stats      bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored analyses",
		Long:  "List analyses saved with analyze --save or through the API, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be a positive integer")
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			printer := observability.NewPrinter(out)

			if stats {
				st, err := store.Stats(ctx)
				if err != nil {
					return fmt.Errorf("failed to compute stats: %w", err)
				}
				if jsonOutput {
					return json.NewEncoder(out).Encode(st)
				}
				printer.PrintStats(st)
				return nil
			}

			records, err := store.ListAnalyses(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list analyses: %w", err)
			}
			if jsonOutput {
				return json.NewEncoder(out).Encode(types.HistoryResponse{Count: len(records), Analyses: records})
			}
			printer.PrintHistory(records)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", db.DefaultListLimit, "Maximum number of analyses to show")
	cmd.Flags().BoolVar(&stats, "stats", false, "Show aggregate statistics instead of the list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}
