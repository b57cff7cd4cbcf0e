package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"paperindex/application/loading"
	"paperindex/application/ports"
	"paperindex/domain/paper"
	"paperindex/pkg/errors"
)

var loadCmd = &cobra.Command{
	Use:   "load <papers.json>",
	Short: "Project and write every paper of a file",
	Long: `load reads a JSON array of papers or a JSON Lines file, projects each paper
into its category, author and keyword views and writes them in bounded
batches. Reloading the same file is idempotent.

After the run it prints the denormalization factor and the storage breakdown
of the table and each secondary index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		createTable, _ := cmd.Flags().GetBool("create-table")
		if createTable {
			if err := ensureTable(cmd, 5*time.Minute); err != nil {
				return err
			}
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open papers file: %w", err)
		}
		defer f.Close()

		source, err := paper.NewReader(f)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loading papers from %s...\n", args[0])

		report, loadErr := container.Coordinator.Load(cmd.Context(), source)
		printLoadReport(out, report)

		if loadErr != nil {
			if ids := unwrittenIDs(loadErr); len(ids) > 0 {
				fmt.Fprintf(out, "Papers left unwritten (%d): %s\n", len(ids), strings.Join(ids, " "))
			}
			return loadErr
		}

		printBreakdown(cmd.Context(), out, container.Backend.Inspector)
		return nil
	},
}

func init() {
	loadCmd.Flags().Bool("create-table", true, "create the table first when it does not exist")
	loadCmd.Flags().Int("workers", 0, "concurrent batch writers (default from LOAD_WORKERS)")

	rootCmd.AddCommand(loadCmd)
}

// printLoadReport writes the outcome of a load run in the order an operator
// reads it.
func printLoadReport(out io.Writer, report *loading.LoadReport) {
	if report == nil {
		return
	}
	fmt.Fprintf(out, "Loaded %d papers\n", report.PapersProcessed)
	fmt.Fprintf(out, "Created %d DynamoDB items (denormalized).\n", report.ViewsWritten)
	fmt.Fprintf(out, "Denormalization factor: %.2f\n", report.DenormalizationFactor)

	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d papers:\n", len(report.Skipped))
		for _, s := range report.Skipped {
			fmt.Fprintf(out, "  #%d %s: %s\n", s.Position, s.ArxivID, s.Reason)
		}
	}
	if report.QualityWarnings > 0 {
		fmt.Fprintf(out, "Data quality warnings: %d (see log)\n", report.QualityWarnings)
	}
	fmt.Fprintf(out, "Run %s finished in %s\n", report.RunID, report.Duration.Round(time.Millisecond))
}

// printBreakdown writes item counts of the table and each index. Counts from
// DynamoDB may lag the load by several hours.
func printBreakdown(ctx context.Context, out io.Writer, inspector ports.StorageInspector) {
	breakdown, err := inspector.Breakdown(ctx)
	if err != nil {
		fmt.Fprintf(out, "\nStorage breakdown unavailable: %v\n", err)
		return
	}

	fmt.Fprintln(out, "\nStorage breakdown:")
	fmt.Fprintf(out, "Main table items: %d\n", breakdown.TableItems)
	for _, name := range sortedKeys(breakdown.Indexes) {
		fmt.Fprintf(out, "%s items: %d\n", name, breakdown.Indexes[name])
	}
}

// unwrittenIDs extracts the ids a failed run left unwritten, for scripting.
func unwrittenIDs(err error) []string {
	if !errors.IsLoadPartialFailure(err) {
		return nil
	}
	return errors.UnwrittenPaperIDs(err)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
