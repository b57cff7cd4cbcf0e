package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var createTableCmd = &cobra.Command{
	Use:   "create-table",
	Short: "Create the paper table and its secondary indexes",
	Long: `create-table provisions the single table with the AuthorIndex, PaperIdIndex
and KeywordIndex secondary indexes, then waits until it is active. An existing
table is left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wait, _ := cmd.Flags().GetDuration("wait")
		return ensureTable(cmd, wait)
	},
}

func init() {
	createTableCmd.Flags().Duration("wait", 5*time.Minute, "how long to wait for the table to become active")

	rootCmd.AddCommand(createTableCmd)
}

// ensureTable creates the configured table unless the store is in memory.
func ensureTable(cmd *cobra.Command, wait time.Duration) error {
	out := cmd.OutOrStdout()
	cfg := container.Config
	if cfg.StoreBackend == "memory" {
		fmt.Fprintln(out, "Using the in-memory store; no table to create.")
		return nil
	}

	fmt.Fprintf(out, "Creating DynamoDB table: %s\n", cfg.TableName)
	fmt.Fprintf(out, "Creating GSIs: %s, %s, %s\n", cfg.AuthorIndexName, cfg.PaperIDIndexName, cfg.KeywordIndexName)

	created, err := container.Table.EnsureTable(cmd.Context(), wait)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(out, "Table %s already exists.\n", cfg.TableName)
	}
	return nil
}
