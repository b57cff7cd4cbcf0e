// Package main is the entry point for the papers CLI: it provisions the
// table, loads paper files and runs the read access patterns.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"paperindex/infrastructure/config"
	"paperindex/infrastructure/di"
)

// container is built once per invocation by the root command.
var container *di.Container

// rootCmd is the base command for the papers CLI.
var rootCmd = &cobra.Command{
	Use:   "papers",
	Short: "Load and query the denormalized paper index",
	Long: `papers maintains a single-table index of academic papers. Each paper is
written once per category, author and abstract keyword so that every read is
a single index lookup.

Configuration comes from the environment (and CONFIG_FILE); the persistent
flags override it for one invocation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		container, err = di.InitializeContainer(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			container.Shutdown()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("table", "", "table name (default from TABLE_NAME or arxiv-papers)")
	rootCmd.PersistentFlags().String("region", "", "AWS region (default from AWS_REGION)")
	rootCmd.PersistentFlags().String("endpoint", "", "DynamoDB endpoint, e.g. http://localhost:8000")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
}

// applyFlagOverrides copies every persistent flag the user set onto cfg.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("table") {
		cfg.TableName, _ = flags.GetString("table")
	}
	if flags.Changed("region") {
		cfg.AWSRegion, _ = flags.GetString("region")
	}
	if flags.Changed("endpoint") {
		cfg.DynamoDBEndpoint, _ = flags.GetString("endpoint")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("workers") {
		cfg.Domain.LoadWorkers, _ = flags.GetInt("workers")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
