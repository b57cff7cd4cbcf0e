package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"

	"paperindex/application/queries"
	"paperindex/pkg/errors"
)

// envelope is the JSON document every query command prints.
type envelope struct {
	QueryType       string                 `json:"query_type"`
	Parameters      map[string]interface{} `json:"parameters"`
	Results         interface{}            `json:"results"`
	Count           int                    `json:"count"`
	ExecutionTimeMS float64                `json:"execution_time_ms"`
}

// newEnvelope wraps a result. A single-paper query reports its paper as one
// object instead of a list, or null when there is none.
func newEnvelope(result *queries.Result, single bool, elapsed time.Duration) envelope {
	env := envelope{
		QueryType:       result.QueryType,
		Parameters:      result.Parameters,
		Results:         result.Papers,
		Count:           result.Count,
		ExecutionTimeMS: float64(elapsed.Microseconds()) / 1000,
	}
	if single {
		env.Results = nil
		if first, ok := result.First(); ok {
			env.Results = first
		}
	}
	return env
}

func writeEnvelope(out io.Writer, env envelope) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// runQuery times run, prints its envelope and reports a miss on single-paper
// queries as an error so scripts can test the exit status.
func runQuery(cmd *cobra.Command, single bool, run func(ctx context.Context, r *queries.Router) (*queries.Result, error)) error {
	started := time.Now()
	result, err := run(cmd.Context(), container.Router)
	if err != nil {
		return err
	}

	if err := writeEnvelope(cmd.OutOrStdout(), newEnvelope(result, single, time.Since(started))); err != nil {
		return err
	}
	if single && result.Count == 0 {
		return errors.NewNotFoundError("paper")
	}
	return nil
}

var recentCmd = &cobra.Command{
	Use:   "recent <category>",
	Short: "List the newest papers of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return runQuery(cmd, false, func(ctx context.Context, r *queries.Router) (*queries.Result, error) {
			return r.RecentInCategory(ctx, args[0], limit)
		})
	},
}

var authorCmd = &cobra.Command{
	Use:   "author <name>",
	Short: "List every paper of an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, false, func(ctx context.Context, r *queries.Router) (*queries.Result, error) {
			return r.PapersByAuthor(ctx, args[0])
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <arxiv_id>",
	Short: "Fetch one paper with its abstract and keywords",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, true, func(ctx context.Context, r *queries.Router) (*queries.Result, error) {
			return r.PaperByID(ctx, args[0])
		})
	},
}

var dateRangeCmd = &cobra.Command{
	Use:   "daterange <category> <start_date> <end_date>",
	Short: "List papers of a category published within a date range",
	Long: `daterange lists the papers of a category published from start_date through
end_date inclusive, oldest first. Dates are YYYY-MM-DD.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, false, func(ctx context.Context, r *queries.Router) (*queries.Result, error) {
			return r.PapersInDateRange(ctx, args[0], args[1], args[2])
		})
	},
}

var keywordCmd = &cobra.Command{
	Use:   "keyword <keyword>",
	Short: "List the newest papers tagged with an abstract keyword",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return runQuery(cmd, false, func(ctx context.Context, r *queries.Router) (*queries.Result, error) {
			return r.PapersByKeyword(ctx, args[0], limit)
		})
	},
}

func init() {
	recentCmd.Flags().Int("limit", 0, "maximum number of results (default from QUERY_DEFAULT_LIMIT)")
	keywordCmd.Flags().Int("limit", 0, "maximum number of results (default from QUERY_DEFAULT_LIMIT)")

	rootCmd.AddCommand(recentCmd, authorCmd, getCmd, dateRangeCmd, keywordCmd)
}
