package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oss-omni/omni/internal/logger"
	"github.com/oss-omni/omni/internal/query"
)

var (
	queryTopK    int
	queryFilters string
)

var queryCmd = &cobra.Command{
	Use:   "query <query>",
	Short: "search the BM25 index, returning byte spans and a body preview per hit",
	Long: `query is search's richer sibling: same BM25 scoring over the same
fields, but each hit also reports its byte span and a preview (the first
non-empty line of the symbol's body, truncated to ~120 characters).

--filters appends additional "key:value" filter terms (path, ext, kind) to
the query without having to fold them into the query string by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "n", 10, "number of results to return")
	queryCmd.Flags().StringVar(&queryFilters, "filters", "", `additional "key:value" filter terms to append to the query`)
}

func runQuery(cmd *cobra.Command, args []string) error {
	logger.SetLastQuery(strings.Join(args, " "))

	eng, err := newEngine()
	if err != nil {
		return emit(nil, err)
	}
	q := query.New(eng)

	raw := args[0]
	if queryFilters != "" {
		raw = raw + " " + queryFilters
	}

	results, err := q.Query(context.Background(), raw, query.SearchOptions{TopK: queryTopK})
	if err != nil {
		return emit(nil, err)
	}
	return emit(results, nil)
}
