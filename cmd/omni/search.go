package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oss-omni/omni/internal/logger"
	"github.com/oss-omni/omni/internal/query"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "search the BM25 index over every indexed symbol",
	Long: `search tokenizes the query and scores it against every indexed
symbol's path, identifier, doc-comment/attribute, and body-text fields,
field weights skewed toward identifier matches.

Query syntax: "-term" excludes a term; "key:value" filters on path, ext,
or kind (e.g. "kind:struct parser").`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 10, "number of results to return")
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger.SetLastQuery(strings.Join(args, " "))

	eng, err := newEngine()
	if err != nil {
		return emit(nil, err)
	}
	q := query.New(eng)

	results, err := q.Search(context.Background(), args[0], query.SearchOptions{TopK: searchTopK})
	if err != nil {
		return emit(nil, err)
	}
	return emit(results, nil)
}
