package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/oss-omni/omni/internal/logger"
	"github.com/oss-omni/omni/internal/query"
)

var foldCmd = &cobra.Command{
	Use:   "fold <path>",
	Short: "print a file's signature skeleton",
	Long: `fold lists every symbol defined in path, nested ones included — its scoped
name, kind, signature, and line — ordered by source position, without
function or method bodies. Useful for getting a file's structural outline
without reading it in full.`,
	Args: cobra.ExactArgs(1),
	RunE: runFold,
}

func init() {
	rootCmd.AddCommand(foldCmd)
}

func runFold(cmd *cobra.Command, args []string) error {
	logger.SetLastQuery(strings.Join(args, " "))

	eng, err := newEngine()
	if err != nil {
		return emit(nil, err)
	}
	q := query.New(eng)

	entries, err := q.Fold(args[0])
	if err != nil {
		return emit(nil, err)
	}
	return emit(entries, nil)
}
