package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/oss-omni/omni/internal/logger"
	"github.com/oss-omni/omni/internal/query"
)

var symbolPrefix bool

var symbolCmd = &cobra.Command{
	Use:   "symbol <name>",
	Short: "look up a symbol by exact scoped name or simple name",
	Long: `symbol resolves name against the index: an exact scoped name
("crate::module::Type::method") returns that single definition; any other
name is looked up as a simple name and may return several matches across
the workspace. Pass --prefix to additionally match name as a scoped-name
prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runSymbol,
}

func init() {
	rootCmd.AddCommand(symbolCmd)
	symbolCmd.Flags().BoolVar(&symbolPrefix, "prefix", false, "also match name as a scoped-name prefix")
}

func runSymbol(cmd *cobra.Command, args []string) error {
	logger.SetLastQuery(strings.Join(args, " "))

	eng, err := newEngine()
	if err != nil {
		return emit(nil, err)
	}
	q := query.New(eng)

	defs, err := q.Symbol(args[0], symbolPrefix)
	if err != nil {
		return emit(nil, err)
	}
	return emit(defs, nil)
}
