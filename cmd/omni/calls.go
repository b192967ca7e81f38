package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/oss-omni/omni/internal/logger"
	"github.com/oss-omni/omni/internal/ocierr"
	"github.com/oss-omni/omni/internal/query"
)

var callsDirection string

var callsCmd = &cobra.Command{
	Use:   "calls <name>",
	Short: "list callers of or callees from a symbol",
	Long: `calls traverses the call graph in one direction.

--direction callers (the default) lists every call site whose callee
name is name. --direction callees lists every call made from within the
function or method whose scoped name is name.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalls,
}

func init() {
	rootCmd.AddCommand(callsCmd)
	callsCmd.Flags().StringVar(&callsDirection, "direction", "callers", "callers|callees")
}

func runCalls(cmd *cobra.Command, args []string) error {
	logger.SetLastQuery(strings.Join(args, " "))

	eng, err := newEngine()
	if err != nil {
		return emit(nil, err)
	}
	q := query.New(eng)

	switch callsDirection {
	case "callers":
		edges, err := q.Callers(args[0])
		if err != nil {
			return emit(nil, err)
		}
		return emit(edges, nil)
	case "callees":
		edges, err := q.Callees(args[0])
		if err != nil {
			return emit(nil, err)
		}
		return emit(edges, nil)
	default:
		return emit(nil, ocierr.InvalidQuery("invalid --direction %q: must be callers or callees", callsDirection))
	}
}
