package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oss-omni/omni/internal/discover"
)

var (
	indexForce             bool
	indexInclude           []string
	indexExclude           []string
	indexNoDefaultExcludes bool
	indexIncludeHidden     bool
	indexIncludeLarge      bool
	indexMaxFileSize       int64
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "index (or incrementally update) the workspace",
	Long: `index walks the workspace for Rust source files, parses every file
whose fingerprint has changed since the last index, and persists the
resulting manifest and parsed-symbol cache under <workspace>/.omni/.
Any existing BM25 cache there is discarded; the next search or query
rebuilds it.

Pass --force to discard the existing manifest and reparse every file.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "discard the existing manifest and reparse every file")
	indexCmd.Flags().StringSliceVar(&indexInclude, "include", nil, "glob patterns to include (repeatable)")
	indexCmd.Flags().StringSliceVar(&indexExclude, "exclude", nil, "glob patterns to exclude (repeatable)")
	indexCmd.Flags().BoolVar(&indexNoDefaultExcludes, "no-default-excludes", false, "disable the built-in target/vendor/node_modules/.git excludes")
	indexCmd.Flags().BoolVar(&indexIncludeHidden, "include-hidden", false, "include dotfiles and dot-directories")
	indexCmd.Flags().BoolVar(&indexIncludeLarge, "include-large", false, "don't skip files larger than --max-file-size")
	indexCmd.Flags().Int64Var(&indexMaxFileSize, "max-file-size", discover.DefaultMaxFileSize, "maximum file size in bytes to parse")
}

func runIndex(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return emit(nil, err)
	}

	opts := discover.Options{
		Include:           indexInclude,
		Exclude:           indexExclude,
		NoDefaultExcludes: indexNoDefaultExcludes,
		IncludeHidden:     indexIncludeHidden,
		IncludeLarge:      indexIncludeLarge,
		MaxFileSize:       indexMaxFileSize,
	}

	ctx := context.Background()
	if !isJSON() {
		fmt.Fprintf(os.Stderr, "indexing %s...\n", eng.Root)
	}

	var stats any
	if indexForce {
		s, err := eng.FullIndex(ctx, opts)
		if err != nil {
			return emit(nil, err)
		}
		stats = s
	} else {
		s, err := eng.Update(ctx, opts)
		if err != nil {
			return emit(nil, err)
		}
		stats = s
	}

	return emit(stats, nil)
}
