package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oss-omni/omni/internal/discover"
	omniwatch "github.com/oss-omni/omni/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "watch the workspace and reindex changed files as they're saved",
	Long: `watch keeps the index current as Rust files in the workspace are
created, edited, or removed, debouncing bursts of editor events into a
single reparse per file. Runs until interrupted (Ctrl-C).`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return emit(nil, err)
	}

	// Establish a baseline index before watching for incremental changes.
	if _, err := eng.Update(context.Background(), discover.Options{}); err != nil {
		return emit(nil, err)
	}

	w, err := omniwatch.New(eng, discover.Options{}, 0)
	if err != nil {
		return emit(nil, err)
	}
	w.OnEvent = func(path string, kind omniwatch.EventKind, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "watch: %s: %v\n", path, err)
			return
		}
		verb := "updated"
		if kind == omniwatch.EventRemoved {
			verb = "removed"
		}
		fmt.Fprintf(os.Stderr, "watch: %s %s\n", verb, path)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)...\n", eng.Root)
	return w.Run(ctx)
}
