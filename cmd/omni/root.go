package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oss-omni/omni/internal/config"
	"github.com/oss-omni/omni/internal/envelope"
	"github.com/oss-omni/omni/internal/indexer"
	"github.com/oss-omni/omni/internal/logger"
	"github.com/oss-omni/omni/internal/ocierr"
)

// version is set via ldflags at build time, e.g.
// -ldflags "-X github.com/oss-omni/omni/cmd/omni.version=1.0.0".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "omni",
	Short: "omni — Rust code intelligence: symbols, calls, topology, search",
	Long: `omni indexes a Rust workspace and answers structural queries over it:
symbol lookup, caller/callee traversal, repository topology, and a
field-weighted BM25 search over every extracted symbol.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ranPersistentPreRun = true
		executedArgs = args
		logger.SetCommand(strings.Join(os.Args[1:], " "))
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

var executedArgs []string

// ranPersistentPreRun is set once PersistentPreRunE runs, which cobra only
// reaches after flag parsing and argument-count validation succeed. If
// Execute sees an error with this still false, the error is cobra's own
// (unknown command, wrong arg count, unknown flag) rather than anything a
// command's RunE produced, so it's a usage error regardless of what
// ocierr.CodeOf makes of it.
var ranPersistentPreRun bool

// Execute runs the root command and translates returned errors into the
// exit codes: 0 success, 2 usage/argument error, 1 operation error.
func Execute() {
	initCrashHandler()
	defer logger.HandlePanic()

	rootCmd.SuggestionsMinimumDistance = 2

	err := rootCmd.Execute()
	if err == nil {
		return
	}

	if _, already := err.(errSilent); !already {
		if isJSON() {
			out, _ := envelope.Marshal(envelope.Failure(err))
			fmt.Fprintln(os.Stdout, string(out))
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
	}

	os.Exit(exitCode(err, ranPersistentPreRun))
}

// exitCode maps a command error to its exit status: 2 for a usage error
// (cobra rejected the invocation before any RunE ran, signalled by
// ranPreRun being false) or for an ocierr.CodeInvalidQuery/CodeNotFound
// operation error, 1 for anything else.
func exitCode(err error, ranPreRun bool) int {
	if !ranPreRun {
		return 2
	}
	switch ocierr.CodeOf(err) {
	case ocierr.CodeInvalidQuery, ocierr.CodeNotFound:
		return 2
	default:
		return 1
	}
}

func initCrashHandler() {
	logger.SetVersion(version)
	if len(os.Args) > 1 {
		logger.SetCommand(strings.Join(os.Args[1:], " "))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace root to index/query")
	rootCmd.PersistentFlags().Bool("json", false, "emit the response envelope as JSON")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	cfg, err := loadedConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "omni: config error: %v\n", err)
		os.Exit(1)
	}
	logger.SetBasePath(workspaceStateDir(cfg.Workspace))
}

var globalConfig *config.Config

func loadedConfig() (*config.Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	ws := viper.GetString("workspace")
	if ws == "" {
		ws = "."
	}
	cfg, err := config.Load(viper.GetViper(), ws)
	if err != nil {
		return nil, err
	}
	if viper.GetBool("verbose") {
		cfg.LogLevel = "debug"
	}
	globalConfig = cfg
	return cfg, nil
}

func workspaceStateDir(workspace string) string {
	return workspace + "/.omni"
}

func isJSON() bool {
	return viper.GetBool("json")
}

// newEngine loads (or lazily creates) the indexer engine for the current
// workspace, replaying any persisted manifest/state/BM25 caches.
func newEngine() (*indexer.Engine, error) {
	cfg, err := loadedConfig()
	if err != nil {
		return nil, ocierr.WrapInternal(err, "loading config")
	}
	eng := indexer.NewEngine(cfg.Workspace, logger.New(cfg.LogLevel, cfg.LogFormat))
	if err := eng.Load(); err != nil {
		return nil, err
	}
	return eng, nil
}

func emit(result any, err error) error {
	if err != nil {
		if isJSON() {
			out, _ := envelope.Marshal(envelope.Failure(err))
			fmt.Fprintln(os.Stdout, string(out))
			return errSilent{err}
		}
		return err
	}
	env := envelope.Success(result)
	if isJSON() {
		out, mErr := envelope.Marshal(env)
		if mErr != nil {
			return mErr
		}
		fmt.Println(string(out))
		return nil
	}
	out, mErr := envelope.MarshalIndent(env)
	if mErr != nil {
		return mErr
	}
	fmt.Println(string(out))
	return nil
}

// errSilent wraps an error already printed as a JSON envelope, so
// Execute's non-JSON stderr branch doesn't print it a second time while
// still letting Execute map its code to the right exit status.
type errSilent struct{ err error }

func (e errSilent) Error() string { return e.err.Error() }
func (e errSilent) Unwrap() error { return e.err }
