package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oss-omni/omni/internal/config"
	"github.com/oss-omni/omni/internal/ocierr"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "write a starter .omni/config.yaml for the workspace",
	Long: `init creates <workspace>/.omni/config.yaml with the built-in
defaults, ready to edit. It does not overwrite an existing config file
or run an initial index.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ws := viper.GetString("workspace")
	if ws == "" {
		ws = "."
	}
	path, err := config.WriteDefault(ws)
	if err != nil {
		return emit(nil, ocierr.WrapInternal(err, "writing default config"))
	}
	result := struct {
		Path string `json:"path"`
	}{Path: path}
	return emit(result, nil)
}
