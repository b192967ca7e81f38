// Package config loads omni's configuration by layering, in increasing
// priority: built-in defaults, a workspace config file (.omni/config.yaml),
// environment variables prefixed OMNI_, and CLI flags — the same viper
// layering TaskWing's InitConfig uses, adapted to omni's settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configName = "config"
	configDir  = ".omni"
	envPrefix  = "OMNI"
)

// Config is the complete, validated application configuration.
type Config struct {
	Workspace string       `mapstructure:"workspace" validate:"required"`
	LogLevel  string       `mapstructure:"logLevel" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string       `mapstructure:"logFormat" validate:"omitempty,oneof=text json"`
	Index     IndexConfig  `mapstructure:"index" validate:"required"`
	Search    SearchConfig `mapstructure:"search" validate:"required"`
}

// IndexConfig holds file-discovery and indexing settings.
type IndexConfig struct {
	Include           []string `mapstructure:"include"`
	Exclude           []string `mapstructure:"exclude"`
	NoDefaultExcludes bool     `mapstructure:"noDefaultExcludes"`
	IncludeHidden     bool     `mapstructure:"includeHidden"`
	IncludeLarge      bool     `mapstructure:"includeLarge"`
	MaxFileSizeBytes  int64    `mapstructure:"maxFileSizeBytes" validate:"omitempty,min=1"`
}

// SearchConfig holds BM25 query defaults.
type SearchConfig struct {
	DefaultTopK int `mapstructure:"defaultTopK" validate:"omitempty,min=1,max=1000"`
}

var validate = validator.New()

// Load layers defaults, the workspace config file, OMNI_* environment
// variables, and any flags already bound into v, then validates the
// result. workspace is the directory config.yaml is searched under
// (<workspace>/.omni/config.yaml) and becomes the default Workspace value.
func Load(v *viper.Viper, workspace string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	if err := godotenv.Load(filepath.Join(workspace, ".env")); err != nil {
		// Missing .env is fine; only unexpected read/parse errors matter
		// and there's no further fallback to attempt.
		_ = err
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// OCI_WORKSPACE is also accepted for the workspace, after OMNI_WORKSPACE.
	_ = v.BindEnv("workspace", "OCI_WORKSPACE")

	projectConfigDir := filepath.Join(workspace, configDir)
	v.AddConfigPath(projectConfigDir)
	v.AddConfigPath(workspace)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	setDefaults(v, workspace)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Workspace == "" {
		cfg.Workspace = workspace
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, workspace string) {
	v.SetDefault("workspace", workspace)
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "text")
	v.SetDefault("index.maxFileSizeBytes", 2<<20)
	v.SetDefault("search.defaultTopK", 10)
}

// WriteDefault writes a commented starter config.yaml under
// <workspace>/.omni/config.yaml, used by `omni init`. It does not
// overwrite an existing file.
func WriteDefault(workspace string) (string, error) {
	dir := filepath.Join(workspace, configDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, configName+".yaml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	defaults := defaultDocument{
		LogLevel:  "info",
		LogFormat: "text",
	}
	defaults.Index.MaxFileSizeBytes = 2 << 20
	defaults.Search.DefaultTopK = 10

	body, err := yaml.Marshal(defaults)
	if err != nil {
		return "", fmt.Errorf("marshaling default config: %w", err)
	}
	content := append([]byte("# omni configuration\n"), body...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// defaultDocument mirrors Config's shape with yaml tags matching the
// mapstructure keys Load expects, used only to render WriteDefault's
// starter file.
type defaultDocument struct {
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
	Index     struct {
		MaxFileSizeBytes int64 `yaml:"maxFileSizeBytes"`
	} `yaml:"index"`
	Search struct {
		DefaultTopK int `yaml:"defaultTopK"`
	} `yaml:"search"`
}
