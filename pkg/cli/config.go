package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/getmockd/schemafaker/pkg/config"
	"github.com/getmockd/schemafaker/pkg/logging"
)

// flagOverride applies a command-line flag on top of the loaded config when
// the user set it explicitly.
type flagOverride struct {
	flag  string
	key   string
	apply func(cfg *config.Config)
}

// persistentOverrides are the root flags every command honours.
func persistentOverrides() []flagOverride {
	return []flagOverride{
		{"log-level", config.KeyLogLevel, func(c *config.Config) { c.Log.Level = logLevel }},
		{"log-format", config.KeyLogFormat, func(c *config.Config) { c.Log.Format = logFormat }},
	}
}

// loadConfig resolves the configuration for cmd: defaults, config file,
// environment, then the flags the user changed. The result is validated.
func loadConfig(cmd *cobra.Command, overrides []flagOverride) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	for _, o := range append(persistentOverrides(), overrides...) {
		if flags.Changed(o.flag) {
			o.apply(cfg)
			cfg.SetSource(o.key, config.SourceFlag)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger, writing to the command's stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.New(cfg.LoggingConfig(cmd.ErrOrStderr()))
}
