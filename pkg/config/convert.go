package config

import (
	"fmt"
	"io"
	"time"

	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/logging"
	"github.com/getmockd/schemafaker/pkg/output"
	"github.com/getmockd/schemafaker/pkg/server"
)

// GeneratorOptions returns the session options the configuration selects.
// The seed is only applied when some source set it.
func (c *Config) GeneratorOptions() ([]generator.Option, error) {
	opts := []generator.Option{
		generator.WithLocale(c.Locale),
		generator.WithExampleProbability(c.ExampleProbability),
		generator.WithCollectionSize(c.Collection.Min, c.Collection.Max),
		generator.WithMaxDepth(c.MaxDepth),
	}
	if c.IsSeeded() {
		opts = append(opts, generator.WithSeed(c.Seed))
	}
	if c.Anchor != "" {
		anchor, err := time.Parse(time.RFC3339, c.Anchor)
		if err != nil {
			return nil, fmt.Errorf("invalid anchor %q: %w", c.Anchor, err)
		}
		opts = append(opts, generator.WithAnchor(anchor))
	}
	return opts, nil
}

// ServerConfig returns the mock server settings.
func (c *Config) ServerConfig(version string) server.Config {
	cfg := server.DefaultConfig()
	cfg.Host = c.Server.Host
	cfg.Port = c.Server.Port
	cfg.Count = c.Server.Count
	cfg.MaxConnections = c.Server.MaxConnections
	cfg.ReadTimeout = c.Server.ReadTimeout
	cfg.WriteTimeout = c.Server.WriteTimeout
	cfg.FreshCreateSessions = c.Server.FreshCreateSessions
	if version != "" {
		cfg.Version = version
	}
	return cfg
}

// LoggingConfig returns the logger settings, writing to w.
func (c *Config) LoggingConfig(w io.Writer) logging.Config {
	return logging.Config{
		Level:  logging.ParseLevel(c.Log.Level),
		Format: logging.ParseFormat(c.Log.Format),
		Output: w,
	}
}

// OutputFormat returns the configured output format.
func (c *Config) OutputFormat() output.Format {
	return output.ParseFormat(c.Format)
}
