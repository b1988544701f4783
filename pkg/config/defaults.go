package config

import (
	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/output"
	"github.com/getmockd/schemafaker/pkg/server"
)

// DefaultCount is the number of instances generate produces.
const DefaultCount = 1

// DefaultLocale is the realistic-value locale.
const DefaultLocale = "en_US"

// NewDefault creates a new Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		Locale:             DefaultLocale,
		Count:              DefaultCount,
		Format:             string(output.FormatJSON),
		ExampleProbability: generator.DefaultExampleProbability,
		Collection: Collection{
			Min: generator.DefaultCollectionMin,
			Max: generator.DefaultCollectionMax,
		},
		MaxDepth: generator.DefaultMaxDepth,
		Server: Server{
			Host:         server.DefaultHost,
			Port:         server.DefaultPort,
			Count:        server.DefaultCount,
			ReadTimeout:  server.DefaultReadTimeout,
			WriteTimeout: server.DefaultWriteTimeout,
		},
		Log: Log{
			Level:  "warn",
			Format: "text",
		},
		Sources: make(map[string]string),
	}

	for _, key := range []string{
		KeyLocale, KeySeed, KeyCount, KeyFormat, KeyExampleProbability,
		KeyCollectionMin, KeyCollectionMax, KeyMaxDepth,
		KeyHost, KeyPort, KeyServerCount, KeyMaxConnections,
		KeyReadTimeout, KeyWriteTimeout, KeyFreshCreateSessions,
		KeyLogLevel, KeyLogFormat,
	} {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}
