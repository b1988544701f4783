package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names
const (
	EnvConfig              = "SCHEMAFAKER_CONFIG"
	EnvLocale              = "SCHEMAFAKER_LOCALE"
	EnvSeed                = "SCHEMAFAKER_SEED"
	EnvCount               = "SCHEMAFAKER_COUNT"
	EnvFormat              = "SCHEMAFAKER_FORMAT"
	EnvExampleProbability  = "SCHEMAFAKER_EXAMPLE_PROBABILITY"
	EnvCollectionMin       = "SCHEMAFAKER_COLLECTION_MIN"
	EnvCollectionMax       = "SCHEMAFAKER_COLLECTION_MAX"
	EnvMaxDepth            = "SCHEMAFAKER_MAX_DEPTH"
	EnvAnchor              = "SCHEMAFAKER_ANCHOR"
	EnvHost                = "SCHEMAFAKER_HOST"
	EnvPort                = "SCHEMAFAKER_PORT"
	EnvServerCount         = "SCHEMAFAKER_SERVER_COUNT"
	EnvMaxConnections      = "SCHEMAFAKER_MAX_CONNECTIONS"
	EnvReadTimeout         = "SCHEMAFAKER_READ_TIMEOUT"
	EnvWriteTimeout        = "SCHEMAFAKER_WRITE_TIMEOUT"
	EnvFreshCreateSessions = "SCHEMAFAKER_FRESH_CREATE_SESSIONS"
	EnvLogLevel            = "SCHEMAFAKER_LOG_LEVEL"
	EnvLogFormat           = "SCHEMAFAKER_LOG_FORMAT"
)

type envBinding struct {
	name  string
	key   string
	apply func(cfg *Config, v string) error
}

var envBindings = []envBinding{
	{EnvLocale, KeyLocale, func(c *Config, v string) error { c.Locale = v; return nil }},
	{EnvSeed, KeySeed, func(c *Config, v string) error { return parseUint(v, &c.Seed) }},
	{EnvCount, KeyCount, func(c *Config, v string) error { return parseInt(v, &c.Count) }},
	{EnvFormat, KeyFormat, func(c *Config, v string) error { c.Format = v; return nil }},
	{EnvExampleProbability, KeyExampleProbability, func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.ExampleProbability = f
		return nil
	}},
	{EnvCollectionMin, KeyCollectionMin, func(c *Config, v string) error { return parseInt(v, &c.Collection.Min) }},
	{EnvCollectionMax, KeyCollectionMax, func(c *Config, v string) error { return parseInt(v, &c.Collection.Max) }},
	{EnvMaxDepth, KeyMaxDepth, func(c *Config, v string) error { return parseInt(v, &c.MaxDepth) }},
	{EnvAnchor, KeyAnchor, func(c *Config, v string) error { c.Anchor = v; return nil }},
	{EnvHost, KeyHost, func(c *Config, v string) error { c.Server.Host = v; return nil }},
	{EnvPort, KeyPort, func(c *Config, v string) error { return parseInt(v, &c.Server.Port) }},
	{EnvServerCount, KeyServerCount, func(c *Config, v string) error { return parseInt(v, &c.Server.Count) }},
	{EnvMaxConnections, KeyMaxConnections, func(c *Config, v string) error { return parseInt(v, &c.Server.MaxConnections) }},
	{EnvReadTimeout, KeyReadTimeout, func(c *Config, v string) error { return parseDuration(v, &c.Server.ReadTimeout) }},
	{EnvWriteTimeout, KeyWriteTimeout, func(c *Config, v string) error { return parseDuration(v, &c.Server.WriteTimeout) }},
	{EnvFreshCreateSessions, KeyFreshCreateSessions, func(c *Config, v string) error {
		c.Server.FreshCreateSessions = ParseBool(v)
		return nil
	}},
	{EnvLogLevel, KeyLogLevel, func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{EnvLogFormat, KeyLogFormat, func(c *Config, v string) error { c.Log.Format = v; return nil }},
}

// LoadEnvConfig applies the SCHEMAFAKER_* environment variables that are
// set. Malformed numbers and durations are reported together.
func LoadEnvConfig(cfg *Config) error {
	var errs []error
	for _, b := range envBindings {
		v := strings.TrimSpace(os.Getenv(b.name))
		if v == "" {
			continue
		}
		if err := b.apply(cfg, v); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", b.name, v, err))
			continue
		}
		cfg.SetSource(b.key, SourceEnv)
	}
	return errors.Join(errs...)
}

// ParseBool accepts true/1/yes/on, case-insensitively.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.New("must be an integer")
	}
	*dst = n
	return nil
}

func parseUint(v string, dst *uint64) error {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return errors.New("must be a non-negative integer")
	}
	*dst = n
	return nil
}

// parseDuration accepts Go durations ("30s") and plain seconds ("30").
func parseDuration(v string, dst *time.Duration) error {
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return errors.New("must be a duration such as 30s")
	}
	*dst = d
	return nil
}
