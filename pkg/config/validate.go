package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getmockd/schemafaker/pkg/output"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate reports every impossible value in the configuration.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Count < 1 {
		add("count %d must be at least 1", c.Count)
	}
	if f := output.ParseFormat(c.Format); f == output.FormatUnknown {
		add("format %q is not supported (use %s)", c.Format, formatNames())
	}
	if c.ExampleProbability < 0 || c.ExampleProbability > 1 {
		add("exampleProbability %g is out of range [0, 1]", c.ExampleProbability)
	}
	if c.Collection.Min < 0 {
		add("collection.min %d cannot be negative", c.Collection.Min)
	}
	if c.Collection.Max < c.Collection.Min {
		add("collection.max %d is below collection.min %d", c.Collection.Max, c.Collection.Min)
	}
	if c.MaxDepth < 1 {
		add("maxDepth %d must be at least 1", c.MaxDepth)
	}
	if c.Anchor != "" {
		if _, err := time.Parse(time.RFC3339, c.Anchor); err != nil {
			add("anchor %q is not an RFC 3339 time", c.Anchor)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		add("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.Count < 1 {
		add("server.count %d must be at least 1", c.Server.Count)
	}
	if c.Server.MaxConnections < 0 {
		add("server.maxConnections %d cannot be negative", c.Server.MaxConnections)
	}
	if c.Server.ReadTimeout < 0 {
		add("server.readTimeout %s cannot be negative", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		add("server.writeTimeout %s cannot be negative", c.Server.WriteTimeout)
	}

	if !oneOf(c.Log.Level, validLogLevels) {
		add("log.level %q is not one of %s", c.Log.Level, strings.Join(validLogLevels, ", "))
	}
	if !oneOf(c.Log.Format, validLogFormats) {
		add("log.format %q is not one of %s", c.Log.Format, strings.Join(validLogFormats, ", "))
	}
	return errors.Join(errs...)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

func formatNames() string {
	names := make([]string, len(output.Formats))
	for i, f := range output.Formats {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
