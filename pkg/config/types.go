package config

import "time"

// Config is the complete schemafaker configuration. Values can come from
// several sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (SCHEMAFAKER_*)
// 3. Config file (--config, else ./.schemafaker.yaml)
// 4. Default values (lowest priority)
type Config struct {
	// Generation settings
	Locale             string     `yaml:"locale" json:"locale"`
	Seed               uint64     `yaml:"seed" json:"seed"`
	Count              int        `yaml:"count" json:"count"`
	Format             string     `yaml:"format" json:"format"`
	ExampleProbability float64    `yaml:"exampleProbability" json:"exampleProbability"`
	Collection         Collection `yaml:"collection" json:"collection"`
	MaxDepth           int        `yaml:"maxDepth" json:"maxDepth"`
	// Anchor is the RFC 3339 reference time of seeded runs.
	Anchor string `yaml:"anchor,omitempty" json:"anchor,omitempty"`

	Server Server `yaml:"server" json:"server"`
	Log    Log    `yaml:"log" json:"log"`

	// Path is the config file the values were read from, if any.
	Path string `yaml:"-" json:"-"`

	// SetFields records the keys present in a loaded file, so that explicit
	// zero values (seed: 0, freshCreateSessions: false) still override.
	SetFields map[string]bool `yaml:"-" json:"-"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`
}

// Collection is the default length range of sequences and mappings.
type Collection struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Server holds the mock server settings.
type Server struct {
	Host                string        `yaml:"host" json:"host"`
	Port                int           `yaml:"port" json:"port"`
	Count               int           `yaml:"count" json:"count"`
	MaxConnections      int           `yaml:"maxConnections" json:"maxConnections"`
	ReadTimeout         time.Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout        time.Duration `yaml:"writeTimeout" json:"writeTimeout"`
	FreshCreateSessions bool          `yaml:"freshCreateSessions" json:"freshCreateSessions"`
}

// Log holds the logging settings.
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Config sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Keys of the configuration values, as used in Sources and SetFields.
const (
	KeyLocale              = "locale"
	KeySeed                = "seed"
	KeyCount               = "count"
	KeyFormat              = "format"
	KeyExampleProbability  = "exampleProbability"
	KeyCollectionMin       = "collection.min"
	KeyCollectionMax       = "collection.max"
	KeyMaxDepth            = "maxDepth"
	KeyAnchor              = "anchor"
	KeyHost                = "server.host"
	KeyPort                = "server.port"
	KeyServerCount         = "server.count"
	KeyMaxConnections      = "server.maxConnections"
	KeyReadTimeout         = "server.readTimeout"
	KeyWriteTimeout        = "server.writeTimeout"
	KeyFreshCreateSessions = "server.freshCreateSessions"
	KeyLogLevel            = "log.level"
	KeyLogFormat           = "log.format"
)

// IsSeeded reports whether a seed was configured by any source.
func (c *Config) IsSeeded() bool {
	src, ok := c.Sources[KeySeed]
	return ok && src != SourceDefault
}

// SetSource records the origin of a value.
func (c *Config) SetSource(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}
