package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".schemafaker.yaml", ".schemafaker.yml", ".schemafaker.json"}

// FindLocalConfig searches the current directory for a local config file.
// Returns an empty path if there is none.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// LoadConfigFile loads a Config from a YAML or JSON file. Unknown keys are
// rejected.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(path, data)
}

// ParseConfig parses config file content; path is used in errors only.
func ParseConfig(path string, data []byte) (*Config, error) {
	var cfg Config
	cfg.Path = path
	cfg.Sources = make(map[string]string)
	cfg.SetFields = make(map[string]bool)

	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, newConfigError(path, err)
	}
	if len(root.Content) > 0 {
		if doc := root.Content[0]; doc.Kind == yaml.MappingNode {
			collectKeys(doc, "", cfg.SetFields)
		} else if doc.Kind != yaml.ScalarNode || doc.Tag != "!!null" {
			return nil, &ConfigError{Path: path, Line: doc.Line, Column: doc.Column, Message: "config must be a mapping"}
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, newConfigError(path, err)
	}
	return &cfg, nil
}

// collectKeys records the dotted paths of all mapping keys below n.
func collectKeys(n *yaml.Node, prefix string, acc map[string]bool) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		acc[key] = true
		if v := n.Content[i+1]; v.Kind == yaml.MappingNode {
			collectKeys(v, key, acc)
		}
	}
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s (line %d, column %d): %s", e.Path, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Message)
	default:
		return e.Path + ": " + e.Message
	}
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func newConfigError(path string, err error) *ConfigError {
	msg := err.Error()
	ce := &ConfigError{Path: path, Message: msg}
	if m := yamlLineRe.FindStringSubmatch(msg); m != nil {
		ce.Line, _ = strconv.Atoi(m[1])
	}
	return ce
}

// Load builds the configuration from defaults, the config file and the
// environment. An explicit path must exist; without one the local config
// file is used when present. Flags are applied by the caller on top.
func Load(path string) (*Config, error) {
	cfg := NewDefault()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		local, err := FindLocalConfig()
		if err != nil {
			return nil, err
		}
		path = local
	}

	if path != "" {
		fileCfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, fileCfg, SourceFile)
		cfg.Path = path
	}

	if err := LoadEnvConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
