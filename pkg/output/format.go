package output

import (
	"path/filepath"
	"strings"
)

// Format is an output encoding for generated instances.
type Format string

// Supported output formats.
const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"   // indented JSON array
	FormatNDJSON  Format = "ndjson" // one JSON object per line
	FormatYAML    Format = "yaml"   // YAML sequence
	FormatXML     Format = "xml"    // XML document, one element per instance
	FormatSQLite  Format = "sqlite" // SQLite database file, one table per schema
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatJSON, FormatNDJSON, FormatYAML, FormatXML, FormatSQLite}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known format.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatNDJSON, FormatYAML, FormatXML, FormatSQLite:
		return true
	default:
		return false
	}
}

// NeedsFile returns true if the format can only be written to a file path.
func (f Format) NeedsFile() bool {
	return f == FormatSQLite
}

// ParseFormat parses a format name case-insensitively. "yml", "jsonl" and
// "db" are accepted as aliases.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "ndjson", "jsonl":
		return FormatNDJSON
	case "yaml", "yml":
		return FormatYAML
	case "xml":
		return FormatXML
	case "sqlite", "sqlite3", "db":
		return FormatSQLite
	default:
		return FormatUnknown
	}
}

// FormatFromPath infers a format from a file extension, falling back to
// JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".xml":
		return FormatXML
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatJSON
	}
}
