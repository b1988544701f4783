package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/schemafaker/pkg/generator"
)

// ErrUnknownFormat is returned for a format Write does not support.
var ErrUnknownFormat = errors.New("unknown output format")

// ErrNeedsFile is returned when a file-only format is written to a stream.
var ErrNeedsFile = errors.New("output format requires a file path")

// Write encodes items to w. schemaName names the XML elements; the other
// stream formats ignore it.
func Write(w io.Writer, format Format, schemaName string, items []*generator.Instance) error {
	if items == nil {
		items = []*generator.Instance{}
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, items)
	case FormatNDJSON:
		return writeNDJSON(w, items)
	case FormatYAML:
		return writeYAML(w, items)
	case FormatXML:
		return writeXML(w, schemaName, items)
	case FormatSQLite:
		return fmt.Errorf("%w: %s", ErrNeedsFile, format)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeJSON(w io.Writer, items []*generator.Instance) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeNDJSON(w io.Writer, items []*generator.Instance) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, in := range items {
		if err := enc.Encode(in); err != nil {
			return fmt.Errorf("failed to encode item %d: %w", i, err)
		}
	}
	return nil
}

func writeYAML(w io.Writer, items []*generator.Instance) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
