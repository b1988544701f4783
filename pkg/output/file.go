package output

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/getmockd/schemafaker/pkg/generator"
)

// WriteFile writes items to path. Stream formats are written to a temporary
// file first and renamed into place. Creates parent directories if they
// don't exist. FormatUnknown infers the format from the extension.
func WriteFile(ctx context.Context, path string, format Format, schemaName string, items []*generator.Instance) error {
	if format == FormatUnknown {
		format = FormatFromPath(path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if format == FormatSQLite {
		return WriteSQLite(ctx, path, schemaName, items)
	}

	var buf bytes.Buffer
	if err := Write(&buf, format, schemaName, items); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
