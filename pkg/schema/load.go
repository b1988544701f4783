package schema

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Format identifies a schema source format.
type Format string

// Supported source formats.
const (
	FormatNative  Format = "native"
	FormatOpenAPI Format = "openapi"
	FormatGraphQL Format = "graphql"
	FormatProto   Format = "proto"
)

// dirPattern is used when a directory is given instead of a file.
const dirPattern = "**/*.{yaml,yml,json,graphql,graphqls,gql,proto}"

// SplitRef splits "path/to/file.yaml:Model" into its path and model parts.
// The model is empty when the reference names only a file.
func SplitRef(ref string) (path, model string) {
	i := strings.LastIndex(ref, ":")
	if i < 1 || strings.ContainsAny(ref[i+1:], `/\`) {
		return ref, ""
	}
	return ref[:i], ref[i+1:]
}

// Load resolves a reference of the form PATH[:Model], where PATH is a file, a
// directory or a glob pattern (supporting **). It returns the merged
// registry and the selected schema.
func Load(ctx context.Context, ref string) (*Registry, *Schema, error) {
	path, model := SplitRef(ref)
	reg, err := LoadPath(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	s, err := reg.Select(model)
	if err != nil {
		return nil, nil, err
	}
	return reg, s, nil
}

// LoadPath loads a file, every schema file below a directory, or every file
// matching a glob pattern, merging the results into one registry.
func LoadPath(ctx context.Context, path string) (*Registry, error) {
	if hasMeta(path) {
		return LoadGlob(ctx, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat schema: %w", err)
	}
	if info.IsDir() {
		return LoadGlob(ctx, filepath.Join(path, dirPattern))
	}
	return LoadFile(ctx, path)
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// LoadGlob loads every file matching pattern. Patterns containing ** are
// expanded with doublestar; others with filepath.Glob.
func LoadGlob(ctx context.Context, pattern string) (*Registry, error) {
	var matches []string
	var err error
	if strings.Contains(pattern, "**") || strings.Contains(pattern, "{") {
		matches, err = doublestar.FilepathGlob(pattern)
	} else {
		matches, err = filepath.Glob(pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingFile, pattern)
	}

	reg := NewRegistry()
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := LoadFile(ctx, m)
		if err != nil {
			return nil, err
		}
		if err := reg.Merge(r); err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
	}
	return reg, nil
}

// LoadFile loads a single schema file. The format is chosen from the file
// extension; YAML and JSON files declaring an "openapi" version are read as
// OpenAPI documents.
func LoadFile(ctx context.Context, path string) (*Registry, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".proto" {
		return LoadProto(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open schema: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var reg *Registry
	switch DetectFormat(path, data) {
	case FormatGraphQL:
		reg, err = ParseGraphQL(filepath.Base(path), data)
	case FormatOpenAPI:
		reg, err = ParseOpenAPI(ctx, data)
	case FormatNative:
		reg, err = Parse(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// DetectFormat guesses the schema format of a file.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".graphql", ".graphqls", ".gql":
		return FormatGraphQL
	case ".proto":
		return FormatProto
	case ".yaml", ".yml", ".json":
		if isOpenAPI(data) {
			return FormatOpenAPI
		}
		return FormatNative
	}
	return ""
}
