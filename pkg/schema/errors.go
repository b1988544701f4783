package schema

import "errors"

// Common errors for schema loading.
var (
	ErrFileNotFound   = errors.New("schema file not found")
	ErrEmptyFile      = errors.New("schema file is empty")
	ErrInvalidSchema  = errors.New("invalid schema document")
	ErrUnknownFormat  = errors.New("unknown schema format")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrModelNotFound  = errors.New("model not found")
	ErrNoSchemas      = errors.New("no schemas defined")
	ErrNoMatchingFile = errors.New("no files match pattern")
)
