package generator

import (
	"errors"
	"strings"
)

// ErrConfiguration matches every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a schema that cannot be generated: infeasible
// constraints, a recursive reference with no base case, an unparseable type
// expression or an invalid request such as a non-positive count. It aborts
// the whole generation call.
type ConfigurationError struct {
	Schema string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	switch {
	case e.Schema != "" && e.Field != "":
		b.WriteString(" in ")
		b.WriteString(e.Schema)
		b.WriteByte('.')
		b.WriteString(e.Field)
	case e.Schema != "":
		b.WriteString(" in ")
		b.WriteString(e.Schema)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErr(schemaName, field, reason string) *ConfigurationError {
	return &ConfigurationError{Schema: schemaName, Field: field, Reason: reason}
}
