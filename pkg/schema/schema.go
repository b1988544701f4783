package schema

import (
	"fmt"
	"slices"
	"sort"
)

// Field describes one named attribute of a schema.
type Field struct {
	Name        string
	Type        string // raw type expression, e.g. "list[Address] | None"
	Description string

	// Constraints holds raw metadata (ge, le, multiple_of, max_length, ...).
	// Unknown keys are carried through untouched.
	Constraints map[string]any

	// Items holds element-level constraints for sequence and mapping types.
	Items map[string]any

	Examples   []any
	Default    any
	HasDefault bool
}

// Schema is a named, ordered collection of fields.
type Schema struct {
	Name        string
	Description string
	Fields      []*Field

	index map[string]int
}

// NewSchema creates an empty schema.
func NewSchema(name string) *Schema {
	return &Schema{Name: name, index: make(map[string]int)}
}

// AddField appends a field. Field names must be unique within a schema.
func (s *Schema) AddField(f *Field) error {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if f.Name == "" {
		return fmt.Errorf("%w: schema %s has a field without a name", ErrInvalidSchema, s.Name)
	}
	if _, ok := s.index[f.Name]; ok {
		return fmt.Errorf("%w: field %s.%s", ErrDuplicateName, s.Name, f.Name)
	}
	s.index[f.Name] = len(s.Fields)
	s.Fields = append(s.Fields, f)
	return nil
}

// Field returns the named field.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.Fields[i], true
}

// FieldNames returns field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// EnumMember is one named value of an enumeration.
type EnumMember struct {
	Name  string
	Value any
}

// Enum is a named, ordered set of members.
type Enum struct {
	Name    string
	Members []EnumMember
}

// Values returns the underlying member values in order.
func (e *Enum) Values() []any {
	out := make([]any, len(e.Members))
	for i, m := range e.Members {
		out[i] = m.Value
	}
	return out
}

// Registry indexes schemas, enums and type aliases by name.
type Registry struct {
	// Root names the default schema to generate when none is requested.
	Root string

	schemas     map[string]*Schema
	schemaOrder []string
	enums       map[string]*Enum
	enumOrder   []string
	aliases     map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
		enums:   make(map[string]*Enum),
		aliases: make(map[string]string),
	}
}

func (r *Registry) taken(name string) bool {
	_, s := r.schemas[name]
	_, e := r.enums[name]
	_, a := r.aliases[name]
	return s || e || a
}

// AddSchema registers a schema. Names are unique across schemas, enums and
// aliases.
func (r *Registry) AddSchema(s *Schema) error {
	if r.taken(s.Name) {
		return fmt.Errorf("%w: %s", ErrDuplicateName, s.Name)
	}
	r.schemas[s.Name] = s
	r.schemaOrder = append(r.schemaOrder, s.Name)
	return nil
}

// AddEnum registers an enumeration.
func (r *Registry) AddEnum(e *Enum) error {
	if r.taken(e.Name) {
		return fmt.Errorf("%w: %s", ErrDuplicateName, e.Name)
	}
	if len(e.Members) == 0 {
		return fmt.Errorf("%w: enum %s has no members", ErrInvalidSchema, e.Name)
	}
	r.enums[e.Name] = e
	r.enumOrder = append(r.enumOrder, e.Name)
	return nil
}

// AddAlias registers a named type expression, e.g. "Pet" -> "Cat | Dog".
func (r *Registry) AddAlias(name, expr string) error {
	if r.taken(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	r.aliases[name] = expr
	return nil
}

// Schema returns the named schema.
func (r *Registry) Schema(name string) (*Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Enum returns the named enumeration.
func (r *Registry) Enum(name string) (*Enum, bool) {
	e, ok := r.enums[name]
	return e, ok
}

// Alias returns the type expression registered under name.
func (r *Registry) Alias(name string) (string, bool) {
	a, ok := r.aliases[name]
	return a, ok
}

// Schemas returns all schemas in registration order.
func (r *Registry) Schemas() []*Schema {
	out := make([]*Schema, len(r.schemaOrder))
	for i, n := range r.schemaOrder {
		out[i] = r.schemas[n]
	}
	return out
}

// Enums returns all enumerations in registration order.
func (r *Registry) Enums() []*Enum {
	out := make([]*Enum, len(r.enumOrder))
	for i, n := range r.enumOrder {
		out[i] = r.enums[n]
	}
	return out
}

// AliasNames returns alias names sorted alphabetically.
func (r *Registry) AliasNames() []string {
	names := make([]string, 0, len(r.aliases))
	for n := range r.aliases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Merge copies every definition from other into r. The root of r is kept
// unless it is empty.
func (r *Registry) Merge(other *Registry) error {
	for _, s := range other.Schemas() {
		if err := r.AddSchema(s); err != nil {
			return err
		}
	}
	for _, e := range other.Enums() {
		if err := r.AddEnum(e); err != nil {
			return err
		}
	}
	for _, n := range other.AliasNames() {
		if err := r.AddAlias(n, other.aliases[n]); err != nil {
			return err
		}
	}
	if r.Root == "" {
		r.Root = other.Root
	}
	return nil
}

// Select returns the schema to generate for model. An empty model picks the
// registry root, then the first registered schema.
func (r *Registry) Select(model string) (*Schema, error) {
	if model == "" {
		model = r.Root
	}
	if model == "" {
		if len(r.schemaOrder) == 0 {
			return nil, ErrNoSchemas
		}
		model = r.schemaOrder[0]
	}
	s, ok := r.schemas[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrModelNotFound, model, slices.Clone(r.schemaOrder))
	}
	return s, nil
}
