package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Native documents look like:
//
//	root: User
//	enums:
//	  Status: [active, disabled]
//	  Priority: {LOW: 1, HIGH: 3}
//	types:
//	  Contact: EmailStr | None
//	schemas:
//	  User:
//	    id: {type: int, ge: 1}
//	    name: str
//	    status: Status
//	    tags: {type: "list[str]", max_length: 3, items: {max_length: 12}}
//
// A schema body may also be wrapped as {description: ..., fields: {...}}.
// JSON documents with the same shape are accepted.

type fieldSpec struct {
	Type        string         `yaml:"type"`
	Description string         `yaml:"description"`
	Examples    []any          `yaml:"examples"`
	Default     yaml.Node      `yaml:"default"`
	Items       map[string]any `yaml:"items"`
	Constraints map[string]any `yaml:",inline"`
}

// Parse builds a registry from a native YAML or JSON schema document.
func Parse(data []byte) (*Registry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if len(root.Content) == 0 {
		return nil, ErrEmptyFile
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, nodeErr(doc, "document must be a mapping")
	}

	reg := NewRegistry()
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		var err error
		switch key.Value {
		case "root":
			reg.Root = val.Value
		case "schemas", "models":
			err = eachPair(val, func(name *yaml.Node, body *yaml.Node) error {
				s, err := parseSchema(name.Value, body)
				if err != nil {
					return err
				}
				return reg.AddSchema(s)
			})
		case "enums":
			err = eachPair(val, func(name *yaml.Node, body *yaml.Node) error {
				e, err := parseEnum(name.Value, body)
				if err != nil {
					return err
				}
				return reg.AddEnum(e)
			})
		case "types", "aliases":
			err = eachPair(val, func(name *yaml.Node, body *yaml.Node) error {
				if body.Kind != yaml.ScalarNode {
					return nodeErr(body, "type alias %s must be a type expression", name.Value)
				}
				return reg.AddAlias(name.Value, body.Value)
			})
		default:
			err = nodeErr(key, "unknown top-level key %q", key.Value)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(reg.schemaOrder) == 0 {
		return nil, ErrNoSchemas
	}
	if reg.Root != "" {
		if _, ok := reg.Schema(reg.Root); !ok {
			return nil, fmt.Errorf("%w: root %s", ErrModelNotFound, reg.Root)
		}
	}
	return reg, nil
}

func nodeErr(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidSchema, n.Line, fmt.Sprintf(format, args...))
}

func eachPair(n *yaml.Node, fn func(k, v *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return nodeErr(n, "expected a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i], n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func parseSchema(name string, body *yaml.Node) (*Schema, error) {
	s := NewSchema(name)
	fields := body
	if body.Kind == yaml.MappingNode {
		if f := mappingValue(body, "fields"); f != nil && f.Kind == yaml.MappingNode {
			fields = f
			if d := mappingValue(body, "description"); d != nil {
				s.Description = d.Value
			}
		}
	}
	err := eachPair(fields, func(k, v *yaml.Node) error {
		f, err := parseField(k.Value, v)
		if err != nil {
			return fmt.Errorf("schema %s: %w", name, err)
		}
		return s.AddField(f)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func parseField(name string, n *yaml.Node) (*Field, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return &Field{Name: name, Type: n.Value}, nil
	case yaml.MappingNode:
	default:
		return nil, nodeErr(n, "field %s must be a type expression or a mapping", name)
	}

	var spec fieldSpec
	if err := n.Decode(&spec); err != nil {
		return nil, nodeErr(n, "field %s: %v", name, err)
	}
	if spec.Type == "" {
		return nil, nodeErr(n, "field %s has no type", name)
	}
	f := &Field{
		Name:        name,
		Type:        spec.Type,
		Description: spec.Description,
		Examples:    spec.Examples,
		Items:       spec.Items,
		Constraints: spec.Constraints,
	}
	if spec.Default.Kind != 0 {
		var v any
		if err := spec.Default.Decode(&v); err != nil {
			return nil, nodeErr(&spec.Default, "field %s default: %v", name, err)
		}
		f.Default, f.HasDefault = v, true
	}
	return f, nil
}

func parseEnum(name string, n *yaml.Node) (*Enum, error) {
	e := &Enum{Name: name}
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			var v any
			if err := item.Decode(&v); err != nil {
				return nil, nodeErr(item, "enum %s: %v", name, err)
			}
			e.Members = append(e.Members, EnumMember{Name: item.Value, Value: v})
		}
	case yaml.MappingNode:
		err := eachPair(n, func(k, v *yaml.Node) error {
			var val any
			if err := v.Decode(&val); err != nil {
				return nodeErr(v, "enum %s: %v", name, err)
			}
			e.Members = append(e.Members, EnumMember{Name: k.Value, Value: val})
			return nil
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, nodeErr(n, "enum %s must be a list or a mapping", name)
	}
	return e, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// mappingKeys returns the keys of the mapping found by following path from n.
func mappingKeys(n *yaml.Node, path ...string) []string {
	for _, p := range path {
		n = mappingValue(n, p)
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}
