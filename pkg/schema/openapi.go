package schema

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

const componentRefPrefix = "#/components/schemas/"

func isOpenAPI(data []byte) bool {
	var probe struct {
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.OpenAPI != ""
}

// ParseOpenAPI builds a registry from the component schemas of an OpenAPI 3
// document. Object components become schemas, string enumerations become
// enums and anything else becomes a type alias. Property order follows the
// document.
func ParseOpenAPI(ctx context.Context, data []byte) (*Registry, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, ErrNoSchemas
	}

	// kin-openapi stores schemas and properties in maps; recover the
	// declared order from the raw document.
	var raw yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	var top *yaml.Node
	if len(raw.Content) > 0 {
		top = raw.Content[0]
	}

	c := &openapiConverter{reg: NewRegistry(), raw: top}
	names := orderedKeys(mappingKeys(top, "components", "schemas"), doc.Components.Schemas)
	for _, name := range names {
		if err := c.component(name, doc.Components.Schemas[name]); err != nil {
			return nil, err
		}
	}
	if len(c.reg.schemaOrder) == 0 {
		return nil, ErrNoSchemas
	}
	for _, name := range names {
		if _, ok := c.reg.Schema(name); ok {
			c.reg.Root = name
			break
		}
	}
	return c.reg, nil
}

// orderedKeys returns the keys of m, in the order given by declared first.
func orderedKeys[V any](declared []string, m map[string]V) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range declared {
		if _, ok := m[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0)
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

type openapiConverter struct {
	reg *Registry
	raw *yaml.Node
}

func (c *openapiConverter) component(name string, ref *openapi3.SchemaRef) error {
	if ref == nil || ref.Value == nil {
		return fmt.Errorf("%w: component %s has no schema", ErrInvalidSchema, name)
	}
	s := ref.Value
	switch {
	case s.Type.Is(openapi3.TypeObject) || len(s.Properties) > 0:
		return c.object(name, s, mappingValue(mappingValue(mappingValue(c.raw, "components"), "schemas"), name))
	case len(s.Enum) > 0 && ref.Ref == "":
		e := &Enum{Name: name}
		for _, v := range s.Enum {
			e.Members = append(e.Members, EnumMember{Name: fmt.Sprint(v), Value: v})
		}
		return c.reg.AddEnum(e)
	default:
		expr, err := c.typeOf(name, ref, nil)
		if err != nil {
			return err
		}
		return c.reg.AddAlias(name, expr)
	}
}

func (c *openapiConverter) object(name string, s *openapi3.Schema, raw *yaml.Node) error {
	out := NewSchema(name)
	out.Description = s.Description
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	rawProps := mappingValue(raw, "properties")
	for _, prop := range orderedKeys(mappingKeys(raw, "properties"), s.Properties) {
		pref := s.Properties[prop]
		if pref == nil || pref.Value == nil {
			continue
		}
		typ, err := c.typeOf(name+pascal(prop), pref, mappingValue(rawProps, prop))
		if err != nil {
			return err
		}
		if (pref.Value.Nullable || (!required[prop] && pref.Value.Default == nil)) && !strings.HasSuffix(typ, "| None") {
			typ += " | None"
		}
		f := &Field{
			Name:        prop,
			Type:        typ,
			Description: pref.Value.Description,
			Constraints: openapiConstraints(pref.Value),
		}
		if pref.Value.Type.Is(openapi3.TypeArray) && pref.Value.Items != nil && pref.Value.Items.Value != nil {
			f.Items = openapiConstraints(pref.Value.Items.Value)
		}
		if pref.Value.Example != nil {
			f.Examples = []any{pref.Value.Example}
		}
		if pref.Value.Default != nil {
			f.Default, f.HasDefault = pref.Value.Default, true
		}
		if err := out.AddField(f); err != nil {
			return err
		}
	}
	return c.reg.AddSchema(out)
}

// typeOf converts a schema reference into a type expression. Inline objects
// are registered as schemas named after their location.
func (c *openapiConverter) typeOf(hint string, ref *openapi3.SchemaRef, raw *yaml.Node) (string, error) {
	if strings.HasPrefix(ref.Ref, componentRefPrefix) {
		return strings.TrimPrefix(ref.Ref, componentRefPrefix), nil
	}
	s := ref.Value

	if alts := append(append(openapi3.SchemaRefs{}, s.OneOf...), s.AnyOf...); len(alts) > 0 {
		parts := make([]string, 0, len(alts))
		for i, alt := range alts {
			t, err := c.typeOf(hint+strconv.Itoa(i+1), alt, nil)
			if err != nil {
				return "", err
			}
			parts = append(parts, t)
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "Union[" + strings.Join(parts, ", ") + "]", nil
	}
	if len(s.AllOf) == 1 {
		return c.typeOf(hint, s.AllOf[0], nil)
	}

	switch {
	case s.Type.Is(openapi3.TypeString):
		if len(s.Enum) > 0 {
			return literalExpr(s.Enum), nil
		}
		switch s.Format {
		case "date-time":
			return "datetime", nil
		case "date":
			return "date", nil
		case "time":
			return "time", nil
		case "uuid":
			return "uuid", nil
		case "email":
			return "EmailStr", nil
		case "uri", "url":
			return "HttpUrl", nil
		}
		return "str", nil
	case s.Type.Is(openapi3.TypeInteger):
		if len(s.Enum) > 0 {
			return literalExpr(s.Enum), nil
		}
		return "int", nil
	case s.Type.Is(openapi3.TypeNumber):
		return "float", nil
	case s.Type.Is(openapi3.TypeBoolean):
		return "bool", nil
	case s.Type.Is(openapi3.TypeArray):
		if s.Items == nil {
			return "list[Any]", nil
		}
		elem, err := c.typeOf(hint+"Item", s.Items, mappingValue(raw, "items"))
		if err != nil {
			return "", err
		}
		return "list[" + elem + "]", nil
	case s.Type.Is(openapi3.TypeObject) || len(s.Properties) > 0:
		if len(s.Properties) > 0 {
			if err := c.object(hint, s, raw); err != nil {
				return "", err
			}
			return hint, nil
		}
		if ap := s.AdditionalProperties.Schema; ap != nil {
			v, err := c.typeOf(hint+"Value", ap, nil)
			if err != nil {
				return "", err
			}
			return "dict[str, " + v + "]", nil
		}
		return "dict[str, Any]", nil
	}
	return "Any", nil
}

func openapiConstraints(s *openapi3.Schema) map[string]any {
	m := make(map[string]any)
	if s.Min != nil {
		if s.ExclusiveMin {
			m["gt"] = *s.Min
		} else {
			m["ge"] = *s.Min
		}
	}
	if s.Max != nil {
		if s.ExclusiveMax {
			m["lt"] = *s.Max
		} else {
			m["le"] = *s.Max
		}
	}
	if s.MultipleOf != nil {
		m["multiple_of"] = *s.MultipleOf
	}
	if s.MinLength > 0 {
		m["min_length"] = int(s.MinLength)
	}
	if s.MaxLength != nil {
		m["max_length"] = int(*s.MaxLength)
	}
	if s.MinItems > 0 {
		m["min_length"] = int(s.MinItems)
	}
	if s.MaxItems != nil {
		m["max_length"] = int(*s.MaxItems)
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func literalExpr(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case string:
			parts[i] = strconv.Quote(v)
		case bool:
			parts[i] = "False"
			if v {
				parts[i] = "True"
			}
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return "Literal[" + strings.Join(parts, ", ") + "]"
}

// pascal converts a property name such as "billing_address" into
// "BillingAddress" for naming inline object schemas.
func pascal(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
