package server

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/store"
)

// timeOfDayPattern matches the HH:MM:SS text of time-of-day values.
const timeOfDayPattern = `^([01][0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9]$`

// planLookup returns the compiled plan of a schema.
type planLookup func(name string) (*generator.Plan, error)

// requiredFields lists the fields a full request body must carry: those that
// are neither optional nor defaulted.
func requiredFields(p *generator.Plan) []string {
	var out []string
	for _, f := range p.Fields {
		if f.Type.Kind == generator.KindOptional || f.Field.HasDefault {
			continue
		}
		out = append(out, f.Field.Name)
	}
	return out
}

// jsonSchemaBuilder derives a JSON Schema (draft 2020-12) document from a
// plan. Nested schemas are emitted once under $defs and referenced.
type jsonSchemaBuilder struct {
	lookup planLookup
	defs   map[string]any
	err    error
}

func newJSONSchemaBuilder(lookup planLookup) *jsonSchemaBuilder {
	return &jsonSchemaBuilder{lookup: lookup, defs: make(map[string]any)}
}

// document returns the schema of a request body for p. With partial set no
// top-level field is required; otherwise every required field but keyField
// is.
func (b *jsonSchemaBuilder) document(p *generator.Plan, partial bool, keyField string) (map[string]any, error) {
	root := b.object(p, partial)
	if req, ok := root["required"].([]string); ok && keyField != "" {
		req = slices.DeleteFunc(req, func(f string) bool { return f == keyField })
		if len(req) == 0 {
			delete(root, "required")
		} else {
			root["required"] = req
		}
	}
	if len(b.defs) > 0 {
		root["$defs"] = b.defs
	}
	return root, b.err
}

func (b *jsonSchemaBuilder) object(p *generator.Plan, partial bool) map[string]any {
	props := make(map[string]any, len(p.Fields))
	for _, f := range p.Fields {
		props[f.Field.Name] = b.typeSchema(f.Type, f.Constraints)
	}
	obj := map[string]any{"type": "object", "properties": props}
	if !partial {
		if req := requiredFields(p); len(req) > 0 {
			obj["required"] = req
		}
	}
	return obj
}

func (b *jsonSchemaBuilder) typeSchema(t *generator.Type, c generator.Constraints) map[string]any {
	switch t.Kind {
	case generator.KindScalar:
		return scalarJSONSchema(t, c)
	case generator.KindTemporal:
		switch t.Temporal {
		case generator.TemporalDate:
			return map[string]any{"type": "string", "format": "date"}
		case generator.TemporalTime:
			return map[string]any{"type": "string", "pattern": timeOfDayPattern}
		default:
			return map[string]any{"type": "string", "format": "date-time"}
		}
	case generator.KindIdentifier:
		return map[string]any{"type": "string", "format": "uuid"}
	case generator.KindOptional:
		return map[string]any{"anyOf": []any{b.typeSchema(t.Elem, c), map[string]any{"type": "null"}}}
	case generator.KindSequence:
		s := map[string]any{"type": "array", "items": b.typeSchema(t.Elem, itemConstraints(c))}
		setLengths(s, c, "minItems", "maxItems")
		return s
	case generator.KindMapping:
		s := map[string]any{"type": "object", "additionalProperties": b.typeSchema(t.Elem, itemConstraints(c))}
		setLengths(s, c, "minProperties", "maxProperties")
		return s
	case generator.KindUnion:
		members := make([]any, len(t.Members))
		for i, m := range t.Members {
			members[i] = b.typeSchema(m, c)
		}
		return map[string]any{"anyOf": members}
	case generator.KindLiteral:
		return map[string]any{"enum": t.Literals}
	case generator.KindEnum:
		return map[string]any{"enum": t.Enum.Values()}
	case generator.KindSchema:
		b.define(t.Schema)
		return map[string]any{"$ref": "#/$defs/" + t.Schema}
	default:
		return map[string]any{}
	}
}

func (b *jsonSchemaBuilder) define(name string) {
	if _, ok := b.defs[name]; ok {
		return
	}
	p, err := b.lookup(name)
	if err != nil {
		b.err = errors.Join(b.err, err)
		b.defs[name] = map[string]any{}
		return
	}
	// Reserve the name before recursing so self-references terminate.
	b.defs[name] = map[string]any{}
	b.defs[name] = b.object(p, false)
}

func scalarJSONSchema(t *generator.Type, c generator.Constraints) map[string]any {
	switch t.Scalar {
	case generator.ScalarInt, generator.ScalarFloat:
		s := map[string]any{"type": "number"}
		if t.Scalar == generator.ScalarInt {
			s["type"] = "integer"
		}
		if c.Gt != nil {
			s["exclusiveMinimum"] = *c.Gt
		}
		if c.Ge != nil {
			s["minimum"] = *c.Ge
		}
		if c.Lt != nil {
			s["exclusiveMaximum"] = *c.Lt
		}
		if c.Le != nil {
			s["maximum"] = *c.Le
		}
		if c.MultipleOf != nil && *c.MultipleOf > 0 {
			s["multipleOf"] = *c.MultipleOf
		}
		return s
	case generator.ScalarString:
		s := map[string]any{"type": "string"}
		setLengths(s, c, "minLength", "maxLength")
		switch t.Format {
		case generator.FormatEmail:
			s["format"] = "email"
		case generator.FormatURL:
			s["format"] = "uri"
		}
		return s
	case generator.ScalarBool:
		return map[string]any{"type": "boolean"}
	default:
		return map[string]any{}
	}
}

func setLengths(s map[string]any, c generator.Constraints, minKey, maxKey string) {
	if c.MinLength != nil {
		s[minKey] = *c.MinLength
	}
	if c.MaxLength != nil {
		s[maxKey] = *c.MaxLength
	}
}

func itemConstraints(c generator.Constraints) generator.Constraints {
	if c.Items == nil {
		return generator.Constraints{}
	}
	return *c.Items
}

// bodyValidator checks decoded request bodies of one resource.
type bodyValidator struct {
	resource string
	schema   *jsonschema.Schema
}

func newBodyValidator(resource, keyField string, p *generator.Plan, lookup planLookup, partial bool) (*bodyValidator, error) {
	doc, err := newJSONSchemaBuilder(lookup).document(p, partial, keyField)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	mode := "replace"
	if partial {
		mode = "partial"
	}
	url := resource + "-" + mode + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema: %w", resource, err)
	}
	return &bodyValidator{resource: resource, schema: sch}, nil
}

// Validate returns a *store.ValidationError when body does not match.
func (v *bodyValidator) Validate(body any) error {
	if _, ok := body.(map[string]any); !ok {
		return &store.ValidationError{
			Resource: v.resource,
			Fields:   []store.FieldError{{Message: "request body must be a JSON object"}},
		}
	}
	err := v.schema.Validate(body)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &store.ValidationError{
			Resource: v.resource,
			Fields:   []store.FieldError{{Message: err.Error()}},
		}
	}
	fields := map[store.FieldError]bool{}
	collectSchemaErrors(ve, fields)
	out := make([]store.FieldError, 0, len(fields))
	for f := range fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Message < out[j].Message
	})
	return &store.ValidationError{Resource: v.resource, Fields: out}
}

// collectSchemaErrors gathers the leaf causes of a validation error.
func collectSchemaErrors(err *jsonschema.ValidationError, acc map[store.FieldError]bool) {
	if len(err.Causes) == 0 {
		acc[store.FieldError{Field: fieldFromPointer(err.InstanceLocation), Message: err.Message}] = true
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, acc)
	}
}

// fieldFromPointer turns a JSON Pointer into dot notation ("/a/0/b" -> "a.0.b").
func fieldFromPointer(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	ptr = strings.ReplaceAll(ptr, "/", ".")
	ptr = strings.ReplaceAll(ptr, "~1", "/")
	return strings.ReplaceAll(ptr, "~0", "~")
}
