package server

import (
	"errors"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/store"
)

const (
	componentRef   = "#/components/schemas/"
	errorComponent = "schemafaker.Error"
)

// openAPIBuilder derives an OpenAPI 3.0 document describing the served
// resources. Every schema reachable from a resource becomes a component.
type openAPIBuilder struct {
	lookup     planLookup
	components openapi3.Schemas
	err        error
}

func buildOpenAPI(title, version string, resources []*resource, lookup planLookup) (*openapi3.T, error) {
	b := &openAPIBuilder{lookup: lookup, components: make(openapi3.Schemas)}
	b.components[errorComponent] = openapi3.NewSchemaRef("", errorSchema())

	paths := openapi3.NewPaths()
	for _, res := range resources {
		b.resourcePaths(paths, res)
	}
	paths.Set("/healthz", &openapi3.PathItem{
		Get: operation("health", "Server health and operation counters",
			response(http.StatusOK, "Health summary", openapi3.NewSchemaRef("", openapi3.NewObjectSchema()))),
	})
	reset := operation("reset", "Restore seed data",
		response(http.StatusOK, "Reset resources", openapi3.NewSchemaRef("", openapi3.NewObjectSchema())),
		b.errorResponse(http.StatusNotFound, "Unknown resource"))
	reset.Parameters = openapi3.Parameters{
		{Value: openapi3.NewQueryParameter("resource").WithSchema(openapi3.NewStringSchema())},
	}
	paths.Set("/_reset", &openapi3.PathItem{Post: reset})

	doc := &openapi3.T{
		OpenAPI:    "3.0.3",
		Info:       &openapi3.Info{Title: title, Version: version},
		Paths:      paths,
		Components: &openapi3.Components{Schemas: b.components},
	}
	return doc, b.err
}

func (b *openAPIBuilder) resourcePaths(paths *openapi3.Paths, res *resource) {
	name := res.col.Name()
	schemaName := res.col.Schema()
	item := b.component(schemaName)
	items := openapi3.NewSchemaRef("", &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeArray}, Items: item})

	list := operation("list_"+name, "List "+name,
		response(http.StatusOK, "Matching items", items),
		b.errorResponse(http.StatusBadRequest, "Invalid query"))
	list.Parameters = listParameters(res.plan)

	create := operation("create_"+name, "Create a "+schemaName,
		response(http.StatusCreated, "Created item", item),
		b.errorResponse(http.StatusConflict, "Key already exists"),
		b.errorResponse(http.StatusRequestEntityTooLarge, "Body too large"),
		b.errorResponse(http.StatusUnprocessableEntity, "Invalid body"))
	create.RequestBody = requestBody(item)

	paths.Set("/"+name, &openapi3.PathItem{Get: list, Post: create})

	get := operation("get_"+name, "Get a "+schemaName,
		response(http.StatusOK, "The item", item),
		b.errorResponse(http.StatusNotFound, "No such item"))

	replace := operation("replace_"+name, "Replace a "+schemaName,
		response(http.StatusOK, "Replaced item", item),
		b.errorResponse(http.StatusNotFound, "No such item"),
		b.errorResponse(http.StatusUnprocessableEntity, "Invalid body"))
	replace.RequestBody = requestBody(item)

	patch := operation("patch_"+name, "Update fields of a "+schemaName,
		response(http.StatusOK, "Updated item", item),
		b.errorResponse(http.StatusNotFound, "No such item"),
		b.errorResponse(http.StatusUnprocessableEntity, "Invalid body"))
	patch.RequestBody = requestBody(openapi3.NewSchemaRef("", openapi3.NewObjectSchema()))

	del := operation("delete_"+name, "Delete a "+schemaName,
		response(http.StatusNoContent, "Deleted", nil),
		b.errorResponse(http.StatusNotFound, "No such item"))

	key := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("key").
		WithDescription("The " + keyDescription(res.col.KeyField()) + " of the item").
		WithSchema(openapi3.NewStringSchema())}
	paths.Set("/"+name+"/{key}", &openapi3.PathItem{
		Get:        get,
		Put:        replace,
		Patch:      patch,
		Delete:     del,
		Parameters: openapi3.Parameters{key},
	})
}

func requestBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schema)}
}

func keyDescription(keyField string) string {
	if keyField == "" {
		return "list index"
	}
	return keyField + " (or list index)"
}

func listParameters(p *generator.Plan) openapi3.Parameters {
	params := openapi3.Parameters{
		{Value: openapi3.NewQueryParameter(store.ParamLimit).WithSchema(openapi3.NewIntegerSchema().WithMin(0))},
		{Value: openapi3.NewQueryParameter(store.ParamOffset).WithSchema(openapi3.NewIntegerSchema().WithMin(0))},
		{Value: openapi3.NewQueryParameter(store.ParamSort).WithSchema(openapi3.NewStringSchema())},
		{Value: openapi3.NewQueryParameter(store.ParamOrder).WithSchema(openapi3.NewStringSchema().WithEnum("asc", "desc"))},
		{Value: openapi3.NewQueryParameter(store.ParamWhere).
			WithDescription("Boolean expression over item fields").
			WithSchema(openapi3.NewStringSchema())},
	}
	for _, f := range p.Fields {
		if !filterable(f.Type) || reservedParams[f.Field.Name] {
			continue
		}
		params = append(params, &openapi3.ParameterRef{Value: openapi3.NewQueryParameter(f.Field.Name).
			WithDescription("Filter on " + f.Field.Name).
			WithSchema(openapi3.NewStringSchema())})
	}
	return params
}

var reservedParams = map[string]bool{
	store.ParamLimit:  true,
	store.ParamOffset: true,
	store.ParamSort:   true,
	store.ParamOrder:  true,
	store.ParamWhere:  true,
}

// filterable reports whether a field can be filtered with a plain query
// parameter.
func filterable(t *generator.Type) bool {
	if t.Kind == generator.KindOptional {
		t = t.Elem
	}
	switch t.Kind {
	case generator.KindScalar, generator.KindTemporal, generator.KindIdentifier,
		generator.KindLiteral, generator.KindEnum:
		return true
	}
	return false
}

func operation(id, summary string, responses ...*responseEntry) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Responses = openapi3.NewResponsesWithCapacity(len(responses))
	for _, r := range responses {
		openapi3.WithStatus(r.status, &openapi3.ResponseRef{Value: r.response})(op.Responses)
	}
	return op
}

type responseEntry struct {
	status   int
	response *openapi3.Response
}

func response(status int, description string, schema *openapi3.SchemaRef) *responseEntry {
	r := openapi3.NewResponse().WithDescription(description)
	if schema != nil {
		r.WithJSONSchemaRef(schema)
	}
	return &responseEntry{status: status, response: r}
}

func (b *openAPIBuilder) errorResponse(status int, description string) *responseEntry {
	r := openapi3.NewResponse().WithDescription(description).
		WithJSONSchemaRef(openapi3.NewSchemaRef(componentRef+errorComponent, b.components[errorComponent].Value))
	return &responseEntry{status: status, response: r}
}

func errorSchema() *openapi3.Schema {
	field := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema())
	return openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("detail", openapi3.NewStringSchema()).
		WithProperty("resource", openapi3.NewStringSchema()).
		WithProperty("key", openapi3.NewStringSchema()).
		WithProperty("fields", openapi3.NewArraySchema().WithItems(field)).
		WithProperty("hint", openapi3.NewStringSchema()).
		WithRequired([]string{"error"})
}

// component returns a reference to the named schema's component, building
// it on first use.
func (b *openAPIBuilder) component(name string) *openapi3.SchemaRef {
	if ref, ok := b.components[name]; ok {
		return openapi3.NewSchemaRef(componentRef+name, ref.Value)
	}
	value := &openapi3.Schema{}
	b.components[name] = openapi3.NewSchemaRef("", value)
	p, err := b.lookup(name)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return openapi3.NewSchemaRef(componentRef+name, value)
	}
	*value = *b.object(p)
	return openapi3.NewSchemaRef(componentRef+name, value)
}

func (b *openAPIBuilder) object(p *generator.Plan) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Description = p.Schema.Description
	for _, f := range p.Fields {
		prop := b.typeRef(f.Type, f.Constraints)
		if f.Field.Description != "" && prop.Ref == "" {
			prop.Value.Description = f.Field.Description
		}
		s.Properties[f.Field.Name] = prop
	}
	s.Required = requiredFields(p)
	return s
}

func (b *openAPIBuilder) typeRef(t *generator.Type, c generator.Constraints) *openapi3.SchemaRef {
	switch t.Kind {
	case generator.KindSchema:
		return b.component(t.Schema)
	case generator.KindOptional:
		inner := b.typeRef(t.Elem, c)
		if inner.Ref != "" {
			return openapi3.NewSchemaRef("", &openapi3.Schema{Nullable: true, AllOf: openapi3.SchemaRefs{inner}})
		}
		inner.Value.Nullable = true
		return inner
	}
	return openapi3.NewSchemaRef("", b.typeSchema(t, c))
}

func (b *openAPIBuilder) typeSchema(t *generator.Type, c generator.Constraints) *openapi3.Schema {
	switch t.Kind {
	case generator.KindScalar:
		switch t.Scalar {
		case generator.ScalarInt:
			return numericBounds(openapi3.NewInt64Schema(), c)
		case generator.ScalarFloat:
			return numericBounds(openapi3.NewFloat64Schema(), c)
		case generator.ScalarString:
			s := openapi3.NewStringSchema()
			if c.MinLength != nil && *c.MinLength > 0 {
				s.WithMinLength(int64(*c.MinLength))
			}
			if c.MaxLength != nil && *c.MaxLength >= 0 {
				s.WithMaxLength(int64(*c.MaxLength))
			}
			switch t.Format {
			case generator.FormatEmail:
				s.Format = "email"
			case generator.FormatURL:
				s.Format = "uri"
			}
			return s
		case generator.ScalarBool:
			return openapi3.NewBoolSchema()
		}
		return openapi3.NewSchema()
	case generator.KindTemporal:
		switch t.Temporal {
		case generator.TemporalDate:
			return openapi3.NewStringSchema().WithFormat("date")
		case generator.TemporalTime:
			return openapi3.NewStringSchema().WithPattern(timeOfDayPattern)
		}
		return openapi3.NewDateTimeSchema()
	case generator.KindIdentifier:
		return openapi3.NewUUIDSchema()
	case generator.KindSequence:
		s := openapi3.NewArraySchema()
		s.Items = b.typeRef(t.Elem, itemConstraints(c))
		if c.MinLength != nil && *c.MinLength > 0 {
			s.WithMinItems(int64(*c.MinLength))
		}
		if c.MaxLength != nil && *c.MaxLength >= 0 {
			s.WithMaxItems(int64(*c.MaxLength))
		}
		return s
	case generator.KindMapping:
		s := openapi3.NewObjectSchema()
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: b.typeRef(t.Elem, itemConstraints(c))}
		if c.MinLength != nil && *c.MinLength > 0 {
			s.WithMinProperties(int64(*c.MinLength))
		}
		if c.MaxLength != nil && *c.MaxLength >= 0 {
			s.WithMaxProperties(int64(*c.MaxLength))
		}
		return s
	case generator.KindUnion:
		s := &openapi3.Schema{}
		for _, m := range t.Members {
			s.AnyOf = append(s.AnyOf, b.typeRef(m, c))
		}
		return s
	case generator.KindLiteral:
		return enumSchema(t.Literals)
	case generator.KindEnum:
		return enumSchema(t.Enum.Values())
	}
	return openapi3.NewSchema()
}

// enumSchema types the enum as string when every value is one; mixed enums
// stay untyped.
func enumSchema(values []any) *openapi3.Schema {
	s := &openapi3.Schema{}
	allStrings := true
	for _, v := range values {
		if v == nil {
			s.Nullable = true
			continue
		}
		s.Enum = append(s.Enum, v)
		if _, ok := v.(string); !ok {
			allStrings = false
		}
	}
	if allStrings && len(s.Enum) > 0 {
		s.Type = &openapi3.Types{openapi3.TypeString}
	}
	return s
}

func numericBounds(s *openapi3.Schema, c generator.Constraints) *openapi3.Schema {
	if c.Gt != nil {
		s.WithMin(*c.Gt).WithExclusiveMin(true)
	}
	if c.Ge != nil && (c.Gt == nil || *c.Ge > *c.Gt) {
		s.WithMin(*c.Ge).WithExclusiveMin(false)
	}
	if c.Lt != nil {
		s.WithMax(*c.Lt).WithExclusiveMax(true)
	}
	if c.Le != nil && (c.Lt == nil || *c.Le < *c.Lt) {
		s.WithMax(*c.Le).WithExclusiveMax(false)
	}
	if c.MultipleOf != nil && *c.MultipleOf > 0 {
		m := *c.MultipleOf
		s.MultipleOf = &m
	}
	return s
}
