package schema

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// graphqlDirectives declares the directives understood on field definitions:
//
//	type Product {
//	  sku: String! @constraint(minLength: 8, maxLength: 8)
//	  price: Float! @constraint(gt: 0, le: 500, multipleOf: 0.05)
//	  colour: String @examples(values: ["red", "blue"])
//	}
const graphqlDirectives = `
directive @constraint(
  gt: Float, ge: Float, lt: Float, le: Float,
  min: Float, max: Float, multipleOf: Float,
  minLength: Int, maxLength: Int
) on FIELD_DEFINITION | INPUT_FIELD_DEFINITION
directive @examples(values: [String!]!) on FIELD_DEFINITION | INPUT_FIELD_DEFINITION
directive @items(minLength: Int, maxLength: Int, ge: Float, le: Float) on FIELD_DEFINITION | INPUT_FIELD_DEFINITION
`

// graphqlScalars maps GraphQL scalars to type expressions. Custom scalars not
// listed here become unsupported types.
var graphqlScalars = map[string]string{
	"Int":      "int",
	"Float":    "float",
	"String":   "str",
	"Boolean":  "bool",
	"ID":       "uuid",
	"UUID":     "uuid",
	"DateTime": "datetime",
	"Time":     "time",
	"Date":     "date",
	"Email":    "EmailStr",
	"URL":      "HttpUrl",
	"JSON":     "Any",
}

// ParseGraphQL builds a registry from GraphQL SDL. Object and input types
// become schemas, enums become enums and unions become type aliases. The
// root operation types (Query, Mutation, Subscription) are skipped.
func ParseGraphQL(name string, data []byte) (*Registry, error) {
	src := &ast.Source{Name: name, Input: string(data)}
	gs, err := gqlparser.LoadSchema(&ast.Source{Name: "schemafaker-directives.graphql", Input: graphqlDirectives, BuiltIn: true}, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	defs := make([]*ast.Definition, 0, len(gs.Types))
	for _, d := range gs.Types {
		if d.BuiltIn || d.Position == nil || d.Position.Src != src {
			continue
		}
		if d == gs.Query || d == gs.Mutation || d == gs.Subscription {
			continue
		}
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Position.Start < defs[j].Position.Start
	})

	reg := NewRegistry()
	for _, d := range defs {
		var err error
		switch d.Kind {
		case ast.Object, ast.InputObject, ast.Interface:
			err = graphqlObject(reg, d)
		case ast.Enum:
			e := &Enum{Name: d.Name}
			for _, v := range d.EnumValues {
				e.Members = append(e.Members, EnumMember{Name: v.Name, Value: v.Name})
			}
			err = reg.AddEnum(e)
		case ast.Union:
			if len(d.Types) == 1 {
				err = reg.AddAlias(d.Name, d.Types[0])
				break
			}
			expr := "Union["
			for i, t := range d.Types {
				if i > 0 {
					expr += ", "
				}
				expr += t
			}
			err = reg.AddAlias(d.Name, expr+"]")
		case ast.Scalar:
			if _, known := graphqlScalars[d.Name]; !known {
				err = reg.AddAlias(d.Name, "str")
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if len(reg.schemaOrder) == 0 {
		return nil, ErrNoSchemas
	}
	return reg, nil
}

func graphqlObject(reg *Registry, d *ast.Definition) error {
	s := NewSchema(d.Name)
	s.Description = d.Description
	for _, fd := range d.Fields {
		if len(fd.Name) > 1 && fd.Name[:2] == "__" {
			continue
		}
		f := &Field{
			Name:        fd.Name,
			Type:        graphqlType(fd.Type),
			Description: fd.Description,
		}
		if c := fd.Directives.ForName("constraint"); c != nil {
			f.Constraints = directiveArgs(c)
		}
		if it := fd.Directives.ForName("items"); it != nil {
			f.Items = directiveArgs(it)
		}
		if ex := fd.Directives.ForName("examples"); ex != nil {
			f.Examples = graphqlExamples(ex, baseNamed(fd.Type))
		}
		if fd.DefaultValue != nil {
			if v, err := fd.DefaultValue.Value(nil); err == nil {
				f.Default, f.HasDefault = v, true
			}
		}
		if err := s.AddField(f); err != nil {
			return err
		}
	}
	return reg.AddSchema(s)
}

// graphqlType converts a GraphQL type reference: nullable types become
// optional, lists become sequences.
func graphqlType(t *ast.Type) string {
	var expr string
	if t.Elem != nil {
		expr = "list[" + graphqlType(t.Elem) + "]"
	} else if mapped, ok := graphqlScalars[t.NamedType]; ok {
		expr = mapped
	} else {
		expr = t.NamedType
	}
	if !t.NonNull {
		expr += " | None"
	}
	return expr
}

func baseNamed(t *ast.Type) string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}

func directiveArgs(d *ast.Directive) map[string]any {
	m := make(map[string]any, len(d.Arguments))
	for _, a := range d.Arguments {
		if v, err := a.Value.Value(nil); err == nil && v != nil {
			m[a.Name] = v
		}
	}
	return m
}

// graphqlExamples coerces @examples strings to the field's scalar type.
func graphqlExamples(d *ast.Directive, named string) []any {
	arg := d.Arguments.ForName("values")
	if arg == nil {
		return nil
	}
	raw, err := arg.Value.Value(nil)
	if err != nil {
		return nil
	}
	list, _ := raw.([]any)
	out := make([]any, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			out = append(out, item)
			continue
		}
		switch named {
		case "Int":
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				out = append(out, n)
				continue
			}
		case "Float":
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				out = append(out, f)
				continue
			}
		case "Boolean":
			if b, err := strconv.ParseBool(s); err == nil {
				out = append(out, b)
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
