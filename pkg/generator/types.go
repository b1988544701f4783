package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/schemafaker/pkg/schema"
	"github.com/getmockd/schemafaker/pkg/typeexpr"
)

// Kind is the structural category of a resolved type.
type Kind int

// Type kinds.
const (
	KindScalar Kind = iota
	KindTemporal
	KindIdentifier
	KindOptional
	KindSequence
	KindMapping
	KindUnion
	KindLiteral
	KindEnum
	KindSchema
	KindUnsupported
)

var kindNames = [...]string{
	KindScalar:      "Scalar",
	KindTemporal:    "Temporal",
	KindIdentifier:  "Identifier",
	KindOptional:    "Optional",
	KindSequence:    "Sequence",
	KindMapping:     "Mapping",
	KindUnion:       "Union",
	KindLiteral:     "Literal",
	KindEnum:        "Enum",
	KindSchema:      "Schema",
	KindUnsupported: "Unsupported",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Scalar kinds.
const (
	ScalarInt    = "int"
	ScalarFloat  = "float"
	ScalarString = "str"
	ScalarBool   = "bool"
	ScalarAny    = "any"
)

// Temporal kinds.
const (
	TemporalDateTime = "datetime"
	TemporalDate     = "date"
	TemporalTime     = "time"
)

// String formats carried by string scalars.
const (
	FormatEmail = "email"
	FormatURL   = "url"
)

// Type is a resolved type classification. Which fields are meaningful
// depends on Kind:
//
//	Scalar       Scalar, Format
//	Temporal     Temporal
//	Optional     Elem
//	Sequence     Elem
//	Mapping      Elem (the value type; keys are strings)
//	Union        Members
//	Literal      Literals
//	Enum         Enum
//	Schema       Schema (resolved against the registry when generated)
//	Unsupported  Name
type Type struct {
	Kind     Kind
	Scalar   string
	Format   string
	Temporal string
	Elem     *Type
	Members  []*Type
	Literals []any
	Enum     *schema.Enum
	Schema   string
	Name     string
}

// String renders the classification, e.g. "Optional(Sequence(Scalar(str)))".
func (t *Type) String() string {
	switch t.Kind {
	case KindScalar:
		if t.Format != "" {
			return "Scalar(" + t.Scalar + ":" + t.Format + ")"
		}
		return "Scalar(" + t.Scalar + ")"
	case KindTemporal:
		return "Temporal(" + t.Temporal + ")"
	case KindIdentifier:
		return "Identifier"
	case KindOptional, KindSequence, KindMapping:
		return t.Kind.String() + "(" + t.Elem.String() + ")"
	case KindUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.String()
		}
		return "Union(" + strings.Join(parts, ", ") + ")"
	case KindLiteral:
		parts := make([]string, len(t.Literals))
		for i, l := range t.Literals {
			parts[i] = fmt.Sprintf("%#v", l)
		}
		return "Literal(" + strings.Join(parts, ", ") + ")"
	case KindEnum:
		return "Enum(" + t.Enum.Name + ")"
	case KindSchema:
		return "Schema(" + t.Schema + ")"
	default:
		return "Unsupported(" + t.Name + ")"
	}
}

// IsString reports whether t is a string scalar of any format.
func (t *Type) IsString() bool {
	return t.Kind == KindScalar && t.Scalar == ScalarString
}

// simpleTypes maps bare names to leaf classifications.
var simpleTypes = map[string]Type{
	"int":      {Kind: KindScalar, Scalar: ScalarInt},
	"integer":  {Kind: KindScalar, Scalar: ScalarInt},
	"float":    {Kind: KindScalar, Scalar: ScalarFloat},
	"number":   {Kind: KindScalar, Scalar: ScalarFloat},
	"Decimal":  {Kind: KindScalar, Scalar: ScalarFloat},
	"str":      {Kind: KindScalar, Scalar: ScalarString},
	"string":   {Kind: KindScalar, Scalar: ScalarString},
	"bool":     {Kind: KindScalar, Scalar: ScalarBool},
	"boolean":  {Kind: KindScalar, Scalar: ScalarBool},
	"any":      {Kind: KindScalar, Scalar: ScalarAny},
	"Any":      {Kind: KindScalar, Scalar: ScalarAny},
	"EmailStr": {Kind: KindScalar, Scalar: ScalarString, Format: FormatEmail},
	"email":    {Kind: KindScalar, Scalar: ScalarString, Format: FormatEmail},
	"HttpUrl":  {Kind: KindScalar, Scalar: ScalarString, Format: FormatURL},
	"AnyUrl":   {Kind: KindScalar, Scalar: ScalarString, Format: FormatURL},
	"url":      {Kind: KindScalar, Scalar: ScalarString, Format: FormatURL},
	"datetime": {Kind: KindTemporal, Temporal: TemporalDateTime},
	"date":     {Kind: KindTemporal, Temporal: TemporalDate},
	"time":     {Kind: KindTemporal, Temporal: TemporalTime},
	"uuid":     {Kind: KindIdentifier},
	"UUID":     {Kind: KindIdentifier},
	"UUID4":    {Kind: KindIdentifier},
}

var sequenceNames = map[string]bool{
	"list": true, "List": true, "set": true, "Set": true, "frozenset": true,
	"FrozenSet": true, "Sequence": true, "Iterable": true, "tuple": true, "Tuple": true,
}

var mappingNames = map[string]bool{
	"dict": true, "Dict": true, "Mapping": true, "map": true,
}

// modulePrefixes are stripped from dotted names ("typing.List" -> "List").
var modulePrefixes = []string{"typing.", "pydantic.", "datetime.", "uuid.", "decimal."}

// maxAliasDepth bounds alias expansion so alias cycles fail instead of
// looping.
const maxAliasDepth = 32

var errAliasCycle = errors.New("type alias cycle")

// Resolve parses a type expression and classifies it against reg. Names
// that are neither built in nor registered resolve to Unsupported; syntax
// errors and alias cycles are errors.
func Resolve(expr string, reg *schema.Registry) (*Type, error) {
	e, err := typeexpr.Parse(expr)
	if err != nil {
		return nil, err
	}
	r := resolver{reg: reg}
	return r.resolve(e, 0)
}

type resolver struct {
	reg *schema.Registry
}

func (r resolver) resolve(e *typeexpr.Expr, depth int) (*Type, error) {
	if depth > maxAliasDepth {
		return nil, errAliasCycle
	}
	switch e.Kind {
	case typeexpr.KindNone:
		return &Type{Kind: KindLiteral, Literals: []any{nil}}, nil
	case typeexpr.KindLiteral:
		return &Type{Kind: KindLiteral, Literals: []any{e.Value}}, nil
	case typeexpr.KindEllipsis:
		return unsupported(e), nil
	case typeexpr.KindUnion:
		return r.union(e.Args, depth)
	}

	name := e.Name
	for _, p := range modulePrefixes {
		if strings.HasPrefix(name, p) && len(name) > len(p) {
			name = name[len(p):]
			break
		}
	}

	switch {
	case name == "Optional":
		if len(e.Args) != 1 {
			return unsupported(e), nil
		}
		return r.union([]*typeexpr.Expr{e.Args[0], {Kind: typeexpr.KindNone}}, depth)
	case name == "Union":
		if len(e.Args) == 0 {
			return unsupported(e), nil
		}
		return r.union(e.Args, depth)
	case name == "Literal":
		lit := &Type{Kind: KindLiteral}
		for _, a := range e.Args {
			switch a.Kind {
			case typeexpr.KindLiteral:
				lit.Literals = append(lit.Literals, a.Value)
			case typeexpr.KindNone:
				lit.Literals = append(lit.Literals, nil)
			default:
				return unsupported(e), nil
			}
		}
		if len(lit.Literals) == 0 {
			return unsupported(e), nil
		}
		return lit, nil
	case sequenceNames[name]:
		return r.sequence(e, depth)
	case mappingNames[name]:
		return r.mapping(e, depth)
	}

	if t, ok := simpleTypes[name]; ok {
		if len(e.Args) > 0 {
			return unsupported(e), nil
		}
		out := t
		return &out, nil
	}

	if r.reg != nil && len(e.Args) == 0 {
		if _, ok := r.reg.Schema(name); ok {
			return &Type{Kind: KindSchema, Schema: name}, nil
		}
		if en, ok := r.reg.Enum(name); ok {
			return &Type{Kind: KindEnum, Enum: en}, nil
		}
		if alias, ok := r.reg.Alias(name); ok {
			ae, err := typeexpr.Parse(alias)
			if err != nil {
				return nil, fmt.Errorf("alias %s: %w", name, err)
			}
			return r.resolve(ae, depth+1)
		}
	}
	return unsupported(e), nil
}

func unsupported(e *typeexpr.Expr) *Type {
	return &Type{Kind: KindUnsupported, Name: e.String()}
}

func (r resolver) union(args []*typeexpr.Expr, depth int) (*Type, error) {
	var members []*Type
	optional := false
	for _, a := range args {
		t, err := r.resolve(a, depth)
		if err != nil {
			return nil, err
		}
		switch {
		case t.Kind == KindLiteral && len(t.Literals) == 1 && t.Literals[0] == nil:
			optional = true
		case t.Kind == KindOptional:
			optional = true
			members = appendMembers(members, t.Elem)
		default:
			members = appendMembers(members, t)
		}
	}

	var inner *Type
	switch len(members) {
	case 0:
		return &Type{Kind: KindLiteral, Literals: []any{nil}}, nil
	case 1:
		inner = members[0]
	default:
		inner = &Type{Kind: KindUnion, Members: members}
	}
	if optional {
		return &Type{Kind: KindOptional, Elem: inner}, nil
	}
	return inner, nil
}

// appendMembers flattens nested unions.
func appendMembers(members []*Type, t *Type) []*Type {
	if t.Kind == KindUnion {
		return append(members, t.Members...)
	}
	return append(members, t)
}

func (r resolver) sequence(e *typeexpr.Expr, depth int) (*Type, error) {
	args := e.Args
	// tuple[T, ...] is a homogeneous sequence.
	if len(args) == 2 && args[1].Kind == typeexpr.KindEllipsis {
		args = args[:1]
	}
	switch len(args) {
	case 0:
		return &Type{Kind: KindSequence, Elem: &Type{Kind: KindScalar, Scalar: ScalarAny}}, nil
	case 1:
		elem, err := r.resolve(args[0], depth)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindSequence, Elem: elem}, nil
	}
	return unsupported(e), nil
}

func (r resolver) mapping(e *typeexpr.Expr, depth int) (*Type, error) {
	switch len(e.Args) {
	case 0:
		return &Type{Kind: KindMapping, Elem: &Type{Kind: KindScalar, Scalar: ScalarAny}}, nil
	case 2:
		key, err := r.resolve(e.Args[0], depth)
		if err != nil {
			return nil, err
		}
		if !key.IsString() || key.Format != "" {
			return unsupported(e), nil
		}
		val, err := r.resolve(e.Args[1], depth)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindMapping, Elem: val}, nil
	}
	return unsupported(e), nil
}
