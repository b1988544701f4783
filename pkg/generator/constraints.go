package generator

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/getmockd/schemafaker/pkg/schema"
)

// Constraints is the normalized form of a field's raw constraint metadata.
// Nil pointers mean "not declared".
type Constraints struct {
	Gt         *float64
	Ge         *float64
	Lt         *float64
	Le         *float64
	MultipleOf *float64
	MinLength  *int
	MaxLength  *int
	Examples   []any

	// Items applies to sequence elements and mapping values.
	Items *Constraints
}

var (
	gtKeys       = []string{"gt", "exclusive_minimum", "exclusiveMinimum"}
	geKeys       = []string{"ge", "minimum", "min"}
	ltKeys       = []string{"lt", "exclusive_maximum", "exclusiveMaximum"}
	leKeys       = []string{"le", "maximum", "max"}
	multipleKeys = []string{"multiple_of", "multipleOf"}
	minLenKeys   = []string{"min_length", "minLength", "min_items", "minItems"}
	maxLenKeys   = []string{"max_length", "maxLength", "max_items", "maxItems"}
)

// ExtractConstraints normalizes raw metadata. Unknown keys and values of the
// wrong kind are ignored; feasibility is checked later, when a session
// prepares the schema.
func ExtractConstraints(raw map[string]any) Constraints {
	var c Constraints
	if len(raw) == 0 {
		return c
	}
	c.Gt = firstNumber(raw, gtKeys)
	c.Ge = firstNumber(raw, geKeys)
	c.Lt = firstNumber(raw, ltKeys)
	c.Le = firstNumber(raw, leKeys)
	c.MultipleOf = firstNumber(raw, multipleKeys)
	c.MinLength = firstLength(raw, minLenKeys)
	c.MaxLength = firstLength(raw, maxLenKeys)
	if ex, ok := raw["examples"].([]any); ok && len(ex) > 0 {
		c.Examples = ex
	}
	if items, ok := raw["items"].(map[string]any); ok {
		ic := ExtractConstraints(items)
		c.Items = &ic
	}
	return c
}

// FieldConstraints extracts the constraints of a schema field, folding in
// its examples and element-level constraints.
func FieldConstraints(f *schema.Field) Constraints {
	c := ExtractConstraints(f.Constraints)
	if len(f.Examples) > 0 {
		c.Examples = f.Examples
	}
	if len(f.Items) > 0 {
		ic := ExtractConstraints(f.Items)
		c.Items = &ic
	}
	return c
}

// withoutExamples returns c minus its examples.
func (c Constraints) withoutExamples() Constraints {
	c.Examples = nil
	return c
}

func (c Constraints) items() Constraints {
	if c.Items == nil {
		return Constraints{}
	}
	return *c.Items
}

func (c Constraints) hasNumeric() bool {
	return c.Gt != nil || c.Ge != nil || c.Lt != nil || c.Le != nil || c.MultipleOf != nil
}

func firstNumber(raw map[string]any, keys []string) *float64 {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if f, ok := toFloat(v); ok {
				return &f
			}
		}
	}
	return nil
}

func firstLength(raw map[string]any, keys []string) *int {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if f, ok := toFloat(v); ok && f >= 0 {
				n := int(math.Floor(f))
				return &n
			}
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
