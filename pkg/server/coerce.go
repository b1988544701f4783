package server

import (
	"bytes"
	"math"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/getmockd/schemafaker/pkg/generator"
)

// coercer converts validated JSON request values into the value types the
// generator produces, so stored items look the same whether they were
// generated or posted.
type coercer struct {
	lookup planLookup
}

// object converts a decoded JSON object into an instance of p. Only declared
// fields are kept, in declaration order.
func (c coercer) object(p *generator.Plan, m map[string]any) *generator.Instance {
	in := generator.NewInstance(len(p.Fields))
	for _, f := range p.Fields {
		v, ok := m[f.Field.Name]
		if !ok {
			continue
		}
		in.Set(f.Field.Name, c.value(f.Type, v))
	}
	return in
}

// defaultValue converts a declared default into a stored value. Defaults
// come from schema documents, so they are normalized through JSON first.
func (c coercer) defaultValue(t *generator.Type, v any) any {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return v
	}
	return c.value(t, decoded)
}

func (c coercer) value(t *generator.Type, v any) any {
	if v == nil {
		return nil
	}
	switch t.Kind {
	case generator.KindOptional:
		return c.value(t.Elem, v)
	case generator.KindScalar:
		switch t.Scalar {
		case generator.ScalarInt:
			if i, ok := wholeNumber(v); ok {
				return i
			}
		case generator.ScalarFloat:
			if n, ok := v.(json.Number); ok {
				if f, err := n.Float64(); err == nil {
					return f
				}
			}
		}
		return plainNumbers(v)
	case generator.KindTemporal:
		s, ok := v.(string)
		if !ok {
			return v
		}
		return temporalValue(t.Temporal, s)
	case generator.KindIdentifier:
		if s, ok := v.(string); ok {
			if u, err := uuid.Parse(s); err == nil {
				return u
			}
		}
		return v
	case generator.KindSequence:
		arr, ok := v.([]any)
		if !ok {
			return plainNumbers(v)
		}
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = c.value(t.Elem, e)
		}
		return out
	case generator.KindMapping:
		m, ok := v.(map[string]any)
		if !ok {
			return plainNumbers(v)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		in := generator.NewInstance(len(keys))
		for _, k := range keys {
			in.Set(k, c.value(t.Elem, m[k]))
		}
		return in
	case generator.KindSchema:
		m, ok := v.(map[string]any)
		if !ok {
			return plainNumbers(v)
		}
		p, err := c.lookup(t.Schema)
		if err != nil {
			return plainNumbers(v)
		}
		return c.object(p, m)
	case generator.KindUnion:
		return c.value(unionMember(t, v), v)
	default:
		return plainNumbers(v)
	}
}

// unionMember picks the member a JSON value most plausibly belongs to.
func unionMember(t *generator.Type, v any) *generator.Type {
	for _, m := range t.Members {
		if jsonShapeFits(m, v) {
			return m
		}
	}
	return &generator.Type{Kind: generator.KindUnsupported}
}

func jsonShapeFits(t *generator.Type, v any) bool {
	switch x := v.(type) {
	case map[string]any:
		return t.Kind == generator.KindSchema || t.Kind == generator.KindMapping
	case []any:
		return t.Kind == generator.KindSequence
	case json.Number:
		if t.Kind != generator.KindScalar {
			return false
		}
		if t.Scalar == generator.ScalarInt {
			_, ok := wholeNumber(x)
			return ok
		}
		return t.Scalar == generator.ScalarFloat
	case string:
		switch t.Kind {
		case generator.KindScalar:
			return t.Scalar == generator.ScalarString
		case generator.KindTemporal:
			_, ok := temporalValue(t.Temporal, x).(string)
			return !ok
		case generator.KindIdentifier:
			return uuid.Validate(x) == nil
		}
	case bool:
		return t.Kind == generator.KindScalar && t.Scalar == generator.ScalarBool
	}
	return false
}

// temporalValue parses s as the given temporal kind, returning s itself
// when it does not parse.
func temporalValue(kind, s string) any {
	switch kind {
	case generator.TemporalDate:
		var d generator.Date
		if err := d.UnmarshalText([]byte(s)); err == nil {
			return d
		}
	case generator.TemporalTime:
		var tod generator.TimeOfDay
		if err := tod.UnmarshalText([]byte(s)); err == nil {
			return tod
		}
	default:
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts.UTC()
		}
	}
	return s
}

// wholeNumber returns v as an int64 when it is an integral JSON number.
func wholeNumber(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// plainNumbers replaces json.Number values with int64 or float64 throughout
// v, turning objects into instances with sorted keys.
func plainNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, ok := wholeNumber(x); ok {
			return i
		}
		f, _ := x.Float64()
		return f
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plainNumbers(e)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		in := generator.NewInstance(len(keys))
		for _, k := range keys {
			in.Set(k, plainNumbers(x[k]))
		}
		return in
	}
	return v
}
