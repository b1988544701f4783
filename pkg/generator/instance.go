package generator

import (
	"bytes"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Instance is an ordered field-name -> value mapping. Generated instances
// keep their schema's field order; mapping values are Instances as well, with
// keys in generation order.
//
// Values are nil (absent), bool, int64, float64, string, time.Time, Date,
// TimeOfDay, uuid.UUID, []any, *Instance or any example/literal value taken
// verbatim from the schema.
type Instance struct {
	keys   []string
	values map[string]any
}

// NewInstance creates an empty instance with room for n keys.
func NewInstance(n int) *Instance {
	return &Instance{keys: make([]string, 0, n), values: make(map[string]any, n)}
}

// Set assigns a value, appending the key if it is new.
func (in *Instance) Set(key string, v any) {
	if _, ok := in.values[key]; !ok {
		in.keys = append(in.keys, key)
	}
	in.values[key] = v
}

// Get returns the value stored under key.
func (in *Instance) Get(key string) (any, bool) {
	v, ok := in.values[key]
	return v, ok
}

// Delete removes key, keeping the order of the rest.
func (in *Instance) Delete(key string) {
	if _, ok := in.values[key]; !ok {
		return
	}
	delete(in.values, key)
	for i, k := range in.keys {
		if k == key {
			in.keys = append(in.keys[:i], in.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in order. The slice must not be modified.
func (in *Instance) Keys() []string {
	return in.keys
}

// Len returns the number of keys.
func (in *Instance) Len() int {
	return len(in.keys)
}

// Clone returns a deep copy.
func (in *Instance) Clone() *Instance {
	out := NewInstance(len(in.keys))
	for _, k := range in.keys {
		out.Set(k, cloneValue(in.values[k]))
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Instance:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// ToMap converts the instance into plain Go values: nested instances become
// map[string]any and temporal or identifier values become their text form.
// The result is suitable for JSON Schema validation and expression
// evaluation.
func (in *Instance) ToMap() map[string]any {
	m := make(map[string]any, len(in.keys))
	for _, k := range in.keys {
		m[k] = Plain(in.values[k])
	}
	return m
}

// Plain converts a generated value into plain Go values (see ToMap).
func Plain(v any) any {
	switch x := v.(type) {
	case *Instance:
		return x.ToMap()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Plain(e)
		}
		return out
	case time.Time:
		return x.Format(time.RFC3339)
	case interface{ MarshalText() ([]byte, error) }:
		b, err := x.MarshalText()
		if err != nil {
			return v
		}
		return string(b)
	}
	return v
}

// FromMap builds an instance from a decoded JSON object, with keys ordered
// by the given order first and any remaining keys after, sorted.
func FromMap(m map[string]any, order []string) *Instance {
	in := NewInstance(len(m))
	for _, k := range order {
		if v, ok := m[k]; ok {
			in.Set(k, fromPlain(v))
		}
	}
	rest := make([]string, 0)
	for k := range m {
		if _, ok := in.values[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		in.Set(k, fromPlain(m[k]))
	}
	return in
}

func fromPlain(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return FromMap(x, nil)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = fromPlain(e)
		}
		return out
	}
	return v
}

// MarshalJSON writes the fields in order.
func (in *Instance) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range in.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(in.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the fields in order.
func (in *Instance) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range in.keys {
		val := &yaml.Node{}
		if err := val.Encode(yamlValue(in.values[k])); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			val,
		)
	}
	return node, nil
}

// yamlValue renders time.Time as RFC 3339 text; yaml.v3 would otherwise
// emit its own timestamp layout.
func yamlValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = yamlValue(e)
		}
		return out
	}
	return v
}
