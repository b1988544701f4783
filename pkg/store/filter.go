package store

import (
	"cmp"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/jp"

	"github.com/getmockd/schemafaker/pkg/generator"
)

// Reserved list query parameters.
const (
	ParamLimit  = "limit"
	ParamOffset = "offset"
	ParamSort   = "sort"
	ParamOrder  = "order"
	ParamWhere  = "where"
)

// floatTolerance is the absolute difference under which float filters match.
const floatTolerance = 1e-9

// Query selects, orders and pages the items of a collection.
type Query struct {
	Filters []Filter
	// Where is a boolean expr-lang expression over the item's fields.
	Where string
	Limit  int // 0 means no limit
	Offset int
	Sort   string
	Order  string // "asc" (default) or "desc"

	program *vm.Program
}

// Filter matches one field, or one JSONPath below a field, against the text
// of a query parameter.
type Filter struct {
	Field string
	Value string
	// Type drives typed comparison of top-level fields.
	Type *generator.Type
	// Path is set for dotted parameters such as "user.name".
	Path jp.Expr
}

// ParseQuery builds a Query from URL parameters. Parameters naming a field
// become typed filters; dotted parameters whose first segment is a field
// become JSONPath filters; everything else that is not reserved is ignored.
func (c *Collection) ParseQuery(values url.Values) (*Query, error) {
	q := &Query{}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := values.Get(name)
		switch name {
		case ParamLimit, ParamOffset:
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, &QueryError{Param: name, Message: "must be a non-negative integer"}
			}
			if name == ParamLimit {
				q.Limit = n
			} else {
				q.Offset = n
			}
		case ParamSort:
			q.Sort = v
		case ParamOrder:
			switch strings.ToLower(v) {
			case "", "asc", "desc":
				q.Order = strings.ToLower(v)
			default:
				return nil, &QueryError{Param: name, Message: "must be asc or desc"}
			}
		case ParamWhere:
			if err := q.SetWhere(v); err != nil {
				return nil, err
			}
		default:
			if t, ok := c.fields[name]; ok {
				q.Filters = append(q.Filters, Filter{Field: name, Value: v, Type: t})
				continue
			}
			root, _, dotted := strings.Cut(name, ".")
			if !dotted || c.fields[root] == nil {
				continue
			}
			x, err := jp.ParseString("$." + name)
			if err != nil {
				return nil, &QueryError{Param: name, Message: err.Error()}
			}
			q.Filters = append(q.Filters, Filter{Field: name, Value: v, Path: x})
		}
	}
	return q, nil
}

// SetWhere compiles a where expression.
func (q *Query) SetWhere(where string) error {
	q.Where = where
	q.program = nil
	if strings.TrimSpace(where) == "" {
		return nil
	}
	program, err := expr.Compile(where, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return &QueryError{Param: ParamWhere, Message: err.Error()}
	}
	q.program = program
	return nil
}

// Match reports whether in passes every filter and the where expression.
func (q *Query) Match(in *generator.Instance) bool {
	for i := range q.Filters {
		if !q.Filters[i].Match(in) {
			return false
		}
	}
	if q.program == nil {
		return true
	}
	out, err := expr.Run(q.program, in.ToMap())
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// Match reports whether the filter accepts in.
func (f *Filter) Match(in *generator.Instance) bool {
	if f.Path != nil {
		results := f.Path.Get(in.ToMap())
		if len(results) == 0 {
			return matchesAbsent(f.Value)
		}
		for _, r := range results {
			if (r == nil && matchesAbsent(f.Value)) || (r != nil && fmt.Sprint(r) == f.Value) {
				return true
			}
		}
		return false
	}
	v, _ := in.Get(f.Field)
	return MatchValue(v, f.Value, f.Type)
}

func matchesAbsent(q string) bool {
	return q == "" || strings.EqualFold(q, "none") || q == "null"
}

// MatchValue compares a stored value with query text. Booleans accept
// true/false, 1/0, yes/no and on/off; integers compare numerically; floats
// match within 1e-9; everything else compares as text. A nil value matches
// "none" and the empty string.
func MatchValue(v any, q string, t *generator.Type) bool {
	if v == nil {
		return matchesAbsent(q)
	}
	if t != nil && t.Kind == generator.KindOptional {
		t = t.Elem
	}
	if t != nil && t.Kind == generator.KindScalar {
		switch t.Scalar {
		case generator.ScalarBool:
			want, ok := parseBoolWord(q)
			got, isBool := v.(bool)
			return ok && isBool && got == want
		case generator.ScalarInt:
			want, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64)
			got, ok := asInt(v)
			return err == nil && ok && got == want
		case generator.ScalarFloat:
			want, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
			got, ok := asFloat(v)
			return err == nil && ok && math.Abs(got-want) < floatTolerance
		}
	}
	return keyText(v) == q
}

func parseBoolWord(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// sortItems orders items by a top-level field. Missing and nil values sort
// first; the sort is stable so ties keep insertion order.
func sortItems(items []*generator.Instance, field, order string) {
	if field == "" {
		if order == "desc" {
			for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
				items[i], items[j] = items[j], items[i]
			}
		}
		return
	}
	desc := order == "desc"
	sort.SliceStable(items, func(i, j int) bool {
		vi, _ := items[i].Get(field)
		vj, _ := items[j].Get(field)
		if desc {
			return compareValues(vj, vi) < 0
		}
		return compareValues(vi, vj) < 0
	})
}

// compareValues orders numbers numerically, strings and booleans
// naturally, times chronologically and anything else by its text.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(va, vb)
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0
			case !va:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if vb, ok := b.(time.Time); ok {
			return va.Compare(vb)
		}
	}
	return strings.Compare(keyText(a), keyText(b))
}

// paginate applies offset and limit and returns the page and the total
// before pagination. A non-positive limit means no limit.
func paginate(items []*generator.Instance, offset, limit int) ([]*generator.Instance, int) {
	total := len(items)
	start := min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}
	return items[start:end], total
}
