package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getmockd/schemafaker/pkg/faker"
	"github.com/getmockd/schemafaker/pkg/schema"
)

// FieldPlan is a field with its type resolved and constraints normalized.
type FieldPlan struct {
	Field       *schema.Field
	Type        *Type
	Constraints Constraints

	// Category is the realistic-value category matched by the field name,
	// or empty.
	Category faker.Category
}

// Plan is a schema whose fields have been resolved and checked.
type Plan struct {
	Schema *schema.Schema
	Fields []FieldPlan
}

// Plan resolves the named schema and everything it references, checks
// constraint feasibility and recursion termination, and returns the
// schema's plan.
func (s *Session) Plan(schemaName string) (*Plan, error) {
	return s.prepare(schemaName)
}

func (s *Session) prepare(name string) (*Plan, error) {
	if p, ok := s.plans[name]; ok {
		if _, ranked := s.ranks[name]; ranked {
			return p, nil
		}
	}

	closure := []string{}
	queue := []string{name}
	visited := map[string]bool{}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		closure = append(closure, n)

		p, ok := s.plans[n]
		if !ok {
			sch, found := s.reg.Schema(n)
			if !found {
				return nil, configErr(n, "", "unknown schema")
			}
			var err error
			p, err = s.compile(sch)
			if err != nil {
				return nil, err
			}
			s.plans[n] = p
		}
		for _, f := range p.Fields {
			queue = append(queue, schemaRefs(f.Type, nil)...)
		}
	}

	s.computeRanks()

	var stuck []string
	for _, n := range closure {
		if _, ok := s.ranks[n]; !ok {
			stuck = append(stuck, n)
		}
	}
	if len(stuck) > 0 {
		sort.Strings(stuck)
		return nil, configErr(name, "", fmt.Sprintf(
			"recursive reference with no base case among schemas %s; make a reference optional or allow empty collections",
			strings.Join(stuck, ", ")))
	}
	return s.plans[name], nil
}

func (s *Session) compile(sch *schema.Schema) (*Plan, error) {
	p := &Plan{Schema: sch, Fields: make([]FieldPlan, 0, len(sch.Fields))}
	for _, f := range sch.Fields {
		t, err := Resolve(f.Type, s.reg)
		if err != nil {
			return nil, configErr(sch.Name, f.Name, fmt.Sprintf("invalid type %q: %v", f.Type, err))
		}
		c := FieldConstraints(f)
		if reason := s.feasible(t, c); reason != "" {
			return nil, configErr(sch.Name, f.Name, reason)
		}
		fp := FieldPlan{Field: f, Type: t, Constraints: c}
		if cat, ok := faker.MatchField(f.Name); ok {
			fp.Category = cat
		}
		p.Fields = append(p.Fields, fp)
	}
	return p, nil
}

func schemaRefs(t *Type, acc []string) []string {
	switch t.Kind {
	case KindSchema:
		return append(acc, t.Schema)
	case KindOptional, KindSequence, KindMapping:
		return schemaRefs(t.Elem, acc)
	case KindUnion:
		for _, m := range t.Members {
			acc = schemaRefs(m, acc)
		}
	}
	return acc
}

// computeRanks assigns every plan that can terminate a rank: 1 + the
// largest rank among the schemas its fields must generate. Plans left
// unranked can only recurse forever. In base-case mode the synthesizer
// follows strictly decreasing ranks, which bounds the output.
func (s *Session) computeRanks() {
	for {
		next := make(map[string]int)
		for name, p := range s.plans {
			if _, ok := s.ranks[name]; ok {
				continue
			}
			rank, ok := 0, true
			for _, f := range p.Fields {
				r, fok := s.typeRank(f.Type, f.Constraints)
				if !fok {
					ok = false
					break
				}
				rank = max(rank, r)
			}
			if ok {
				next[name] = rank + 1
			}
		}
		if len(next) == 0 {
			return
		}
		for n, r := range next {
			s.ranks[n] = r
		}
	}
}

// typeRank is the rank of the deepest schema a value of t must contain when
// every optional choice is taken toward termination.
func (s *Session) typeRank(t *Type, c Constraints) (int, bool) {
	switch t.Kind {
	case KindSchema:
		r, ok := s.ranks[t.Schema]
		return r, ok
	case KindOptional:
		return 0, true
	case KindSequence, KindMapping:
		if c.MinLength == nil || *c.MinLength == 0 {
			return 0, true
		}
		return s.typeRank(t.Elem, c.items())
	case KindUnion:
		best, found := 0, false
		for _, m := range t.Members {
			if r, ok := s.typeRank(m, c); ok && (!found || r < best) {
				best, found = r, true
			}
		}
		return best, found
	}
	return 0, true
}

// feasible returns a non-empty reason when no value of t satisfies c.
func (s *Session) feasible(t *Type, c Constraints) string {
	switch t.Kind {
	case KindOptional:
		return s.feasible(t.Elem, c)
	case KindScalar:
		switch t.Scalar {
		case ScalarInt:
			if _, err := intBounds(c); err != nil {
				return err.Error()
			}
		case ScalarFloat:
			if _, err := floatBounds(c); err != nil {
				return err.Error()
			}
		case ScalarString:
			if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
				return fmt.Sprintf("min_length %d exceeds max_length %d", *c.MinLength, *c.MaxLength)
			}
		}
	case KindSequence, KindMapping:
		if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
			return fmt.Sprintf("min_length %d exceeds max_length %d", *c.MinLength, *c.MaxLength)
		}
		if reason := s.feasible(t.Elem, c.items()); reason != "" {
			return "element: " + reason
		}
	case KindUnion:
		for _, m := range t.Members {
			if reason := s.feasible(m, c); reason != "" {
				return reason
			}
		}
	}
	return ""
}
