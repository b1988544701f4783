package generator

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/getmockd/schemafaker/internal/id"
	"github.com/getmockd/schemafaker/pkg/faker"
)

// Placeholders for values the engine cannot synthesize meaningfully.
const (
	AnyPlaceholder         = "any_value_placeholder"
	UnsupportedPlaceholder = "unsupported_type_"
	MappingKeyPrefix       = "key_"
)

// build assembles one instance of p. Fields are synthesized in declaration
// order, which fixes the order of random draws.
func (s *Session) build(p *Plan) *Instance {
	if s.depth == 0 {
		s.nodes = 0
	}
	s.nodes++
	s.depth++
	defer func() { s.depth-- }()

	in := NewInstance(len(p.Fields))
	for i := range p.Fields {
		f := &p.Fields[i]
		in.Set(f.Field.Name, s.value(f.Type, f.Constraints, f.Category))
	}
	return in
}

// baseCase reports whether the nesting depth or the instance's node count
// calls for steering toward termination.
func (s *Session) baseCase() bool {
	return s.depth > s.opts.maxDepth || s.nodes >= s.opts.maxNodes
}

// value applies the generation tiers: examples, then realistic values for
// string fields whose name matched a category, then structural synthesis.
func (s *Session) value(t *Type, c Constraints, cat faker.Category) any {
	if len(c.Examples) > 0 && s.rng.Float64() < s.opts.exampleProb {
		return c.Examples[s.rng.IntN(len(c.Examples))]
	}
	if t.Kind == KindOptional {
		if s.baseCase() || s.rng.IntN(2) == 0 {
			return nil
		}
		t = t.Elem
	}
	if cat != "" && t.IsString() {
		if v, ok := s.provider.Lookup(cat); ok {
			return s.fitString(v, c)
		}
	}
	return s.structural(t, c, cat)
}

func (s *Session) structural(t *Type, c Constraints, cat faker.Category) any {
	switch t.Kind {
	case KindScalar:
		return s.scalar(t, c)
	case KindTemporal:
		return s.temporal(t.Temporal)
	case KindIdentifier:
		return id.FromRand(s.rng)
	case KindOptional:
		return s.value(t, c.withoutExamples(), cat)
	case KindSequence:
		n := s.length(c)
		ic := c.items()
		out := make([]any, n)
		for i := range out {
			out[i] = s.value(t.Elem, ic, "")
		}
		return out
	case KindMapping:
		n := s.length(c)
		ic := c.items()
		m := NewInstance(n)
		for i := 1; i <= n; i++ {
			m.Set(MappingKeyPrefix+strconv.Itoa(i), s.value(t.Elem, ic, ""))
		}
		return m
	case KindUnion:
		return s.value(s.member(t), c.withoutExamples(), cat)
	case KindLiteral:
		return t.Literals[s.rng.IntN(len(t.Literals))]
	case KindEnum:
		return t.Enum.Members[s.rng.IntN(len(t.Enum.Members))].Value
	case KindSchema:
		return s.build(s.plans[t.Schema])
	default:
		return UnsupportedPlaceholder + t.Name
	}
}

// member picks a union member: uniformly, or in base-case mode the member
// that terminates soonest (first on ties).
func (s *Session) member(t *Type) *Type {
	if !s.baseCase() {
		return t.Members[s.rng.IntN(len(t.Members))]
	}
	best, bestRank := t.Members[0], -1
	for _, m := range t.Members {
		r, ok := s.typeRank(m, Constraints{})
		if ok && (bestRank < 0 || r < bestRank) {
			best, bestRank = m, r
		}
	}
	return best
}

func (s *Session) scalar(t *Type, c Constraints) any {
	switch t.Scalar {
	case ScalarInt:
		// Feasibility was checked when the plan was compiled.
		r, _ := intBounds(c)
		return r.draw(s.rng)
	case ScalarFloat:
		r, _ := floatBounds(c)
		return r.draw(s.rng)
	case ScalarString:
		var v string
		switch t.Format {
		case FormatEmail:
			v, _ = s.provider.Lookup(faker.Email)
		case FormatURL:
			v, _ = s.provider.Lookup(faker.URL)
		default:
			v = s.provider.Sentence(3)
		}
		return s.fitString(v, c)
	case ScalarBool:
		return s.rng.IntN(2) == 1
	default:
		return AnyPlaceholder
	}
}

func (s *Session) temporal(kind string) any {
	anchor := s.opts.anchor
	switch kind {
	case TemporalDate:
		return DateOf(anchor.AddDate(0, 0, -s.rng.IntN(366)))
	case TemporalTime:
		n := s.rng.IntN(86400)
		return TimeOfDay{Hour: n / 3600, Minute: n / 60 % 60, Second: n % 60}
	default:
		start := anchor.AddDate(-10, 0, 0)
		secs := int64Between(s.rng, 0, anchor.Unix()-start.Unix())
		return start.Add(time.Duration(secs) * time.Second).UTC()
	}
}

// length draws a collection size from the configured range, each end
// clamped into the declared length bounds.
func (s *Session) length(c Constraints) int {
	lo, hi := 0, -1
	if c.MinLength != nil {
		lo = *c.MinLength
	}
	if c.MaxLength != nil {
		hi = *c.MaxLength
	}
	if s.baseCase() {
		return lo
	}
	clamp := func(n int) int {
		n = max(n, lo)
		if hi >= 0 {
			n = min(n, hi)
		}
		return n
	}
	a, b := clamp(s.opts.collMin), clamp(s.opts.collMax)
	return a + s.rng.IntN(b-a+1)
}

// fitString truncates or pads v to the declared length bounds, counted in
// runes.
func (s *Session) fitString(v string, c Constraints) string {
	lo, hi := 0, -1
	if c.MinLength != nil {
		lo = *c.MinLength
	}
	if c.MaxLength != nil {
		hi = *c.MaxLength
	}
	if hi >= 0 && utf8.RuneCountInString(v) > hi {
		v = truncateRunes(v, hi)
		if trimmed := strings.TrimRight(v, " "); utf8.RuneCountInString(trimmed) >= lo {
			v = trimmed
		}
	}
	if utf8.RuneCountInString(v) >= lo {
		return v
	}
	var b strings.Builder
	b.WriteString(v)
	n := utf8.RuneCountInString(v)
	for n < lo {
		w := s.provider.Word()
		if n > 0 {
			b.WriteByte(' ')
			n++
		}
		b.WriteString(w)
		n += utf8.RuneCountInString(w)
	}
	v = b.String()
	if hi >= 0 {
		v = truncateRunes(v, hi)
	}
	return v
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
