package generator

import (
	"math"
	mathrand "math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/getmockd/schemafaker/pkg/schema"
)

func ptr[T any](v T) *T { return &v }

// TestProperty_IntDrawWithinBounds: for any feasible integer bounds and
// step, every draw lies within the bounds and is a multiple of the step.
func TestProperty_IntDrawWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("int draws satisfy bounds and multiple_of", prop.ForAll(
		func(lo, width, step int64, seed uint64) bool {
			hi := lo + width
			c := Constraints{Ge: ptr(float64(lo)), Le: ptr(float64(hi))}
			if step > 1 {
				c.MultipleOf = ptr(float64(step))
			}
			r, err := intBounds(c)
			if err != nil {
				// Only a step that skips the whole range is infeasible.
				return step > 1 && ceilDiv(lo, step) > floorDiv(hi, step)
			}
			rng := mathrand.New(mathrand.NewPCG(seed, 0))
			for range 20 {
				v := r.draw(rng)
				if v < lo || v > hi {
					return false
				}
				if step > 1 && v%step != 0 {
					return false
				}
			}
			return true
		},
		gen.Int64Range(-1_000_000, 1_000_000),
		gen.Int64Range(0, 10_000),
		gen.Int64Range(0, 50),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

// TestProperty_FloatDrawWithinBounds: exclusive bounds are never hit and
// inclusive bounds are never crossed.
func TestProperty_FloatDrawWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("float draws satisfy exclusive bounds", prop.ForAll(
		func(lo, width float64, seed uint64) bool {
			hi := lo + width
			r, err := floatBounds(Constraints{Gt: ptr(lo), Lt: ptr(hi)})
			if err != nil {
				return lo >= hi
			}
			rng := mathrand.New(mathrand.NewPCG(seed, 0))
			for range 20 {
				v := r.draw(rng)
				if !(v > lo && v < hi) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(1e-6, 100),
		gen.UInt64(),
	))

	properties.Property("float multiples stay in range", prop.ForAll(
		func(lo float64, k int, seed uint64) bool {
			steps := []float64{0.01, 0.05, 0.25, 0.5, 1, 2.5, 10}
			step := steps[k%len(steps)]
			hi := lo + 20*step
			r, err := floatBounds(Constraints{Ge: ptr(lo), Le: ptr(hi), MultipleOf: ptr(step)})
			if err != nil {
				return false
			}
			rng := mathrand.New(mathrand.NewPCG(seed, 0))
			for range 20 {
				v := r.draw(rng)
				if v < lo || v > hi {
					return false
				}
				q := v / step
				if math.Abs(q-math.Round(q)) > 1e-6 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-1000, 1000),
		gen.IntRange(0, 100),
		gen.UInt64(),
	))

	properties.Property("float multiples with exclusive bounds", prop.ForAll(
		func(lo, width float64, k int, seed uint64) bool {
			steps := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
			step := steps[k%len(steps)]
			hi := lo + width*step
			inside := func(v float64) bool { return v > lo && v < hi }
			r, err := floatBounds(Constraints{Gt: ptr(lo), Lt: ptr(hi), MultipleOf: ptr(step)})
			if err != nil {
				// Empty ranges must really hold no (rounded) multiple.
				p := math.Pow10(decimalPlaces(step))
				for q := math.Floor(lo/step) - 1; q <= math.Ceil(hi/step)+1; q++ {
					if inside(math.Round(q*step*p) / p) {
						return false
					}
				}
				return true
			}
			rng := mathrand.New(mathrand.NewPCG(seed, 0))
			for range 20 {
				v := r.draw(rng)
				if !inside(v) {
					return false
				}
				q := v / step
				if math.Abs(q-math.Round(q)) > 1e-6 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(0, 3),
		gen.IntRange(0, 100),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

// TestProperty_FitString: fitted strings respect both length bounds.
func TestProperty_FitString(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("fitString lands within [min, max]", prop.ForAll(
		func(input string, lo, extra int, seed uint64) bool {
			s, err := NewSession(schema.NewRegistry(), WithSeed(seed))
			if err != nil {
				return false
			}
			hi := lo + extra
			out := s.fitString(input, Constraints{MinLength: &lo, MaxLength: &hi})
			n := len([]rune(out))
			return n >= lo && n <= hi
		},
		gen.AnyString(),
		gen.IntRange(0, 60),
		gen.IntRange(0, 20),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

// TestProperty_Determinism: equal seeds give equal instances.
func TestProperty_Determinism(t *testing.T) {
	reg := mustRegistry(t, `
schemas:
  Address:
    street: str
    zip_code: {type: str, min_length: 5, max_length: 5}
  Person:
    id: uuid
    email: str
    age: {type: int, ge: 18, le: 99}
    score: {type: float, multiple_of: 0.5}
    home: Address | None
    tags: "list[str]"
    meta: "dict[str, int | str]"
    joined: datetime
`)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("same seed, same output", prop.ForAll(
		func(seed uint64, count int) bool {
			a, err := Generate(reg, "Person", count, WithSeed(seed))
			if err != nil {
				return false
			}
			b, err := Generate(reg, "Person", count, WithSeed(seed))
			if err != nil {
				return false
			}
			ja, err := marshalAll(a)
			if err != nil {
				return false
			}
			jb, err := marshalAll(b)
			if err != nil {
				return false
			}
			return ja == jb
		},
		gen.UInt64(),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

func marshalAll(in []*Instance) (string, error) {
	var out []byte
	for _, i := range in {
		b, err := i.MarshalJSON()
		if err != nil {
			return "", err
		}
		out = append(out, b...)
		out = append(out, '\n')
	}
	return string(out), nil
}
