package generator

import (
	"errors"
	"fmt"
	"math"
	mathrand "math/rand/v2"
	"strconv"
	"strings"
)

// defaultSpan is the width of the window used for unbounded sides.
const defaultSpan = 1000.0

// maxSafeInt keeps float -> int64 conversions in range.
const maxSafeInt = float64(1 << 62)

func windowSpan(c Constraints) float64 {
	sp := defaultSpan
	if c.MultipleOf != nil {
		sp = max(sp, 3*math.Abs(*c.MultipleOf))
	}
	return sp
}

type intRange struct {
	lo, hi   int64
	step     int64 // 0 when no multiple_of
	kLo, kHi int64
}

// intBounds computes the feasible integer range for c.
func intBounds(c Constraints) (intRange, error) {
	var r intRange
	var lo, hi float64
	hasLo, hasHi := false, false
	if c.Ge != nil {
		lo, hasLo = math.Ceil(*c.Ge), true
	}
	if c.Gt != nil {
		v := math.Floor(*c.Gt) + 1
		if !hasLo || v > lo {
			lo = v
		}
		hasLo = true
	}
	if c.Le != nil {
		hi, hasHi = math.Floor(*c.Le), true
	}
	if c.Lt != nil {
		v := math.Ceil(*c.Lt) - 1
		if !hasHi || v < hi {
			hi = v
		}
		hasHi = true
	}
	sp := windowSpan(c)
	switch {
	case !hasLo && !hasHi:
		lo, hi = 0, sp
	case !hasHi:
		hi = lo + sp
	case !hasLo:
		lo = hi - sp
	}
	lo = math.Max(-maxSafeInt, math.Min(lo, maxSafeInt))
	hi = math.Max(-maxSafeInt, math.Min(hi, maxSafeInt))
	if lo > hi {
		return r, fmt.Errorf("no integer satisfies the bounds (lower %v > upper %v)", lo, hi)
	}
	r.lo, r.hi = int64(lo), int64(hi)

	if c.MultipleOf == nil {
		return r, nil
	}
	m := *c.MultipleOf
	if m <= 0 {
		return r, fmt.Errorf("multiple_of must be positive, got %v", m)
	}
	if m != math.Trunc(m) {
		return r, fmt.Errorf("multiple_of %v is not a whole number for an integer field", m)
	}
	if m > maxSafeInt {
		return r, fmt.Errorf("multiple_of %v is too large", m)
	}
	r.step = int64(m)
	r.kLo = ceilDiv(r.lo, r.step)
	r.kHi = floorDiv(r.hi, r.step)
	if r.kLo > r.kHi {
		return r, fmt.Errorf("no multiple of %d lies within [%d, %d]", r.step, r.lo, r.hi)
	}
	return r, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

// int64Between draws uniformly from [lo, hi].
func int64Between(rng *mathrand.Rand, lo, hi int64) int64 {
	n := uint64(hi) - uint64(lo)
	if n == math.MaxUint64 {
		return int64(rng.Uint64())
	}
	return lo + int64(rng.Uint64N(n+1))
}

func (r intRange) draw(rng *mathrand.Rand) int64 {
	if r.step == 0 {
		return int64Between(rng, r.lo, r.hi)
	}
	return int64Between(rng, r.kLo, r.kHi) * r.step
}

type floatRange struct {
	lo, hi     float64
	loEx, hiEx bool
	step       float64 // 0 when no multiple_of
	decimals   int
	kLo, kHi   float64
}

func (r floatRange) contains(v float64) bool {
	aboveLo := v > r.lo || (!r.loEx && v == r.lo)
	belowHi := v < r.hi || (!r.hiEx && v == r.hi)
	return aboveLo && belowHi
}

var errEmptyFloatRange = errors.New("no number satisfies the bounds")

// floatBounds computes the feasible range for c.
func floatBounds(c Constraints) (floatRange, error) {
	var r floatRange
	hasLo, hasHi := false, false
	if c.Ge != nil {
		r.lo, hasLo = *c.Ge, true
	}
	if c.Gt != nil && (!hasLo || *c.Gt >= r.lo) {
		r.lo, r.loEx, hasLo = *c.Gt, true, true
	}
	if c.Le != nil {
		r.hi, hasHi = *c.Le, true
	}
	if c.Lt != nil && (!hasHi || *c.Lt <= r.hi) {
		r.hi, r.hiEx, hasHi = *c.Lt, true, true
	}
	sp := windowSpan(c)
	switch {
	case !hasLo && !hasHi:
		r.lo, r.hi = 0, sp
	case !hasHi:
		r.hi = r.lo + sp
	case !hasLo:
		r.lo = r.hi - sp
	}
	if r.lo > r.hi || (r.lo == r.hi && (r.loEx || r.hiEx)) {
		return r, fmt.Errorf("%w (lower %v, upper %v)", errEmptyFloatRange, r.lo, r.hi)
	}

	if c.MultipleOf == nil {
		return r, nil
	}
	m := *c.MultipleOf
	if m <= 0 {
		return r, fmt.Errorf("multiple_of must be positive, got %v", m)
	}
	r.step = m
	r.decimals = decimalPlaces(m)
	r.kLo = math.Ceil(r.lo / m)
	r.kHi = math.Floor(r.hi / m)
	if r.kHi-r.kLo > maxSafeInt {
		return r, fmt.Errorf("multiple_of %v is too small for the bounds", m)
	}
	// The emitted value is the rounded multiple, so the end multiples are
	// checked after rounding.
	if r.contains(r.multiple(r.kLo - 1)) {
		r.kLo--
	}
	if r.contains(r.multiple(r.kHi + 1)) {
		r.kHi++
	}
	for i := 0; i < 2 && r.kLo <= r.kHi && !r.contains(r.multiple(r.kLo)); i++ {
		r.kLo++
	}
	for i := 0; i < 2 && r.kLo <= r.kHi && !r.contains(r.multiple(r.kHi)); i++ {
		r.kHi--
	}
	if r.kLo > r.kHi || !r.contains(r.multiple(r.kLo)) || !r.contains(r.multiple(r.kHi)) {
		return r, fmt.Errorf("no multiple of %v lies within the bounds (%v, %v)", m, r.lo, r.hi)
	}
	return r, nil
}

// multiple returns the k-th multiple of the step, rounded to the step's
// precision.
func (r floatRange) multiple(k float64) float64 {
	return roundTo(k*r.step, r.decimals)
}

func (r floatRange) draw(rng *mathrand.Rand) float64 {
	if r.step != 0 {
		k := r.kLo + float64(int64Between(rng, 0, int64(r.kHi-r.kLo)))
		return r.multiple(k)
	}

	v := r.lo + rng.Float64()*(r.hi-r.lo)
	if rounded := roundTo(v, 2); r.contains(rounded) {
		return rounded
	}
	if !r.contains(v) {
		if v <= r.lo {
			v = math.Nextafter(r.lo, r.hi)
		} else {
			v = math.Nextafter(r.hi, r.lo)
		}
	}
	return v
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	r := math.Round(v*p) / p
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return v
	}
	return r
}

// decimalPlaces counts the digits after the decimal point in the shortest
// representation of m (0.05 -> 2).
func decimalPlaces(m float64) int {
	s := strconv.FormatFloat(m, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return min(len(s)-i-1, 15)
}
