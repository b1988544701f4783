package generator

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	mathrand "math/rand/v2"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/getmockd/schemafaker/internal/id"
	"github.com/getmockd/schemafaker/pkg/faker"
	"github.com/getmockd/schemafaker/pkg/logging"
	"github.com/getmockd/schemafaker/pkg/schema"
)

// Defaults for session options.
const (
	DefaultExampleProbability = 0.30
	DefaultCollectionMin      = 1
	DefaultCollectionMax      = 3
	DefaultMaxDepth           = 8
	DefaultMaxNodes           = 256
)

// DefaultAnchor is the reference "now" of seeded sessions, so that temporal
// values are reproducible across days.
var DefaultAnchor = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

type options struct {
	seed        uint64
	seeded      bool
	locale      string
	exampleProb float64
	collMin     int
	collMax     int
	maxDepth    int
	maxNodes    int
	anchor      time.Time
	logger      *slog.Logger
}

// Option configures a Session.
type Option func(*options)

// WithSeed makes the session deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithLocale selects the realistic-value locale (e.g. "de_DE").
func WithLocale(locale string) Option {
	return func(o *options) { o.locale = locale }
}

// WithExampleProbability sets how often a declared example is used instead
// of a synthesized value.
func WithExampleProbability(p float64) Option {
	return func(o *options) { o.exampleProb = p }
}

// WithCollectionSize sets the default length range of sequences and
// mappings. Declared length constraints still clamp it.
func WithCollectionSize(lo, hi int) Option {
	return func(o *options) {
		o.collMin = lo
		o.collMax = hi
	}
}

// WithMaxDepth sets the nesting depth after which recursive schemas are
// steered toward their base case.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithMaxNodes sets how many nested schema instances one top-level instance
// may contain before the rest of it is built in base-case mode.
func WithMaxNodes(n int) Option {
	return func(o *options) { o.maxNodes = n }
}

// WithAnchor sets the reference time temporal values are drawn before.
func WithAnchor(t time.Time) Option {
	return func(o *options) { o.anchor = t.UTC().Truncate(time.Second) }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Session owns the single random stream that all values of one generation
// run are drawn from. Consecutive Generate and GenerateOne calls continue the
// same stream, so instance k of a seeded run depends on instances 1..k-1.
//
// A Session is not safe for concurrent use. Independent sessions share no
// mutable state.
type Session struct {
	reg      *schema.Registry
	rng      *mathrand.Rand
	provider *faker.Provider
	opts     options
	logger   *slog.Logger

	plans map[string]*Plan
	ranks map[string]int
	depth int
	nodes int // schema instances built for the current top-level instance
}

// NewSession creates a session over reg. Without WithSeed the seed is drawn
// from crypto/rand; Seed reports it either way.
func NewSession(reg *schema.Registry, opts ...Option) (*Session, error) {
	if reg == nil {
		return nil, configErr("", "", "nil schema registry")
	}
	o := options{
		exampleProb: DefaultExampleProbability,
		collMin:     DefaultCollectionMin,
		collMax:     DefaultCollectionMax,
		maxDepth:    DefaultMaxDepth,
		maxNodes:    DefaultMaxNodes,
	}
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case o.exampleProb < 0 || o.exampleProb > 1:
		return nil, configErr("", "", fmt.Sprintf("example probability %v outside [0, 1]", o.exampleProb))
	case o.collMin < 0 || o.collMin > o.collMax:
		return nil, configErr("", "", fmt.Sprintf("invalid collection size range [%d, %d]", o.collMin, o.collMax))
	case o.maxDepth < 1:
		return nil, configErr("", "", fmt.Sprintf("max depth must be at least 1, got %d", o.maxDepth))
	case o.maxNodes < 1:
		return nil, configErr("", "", fmt.Sprintf("max nodes must be at least 1, got %d", o.maxNodes))
	}
	if !o.seeded {
		o.seed = id.Seed()
	}
	if o.anchor.IsZero() {
		if o.seeded {
			o.anchor = DefaultAnchor
		} else {
			o.anchor = time.Now().UTC().Truncate(time.Second)
		}
	}

	rng := mathrand.New(mathrand.NewPCG(o.seed, 0))
	s := &Session{
		reg:      reg,
		rng:      rng,
		provider: faker.New(o.locale, rng),
		opts:     o,
		logger:   logging.OrNop(o.logger),
		plans:    make(map[string]*Plan),
		ranks:    make(map[string]int),
	}
	return s, nil
}

// Seed returns the seed of the session's random stream.
func (s *Session) Seed() uint64 {
	return s.opts.seed
}

// Locale returns the resolved realistic-value locale.
func (s *Session) Locale() string {
	return s.provider.Locale()
}

// Generate builds count instances of the named schema. count must be at
// least 1. On error no instances are returned.
func (s *Session) Generate(schemaName string, count int) ([]*Instance, error) {
	if count < 1 {
		return nil, configErr(schemaName, "", fmt.Sprintf("count must be at least 1, got %d", count))
	}
	p, err := s.prepare(schemaName)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("generating instances",
		"schema", schemaName, "count", count, "seed", s.opts.seed, "locale", s.provider.Locale())

	out := make([]*Instance, count)
	for i := range out {
		out[i] = s.build(p)
	}
	return out, nil
}

// GenerateOne builds a single instance, continuing the session's stream.
func (s *Session) GenerateOne(schemaName string) (*Instance, error) {
	p, err := s.prepare(schemaName)
	if err != nil {
		return nil, err
	}
	return s.build(p), nil
}

// Generate is a convenience wrapper creating a one-off session.
func Generate(reg *schema.Registry, schemaName string, count int, opts ...Option) ([]*Instance, error) {
	s, err := NewSession(reg, opts...)
	if err != nil {
		return nil, err
	}
	return s.Generate(schemaName, count)
}

// DeriveSeed derives a stable child seed from base and labels, for one-off
// sessions that must not disturb a parent session's stream.
func DeriveSeed(base uint64, labels ...string) uint64 {
	buf := make([]byte, 8, 64)
	binary.LittleEndian.PutUint64(buf, base)
	for _, l := range labels {
		buf = append(buf, 0)
		buf = append(buf, l...)
	}
	return murmur3.Sum64(buf)
}
