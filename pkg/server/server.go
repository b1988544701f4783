package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/net/netutil"

	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/logging"
	"github.com/getmockd/schemafaker/pkg/schema"
	"github.com/getmockd/schemafaker/pkg/store"
)

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 5 * time.Second

// resource is one served schema.
type resource struct {
	col     *store.Collection
	plan    *generator.Plan
	partial *bodyValidator
	full    *bodyValidator
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = logging.OrNop(l)
	}
}

// WithGeneratorOptions sets the options of the generation session that
// seeds resources and builds POST templates.
func WithGeneratorOptions(opts ...generator.Option) Option {
	return func(s *Server) {
		s.genOpts = append(s.genOpts, opts...)
	}
}

// Server is the mock REST server.
type Server struct {
	cfg     Config
	reg     *schema.Registry
	genOpts []generator.Option
	log     *slog.Logger

	// session is shared by all requests and guarded by sessMu.
	sessMu  sync.Mutex
	session *generator.Session
	creates atomic.Uint64

	store     *store.Store
	resources []*resource
	byName    map[string]*resource
	metrics   *store.MetricsObserver
	events    *eventHub
	coerce    coercer
	doc       *openapi3.T
	handler   http.Handler

	httpServer *http.Server
	listener   net.Listener
	startTime  time.Time
}

// New builds a server for the given schemas. Each schema becomes a resource
// seeded with cfg.Count generated items.
func New(reg *schema.Registry, schemaNames []string, cfg Config, opts ...Option) (*Server, error) {
	if reg == nil {
		return nil, errors.New("schema registry cannot be nil")
	}
	if len(schemaNames) == 0 {
		return nil, errors.New("at least one schema must be served")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		reg:     reg,
		log:     logging.Nop(),
		store:   store.New(),
		byName:  make(map[string]*resource),
		metrics: store.NewMetricsObserver(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.genOpts = append([]generator.Option{generator.WithLogger(s.log)}, s.genOpts...)

	session, err := generator.NewSession(reg, s.genOpts...)
	if err != nil {
		return nil, err
	}
	s.session = session
	s.coerce = coercer{lookup: s.plan}

	for _, name := range schemaNames {
		if err := s.addResource(name); err != nil {
			return nil, err
		}
	}

	s.events = newEventHub(s.log, s.store.Names)
	s.store.SetObserver(store.MultiObserver{s.metrics, s.events})

	doc, err := buildOpenAPI("schemafaker mock API", cfg.Version, s.resources, s.plan)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI document: %w", err)
	}
	s.doc = doc
	s.handler = loggingMiddleware(s.log, s.routes())

	s.log.Info("mock server ready",
		"resources", s.store.Names(), "count", cfg.Count, "seed", session.Seed())
	return s, nil
}

func (s *Server) addResource(schemaName string) error {
	p, err := s.plan(schemaName)
	if err != nil {
		return err
	}
	seed, err := s.session.Generate(schemaName, s.cfg.Count)
	if err != nil {
		return err
	}
	col, err := s.store.Register(store.Config{Plan: p, Seed: seed})
	if err != nil {
		return err
	}

	partial, err := newBodyValidator(col.Name(), col.KeyField(), p, s.plan, true)
	if err != nil {
		return err
	}
	full, err := newBodyValidator(col.Name(), col.KeyField(), p, s.plan, false)
	if err != nil {
		return err
	}
	res := &resource{col: col, plan: p, partial: partial, full: full}
	s.resources = append(s.resources, res)
	s.byName[col.Name()] = res
	s.log.Debug("registered resource", "resource", col.Name(), "schema", schemaName, "items", col.Len())
	return nil
}

// plan returns a schema's compiled plan from the shared session.
func (s *Server) plan(name string) (*generator.Plan, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	return s.session.Plan(name)
}

// template generates a fresh instance to overlay a POST body on.
func (s *Server) template(schemaName string) (*generator.Instance, error) {
	if !s.cfg.FreshCreateSessions {
		s.sessMu.Lock()
		defer s.sessMu.Unlock()
		return s.session.GenerateOne(schemaName)
	}
	n := s.creates.Add(1)
	seed := generator.DeriveSeed(s.session.Seed(), schemaName, strconv.FormatUint(n, 10))
	opts := append(append([]generator.Option{}, s.genOpts...), generator.WithSeed(seed))
	items, err := generator.Generate(s.reg, schemaName, 1, opts...)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// Store returns the server's data store.
func (s *Server) Store() *store.Store {
	return s.store
}

// Seed returns the seed of the shared generation session.
func (s *Server) Seed() uint64 {
	return s.session.Seed()
}

// OpenAPI returns the document served at /openapi.json.
func (s *Server) OpenAPI() *openapi3.T {
	return s.doc
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}
	s.listener = ln
	s.startTime = time.Now()
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	s.log.Info("starting mock server", "addr", ln.Addr().String(), "maxConnections", s.cfg.MaxConnections)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("mock server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the address the server listens on, once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop disconnects event subscribers and shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.events.Close()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Run starts the server and blocks until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.log.Info("stopping mock server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Uptime returns how long the server has been listening.
func (s *Server) Uptime() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}
