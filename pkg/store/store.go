package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/schemafaker/pkg/generator"
)

// Config describes a collection to register.
type Config struct {
	// Plan is the resolved schema the items are instances of.
	Plan *generator.Plan
	// Name is the resource name; defaults to ResourceName of the schema.
	Name string
	// Seed is the initial content, restored by Reset.
	Seed []*generator.Instance
}

// Store holds the collections of a mock server.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	order       []string
	obs         Observer
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		collections: make(map[string]*Collection),
		obs:         NoopObserver{},
	}
}

// ResourceName derives the URL resource name of a schema: lower-cased, with
// an "s" appended unless it already ends in one ("User" -> "users").
func ResourceName(schemaName string) string {
	name := strings.ToLower(schemaName)
	if !strings.HasSuffix(name, "s") {
		name += "s"
	}
	return name
}

// Register adds a collection.
func (s *Store) Register(cfg Config) (*Collection, error) {
	if cfg.Plan == nil || cfg.Plan.Schema == nil {
		return nil, errors.New("collection plan cannot be nil")
	}
	name := cfg.Name
	if name == "" {
		name = ResourceName(cfg.Plan.Schema.Name)
	}
	if strings.ContainsAny(name, "/ ") || strings.HasPrefix(name, "_") {
		return nil, fmt.Errorf("invalid resource name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.collections[name]; exists {
		return nil, fmt.Errorf("resource %q already registered", name)
	}
	c := newCollection(s, name, cfg.Plan, cfg.Seed)
	s.collections[name] = c
	s.order = append(s.order, name)
	return c, nil
}

// Collection returns the named collection.
func (s *Store) Collection(name string) (*Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, &NotFoundError{Resource: name}
	}
	return c, nil
}

// Names returns the resource names in registration order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Reset restores the seed items of the named collection, or of every
// collection when name is empty. It returns the names reset.
func (s *Store) Reset(name string) ([]string, error) {
	start := time.Now()
	var targets []*Collection
	s.mu.RLock()
	if name == "" {
		for _, n := range s.order {
			targets = append(targets, s.collections[n])
		}
	} else if c, ok := s.collections[name]; ok {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	if len(targets) == 0 && name != "" {
		err := &NotFoundError{Resource: name}
		s.observer().OnError(name, "reset", err)
		return nil, err
	}
	names := make([]string, len(targets))
	for i, c := range targets {
		c.reset()
		names[i] = c.name
	}
	s.observer().OnReset(names, time.Since(start))
	return names, nil
}

// TotalItems returns the item count across all collections.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.collections {
		n += c.Len()
	}
	return n
}

// SetObserver installs o; nil restores the no-op observer.
func (s *Store) SetObserver(o Observer) {
	if o == nil {
		o = NoopObserver{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = o
}

func (s *Store) observer() Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.obs
}
