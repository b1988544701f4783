package store

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/getmockd/schemafaker/pkg/generator"
)

// Key fields, in lookup preference order.
const (
	IDField   = "id"
	UUIDField = "uuid"
)

// Collection is an ordered, in-memory list of instances of one schema.
type Collection struct {
	mu       sync.RWMutex
	store    *Store
	name     string
	schema   string
	fields   map[string]*generator.Type
	order    []string
	keyField string
	intKey   bool
	items    []*generator.Instance
	seed     []*generator.Instance
}

func newCollection(st *Store, name string, plan *generator.Plan, seed []*generator.Instance) *Collection {
	c := &Collection{
		store:  st,
		name:   name,
		schema: plan.Schema.Name,
		fields: make(map[string]*generator.Type, len(plan.Fields)),
		order:  make([]string, 0, len(plan.Fields)),
		seed:   make([]*generator.Instance, len(seed)),
	}
	for _, f := range plan.Fields {
		c.fields[f.Field.Name] = f.Type
		c.order = append(c.order, f.Field.Name)
	}
	switch {
	case c.fields[IDField] != nil:
		c.keyField = IDField
		c.intKey = isInt(c.fields[IDField])
	case c.fields[UUIDField] != nil:
		c.keyField = UUIDField
	}
	for i, in := range seed {
		c.seed[i] = in.Clone()
	}
	c.items = c.cloneSeed()
	return c
}

func isInt(t *generator.Type) bool {
	if t.Kind == generator.KindOptional {
		t = t.Elem
	}
	return t.Kind == generator.KindScalar && t.Scalar == generator.ScalarInt
}

// Name returns the resource name, e.g. "users".
func (c *Collection) Name() string {
	return c.name
}

// Schema returns the name of the schema the items are instances of.
func (c *Collection) Schema() string {
	return c.schema
}

// KeyField returns the field items are addressed by, or "" when items are
// addressed by index only.
func (c *Collection) KeyField() string {
	return c.keyField
}

// FieldOrder returns the schema's field names in declaration order.
func (c *Collection) FieldOrder() []string {
	return c.order
}

// AssignsIDs reports whether the key is an integer id that Create can
// assign.
func (c *Collection) AssignsIDs() bool {
	return c.intKey
}

// Len returns the number of items.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection) cloneSeed() []*generator.Instance {
	out := make([]*generator.Instance, len(c.seed))
	for i, in := range c.seed {
		out[i] = in.Clone()
	}
	return out
}

// keyText renders a key value the way it appears in a URL path.
func keyText(v any) string {
	return fmt.Sprint(generator.Plain(v))
}

// find returns the index of the item addressed by key, or -1. A key matches
// the key field first; failing that, a non-negative integer key is a list
// index.
func (c *Collection) find(key string) int {
	if c.keyField != "" {
		for i, in := range c.items {
			if v, _ := in.Get(c.keyField); v != nil && keyText(v) == key {
				return i
			}
		}
	}
	if idx, err := strconv.Atoi(key); err == nil && idx >= 0 && idx < len(c.items) {
		return idx
	}
	return -1
}

func (c *Collection) nextID() int64 {
	var hi int64
	for _, in := range c.items {
		v, _ := in.Get(IDField)
		if n, ok := asInt(v); ok && n > hi {
			hi = n
		}
	}
	return hi + 1
}

// NextID returns max(id)+1 over the integer ids present, or 1.
func (c *Collection) NextID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nextID()
}

func (c *Collection) fail(op string, err error) error {
	c.store.observer().OnError(c.name, op, err)
	return err
}

// Get returns a copy of the item addressed by key.
func (c *Collection) Get(key string) (*generator.Instance, error) {
	start := time.Now()
	c.mu.RLock()
	idx := c.find(key)
	var out *generator.Instance
	if idx >= 0 {
		out = c.items[idx].Clone()
	}
	c.mu.RUnlock()

	if out == nil {
		return nil, c.fail("get", &NotFoundError{Resource: c.name, Key: key})
	}
	c.store.observer().OnRead(c.name, key, time.Since(start))
	return out, nil
}

// List returns copies of the items matching q, after sorting and
// pagination, and the number of matches before pagination. A nil q lists
// everything in insertion order.
func (c *Collection) List(q *Query) ([]*generator.Instance, int, error) {
	start := time.Now()
	if q == nil {
		q = &Query{}
	}

	c.mu.RLock()
	matched := make([]*generator.Instance, 0, len(c.items))
	for _, in := range c.items {
		if q.Match(in) {
			matched = append(matched, in.Clone())
		}
	}
	c.mu.RUnlock()

	sortItems(matched, q.Sort, q.Order)
	page, total := paginate(matched, q.Offset, q.Limit)
	c.store.observer().OnList(c.name, len(page), time.Since(start))
	return page, total, nil
}

// Create appends in. With assignID, an integer id field that is absent or
// null gets the next id. An item whose key collides with an existing one is
// rejected.
func (c *Collection) Create(in *generator.Instance, assignID bool) (*generator.Instance, error) {
	start := time.Now()
	item := in.Clone()

	c.mu.Lock()
	if assignID && c.intKey {
		if v, _ := item.Get(IDField); v == nil {
			item.Set(IDField, c.nextID())
		}
	}
	var key string
	if c.keyField != "" {
		if v, _ := item.Get(c.keyField); v != nil {
			key = keyText(v)
			for _, existing := range c.items {
				if ev, _ := existing.Get(c.keyField); ev != nil && keyText(ev) == key {
					c.mu.Unlock()
					return nil, c.fail("create", &ConflictError{Resource: c.name, Key: key})
				}
			}
		}
	}
	c.items = append(c.items, item)
	if key == "" {
		key = strconv.Itoa(len(c.items) - 1)
	}
	out := item.Clone()
	c.mu.Unlock()

	c.store.observer().OnCreate(c.name, key, out, time.Since(start))
	return out, nil
}

// Replace swaps the item addressed by key for in, keeping the stored key
// value.
func (c *Collection) Replace(key string, in *generator.Instance) (*generator.Instance, error) {
	return c.update("replace", key, func(old *generator.Instance) *generator.Instance {
		item := in.Clone()
		if c.keyField != "" {
			if v, _ := old.Get(c.keyField); v != nil {
				item.Set(c.keyField, v)
			}
		}
		return item
	})
}

// Patch sets the fields of patch on the item addressed by key. The key
// field cannot be patched.
func (c *Collection) Patch(key string, patch *generator.Instance) (*generator.Instance, error) {
	return c.update("patch", key, func(old *generator.Instance) *generator.Instance {
		item := old.Clone()
		for _, k := range patch.Keys() {
			if k == c.keyField {
				continue
			}
			v, _ := patch.Get(k)
			item.Set(k, v)
		}
		return item
	})
}

func (c *Collection) update(op, key string, fn func(old *generator.Instance) *generator.Instance) (*generator.Instance, error) {
	start := time.Now()
	c.mu.Lock()
	idx := c.find(key)
	if idx < 0 {
		c.mu.Unlock()
		return nil, c.fail(op, &NotFoundError{Resource: c.name, Key: key})
	}
	item := fn(c.items[idx])
	c.items[idx] = item
	out := item.Clone()
	c.mu.Unlock()

	c.store.observer().OnUpdate(c.name, key, out, time.Since(start))
	return out, nil
}

// Delete removes the item addressed by key.
func (c *Collection) Delete(key string) error {
	start := time.Now()
	c.mu.Lock()
	idx := c.find(key)
	if idx < 0 {
		c.mu.Unlock()
		return c.fail("delete", &NotFoundError{Resource: c.name, Key: key})
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.mu.Unlock()

	c.store.observer().OnDelete(c.name, key, time.Since(start))
	return nil
}

// reset restores the seed items.
func (c *Collection) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.cloneSeed()
}
