// Package store keeps the mock server's generated instances in memory.
//
// A Store holds one Collection per served schema. Collections keep their
// items in insertion order and address them by key: the value of the
// schema's "id" field, else its "uuid" field, else the item's list index.
//
// Core Types:
//
//   - Store: container for all collections, with reset and observer fan-out
//   - Collection: an ordered, mutex-guarded list of *generator.Instance
//   - Query: typed field filters, JSONPath filters, an expr-lang "where"
//     clause, sorting and pagination for List
//
// All operations are safe for concurrent use. Reads share an RWMutex per
// collection; writes are serialized per collection.
//
// Usage:
//
//	st := store.New()
//	col, err := st.Register(store.Config{Schema: plan, Seed: instances})
//	items, _ := col.List(nil)
//	item, err := col.Create(in, true)
//	st.Reset("") // restore every collection's seed data
package store
