// Package id provides identifier and seed generation.
//
// Random identifiers come from crypto/rand via google/uuid. Seeded identifiers
// are built from a caller-supplied math/rand/v2 source so that a fixed seed
// reproduces the same UUIDs across runs.
package id
