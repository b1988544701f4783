// Package generator synthesizes fake instances of schemas.
//
// A Session resolves each field's type expression into a Type, normalizes
// its constraints, and builds instances by drawing every value from one
// seeded random stream. Values come from three tiers, first match wins:
// declared examples (with a configurable probability), realistic values for
// string fields whose name matches a faker category, and structural
// synthesis by type.
//
// Infeasible constraints and recursive schemas that can never terminate are
// reported as a *ConfigurationError before any instance is built. Recursion
// that can terminate is bounded by a maximum depth and a per-instance node
// budget, past which optional fields are left empty, collections take their
// minimum length and unions take the member closest to a leaf.
package generator
