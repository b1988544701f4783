// Package faker produces realistic, locale-aware sample values (names,
// addresses, e-mail addresses, network identifiers, ...) for field names that
// match a known category.
//
// Matching is table driven: field names are normalized to snake_case and
// looked up in a static name -> category table, and categories map to
// producers in a second table. Locale changes the value pools, never the
// matching.
//
// All randomness comes from the *rand.Rand handed to New, so two providers
// built over identically seeded sources yield identical values.
package faker
