// Package schema holds the declarative data model the generator consumes:
// named schemas with ordered fields, enumerations, type aliases and the
// Registry that indexes them.
//
// Registries are built by loaders for several source formats:
//
//   - native YAML/JSON documents (LoadFile, Parse)
//   - OpenAPI 3 component schemas (ParseOpenAPI)
//   - GraphQL SDL object, input, enum and union types (ParseGraphQL)
//   - Protocol Buffers messages and enums (LoadProto)
//
// Field types are kept as raw type expressions ("list[Address]",
// "int | None") and constraints as raw key/value metadata. Interpreting them
// is left to the generator, so loaders never need to agree on semantics
// beyond the expression syntax.
//
// A Registry is immutable once loading finishes and may be shared freely.
package schema
