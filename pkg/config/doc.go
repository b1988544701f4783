// Package config provides the layered configuration of the schemafaker CLI.
//
// Values are resolved with the following precedence (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables (SCHEMAFAKER_* prefix)
//  3. Config file (--config or SCHEMAFAKER_CONFIG, else ./.schemafaker.yaml)
//  4. Default values
//
// Config files are YAML or JSON:
//
//	locale: de_DE
//	seed: 42
//	collection: {min: 0, max: 5}
//	server:
//	  port: 9000
//	  freshCreateSessions: true
//	log:
//	  level: info
//
// Sources records where each value came from, for debugging.
package config
