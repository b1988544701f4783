// Package server serves generated instances as an in-memory REST API.
//
// Each served schema becomes a resource (User -> /users) seeded with
// generated items. Items can be listed, filtered, read, created, replaced,
// patched and deleted; request bodies are checked against a JSON Schema
// derived from the schema. The server also publishes an OpenAPI document at
// /openapi.json, a health summary at /healthz, a reset endpoint at /_reset
// and a websocket change stream at /_events.
package server
