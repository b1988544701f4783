// Package cli implements the schemafaker command tree: generate, serve,
// inspect, init and version. Commands register themselves on the root
// command in their init functions; Execute runs the tree.
package cli
