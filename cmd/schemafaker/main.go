// schemafaker CLI - generate fake data from schemas and serve it as a mock API
package main

import "github.com/getmockd/schemafaker/pkg/cli"

// Build-time variables are set via ldflags on the cli package:
//
//	-X github.com/getmockd/schemafaker/pkg/cli.Version=...
func main() {
	cli.Execute()
}
