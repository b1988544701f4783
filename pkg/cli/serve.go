package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/schemafaker/pkg/config"
	"github.com/getmockd/schemafaker/pkg/schema"
	"github.com/getmockd/schemafaker/pkg/server"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	count               int
	locale              string
	seed                uint64
	host                string
	port                int
	resources           []string
	maxConnections      int
	freshCreateSessions bool
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve SCHEMA[:Model]",
	Short: "Serve generated instances from an in-memory CRUD mock server",
	Long: `Start a mock REST server whose resources are seeded with generated instances.

Each schema becomes a resource at /{name}s supporting list, get, create,
replace, patch and delete. The server also exposes /openapi.json, /healthz,
POST /_reset and a websocket change stream at /_events.

The server runs in the foreground until interrupted.`,
	Example: `  # Serve 10 users on port 8000
  schemafaker serve schema.yaml:User

  # Serve users and their orders, reproducibly
  schemafaker serve schema.yaml:User --resource Order -s 7 -c 50`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func serveOverrides(f *serveFlags) []flagOverride {
	return []flagOverride{
		{"count", config.KeyServerCount, func(c *config.Config) { c.Server.Count = f.count }},
		{"locale", config.KeyLocale, func(c *config.Config) { c.Locale = f.locale }},
		{"seed", config.KeySeed, func(c *config.Config) { c.Seed = f.seed }},
		{"host", config.KeyHost, func(c *config.Config) { c.Server.Host = f.host }},
		{"port", config.KeyPort, func(c *config.Config) { c.Server.Port = f.port }},
		{"max-connections", config.KeyMaxConnections, func(c *config.Config) { c.Server.MaxConnections = f.maxConnections }},
		{"fresh-create-sessions", config.KeyFreshCreateSessions, func(c *config.Config) {
			c.Server.FreshCreateSessions = f.freshCreateSessions
		}},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, serveOverrides(&serveFlagVals))
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)
	stderr := cmd.ErrOrStderr()

	reg, sch, err := schema.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	genOpts, err := cfg.GeneratorOptions()
	if err != nil {
		return err
	}

	names := append([]string{sch.Name}, serveFlagVals.resources...)
	srv, err := server.New(reg, names, cfg.ServerConfig(Version),
		server.WithLogger(log),
		server.WithGeneratorOptions(genOpts...),
	)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	base := "http://" + srv.Addr()
	fmt.Fprintf(stderr, "Mock server listening on %s (seed %d)\n", base, srv.Seed())
	for _, name := range srv.Store().Names() {
		fmt.Fprintf(stderr, "  %s/%s\n", base, name)
	}
	fmt.Fprintf(stderr, "  %s/openapi.json\n", base)
	fmt.Fprintln(stderr, "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Fprintln(stderr, "\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func init() {
	f := serveCmd.Flags()
	f.IntVarP(&serveFlagVals.count, "count", "c", server.DefaultCount, "Number of items each resource is seeded with")
	f.StringVarP(&serveFlagVals.locale, "locale", "l", config.DefaultLocale, "Locale of realistic values")
	f.Uint64VarP(&serveFlagVals.seed, "seed", "s", 0, "Seed for reproducible data (random when unset)")
	f.StringVar(&serveFlagVals.host, "host", server.DefaultHost, "Host to bind")
	f.IntVar(&serveFlagVals.port, "port", server.DefaultPort, "Port to listen on (0 picks a free port)")
	f.StringArrayVar(&serveFlagVals.resources, "resource", nil, "Additional schema to serve as a resource (repeatable)")
	f.IntVar(&serveFlagVals.maxConnections, "max-connections", 0, "Maximum concurrent connections (0 = unlimited)")
	f.BoolVar(&serveFlagVals.freshCreateSessions, "fresh-create-sessions", false,
		"Build POST templates from a fresh session derived from the seed")

	rootCmd.AddCommand(serveCmd)
}
