package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/schemafaker/pkg/config"
	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/output"
	"github.com/getmockd/schemafaker/pkg/schema"
)

// generateFlags holds the generate command's flag values.
type generateFlags struct {
	count      int
	outputPath string
	locale     string
	seed       uint64
	format     string

	mqttBroker   string
	mqttTopic    string
	mqttQoS      uint8
	mqttRetain   bool
	mqttUsername string
	mqttPassword string
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate SCHEMA[:Model]",
	Short: "Generate fake instances of a schema",
	Long: `Generate fake instances of a schema and write them to stdout, a file or an
MQTT broker.

SCHEMA is a schema file, a directory or a glob pattern (** is supported). The
source format is detected from the file: native YAML/JSON, OpenAPI 3
(openapi: key), GraphQL SDL (.graphql, .gql) or Protocol Buffers (.proto).
Model defaults to the document's root schema, then to the first schema.

Progress messages go to stderr so stdout can be piped.`,
	Example: `  # Three users as JSON
  schemafaker generate schema.yaml:User -c 3

  # Reproducible output in German
  schemafaker generate schema.yaml -s 42 -l de_DE

  # Write a SQLite table
  schemafaker generate schemas/**/*.yaml:Order -c 100 -o orders.db

  # Publish to an MQTT broker
  schemafaker generate schema.yaml:Reading -c 10 --mqtt-broker tcp://localhost:1883 --mqtt-topic sensors/{schema}/{index}`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func generateOverrides(f *generateFlags) []flagOverride {
	return []flagOverride{
		{"count", config.KeyCount, func(c *config.Config) { c.Count = f.count }},
		{"locale", config.KeyLocale, func(c *config.Config) { c.Locale = f.locale }},
		{"seed", config.KeySeed, func(c *config.Config) { c.Seed = f.seed }},
		{"format", config.KeyFormat, func(c *config.Config) { c.Format = f.format }},
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, generateOverrides(&genFlags))
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	reg, sch, err := schema.Load(ctx, args[0])
	if err != nil {
		return err
	}
	opts, err := cfg.GeneratorOptions()
	if err != nil {
		return err
	}
	session, err := generator.NewSession(reg, append(opts, generator.WithLogger(log))...)
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "Generating %d %s instance(s) (seed %d, locale %s)\n",
		cfg.Count, sch.Name, session.Seed(), session.Locale())
	items, err := session.Generate(sch.Name, cfg.Count)
	if err != nil {
		return err
	}

	switch {
	case genFlags.mqttBroker != "":
		mcfg := output.MQTTConfig{
			Broker:   genFlags.mqttBroker,
			Topic:    genFlags.mqttTopic,
			Username: genFlags.mqttUsername,
			Password: genFlags.mqttPassword,
			QoS:      genFlags.mqttQoS,
			Retain:   genFlags.mqttRetain,
		}
		n, err := output.PublishMQTT(ctx, mcfg, sch.Name, items)
		if err != nil {
			return fmt.Errorf("published %d of %d messages: %w", n, len(items), err)
		}
		fmt.Fprintf(stderr, "Published %d message(s) to %s\n", n, mcfg.Broker)
		return nil

	case genFlags.outputPath != "":
		format := output.FormatUnknown
		if cfg.Sources[config.KeyFormat] != config.SourceDefault {
			format = cfg.OutputFormat()
		}
		if err := output.WriteFile(ctx, genFlags.outputPath, format, sch.Name, items); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote %d instance(s) to %s\n", len(items), genFlags.outputPath)
		return nil

	default:
		err := output.Write(cmd.OutOrStdout(), cfg.OutputFormat(), sch.Name, items)
		if errors.Is(err, output.ErrNeedsFile) {
			return fmt.Errorf("%w: use -o to choose a file", err)
		}
		return err
	}
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&genFlags.count, "count", "c", config.DefaultCount, "Number of instances to generate")
	f.StringVarP(&genFlags.outputPath, "output", "o", "", "Output file (format inferred from the extension)")
	f.StringVarP(&genFlags.locale, "locale", "l", config.DefaultLocale, "Locale of realistic values")
	f.Uint64VarP(&genFlags.seed, "seed", "s", 0, "Seed for reproducible output (random when unset)")
	f.StringVarP(&genFlags.format, "format", "f", string(output.FormatJSON), "Output format: json, ndjson, yaml, xml, sqlite")

	f.StringVar(&genFlags.mqttBroker, "mqtt-broker", "", "Publish instances to this MQTT broker (e.g. tcp://localhost:1883)")
	f.StringVar(&genFlags.mqttTopic, "mqtt-topic", "schemafaker/{schema}", "MQTT topic; {schema} and {index} are expanded")
	f.Uint8Var(&genFlags.mqttQoS, "mqtt-qos", 0, "MQTT QoS level (0, 1 or 2)")
	f.BoolVar(&genFlags.mqttRetain, "mqtt-retain", false, "Set the MQTT retain flag")
	f.StringVar(&genFlags.mqttUsername, "mqtt-username", "", "MQTT username")
	f.StringVar(&genFlags.mqttPassword, "mqtt-password", "", "MQTT password")

	generateCmd.MarkFlagsMutuallyExclusive("output", "mqtt-broker")
	rootCmd.AddCommand(generateCmd)
}
