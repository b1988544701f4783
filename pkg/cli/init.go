package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/schemafaker/pkg/cli/templates"
	"github.com/getmockd/schemafaker/pkg/config"
	"github.com/getmockd/schemafaker/pkg/faker"
	"github.com/getmockd/schemafaker/pkg/schema"
)

// DefaultSchemaFile is the file init writes when none is given.
const DefaultSchemaFile = "schema.yaml"

// initOptions holds the choices that shape the generated files.
type initOptions struct {
	file       string
	template   string
	force      bool
	yes        bool
	withConfig bool
	locale     string
	seed       uint64
}

var initFlags initOptions

var initCmd = &cobra.Command{
	Use:   "init [FILE]",
	Short: "Create a starter schema",
	Long: `Create a starter schema file, and optionally a .schemafaker.yaml config
next to it.

Without --yes the choices are asked interactively. Available templates:
minimal, user, shop, iot.`,
	Example: `  # Answer a few questions
  schemafaker init

  # Non-interactive, with a reproducible config
  schemafaker init shop.yaml --template shop --with-config --seed 42 --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initFlags
		if len(args) == 1 {
			opts.file = args[0]
		}
		if !opts.yes {
			if err := runInitForm(cmd, &opts); err != nil {
				return err
			}
		}
		return writeStarter(cmd.OutOrStdout(), opts)
	},
}

// runInitForm asks for the choices the user did not pass as flags.
func runInitForm(cmd *cobra.Command, opts *initOptions) error {
	flags := cmd.Flags()
	var fields []huh.Field

	if !flags.Changed("template") {
		options := make([]huh.Option[string], 0, len(templates.AvailableTemplates))
		for _, t := range templates.AvailableTemplates {
			options = append(options, huh.NewOption(t.Name+" - "+t.Description, t.ID))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Starter schema").
			Options(options...).
			Value(&opts.template))
	}
	if opts.file == "" {
		opts.file = DefaultSchemaFile
		fields = append(fields, huh.NewInput().
			Title("Schema file").
			Placeholder(DefaultSchemaFile).
			Value(&opts.file).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("file name is required")
				}
				return nil
			}))
	}
	if !flags.Changed("with-config") {
		fields = append(fields, huh.NewConfirm().
			Title("Also write " + config.LocalConfigFileNames[0] + "?").
			Value(&opts.withConfig))
	}
	if len(fields) > 0 {
		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return err
		}
	}

	if opts.withConfig && !flags.Changed("locale") {
		options := make([]huh.Option[string], 0, len(faker.Locales()))
		for _, l := range faker.Locales() {
			options = append(options, huh.NewOption(l, l))
		}
		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Locale").
				Options(options...).
				Value(&opts.locale),
		)).Run()
		if err != nil {
			return err
		}
	}
	return nil
}

// starterConfig is the subset of the configuration init writes.
type starterConfig struct {
	Locale string `yaml:"locale"`
	Seed   uint64 `yaml:"seed"`
}

func writeStarter(out io.Writer, opts initOptions) error {
	if opts.file == "" {
		opts.file = DefaultSchemaFile
	}
	tmpl, err := templates.GetTemplate(opts.template)
	if err != nil {
		return err
	}
	if opts.withConfig {
		opts.locale = faker.ResolveLocale(opts.locale)
	}

	data, err := templates.Render(tmpl.ID, filepath.Base(opts.file))
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}
	if _, err := schema.Parse(data); err != nil {
		return fmt.Errorf("template %s is invalid: %w", tmpl.ID, err)
	}

	configFile := filepath.Join(filepath.Dir(opts.file), config.LocalConfigFileNames[0])
	paths := []string{opts.file}
	if opts.withConfig {
		paths = append(paths, configFile)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil && !opts.force {
			return fmt.Errorf("file already exists: %s\n\nUse --force to overwrite", p)
		}
	}

	if err := os.WriteFile(opts.file, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Fprintf(out, "Created %s (template: %s)\n", opts.file, tmpl.ID)

	if opts.withConfig {
		cfgData, err := yaml.Marshal(starterConfig{Locale: opts.locale, Seed: opts.seed})
		if err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		if err := os.WriteFile(configFile, cfgData, 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Fprintf(out, "Created %s (locale %s, seed %d)\n", configFile, opts.locale, opts.seed)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  schemafaker generate %s:%s -c 3\n", opts.file, tmpl.Root)
	fmt.Fprintf(out, "  schemafaker serve %s:%s\n", opts.file, tmpl.Root)
	return nil
}

func init() {
	f := initCmd.Flags()
	f.StringVarP(&initFlags.template, "template", "t", templates.DefaultID, "Starter template: minimal, user, shop, iot")
	f.BoolVar(&initFlags.force, "force", false, "Overwrite existing files")
	f.BoolVarP(&initFlags.yes, "yes", "y", false, "Skip the questions and use flags and defaults")
	f.BoolVar(&initFlags.withConfig, "with-config", false, "Also write "+config.LocalConfigFileNames[0])
	f.StringVarP(&initFlags.locale, "locale", "l", config.DefaultLocale, "Locale written to the config file")
	f.Uint64VarP(&initFlags.seed, "seed", "s", 42, "Seed written to the config file")

	rootCmd.AddCommand(initCmd)
}
