package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/schema"
)

var inspectJSON bool

// FieldInfo describes how one field of a schema will be generated.
type FieldInfo struct {
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Classification string         `json:"classification"`
	Category       string         `json:"category,omitempty"`
	Constraints    map[string]any `json:"constraints,omitempty"`
	Default        any            `json:"default,omitempty"`
}

// SchemaInfo is the inspect command's JSON output.
type SchemaInfo struct {
	Schema      string      `json:"schema"`
	Description string      `json:"description,omitempty"`
	Fields      []FieldInfo `json:"fields"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect SCHEMA[:Model]",
	Short: "Show how each field of a schema is classified",
	Long: `Resolve a schema and print, for every field, its type expression, the
classification the generator derived from it, its constraints and the
realistic-value category matched by its name.

Loading errors such as unknown types or unsatisfiable constraints are reported
the same way generate reports them.`,
	Example: `  schemafaker inspect schema.yaml:Order
  schemafaker inspect openapi.yaml:Pet --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, sch, err := schema.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		session, err := generator.NewSession(reg)
		if err != nil {
			return err
		}
		plan, err := session.Plan(sch.Name)
		if err != nil {
			return err
		}

		info := describePlan(plan)
		if inspectJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		return printSchemaInfo(cmd.OutOrStdout(), info)
	},
}

func describePlan(p *generator.Plan) SchemaInfo {
	info := SchemaInfo{
		Schema:      p.Schema.Name,
		Description: p.Schema.Description,
		Fields:      make([]FieldInfo, 0, len(p.Fields)),
	}
	for _, fp := range p.Fields {
		fi := FieldInfo{
			Name:           fp.Field.Name,
			Type:           fp.Field.Type,
			Classification: fp.Type.String(),
			Category:       string(fp.Category),
			Constraints:    fp.Field.Constraints,
		}
		if fp.Field.HasDefault {
			fi.Default = fp.Field.Default
		}
		info.Fields = append(info.Fields, fi)
	}
	return info
}

func printSchemaInfo(out io.Writer, info SchemaInfo) error {
	fmt.Fprintf(out, "Schema: %s\n", info.Schema)
	if info.Description != "" {
		fmt.Fprintf(out, "  %s\n", info.Description)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tTYPE\tCLASSIFICATION\tCONSTRAINTS\tCATEGORY")
	for _, f := range info.Fields {
		category := f.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			f.Name, f.Type, f.Classification, formatConstraints(f), category)
	}
	return w.Flush()
}

// formatConstraints renders constraints as sorted key=value pairs.
func formatConstraints(f FieldInfo) string {
	keys := make([]string, 0, len(f.Constraints))
	for k := range f.Constraints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, f.Constraints[k]))
	}
	if f.Default != nil {
		parts = append(parts, fmt.Sprintf("default=%v", f.Default))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(inspectCmd)
}
