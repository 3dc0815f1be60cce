package main

import (
	"fmt"

	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	"github.com/spf13/cobra"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas [category]",
	Short: "Print the JSON schema of rule conditions",
	Long: `Print the JSON schema a fare rule's conditions must satisfy. Without a
category every schema is printed, keyed by category, in pipeline order when
the table output is used.`,
	Example: `  farectl schemas
  farectl schemas advance_purchase`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			category, err := conditions.ParseCategory(args[0])
			if err != nil {
				return fmt.Errorf("unknown category %q", args[0])
			}
			schema, err := conditions.Schema(category)
			if err != nil {
				return err
			}
			return writeJSON(out, schema)
		}

		schemas, err := conditions.Schemas()
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return writeJSON(out, schemas)
		}

		tw := newTable(out)
		fmt.Fprintln(tw, "ORDER\tCATEGORY\tREQUIRED")
		for i, category := range conditions.CategoryOrder {
			schema := schemas[category]
			var required []string
			if schema != nil {
				required = schema.Required
			}
			fmt.Fprintf(tw, "%d\t%s\t%v\n", i+1, category, required)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}
