package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strata-cms/strata/pkg/strata"
	"github.com/strata-cms/strata/pkg/strata/registry/file"
)

var (
	schemaStrict bool
	schemaJSON   bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Work with content type schema files",
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate the schema files in a directory",
	Long: `Validate parses every schema file the way a running server would.
Structural problems (duplicate slugs, missing display names, bad ids) are
errors. Unknown field types and patterns that do not compile are warnings,
because the engine skips them at request time; --strict turns warnings
into failures.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := schemaDir(args)

		types, warnings, err := file.LoadDir(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid schemas in %s: %v\n", dir, err)
			os.Exit(1)
		}

		for _, w := range warnings {
			fmt.Printf("warning: %s\n", w)
		}
		if schemaStrict && len(warnings) > 0 {
			fmt.Fprintf(os.Stderr, "%d warning(s) with --strict\n", len(warnings))
			os.Exit(1)
		}

		fmt.Printf("%d content type(s) valid in %s\n", len(types), dir)
	},
}

var schemaListCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the content types a schema directory declares",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := schemaDir(args)

		types, _, err := file.LoadDir(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid schemas in %s: %v\n", dir, err)
			os.Exit(1)
		}

		if schemaJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(types); err != nil {
				fmt.Fprintf(os.Stderr, "error encoding JSON: %v\n", err)
				os.Exit(1)
			}
			return
		}

		for _, ct := range types {
			fmt.Printf("%s  %s  (%d fields)\n", ct.Slug, ct.DisplayName, len(ct.Fields))
			for _, f := range ct.Fields {
				marker := ""
				if f.Required {
					marker = " required"
				}
				if f.Unique {
					marker += " unique"
				}
				if !strata.IsKnownFieldType(f.Type) {
					marker += " (unvalidated)"
				}
				fmt.Printf("  - %s: %s%s\n", f.ID, f.Type, marker)
			}
		}
	},
}

func schemaDir(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "./schemas"
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaValidateCmd)
	schemaCmd.AddCommand(schemaListCmd)
	schemaValidateCmd.Flags().BoolVar(&schemaStrict, "strict", false, "Treat warnings as failures")
	schemaListCmd.Flags().BoolVar(&schemaJSON, "json", false, "Output in JSON format")
}
