package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/patternbox/internal/catalog"
	"github.com/spf13/cobra"
)

var listMatchFlag []string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered pattern identifiers and their locations",
	Long: `List every identifier in the catalog table, including configured overrides.

Examples:
  patternbox list
  patternbox list --match '*-menu' --match 'data-*'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringArrayVar(&listMatchFlag, "match", nil, "only list identifiers matching this glob (repeatable)")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return writeTable(cmd.OutOrStdout(), catalog.New(cfg.Source.Overrides), listMatchFlag)
}

func writeTable(w io.Writer, table *catalog.Table, patterns []string) error {
	ids, err := matchIdentifiers(table.IDs(), patterns)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, id := range ids {
		loc, _ := table.Lookup(id)
		fmt.Fprintf(tw, "%s\t%s\n", id, loc)
	}
	return tw.Flush()
}

// matchIdentifiers keeps ids matching any of patterns. No patterns keeps all.
func matchIdentifiers(ids []string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return ids, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid match pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}

	var matched []string
	for _, id := range ids {
		for _, g := range globs {
			if g.Match(id) {
				matched = append(matched, id)
				break
			}
		}
	}
	return matched, nil
}
