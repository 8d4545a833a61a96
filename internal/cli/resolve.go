package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mvp-joe/patternbox/internal/repackage"
	"github.com/spf13/cobra"
)

var extractJSONFlag bool

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <identifier>",
	Short: "Print the raw source of a pattern",
	Long: `Resolve an identifier through the catalog table and print its source file.

Fails for unregistered identifiers, missing files, and when source access is
disabled (source.environment: production).`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <identifier>",
	Short: "Print the self-contained snippet for a pattern",
	Long: `Fetch a pattern's source and rewrite it into a snippet that can live next to
a generated App component: the default export is unwrapped, deep and shared
helper imports are dropped along with their JSX usages.

When the source cannot be fetched the placeholder snippet is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVar(&extractJSONFlag, "json", false, "print the snippet with its metadata as JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := newComponents(cfg, nil)
	if err != nil {
		return err
	}

	text, err := c.resolver.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), text.Content)
	return err
}

type extractOutput struct {
	Identifier      string   `json:"identifier"`
	DeclarationName string   `json:"declarationName"`
	Degraded        bool     `json:"degraded"`
	DroppedImports  []string `json:"droppedImports,omitempty"`
	Snippet         string   `json:"snippet"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := newComponents(cfg, nil)
	if err != nil {
		return err
	}

	snippet := c.repackager.Extract(cmd.Context(), args[0])
	return writeSnippet(cmd.OutOrStdout(), snippet, extractJSONFlag)
}

func writeSnippet(w io.Writer, s repackage.Snippet, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, s.Text)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(extractOutput{
		Identifier:      s.Identifier,
		DeclarationName: s.DeclarationName,
		Degraded:        s.Degraded,
		DroppedImports:  s.DroppedImports,
		Snippet:         s.Text,
	})
}
