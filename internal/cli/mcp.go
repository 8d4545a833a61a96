package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/patternbox/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for pattern lookup and repackaging",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
browse patterns and pull self-contained snippets.

Tools:
- pattern_list: registered identifiers, optionally filtered by glob
- pattern_source: raw source for an identifier
- pattern_repackage: rewritten snippet plus sandbox project files

Communicates via stdio (standard MCP transport).

Example:
  patternbox mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries the protocol
	fmt.Fprintf(os.Stderr, "Patternbox MCP Server\n")
	fmt.Fprintf(os.Stderr, "Source: %s (%s)\n", cfg.Source.Backend, cfg.Source.Environment)
	fmt.Fprintf(os.Stderr, "\n")

	c, err := newComponents(cfg, nil)
	if err != nil {
		return err
	}

	if err := mcp.NewMCPServer(c.resolver, c.repackager).Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
