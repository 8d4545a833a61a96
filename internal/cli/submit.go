package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/patternbox/internal/sandbox"
	"github.com/spf13/cobra"
)

var submitHTMLFlag string

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit <identifier>",
	Short: "Repackage a pattern and send it to the online sandbox",
	Long: `Extract a pattern, assemble the sandbox project and post it to the
configured sandbox endpoint (sandbox.endpoint) as a multipart form.

With --html the auto-submitting form page is written to a file instead; open
it in a browser to land in the sandbox.

Examples:
  patternbox submit cards
  patternbox submit cards --html cards.html`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVar(&submitHTMLFlag, "html", "", "write the auto-submitting form page to this file instead of posting")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var submitter sandbox.Submitter = postSubmitter(cfg)
	if submitHTMLFlag != "" {
		f, err := os.Create(submitHTMLFlag)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", submitHTMLFlag, err)
		}
		defer f.Close()
		submitter = &sandbox.FormPage{W: f}
	}

	c, err := newComponents(cfg, submitter)
	if err != nil {
		return err
	}

	if !c.repackager.Repackage(cmd.Context(), args[0]) {
		return fmt.Errorf("failed to submit %s to the sandbox", args[0])
	}

	if submitHTMLFlag != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote sandbox form for %s to %s\n", args[0], submitHTMLFlag)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Submitted %s to %s\n", args[0], cfg.Sandbox.Endpoint)
	}
	return nil
}
