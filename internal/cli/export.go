package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/patternbox/internal/repackage"
	"github.com/mvp-joe/patternbox/internal/sandbox"
	"github.com/mvp-joe/patternbox/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	exportAllFlag   bool
	exportOutFlag   string
	exportWatchFlag bool
	exportQuietFlag bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [identifier...]",
	Short: "Write repackaged sandbox projects to disk",
	Long: `Export repackages patterns into standalone Vite + React projects under
<out>/<identifier>/, the same files the sandbox receives plus a sandbox.json
with the descriptor metadata.

Patterns whose source cannot be loaded are exported with the placeholder
snippet, as the sandbox would receive them.

With --watch the command keeps running and re-exports a pattern whenever its
source file changes (filesystem backend only).

Examples:
  # Export two patterns
  patternbox export cards tabs

  # Export every registered pattern
  patternbox export --all --out dist/sandboxes

  # Keep exports in sync while editing
  patternbox export --all --watch`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVarP(&exportAllFlag, "all", "a", false, "export every registered pattern")
	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", "sandboxes", "output directory")
	exportCmd.Flags().BoolVarP(&exportWatchFlag, "watch", "w", false, "re-export when sources change")
	exportCmd.Flags().BoolVarP(&exportQuietFlag, "quiet", "q", false, "suppress progress output")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportAllFlag && len(args) > 0 {
		return errors.New("pass identifiers or --all, not both")
	}
	if !exportAllFlag && len(args) == 0 {
		return errors.New("no identifiers given (use --all to export every pattern)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := newComponents(cfg, &sandbox.DirWriter{Dir: exportOutFlag})
	if err != nil {
		return err
	}

	ids := args
	if exportAllFlag {
		ids = c.resolver.Table().IDs()
	}

	out := cmd.OutOrStdout()
	_, failed := exportPatterns(cmd.Context(), c.repackager, ids, newExportProgress(out, exportQuietFlag))

	if !exportWatchFlag {
		if failed > 0 {
			return fmt.Errorf("%d of %d exports failed", failed, len(ids))
		}
		return nil
	}

	if cfg.Source.Backend == "minio" {
		return errors.New("--watch requires the filesystem source backend")
	}
	return watchExports(cmd.Context(), c, cfg.Source.Root, out)
}

// exportPatterns repackages each identifier through r in order and returns
// how many were written and how many failed.
func exportPatterns(ctx context.Context, r *repackage.Repackager, ids []string, progress *exportProgress) (exported, failed int) {
	progress.OnStart(len(ids))
	for _, id := range ids {
		if r.Repackage(ctx, id) {
			exported++
		} else {
			failed++
		}
		progress.OnExported(id)
	}
	progress.OnComplete(exported, failed)
	return exported, failed
}

func watchExports(ctx context.Context, c *components, root string, out io.Writer) error {
	w, err := watcher.New(root, c.resolver.Table(), watcher.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	defer w.Stop()

	err = w.Start(ctx, func(ids []string) {
		fmt.Fprintf(out, "Changed: %v\n", ids)
		exportPatterns(ctx, c.repackager, ids, newExportProgress(out, exportQuietFlag))
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", root)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-ctx.Done():
	case <-w.Done():
	}
	return nil
}
