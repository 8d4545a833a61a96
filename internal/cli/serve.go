package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/patternbox/internal/server"
	"github.com/spf13/cobra"
)

var serveAddrFlag string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pattern sources and sandbox hand-off over HTTP",
	Long: `Start the HTTP server.

Routes:
  GET /api/source               list registered identifiers
  GET /api/source/{identifier}  raw source text (404 / 503 / 500 on failure)
  GET /api/descriptor/{id}      sandbox project descriptor as JSON
  GET /sandbox/{identifier}     auto-submitting form that opens the sandbox
  GET /playground               live preview of a pasted snippet
  GET /healthz                  liveness

Example:
  patternbox serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddrFlag != "" {
		cfg.Server.Addr = serveAddrFlag
	}

	c, err := newComponents(cfg, nil)
	if err != nil {
		return err
	}

	handler := server.NewHandler(c.resolver, c.repackager)
	srv := server.New(cfg.Server.Addr, server.NewMux(handler, cfg.Server.CORS))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Patternbox listening on %s (source: %s, restricted: %v)\n",
		srv.Addr(), cfg.Source.Backend, cfg.Restricted())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigCh:
		fmt.Fprintln(cmd.ErrOrStderr(), "Shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}
