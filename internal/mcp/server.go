// Package mcp exposes pattern lookup and repackaging as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/patternbox/internal/repackage"
	"github.com/mvp-joe/patternbox/internal/source"
)

// ServerName and ServerVersion identify the MCP server to clients.
const (
	ServerName    = "patternbox-mcp"
	ServerVersion = "1.0.0"
)

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	mcp *server.MCPServer
}

// NewMCPServer registers every pattern tool.
func NewMCPServer(resolver *source.Resolver, repackager *repackage.Repackager) *MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	AddPatternListTool(s, resolver)
	AddPatternSourceTool(s, resolver)
	AddPatternRepackageTool(s, repackager)

	return &MCPServer{mcp: s}
}

// Serve runs on stdio until a signal, a server error or ctx ends it.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[mcp] serving on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("[mcp] received shutdown signal")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
