package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gobwas/glob"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/patternbox/internal/repackage"
	"github.com/mvp-joe/patternbox/internal/sandbox"
	"github.com/mvp-joe/patternbox/internal/source"
)

// PatternEntry is one registered identifier.
type PatternEntry struct {
	Identifier string `json:"identifier"`
	Location   string `json:"location"`
}

// PatternListResponse is the pattern_list result.
type PatternListResponse struct {
	Patterns []PatternEntry `json:"patterns"`
	Total    int            `json:"total"`
}

// PatternSourceResponse is the pattern_source result.
type PatternSourceResponse struct {
	Identifier string `json:"identifier"`
	Location   string `json:"location"`
	Content    string `json:"content"`
}

// PatternRepackageResponse is the pattern_repackage result.
type PatternRepackageResponse struct {
	Identifier      string              `json:"identifier"`
	DeclarationName string              `json:"declaration_name"`
	Degraded        bool                `json:"degraded"`
	DroppedImports  []string            `json:"dropped_imports,omitempty"`
	Snippet         string              `json:"snippet"`
	Descriptor      *sandbox.Descriptor `json:"descriptor,omitempty"`
}

type patternListRequest struct {
	Match []string `json:"match"`
}

type patternRepackageRequest struct {
	Identifier   string `json:"identifier"`
	IncludeFiles *bool  `json:"include_files"`
}

// AddPatternListTool registers pattern_list. Composable with the other tools.
func AddPatternListTool(s *server.MCPServer, resolver *source.Resolver) {
	tool := mcp.NewTool(
		"pattern_list",
		mcp.WithDescription("List registered UI pattern identifiers and the page each one resolves to."),
		mcp.WithArray("match",
			mcp.Description("Optional glob filters on the identifier (e.g., ['*-menu', 'form*'])")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createPatternListHandler(resolver))
}

func createPatternListHandler(resolver *source.Resolver) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		var req patternListRequest
		if err := bindArguments(argsMap, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		var filters []glob.Glob
		for _, pattern := range req.Match {
			g, err := glob.Compile(pattern)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid match pattern %q: %v", pattern, err)), nil
			}
			filters = append(filters, g)
		}

		table := resolver.Table()
		resp := PatternListResponse{Patterns: []PatternEntry{}}
		for _, id := range table.IDs() {
			if !matchesAny(filters, id) {
				continue
			}
			loc, _ := table.Lookup(id)
			resp.Patterns = append(resp.Patterns, PatternEntry{Identifier: id, Location: loc})
		}
		resp.Total = len(resp.Patterns)

		return marshalToolResponse(resp)
	}
}

func matchesAny(filters []glob.Glob, id string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, g := range filters {
		if g.Match(id) {
			return true
		}
	}
	return false
}

// AddPatternSourceTool registers pattern_source.
func AddPatternSourceTool(s *server.MCPServer, resolver *source.Resolver) {
	tool := mcp.NewTool(
		"pattern_source",
		mcp.WithDescription("Return the raw page source of a UI pattern, unmodified."),
		mcp.WithString("identifier",
			mcp.Required(),
			mcp.Description("Pattern identifier (e.g., 'cards', 'navigation-tabs')")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createPatternSourceHandler(resolver))
}

func createPatternSourceHandler(resolver *source.Resolver) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}
		id, err := parseStringArg(argsMap, "identifier", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text, err := resolver.Resolve(ctx, id)
		if err != nil {
			// Resolution failures are for the caller; anything else is ours.
			if source.KindOf(err) != 0 {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}

		return marshalToolResponse(PatternSourceResponse{
			Identifier: text.Identifier,
			Location:   text.Location,
			Content:    text.Content,
		})
	}
}

// AddPatternRepackageTool registers pattern_repackage. It builds the sandbox
// project without submitting it anywhere.
func AddPatternRepackageTool(s *server.MCPServer, repackager *repackage.Repackager) {
	tool := mcp.NewTool(
		"pattern_repackage",
		mcp.WithDescription("Rewrite a UI pattern into a self-contained snippet and the sandbox project that would run it."),
		mcp.WithString("identifier",
			mcp.Required(),
			mcp.Description("Pattern identifier (e.g., 'cards')")),
		mcp.WithBoolean("include_files",
			mcp.Description("Include the full project descriptor (default: true)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createPatternRepackageHandler(repackager))
}

func createPatternRepackageHandler(repackager *repackage.Repackager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}
		var req patternRepackageRequest
		if err := bindArguments(argsMap, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Identifier == "" {
			return mcp.NewToolResultError("identifier parameter is required"), nil
		}
		id := req.Identifier

		d, snippet, err := repackager.Descriptor(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to assemble descriptor: %w", err)
		}

		resp := PatternRepackageResponse{
			Identifier:      id,
			DeclarationName: snippet.DeclarationName,
			Degraded:        snippet.Degraded,
			DroppedImports:  snippet.DroppedImports,
			Snippet:         snippet.Text,
		}
		if req.IncludeFiles == nil || *req.IncludeFiles {
			resp.Descriptor = d
		}
		return marshalToolResponse(resp)
	}
}

func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
