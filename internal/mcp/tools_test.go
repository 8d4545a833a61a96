package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mvp-joe/patternbox/internal/catalog"
	"github.com/mvp-joe/patternbox/internal/repackage"
	"github.com/mvp-joe/patternbox/internal/sandbox"
	"github.com/mvp-joe/patternbox/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the pattern tools:
// - pattern_list returns all ids, or only those matching the globs
// - pattern_list rejects malformed argument payloads
// - pattern_source returns the raw text for a present page
// - pattern_source returns a tool error for unknown, missing and restricted ids
// - pattern_source requires the identifier argument
// - pattern_repackage returns the rewritten snippet with or without the descriptor
// - pattern_repackage degrades instead of failing for unknown ids
// - string-encoded arrays and booleans are coerced
// - NewMCPServer registers without panicking

const tabsSource = "export default function TabsPattern() {\n  return <div />;\n}\n"

func newFixture(t *testing.T, restricted bool) (*source.Resolver, *repackage.Repackager) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "app", "patterns", "tabs", "page.tsx")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(tabsSource), 0644))

	store, err := source.NewFSStore(root)
	require.NoError(t, err)
	resolver := source.NewResolver(catalog.Default(), store, source.Options{Restricted: restricted})

	rw, err := repackage.NewRegexRewriter(repackage.DefaultRewriteOptions())
	require.NoError(t, err)
	extractor := repackage.NewExtractor(&repackage.ResolverFetcher{Resolver: resolver}, rw, "")
	return resolver, repackage.New(extractor, nil, sandbox.Options{})
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args any) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	return text.Text
}

func TestPatternList(t *testing.T) {
	t.Parallel()

	resolver, _ := newFixture(t, false)
	handler := createPatternListHandler(resolver)

	result := call(t, handler, map[string]interface{}{})
	assert.False(t, result.IsError)
	var all PatternListResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &all))
	assert.Equal(t, 90, all.Total)

	result = call(t, handler, map[string]interface{}{"match": []interface{}{"*-menu"}})
	var menus PatternListResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &menus))
	require.NotZero(t, menus.Total)
	for _, p := range menus.Patterns {
		assert.Regexp(t, `-menu$`, p.Identifier)
		assert.Equal(t, "app/patterns/"+p.Identifier+"/page.tsx", p.Location)
	}
}

func TestPatternList_InvalidArguments(t *testing.T) {
	t.Parallel()

	resolver, _ := newFixture(t, false)
	result := call(t, createPatternListHandler(resolver), "not-a-map")
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid arguments format")
}

func TestPatternSource(t *testing.T) {
	t.Parallel()

	resolver, _ := newFixture(t, false)
	handler := createPatternSourceHandler(resolver)

	result := call(t, handler, map[string]interface{}{"identifier": "tabs"})
	require.False(t, result.IsError)
	var resp PatternSourceResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, tabsSource, resp.Content)
	assert.Equal(t, "app/patterns/tabs/page.tsx", resp.Location)

	for _, id := range []string{"nope", "cards"} {
		result = call(t, handler, map[string]interface{}{"identifier": id})
		assert.True(t, result.IsError, id)
	}

	result = call(t, handler, map[string]interface{}{})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "identifier parameter is required")
}

func TestPatternSource_Restricted(t *testing.T) {
	t.Parallel()

	resolver, _ := newFixture(t, true)
	result := call(t, createPatternSourceHandler(resolver), map[string]interface{}{"identifier": "tabs"})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "source access is disabled")
}

func TestPatternRepackage(t *testing.T) {
	t.Parallel()

	_, repackager := newFixture(t, false)
	handler := createPatternRepackageHandler(repackager)

	result := call(t, handler, map[string]interface{}{"identifier": "tabs"})
	require.False(t, result.IsError)
	var resp PatternRepackageResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, "TabsPattern", resp.DeclarationName)
	assert.False(t, resp.Degraded)
	assert.Equal(t, "function TabsPattern() {\n  return <div />;\n}", resp.Snippet)
	require.NotNil(t, resp.Descriptor)
	assert.Len(t, resp.Descriptor.Files, 9)

	result = call(t, handler, map[string]interface{}{"identifier": "tabs", "include_files": false})
	resp = PatternRepackageResponse{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Nil(t, resp.Descriptor)
}

func TestPatternRepackage_UnknownDegrades(t *testing.T) {
	t.Parallel()

	_, repackager := newFixture(t, false)
	result := call(t, createPatternRepackageHandler(repackager), map[string]interface{}{"identifier": "nope"})
	require.False(t, result.IsError)

	var resp PatternRepackageResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.True(t, resp.Degraded)
	assert.Equal(t, repackage.DefaultFallbackName, resp.DeclarationName)
}

func TestNewMCPServer(t *testing.T) {
	t.Parallel()

	resolver, repackager := newFixture(t, false)
	s := NewMCPServer(resolver, repackager)
	assert.NotNil(t, s.mcp)
}

func TestPatternTools_StringEncodedArguments(t *testing.T) {
	t.Parallel()

	resolver, repackager := newFixture(t, false)

	result := call(t, createPatternListHandler(resolver), map[string]interface{}{"match": `["tabs"]`})
	var list PatternListResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "tabs", list.Patterns[0].Identifier)

	result = call(t, createPatternRepackageHandler(repackager), map[string]interface{}{"identifier": "tabs", "include_files": "false"})
	var resp PatternRepackageResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, "TabsPattern", resp.DeclarationName)
	assert.Nil(t, resp.Descriptor)
}
