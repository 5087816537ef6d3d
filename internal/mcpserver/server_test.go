package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kensave/CodeCortX-MCP/internal/bm25"
	"github.com/kensave/CodeCortX-MCP/internal/config"
	"github.com/kensave/CodeCortX-MCP/internal/indexing"
	"github.com/kensave/CodeCortX-MCP/internal/query"
	"github.com/kensave/CodeCortX-MCP/internal/store"
	"github.com/kensave/CodeCortX-MCP/internal/types"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default(root)
	st := store.New()
	search := bm25.New()
	pipeline := indexing.New(root, cfg, st, search)
	engine := query.New(root, st, search, pipeline)
	return NewServer(engine), st
}

func callRequest(tool string, args map[string]interface{}) *mcp.CallToolRequest {
	raw, _ := json.Marshal(args)
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      tool,
			Arguments: raw,
		},
	}
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewServerConstructsWithoutPanicking(t *testing.T) {
	s, _ := newTestServer(t)
	assert.NotNil(t, s.server)
}

func TestHandleGetSymbolReturnsMatches(t *testing.T) {
	s, st := newTestServer(t)
	st.ReplaceFile(types.FileInfo{ID: 1, Path: "hello.xx"}, []*types.Symbol{
		{Name: "greet", Kind: types.KindFunction, Location: types.Location{FileID: 1, StartLine: 3, EndLine: 3}},
	}, nil, nil)

	result, err := s.handleGetSymbol(context.Background(), callRequest("get_symbol", map[string]interface{}{"name": "greet"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), "\"greet\"")
}

func TestHandleGetSymbolRequiresName(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleGetSymbol(context.Background(), callRequest("get_symbol", map[string]interface{}{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "name is required")
}

func TestHandleFindSymbolsRanksExactBeforePrefix(t *testing.T) {
	s, st := newTestServer(t)
	st.ReplaceFile(types.FileInfo{ID: 1, Path: "hello.xx"}, []*types.Symbol{
		{Name: "greet", Kind: types.KindFunction, Location: types.Location{FileID: 1, StartLine: 3, EndLine: 3}},
		{Name: "greeting", Kind: types.KindFunction, Location: types.Location{FileID: 1, StartLine: 7, EndLine: 7}},
	}, nil, nil)

	result, err := s.handleFindSymbols(context.Background(), callRequest("find_symbols", map[string]interface{}{"query": "greet"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var got []query.SymbolResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "greet", got[0].Name)
	assert.Equal(t, "greeting", got[1].Name)
}

func TestHandleGetFileOutlineUnknownFileIsError(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleGetFileOutline(context.Background(), callRequest("get_file_outline", map[string]interface{}{"file_path": "missing.xx"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "\"success\":false")
}
