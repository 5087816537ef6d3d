// Package mcpserver wires the query surface (C9) onto the Model Context
// Protocol: seven tools, each a direct wrapper over one query.Engine
// operation, speaking line-delimited JSON-RPC 2.0 over stdio.
//
// Tool registration follows the mcp.NewServer + s.server.AddTool +
// s.server.Run(ctx, &mcp.StdioTransport{}) idiom, trimmed to a seven-tool
// surface rather than a larger one with "info"-style introspection.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kensave/CodeCortX-MCP/internal/debug"
	internalerrors "github.com/kensave/CodeCortX-MCP/internal/errors"
	"github.com/kensave/CodeCortX-MCP/internal/query"
	"github.com/kensave/CodeCortX-MCP/internal/version"
)

// Server hosts the MCP stdio transport over one project's query Engine.
type Server struct {
	engine *query.Engine
	server *mcp.Server
}

// NewServer builds the MCP server and registers all seven tools.
func NewServer(engine *query.Engine) *Server {
	s := &Server{engine: engine}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "codecortx-mcp",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s
}

// Run speaks JSON-RPC 2.0 over stdin/stdout until ctx is canceled or the
// client disconnects. debug.MCPMode is set first, which switches diagnostic
// logging off for the session so none of it can reach stdout.
func (s *Server) Run(ctx context.Context) error {
	debug.SetMCPMode(true)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "index_code",
		Description: "Index (or re-index) a directory or file, extracting symbols and references.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {Type: "string", Description: "File path to index; a directory path, or none, re-indexes the whole project root"},
			},
		},
	}, s.handleIndexCode)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_symbol",
		Description: "Look up every symbol with an exact name match.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]*jsonschema.Schema{
				"name":           {Type: "string", Description: "Exact symbol name"},
				"include_source": {Type: "boolean", Description: "Attach each symbol's source text"},
			},
		},
	}, s.handleGetSymbol)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_symbol_references",
		Description: "List every reference (definitions, usages, imports) to a named symbol.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]*jsonschema.Schema{
				"name": {Type: "string", Description: "Symbol name"},
			},
		},
	}, s.handleGetSymbolReferences)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_symbols",
		Description: "Find symbols by exact name or name prefix, optionally filtered by kind.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"query"},
			Properties: map[string]*jsonschema.Schema{
				"query": {Type: "string", Description: "Identifier or name prefix"},
				"kind":  {Type: "string", Description: "Optional kind filter, e.g. function, class, struct"},
			},
		},
	}, s.handleFindSymbols)

	s.server.AddTool(&mcp.Tool{
		Name:        "code_search",
		Description: "Full-text BM25 search over indexed file contents.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"query"},
			Properties: map[string]*jsonschema.Schema{
				"query":         {Type: "string", Description: "Free-text search query"},
				"max_results":   {Type: "integer", Description: "Maximum results to return (default 10)"},
				"context_lines": {Type: "integer", Description: "Lines of context around the matching line (default 2)"},
			},
		},
	}, s.handleCodeSearch)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_file_outline",
		Description: "Render a file's symbols grouped by kind with line ranges and signatures.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"file_path"},
			Properties: map[string]*jsonschema.Schema{
				"file_path": {Type: "string", Description: "Project-relative or absolute file path"},
			},
		},
	}, s.handleGetFileOutline)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_directory_outline",
		Description: "Render a per-file grouped listing of symbols under a directory, restricted to requested kinds.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"directory_path"},
			Properties: map[string]*jsonschema.Schema{
				"directory_path": {Type: "string", Description: "Project-relative or absolute directory path"},
				"includes": {
					Type:        "array",
					Description: "Kinds to include (default: class, struct, interface)",
					Items:       &jsonschema.Schema{Type: "string"},
				},
			},
		},
	}, s.handleGetDirectoryOutline)
}

func (s *Server) handleIndexCode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Path string `json:"path"`
	}
	if err := unmarshalArgs(req, &params); err != nil {
		return errorResponse("index_code", err)
	}

	result, err := s.engine.IndexCode(ctx, params.Path)
	if err != nil {
		return errorResponse("index_code", err)
	}
	return jsonResponse(result)
}

func (s *Server) handleGetSymbol(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Name          string `json:"name"`
		IncludeSource bool   `json:"include_source"`
	}
	if err := unmarshalArgs(req, &params); err != nil {
		return errorResponse("get_symbol", err)
	}
	if params.Name == "" {
		return errorResponse("get_symbol", internalerrors.NewInvalidParamsError(params.Name, fmt.Errorf("name is required")))
	}
	return jsonResponse(s.engine.GetSymbol(params.Name, params.IncludeSource))
}

func (s *Server) handleGetSymbolReferences(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Name string `json:"name"`
	}
	if err := unmarshalArgs(req, &params); err != nil {
		return errorResponse("get_symbol_references", err)
	}
	if params.Name == "" {
		return errorResponse("get_symbol_references", internalerrors.NewInvalidParamsError(params.Name, fmt.Errorf("name is required")))
	}
	return jsonResponse(s.engine.GetSymbolReferences(params.Name))
}

func (s *Server) handleFindSymbols(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Query string `json:"query"`
		Kind  string `json:"kind"`
	}
	if err := unmarshalArgs(req, &params); err != nil {
		return errorResponse("find_symbols", err)
	}
	if params.Query == "" {
		return errorResponse("find_symbols", internalerrors.NewInvalidParamsError(params.Query, fmt.Errorf("query is required")))
	}
	return jsonResponse(s.engine.FindSymbols(params.Query, params.Kind))
}

func (s *Server) handleCodeSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := struct {
		Query        string `json:"query"`
		MaxResults   int    `json:"max_results"`
		ContextLines int    `json:"context_lines"`
	}{MaxResults: 10, ContextLines: 2}
	if err := unmarshalArgs(req, &params); err != nil {
		return errorResponse("code_search", err)
	}
	if params.Query == "" {
		return errorResponse("code_search", internalerrors.NewInvalidParamsError(params.Query, fmt.Errorf("query is required")))
	}
	return jsonResponse(s.engine.CodeSearch(params.Query, params.MaxResults, params.ContextLines))
}

func (s *Server) handleGetFileOutline(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		FilePath string `json:"file_path"`
	}
	if err := unmarshalArgs(req, &params); err != nil {
		return errorResponse("get_file_outline", err)
	}
	outline, err := s.engine.GetFileOutline(params.FilePath)
	if err != nil {
		return errorResponse("get_file_outline", err)
	}
	return jsonResponse(outline)
}

func (s *Server) handleGetDirectoryOutline(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		DirectoryPath string   `json:"directory_path"`
		Includes      []string `json:"includes"`
	}
	if err := unmarshalArgs(req, &params); err != nil {
		return errorResponse("get_directory_outline", err)
	}
	return jsonResponse(s.engine.GetDirectoryOutline(params.DirectoryPath, params.Includes))
}

func unmarshalArgs(req *mcp.CallToolRequest, v interface{}) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return internalerrors.NewInvalidParamsError(string(req.Params.Arguments), err)
	}
	return nil
}

// jsonResponse marshals data and wraps it as a single text content block.
func jsonResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("mcpserver: marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}

// errorResponse reports the error inside the tool result (IsError=true)
// rather than as a transport error, tagged with the MCP error code the
// error taxonomy maps it to.
func errorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	code := internalerrors.CodeInternalError
	type coder interface{ Code() internalerrors.Code }
	if c, ok := err.(coder); ok {
		code = c.Code()
	}

	payload := map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
		"code":      string(code),
	}
	content, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, marshalErr
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
		IsError: true,
	}, nil
}
