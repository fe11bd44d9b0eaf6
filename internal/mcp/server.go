package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/filmes/internal/core"
	"github.com/vadimtrunov/filmes/internal/store"
)

// Deps holds the dependencies of the MCP tool handlers.
type Deps struct {
	Catalog core.Catalog
}

// Server wraps an MCP SDK server with the catalog tools.
type Server struct {
	server *mcpsdk.Server
	deps   Deps
	logger *slog.Logger
}

// NewServer creates an MCP server with all tools registered.
func NewServer(deps Deps, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "filmes",
			Version: version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, deps: deps, logger: logger}
	srv.registerTools()
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(searchMoviesTool(), s.handleSearchMovies)
	s.server.AddTool(getMovieDetailTool(), s.handleGetMovieDetail)
	s.server.AddTool(searchTVShowsTool(), s.handleSearchTVShows)
	s.server.AddTool(getTVDetailTool(), s.handleGetTVDetail)
}

func searchMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "search_movies",
		Description: "Search TMDb for movies by title. Returns the raw result list in provider order, each entry with its TMDb id, title, release date and rating.",
		InputSchema: querySchema("The movie title to search for"),
	}
}

func getMovieDetailTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_movie_detail",
		Description: "Get the full TMDb detail record of a movie by its id, exactly as the API returns it.",
		InputSchema: idSchema("movie_id", "The TMDb id of the movie"),
	}
}

func searchTVShowsTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "search_tv_shows",
		Description: "Search TMDb for TV shows by name. Returns the raw result list in provider order.",
		InputSchema: querySchema("The show name to search for"),
	}
}

func getTVDetailTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_tv_detail",
		Description: "Get the full TMDb detail record of a TV show by its id, exactly as the API returns it.",
		InputSchema: idSchema("tv_id", "The TMDb id of the show"),
	}
}

func querySchema(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": desc,
			},
		},
		"required": []any{"query"},
	}
}

func idSchema(key, desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			key: map[string]any{
				"type":        []any{"integer", "string"},
				"description": desc,
			},
		},
		"required": []any{key},
	}
}

// Tool handlers. Each call gets fresh stores so concurrent sessions stay isolated.

func (s *Server) handleSearchMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Catalog == nil {
		return toolError("TMDb client not configured"), nil
	}

	query, err := extractStringFromArgs(req.Params.Arguments, "query")
	if err != nil {
		return toolError(err.Error()), nil
	}

	results, err := store.NewMovieStore(s.deps.Catalog, s.logger).SearchMovies(ctx, query)
	if err != nil {
		return toolError(err.Error()), nil
	}
	return toolJSON(results)
}

func (s *Server) handleGetMovieDetail(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Catalog == nil {
		return toolError("TMDb client not configured"), nil
	}

	id, err := extractIDFromArgs(req.Params.Arguments, "movie_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	ms := store.NewMovieStore(s.deps.Catalog, s.logger)
	if err := ms.GetMovieDetail(ctx, id); err != nil {
		return toolError(err.Error()), nil
	}
	return toolJSON(ms.CurrentMovie())
}

func (s *Server) handleSearchTVShows(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Catalog == nil {
		return toolError("TMDb client not configured"), nil
	}

	query, err := extractStringFromArgs(req.Params.Arguments, "query")
	if err != nil {
		return toolError(err.Error()), nil
	}

	results, err := store.NewTVStore(s.deps.Catalog, s.logger).SearchTVShows(ctx, query)
	if err != nil {
		return toolError(err.Error()), nil
	}
	return toolJSON(results)
}

func (s *Server) handleGetTVDetail(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Catalog == nil {
		return toolError("TMDb client not configured"), nil
	}

	id, err := extractIDFromArgs(req.Params.Arguments, "tv_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	ts := store.NewTVStore(s.deps.Catalog, s.logger)
	if err := ts.GetTVDetail(ctx, id); err != nil {
		return toolError(err.Error()), nil
	}
	return toolJSON(ts.CurrentTV())
}

// Helper functions.

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// extractIDFromArgs reads an identifier given either as a JSON number or a
// string. Validation is left to the store.
func extractIDFromArgs(raw json.RawMessage, key string) (string, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}

	switch v := val.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%s must be a number, got %T", key, val)
	}
}

// extractStringFromArgs extracts a string argument from raw JSON arguments.
func extractStringFromArgs(raw json.RawMessage, key string) (string, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}

	s, ok := val.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s must be a non-empty string", key)
	}
	return s, nil
}
