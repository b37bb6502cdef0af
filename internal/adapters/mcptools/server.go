// Package mcptools exposes catalog search, name matching and community stats
// as Model Context Protocol tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	service "github.com/okian/fplpicks/internal/app"
	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/match"
	"github.com/okian/fplpicks/pkg/logger"
)

const (
	serverName        = "fplpicks"
	defaultVersion    = "dev"
	defaultSearchSize = 25
	maxNames          = 100
)

// ErrNoNames is returned by match_names when called without input.
var ErrNoNames = errors.New("names is required")

// Dependencies is the read-only slice of the service the tools use.
type Dependencies interface {
	SearchPlayers(ctx context.Context, query, position string) ([]catalog.Player, error)
	MatchNames(ctx context.Context, names []string) match.Result
	Community(ctx context.Context, p int) (service.CommunityView, error)
}

// SearchArgs is the input of search_players.
type SearchArgs struct {
	Query    string `json:"query,omitempty" jsonschema:"Name or club substring"`
	Position string `json:"position,omitempty" jsonschema:"GKP, DEF, MID or FWD"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum results (default 25)"`
}

// MatchArgs is the input of match_names.
type MatchArgs struct {
	Names []string `json:"names" jsonschema:"Player names as read from a screenshot or typed by hand"`
}

// CommunityArgs is the input of community_stats.
type CommunityArgs struct {
	Period int `json:"period,omitempty" jsonschema:"Gameweek (0 = current)"`
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the implementation version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// WithLogger sets the tool logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server holds the MCP server and its HTTP transport.
type Server struct {
	deps    Dependencies
	version string
	logger  logger.Logger
	mcp     *mcp.Server
	handler http.Handler
}

// New registers the tools against deps.
func New(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:    deps,
		version: defaultVersion,
		logger:  logger.Get().Named("mcp"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: s.version}, nil)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_players",
		Description: "Search the player catalog by name or club, optionally filtered by position",
	}, s.searchPlayers)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "match_names",
		Description: "Resolve free-text player names to catalog players and fit them to the squad budget",
	}, s.matchNames)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "community_stats",
		Description: "Ownership, captaincy and template squad across submitted squads for a gameweek",
	}, s.communityStats)

	s.handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
	return s
}

// Register attaches the streamable HTTP transport at /mcp.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.Handle("/mcp", s.handler)
}

// Handler returns the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) searchPlayers(ctx context.Context, _ *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	players, err := s.deps.SearchPlayers(ctx, args.Query, args.Position)
	if err != nil {
		return toolError(err), nil, nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultSearchSize
	}
	if len(players) > limit {
		players = players[:limit]
	}
	if players == nil {
		players = []catalog.Player{}
	}
	return toolJSON(players)
}

func (s *Server) matchNames(ctx context.Context, _ *mcp.CallToolRequest, args MatchArgs) (*mcp.CallToolResult, any, error) {
	if len(args.Names) == 0 {
		return toolError(ErrNoNames), nil, nil
	}
	names := args.Names
	if len(names) > maxNames {
		names = names[:maxNames]
	}
	return toolJSON(s.deps.MatchNames(ctx, names))
}

func (s *Server) communityStats(ctx context.Context, _ *mcp.CallToolRequest, args CommunityArgs) (*mcp.CallToolResult, any, error) {
	view, err := s.deps.Community(ctx, args.Period)
	if err != nil {
		s.logger.Debug(ctx, "community_stats failed", logger.Int("period", args.Period), logger.Error(err))
		return toolError(err), nil, nil
	}
	return toolJSON(view)
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}
