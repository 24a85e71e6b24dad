package mcptools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/galzzz/drops-exporter/internal/api"
)

// Server provides MCP tools for inspecting a running exporter
type Server struct {
	server *mcp.Server
	client *Client
}

// NewServer creates a new MCP server backed by client
func NewServer(client *Client) *Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "drops-tools",
		Version: "v1.0.0",
	}, nil)

	s := &Server{
		server: server,
		client: client,
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdio until ctx is done or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools registers all exporter MCP tools
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "drops_whitelist_status",
		Description: "Show the drop whitelist currently loaded by the exporter: item names, count, and when it was last refreshed.",
	}, s.handleWhitelistStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "drops_refresh_whitelist",
		Description: "Reload the drop whitelist from the remote endpoint now and report the result. The previous whitelist is kept if the reload fails.",
	}, s.handleRefreshWhitelist)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "drops_recent",
		Description: "List recently matched drops with their webhook delivery status.",
	}, s.handleRecent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "drops_check_item",
		Description: "Check whether an item name is on the drop whitelist. Matching ignores case and surrounding spaces.",
	}, s.handleCheckItem)
}

// WhitelistStatusInput is empty - no input needed
type WhitelistStatusInput struct{}

// WhitelistStatusOutput describes the loaded whitelist
type WhitelistStatusOutput struct {
	Items      []string `json:"items"`
	Count      int      `json:"count"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
	LoadedAgo  string   `json:"loaded_ago,omitempty"`
	Configured bool     `json:"endpoint_configured"`
	Error      string   `json:"error,omitempty"`
}

func (s *Server) handleWhitelistStatus(ctx context.Context, req *mcp.CallToolRequest, input WhitelistStatusInput) (*mcp.CallToolResult, WhitelistStatusOutput, error) {
	wl, err := s.client.Whitelist(ctx)
	if err != nil {
		return nil, WhitelistStatusOutput{Error: err.Error()}, nil
	}

	return nil, WhitelistStatusOutput{
		Items:      wl.Items,
		Count:      wl.Count,
		UpdatedAt:  wl.UpdatedAt,
		LoadedAgo:  wl.LoadedAgo,
		Configured: wl.Configured,
	}, nil
}

// RefreshWhitelistInput is empty - no input needed
type RefreshWhitelistInput struct{}

// RefreshWhitelistOutput is the refresh outcome
type RefreshWhitelistOutput struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleRefreshWhitelist(ctx context.Context, req *mcp.CallToolRequest, input RefreshWhitelistInput) (*mcp.CallToolResult, RefreshWhitelistOutput, error) {
	resp, err := s.client.Refresh(ctx)
	if err != nil {
		return nil, RefreshWhitelistOutput{Success: false, Error: err.Error()}, nil
	}

	return nil, RefreshWhitelistOutput{
		Success: resp.Success,
		Count:   resp.Count,
		Kind:    resp.Kind,
		Error:   resp.Error,
	}, nil
}

// RecentInput specifies how many drops to retrieve
type RecentInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of drops to retrieve (default 20)"`
}

// RecentOutput contains recent drops
type RecentOutput struct {
	Drops []api.DropResponse `json:"drops"`
	Error string             `json:"error,omitempty"`
}

func (s *Server) handleRecent(ctx context.Context, req *mcp.CallToolRequest, input RecentInput) (*mcp.CallToolResult, RecentOutput, error) {
	drops, err := s.client.RecentDrops(ctx, input.Limit)
	if err != nil {
		return nil, RecentOutput{Drops: []api.DropResponse{}, Error: err.Error()}, nil
	}
	if drops == nil {
		drops = []api.DropResponse{}
	}
	return nil, RecentOutput{Drops: drops}, nil
}

// CheckItemInput names the item to look up
type CheckItemInput struct {
	Item string `json:"item" jsonschema:"The item name to check, for example Dragon claws"`
}

// CheckItemOutput reports whether the item is whitelisted
type CheckItemOutput struct {
	Item        string `json:"item"`
	Whitelisted bool   `json:"whitelisted"`
	Match       string `json:"match,omitempty"` // whitelist entry in its original case
	Error       string `json:"error,omitempty"`
}

func (s *Server) handleCheckItem(ctx context.Context, req *mcp.CallToolRequest, input CheckItemInput) (*mcp.CallToolResult, CheckItemOutput, error) {
	name := strings.TrimSpace(input.Item)
	if name == "" {
		return nil, CheckItemOutput{Error: "item is required"}, nil
	}

	wl, err := s.client.Whitelist(ctx)
	if err != nil {
		return nil, CheckItemOutput{Item: name, Error: err.Error()}, nil
	}

	out := CheckItemOutput{Item: name}
	key := strings.ToLower(name)
	for _, entry := range wl.Items {
		if strings.ToLower(entry) == key {
			out.Whitelisted = true
			out.Match = entry
			break
		}
	}
	return nil, out, nil
}
