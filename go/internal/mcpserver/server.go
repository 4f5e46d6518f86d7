// Package mcpserver exposes read-only views of the live auction as MCP tools
// so assistants can follow a draft. Commands stay on the HTTP API.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/mcdev12/auction/go/internal/models"
	"github.com/mcdev12/auction/go/internal/settings"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName         = "auction-draft-mcp"
	serverVersion      = "0.1.0"
	defaultSearchLimit = 25
)

// Reader is the read side of the draft the tools query
type Reader interface {
	RoundSummary() draft.RoundSummary
	SearchPlayers(prefix string) []string
	Results() []draft.TeamResult
	Captains() []draft.CaptainView
	Captain(externalID string) (draft.CaptainView, error)
	MaxBid(externalID string) (int, error)
	Settings() models.AuctionSettings
}

// SearchPlayersArgs is the input of search_players
type SearchPlayersArgs struct {
	Prefix string `json:"prefix" jsonschema:"Case-insensitive name prefix; empty lists every available player"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum names to return (default 25)"`
}

// CaptainArgs is the input of captain
type CaptainArgs struct {
	UserID string `json:"user_id,omitempty" jsonschema:"External user id of the captain"`
	Name   string `json:"name,omitempty" jsonschema:"Captain display name, used when user_id is empty"`
}

// NoArgs is the input of tools without parameters
type NoArgs struct{}

// SettingsResult is the output of settings
type SettingsResult struct {
	Settings  models.AuctionSettings `json:"settings"`
	Formatted string                 `json:"formatted"`
}

// CaptainResult is the output of captain
type CaptainResult struct {
	draft.CaptainView
	MaxBid *int `json:"max_bid,omitempty"`
}

// NewServer registers the read tools over r
func NewServer(r Reader) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "round_summary",
		Description: "Current round: phase, nominator, nominated player, leader, current bid and seconds left",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(r.RoundSummary())
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_players",
		Description: "Unpicked player names starting with a prefix, in import order",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SearchPlayersArgs) (*mcp.CallToolResult, any, error) {
		limit := args.Limit
		if limit <= 0 {
			limit = defaultSearchLimit
		}
		names := r.SearchPlayers(args.Prefix)
		if len(names) > limit {
			names = names[:limit]
		}
		if names == nil {
			names = []string{}
		}
		return toolJSON(names)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "teams",
		Description: "Every captain's roster in acquisition order",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
		return toolJSON(r.Results())
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "settings",
		Description: "Auction settings: min bid, starting balance, team size, round time, bid extension, restricted limit",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, any, error) {
		cfg := r.Settings()
		return toolJSON(SettingsResult{Settings: cfg, Formatted: settings.Format(cfg)})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "captain",
		Description: "One captain's balance, roster and restricted count. The max bid is only included when looked up by user_id.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CaptainArgs) (*mcp.CallToolResult, any, error) {
		result, err := lookupCaptain(r, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(result)
	})

	return server
}

// Handler serves the tools over streamable HTTP
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func lookupCaptain(r Reader, args CaptainArgs) (CaptainResult, error) {
	if id := strings.TrimSpace(args.UserID); id != "" {
		view, err := r.Captain(id)
		if err != nil {
			return CaptainResult{}, err
		}
		maxBid, err := r.MaxBid(id)
		if err != nil {
			return CaptainResult{}, err
		}
		return CaptainResult{CaptainView: view, MaxBid: &maxBid}, nil
	}

	name := strings.TrimSpace(args.Name)
	if name == "" {
		return CaptainResult{}, errors.New("user_id or name is required")
	}
	for _, c := range r.Captains() {
		if strings.EqualFold(c.Name, name) {
			return CaptainResult{CaptainView: c}, nil
		}
	}
	return CaptainResult{}, fmt.Errorf("%s: %w", name, draft.ErrUnknownCaptain)
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
