// ABOUTME: Universal query tool handler
// ABOUTME: Lists deals by stage or text and open follow-ups that are due
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
)

type QueryHandlers struct {
	ws *Workspace
}

func NewQueryHandlers(ws *Workspace) *QueryHandlers {
	return &QueryHandlers{ws: ws}
}

type QueryDealsInput struct {
	EntityType string `json:"entity_type" jsonschema:"Type of entity to query (deal, due_follow_up)"`
	Query      string `json:"query,omitempty" jsonschema:"Search query (title or company, deals only)"`
	Stage      string `json:"stage,omitempty" jsonschema:"Filter deals by stage"`
	Before     string `json:"before,omitempty" jsonschema:"Follow-ups due at or before this ISO 8601 time (default now)"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryResult struct {
	DealID    string          `json:"deal_id"`
	Title     string          `json:"title"`
	Company   string          `json:"company,omitempty"`
	Stage     models.Stage    `json:"stage,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
	FollowUp  *FollowUpOutput `json:"follow_up,omitempty"`
}

type QueryDealsOutput struct {
	EntityType string        `json:"entity_type"`
	Results    []QueryResult `json:"results"`
	Count      int           `json:"count"`
}

func (h *QueryHandlers) QueryDeals(ctx context.Context, req *mcp.CallToolRequest, input QueryDealsInput) (*mcp.CallToolResult, QueryDealsOutput, error) {
	if input.Limit == 0 {
		input.Limit = 10
	}

	switch input.EntityType {
	case "", "deal":
		return h.queryDeals(input)
	case "due_follow_up":
		return h.queryDueFollowUps(ctx, input)
	default:
		return nil, QueryDealsOutput{}, fmt.Errorf("invalid entity_type: %s (valid: deal, due_follow_up)", input.EntityType)
	}
}

func (h *QueryHandlers) queryDeals(input QueryDealsInput) (*mcp.CallToolResult, QueryDealsOutput, error) {
	if input.Stage != "" {
		if _, err := models.ParseStage(input.Stage); err != nil {
			return nil, QueryDealsOutput{}, err
		}
	}

	deals, err := db.FindDeals(h.ws.DB(), input.Stage, input.Query, input.Limit)
	if err != nil {
		return nil, QueryDealsOutput{}, fmt.Errorf("failed to find deals: %w", err)
	}

	results := make([]QueryResult, len(deals))
	for i, d := range deals {
		results[i] = QueryResult{
			DealID:    d.ID,
			Title:     d.Title,
			Company:   d.Company,
			Stage:     d.Stage,
			UpdatedAt: d.UpdatedAt.Format(time.RFC3339),
		}
	}

	return nil, QueryDealsOutput{EntityType: "deal", Results: results, Count: len(results)}, nil
}

func (h *QueryHandlers) queryDueFollowUps(ctx context.Context, input QueryDealsInput) (*mcp.CallToolResult, QueryDealsOutput, error) {
	now := h.ws.now()
	before := now
	if input.Before != "" {
		t, err := parseTime("before", input.Before)
		if err != nil {
			return nil, QueryDealsOutput{}, err
		}
		before = t
	}

	due, err := db.NewFollowUpStore(h.ws.DB()).ListDueFollowUps(ctx, before, input.Limit)
	if err != nil {
		return nil, QueryDealsOutput{}, err
	}

	results := make([]QueryResult, len(due))
	for i, item := range due {
		f := followUpToOutput(item.FollowUp, now)
		results[i] = QueryResult{
			DealID:   item.DealID,
			Title:    item.DealTitle,
			FollowUp: &f,
		}
	}

	return nil, QueryDealsOutput{EntityType: "due_follow_up", Results: results, Count: len(results)}, nil
}
