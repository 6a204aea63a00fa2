// ABOUTME: MCP prompt handlers for reusable deal workflow templates
// ABOUTME: Provides deal review and follow-up planning prompts built from live deal state
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/db"
)

type PromptHandlers struct {
	ws *Workspace
}

func NewPromptHandlers(ws *Workspace) *PromptHandlers {
	return &PromptHandlers{ws: ws}
}

// Prompts lists the templates GetPrompt can serve.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "deal-analysis",
			Description: "Review a deal's state and history and suggest next steps",
			Arguments: []*mcp.PromptArgument{
				{Name: "deal_id", Description: "Deal to analyze", Required: true},
			},
		},
		{
			Name:        "follow-up-suggestions",
			Description: "Plan the follow-ups that are due across all deals",
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "deal-analysis":
		return h.getDealAnalysisPrompt(arguments)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) getDealAnalysisPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	dealID, ok := args["deal_id"]
	if !ok || dealID == "" {
		return nil, fmt.Errorf("deal_id is required")
	}

	d, err := h.ws.Open(dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}
	record, err := db.GetDeal(h.ws.DB(), dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}
	snap := d.Snapshot()
	now := h.ws.now()

	var promptText strings.Builder
	promptText.WriteString("Please analyze this deal:\n\n")
	promptText.WriteString(fmt.Sprintf("Title: %s\n", record.Title))
	if record.Company != "" {
		promptText.WriteString(fmt.Sprintf("Company: %s\n", record.Company))
	}
	promptText.WriteString(fmt.Sprintf("Stage: %s\n", snap.Stage.Label()))

	if len(snap.Products) > 0 {
		var total int64
		promptText.WriteString("\nProducts:\n")
		for _, p := range snap.Products {
			total += p.Total()
			promptText.WriteString(fmt.Sprintf("- %s x%d (%.2f %s)\n", p.ProductName, p.Quantity, float64(p.Total())/100, p.Currency))
		}
		promptText.WriteString(fmt.Sprintf("Total value: %.2f\n", float64(total)/100))
	}

	if len(snap.FollowUps) > 0 {
		promptText.WriteString("\nFollow-ups:\n")
		for _, f := range snap.FollowUps {
			promptText.WriteString(fmt.Sprintf("- %s on %s [%s]\n", f.Subject, f.ScheduledDate.Format("2006-01-02"), f.EffectiveStatus(now)))
		}
	}

	if len(snap.Timeline) > 0 {
		promptText.WriteString("\nRecent activity:\n")
		for i, ev := range snap.Timeline {
			if i == 10 {
				break
			}
			promptText.WriteString(fmt.Sprintf("- %s %s", ev.Timestamp.Format("2006-01-02"), ev.Title))
			if ev.Description != "" {
				promptText.WriteString(": " + ev.Description)
			}
			promptText.WriteString("\n")
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. An assessment of where this deal stands")
	promptText.WriteString("\n2. Risks that could stall or lose the deal")
	promptText.WriteString("\n3. Concrete next steps, including follow-ups to schedule")

	return userPrompt(fmt.Sprintf("Analysis for deal: %s", record.Title), promptText.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	now := h.ws.now()
	due, err := db.NewFollowUpStore(h.ws.DB()).ListDueFollowUps(ctx, now, 50)
	if err != nil {
		return nil, err
	}

	var promptText strings.Builder
	if len(due) == 0 {
		promptText.WriteString("No follow-ups are currently due.\n")
	} else {
		promptText.WriteString("These follow-ups are due:\n\n")
		for _, item := range due {
			days := int(now.Sub(item.FollowUp.ScheduledDate).Hours() / 24)
			promptText.WriteString(fmt.Sprintf("- %s: %s (due %d days ago)\n", item.DealTitle, item.FollowUp.Subject, days))
			if item.FollowUp.Description != "" {
				promptText.WriteString(fmt.Sprintf("  %s\n", item.FollowUp.Description))
			}
		}
	}

	promptText.WriteString("\nPlease suggest, for each follow-up, whether to complete, reschedule, or cancel it")
	promptText.WriteString(" and draft a short message for the ones worth pursuing.")

	return userPrompt("Follow-up planning", promptText.String()), nil
}
