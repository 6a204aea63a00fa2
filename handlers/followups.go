// ABOUTME: Follow-up MCP tool handlers
// ABOUTME: Schedules follow-ups and drives them through complete, cancel, reschedule, and delete
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

type FollowUpHandlers struct {
	ws       *Workspace
	contacts deal.ContactDirectory
}

func NewFollowUpHandlers(ws *Workspace, contacts deal.ContactDirectory) *FollowUpHandlers {
	return &FollowUpHandlers{ws: ws, contacts: contacts}
}

type FollowUpOutput struct {
	ID                    string                 `json:"id"`
	Subject               string                 `json:"subject"`
	Description           string                 `json:"description,omitempty"`
	ScheduledDate         string                 `json:"scheduled_date"`
	Status                models.FollowUpStatus  `json:"status"`
	CanPerformActions     bool                   `json:"can_perform_actions"`
	ContactPersons        []models.ContactPerson `json:"contact_persons,omitempty"`
	Outcome               string                 `json:"outcome,omitempty"`
	CompletedDate         string                 `json:"completed_date,omitempty"`
	CancellationReason    string                 `json:"cancellation_reason,omitempty"`
	NextFollowUpNotes     string                 `json:"next_follow_up_notes,omitempty"`
	OriginalScheduledDate string                 `json:"original_scheduled_date,omitempty"`
	RescheduleCount       int                    `json:"reschedule_count,omitempty"`
}

func followUpToOutput(f models.FollowUp, now time.Time) FollowUpOutput {
	out := FollowUpOutput{
		ID:                 f.FollowUpUUID,
		Subject:            f.Subject,
		Description:        f.Description,
		ScheduledDate:      f.ScheduledDate.Format(time.RFC3339),
		Status:             f.EffectiveStatus(now),
		CanPerformActions:  f.CanPerformActions(),
		ContactPersons:     f.ContactPersons,
		Outcome:            f.Outcome,
		CancellationReason: f.CancellationReason,
		NextFollowUpNotes:  f.NextFollowUpNotes,
		RescheduleCount:    f.RescheduleCount,
	}
	if f.CompletedDate != nil {
		out.CompletedDate = f.CompletedDate.Format(time.RFC3339)
	}
	if f.OriginalScheduledDate != nil {
		out.OriginalScheduledDate = f.OriginalScheduledDate.Format(time.RFC3339)
	}
	return out
}

type AddFollowUpInput struct {
	DealID           string   `json:"deal_id" jsonschema:"Deal ID (required)"`
	Subject          string   `json:"subject" jsonschema:"Follow-up subject (required)"`
	ScheduledDate    string   `json:"scheduled_date" jsonschema:"When to follow up in ISO 8601 format (required)"`
	Description      string   `json:"description,omitempty" jsonschema:"What to follow up on"`
	ContactPersonIDs []string `json:"contact_person_ids,omitempty" jsonschema:"Contact persons to follow up with"`
}

func (h *FollowUpHandlers) AddFollowUp(ctx context.Context, request *mcp.CallToolRequest, input AddFollowUpInput) (*mcp.CallToolResult, ChangeOutput, error) {
	f := models.FollowUp{
		FollowUpUUID: uuid.NewString(),
		Subject:      input.Subject,
		Description:  input.Description,
	}
	if input.ScheduledDate != "" {
		at, err := parseTime("scheduled_date", input.ScheduledDate)
		if err != nil {
			return nil, ChangeOutput{}, err
		}
		f.ScheduledDate = at
	}
	people, err := resolveContacts(ctx, h.contacts, input.ContactPersonIDs)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	f.ContactPersons = people

	var confirmedID string
	out, err := h.ws.change(input.DealID, f.FollowUpUUID, func(d *deal.Deal) (deal.Outcome, error) {
		confirmed, outcome, err := d.AddFollowUp(ctx, f)
		confirmedID = confirmed.FollowUpUUID
		return outcome, err
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to add follow-up: %w", err)
	}
	if confirmedID != "" {
		out.EntityID = confirmedID
	}
	return nil, out, nil
}

// action runs a lifecycle step on a follow-up that still accepts actions.
func (h *FollowUpHandlers) action(dealID, followUpID, verb string, fn func(*deal.Deal) (deal.Outcome, error)) (ChangeOutput, error) {
	if followUpID == "" {
		return ChangeOutput{}, fmt.Errorf("follow_up_id is required")
	}
	out, err := h.ws.change(dealID, followUpID, func(d *deal.Deal) (deal.Outcome, error) {
		if f, ok := d.FollowUp(followUpID); ok && !f.CanPerformActions() {
			return deal.OutcomeRejected, fmt.Errorf("follow-up is %s and cannot be changed", f.Status)
		}
		return fn(d)
	})
	if err != nil {
		return ChangeOutput{}, fmt.Errorf("failed to %s follow-up: %w", verb, err)
	}
	return out, nil
}

type CompleteFollowUpInput struct {
	DealID     string `json:"deal_id" jsonschema:"Deal ID (required)"`
	FollowUpID string `json:"follow_up_id" jsonschema:"Follow-up ID (required)"`
	Outcome    string `json:"outcome" jsonschema:"What came out of the follow-up (required)"`
}

func (h *FollowUpHandlers) CompleteFollowUp(ctx context.Context, request *mcp.CallToolRequest, input CompleteFollowUpInput) (*mcp.CallToolResult, ChangeOutput, error) {
	out, err := h.action(input.DealID, input.FollowUpID, "complete", func(d *deal.Deal) (deal.Outcome, error) {
		return d.CompleteFollowUp(ctx, input.FollowUpID, input.Outcome)
	})
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	return nil, out, nil
}

type CancelFollowUpInput struct {
	DealID     string `json:"deal_id" jsonschema:"Deal ID (required)"`
	FollowUpID string `json:"follow_up_id" jsonschema:"Follow-up ID (required)"`
	Reason     string `json:"reason" jsonschema:"Why the follow-up is cancelled (required)"`
}

func (h *FollowUpHandlers) CancelFollowUp(ctx context.Context, request *mcp.CallToolRequest, input CancelFollowUpInput) (*mcp.CallToolResult, ChangeOutput, error) {
	out, err := h.action(input.DealID, input.FollowUpID, "cancel", func(d *deal.Deal) (deal.Outcome, error) {
		return d.CancelFollowUp(ctx, input.FollowUpID, input.Reason)
	})
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	return nil, out, nil
}

type RescheduleFollowUpInput struct {
	DealID     string `json:"deal_id" jsonschema:"Deal ID (required)"`
	FollowUpID string `json:"follow_up_id" jsonschema:"Follow-up ID (required)"`
	NewDate    string `json:"new_date" jsonschema:"New date in ISO 8601 format, must be in the future (required)"`
	Notes      string `json:"notes" jsonschema:"Notes for the next follow-up (required)"`
}

func (h *FollowUpHandlers) RescheduleFollowUp(ctx context.Context, request *mcp.CallToolRequest, input RescheduleFollowUpInput) (*mcp.CallToolResult, ChangeOutput, error) {
	var newDate time.Time
	if input.NewDate != "" {
		at, err := parseTime("new_date", input.NewDate)
		if err != nil {
			return nil, ChangeOutput{}, err
		}
		newDate = at
	}
	out, err := h.action(input.DealID, input.FollowUpID, "reschedule", func(d *deal.Deal) (deal.Outcome, error) {
		return d.RescheduleFollowUp(ctx, input.FollowUpID, newDate, input.Notes)
	})
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	return nil, out, nil
}

type DeleteFollowUpInput struct {
	DealID     string `json:"deal_id" jsonschema:"Deal ID (required)"`
	FollowUpID string `json:"follow_up_id" jsonschema:"Follow-up ID (required)"`
}

func (h *FollowUpHandlers) DeleteFollowUp(ctx context.Context, request *mcp.CallToolRequest, input DeleteFollowUpInput) (*mcp.CallToolResult, ChangeOutput, error) {
	out, err := h.ws.change(input.DealID, input.FollowUpID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.DeleteFollowUp(ctx, input.FollowUpID)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to delete follow-up: %w", err)
	}
	return nil, out, nil
}
