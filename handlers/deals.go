// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements create_deal, get_deal, change_stage, and get_timeline tools
package handlers

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

type DealHandlers struct {
	ws       *Workspace
	contacts deal.ContactDirectory
}

// NewDealHandlers builds the deal tools. contacts may be nil; reviews then keep the names given.
func NewDealHandlers(ws *Workspace, contacts deal.ContactDirectory) *DealHandlers {
	return &DealHandlers{ws: ws, contacts: contacts}
}

type CreateDealInput struct {
	Title       string `json:"title" jsonschema:"Deal title (required)"`
	Company     string `json:"company,omitempty" jsonschema:"Company the deal is with"`
	InitialNote string `json:"initial_note,omitempty" jsonschema:"Initial note for the deal"`
}

type DealOutput struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Company     string              `json:"company,omitempty"`
	Stage       models.Stage        `json:"stage"`
	CreatedBy   string              `json:"created_by,omitempty"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
	Products    []models.Product    `json:"products"`
	Attachments []models.Attachment `json:"attachments"`
	Meetings    []models.Meeting    `json:"meetings"`
	FollowUps   []FollowUpOutput    `json:"follow_ups"`
	Calls       []models.Call       `json:"calls"`
	Emails      []models.Email      `json:"emails"`
	Notes       []models.Note       `json:"notes"`
	Reminders   []models.Reminder   `json:"reminders"`
	TotalValue  int64               `json:"total_value"`
	EventCount  int                 `json:"event_count"`
}

func (h *DealHandlers) CreateDeal(_ context.Context, request *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	d, record, err := h.ws.Create(input.Title, input.Company)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to create deal: %w", err)
	}

	if input.InitialNote != "" {
		if _, err := d.AddNote(models.Note{NoteUUID: uuid.NewString(), Content: input.InitialNote}); err != nil {
			return nil, DealOutput{}, fmt.Errorf("failed to add initial note: %w", err)
		}
		if err := h.ws.Save(d); err != nil {
			return nil, DealOutput{}, fmt.Errorf("failed to save deal: %w", err)
		}
	}

	return nil, dealToOutput(record, d.Snapshot(), h.ws.now()), nil
}

type GetDealInput struct {
	DealID string `json:"deal_id" jsonschema:"Deal ID (required)"`
}

func (h *DealHandlers) GetDeal(_ context.Context, request *mcp.CallToolRequest, input GetDealInput) (*mcp.CallToolResult, DealOutput, error) {
	d, err := h.ws.Open(input.DealID)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to get deal: %w", err)
	}
	record, err := db.GetDeal(h.ws.DB(), d.ID())
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to get deal: %w", err)
	}
	return nil, dealToOutput(record, d.Snapshot(), h.ws.now()), nil
}

type ReviewInput struct {
	ContactPersonID string `json:"contact_person_id" jsonschema:"Contact person ID"`
	Rating          int    `json:"rating" jsonschema:"Rating from 0 to 5"`
	Comment         string `json:"comment,omitempty" jsonschema:"Review comment"`
}

type ChangeStageInput struct {
	DealID             string        `json:"deal_id" jsonschema:"Deal ID (required)"`
	Stage              string        `json:"stage" jsonschema:"Target stage: discussion, negotiation, closed_won, closed_lost"`
	Reason             string        `json:"reason" jsonschema:"Why the stage is changing (required)"`
	LossReason         string        `json:"loss_reason,omitempty" jsonschema:"Why the deal was lost (required for closed_lost)"`
	ProofAttachmentIDs []string      `json:"proof_attachment_ids,omitempty" jsonschema:"Deal attachments proving the win (1-3 proofs required for closed_won)"`
	ProofURLs          []string      `json:"proof_urls,omitempty" jsonschema:"External documents proving the win"`
	Reviews            []ReviewInput `json:"reviews,omitempty" jsonschema:"Contact person reviews, kept when closing"`
}

func (h *DealHandlers) ChangeStage(ctx context.Context, request *mcp.CallToolRequest, input ChangeStageInput) (*mcp.CallToolResult, ChangeOutput, error) {
	d, err := h.ws.Open(input.DealID)
	if err != nil {
		return nil, ChangeOutput{}, err
	}

	proof, err := resolveProof(d, input.ProofAttachmentIDs, input.ProofURLs)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	reviews, err := h.resolveReviews(ctx, input.Reviews)
	if err != nil {
		return nil, ChangeOutput{}, err
	}

	req := deal.StageChange{
		Target:         models.Stage(input.Stage),
		Reason:         input.Reason,
		LossReason:     input.LossReason,
		Proof:          proof,
		ContactReviews: reviews,
	}
	out, err := h.ws.change(d.ID(), "", func(d *deal.Deal) (deal.Outcome, error) {
		return d.ChangeStage(req)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to change stage: %w", err)
	}
	return nil, out, nil
}

func resolveProof(d *deal.Deal, ids, urls []string) ([]models.Attachment, error) {
	proof := make([]models.Attachment, 0, len(ids)+len(urls))
	for _, id := range ids {
		a, ok := d.Attachment(id)
		if !ok {
			return nil, fmt.Errorf("proof attachment not found: %s", id)
		}
		proof = append(proof, a)
	}
	for _, u := range urls {
		proof = append(proof, models.Attachment{
			AttachmentUUID: uuid.NewString(),
			FileName:       path.Base(u),
			URL:            u,
		})
	}
	return proof, nil
}

func (h *DealHandlers) resolveReviews(ctx context.Context, in []ReviewInput) ([]models.ContactReview, error) {
	reviews := make([]models.ContactReview, 0, len(in))
	for _, r := range in {
		review := models.ContactReview{
			ContactPersonUUID: r.ContactPersonID,
			Rating:            r.Rating,
			Comment:           r.Comment,
		}
		if h.contacts != nil && r.ContactPersonID != "" {
			person, err := h.contacts.GetContactPerson(ctx, r.ContactPersonID)
			if err != nil {
				return nil, fmt.Errorf("failed to look up contact person: %w", err)
			}
			if person != nil {
				review.ContactName = person.Name
			}
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

type GetTimelineInput struct {
	DealID string `json:"deal_id" jsonschema:"Deal ID (required)"`
	Type   string `json:"type,omitempty" jsonschema:"Only events of this type (product, attachment, meeting, follow_up, call, email, note, stage_change, reminder)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of events, newest first (default all)"`
}

type TimelineOutput struct {
	ID          int              `json:"id"`
	Type        models.EventType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Timestamp   string           `json:"timestamp"`
	User        string           `json:"user"`
	Color       models.Color     `json:"color"`
	Details     models.Details   `json:"details"`
}

type GetTimelineOutput struct {
	DealID string           `json:"deal_id"`
	Total  int              `json:"total"`
	Events []TimelineOutput `json:"events"`
}

func (h *DealHandlers) GetTimeline(_ context.Context, request *mcp.CallToolRequest, input GetTimelineInput) (*mcp.CallToolResult, GetTimelineOutput, error) {
	d, err := h.ws.Open(input.DealID)
	if err != nil {
		return nil, GetTimelineOutput{}, fmt.Errorf("failed to get deal: %w", err)
	}

	events := d.Timeline()
	out := GetTimelineOutput{DealID: d.ID(), Total: len(events), Events: []TimelineOutput{}}
	for _, ev := range events {
		if input.Type != "" && string(ev.Type) != input.Type {
			continue
		}
		out.Events = append(out.Events, timelineToOutput(ev))
		if input.Limit > 0 && len(out.Events) == input.Limit {
			break
		}
	}
	return nil, out, nil
}

func timelineToOutput(ev models.TimelineEvent) TimelineOutput {
	return TimelineOutput{
		ID:          ev.ID,
		Type:        ev.Type,
		Title:       ev.Title,
		Description: ev.Description,
		Timestamp:   ev.Timestamp.Format(time.RFC3339),
		User:        ev.User,
		Color:       ev.Color,
		Details:     ev.Details,
	}
}

func dealToOutput(record *db.DealRecord, snap deal.Snapshot, now time.Time) DealOutput {
	out := DealOutput{
		ID:          record.ID,
		Title:       record.Title,
		Company:     record.Company,
		Stage:       snap.Stage,
		CreatedBy:   record.CreatedBy,
		CreatedAt:   record.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   record.UpdatedAt.Format(time.RFC3339),
		Products:    nonNil(snap.Products),
		Attachments: nonNil(snap.Attachments),
		Meetings:    nonNil(snap.Meetings),
		FollowUps:   make([]FollowUpOutput, 0, len(snap.FollowUps)),
		Calls:       nonNil(snap.Calls),
		Emails:      nonNil(snap.Emails),
		Notes:       nonNil(snap.Notes),
		Reminders:   nonNil(snap.Reminders),
		EventCount:  len(snap.Timeline),
	}
	for _, p := range snap.Products {
		out.TotalValue += p.Total()
	}
	for _, f := range snap.FollowUps {
		out.FollowUps = append(out.FollowUps, followUpToOutput(f, now))
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func parseTime(field, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format (use ISO 8601/RFC3339): %w", field, err)
	}
	return t, nil
}

func parseOptionalTime(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseTime(field, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
