// ABOUTME: MCP tool handlers for deal-owned entities
// ABOUTME: Products, notes, calls, emails, meetings, and reminders
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

type EntityHandlers struct {
	ws       *Workspace
	contacts deal.ContactDirectory
}

func NewEntityHandlers(ws *Workspace, contacts deal.ContactDirectory) *EntityHandlers {
	return &EntityHandlers{ws: ws, contacts: contacts}
}

type AddProductInput struct {
	DealID          string  `json:"deal_id" jsonschema:"Deal ID (required)"`
	Name            string  `json:"name" jsonschema:"Product name (required)"`
	Quantity        int     `json:"quantity,omitempty" jsonschema:"Quantity (default 1)"`
	UnitPrice       int64   `json:"unit_price,omitempty" jsonschema:"Unit price in cents"`
	Currency        string  `json:"currency,omitempty" jsonschema:"Currency code (default USD)"`
	DiscountPercent float64 `json:"discount_percent,omitempty" jsonschema:"Discount from 0 to 100"`
}

func (h *EntityHandlers) AddProduct(_ context.Context, request *mcp.CallToolRequest, input AddProductInput) (*mcp.CallToolResult, ChangeOutput, error) {
	p := models.Product{
		ProductUUID:     uuid.NewString(),
		ProductName:     input.Name,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		Currency:        input.Currency,
		DiscountPercent: input.DiscountPercent,
	}
	out, err := h.ws.change(input.DealID, p.ProductUUID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.AddProduct(p)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to add product: %w", err)
	}
	return nil, out, nil
}

type UpdateProductInput struct {
	DealID          string   `json:"deal_id" jsonschema:"Deal ID (required)"`
	ProductID       string   `json:"product_id" jsonschema:"Product ID (required)"`
	Name            *string  `json:"name,omitempty" jsonschema:"Updated product name"`
	Quantity        *int     `json:"quantity,omitempty" jsonschema:"Updated quantity"`
	UnitPrice       *int64   `json:"unit_price,omitempty" jsonschema:"Updated unit price in cents"`
	Currency        *string  `json:"currency,omitempty" jsonschema:"Updated currency code"`
	DiscountPercent *float64 `json:"discount_percent,omitempty" jsonschema:"Updated discount from 0 to 100"`
}

func (h *EntityHandlers) UpdateProduct(_ context.Context, request *mcp.CallToolRequest, input UpdateProductInput) (*mcp.CallToolResult, ChangeOutput, error) {
	patch := models.ProductPatch{
		ProductName:     input.Name,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		Currency:        input.Currency,
		DiscountPercent: input.DiscountPercent,
	}
	out, err := h.ws.change(input.DealID, input.ProductID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.UpdateProduct(input.ProductID, patch)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to update product: %w", err)
	}
	return nil, out, nil
}

type RemoveProductInput struct {
	DealID    string `json:"deal_id" jsonschema:"Deal ID (required)"`
	ProductID string `json:"product_id" jsonschema:"Product ID (required)"`
	Reason    string `json:"reason,omitempty" jsonschema:"Why the product was removed"`
}

func (h *EntityHandlers) RemoveProduct(_ context.Context, request *mcp.CallToolRequest, input RemoveProductInput) (*mcp.CallToolResult, ChangeOutput, error) {
	out, err := h.ws.change(input.DealID, input.ProductID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.RemoveProduct(input.ProductID, input.Reason), nil
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to remove product: %w", err)
	}
	return nil, out, nil
}

type AddNoteInput struct {
	DealID  string `json:"deal_id" jsonschema:"Deal ID (required)"`
	Content string `json:"content" jsonschema:"Note text (required)"`
}

func (h *EntityHandlers) AddNote(_ context.Context, request *mcp.CallToolRequest, input AddNoteInput) (*mcp.CallToolResult, ChangeOutput, error) {
	n := models.Note{NoteUUID: uuid.NewString(), Content: input.Content}
	out, err := h.ws.change(input.DealID, n.NoteUUID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.AddNote(n)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to add note: %w", err)
	}
	return nil, out, nil
}

type RemoveNoteInput struct {
	DealID string `json:"deal_id" jsonschema:"Deal ID (required)"`
	NoteID string `json:"note_id" jsonschema:"Note ID (required)"`
}

func (h *EntityHandlers) RemoveNote(_ context.Context, request *mcp.CallToolRequest, input RemoveNoteInput) (*mcp.CallToolResult, ChangeOutput, error) {
	out, err := h.ws.change(input.DealID, input.NoteID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.RemoveNote(input.NoteID), nil
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to remove note: %w", err)
	}
	return nil, out, nil
}

type LogCallInput struct {
	DealID          string `json:"deal_id" jsonschema:"Deal ID (required)"`
	Subject         string `json:"subject" jsonschema:"Call subject (required)"`
	Direction       string `json:"direction,omitempty" jsonschema:"inbound or outbound (default outbound)"`
	ContactPersonID string `json:"contact_person_id,omitempty" jsonschema:"Contact person on the call"`
	DurationMinutes int    `json:"duration_minutes,omitempty" jsonschema:"Call length in minutes"`
	Outcome         string `json:"outcome,omitempty" jsonschema:"What came out of the call"`
	CalledAt        string `json:"called_at,omitempty" jsonschema:"When the call happened in ISO 8601 format (default now)"`
}

func (h *EntityHandlers) LogCall(ctx context.Context, request *mcp.CallToolRequest, input LogCallInput) (*mcp.CallToolResult, ChangeOutput, error) {
	c := models.Call{
		CallUUID:  uuid.NewString(),
		Subject:   input.Subject,
		Direction: input.Direction,
		Duration:  time.Duration(input.DurationMinutes) * time.Minute,
		Outcome:   input.Outcome,
	}
	if input.CalledAt != "" {
		at, err := parseTime("called_at", input.CalledAt)
		if err != nil {
			return nil, ChangeOutput{}, err
		}
		c.CalledAt = at
	}
	if input.ContactPersonID != "" {
		people, err := h.lookupContacts(ctx, []string{input.ContactPersonID})
		if err != nil {
			return nil, ChangeOutput{}, err
		}
		c.ContactPerson = &people[0]
	}

	out, err := h.ws.change(input.DealID, c.CallUUID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.LogCall(c)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to log call: %w", err)
	}
	return nil, out, nil
}

type LogEmailInput struct {
	DealID    string   `json:"deal_id" jsonschema:"Deal ID (required)"`
	Subject   string   `json:"subject" jsonschema:"Email subject (required)"`
	Body      string   `json:"body,omitempty" jsonschema:"Email body"`
	From      string   `json:"from,omitempty" jsonschema:"Sender address"`
	To        []string `json:"to" jsonschema:"Recipient addresses (at least one)"`
	CC        []string `json:"cc,omitempty" jsonschema:"CC addresses"`
	Direction string   `json:"direction,omitempty" jsonschema:"inbound or outbound (default outbound)"`
	SentAt    string   `json:"sent_at,omitempty" jsonschema:"When the email was sent in ISO 8601 format (default now)"`
}

func (h *EntityHandlers) LogEmail(_ context.Context, request *mcp.CallToolRequest, input LogEmailInput) (*mcp.CallToolResult, ChangeOutput, error) {
	e := models.Email{
		EmailUUID: uuid.NewString(),
		Subject:   input.Subject,
		Body:      input.Body,
		From:      input.From,
		To:        input.To,
		CC:        input.CC,
		Direction: input.Direction,
	}
	if input.SentAt != "" {
		at, err := parseTime("sent_at", input.SentAt)
		if err != nil {
			return nil, ChangeOutput{}, err
		}
		e.SentAt = at
	}

	out, err := h.ws.change(input.DealID, e.EmailUUID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.LogEmail(e)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to log email: %w", err)
	}
	return nil, out, nil
}

type ScheduleMeetingInput struct {
	DealID           string   `json:"deal_id" jsonschema:"Deal ID (required)"`
	Title            string   `json:"title" jsonschema:"Meeting title (required)"`
	StartTime        string   `json:"start_time" jsonschema:"Start time in ISO 8601 format (required)"`
	EndTime          string   `json:"end_time,omitempty" jsonschema:"End time in ISO 8601 format"`
	Location         string   `json:"location,omitempty" jsonschema:"Where the meeting takes place"`
	Agenda           string   `json:"agenda,omitempty" jsonschema:"Meeting agenda"`
	ContactPersonIDs []string `json:"contact_person_ids,omitempty" jsonschema:"Contact persons attending"`
}

func (h *EntityHandlers) ScheduleMeeting(ctx context.Context, request *mcp.CallToolRequest, input ScheduleMeetingInput) (*mcp.CallToolResult, ChangeOutput, error) {
	m := models.Meeting{
		MeetingUUID: uuid.NewString(),
		Title:       input.Title,
		Location:    input.Location,
		Agenda:      input.Agenda,
	}
	if input.StartTime != "" {
		start, err := parseTime("start_time", input.StartTime)
		if err != nil {
			return nil, ChangeOutput{}, err
		}
		m.StartTime = start
	}
	if input.EndTime != "" {
		end, err := parseTime("end_time", input.EndTime)
		if err != nil {
			return nil, ChangeOutput{}, err
		}
		m.EndTime = end
	}
	people, err := h.lookupContacts(ctx, input.ContactPersonIDs)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	m.ContactPersons = people

	out, err := h.ws.change(input.DealID, m.MeetingUUID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.AddMeeting(m)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to schedule meeting: %w", err)
	}
	return nil, out, nil
}

type AddReminderInput struct {
	DealID      string `json:"deal_id" jsonschema:"Deal ID (required)"`
	Title       string `json:"title" jsonschema:"Reminder title (required)"`
	Description string `json:"description,omitempty" jsonschema:"Reminder details"`
	RemindAt    string `json:"remind_at" jsonschema:"When to remind in ISO 8601 format (required)"`
}

func (h *EntityHandlers) AddReminder(_ context.Context, request *mcp.CallToolRequest, input AddReminderInput) (*mcp.CallToolResult, ChangeOutput, error) {
	r := models.Reminder{
		ReminderUUID: uuid.NewString(),
		Title:        input.Title,
		Description:  input.Description,
	}
	if input.RemindAt != "" {
		at, err := parseTime("remind_at", input.RemindAt)
		if err != nil {
			return nil, ChangeOutput{}, err
		}
		r.RemindAt = at
	}

	out, err := h.ws.change(input.DealID, r.ReminderUUID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.AddReminder(r)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to add reminder: %w", err)
	}
	return nil, out, nil
}

type CompleteReminderInput struct {
	DealID     string `json:"deal_id" jsonschema:"Deal ID (required)"`
	ReminderID string `json:"reminder_id" jsonschema:"Reminder ID (required)"`
}

func (h *EntityHandlers) CompleteReminder(_ context.Context, request *mcp.CallToolRequest, input CompleteReminderInput) (*mcp.CallToolResult, ChangeOutput, error) {
	out, err := h.ws.change(input.DealID, input.ReminderID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.CompleteReminder(input.ReminderID)
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to complete reminder: %w", err)
	}
	return nil, out, nil
}

// lookupContacts resolves contact person ids through the directory.
func (h *EntityHandlers) lookupContacts(ctx context.Context, ids []string) ([]models.ContactPerson, error) {
	return resolveContacts(ctx, h.contacts, ids)
}

func resolveContacts(ctx context.Context, dir deal.ContactDirectory, ids []string) ([]models.ContactPerson, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if dir == nil {
		return nil, fmt.Errorf("no contact directory configured")
	}

	people := make([]models.ContactPerson, 0, len(ids))
	for _, id := range ids {
		p, err := dir.GetContactPerson(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to look up contact person: %w", err)
		}
		if p == nil {
			return nil, fmt.Errorf("contact person not found: %s", id)
		}
		people = append(people, *p)
	}
	return people, nil
}
