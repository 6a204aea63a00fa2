// ABOUTME: Contact person MCP tool handlers
// ABOUTME: Implements list_contacts and add_contact over the contact directory
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

type ContactHandlers struct {
	dir   deal.ContactDirectory
	local *db.ContactDirectory
}

// NewContactHandlers serves lookups from dir and writes new contacts to local.
func NewContactHandlers(dir deal.ContactDirectory, local *db.ContactDirectory) *ContactHandlers {
	if dir == nil {
		dir = local
	}
	return &ContactHandlers{dir: dir, local: local}
}

type ListContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search query (searches name, email, and role)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type ListContactsOutput struct {
	Contacts []models.ContactPerson `json:"contacts"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, request *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ListContactsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	contacts, err := h.dir.ListContactPersons(ctx, input.Query, limit)
	if err != nil {
		return nil, ListContactsOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}
	return nil, ListContactsOutput{Contacts: nonNil(contacts)}, nil
}

type AddContactInput struct {
	Name  string `json:"name" jsonschema:"Contact name (required)"`
	Email string `json:"email,omitempty" jsonschema:"Contact email address"`
	Phone string `json:"phone,omitempty" jsonschema:"Contact phone number"`
	Role  string `json:"role,omitempty" jsonschema:"Job title or role"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, models.ContactPerson, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, models.ContactPerson{}, fmt.Errorf("name is required")
	}
	if h.local == nil {
		return nil, models.ContactPerson{}, fmt.Errorf("no local contact directory configured")
	}

	p := models.ContactPerson{
		ContactPersonUUID: uuid.NewString(),
		Name:              strings.TrimSpace(input.Name),
		Email:             input.Email,
		Phone:             input.Phone,
		Role:              input.Role,
	}
	if err := h.local.UpsertContactPerson(ctx, &p, "manual"); err != nil {
		return nil, models.ContactPerson{}, fmt.Errorf("failed to add contact: %w", err)
	}
	return nil, p, nil
}
