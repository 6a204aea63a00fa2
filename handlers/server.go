// ABOUTME: MCP server assembly
// ABOUTME: Registers every deal tool, resource, and prompt on one server
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
)

// NewServer builds the MCP server over ws. contacts may be nil to use the local directory.
func NewServer(ws *Workspace, contacts deal.ContactDirectory, version string) *mcp.Server {
	local := db.NewContactDirectory(ws.DB())
	if contacts == nil {
		contacts = local
	}

	dealHandlers := NewDealHandlers(ws, contacts)
	entityHandlers := NewEntityHandlers(ws, contacts)
	followUpHandlers := NewFollowUpHandlers(ws, contacts)
	attachmentHandlers := NewAttachmentHandlers(ws)
	contactHandlers := NewContactHandlers(contacts, local)
	queryHandlers := NewQueryHandlers(ws)
	vizHandlers := NewVizHandlers(ws)
	resourceHandlers := NewResourceHandlers(ws)
	promptHandlers := NewPromptHandlers(ws)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealdesk",
		Version: version,
	}, nil)

	// Deals
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a new deal in the discussion stage",
	}, dealHandlers.CreateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_deal",
		Description: "Get a deal with its stage and every entity it owns",
	}, dealHandlers.GetDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "change_stage",
		Description: "Move a deal to another stage. Closed won needs 1-3 proofs, closed lost needs a loss reason; closed deals cannot move",
	}, dealHandlers.ChangeStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_timeline",
		Description: "Get a deal's audit timeline, newest first",
	}, dealHandlers.GetTimeline)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_deals",
		Description: "Find deals by stage or text, or list follow-ups that are due",
	}, queryHandlers.QueryDeals)

	// Entities
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_product",
		Description: "Add a product line to a deal",
	}, entityHandlers.AddProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_product",
		Description: "Update a product line on a deal",
	}, entityHandlers.UpdateProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_product",
		Description: "Remove a product line from a deal with an optional reason",
	}, entityHandlers.RemoveProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_note",
		Description: "Add a note to a deal",
	}, entityHandlers.AddNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_note",
		Description: "Remove a note from a deal",
	}, entityHandlers.RemoveNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_call",
		Description: "Log a phone call on a deal",
	}, entityHandlers.LogCall)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_email",
		Description: "Log an email on a deal",
	}, entityHandlers.LogEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "schedule_meeting",
		Description: "Schedule a meeting on a deal",
	}, entityHandlers.ScheduleMeeting)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_reminder",
		Description: "Add a reminder to a deal",
	}, entityHandlers.AddReminder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_reminder",
		Description: "Mark a reminder done",
	}, entityHandlers.CompleteReminder)

	// Follow-ups
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_follow_up",
		Description: "Schedule a follow-up on a deal",
	}, followUpHandlers.AddFollowUp)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_follow_up",
		Description: "Complete a follow-up with its outcome",
	}, followUpHandlers.CompleteFollowUp)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel_follow_up",
		Description: "Cancel a follow-up with a reason",
	}, followUpHandlers.CancelFollowUp)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reschedule_follow_up",
		Description: "Move a follow-up to a future date, keeping its original date",
	}, followUpHandlers.RescheduleFollowUp)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_follow_up",
		Description: "Delete a follow-up regardless of its status",
	}, followUpHandlers.DeleteFollowUp)

	// Attachments and contacts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "upload_attachment",
		Description: "Upload a file and attach it to a deal",
	}, attachmentHandlers.UploadAttachment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_attachment",
		Description: "Remove an attachment from a deal",
	}, attachmentHandlers.RemoveAttachment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "Search contact persons that can join meetings, follow-ups, and reviews",
	}, contactHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a contact person to the local directory",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Render a deal's stage history or the whole pipeline as GraphViz DOT",
	}, vizHandlers.GenerateGraph)

	// Resources
	server.AddResource(&mcp.Resource{
		Name:        "deal_list",
		Title:       "Deals",
		Description: "Every stored deal with its current stage",
		MIMEType:    "application/json",
		URI:         resourceScheme + "deals",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		Name:        "pipeline",
		Title:       "Pipeline",
		Description: "Deal counts per stage",
		MIMEType:    "application/json",
		URI:         resourceScheme + "pipeline",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "deal",
		Title:       "Deal",
		Description: "A deal with everything it owns. URI format: dealdesk://deals/{deal_id}",
		MIMEType:    "application/json",
		URITemplate: resourceScheme + "deals/{deal_id}",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "deal_timeline",
		Title:       "Deal timeline",
		Description: "A deal's audit timeline. URI format: dealdesk://deals/{deal_id}/timeline",
		MIMEType:    "application/json",
		URITemplate: resourceScheme + "deals/{deal_id}/timeline",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "attachment_preview",
		Title:       "Attachment preview",
		Description: "Image preview of an uploaded attachment. URI format: dealdesk://previews/{deal_id}/{attachment_id}",
		URITemplate: resourceScheme + "previews/{deal_id}/{attachment_id}",
	}, resourceHandlers.ReadResource)

	// Prompts
	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}
