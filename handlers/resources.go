// ABOUTME: MCP resource handlers for exposing deal data
// ABOUTME: Provides read-only access to deals, timelines, the pipeline, and attachment previews via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/deal"
	"github.com/harperreed/dealdesk/models"
)

const resourceScheme = "dealdesk://"

type ResourceHandlers struct {
	ws *Workspace
}

func NewResourceHandlers(ws *Workspace) *ResourceHandlers {
	return &ResourceHandlers{ws: ws}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	path, ok := strings.CutPrefix(uri, resourceScheme)
	if !ok {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "deals":
		switch len(parts) {
		case 1:
			return h.readAllDeals(uri)
		case 2:
			return h.readDeal(uri, parts[1])
		}
		if parts[2] == "timeline" {
			return h.readTimeline(uri, parts[1])
		}
		return nil, fmt.Errorf("unknown deal resource: %s", parts[2])

	case "pipeline":
		return h.readPipeline(uri)

	case "previews":
		if len(parts) != 3 {
			return nil, fmt.Errorf("preview resource needs a deal id and an attachment id")
		}
		return h.readPreview(uri, parts[1], parts[2])

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readAllDeals(uri string) (*mcp.ReadResourceResult, error) {
	deals, err := db.FindDeals(h.ws.DB(), "", "", 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	return jsonResource(uri, deals)
}

func (h *ResourceHandlers) readDeal(uri, id string) (*mcp.ReadResourceResult, error) {
	d, err := h.ws.Open(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}
	record, err := db.GetDeal(h.ws.DB(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}
	return jsonResource(uri, dealToOutput(record, d.Snapshot(), h.ws.now()))
}

func (h *ResourceHandlers) readTimeline(uri, id string) (*mcp.ReadResourceResult, error) {
	d, err := h.ws.Open(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}
	return jsonResource(uri, nonNil(d.Timeline()))
}

func (h *ResourceHandlers) readPipeline(uri string) (*mcp.ReadResourceResult, error) {
	allDeals, err := db.FindDeals(h.ws.DB(), "", "", 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}

	pipeline := make(map[models.Stage]int, len(models.Stages))
	for _, s := range models.Stages {
		pipeline[s] = 0
	}
	for _, d := range allDeals {
		pipeline[d.Stage]++
	}
	return jsonResource(uri, pipeline)
}

func (h *ResourceHandlers) readPreview(uri, dealID, attachmentID string) (*mcp.ReadResourceResult, error) {
	data, contentType, ok := h.ws.Previews().Open(deal.PreviewURL(dealID, attachmentID))
	if !ok {
		return nil, fmt.Errorf("no preview for attachment %s", attachmentID)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: contentType,
			Blob:     data,
		},
	}}, nil
}
