// ABOUTME: Attachment MCP tool handlers
// ABOUTME: Implements upload_attachment and remove_attachment tools
package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/deal"
)

type AttachmentHandlers struct {
	ws *Workspace
}

func NewAttachmentHandlers(ws *Workspace) *AttachmentHandlers {
	return &AttachmentHandlers{ws: ws}
}

type UploadAttachmentInput struct {
	DealID      string `json:"deal_id" jsonschema:"Deal ID (required)"`
	FileName    string `json:"file_name" jsonschema:"File name (required)"`
	ContentType string `json:"content_type,omitempty" jsonschema:"MIME type (guessed from the file name when empty)"`
	DataBase64  string `json:"data_base64" jsonschema:"File contents, base64 encoded (required)"`
}

type AttachmentOutput struct {
	ChangeOutput
	URL        string `json:"url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	Size       int64  `json:"size"`
}

func (h *AttachmentHandlers) UploadAttachment(ctx context.Context, request *mcp.CallToolRequest, input UploadAttachmentInput) (*mcp.CallToolResult, AttachmentOutput, error) {
	data, err := base64.StdEncoding.DecodeString(input.DataBase64)
	if err != nil {
		return nil, AttachmentOutput{}, fmt.Errorf("invalid data_base64: %w", err)
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(input.FileName))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	up := deal.AttachmentUpload{
		AttachmentUUID: uuid.NewString(),
		FileName:       input.FileName,
		ContentType:    contentType,
		Data:           data,
	}

	var out AttachmentOutput
	change, err := h.ws.change(input.DealID, up.AttachmentUUID, func(d *deal.Deal) (deal.Outcome, error) {
		a, outcome, err := d.AddAttachment(ctx, up)
		out.URL = a.URL
		out.PreviewURL = a.PreviewURL
		out.Size = a.Size
		return outcome, err
	})
	if err != nil {
		return nil, AttachmentOutput{}, fmt.Errorf("failed to upload attachment: %w", err)
	}
	out.ChangeOutput = change
	return nil, out, nil
}

type RemoveAttachmentInput struct {
	DealID       string `json:"deal_id" jsonschema:"Deal ID (required)"`
	AttachmentID string `json:"attachment_id" jsonschema:"Attachment ID (required)"`
}

func (h *AttachmentHandlers) RemoveAttachment(_ context.Context, request *mcp.CallToolRequest, input RemoveAttachmentInput) (*mcp.CallToolResult, ChangeOutput, error) {
	out, err := h.ws.change(input.DealID, input.AttachmentID, func(d *deal.Deal) (deal.Outcome, error) {
		return d.RemoveAttachment(input.AttachmentID), nil
	})
	if err != nil {
		return nil, ChangeOutput{}, fmt.Errorf("failed to remove attachment: %w", err)
	}
	return nil, out, nil
}
