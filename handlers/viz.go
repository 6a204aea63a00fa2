// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph tool for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/viz"
)

type VizHandlers struct {
	ws *Workspace
}

func NewVizHandlers(ws *Workspace) *VizHandlers {
	return &VizHandlers{ws: ws}
}

type GenerateGraphInput struct {
	Type   string `json:"type" jsonschema:"Graph type: stages or pipeline"`
	DealID string `json:"deal_id,omitempty" jsonschema:"Deal ID (required for stages)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(_ context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}

	var dot string
	var err error

	switch input.Type {
	case "stages":
		if input.DealID == "" {
			return nil, GenerateGraphOutput{}, fmt.Errorf("deal_id required for stages graph")
		}
		d, openErr := h.ws.Open(input.DealID)
		if openErr != nil {
			return nil, GenerateGraphOutput{}, fmt.Errorf("failed to get deal: %w", openErr)
		}
		dot, err = viz.StageGraph(d.Timeline())

	case "pipeline":
		dot, err = viz.NewGraphGenerator(h.ws.DB()).GeneratePipelineGraph()

	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: stages, pipeline)", input.Type)
	}

	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	nodeCount := strings.Count(dot, "[label=")
	edgeCount := strings.Count(dot, "->")

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}, nil
}
