// ABOUTME: Pipeline graph generation across all stored deals
// ABOUTME: Groups deals under the stage they currently sit in
package viz

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
)

type GraphGenerator struct {
	db *sql.DB
}

func NewGraphGenerator(database *sql.DB) *GraphGenerator {
	return &GraphGenerator{db: database}
}

// GeneratePipelineGraph creates a graph with one node per stage and every deal linked to its stage.
func (g *GraphGenerator) GeneratePipelineGraph() (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel("Deal pipeline")
	graph.SetRankDir(cgraph.LRRank)

	deals, err := db.FindDeals(g.db, "", "", 10000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deals: %w", err)
	}

	stageNodes := make(map[models.Stage]*cgraph.Node)
	for _, stage := range models.Stages {
		node, err := graph.CreateNodeByName("stage_" + string(stage))
		if err != nil {
			return "", fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(stage.Label())
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor(stageColors[stage])
		stageNodes[stage] = node
	}

	flows := [][2]models.Stage{
		{models.StageDiscussion, models.StageNegotiation},
		{models.StageNegotiation, models.StageClosedWon},
		{models.StageNegotiation, models.StageClosedLost},
	}
	for _, f := range flows {
		edge, err := graph.CreateEdgeByName("flow_"+string(f[1]), stageNodes[f[0]], stageNodes[f[1]])
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetStyle("dashed")
	}

	for _, d := range deals {
		node, err := graph.CreateNodeByName("deal_" + d.ID)
		if err != nil {
			return "", fmt.Errorf("failed to create deal node: %w", err)
		}
		label := d.Title
		if d.Company != "" {
			label = fmt.Sprintf("%s\n(%s)", d.Title, d.Company)
		}
		node.SetLabel(label)
		node.SetShape("ellipse")

		if stageNode, ok := stageNodes[d.Stage]; ok {
			edge, err := graph.CreateEdgeByName("in_"+d.ID, stageNode, node)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dotted")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
