// ABOUTME: Stage history graph for a single deal
// ABOUTME: Renders each stage change on the timeline as an edge between stage nodes
package viz

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/dealdesk/models"
)

var stageColors = map[models.Stage]string{
	models.StageDiscussion:  "lightblue",
	models.StageNegotiation: "lightyellow",
	models.StageClosedWon:   "lightgreen",
	models.StageClosedLost:  "lightpink",
}

// StageTransition is one stage change read from a timeline.
type StageTransition struct {
	EventID int
	From    models.Stage
	To      models.Stage
	Reason  string
}

// StageTransitions returns the stage changes in events, oldest first.
// events are expected newest first, as a deal returns them.
func StageTransitions(events []models.TimelineEvent) []StageTransition {
	var out []StageTransition
	for _, ev := range slices.Backward(events) {
		sc, ok := ev.Details.(models.StageChangeDetails)
		if !ok {
			continue
		}
		out = append(out, StageTransition{EventID: ev.ID, From: sc.PreviousStage, To: sc.NewStage, Reason: sc.Reason})
	}
	return out
}

// StageGraph renders the stage history of a deal timeline as DOT.
func StageGraph(events []models.TimelineEvent) (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetRankDir(cgraph.LRRank)
	graph.SetLabel("Stage history")

	nodes := make(map[models.Stage]*cgraph.Node)
	stageNode := func(s models.Stage) (*cgraph.Node, error) {
		if n, ok := nodes[s]; ok {
			return n, nil
		}
		n, err := graph.CreateNodeByName(string(s))
		if err != nil {
			return nil, fmt.Errorf("failed to create stage node: %w", err)
		}
		n.SetLabel(s.Label())
		n.SetShape("box")
		n.SetStyle("filled")
		n.SetFillColor(stageColors[s])
		nodes[s] = n
		return n, nil
	}

	// Every deal starts in discussion.
	if _, err := stageNode(models.StageDiscussion); err != nil {
		return "", err
	}

	for _, tr := range StageTransitions(events) {
		from, err := stageNode(tr.From)
		if err != nil {
			return "", err
		}
		to, err := stageNode(tr.To)
		if err != nil {
			return "", err
		}
		edge, err := graph.CreateEdgeByName(fmt.Sprintf("change_%d", tr.EventID), from, to)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetLabel(fmt.Sprintf("#%d %s", tr.EventID, tr.Reason))
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
