// ABOUTME: Visualization CLI commands
// ABOUTME: Stage history and pipeline graphs as DOT, plus the terminal dashboard
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/viz"
)

// StageGraphCommand renders one deal's stage history.
func StageGraphCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("deal graph", flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID required")
	}

	if _, err := db.GetDeal(env.DB, fs.Arg(0)); err != nil {
		return err
	}
	events, err := db.GetTimeline(env.DB, fs.Arg(0))
	if err != nil {
		return err
	}

	dot, err := viz.StageGraph(events)
	if err != nil {
		return err
	}
	return writeGraph(env, *output, dot)
}

// PipelineGraphCommand renders every deal grouped by stage.
func PipelineGraphCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dot, err := viz.NewGraphGenerator(env.DB).GeneratePipelineGraph()
	if err != nil {
		return err
	}
	return writeGraph(env, *output, dot)
}

func writeGraph(env *Env, output, dot string) error {
	if output != "" {
		if err := os.WriteFile(output, []byte(dot), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Fprintf(env.out(), "✓ Graph written to %s\n", output)
		return nil
	}

	fmt.Fprintln(env.out(), dot)
	return nil
}

// DashboardCommand prints pipeline totals, due follow-ups and stale deals.
func DashboardCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	stats, err := viz.GenerateDashboardStats(context.Background(), env.DB, env.now())
	if err != nil {
		return err
	}

	fmt.Fprint(env.out(), viz.RenderDashboard(stats))
	return nil
}
