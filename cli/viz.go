// ABOUTME: Visualization CLI commands
// ABOUTME: Renders the circles graph as DOT and the terminal circles dashboard
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/harperreed/dofo/people"
	"github.com/harperreed/dofo/viz"
)

// VizCirclesCommand renders circles and members as a DOT graph.
func VizCirclesCommand(env *Env, args []string) error {
	fs := env.flags("viz circles")
	person := fs.String("person", "", "Only draw the circles of this person (ID or name)")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	generator := viz.NewGraphGenerator(env.Set.People, env.Set.Catalog)

	var (
		dot   string
		stats viz.Stats
		err   error
	)
	if *person != "" {
		p, rerr := people.Resolve(ctx, env.Set.People, *person)
		if rerr != nil {
			return rerr
		}
		dot, stats, err = generator.GeneratePersonGraph(ctx, p.ID)
	} else {
		dot, stats, err = generator.GenerateCirclesGraph(ctx)
	}
	if err != nil {
		return err
	}

	env.logger().Debug("rendered graph", zap.Int("nodes", stats.Nodes), zap.Int("edges", stats.Edges))
	if *output != "" {
		if err := os.WriteFile(*output, []byte(dot), 0644); err != nil {
			return fmt.Errorf("failed to write graph: %w", err)
		}
		_, _ = fmt.Fprintf(env.out(), "✓ Wrote %s (%d nodes, %d edges)\n", *output, stats.Nodes, stats.Edges)
		return nil
	}

	_, _ = fmt.Fprintln(env.out(), strings.TrimRight(dot, "\n"))
	return nil
}

// VizDashboardCommand prints circle health, stats, and who needs attention.
func VizDashboardCommand(env *Env, args []string) error {
	fs := env.flags("viz dashboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	list, err := env.Set.People.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list people: %w", err)
	}
	circles, err := env.Set.Catalog.ListCircles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list circles: %w", err)
	}

	d := viz.BuildDashboard(list, circles, env.now(), env.policy())
	_, _ = fmt.Fprint(env.out(), viz.RenderDashboard(d))
	return nil
}
