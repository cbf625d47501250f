// ABOUTME: GraphViz rendering of circles and the people in them
// ABOUTME: Members are coloured by relationship health band

package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/urgency"
)

// PeopleSource lists people.
type PeopleSource interface {
	List(ctx context.Context) ([]models.Person, error)
}

// CircleSource lists circles.
type CircleSource interface {
	ListCircles(ctx context.Context) ([]models.Circle, error)
}

// GraphGenerator renders DOT graphs from the stores.
type GraphGenerator struct {
	people  PeopleSource
	circles CircleSource
}

func NewGraphGenerator(people PeopleSource, circles CircleSource) *GraphGenerator {
	return &GraphGenerator{people: people, circles: circles}
}

// BandColors maps a health band to a node fill colour.
var BandColors = map[string]string{
	urgency.BandGood: "palegreen",
	urgency.BandFair: "khaki",
	urgency.BandPoor: "lightpink",
}

// Stats counts what a rendered graph contains.
type Stats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// GenerateCirclesGraph draws every circle with an edge to each member.
// People outside every circle are drawn unconnected.
func (g *GraphGenerator) GenerateCirclesGraph(ctx context.Context) (string, Stats, error) {
	people, err := g.people.List(ctx)
	if err != nil {
		return "", Stats{}, fmt.Errorf("failed to fetch people: %w", err)
	}
	circles, err := g.circles.ListCircles(ctx)
	if err != nil {
		return "", Stats{}, fmt.Errorf("failed to fetch circles: %w", err)
	}
	return render(ctx, "Circles", circles, people)
}

// GeneratePersonGraph draws the circles one person belongs to and the other
// members of those circles.
func (g *GraphGenerator) GeneratePersonGraph(ctx context.Context, personID string) (string, Stats, error) {
	people, err := g.people.List(ctx)
	if err != nil {
		return "", Stats{}, fmt.Errorf("failed to fetch people: %w", err)
	}
	circles, err := g.circles.ListCircles(ctx)
	if err != nil {
		return "", Stats{}, fmt.Errorf("failed to fetch circles: %w", err)
	}

	var center *models.Person
	for i := range people {
		if people[i].ID == personID {
			center = &people[i]
		}
	}
	if center == nil {
		return "", Stats{}, fmt.Errorf("person %s: %w", personID, models.ErrNotFound)
	}

	var mine []models.Circle
	keep := map[string]bool{center.ID: true}
	for _, c := range circles {
		for _, m := range c.Members {
			if m == center.ID {
				mine = append(mine, c)
				for _, id := range c.Members {
					keep[id] = true
				}
				break
			}
		}
	}

	var members []models.Person
	for _, p := range people {
		if keep[p.ID] {
			members = append(members, p)
		}
	}

	return render(ctx, center.Name, mine, members)
}

func render(ctx context.Context, label string, circles []models.Circle, people []models.Person) (string, Stats, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", Stats{}, fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", Stats{}, fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel(label)
	graph.SetRankDir(cgraph.LRRank)

	var stats Stats
	personNodes := make(map[string]*cgraph.Node, len(people))
	for _, p := range people {
		node, err := graph.CreateNodeByName("person_" + p.ID)
		if err != nil {
			return "", Stats{}, fmt.Errorf("failed to create person node: %w", err)
		}
		node.SetLabel(p.Name)
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor(BandColors[urgency.HealthBand(p.HealthScore)])
		personNodes[p.ID] = node
		stats.Nodes++
	}

	for _, c := range circles {
		node, err := graph.CreateNodeByName("circle_" + c.ID)
		if err != nil {
			return "", Stats{}, fmt.Errorf("failed to create circle node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s (%d)", c.Name, c.HealthScore))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		stats.Nodes++

		for _, id := range c.Members {
			member, ok := personNodes[id]
			if !ok {
				continue
			}
			if _, err := graph.CreateEdgeByName(c.ID+"_"+id, node, member); err != nil {
				return "", Stats{}, fmt.Errorf("failed to create edge: %w", err)
			}
			stats.Edges++
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", Stats{}, fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), stats, nil
}
