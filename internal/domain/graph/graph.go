// Package graph projects a dataset onto the relationship graph shown to
// organizers. Nodes and edges carry domain fields only; layout and physics
// state belong to the renderer, keyed by node id.
package graph

import (
	"sort"

	"github.com/okian/matchboard/internal/domain/model"
)

// Edge weights by lifecycle stage.
const (
	weightHeld     = 3.0
	weightAccepted = 1.0
	weightOther    = 0.2
)

// Node is one attendee in the graph.
type Node struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
	Group  int        `json:"group"`
	Degree int        `json:"degree"`
}

// Edge links two attendees with a strength derived from the match stage.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"value"`
}

// Graph is the node/edge projection.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// EdgeWeight is the drawn strength of a match.
func EdgeWeight(s model.Status) float64 {
	switch s {
	case model.StatusHeld:
		return weightHeld
	case model.StatusAccepted:
		return weightAccepted
	case model.StatusSuggested, model.StatusScheduled, model.StatusOutcomeLogged:
		return weightOther
	default:
		return weightOther
	}
}

// Build projects the dataset. Only accepted and held matches are drawn;
// node degree counts every match regardless of stage.
func Build(ds model.Dataset) Graph {
	deg := degrees(ds.Matches)

	g := Graph{
		Nodes: make([]Node, 0, len(ds.Attendees)),
		Edges: []Edge{},
	}
	for _, a := range ds.Attendees {
		g.Nodes = append(g.Nodes, Node{
			ID:     a.ID,
			Name:   a.Name,
			Role:   a.Role,
			Group:  a.ClusterID,
			Degree: deg[a.ID],
		})
	}
	for _, m := range ds.Matches {
		w := EdgeWeight(m.Status)
		if w <= weightOther {
			continue
		}
		g.Edges = append(g.Edges, Edge{Source: m.SourceID, Target: m.TargetID, Weight: w})
	}
	return g
}

// TopConnectors returns up to n attendees ordered by degree desc, then id asc.
func TopConnectors(ds model.Dataset, n int) []model.Attendee {
	if n <= 0 {
		return []model.Attendee{}
	}
	deg := degrees(ds.Matches)

	ranked := append([]model.Attendee(nil), ds.Attendees...)
	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := deg[ranked[i].ID], deg[ranked[j].ID]
		if di != dj {
			return di > dj
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Names extracts display names.
func Names(attendees []model.Attendee) []string {
	out := make([]string, len(attendees))
	for i, a := range attendees {
		out[i] = a.Name
	}
	return out
}

func degrees(matches []model.Match) map[string]int {
	deg := make(map[string]int)
	for _, m := range matches {
		deg[m.SourceID]++
		deg[m.TargetID]++
	}
	return deg
}
