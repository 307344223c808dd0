package nav

import (
	"fmt"

	"github.com/relgraph/relgraph/internal/model"
)

// Restriction is one semi-join step produced by filter propagation: keep
// only the rows of Table whose Column has a matching partner in the
// surviving rows of Other, joined on OtherColumn. Restrictions are a plan,
// not a result; the tabular engine materializes them.
type Restriction struct {
	Table       string
	Column      string
	Other       string
	OtherColumn string
}

// Propagate computes how a filter applied to the start table restricts the
// tables reachable from it across foreign-key edges.
//
// From the filtered table itself, edges are crossed in both directions: its
// children lose rows whose key no longer occurs, and its parents lose rows
// no longer referenced. Beyond the origin, a restriction travels onward only
// from parent to child; a table that merely lost unreferenced rows does not
// restrict its own parents further.
//
// Traversal is breadth-first. Each edge is traversed at most once per pass,
// which terminates cycles and self-references. A table reached through
// several paths accumulates one restriction per path; the effective row set
// is their intersection.
func Propagate(g model.Graph, start string) (map[string][]Restriction, error) {
	if !g.HasTable(start) {
		return nil, fmt.Errorf("table %q: %w", start, model.ErrUnknownTable)
	}

	edges := g.Edges()
	// Incident edge indexes per table, in declaration order.
	incident := make(map[string][]int)
	for i, e := range edges {
		incident[e.From] = append(incident[e.From], i)
		if e.To != e.From {
			incident[e.To] = append(incident[e.To], i)
		}
	}

	restrictions := make(map[string][]Restriction)
	visited := make(map[int]bool, len(edges))
	queue := []string{start}
	for len(queue) > 0 {
		from := queue[0]
		queue = queue[1:]
		for _, i := range incident[from] {
			if visited[i] {
				continue
			}
			e := edges[i]

			var r Restriction
			switch {
			case e.To == from:
				// Parent side: the child keeps rows whose key survives.
				r = Restriction{Table: e.From, Column: e.FromColumn, Other: e.To, OtherColumn: e.ToColumn}
			case from == start:
				// Child-to-parent, legal only out of the origin.
				r = Restriction{Table: e.To, Column: e.ToColumn, Other: e.From, OtherColumn: e.FromColumn}
			default:
				// Left unvisited: the parent may still restrict this table
				// if another path reaches it.
				continue
			}
			visited[i] = true
			restrictions[r.Table] = append(restrictions[r.Table], r)
			queue = append(queue, r.Table)
		}
	}
	return restrictions, nil
}
