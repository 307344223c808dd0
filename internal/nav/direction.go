// Package nav navigates the key graph: it resolves join direction between
// two tables from the declared foreign keys, and computes how a filter on one
// table restricts every table reachable from it.
package nav

import (
	"errors"
	"fmt"

	"github.com/relgraph/relgraph/internal/model"
)

var (
	ErrNoRelationship        = errors.New("no foreign key relationship between tables")
	ErrAmbiguousRelationship = errors.New("ambiguous foreign key relationship")
)

// Direction describes a resolved parent/child relationship between two
// tables: the referencing (child) side joins to the referenced (parent)
// side's primary key.
type Direction struct {
	Referencing       string
	ReferencingColumn string
	Referenced        string
}

// ResolveDirection determines which of tables a and b references the other.
// Exactly one direction must exist. When foreign keys run both ways, the
// caller must name the referencing side in referencingHint; an empty hint
// then fails with ErrAmbiguousRelationship.
func ResolveDirection(g model.Graph, a, b, referencingHint string) (Direction, error) {
	if !g.HasTable(a) {
		return Direction{}, fmt.Errorf("table %q: %w", a, model.ErrUnknownTable)
	}
	if !g.HasTable(b) {
		return Direction{}, fmt.Errorf("table %q: %w", b, model.ErrUnknownTable)
	}

	var candidates []Direction
	for _, e := range g.Edges() {
		if (e.From == a && e.To == b) || (e.From == b && e.To == a) {
			candidates = append(candidates, Direction{
				Referencing:       e.From,
				ReferencingColumn: e.FromColumn,
				Referenced:        e.To,
			})
		}
	}

	if len(candidates) == 0 {
		return Direction{}, fmt.Errorf("%s and %s: %w", a, b, ErrNoRelationship)
	}

	// Edges agreeing on the referencing side resolve to one direction; the
	// first declared edge wins. Edges running both ways need the caller to
	// name the referencing side.
	sameSide := true
	for _, c := range candidates[1:] {
		if c.Referencing != candidates[0].Referencing {
			sameSide = false
			break
		}
	}
	if sameSide {
		return candidates[0], nil
	}
	if referencingHint == "" {
		return Direction{}, fmt.Errorf("%s and %s: %w", a, b, ErrAmbiguousRelationship)
	}
	for _, c := range candidates {
		if c.Referencing == referencingHint {
			return c, nil
		}
	}
	return Direction{}, fmt.Errorf("%s and %s (hint %q): %w", a, b, referencingHint, ErrAmbiguousRelationship)
}
