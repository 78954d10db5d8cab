package session

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns up to limit session names close to ref, nearest first.
// Names further than a third of ref's length (minimum 2 edits) are dropped.
func (s *Store) Suggest(ctx context.Context, ref string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("list session names: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		name     string
		distance int
	}
	needle := strings.ToLower(strings.TrimSpace(ref))
	maxDistance := max(2, len([]rune(needle))/3)

	var candidates []candidate
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan session name: %w", err)
		}
		d := levenshtein.ComputeDistance(needle, strings.ToLower(name))
		if d <= maxDistance {
			candidates = append(candidates, candidate{name: name, distance: d})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session names: %w", err)
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if a.distance != b.distance {
			return a.distance - b.distance
		}
		return strings.Compare(a.name, b.name)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.name)
	}
	return names, nil
}
