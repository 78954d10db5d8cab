package tournament

import (
	"cmp"
	"slices"
)

// Progress summarizes the current round for display.
type Progress struct {
	CurrentComparison int     `json:"currentComparison"`
	TotalComparisons  int     `json:"totalComparisons"`
	Round             int     `json:"round"`
	ActiveItems       int     `json:"activeItems"`
	Percent           float64 `json:"percent"`
}

// Match is a scheduled pairing resolved to its items.
type Match struct {
	Pairing Pairing `json:"pairing"`
	A       Item    `json:"a"`
	B       Item    `json:"b"`
}

// IsRoundComplete reports whether every pairing this round has been resolved.
func (s State) IsRoundComplete() bool {
	return s.CurrentPairingIndex >= len(s.PairingsThisRound)
}

// IsTournamentComplete reports whether no further comparisons can be scheduled.
func (s State) IsTournamentComplete() bool {
	if len(s.Items) <= 1 {
		return true
	}
	return s.IsRoundComplete() && len(s.PairingsThisRound) == 0
}

// CurrentPairingIndices returns the item indices of the pairing at the cursor.
func (s State) CurrentPairingIndices() (int, int, bool) {
	if s.CurrentPairingIndex < 0 || s.CurrentPairingIndex >= len(s.PairingsThisRound) {
		return 0, 0, false
	}
	p := s.PairingsThisRound[s.CurrentPairingIndex]
	return p[0], p[1], true
}

// CurrentPairing returns the two items at the cursor.
func (s State) CurrentPairing() (Item, Item, bool) {
	a, b, ok := s.CurrentPairingIndices()
	if !ok {
		return Item{}, Item{}, false
	}
	return s.Items[a], s.Items[b], true
}

// ActiveCount returns the number of items not eliminated.
func (s State) ActiveCount() int {
	n := 0
	for _, it := range s.Items {
		if !it.Eliminated() {
			n++
		}
	}
	return n
}

// Progress reports the cursor position within the current round.
func (s State) Progress() Progress {
	total := len(s.PairingsThisRound)
	p := Progress{
		CurrentComparison: min(s.CurrentPairingIndex+1, total),
		TotalComparisons:  total,
		Round:             s.CurrentRound,
		ActiveItems:       s.ActiveCount(),
		Percent:           100,
	}
	if total > 0 {
		p.Percent = float64(s.CurrentPairingIndex) / float64(total) * 100
	}
	return p
}

// SortedResults returns the leaderboard: active items by score, then win rate.
func (s State) SortedResults() []Item {
	results := make([]Item, 0, len(s.Items))
	for _, it := range s.Items {
		if !it.Eliminated() {
			results = append(results, it)
		}
	}
	slices.SortStableFunc(results, func(a, b Item) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.WinRate(), a.WinRate())
	})
	return results
}

// UpcomingPairings returns up to count matches starting at the cursor.
func (s State) UpcomingPairings(count int) []Match {
	if count <= 0 || s.IsRoundComplete() {
		return nil
	}
	start := max(s.CurrentPairingIndex, 0)
	end := min(start+count, len(s.PairingsThisRound))
	matches := make([]Match, 0, end-start)
	for _, p := range s.PairingsThisRound[start:end] {
		matches = append(matches, Match{Pairing: p, A: s.Items[p[0]], B: s.Items[p[1]]})
	}
	return matches
}
