package tournament

import (
	"cmp"
	"fmt"
	"slices"
)

// RecordComparison credits winner with a win over the other side of the current
// pairing and moves the cursor forward.
func (s State) RecordComparison(winner int) (State, error) {
	a, b, ok := s.CurrentPairingIndices()
	if !ok {
		return s, ErrNoCurrentPairing
	}
	var loser int
	switch winner {
	case a:
		loser = b
	case b:
		loser = a
	default:
		return s, fmt.Errorf("%w: index %d not in (%d, %d)", ErrWinnerNotInPairing, winner, a, b)
	}

	next := s.clone()
	next.Items[winner].Score++
	next.Items[winner].Comparisons++
	next.Items[loser].Comparisons++
	next.CurrentPairingIndex++
	return next, nil
}

// EliminateBoth knocks out both sides of the current pairing without awarding a
// win. Their remaining matches this round are cancelled; matches already played
// stay in the schedule. With no current pairing the state is returned unchanged.
func (s State) EliminateBoth() State {
	a, b, ok := s.CurrentPairingIndices()
	if !ok {
		return s
	}

	next := s.clone()
	for _, idx := range []int{a, b} {
		next.Items[idx].Score = EliminatedScore
		next.Items[idx].Comparisons++
	}

	resolved := s.CurrentPairingIndex + 1
	kept := next.PairingsThisRound[:resolved]
	for _, p := range s.PairingsThisRound[resolved:] {
		if p.Involves(a) || p.Involves(b) {
			continue
		}
		kept = append(kept, p)
	}
	next.PairingsThisRound = kept
	next.CurrentPairingIndex++
	return next
}

// AdvanceToNextRound keeps the top KeepCount items by score and schedules a
// fresh round for them. Callers gate this on IsRoundComplete.
func (s State) AdvanceToNextRound(rng Shuffler) State {
	items := append([]Item(nil), s.Items...)
	slices.SortStableFunc(items, func(a, b Item) int {
		return cmp.Compare(b.Score, a.Score)
	})
	items = items[:KeepCount(len(items), s.AdvancementThreshold)]

	next := s
	next.Items = items
	next.CurrentRound = s.CurrentRound + 1
	next.CurrentPairingIndex = 0
	next.PairingsThisRound = GeneratePairings(items, rng)
	return next
}
