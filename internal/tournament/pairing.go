package tournament

import (
	"cmp"
	"math/rand"
	"slices"
)

// Shuffler randomizes the presentation order of a round. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type processShuffler struct{}

func (processShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// GeneratePairings pairs active items by rank proximity and shuffles the result.
//
// Items are ordered by descending score (ties keep roster order) and each unused
// item is paired with the next unused item below it. With an odd number of
// active items the last one sits the round out. Eliminated items are never
// scheduled. A nil rng uses the process-wide source.
func GeneratePairings(items []Item, rng Shuffler) []Pairing {
	order := make([]int, 0, len(items))
	for i, it := range items {
		if !it.Eliminated() {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(items[b].Score, items[a].Score)
	})

	pairings := make([]Pairing, 0, len(order)/2)
	used := make([]bool, len(order))
	for i := range order {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(order); j++ {
			if used[j] {
				continue
			}
			used[i], used[j] = true, true
			pairings = append(pairings, Pairing{order[i], order[j]})
			break
		}
	}

	if rng == nil {
		rng = processShuffler{}
	}
	rng.Shuffle(len(pairings), func(i, j int) {
		pairings[i], pairings[j] = pairings[j], pairings[i]
	})
	return pairings
}
