package tournament

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keepOrder leaves pairings in generation order so tests can assert exact schedules.
type keepOrder struct{}

func (keepOrder) Shuffle(int, func(i, j int)) {}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func entries(names ...string) []Entry {
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		out = append(out, Entry{Path: "/samples/" + name + ".wav", Filename: name + ".wav"})
	}
	return out
}

func itemsWithScores(scores ...int) []Item {
	items := make([]Item, 0, len(scores))
	for i, score := range scores {
		items = append(items, Item{Path: fmt.Sprintf("/s/%d.wav", i), Filename: fmt.Sprintf("%d.wav", i), Score: score})
	}
	return items
}

func TestNew(t *testing.T) {
	t.Run("initial round", func(t *testing.T) {
		st, err := New(entries("a", "b", "c", "d"), "/samples", 0.5, keepOrder{})
		require.NoError(t, err)

		assert.Equal(t, 1, st.CurrentRound)
		assert.Equal(t, 0, st.CurrentPairingIndex)
		assert.Equal(t, "/samples", st.SourceDirectory)
		assert.Equal(t, []Pairing{{0, 1}, {2, 3}}, st.PairingsThisRound)
		for _, it := range st.Items {
			assert.Zero(t, it.Score)
			assert.Zero(t, it.Comparisons)
		}
	})

	t.Run("zero threshold selects default", func(t *testing.T) {
		st, err := New(entries("a", "b"), "", 0, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultThreshold, st.AdvancementThreshold)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := New(entries("a"), "", 0.5, nil)
		assert.ErrorIs(t, err, ErrTooFewItems)

		_, err = New(nil, "", 0.5, nil)
		assert.ErrorIs(t, err, ErrTooFewItems)

		_, err = New(append(entries("a", "b"), entries("a")...), "", 0.5, nil)
		assert.ErrorIs(t, err, ErrDuplicateItem)

		for _, threshold := range []float64{-0.1, 1.5} {
			_, err = New(entries("a", "b"), "", threshold, nil)
			assert.ErrorIs(t, err, ErrInvalidThreshold, "threshold %v", threshold)
		}
	})
}

func TestGeneratePairingsValidity(t *testing.T) {
	rng := seeded(7)
	for n := 2; n <= 25; n++ {
		items := itemsWithScores(make([]int, n)...)
		for i := range items {
			items[i].Score = rng.IntN(5)
		}

		pairings := GeneratePairings(items, rng)

		require.Len(t, pairings, n/2, "n=%d", n)
		seen := make(map[int]bool, n)
		for _, p := range pairings {
			assert.NotEqual(t, p[0], p[1])
			for _, idx := range p {
				assert.False(t, seen[idx], "index %d paired twice (n=%d)", idx, n)
				assert.True(t, idx >= 0 && idx < n)
				seen[idx] = true
			}
		}
		assert.Len(t, seen, n-n%2)
	}
}

func TestGeneratePairingsAdjacentByScore(t *testing.T) {
	items := itemsWithScores(0, 3, 1, 2)

	pairings := GeneratePairings(items, keepOrder{})

	assert.Equal(t, []Pairing{{1, 3}, {2, 0}}, pairings)
}

func TestGeneratePairingsSkipsEliminated(t *testing.T) {
	items := itemsWithScores(1, EliminatedScore, 0, EliminatedScore, 2)

	pairings := GeneratePairings(items, keepOrder{})

	assert.Equal(t, []Pairing{{4, 0}}, pairings)
	assert.Empty(t, GeneratePairings(itemsWithScores(EliminatedScore, EliminatedScore), nil))
}

func TestGeneratePairingsShuffleKeepsContent(t *testing.T) {
	items := itemsWithScores(make([]int, 10)...)
	want := GeneratePairings(items, keepOrder{})

	got := GeneratePairings(items, seeded(42))

	assert.ElementsMatch(t, want, got)
}

func TestRecordComparison(t *testing.T) {
	st, err := New(entries("a", "b", "c", "d"), "", 0.5, keepOrder{})
	require.NoError(t, err)

	next, err := st.RecordComparison(1)
	require.NoError(t, err)

	assert.Equal(t, 1, next.Items[1].Score)
	assert.Equal(t, 0, next.Items[0].Score)
	assert.Equal(t, 1, next.Items[0].Comparisons)
	assert.Equal(t, 1, next.Items[1].Comparisons)
	assert.Equal(t, 1, next.CurrentPairingIndex)

	// The input value is untouched.
	assert.Equal(t, 0, st.Items[1].Score)
	assert.Equal(t, 0, st.Items[0].Comparisons)
	assert.Equal(t, 0, st.CurrentPairingIndex)
}

func TestRecordComparisonRejectsOutsider(t *testing.T) {
	st, err := New(entries("a", "b", "c", "d"), "", 0.5, keepOrder{})
	require.NoError(t, err)

	got, err := st.RecordComparison(2)

	require.ErrorIs(t, err, ErrWinnerNotInPairing)
	assert.Equal(t, st, got)
}

func TestRecordComparisonPastEnd(t *testing.T) {
	st, err := New(entries("a", "b"), "", 0.5, keepOrder{})
	require.NoError(t, err)
	st, err = st.RecordComparison(0)
	require.NoError(t, err)

	_, err = st.RecordComparison(0)

	assert.ErrorIs(t, err, ErrNoCurrentPairing)
}

func TestEliminateBoth(t *testing.T) {
	t.Run("cancels remaining matches of both items", func(t *testing.T) {
		st := State{
			Items:                itemsWithScores(0, 0, 0, 0),
			CurrentRound:         1,
			PairingsThisRound:    []Pairing{{0, 1}, {0, 2}, {3, 1}, {2, 3}},
			AdvancementThreshold: 0.5,
		}

		next := st.EliminateBoth()

		assert.Equal(t, []Pairing{{0, 1}, {2, 3}}, next.PairingsThisRound)
		assert.Equal(t, 1, next.CurrentPairingIndex)
		assert.Equal(t, EliminatedScore, next.Items[0].Score)
		assert.Equal(t, EliminatedScore, next.Items[1].Score)
		assert.Equal(t, 1, next.Items[0].Comparisons)
		assert.Equal(t, 1, next.Items[1].Comparisons)
		assert.Len(t, st.PairingsThisRound, 4, "input schedule must not change")
	})

	t.Run("keeps resolved matches", func(t *testing.T) {
		st := State{
			Items:                itemsWithScores(1, 0, 0, 0),
			CurrentRound:         1,
			PairingsThisRound:    []Pairing{{0, 1}, {0, 2}, {2, 3}},
			CurrentPairingIndex:  1,
			AdvancementThreshold: 0.5,
		}

		next := st.EliminateBoth()

		assert.Equal(t, []Pairing{{0, 1}, {0, 2}}, next.PairingsThisRound)
		assert.Equal(t, 2, next.CurrentPairingIndex)
		assert.True(t, next.IsRoundComplete())
	})

	t.Run("no-op past the end", func(t *testing.T) {
		st := State{
			Items:                itemsWithScores(1, 0),
			CurrentRound:         1,
			PairingsThisRound:    []Pairing{{0, 1}},
			CurrentPairingIndex:  1,
			AdvancementThreshold: 0.5,
		}

		assert.Equal(t, st, st.EliminateBoth())
	})
}

func TestFourItemScenario(t *testing.T) {
	st, err := New(entries("A", "B", "C", "D"), "", 0.5, keepOrder{})
	require.NoError(t, err)
	require.Equal(t, []Pairing{{0, 1}, {2, 3}}, st.PairingsThisRound)

	st, err = st.RecordComparison(0)
	require.NoError(t, err)
	st, err = st.RecordComparison(2)
	require.NoError(t, err)

	require.True(t, st.IsRoundComplete())
	scores := map[string]int{}
	for _, it := range st.Items {
		scores[it.Filename] = it.Score
		assert.Equal(t, 1, it.Comparisons)
	}
	assert.Equal(t, map[string]int{"A.wav": 1, "B.wav": 0, "C.wav": 1, "D.wav": 0}, scores)

	st = st.AdvanceToNextRound(keepOrder{})

	require.Len(t, st.Items, 2)
	assert.Equal(t, "A.wav", st.Items[0].Filename)
	assert.Equal(t, "C.wav", st.Items[1].Filename)
	assert.Equal(t, 2, st.CurrentRound)
	assert.Equal(t, 0, st.CurrentPairingIndex)
	assert.Equal(t, []Pairing{{0, 1}}, st.PairingsThisRound)
}

func TestThreeItemSkipScenario(t *testing.T) {
	st, err := New(entries("A", "B", "C"), "", 0.5, keepOrder{})
	require.NoError(t, err)
	require.Equal(t, []Pairing{{0, 1}}, st.PairingsThisRound)

	st = st.EliminateBoth()

	assert.Equal(t, EliminatedScore, st.Items[0].Score)
	assert.Equal(t, EliminatedScore, st.Items[1].Score)
	results := st.SortedResults()
	require.Len(t, results, 1)
	assert.Equal(t, "C.wav", results[0].Filename)

	require.True(t, st.IsRoundComplete())
	require.False(t, st.IsTournamentComplete())
	st = st.AdvanceToNextRound(keepOrder{})
	assert.Empty(t, st.PairingsThisRound)
	assert.True(t, st.IsTournamentComplete())
}

func TestKeepCount(t *testing.T) {
	cases := []struct {
		n         int
		threshold float64
		want      int
	}{
		{n: 4, threshold: 0.5, want: 2},
		{n: 5, threshold: 0.5, want: 3},
		{n: 10, threshold: 0.3, want: 3},
		{n: 10, threshold: 0.1, want: 2},
		{n: 3, threshold: 1, want: 3},
		{n: 2, threshold: 0.1, want: 2},
		{n: 1, threshold: 0.5, want: 1},
		{n: 0, threshold: 0.5, want: 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, KeepCount(tc.n, tc.threshold), "n=%d t=%v", tc.n, tc.threshold)
	}
}

func TestAdvanceFloorAndTerminal(t *testing.T) {
	rng := seeded(3)
	st, err := New(entries("a", "b", "c", "d", "e", "f", "g", "h", "i"), "", 0.1, rng)
	require.NoError(t, err)

	for rounds := 0; !st.IsTournamentComplete() && rounds < 50; rounds++ {
		for !st.IsRoundComplete() {
			a, _, ok := st.CurrentPairingIndices()
			require.True(t, ok)
			st, err = st.RecordComparison(a)
			require.NoError(t, err)
		}
		before := len(st.Items)
		st = st.AdvanceToNextRound(rng)
		assert.GreaterOrEqual(t, len(st.Items), min(2, before))
		assert.LessOrEqual(t, len(st.Items), before)
		if before == 2 {
			// A pair that keeps meeting never shrinks below the floor.
			break
		}
	}

	terminal := State{Items: itemsWithScores(3), CurrentRound: 4, AdvancementThreshold: 0.5}
	require.True(t, terminal.IsTournamentComplete())
	for range 3 {
		terminal = terminal.AdvanceToNextRound(rng)
		assert.Len(t, terminal.Items, 1)
	}
}

func TestCursorMonotonicAndConservation(t *testing.T) {
	rng := seeded(11)
	st, err := New(entries("a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"), "", 0.5, rng)
	require.NoError(t, err)

	transitions := 0
	prev := st.CurrentPairingIndex
	for !st.IsRoundComplete() {
		if rng.IntN(4) == 0 {
			st = st.EliminateBoth()
		} else {
			_, b, ok := st.CurrentPairingIndices()
			require.True(t, ok)
			st, err = st.RecordComparison(b)
			require.NoError(t, err)
		}
		transitions++
		assert.GreaterOrEqual(t, st.CurrentPairingIndex, prev)
		assert.LessOrEqual(t, st.CurrentPairingIndex, len(st.PairingsThisRound))
		prev = st.CurrentPairingIndex
	}

	total := 0
	for _, it := range st.Items {
		total += it.Comparisons
	}
	assert.Equal(t, 2*transitions, total)
}

func TestProgress(t *testing.T) {
	st, err := New(entries("a", "b", "c", "d"), "", 0.5, keepOrder{})
	require.NoError(t, err)

	assert.Equal(t, Progress{CurrentComparison: 1, TotalComparisons: 2, Round: 1, ActiveItems: 4, Percent: 0}, st.Progress())

	st = st.EliminateBoth()
	assert.Equal(t, Progress{CurrentComparison: 2, TotalComparisons: 2, Round: 1, ActiveItems: 2, Percent: 50}, st.Progress())

	st, err = st.RecordComparison(3)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Progress().CurrentComparison)
	assert.Equal(t, float64(100), st.Progress().Percent)

	empty := State{Items: itemsWithScores(0), CurrentRound: 2, AdvancementThreshold: 0.5}
	assert.Equal(t, float64(100), empty.Progress().Percent)
	assert.Zero(t, empty.Progress().TotalComparisons)
}

func TestSortedResults(t *testing.T) {
	items := itemsWithScores(2, 2, EliminatedScore, 3, 0)
	items[0].Comparisons = 4
	items[1].Comparisons = 2
	items[3].Comparisons = 3
	st := State{Items: items, CurrentRound: 1, AdvancementThreshold: 0.5}

	results := st.SortedResults()

	require.Len(t, results, 4)
	got := make([]string, 0, len(results))
	for _, it := range results {
		assert.NotEqual(t, EliminatedScore, it.Score)
		got = append(got, it.Filename)
	}
	assert.Equal(t, []string{"3.wav", "1.wav", "0.wav", "4.wav"}, got)
}

func TestUpcomingPairings(t *testing.T) {
	st, err := New(entries("a", "b", "c", "d", "e", "f"), "", 0.5, keepOrder{})
	require.NoError(t, err)

	upcoming := st.UpcomingPairings(2)
	require.Len(t, upcoming, 2)
	assert.Equal(t, Pairing{0, 1}, upcoming[0].Pairing)
	assert.Equal(t, "a.wav", upcoming[0].A.Filename)
	assert.Equal(t, "d.wav", upcoming[1].B.Filename)

	st, err = st.RecordComparison(0)
	require.NoError(t, err)
	assert.Len(t, st.UpcomingPairings(10), 2)
	assert.Empty(t, st.UpcomingPairings(0))

	a, b, ok := st.CurrentPairing()
	require.True(t, ok)
	assert.Equal(t, "c.wav", a.Filename)
	assert.Equal(t, "d.wav", b.Filename)
}

func TestVerify(t *testing.T) {
	good, err := New(entries("a", "b", "c"), "", 0.5, nil)
	require.NoError(t, err)
	require.NoError(t, good.Verify())

	bad := good
	bad.CurrentPairingIndex = 5
	bad.PairingsThisRound = []Pairing{{0, 0}, {1, 9}}
	err = bad.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currentPairingIndex 5")
	assert.Contains(t, err.Error(), "with itself")
	assert.Contains(t, err.Error(), "item 9")
}

func TestStateJSONFieldNames(t *testing.T) {
	st, err := New(entries("a", "b"), "/samples", 0.5, keepOrder{})
	require.NoError(t, err)

	data, err := json.Marshal(st)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"items", "currentRound", "pairingsThisRound", "currentPairingIndex", "advancementThreshold", "sourceDirectory"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, []any{[]any{float64(0), float64(1)}}, raw["pairingsThisRound"])
}
