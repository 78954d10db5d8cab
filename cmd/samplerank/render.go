package main

import (
	"fmt"
	"strconv"
	"strings"

	"samplerank/internal/library"
	"samplerank/internal/tournament"
)

func renderLeaderboard(items []tournament.Item) string {
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			library.DisplayTitle(it.Filename),
			strconv.Itoa(it.Score),
			strconv.Itoa(it.Comparisons),
			fmt.Sprintf("%.0f%%", it.WinRate()*100),
		})
	}
	return renderTable(
		[]string{"#", "Sample", "Score", "Compared", "Win rate"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
	)
}

func renderProgress(state tournament.State) string {
	p := state.Progress()
	if p.TotalComparisons == 0 {
		return fmt.Sprintf("Round %d · no comparisons scheduled · %d active", p.Round, p.ActiveItems)
	}
	return fmt.Sprintf("Round %d · comparison %d of %d (%.0f%%) · %d active",
		p.Round, p.CurrentComparison, p.TotalComparisons, p.Percent, p.ActiveItems)
}

func renderPairing(state tournament.State) string {
	a, b, ok := state.CurrentPairing()
	if !ok {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "  A: %s\n     %s\n", library.DisplayTitle(a.Filename), a.Path)
	fmt.Fprintf(&sb, "  B: %s\n     %s\n", library.DisplayTitle(b.Filename), b.Path)
	return sb.String()
}

// nextStep describes what the user can do with state.
func nextStep(state tournament.State) string {
	switch {
	case state.IsTournamentComplete():
		return "Tournament complete. See `samplerank results`."
	case state.IsRoundComplete():
		return fmt.Sprintf("Round %d complete. Run `samplerank advance` to continue with the top %d.",
			state.CurrentRound, tournament.KeepCount(len(state.Items), state.AdvancementThreshold))
	default:
		return "Vote with `samplerank vote a|b|skip` or run `samplerank play`."
	}
}
