package tournament

import (
	"fmt"
	"math"
	"strings"
)

const (
	// EliminatedScore marks an item removed from contention by a skip-both decision.
	// It is persisted verbatim so existing session files keep loading.
	EliminatedScore = -1000

	// DefaultThreshold keeps the top half of the roster each round.
	DefaultThreshold = 0.5

	minKeep = 2
)

// Entry is a raw roster entry supplied by the library scanner.
type Entry struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// Item is one competing sample.
type Item struct {
	Path        string `json:"path" validate:"required"`
	Filename    string `json:"filename"`
	Score       int    `json:"score"`
	Comparisons int    `json:"comparisons" validate:"gte=0"`
}

// Eliminated reports whether the item was knocked out by a skip-both decision.
func (it Item) Eliminated() bool {
	return it.Score <= EliminatedScore
}

// WinRate returns score per comparison, or 0 before the first comparison.
func (it Item) WinRate() float64 {
	if it.Comparisons == 0 {
		return 0
	}
	return float64(it.Score) / float64(it.Comparisons)
}

// Pairing holds the indices of two items scheduled to meet this round.
type Pairing [2]int

// Involves reports whether idx is one of the pairing's sides.
func (p Pairing) Involves(idx int) bool {
	return p[0] == idx || p[1] == idx
}

// State is the tournament aggregate. Field names match the persisted session format.
type State struct {
	Items                []Item    `json:"items" validate:"required,min=1,dive"`
	CurrentRound         int       `json:"currentRound" validate:"gte=1"`
	PairingsThisRound    []Pairing `json:"pairingsThisRound"`
	CurrentPairingIndex  int       `json:"currentPairingIndex" validate:"gte=0"`
	AdvancementThreshold float64   `json:"advancementThreshold" validate:"gt=0,lte=1"`
	SourceDirectory      string    `json:"sourceDirectory"`
}

// New builds the first round of a tournament from scanned entries.
// A zero threshold selects DefaultThreshold.
func New(entries []Entry, sourceDir string, threshold float64, rng Shuffler) (State, error) {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if !validThreshold(threshold) {
		return State{}, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	if len(entries) < 2 {
		return State{}, fmt.Errorf("%w: got %d", ErrTooFewItems, len(entries))
	}

	seen := make(map[string]struct{}, len(entries))
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry.Path]; dup {
			return State{}, fmt.Errorf("%w: %s", ErrDuplicateItem, entry.Path)
		}
		seen[entry.Path] = struct{}{}
		items = append(items, Item{Path: entry.Path, Filename: entry.Filename})
	}

	return State{
		Items:                items,
		CurrentRound:         1,
		PairingsThisRound:    GeneratePairings(items, rng),
		CurrentPairingIndex:  0,
		AdvancementThreshold: threshold,
		SourceDirectory:      sourceDir,
	}, nil
}

func validThreshold(t float64) bool {
	return !math.IsNaN(t) && t > 0 && t <= 1
}

// KeepCount returns how many items survive a round of n items at threshold t.
func KeepCount(n int, t float64) int {
	if n <= 0 {
		return 0
	}
	// Trim float noise so 10*0.3 keeps 3, not 4.
	keep := int(math.Ceil(float64(n)*t - 1e-9))
	keep = max(minKeep, keep)
	return min(keep, n)
}

func (s State) clone() State {
	next := s
	next.Items = append([]Item(nil), s.Items...)
	next.PairingsThisRound = append([]Pairing(nil), s.PairingsThisRound...)
	return next
}

// Verify checks the structural invariants a loaded State must satisfy.
func (s State) Verify() error {
	var problems []string
	if len(s.Items) == 0 {
		problems = append(problems, "items must not be empty")
	}
	if s.CurrentPairingIndex < 0 || s.CurrentPairingIndex > len(s.PairingsThisRound) {
		problems = append(problems, fmt.Sprintf("currentPairingIndex %d outside [0,%d]", s.CurrentPairingIndex, len(s.PairingsThisRound)))
	}
	for i, p := range s.PairingsThisRound {
		if p[0] == p[1] {
			problems = append(problems, fmt.Sprintf("pairing %d pairs item %d with itself", i, p[0]))
		}
		for _, idx := range p {
			if idx < 0 || idx >= len(s.Items) {
				problems = append(problems, fmt.Sprintf("pairing %d references item %d outside [0,%d)", i, idx, len(s.Items)))
			}
		}
	}
	seen := make(map[string]struct{}, len(s.Items))
	for _, it := range s.Items {
		if _, dup := seen[it.Path]; dup {
			problems = append(problems, "duplicate item path "+it.Path)
		}
		seen[it.Path] = struct{}{}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid tournament state: %s", strings.Join(problems, "; "))
}
