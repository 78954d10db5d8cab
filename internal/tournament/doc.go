// Package tournament implements the Swiss-style pairwise ranking engine.
//
// A State is a plain value: every transition (RecordComparison, EliminateBoth,
// AdvanceToNextRound) returns a new State and leaves its receiver untouched, so
// callers can keep the previous value for undo or replay. The engine performs
// no I/O and holds no locks; the driving shell owns persistence and must
// serialize writers itself.
//
// Pairings are recomputed from scratch every round: items are ordered by
// descending score, neighbours are paired greedily, and only the presentation
// order is shuffled through the injected Shuffler.
package tournament
