package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"samplerank/internal/logging"
	"samplerank/internal/pathguard"
	"samplerank/internal/session"
	"samplerank/internal/tournament"
)

var errNoSessions = errors.New("no sessions yet; start one with `samplerank new <folder>`")

// resolveSession finds the session named by ref, or the most recently
// updated one when ref is empty.
func resolveSession(ctx context.Context, store *session.Store, ref string) (*session.Session, error) {
	if ref == "" {
		sessions, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			return nil, errNoSessions
		}
		return sessions[0], nil
	}
	sess, err := store.Resolve(ctx, ref)
	if err == nil || !errors.Is(err, session.ErrNotFound) {
		return sess, err
	}
	suggestions, sugErr := store.Suggest(ctx, ref, 3)
	if sugErr != nil || len(suggestions) == 0 {
		return nil, err
	}
	return nil, fmt.Errorf("%w (did you mean %s?)", err, strings.Join(suggestions, ", "))
}

// sessionRun is the state passed to commands that operate on one session.
type sessionRun struct {
	store   *session.Store
	session *session.Session
	logger  *slog.Logger
}

// withSession opens the catalog and resolves the current session. When
// exclusive is set the session lock is held for the duration of fn and the
// session is re-read after locking.
func (c *commandContext) withSession(ctx context.Context, exclusive bool, fn func(*sessionRun) error) error {
	return c.withSessionRef(ctx, c.sessionRef(), exclusive, fn)
}

func (c *commandContext) withSessionRef(ctx context.Context, ref string, exclusive bool, fn func(*sessionRun) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := resolveSession(ctx, store, ref)
	if err != nil {
		return err
	}

	if exclusive {
		lock, err := session.Acquire(cfg.LockDir(), sess.ID)
		if err != nil {
			return err
		}
		defer func() {
			if relErr := lock.Release(); relErr != nil {
				logger.Debug("release session lock failed", logging.Error(relErr))
			}
		}()
		if sess, err = store.Get(ctx, sess.ID); err != nil {
			return err
		}
	}

	run := &sessionRun{
		store:   store,
		session: sess,
		logger:  logging.NewComponentLogger(logging.WithSession(logger, sess.ID), "cli"),
	}
	return fn(run)
}

// commit saves the session's new state and updates the state gauges.
func (c *commandContext) commit(ctx context.Context, run *sessionRun, next tournament.State) error {
	run.session.State = next
	if err := run.store.Save(ctx, run.session); err != nil {
		logging.ErrorWithContext(run.logger, "session save failed", "session_save_failed",
			logging.Int(logging.FieldRound, next.CurrentRound),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the catalog directory"),
		)
		return fmt.Errorf("save session: %w", err)
	}
	c.recorder().ObserveState(run.session.Name, next)
	return nil
}

// guardFor builds the path guard for a session's roster.
func guardFor(state tournament.State) *pathguard.AllowedPaths {
	guard := pathguard.New(state.SourceDirectory)
	paths := make([]string, 0, len(state.Items))
	for _, it := range state.Items {
		paths = append(paths, it.Path)
	}
	guard.AllowRoster(paths...)
	return guard
}

type decision int

const (
	decideA decision = iota
	decideB
	decideSkip
)

func parseDecision(raw string) (decision, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "a", "left":
		return decideA, nil
	case "b", "right":
		return decideB, nil
	case "s", "skip", "skip-both", "neither":
		return decideSkip, nil
	default:
		return 0, fmt.Errorf("unknown choice %q (use a, b, or skip)", raw)
	}
}

// applyDecision runs one engine transition for the current pairing.
func (c *commandContext) applyDecision(run *sessionRun, d decision) (tournament.State, error) {
	state := run.session.State
	a, b, ok := state.CurrentPairingIndices()
	if !ok {
		if state.IsTournamentComplete() {
			return state, errors.New("tournament is complete; see `samplerank results`")
		}
		return state, fmt.Errorf("round %d is complete; run `samplerank advance`", state.CurrentRound)
	}

	switch d {
	case decideSkip:
		next := state.EliminateBoth()
		c.recorder().RecordElimination(run.session.Name)
		run.logger.Info("pairing eliminated",
			logging.String(logging.FieldEventType, "eliminate_both"),
			logging.Int(logging.FieldRound, state.CurrentRound),
			logging.String("a", state.Items[a].Filename),
			logging.String("b", state.Items[b].Filename),
		)
		return next, nil
	default:
		winner, loser := a, b
		if d == decideB {
			winner, loser = b, a
		}
		next, err := state.RecordComparison(winner)
		if err != nil {
			return state, err
		}
		c.recorder().RecordComparison(run.session.Name)
		run.logger.Info("comparison recorded",
			logging.String(logging.FieldEventType, "comparison"),
			logging.Int(logging.FieldRound, state.CurrentRound),
			logging.String("winner", state.Items[winner].Filename),
			logging.String("loser", state.Items[loser].Filename),
		)
		return next, nil
	}
}

// advance closes a complete round and schedules the next.
func (c *commandContext) advance(run *sessionRun) (tournament.State, error) {
	state := run.session.State
	if state.IsTournamentComplete() {
		return state, errors.New("tournament is complete; see `samplerank results`")
	}
	if !state.IsRoundComplete() {
		p := state.Progress()
		return state, fmt.Errorf("round %d is not complete (%d of %d comparisons left)",
			state.CurrentRound, p.TotalComparisons-state.CurrentPairingIndex, p.TotalComparisons)
	}
	next := state.AdvanceToNextRound(nil)
	c.recorder().RecordAdvance(run.session.Name)
	run.logger.Info("round advanced",
		logging.String(logging.FieldEventType, "round_advanced"),
		logging.Int("from_items", len(state.Items)),
		logging.Int("kept_items", len(next.Items)),
		logging.Int("next_round", next.CurrentRound),
		logging.Int("pairings", len(next.PairingsThisRound)),
	)
	return next, nil
}
