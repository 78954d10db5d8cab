package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"samplerank/internal/desktop"
	"samplerank/internal/logging"
	"samplerank/internal/prefetch"
	"samplerank/internal/tournament"
)

const playHelp = "[a] A wins  [b] B wins  [s] skip both  [1/2] listen  [q] quit"

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var resultsLimit int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Compare pairings interactively",
		Long: "Walk through the current round one pairing at a time. Each decision is saved " +
			"immediately, so quitting and resuming later loses nothing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withSession(cmd.Context(), true, func(run *sessionRun) error {
				guard := guardFor(run.session.State)
				loop := &playLoop{
					ctx:       ctx,
					run:       run,
					in:        bufio.NewScanner(cmd.InOrStdin()),
					out:       cmd.OutOrStdout(),
					paint:     newPainter(cmd.OutOrStdout()),
					launcher:  newLauncher(guard),
					sampler:   logging.NewProgressSampler(25),
					lookahead: cfg.Tournament.PrefetchCount,
					limit:     resultsLimit,
				}
				if cfg.Prefetch.Enabled && cfg.Tournament.PrefetchCount > 0 {
					loop.preloader = prefetch.New(guard, prefetch.Options{
						Bytes:   cfg.Prefetch.Bytes,
						Workers: cfg.Prefetch.Workers,
						Logger:  run.logger,
					})
				}
				return loop.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().IntVar(&resultsLimit, "results", 10, "Leaderboard rows to show when the tournament completes")
	return cmd
}

type playLoop struct {
	ctx       *commandContext
	run       *sessionRun
	in        *bufio.Scanner
	out       io.Writer
	paint     painter
	launcher  *desktop.Launcher
	preloader *prefetch.Preloader
	sampler   *logging.ProgressSampler
	lookahead int
	limit     int
}

func (l *playLoop) Run(ctx context.Context) error {
	fmt.Fprintf(l.out, "Session %s\n", l.run.session.Name)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		state := l.run.session.State

		if state.IsTournamentComplete() {
			l.finish(state)
			return nil
		}

		if state.IsRoundComplete() {
			keep := tournament.KeepCount(len(state.Items), state.AdvancementThreshold)
			answer, ok := l.prompt(fmt.Sprintf("Round %d complete. Advance with the top %d? [Y/n] ", state.CurrentRound, keep))
			if !ok || answer == "n" || answer == "no" || answer == "q" {
				fmt.Fprintln(l.out, "Stopped. Run `samplerank advance` or `samplerank play` to continue.")
				return nil
			}
			next, err := l.ctx.advance(l.run)
			if err != nil {
				return err
			}
			if err := l.ctx.commit(ctx, l.run, next); err != nil {
				return err
			}
			if l.preloader != nil {
				l.preloader.Forget()
			}
			continue
		}

		l.warm(ctx, state)
		fmt.Fprintln(l.out)
		fmt.Fprintln(l.out, l.highlight(renderProgress(state)))
		fmt.Fprint(l.out, renderPairing(state))

		answer, ok := l.prompt(playHelp + " > ")
		if !ok || answer == "q" || answer == "quit" {
			fmt.Fprintln(l.out, "Progress saved.")
			return nil
		}

		switch answer {
		case "1", "2":
			l.listen(ctx, state, answer == "1")
			continue
		case "", "?", "h", "help":
			fmt.Fprintln(l.out, playHelp)
			continue
		}

		d, err := parseDecision(answer)
		if err != nil {
			fmt.Fprintln(l.out, err)
			continue
		}
		next, err := l.ctx.applyDecision(l.run, d)
		if err != nil {
			return err
		}
		if err := l.ctx.commit(ctx, l.run, next); err != nil {
			return err
		}
		if p := next.Progress(); l.sampler.ShouldLog(p.Round, p.Percent) {
			l.run.logger.Info("round progress",
				logging.String(logging.FieldEventType, "round_progress"),
				logging.Int(logging.FieldRound, p.Round),
				logging.Int("resolved", next.CurrentPairingIndex),
				logging.Int("total", p.TotalComparisons),
				logging.Int("active_items", p.ActiveItems),
			)
		}
	}
}

func (l *playLoop) prompt(text string) (string, bool) {
	fmt.Fprint(l.out, text)
	if !l.in.Scan() {
		fmt.Fprintln(l.out)
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(l.in.Text())), true
}

func (l *playLoop) warm(ctx context.Context, state tournament.State) {
	if l.preloader == nil {
		return
	}
	ctx = logging.ContextWithRound(ctx, state.CurrentRound)
	if _, err := l.preloader.Warm(ctx, prefetch.UpcomingPaths(state, l.lookahead)); err != nil {
		l.run.logger.Debug("prefetch interrupted", logging.Error(err))
	}
}

func (l *playLoop) listen(ctx context.Context, state tournament.State, first bool) {
	a, b, ok := state.CurrentPairing()
	if !ok {
		return
	}
	target := b
	if first {
		target = a
	}
	if err := l.launcher.Open(ctx, target.Path); err != nil {
		logging.WarnWithContext(l.run.logger, "could not open sample", "open_failed",
			logging.String("path", target.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install xdg-open or open the file manually"),
			logging.String(logging.FieldImpact, "sample not played"),
		)
		fmt.Fprintf(l.out, "Could not open %s: %v\n", target.Path, err)
	}
}

func (l *playLoop) finish(state tournament.State) {
	fmt.Fprintln(l.out, l.highlight("Tournament complete."))
	results := state.SortedResults()
	if l.limit > 0 && len(results) > l.limit {
		results = results[:l.limit]
	}
	if len(results) == 0 {
		fmt.Fprintln(l.out, "No samples left in contention.")
		return
	}
	fmt.Fprintln(l.out, renderLeaderboard(results))
}

func (l *playLoop) highlight(s string) string {
	return l.paint.paint(ansiBlue, s)
}
