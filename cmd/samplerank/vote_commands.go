package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"samplerank/internal/session"
	"samplerank/internal/tournament"
)

type transitionReport struct {
	Session  session.Summary     `json:"session"`
	Progress tournament.Progress `json:"progress"`
	Next     []tournament.Match  `json:"next,omitempty"`
}

func newVoteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "vote <a|b|skip>",
		Short:     "Decide the current pairing",
		Long:      "Record a win for sample A or B, or skip to eliminate both from the tournament.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"a", "b", "skip"},
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDecision(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd.Context(), true, func(run *sessionRun) error {
				next, err := ctx.applyDecision(run, d)
				if err != nil {
					return err
				}
				if err := ctx.commit(cmd.Context(), run, next); err != nil {
					return err
				}
				return reportTransition(ctx, cmd, run)
			})
		},
	}
}

func newAdvanceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Close a complete round and pair the survivors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), true, func(run *sessionRun) error {
				before := len(run.session.State.Items)
				next, err := ctx.advance(run)
				if err != nil {
					return err
				}
				if err := ctx.commit(cmd.Context(), run, next); err != nil {
					return err
				}
				if !ctx.jsonOutput() {
					fmt.Fprintf(cmd.OutOrStdout(), "Kept %d of %d samples for round %d\n",
						len(next.Items), before, next.CurrentRound)
				}
				return reportTransition(ctx, cmd, run)
			})
		},
	}
}

func reportTransition(ctx *commandContext, cmd *cobra.Command, run *sessionRun) error {
	state := run.session.State
	if ctx.jsonOutput() {
		return writeJSON(cmd, transitionReport{
			Session:  run.session.Summarize(),
			Progress: state.Progress(),
			Next:     state.UpcomingPairings(1),
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderProgress(state))
	if pairing := renderPairing(state); pairing != "" {
		fmt.Fprint(out, pairing)
	}
	fmt.Fprintln(out, nextStep(state))
	return nil
}
