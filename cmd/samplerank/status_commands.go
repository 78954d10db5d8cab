package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"samplerank/internal/export"
	"samplerank/internal/session"
	"samplerank/internal/tournament"
)

type statusReport struct {
	Session  session.Summary     `json:"session"`
	Progress tournament.Progress `json:"progress"`
	Upcoming []tournament.Match  `json:"upcoming"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var upcoming int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show round progress and the current pairing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), false, func(run *sessionRun) error {
				state := run.session.State
				if ctx.jsonOutput() {
					return writeJSON(cmd, statusReport{
						Session:  run.session.Summarize(),
						Progress: state.Progress(),
						Upcoming: state.UpcomingPairings(upcoming),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session %s (%s)\n", run.session.Name, run.session.ID)
				fmt.Fprintf(out, "Folder  %s\n", state.SourceDirectory)
				fmt.Fprintln(out, renderProgress(state))
				if pairing := renderPairing(state); pairing != "" {
					fmt.Fprint(out, pairing)
				}
				if matches := state.UpcomingPairings(upcoming + 1); len(matches) > 1 {
					fmt.Fprintln(out, "Up next:")
					for _, m := range matches[1:] {
						fmt.Fprintf(out, "  %s vs %s\n", m.A.Filename, m.B.Filename)
					}
				}
				fmt.Fprintln(out, nextStep(state))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&upcoming, "upcoming", 3, "Number of upcoming pairings to list")
	return cmd
}

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var minScore int

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), false, func(run *sessionRun) error {
				results := run.session.State.SortedResults()
				if cmd.Flags().Changed("min-score") {
					results = export.Filter(results, minScore)
				}
				if limit > 0 && len(results) > limit {
					results = results[:limit]
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, export.Records(results))
				}
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintln(out, "No samples left in contention.")
					return nil
				}
				fmt.Fprintln(out, renderLeaderboard(results))
				if run.session.State.IsTournamentComplete() {
					fmt.Fprintln(out, "Tournament complete.")
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Show at most this many rows (0 shows all)")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "Hide samples scoring below this")
	return cmd
}
