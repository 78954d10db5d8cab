package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"samplerank/internal/config"
	"samplerank/internal/library"
	"samplerank/internal/logging"
	"samplerank/internal/preflight"
	"samplerank/internal/tournament"
)

func newNewCommand(ctx *commandContext) *cobra.Command {
	var name string
	var threshold float64
	var followSymlinks bool

	cmd := &cobra.Command{
		Use:   "new <folder>",
		Short: "Scan a sample folder and start a tournament",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			dir, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve folder: %w", err)
			}
			if check := preflight.CheckSourceDir(dir); !check.Passed {
				return fmt.Errorf("sample folder: %s", check.Detail)
			}

			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Tournament.AdvancementThreshold
			}
			if !cmd.Flags().Changed("follow-symlinks") {
				followSymlinks = cfg.Scan.FollowSymlinks
			}

			scan, err := library.Scan(cmd.Context(), dir, library.Options{
				Extensions:     cfg.Scan.Extensions,
				FollowSymlinks: followSymlinks,
			})
			if err != nil {
				return err
			}
			if len(scan.Entries) < 2 {
				return fmt.Errorf("found %d audio files in %s; a tournament needs at least 2", len(scan.Entries), scan.Root)
			}

			state, err := tournament.New(scan.Entries, scan.Root, threshold, nil)
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := store.Create(cmd.Context(), name, state)
			if err != nil {
				return err
			}
			ctx.recorder().ObserveState(sess.Name, sess.State)

			logging.NewComponentLogger(logging.WithSession(logger, sess.ID), "cli").Info("session created",
				logging.String(logging.FieldEventType, "session_created"),
				logging.String("name", sess.Name),
				logging.String("source_dir", scan.Root),
				logging.Int("items", len(state.Items)),
				logging.Int("skipped", scan.Skipped),
				logging.Int("link_targets", len(scan.LinkTargets)),
				logging.Float64("threshold", state.AdvancementThreshold),
			)

			if ctx.jsonOutput() {
				return writeJSON(cmd, sess.Summarize())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created session %s (%s)\n", sess.Name, sess.ID)
			fmt.Fprintf(out, "%d samples from %s, %d comparisons in round 1\n",
				len(state.Items), scan.Root, len(state.PairingsThisRound))
			if n := len(scan.LinkTargets); n > 0 {
				fmt.Fprintf(out, "Followed %d links to files outside the folder\n", n)
			}
			if scan.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d entries that could not be read\n", scan.Skipped)
			}
			fmt.Fprintln(out, "Run `samplerank play` to start comparing.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Session name (default: folder name plus a short ID)")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", tournament.DefaultThreshold, "Share of samples kept each round, in (0,1]")
	cmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "Follow symbolic links while scanning")
	return cmd
}
