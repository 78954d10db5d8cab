package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"samplerank/internal/config"
	"samplerank/internal/logging"
	"samplerank/internal/session"
)

type savedReport struct {
	Path    string `json:"path"`
	Session string `json:"session"`
}

func newSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save <file>",
		Short: "Write the session state to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve save path: %w", err)
			}
			return ctx.withSession(cmd.Context(), false, func(run *sessionRun) error {
				if err := session.SaveFile(target, run.session.State); err != nil {
					return err
				}
				run.logger.Info("session saved to file",
					logging.String(logging.FieldEventType, "session_saved"),
					logging.String("path", target),
				)
				if ctx.jsonOutput() {
					return writeJSON(cmd, savedReport{Path: target, Session: run.session.ID})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", run.session.Name, target)
				return nil
			})
		},
	}
}

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Start a session from a saved JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve load path: %w", err)
			}
			state, err := session.LoadFile(source)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := store.Create(cmd.Context(), strings.TrimSpace(name), state)
			if err != nil {
				return err
			}
			logging.WithSession(logger, sess.ID).Info("session loaded from file",
				logging.String(logging.FieldEventType, "session_loaded"),
				logging.String("path", source),
				logging.Int(logging.FieldRound, state.CurrentRound),
				logging.Int("items", len(state.Items)),
			)
			ctx.recorder().ObserveState(sess.Name, state)

			if ctx.jsonOutput() {
				return writeJSON(cmd, sess.Summarize())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %s (%s) with %d samples\n", sess.Name, sess.ID, len(state.Items))
			fmt.Fprintln(out, renderProgress(state))
			fmt.Fprintln(out, nextStep(state))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Session name (default derived from the folder)")
	return cmd
}
