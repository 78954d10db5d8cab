package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"samplerank/internal/desktop"
	"samplerank/internal/logging"
	"samplerank/internal/pathguard"
	"samplerank/internal/tournament"
)

// newLauncher is swapped in tests to capture helper invocations.
var newLauncher = func(guard *pathguard.AllowedPaths) *desktop.Launcher {
	return desktop.New(guard)
}

// pickSample resolves a command argument to a sample path. "a" and "b" name
// the sides of the current pairing and no argument means side A.
func pickSample(state tournament.State, args []string) (string, error) {
	ref := ""
	if len(args) > 0 {
		ref = strings.TrimSpace(args[0])
	}
	switch strings.ToLower(ref) {
	case "", "a", "b":
		a, b, ok := state.CurrentPairing()
		if !ok {
			return "", errors.New("no current pairing; pass a sample path")
		}
		if strings.EqualFold(ref, "b") {
			return b.Path, nil
		}
		return a.Path, nil
	}
	for _, it := range state.Items {
		if it.Filename == ref {
			return it.Path, nil
		}
	}
	return ref, nil
}

func newURLCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "url [a|b|path]",
		Short: "Print the file:// URL for a sample",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), false, func(run *sessionRun) error {
				target, err := pickSample(run.session.State, args)
				if err != nil {
					return err
				}
				url, err := guardFor(run.session.State).FileURL(target)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}
}

func newRevealCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal [a|b|path]",
		Short: "Show a sample in the file manager",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), false, func(run *sessionRun) error {
				target, err := pickSample(run.session.State, args)
				if err != nil {
					return err
				}
				if err := newLauncher(guardFor(run.session.State)).Reveal(cmd.Context(), target); err != nil {
					return err
				}
				run.logger.Debug("sample revealed", logging.String("path", target))
				fmt.Fprintf(cmd.OutOrStdout(), "Revealed %s\n", target)
				return nil
			})
		},
	}
}

func newCopyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "copy [a|b|path]",
		Short: "Copy a sample to the clipboard for dragging into a DAW",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), false, func(run *sessionRun) error {
				target, err := pickSample(run.session.State, args)
				if err != nil {
					return err
				}
				if err := newLauncher(guardFor(run.session.State)).CopyToClipboard(cmd.Context(), target); err != nil {
					return err
				}
				run.logger.Debug("sample copied to clipboard", logging.String("path", target))
				fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to the clipboard\n", target)
				return nil
			})
		},
	}
}
