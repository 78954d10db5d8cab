package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"samplerank/internal/logging"
	"samplerank/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"ls"},
		Short:   "List and manage saved sessions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSessions(cmd, ctx)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSessions(cmd, ctx)
		},
	})
	cmd.AddCommand(newSessionsRenameCommand(ctx))
	cmd.AddCommand(newSessionsRemoveCommand(ctx))
	return cmd
}

func listSessions(cmd *cobra.Command, ctx *commandContext) error {
	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	summaries := make([]session.Summary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, sess.Summarize())
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, summaries)
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, errNoSessions.Error())
		return nil
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		state := "in progress"
		if s.Complete {
			state = "complete"
		}
		rows = append(rows, []string{
			shortID(s.ID),
			s.Name,
			strconv.Itoa(s.Round),
			fmt.Sprintf("%d/%d", s.ActiveItems, s.Items),
			state,
			s.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Name", "Round", "Active", "State", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func newSessionsRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <session> <new-name>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			newName := strings.TrimSpace(args[1])
			if newName == "" {
				return errors.New("new name must not be empty")
			}
			return ctx.withSessionRef(cmd.Context(), strings.TrimSpace(args[0]), true, func(run *sessionRun) error {
				old := run.session.Name
				run.session.Name = newName
				if err := run.store.Save(cmd.Context(), run.session); err != nil {
					return err
				}
				run.logger.Info("session renamed",
					logging.String(logging.FieldEventType, "session_renamed"),
					logging.String("from", old),
					logging.String("to", newName),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", old, newName)
				return nil
			})
		},
	}
}

func newSessionsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <session>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a session from the catalog",
		Long:    "Delete a session from the catalog. Sample files are never touched.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := strings.TrimSpace(args[0])
			if ref == "" {
				return errors.New("session reference must not be empty")
			}
			return ctx.withSessionRef(cmd.Context(), ref, true, func(run *sessionRun) error {
				if err := run.store.Delete(cmd.Context(), run.session.ID); err != nil {
					return err
				}
				run.logger.Info("session deleted",
					logging.String(logging.FieldEventType, "session_deleted"),
					logging.String("name", run.session.Name),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", run.session.Name, run.session.ID)
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if head, _, ok := strings.Cut(id, "-"); ok {
		return head
	}
	return id
}
