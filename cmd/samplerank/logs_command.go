package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"samplerank/internal/logging"
	"samplerank/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var eventType string
	var level string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log lines",
		Long: "Show the tail of samplerank.log. With --session (or SAMPLERANK_SESSION) only " +
			"that session's lines are shown; filtering is exact for the json log format.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			query := logs.Query{
				EventType: strings.TrimSpace(eventType),
				Level:     strings.TrimSpace(level),
			}
			if ref := ctx.sessionRef(); ref != "" {
				store, err := ctx.openStore()
				if err != nil {
					return err
				}
				sess, err := resolveSession(cmd.Context(), store, ref)
				store.Close()
				if err != nil {
					return err
				}
				query.SessionID = sess.ID
			}

			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			recent, offset, err := logs.Last(path, lines, query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, query, 250*time.Millisecond, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&eventType, "event", "", "Only show lines with this event_type")
	cmd.Flags().StringVar(&level, "level", "", "Only show lines at this level")
	return cmd
}
