package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"samplerank/internal/config"
	"samplerank/internal/logging"
	"samplerank/internal/remote"
	"samplerank/internal/session"
)

var errRemoteDisabled = errors.New("remote backups are disabled; set remote.enabled and remote.bucket in the config")

type pushReport struct {
	Session string `json:"session"`
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
}

type pullReport struct {
	Session  session.Summary `json:"session"`
	Replaced bool            `json:"replaced"`
}

// openBackup connects to the configured bucket.
func (c *commandContext) openBackup(cmd *cobra.Command) (*remote.Backup, config.Remote, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, config.Remote{}, err
	}
	if !cfg.Remote.Enabled || cfg.Remote.Bucket == "" {
		return nil, cfg.Remote, errRemoteDisabled
	}
	backup := remote.New(cfg.Remote.Bucket, cfg.Remote.Prefix, cfg.Remote.Gzip)
	if err := backup.Init(cmd.Context()); err != nil {
		return nil, cfg.Remote, err
	}
	return backup, cfg.Remote, nil
}

func newPushCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Back up the session to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, rc, err := ctx.openBackup(cmd)
			if err != nil {
				return err
			}
			return ctx.withSession(cmd.Context(), false, func(run *sessionRun) error {
				data, err := json.Marshal(run.session.State)
				if err != nil {
					return fmt.Errorf("encode session: %w", err)
				}
				key, err := backup.Push(cmd.Context(), run.session.ID, data)
				if err != nil {
					return err
				}
				run.logger.Info("session pushed",
					logging.String(logging.FieldEventType, "remote_push"),
					logging.String("bucket", rc.Bucket),
					logging.String("key", key),
					logging.Int("bytes", len(data)),
				)
				if ctx.jsonOutput() {
					return writeJSON(cmd, pushReport{Session: run.session.ID, Bucket: rc.Bucket, Key: key})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s to s3://%s/%s\n", run.session.Name, rc.Bucket, key)
				return nil
			})
		},
	}
}

func newPullCommand(ctx *commandContext) *cobra.Command {
	var name string
	var list bool

	cmd := &cobra.Command{
		Use:   "pull [session-id]",
		Short: "Restore a session backup from S3",
		Long: "Restore a session backup from S3. A session already in the local catalog " +
			"is overwritten in place; otherwise it is imported under its original ID.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, _, err := ctx.openBackup(cmd)
			if err != nil {
				return err
			}
			if list {
				ids, err := backup.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, ids)
				}
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					fmt.Fprintln(out, "No backups found.")
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}
			if len(args) == 0 {
				return errors.New("pull needs a session ID (use --list to see backups)")
			}
			id := strings.TrimSpace(args[0])

			data, err := backup.Pull(cmd.Context(), id)
			if err != nil {
				return err
			}
			state, err := session.DecodeState(data)
			if err != nil {
				return fmt.Errorf("backup %s: %w", id, err)
			}

			cfg, err := ctx.ensureConfig()
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

			report := pullReport{}
			sess, err := store.Get(cmd.Context(), id)
			switch {
			case err == nil:
				lock, err := session.Acquire(cfg.LockDir(), id)
				if err != nil {
					return err
				}
				defer lock.Release()
				sess.State = state
				if name = strings.TrimSpace(name); name != "" {
					sess.Name = name
				}
				if err := store.Save(cmd.Context(), sess); err != nil {
					return err
				}
				report.Replaced = true
			case errors.Is(err, session.ErrNotFound):
				if sess, err = store.Import(cmd.Context(), id, strings.TrimSpace(name), state); err != nil {
					return err
				}
			default:
				return err
			}

			logging.WithSession(logger, sess.ID).Info("session pulled",
				logging.String(logging.FieldEventType, "remote_pull"),
				logging.Bool("replaced", report.Replaced),
				logging.Int(logging.FieldRound, state.CurrentRound),
			)
			ctx.recorder().ObserveState(sess.Name, state)

			report.Session = sess.Summarize()
			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}
			verb := "Imported"
			if report.Replaced {
				verb = "Restored"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s)\n", verb, sess.Name, sess.ID)
			fmt.Fprintln(out, renderProgress(state))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Session name for the restored copy")
	cmd.Flags().BoolVar(&list, "list", false, "List session IDs with a backup")
	return cmd
}
