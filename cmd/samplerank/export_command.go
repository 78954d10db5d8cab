package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"samplerank/internal/config"
	"samplerank/internal/export"
	"samplerank/internal/logging"
	"samplerank/internal/textutil"
)

type exportReport struct {
	Path     string        `json:"path"`
	Format   export.Format `json:"format"`
	Items    int           `json:"items"`
	MinScore int           `json:"minScore"`
	Copied   []string      `json:"copied,omitempty"`
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var minScore int
	var formatFlag string
	var copyTo string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the samples that made the cut",
		Long: "Write the leaderboard entries scoring at least --min-score. Without a file the " +
			"export lands in paths.export_dir named after the session. The default text " +
			"format is one path per line.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-score") {
				minScore = cfg.Tournament.MinExportScore
			}
			return ctx.withSession(cmd.Context(), false, func(run *sessionRun) error {
				var target string
				if len(args) == 1 {
					if target, err = config.ExpandPath(strings.TrimSpace(args[0])); err != nil {
						return fmt.Errorf("resolve export path: %w", err)
					}
				}

				format := export.FormatText
				switch {
				case formatFlag != "":
					if format, err = export.ParseFormat(formatFlag); err != nil {
						return err
					}
				case target != "":
					format = export.FormatForPath(target)
				}
				if target == "" {
					name := textutil.SanitizeFileName(run.session.Name)
					if name == "" {
						name = run.session.ID
					}
					target = filepath.Join(cfg.Paths.ExportDir, name+format.Extension())
				}

				items := export.Filter(run.session.State.SortedResults(), minScore)
				if err := export.WriteFile(target, items, format); err != nil {
					return err
				}
				run.logger.Info("results exported",
					logging.String(logging.FieldEventType, "export"),
					logging.String("path", target),
					logging.String("format", string(format)),
					logging.Int("items", len(items)),
					logging.Int("min_score", minScore),
				)

				var copied []string
				if copyTo != "" {
					dir, err := config.ExpandPath(copyTo)
					if err != nil {
						return fmt.Errorf("resolve copy directory: %w", err)
					}
					guard := guardFor(run.session.State)
					for _, it := range items {
						if err := guard.Check(it.Path); err != nil {
							return err
						}
					}
					copied, err = export.CopySamples(cmd.Context(), items, dir)
					if err != nil {
						return err
					}
					run.logger.Info("samples copied",
						logging.String(logging.FieldEventType, "export_copy"),
						logging.String("dir", dir),
						logging.Int("files", len(copied)),
					)
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, exportReport{
						Path:     target,
						Format:   format,
						Items:    len(items),
						MinScore: minScore,
						Copied:   copied,
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Exported %d samples scoring %d or more to %s\n", len(items), minScore, target)
				if len(copied) > 0 {
					fmt.Fprintf(out, "Copied %d files to %s\n", len(copied), filepath.Dir(copied[0]))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&minScore, "min-score", 1, "Minimum score to include (default from tournament.min_export_score)")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: text, m3u, json, or yaml (default from the file extension)")
	cmd.Flags().StringVar(&copyTo, "copy-to", "", "Also copy the exported samples into this directory")
	return cmd
}
