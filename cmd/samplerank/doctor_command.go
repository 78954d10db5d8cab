package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"samplerank/internal/deps"
	"samplerank/internal/preflight"
)

type doctorReport struct {
	Checks []preflight.Result `json:"checks"`
	Tools  []deps.Status      `json:"tools"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, catalog, backup, and desktop helpers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			checks := preflight.RunAll(cmd.Context(), cfg)
			tools := preflight.CheckSystemDeps()

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, doctorReport{Checks: checks, Tools: tools}); err != nil {
					return err
				}
			} else {
				p := newPainter(cmd.OutOrStdout())
				p.section("Checks")
				for _, check := range checks {
					kind := statusOK
					if !check.Passed {
						kind = statusError
					}
					p.status(check.Name, kind, check.Detail)
				}
				fmt.Fprintln(p.out)
				p.section("Desktop helpers")
				for _, tool := range tools {
					kind, detail := statusOK, tool.Command
					if !tool.Available {
						kind, detail = statusWarn, tool.Detail
					}
					p.status(tool.Name, kind, detail)
				}
			}

			if preflight.Failed(checks) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
