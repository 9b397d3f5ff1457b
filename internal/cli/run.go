package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iwatobipen/entry-cli/internal/domain"
	"github.com/iwatobipen/entry-cli/internal/usecase"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var workspace string
	var set string
	var profile string
	var parallel int
	var noSave bool
	var format string

	c := &cobra.Command{
		Use:   "run",
		Short: "Compute shape descriptors for a molecule set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			setPath, err := resolveSetPath(ws, set)
			if err != nil {
				return err
			}

			profileArg, err := resolveProfileArg(ws, profile)
			if err != nil {
				return err
			}

			opts := []usecase.RunSetOption{usecase.WithParallelism(parallel)}
			if !noSave {
				opts = append(opts, usecase.WithArtifactStore(ws.store))
			}

			uc := usecase.NewRunSet(ws.sets, ws.profiles, ws.runner, opts...)

			run, runID, err := uc.Execute(cmd.Context(), setPath, profileArg)
			if err != nil {
				// Saving may have failed after the computation finished;
				// print what we have before surfacing the error.
				_ = printRun(os.Stdout, run, runID, format)
				return err
			}

			if err := printRun(os.Stdout, run, runID, format); err != nil {
				return err
			}

			fails := countFailures(run)
			if fails > 0 {
				return fmt.Errorf("run failed (%d failed molecule(s))", fails)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&set, "set", "s", "", "Set name or path (required)")
	c.Flags().StringVarP(&profile, "profile", "p", "", "Profile name or path (optional; defaults to workspace default profile)")
	c.Flags().IntVar(&parallel, "parallel", usecase.DefaultParallelism, "Molecules computed at once (min 1)")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save run artifact under runs/")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("set")
	return c
}

func printRun(w io.Writer, run domain.RunResult, runID string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		// Wrap to carry the run id without changing the artifact shape.
		payload := map[string]any{
			"run_id": runID,
			"run":    run,
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettyRun(w, run, runID)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyRun(w io.Writer, run domain.RunResult, runID string) {
	total := run.EndedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Set:      %s\n", run.SetName)
	fmt.Fprintf(w, "Profile:  %s\n", run.ProfileName)
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Ended:    %s\n", run.EndedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", total)
	if runID != "" {
		fmt.Fprintf(w, "Run ID:   %s\n", runID)
	}
	fmt.Fprintln(w)

	for _, r := range run.Results {
		status := "OK"
		if r.Failed() {
			status = "FAIL"
		}

		fmt.Fprintf(w, "- [%s] %s (%s) %dms\n", status, r.Name, r.SMILES, r.ElapsedMS)

		if r.Error != nil {
			fmt.Fprintf(w, "  error: %s (%s)\n", r.Error.Message, r.Error.Kind)
		} else if p := r.Properties; p != nil {
			fmt.Fprintf(w, "  formula: %s  molwt: %.3f  rb: %d\n", p.Formula, p.MolWeight, p.RotatableBonds)
			fmt.Fprintf(w, "  glob: %.4f  pbf: %.4f  (%d conformer(s))\n", p.Glob, p.PBF, p.Conformers)
		}

		if len(r.Assertions) > 0 {
			pass, fail := countAssertionPassFail(r.Assertions)
			fmt.Fprintf(w, "  assertions: %d pass / %d fail\n", pass, fail)
			for _, a := range r.Assertions {
				mark := "✓"
				if !a.Passed {
					mark = "✗"
				}
				fmt.Fprintf(w, "    %s %s  %s\n", mark, a.Name, a.Message)
			}
		}

		if len(r.Energies) > 0 {
			fmt.Fprintf(w, "  energies: %s\n", formatEnergies(r.Energies, 5))
		}

		fmt.Fprintln(w)
	}
}

func formatEnergies(es []float64, max int) string {
	var b strings.Builder
	for i, e := range es {
		if i == max {
			fmt.Fprintf(&b, " … (+%d more)", len(es)-max)
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%.3f", e)
	}
	return b.String()
}

func countFailures(run domain.RunResult) int {
	n := 0
	for _, r := range run.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

func countAssertionPassFail(in []domain.AssertionResult) (pass int, fail int) {
	for _, a := range in {
		if a.Passed {
			pass++
		} else {
			fail++
		}
	}
	return pass, fail
}
