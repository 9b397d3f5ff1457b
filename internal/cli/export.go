package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iwatobipen/entry-cli/internal/usecase/report"
	"github.com/spf13/cobra"
)

// defaultColumns is what an export without --select produces.
var defaultColumns = []string{
	"name=$.name",
	"smiles=$.smiles",
	"formula=$.properties.formula",
	"molwt=$.properties.molwt",
	"rb=$.properties.rb",
	"glob=$.properties.glob",
	"pbf=$.properties.pbf",
	"conformers=$.properties.conformers",
}

func exportCmd() *cobra.Command {
	var workspace string
	var runID string
	var selects []string
	var format string
	var output string

	c := &cobra.Command{
		Use:   "export",
		Short: "Export a saved run as a CSV/TSV table",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			if runID == "" {
				// Default to the most recent run.
				refs, listErr := ws.store.ListRuns()
				if listErr != nil {
					return listErr
				}
				if len(refs) == 0 {
					return fmt.Errorf("no saved runs in %q", filepath.Join(ws.root, ws.cfg.Paths.RunsDir))
				}
				runID = refs[0].ID
			}

			run, err := ws.store.LoadRun(runID)
			if err != nil {
				return err
			}

			sel := selects
			if len(sel) == 0 {
				sel = defaultColumns
			}

			cols := make([]report.Column, 0, len(sel))
			for _, s := range sel {
				col, parseErr := report.ParseColumn(s)
				if parseErr != nil {
					return parseErr
				}
				cols = append(cols, col)
			}

			rows, err := report.Apply(run, cols)
			if err != nil {
				return err
			}

			out := io.Writer(os.Stdout)
			if output != "" {
				f, createErr := os.Create(output)
				if createErr != nil {
					return fmt.Errorf("create output file: %w", createErr)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			return writeTable(out, format, report.Header(cols), rows)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&runID, "run", "", "Run id to export (defaults to the most recent run)")
	c.Flags().StringArrayVar(&selects, "select", nil, "Column selector name=$.json.path (repeatable)")
	c.Flags().StringVar(&format, "format", "csv", "Output format: csv|tsv")
	c.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to stdout)")
	return c
}

func writeTable(w io.Writer, format string, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	switch format {
	case "csv", "":
	case "tsv":
		cw.Comma = '\t'
	default:
		return fmt.Errorf("unsupported format %q (expected csv|tsv)", format)
	}

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
