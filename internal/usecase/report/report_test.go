package report

import (
	"testing"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

func sampleRun() domain.RunResult {
	return domain.RunResult{
		SetName: "demo",
		Results: []domain.MoleculeResult{
			{
				Name:   "aspirin",
				SMILES: "CC(=O)Oc1ccccc1C(=O)O",
				Properties: &domain.Properties{
					Formula:        "C9H8O4",
					MolWeight:      180.159,
					RotatableBonds: 2,
					Glob:           0.12,
					PBF:            0.51,
					Conformers:     9,
				},
			},
			{
				Name:   "broken",
				SMILES: "C1CC",
				Error:  &domain.RunError{Kind: domain.RunErrorParse, Message: "unclosed ring"},
			},
		},
	}
}

func TestParseColumn(t *testing.T) {
	c, err := ParseColumn("molwt=$.properties.molwt")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "molwt" || c.Expr != "$.properties.molwt" {
		t.Fatalf("unexpected column: %+v", c)
	}

	for _, bad := range []string{"", "molwt", "=$.x", "name="} {
		if _, err := ParseColumn(bad); err == nil {
			t.Errorf("ParseColumn(%q): expected error", bad)
		}
	}
}

func TestApply_ProjectsProperties(t *testing.T) {
	cols := []Column{
		{Name: "name", Expr: "$.name"},
		{Name: "molwt", Expr: "$.properties.molwt"},
		{Name: "error", Expr: "$.error.kind"},
	}

	rows, err := Apply(sampleRun(), cols)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if rows[0][0] != "aspirin" || rows[0][1] != "180.159" || rows[0][2] != "" {
		t.Errorf("row 0 = %v", rows[0])
	}
	// The failed molecule has no properties block: its molwt cell stays empty.
	if rows[1][0] != "broken" || rows[1][1] != "" || rows[1][2] != "parse" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestApply_EmptyExpression(t *testing.T) {
	if _, err := Apply(sampleRun(), []Column{{Name: "x", Expr: " "}}); err == nil {
		t.Fatal("expected error for empty expression")
	}
}

func TestHeader(t *testing.T) {
	cols := []Column{{Name: "a", Expr: "$.a"}, {Name: "b", Expr: "$.b"}}
	h := Header(cols)
	if len(h) != 2 || h[0] != "a" || h[1] != "b" {
		t.Fatalf("header = %v", h)
	}
}
