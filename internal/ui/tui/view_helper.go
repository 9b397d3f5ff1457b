package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func renderMoleculeDetails(rr domain.MoleculeResult) string {
	var b strings.Builder

	b.WriteString("    ")
	b.WriteString(clampString(rr.SMILES, 60))
	b.WriteString("\n")

	if rr.Error != nil {
		b.WriteString("    error: ")
		b.WriteString(rr.Error.Message)
		b.WriteString(" (")
		b.WriteString(string(rr.Error.Kind))
		b.WriteString(")\n")
		return b.String()
	}

	if p := rr.Properties; p != nil {
		b.WriteString(fmt.Sprintf("    %s  molwt %.3f  rb %d\n", p.Formula, p.MolWeight, p.RotatableBonds))
		b.WriteString(fmt.Sprintf("    glob %.4f  pbf %.4f  %d conformer(s)  %dms\n",
			p.Glob, p.PBF, p.Conformers, rr.ElapsedMS))
	}

	for _, a := range rr.Assertions {
		status := "FAIL"
		if a.Passed {
			status = "PASS"
		}
		b.WriteString("    - ")
		b.WriteString(a.Name)
		b.WriteString(" [")
		b.WriteString(status)
		b.WriteString("] ")
		b.WriteString(a.Message)
		b.WriteString("\n")
	}

	return b.String()
}
