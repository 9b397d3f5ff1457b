// Package report projects run artifacts into tabular form using JSONPath
// expressions over the per-molecule JSON documents.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

// Column names one output column and the JSONPath expression that fills it,
// evaluated against each molecule result document.
type Column struct {
	Name string
	Expr string
}

// ParseColumn reads a "name=$.json.path" selector.
func ParseColumn(s string) (Column, error) {
	name, expr, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	expr = strings.TrimSpace(expr)
	if !ok || name == "" || expr == "" {
		return Column{}, fmt.Errorf("invalid column selector %q, want name=$.path", s)
	}
	return Column{Name: name, Expr: expr}, nil
}

// Apply builds one row per molecule in the run. Cells whose expression does
// not resolve stay empty; a column with an empty expression is an error.
func Apply(run domain.RunResult, cols []Column) ([][]string, error) {
	for _, c := range cols {
		if strings.TrimSpace(c.Expr) == "" {
			return nil, fmt.Errorf("column %q: empty jsonpath expression", c.Name)
		}
	}

	rows := make([][]string, 0, len(run.Results))
	for _, res := range run.Results {
		doc, err := toDocument(res)
		if err != nil {
			return nil, fmt.Errorf("molecule %q: %w", res.Name, err)
		}

		row := make([]string, len(cols))
		for i, c := range cols {
			val, getErr := jsonpath.Get(c.Expr, doc)
			if getErr != nil || isEmptyValue(val) {
				continue
			}
			row[i] = render(val)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Header lists the column names in order.
func Header(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// toDocument round-trips the result through JSON so jsonpath sees the same
// document shape the artifact file has.
func toDocument(res domain.MoleculeResult) (any, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func render(v any) string {
	// jsonpath often returns a slice with a single element.
	if arr, ok := v.([]any); ok && len(arr) == 1 {
		return render(arr[0])
	}

	switch t := v.(type) {
	case string:
		return t
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
