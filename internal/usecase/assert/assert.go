// Package assert evaluates property acceptance windows against computed
// molecule properties.
package assert

import (
	"fmt"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

// Evaluate applies the assertion spec against the computed properties.
// A nil props (the molecule failed upstream) fails every declared bound.
func Evaluate(spec domain.PropertyAssertionsSpec, props *domain.Properties) []domain.AssertionResult {
	var out []domain.AssertionResult

	if spec.MolWeight != nil {
		out = append(out, bound("molwt", *spec.MolWeight, value(props, func(p *domain.Properties) float64 { return p.MolWeight }))...)
	}
	if spec.RotatableBonds != nil {
		out = append(out, bound("rb", *spec.RotatableBonds, value(props, func(p *domain.Properties) float64 { return float64(p.RotatableBonds) }))...)
	}
	if spec.Glob != nil {
		out = append(out, bound("glob", *spec.Glob, value(props, func(p *domain.Properties) float64 { return p.Glob }))...)
	}
	if spec.PBF != nil {
		out = append(out, bound("pbf", *spec.PBF, value(props, func(p *domain.Properties) float64 { return p.PBF }))...)
	}

	return out
}

func value(props *domain.Properties, get func(*domain.Properties) float64) *float64 {
	if props == nil {
		return nil
	}
	v := get(props)
	return &v
}

// bound expands one Bound into min/max assertion results. A nil got means
// the property was never computed.
func bound(prop string, b domain.Bound, got *float64) []domain.AssertionResult {
	var out []domain.AssertionResult
	if b.Min != nil {
		out = append(out, check(prop+".min", got, func(v float64) bool { return v >= *b.Min },
			fmt.Sprintf(">= %g", *b.Min)))
	}
	if b.Max != nil {
		out = append(out, check(prop+".max", got, func(v float64) bool { return v <= *b.Max },
			fmt.Sprintf("<= %g", *b.Max)))
	}
	return out
}

func check(name string, got *float64, ok func(float64) bool, want string) domain.AssertionResult {
	if got == nil {
		return domain.AssertionResult{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("expected %s, property not computed", want),
		}
	}
	if ok(*got) {
		return domain.AssertionResult{
			Name:    name,
			Passed:  true,
			Message: fmt.Sprintf("%g %s", *got, want),
		}
	}
	return domain.AssertionResult{
		Name:    name,
		Passed:  false,
		Message: fmt.Sprintf("expected %s, got %g", want, *got),
	}
}
