package domain

import (
	"context"
	"errors"
	"testing"
)

func TestClassifyRunError_Canceled(t *testing.T) {
	if got := ClassifyRunError(context.Canceled); got != RunErrorCanceled {
		t.Fatalf("expected canceled, got=%s", got)
	}
	if got := ClassifyRunError(context.DeadlineExceeded); got != RunErrorCanceled {
		t.Fatalf("expected canceled, got=%s", got)
	}
}

func TestClassifyRunError_Unknown(t *testing.T) {
	if got := ClassifyRunError(errors.New("boom")); got != RunErrorUnknown {
		t.Fatalf("expected unknown, got=%s", got)
	}
}

func TestNewRunError_NilOnNil(t *testing.T) {
	if got := NewRunError(RunErrorParse, nil); got != nil {
		t.Fatalf("expected nil, got=%v", got)
	}
}

func TestNewRunError_ExplicitKindWins(t *testing.T) {
	got := NewRunError(RunErrorParse, errors.New("bad ring bond"))
	if got.Kind != RunErrorParse {
		t.Fatalf("expected parse, got=%s", got.Kind)
	}
	if got.Message != "bad ring bond" {
		t.Fatalf("unexpected message: %q", got.Message)
	}
}

func TestMoleculeResult_Failed(t *testing.T) {
	ok := MoleculeResult{
		Assertions: []AssertionResult{{Name: "molwt.max", Passed: true}},
	}
	if ok.Failed() {
		t.Fatal("passing result reported as failed")
	}

	missed := MoleculeResult{
		Assertions: []AssertionResult{{Name: "glob.min", Passed: false}},
	}
	if !missed.Failed() {
		t.Fatal("missed assertion not reported as failed")
	}

	errored := MoleculeResult{Error: &RunError{Kind: RunErrorParse, Message: "x"}}
	if !errored.Failed() {
		t.Fatal("errored result not reported as failed")
	}
}
