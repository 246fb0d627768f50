package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Fatality(t *testing.T) {
	err := New(ErrCodeCyclicGraph, "cycle")
	if !err.Fatal {
		t.Error("CYCLIC_GRAPH should be fatal")
	}
	err = New(ErrCodeSortPrecondition, "unsorted")
	if err.Fatal {
		t.Error("SORT_PRECONDITION should not be fatal")
	}
}

func TestAppError_MapperFailure_Success(t *testing.T) {
	cause := fmt.Errorf("bad row")
	err := MapperFailure("map", 3, cause)
	if err.Code != ErrCodeMapperFailure {
		t.Errorf("expected MAPPER_FAILURE, got %s", err.Code)
	}
	if err.Details["index"] != 3 {
		t.Errorf("expected index=3, got %v", err.Details["index"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	if !err.Fatal {
		t.Error("MapperFailure should be fatal")
	}
}

func TestAppError_Diagnostics_NotFatal(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
	}{
		{"sort precondition", SortPrecondition("reduce", []string{"word"}), ErrCodeSortPrecondition},
		{"missing sort key", MissingSortKey([]string{"b"}, []string{"a"}), ErrCodeMissingSortKey},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Fatal {
				t.Errorf("%s should not be fatal", tc.code)
			}
		})
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
	}{
		{"cyclic", CyclicGraph("n1"), ErrCodeCyclicGraph},
		{"unknown input", UnknownInput("text"), ErrCodeUnknownInput},
		{"unknown function", UnknownFunction("map", "split"), ErrCodeUnknownFunction},
		{"strategy", InvalidStrategy("cross"), ErrCodeInvalidStrategy},
		{"record", InvalidRecord("text", 2, fmt.Errorf("eof")), ErrCodeInvalidRecord},
		{"validation", Validation("bad"), ErrCodeInvalidInput},
		{"invalid input", InvalidInput("name", "empty"), ErrCodeInvalidInput},
		{"internal", Internal(fmt.Errorf("x")), ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, tc.err.Code)
			}
			if !tc.err.Fatal {
				t.Errorf("%s should be fatal", tc.code)
			}
		})
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{Code: ErrCodeInternal}
	err.WithDetail("node", "n1").WithDetails(map[string]any{"op": "sort"})
	if err.Details["node"] != "n1" || err.Details["op"] != "sort" {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := UnknownInput("text")
	if !strings.HasPrefix(err.Error(), "UNKNOWN_NAMED_INPUT: ") {
		t.Errorf("unexpected message %q", err.Error())
	}
	err.WithCause(fmt.Errorf("boom"))
	if !strings.Contains(err.Error(), "(cause: boom)") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("run: %w", CyclicGraph("n2"))
	if CodeOf(err) != ErrCodeCyclicGraph {
		t.Errorf("expected CYCLIC_GRAPH, got %q", CodeOf(err))
	}
	if !Is(err, ErrCodeCyclicGraph) {
		t.Error("expected Is to match")
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("expected empty code for plain errors")
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
	if !IsFatal(fmt.Errorf("plain")) {
		t.Error("plain errors are fatal")
	}
	if IsFatal(SortPrecondition("join", nil)) {
		t.Error("diagnostics are not fatal")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("expected nil")
	}
	orig := UnknownInput("x")
	if Wrap(fmt.Errorf("ctx: %w", orig)) != orig {
		t.Error("expected wrapped AppError passthrough")
	}
	if Wrap(fmt.Errorf("plain")).Code != ErrCodeInternal {
		t.Error("expected plain error to become INTERNAL_ERROR")
	}
}

func TestToReport(t *testing.T) {
	r := InvalidRecord("text", 4, fmt.Errorf("eof")).ToReport()
	if r.Code != ErrCodeInvalidRecord || r.Cause != "eof" || !r.Fatal {
		t.Errorf("unexpected report %+v", r)
	}
}
