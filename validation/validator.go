package validation

import (
	"maps"
	"slices"
	"strings"

	"github.com/kbukum/graphx/errors"
)

// Validator accumulates cross-field problems so a job definition reports
// all of them at once instead of stopping at the first.
type Validator struct {
	problems []FieldError
}

// FieldError is one problem found at a field path such as
// "nodes[1].ops[0].keys".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

func New() *Validator {
	return &Validator{}
}

// Custom records message at field unless ok holds.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.problems = append(v.problems, FieldError{Field: field, Message: message})
	}
	return v
}

// NotEmpty requires a list of length n to have elements.
func (v *Validator) NotEmpty(field string, n int) *Validator {
	return v.Custom(n > 0, field, "must not be empty")
}

// Exclusive requires exactly one of the named values to be set.
func (v *Validator) Exclusive(field string, values map[string]string) *Validator {
	var set []string
	for name, value := range values {
		if strings.TrimSpace(value) != "" {
			set = append(set, name)
		}
	}
	slices.Sort(set)
	switch len(set) {
	case 1:
		return v
	case 0:
		names := slices.Sorted(maps.Keys(values))
		return v.Custom(false, field, "requires one of: "+strings.Join(names, ", "))
	}
	return v.Custom(false, field, "sets more than one of: "+strings.Join(set, ", "))
}

// Errors returns the problems recorded so far.
func (v *Validator) Errors() []FieldError {
	return v.problems
}

// Err folds the problems into one validation AppError listing every field
// in its Details, or returns nil when there are none.
func (v *Validator) Err() error {
	if len(v.problems) == 0 {
		return nil
	}
	parts := make([]string, len(v.problems))
	for i, p := range v.problems {
		parts[i] = p.String()
	}
	return errors.Validation(strings.Join(parts, "; ")).
		WithDetails(map[string]any{"fields": v.problems})
}
