package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/recordselect/internal/ir"
)

// ValidationResult is the outcome of Validate.
//
// Errors make the query unexecutable. Warnings flag queries that run but
// probably do not do what the caller meant.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the query has no errors.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns the errors joined into a single ConditionError, or nil.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &ConditionError{Index: -1, Message: strings.Join(r.Errors, "; ")}
}

// Validate checks a frozen query before it is handed to a backend.
//
// Conditions built through NewCondition are always well formed; Validate
// catches zero values and hand-assembled Select literals.
//
// Rules:
//  1. From names a record type
//  2. Limit is zero (unlimited) or positive
//  3. Every condition and order clause was built by its factory
//
// Warnings:
//   - like patterns without wildcards (equality that folds case)
//   - the same field ordered twice (the second key never decides)
//
// Validate is a pure function with no side effects.
func Validate(sel Select) ValidationResult {
	v := &validator{errors: []string{}, warnings: []string{}}
	v.validateSelect(sel)
	return ValidationResult{Errors: v.errors, Warnings: v.warnings}
}

// validator accumulates problems during traversal.
type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateSelect(sel Select) {
	if strings.TrimSpace(sel.From) == "" {
		v.addError("select has no record type")
	}
	if sel.Limit < 0 {
		v.addError("limit %d is negative", sel.Limit)
	}
	for i, c := range sel.Where {
		v.validateCondition(i, c)
	}

	seen := make(map[string]bool, len(sel.Order))
	for i, o := range sel.Order {
		if o.field == "" || (o.dir != Asc && o.dir != Desc) {
			v.addError("order %d was not built by NewOrderClause", i)
			continue
		}
		if seen[o.field] {
			v.addWarning("order %d: field %q is already ordered", i, o.field)
		}
		seen[o.field] = true
	}
}

func (v *validator) validateCondition(i int, c Condition) {
	if c.IsZero() {
		v.addError("condition %d is empty", i)
		return
	}
	if err := checkField(c.field); err != nil {
		v.addError("condition %d: %s", i, err.(*ConditionError).Message)
		return
	}
	if !c.op.Valid() {
		v.addError("condition %d: unsupported operator %q", i, c.op)
		return
	}
	if c.conj != ConjAnd && c.conj != ConjOr {
		v.addError("condition %d: unsupported conjunction %q", i, c.conj)
	}
	if msg := checkValue(c.op, c.value); msg != "" {
		v.addError("condition %d: %s", i, msg)
		return
	}

	if c.op == OpLike {
		if pattern, _ := c.value.(ir.IRString); !strings.ContainsAny(string(pattern), "%_") {
			v.addWarning("condition %d: like pattern %q has no wildcard", i, string(pattern))
		}
	}
}
