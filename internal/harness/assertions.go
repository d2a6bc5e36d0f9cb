package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/recordselect/internal/ir"
)

// AssertionError is returned when an expectation fails.
// It includes the step's outcome to help debug the failure.
type AssertionError struct {
	Step     string   // Step name
	Type     string   // Expectation type: ids, count, error, records
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	IDs      []string // Identities the step returned
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: step %q: %s\n", e.Step, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.IDs) > 0 {
		fmt.Fprintf(&buf, "  Returned: %s\n", strings.Join(e.IDs, ", "))
	}

	return buf.String()
}

// EvaluateExpectations checks every step's Expect against its result and
// returns one message per failure. Steps and results are matched by position.
func EvaluateExpectations(steps []Step, results []StepResult) []string {
	var failures []string
	for i, step := range steps {
		if i >= len(results) {
			failures = append(failures, fmt.Sprintf("step %q: no result", step.Name))
			continue
		}
		if err := checkStep(step, results[i]); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// checkStep returns the first failed expectation of a step, or nil.
// A step without Expect only has to succeed.
func checkStep(step Step, sr StepResult) error {
	exp := step.Expect
	if exp == nil {
		if sr.Error != "" {
			return &AssertionError{
				Step:     step.Name,
				Type:     "error",
				Expected: "success",
				Actual:   fmt.Sprintf("%s: %s", sr.Error, sr.Message),
			}
		}
		return nil
	}

	if exp.Error != "" || sr.Error != "" {
		if exp.Error != sr.Error {
			return &AssertionError{
				Step:     step.Name,
				Type:     "error",
				Expected: orNone(exp.Error),
				Actual:   orNone(strings.TrimSpace(sr.Error + " " + sr.Message)),
				IDs:      sr.IDs,
			}
		}
		return nil
	}

	if exp.IDs != nil && !slices.Equal(exp.IDs, sr.IDs) {
		return &AssertionError{
			Step:     step.Name,
			Type:     "ids",
			Expected: fmt.Sprintf("%v", exp.IDs),
			Actual:   fmt.Sprintf("%v", sr.IDs),
			IDs:      sr.IDs,
		}
	}

	if exp.Count != nil && *exp.Count != len(sr.IDs) {
		return &AssertionError{
			Step:     step.Name,
			Type:     "count",
			Expected: fmt.Sprintf("%d records", *exp.Count),
			Actual:   fmt.Sprintf("%d records", len(sr.IDs)),
			IDs:      sr.IDs,
		}
	}

	if exp.Records != nil {
		if len(exp.Records) > len(sr.Records) {
			return &AssertionError{
				Step:     step.Name,
				Type:     "records",
				Expected: fmt.Sprintf("at least %d records", len(exp.Records)),
				Actual:   fmt.Sprintf("%d records", len(sr.Records)),
				IDs:      sr.IDs,
			}
		}
		for i, want := range exp.Records {
			if field, ok := matchFields(sr.Records[i], want); !ok {
				return &AssertionError{
					Step:     step.Name,
					Type:     "records",
					Expected: fmt.Sprintf("record %d %s = %v", i, field, want[field]),
					Actual:   fmt.Sprintf("record %d %s = %s", i, field, describe(sr.Records[i][field])),
					IDs:      sr.IDs,
				}
			}
		}
	}

	return nil
}

// matchFields checks that actual holds every expected field (subset match).
// A field absent from actual compares as null, and null matches null. On
// mismatch it returns the first differing field name in sorted order.
func matchFields(actual ir.IRObject, expected map[string]any) (string, bool) {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		want, err := ir.FromAny(expected[k])
		if err != nil {
			return k, false
		}
		if ir.Compare(want, actual[k]) != 0 {
			return k, false
		}
	}
	return "", true
}

func describe(v ir.IRValue) string {
	if v == nil {
		return "null"
	}
	data, err := ir.MarshalIRValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
