package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/ctmigrate/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the full plan to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Plan     ir.ActionLog // Full plan for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull plan:\n")
	for i, a := range e.Plan {
		target := a.Meta.ContentTypeInstanceID
		if a.Meta.FieldInstanceID != "" {
			target += " " + a.Meta.FieldInstanceID
		}
		fmt.Fprintf(&buf, "  [%d] %s %s\n", i+1, a.Type, target)
	}

	return buf.String()
}

// assertPlanContains checks that the plan holds an action of the given type,
// optionally on the given content type and field.
func assertPlanContains(plan ir.ActionLog, assertion Assertion) error {
	for _, a := range plan {
		if string(a.Type) != assertion.Action {
			continue
		}
		if assertion.ContentType != "" && a.Payload.ContentTypeID != assertion.ContentType {
			continue
		}
		if assertion.Field != "" && a.Payload.FieldID != assertion.Field {
			continue
		}
		return nil
	}

	expected := assertion.Action
	if assertion.ContentType != "" {
		expected += " on " + assertion.ContentType
	}
	if assertion.Field != "" {
		expected += "." + assertion.Field
	}
	return &AssertionError{
		Type:     AssertPlanContains,
		Expected: expected,
		Actual:   "not found in plan",
		Plan:     plan,
	}
}

// assertPlanOrder checks that the first occurrences of the action types
// appear in the specified order. Intervening actions are allowed.
func assertPlanOrder(plan ir.ActionLog, assertion Assertion) error {
	positions := make(map[string]int)
	for i, a := range plan {
		t := string(a.Type)
		if positions[t] == 0 {
			positions[t] = i + 1 // 1-indexed for readability
		}
	}

	for _, action := range assertion.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertPlanOrder,
				Expected: fmt.Sprintf("all actions present: %v", assertion.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Plan:     plan,
			}
		}
	}

	for i := 1; i < len(assertion.Actions); i++ {
		prev := assertion.Actions[i-1]
		curr := assertion.Actions[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertPlanOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Plan: plan,
			}
		}
	}

	return nil
}

// assertPlanCount checks that the action type appears exactly Count times.
func assertPlanCount(plan ir.ActionLog, assertion Assertion) error {
	count := 0
	for _, a := range plan {
		if string(a.Type) == assertion.Action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertPlanCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Plan:     plan,
		}
	}

	return nil
}

func assertChunkCount(result *Result, assertion Assertion) error {
	if len(result.Chunks) != assertion.Count {
		return &AssertionError{
			Type:     AssertChunkCount,
			Expected: fmt.Sprintf("%d chunks", assertion.Count),
			Actual:   fmt.Sprintf("%d chunks", len(result.Chunks)),
			Plan:     result.Actions(),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string
	plan := result.Actions()

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertPlanContains:
			err = assertPlanContains(plan, assertion)
		case AssertPlanOrder:
			err = assertPlanOrder(plan, assertion)
		case AssertPlanCount:
			err = assertPlanCount(plan, assertion)
		case AssertChunkCount:
			err = assertChunkCount(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// matchErrors compares validation errors against expectations, in order.
func matchErrors(actual []ir.ValidationError, expected []ExpectedError) []string {
	var failures []string
	if len(actual) != len(expected) {
		failures = append(failures, fmt.Sprintf("expected %d validation errors, got %d:\n%s",
			len(expected), len(actual), describeErrors(actual)))
	}

	for i := 0; i < min(len(actual), len(expected)); i++ {
		got, want := actual[i], expected[i]
		step := got.Details.Step

		if got.Message != want.Message {
			failures = append(failures, fmt.Sprintf("errors[%d]: message %q, want %q", i, got.Message, want.Message))
		}
		if want.Action != "" && string(step.Type) != want.Action {
			failures = append(failures, fmt.Sprintf("errors[%d]: step type %s, want %s", i, step.Type, want.Action))
		}
		if want.ContentTypeInstanceID != "" && step.Meta.ContentTypeInstanceID != want.ContentTypeInstanceID {
			failures = append(failures, fmt.Sprintf("errors[%d]: content type instance %s, want %s",
				i, step.Meta.ContentTypeInstanceID, want.ContentTypeInstanceID))
		}
		if want.FieldInstanceID != "" && step.Meta.FieldInstanceID != want.FieldInstanceID {
			failures = append(failures, fmt.Sprintf("errors[%d]: field instance %s, want %s",
				i, step.Meta.FieldInstanceID, want.FieldInstanceID))
		}
		if want.Line > 0 {
			line := 0
			if step.Callsite != nil {
				line = step.Callsite.Line
			}
			if line != want.Line {
				failures = append(failures, fmt.Sprintf("errors[%d]: line %d, want %d", i, line, want.Line))
			}
		}
	}

	return failures
}

func describeErrors(errs []ir.ValidationError) string {
	var buf strings.Builder
	for i, e := range errs {
		fmt.Fprintf(&buf, "  [%d] %s\n", i, e.Error())
	}
	return buf.String()
}
