package harness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/journal"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Trace    *journal.Trace // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Trace != nil && len(e.Trace.Questions) > 0 {
		fmt.Fprintf(&buf, "\nQuestions asked:\n")
		for _, q := range e.Trace.Questions {
			fmt.Fprintf(&buf, "  [%d] %s vs %s -> %t\n", q.Seq, q.A, q.B, q.Answer)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns failure messages.
// A ranking error fails the run unless an "error" assertion expects it.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	expectsError := false
	for _, a := range assertions {
		if a.Type == AssertError {
			expectsError = true
		}
	}
	if result.Err != nil && !expectsError {
		errs = append(errs, fmt.Sprintf("ranking failed: %v", result.Err))
	}

	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	trace := result.Trace
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: trace}
	}

	switch a.Type {
	case AssertOrder:
		got := ir.Names(trace.Order)
		want := ir.Names(ir.Identities(a.Expect...))
		if !slices.Equal(got, want) {
			return fail(fmt.Sprintf("order %v", want), fmt.Sprintf("order %v", got))
		}

	case AssertQueries:
		if n := len(trace.Questions); n != a.Count {
			return fail(fmt.Sprintf("%d questions", a.Count), fmt.Sprintf("%d questions", n))
		}

	case AssertQueriesAtMost:
		if n := len(trace.Questions); n > a.Count {
			return fail(fmt.Sprintf("at most %d questions", a.Count), fmt.Sprintf("%d questions", n))
		}

	case AssertInferred:
		if trace.Session.Inferred != a.Count {
			return fail(fmt.Sprintf("%d inferred facts", a.Count), fmt.Sprintf("%d inferred facts", trace.Session.Inferred))
		}

	case AssertContradictions:
		if n := len(trace.Contradictions); n != a.Count {
			return fail(fmt.Sprintf("%d contradictions", a.Count), fmt.Sprintf("%d contradictions", n))
		}

	case AssertAsked, AssertNeverAsked:
		if len(a.Pair) != 2 {
			return fmt.Errorf("%s needs a pair of two items", a.Type)
		}
		want := ir.MakePair(ir.NewIdentity(a.Pair[0]), ir.NewIdentity(a.Pair[1]))
		asked := slices.ContainsFunc(trace.Questions, func(q engine.Question) bool {
			return ir.MakePair(q.A, q.B) == want
		})
		if a.Type == AssertAsked && !asked {
			return fail(fmt.Sprintf("%s asked", want), "never asked")
		}
		if a.Type == AssertNeverAsked && asked {
			return fail(fmt.Sprintf("%s never asked", want), "asked")
		}

	case AssertRelation:
		if len(a.Pair) != 2 {
			return fmt.Errorf("%s needs a pair of two items", a.Type)
		}
		if result.Store == nil {
			return fail(fmt.Sprintf("%s %s %s", a.Pair[0], a.Relation, a.Pair[1]), "no store: ranking failed")
		}
		rel := result.Store.Query(ir.NewIdentity(a.Pair[0]), ir.NewIdentity(a.Pair[1]))
		if rel.String() != a.Relation {
			return fail(
				fmt.Sprintf("%s %s %s", a.Pair[0], a.Relation, a.Pair[1]),
				fmt.Sprintf("%s %s %s", a.Pair[0], rel, a.Pair[1]),
			)
		}

	case AssertError:
		if result.Err == nil {
			return fail(fmt.Sprintf("error %s", a.Code), "ranking succeeded")
		}
		if !isCode(result.Err, engine.RankErrorCode(a.Code)) {
			return fail(fmt.Sprintf("error %s", a.Code), result.Err.Error())
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}

	return nil
}

func isCode(err error, code engine.RankErrorCode) bool {
	var re *engine.RankError
	return errors.As(err, &re) && re.Code == code
}
