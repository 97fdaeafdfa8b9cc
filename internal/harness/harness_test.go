package harness

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/journal"
	"github.com/roach88/asksort/internal/oracle"
)

func appleScenario() *Scenario {
	return &Scenario{
		Name:        "apple",
		Description: "three fruit",
		Kind:        KindRank,
		Items:       []string{"Apple", "Banana", "Carrot"},
		Oracle: &OracleSpec{
			Mode:  OracleOrder,
			Order: []string{"Apple", "Banana", "Carrot"},
		},
		Assertions: []Assertion{
			{Type: AssertOrder, Expect: []string{"Apple", "Banana", "Carrot"}},
			{Type: AssertQueries, Count: 2},
			{Type: AssertInferred, Count: 1},
		},
	}
}

func TestRun_Rank(t *testing.T) {
	result, err := Run(context.Background(), appleScenario())
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err)
	require.NotNil(t, result.Store)
	assert.True(t, result.Store.Complete())

	trace := result.Trace
	require.NotNil(t, trace)
	assert.Equal(t, "scenario-apple", trace.Session.ID)
	assert.Equal(t, journal.StatusCompleted, trace.Session.Status)
	assert.Equal(t, ir.Identities("Apple", "Banana", "Carrot"), trace.Order)
	assert.Equal(t, []bool{true, true}, trace.Answers())
	require.Len(t, trace.Inferences, 1)
	assert.Equal(t, int64(3), trace.Inferences[0].Seq)
}

func TestRun_AssertionFailure(t *testing.T) {
	scenario := appleScenario()
	scenario.Assertions = []Assertion{
		{Type: AssertQueries, Count: 3},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err, "a failed assertion is not a run error")

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: 3 questions")
	assert.Contains(t, result.Errors[0], "Actual: 2 questions")
}

func TestRun_RankErrorKeptInResult(t *testing.T) {
	scenario := appleScenario()
	scenario.Oracle = &OracleSpec{Mode: OracleSequence, Sequence: []bool{true}}
	scenario.Assertions = []Assertion{
		{Type: AssertError, Code: string(engine.ErrCodeNoAnswer)},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.True(t, engine.IsNoAnswerError(result.Err))
	assert.Nil(t, result.Store)
	assert.Equal(t, journal.StatusOpen, result.Trace.Session.Status)
	assert.Len(t, result.Trace.Questions, 1)
}

func TestRun_UnusedSequenceAnswers(t *testing.T) {
	scenario := appleScenario()
	scenario.Oracle = &OracleSpec{Mode: OracleSequence, Sequence: []bool{true, true, false}}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.NoError(t, result.Err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors, "oracle.sequence: 1 scripted answers never asked")
}

func TestRun_UnexpectedRankError(t *testing.T) {
	scenario := appleScenario()
	scenario.MaxQueries = 1

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.True(t, engine.IsBudgetError(result.Err))
	assert.Contains(t, result.Errors[0], "ranking failed")
}

func TestRun_DuplicateItemsStillTraced(t *testing.T) {
	scenario := appleScenario()
	scenario.Items = []string{"Apple", "Banana", "Apple"}
	scenario.Assertions = []Assertion{
		{Type: AssertError, Code: string(engine.ErrCodeDuplicateIdentity)},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.NotNil(t, result.Trace)
	assert.Equal(t, "scenario-apple", result.Trace.Session.ID)
	assert.Empty(t, result.Trace.Items)
	assert.Empty(t, result.Trace.Questions)
}

func TestRun_Judgments(t *testing.T) {
	scenario := &Scenario{
		Name:        "cycle",
		Description: "a cycle",
		Kind:        KindJudgments,
		Items:       []string{"A", "B", "C"},
		Judgments: []oracle.AnswerEntry{
			{Better: "A", Worse: "B"},
			{Better: "B", Worse: "C"},
			{Better: "C", Worse: "A"},
		},
		Assertions: []Assertion{
			{Type: AssertContradictions, Count: 1},
			{Type: AssertOrder, Expect: []string{"B", "C", "A"}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	trace := result.Trace
	require.Len(t, trace.Contradictions, 1)
	c := trace.Contradictions[0]
	assert.Equal(t, int64(5), c.Seq, "contradiction follows its question")
	assert.Equal(t, "C > A", c.Contradiction.Judgment.String())
	assert.Equal(t, "A > C", c.Contradiction.Conflicting.String())
	require.Len(t, c.Contradiction.Superseded, 1)
	assert.Equal(t, "A > B", c.Contradiction.Superseded[0].String())

	assert.Equal(t, 3, trace.Session.Queries)
	assert.Equal(t, 1, trace.Session.Inferred)
}

func TestRun_JudgmentsIncomplete(t *testing.T) {
	scenario := &Scenario{
		Name:        "partial",
		Description: "not enough judgments for a total order",
		Kind:        KindJudgments,
		Items:       []string{"A", "B", "C"},
		Judgments:   []oracle.AnswerEntry{{Better: "A", Worse: "B"}},
		Assertions: []Assertion{
			{Type: AssertRelation, Pair: []string{"A", "C"}, Relation: "unknown"},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Trace.Order)
}

func TestRun_ConflictingTableIsRunError(t *testing.T) {
	scenario := appleScenario()
	scenario.Oracle = &OracleSpec{
		Mode: OracleTable,
		Answers: []oracle.AnswerEntry{
			{Better: "Apple", Worse: "Banana"},
			{Better: "Banana", Worse: "Apple"},
		},
	}

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.ErrorIs(t, err, oracle.ErrConflictingAnswers)
}

func TestRun_MissingOracle(t *testing.T) {
	scenario := appleScenario()
	scenario.Oracle = nil

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle is required")
}

func TestRun_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(context.Background(), appleScenario(), WithLogger(logger))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "ranking started")
	assert.Contains(t, buf.String(), "session=scenario-apple")
}

func TestRun_Deterministic(t *testing.T) {
	scenario := appleScenario()

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
