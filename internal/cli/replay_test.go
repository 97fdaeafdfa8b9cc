package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/journal"
)

func TestReplayMatches(t *testing.T) {
	dbPath := fruitJournal(t, "session-1")

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "", "--journal", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Replay of Session: session-1\n")
	assert.Contains(t, out, "  Questions: 2\n")
	assert.Contains(t, out, "✓ Replay matches the recorded session")
}

func TestReplayVerboseListsOrder(t *testing.T) {
	dbPath := fruitJournal(t, "session-1")

	cmd := NewReplayCommand(&RootOptions{Format: "text", Verbose: true})
	out, _, err := execute(cmd, "", "--journal", dbPath, "--session", "session-1")
	require.NoError(t, err)

	assert.Contains(t, out, "  1. Apple\n  2. Banana\n  3. Carrot\n")
}

func TestReplayJSON(t *testing.T) {
	dbPath := fruitJournal(t, "session-1")

	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, "", "--journal", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Deterministic)
	assert.Equal(t, "session-1", resp.Data.SessionID)
	assert.Equal(t, []string{"Apple", "Banana", "Carrot"}, resp.Data.Order)
	assert.Equal(t, 2, resp.Data.Queries)
	assert.Empty(t, resp.Data.Mismatch)
}

func TestReplayLeavesJournalUntouched(t *testing.T) {
	dbPath := fruitJournal(t, "session-1")

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, "", "--journal", dbPath)
	require.NoError(t, err)

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	sessions, err := j.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestReplayDiverged(t *testing.T) {
	dbPath := divergentJournal(t)

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "", "--journal", dbPath)
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Replay diverged: question 1: recorded Banana vs Apple, replayed Apple vs Banana")
}

func TestReplayDivergedJSON(t *testing.T) {
	dbPath := divergentJournal(t)

	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, "", "--journal", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
		Error  *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_DETERMINISM", resp.Error.Code)
	assert.False(t, resp.Data.Deterministic)
}

func TestReplayIncompleteSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "asksort.db")
	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	beginFruitSession(t, j, "open-1")
	require.NoError(t, j.Close())

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	_, _, err = execute(cmd, "", "--journal", dbPath)
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "did not complete")
}

func TestReplayEmptyJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	_, _, err = execute(cmd, "", "--journal", dbPath)
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no sessions")
}

func TestReplayNonExistentJournal(t *testing.T) {
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, "", "--journal", "/nonexistent/path/asksort.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompareTraces_FingerprintDiffers(t *testing.T) {
	a := &journal.Trace{Session: journal.SessionSummary{ID: "s", Fingerprint: "aaa"}}
	b := &journal.Trace{Session: journal.SessionSummary{ID: "s", Fingerprint: "bbb"}}

	mismatch, err := compareTraces(a, b)
	require.NoError(t, err)
	assert.Equal(t, "input fingerprint differs", mismatch)
}

func TestCompareTraces_QuestionCount(t *testing.T) {
	q := engine.Question{SessionID: "s", Seq: 1, A: "Apple", B: "Banana", Answer: true}
	a := &journal.Trace{Session: journal.SessionSummary{ID: "s"}, Questions: []engine.Question{q}}
	b := &journal.Trace{Session: journal.SessionSummary{ID: "s"}}

	mismatch, err := compareTraces(a, b)
	require.NoError(t, err)
	assert.Equal(t, "recorded 1 questions, replayed 0", mismatch)
}

// divergentJournal records a completed session whose only question was
// put as "Is Banana better than Apple?", which a replay never asks.
func divergentJournal(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "asksort.db")
	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	beginFruitSession(t, j, "s1")
	apple, banana := ir.NewIdentity("Apple"), ir.NewIdentity("Banana")
	require.NoError(t, j.RecordQuestion(ctx, engine.Question{
		SessionID: "s1",
		Seq:       1,
		A:         banana,
		B:         apple,
		Answer:    false,
		Judgment:  ir.NewJudgment(banana, apple, false, ir.SourceOracle, 1),
	}))
	require.NoError(t, j.EndSession(ctx, &engine.Result{
		SessionID: "s1",
		Order:     []ir.Identity{apple, banana},
		Queries:   1,
	}))
	return dbPath
}
