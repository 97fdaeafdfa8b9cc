package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/preference"
)

func TestReadTrace_RoundTrip(t *testing.T) {
	j := createTestJournal(t)
	res := rankInto(t, j, "session-1")

	tr, err := j.ReadTrace(context.Background(), "session-1")
	require.NoError(t, err)

	assert.Equal(t, "session-1", tr.Session.ID)
	assert.Equal(t, StatusCompleted, tr.Session.Status)
	assert.Equal(t, ir.MustSessionFingerprint(ir.Identities("Apple", "Banana", "Carrot")), tr.Session.Fingerprint)
	assert.Equal(t, ir.TraceVersion, tr.Session.TraceVersion)
	assert.Equal(t, 2, tr.Session.Queries)
	assert.Equal(t, 1, tr.Session.Inferred)
	assert.True(t, tr.Completed())

	assert.Equal(t, ir.Identities("Apple", "Banana", "Carrot"), tr.Items)
	assert.Equal(t, res.Order, tr.Order)

	require.Len(t, tr.Questions, 2)
	assert.Equal(t, ir.Identity("Apple"), tr.Questions[0].A)
	assert.Equal(t, ir.Identity("Banana"), tr.Questions[0].B)
	assert.True(t, tr.Questions[0].Answer)
	assert.Equal(t, "Apple > Banana", tr.Questions[0].Judgment.String())
	assert.Equal(t, "Banana > Carrot", tr.Questions[1].Judgment.String())
	assert.Equal(t, ir.SourceOracle, tr.Questions[1].Judgment.Source)
	assert.Equal(t, int64(2), tr.Questions[1].Judgment.Seq)

	require.Len(t, tr.Inferences, 1)
	assert.Equal(t, "Apple > Carrot", tr.Inferences[0].Facts[0].String())
	assert.Equal(t, ir.SourceInferred, tr.Inferences[0].Facts[0].Source)

	assert.Empty(t, tr.Contradictions)
	assert.Equal(t, []bool{true, true}, tr.Answers())
}

func TestReadTrace_EventsInSeqOrder(t *testing.T) {
	j := createTestJournal(t)
	rankInto(t, j, "session-1")

	tr, err := j.ReadTrace(context.Background(), "session-1")
	require.NoError(t, err)

	var kinds []EventKind
	var seqs []int64
	for _, ev := range tr.Events() {
		kinds = append(kinds, ev.Kind)
		seqs = append(seqs, ev.Seq)
	}
	assert.Equal(t, []EventKind{EventQuestion, EventQuestion, EventInference}, kinds)
	assert.Equal(t, []int64{1, 2, 3}, seqs)
}

func TestReadTrace_OpenSession(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.BeginSession(ctx, engine.Session{
		ID:            "open-1",
		Items:         ir.Identities("A", "B"),
		Fingerprint:   "fp",
		EngineVersion: ir.EngineVersion,
	}))

	tr, err := j.ReadTrace(ctx, "open-1")
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, tr.Session.Status)
	assert.False(t, tr.Completed())
	assert.Empty(t, tr.Order)
	assert.NotNil(t, tr.Questions, "slices are never nil")
}

func TestReadTrace_Contradiction(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.BeginSession(ctx, engine.Session{ID: "s", Items: ir.Identities("A", "B", "C"), Fingerprint: "fp"}))

	s := preference.New()
	for _, id := range ir.Identities("A", "B", "C") {
		s.Register(id)
	}
	_, err := s.Record("A", "B", true)
	require.NoError(t, err)
	_, err = s.Record("B", "C", true)
	require.NoError(t, err)
	res, err := s.Record("C", "A", true)
	require.NoError(t, err)
	require.NotNil(t, res.Contradiction)

	require.NoError(t, j.RecordContradiction(ctx, engine.ContradictionEvent{
		SessionID:     "s",
		Seq:           7,
		Contradiction: *res.Contradiction,
	}))

	tr, err := j.ReadTrace(ctx, "s")
	require.NoError(t, err)
	require.Len(t, tr.Contradictions, 1)
	assert.Equal(t, int64(7), tr.Contradictions[0].Seq)
	assert.Equal(t, *res.Contradiction, tr.Contradictions[0].Contradiction)
}

func TestReadSession_NotFound(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.ReadSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = j.ReadTrace(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLatestSession(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.LatestSession(context.Background())
	assert.ErrorIs(t, err, ErrNoSessions)

	rankInto(t, j, "zzz-first")
	rankInto(t, j, "aaa-second")

	latest, err := j.LatestSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "aaa-second", latest.ID, "latest is by insertion, not by id")

	all, err := j.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "zzz-first", all[0].ID)
	assert.Equal(t, "aaa-second", all[1].ID)
}

func TestTrace_CanonicalMap(t *testing.T) {
	j := createTestJournal(t)
	rankInto(t, j, "session-1")

	tr, err := j.ReadTrace(context.Background(), "session-1")
	require.NoError(t, err)

	data, err := ir.MarshalCanonical(tr.CanonicalMap())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"trace_version":"1"`)
	assert.Contains(t, out, `"order":["Apple","Banana","Carrot"]`)
	assert.Contains(t, out, `{"facts":[{"loser":"Carrot","seq":2,"source":"inferred","winner":"Apple"}],"kind":"inference","seq":3}`)
}
