package journal

import (
	"context"
	"fmt"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
)

var _ engine.Recorder = (*Journal)(nil)

// BeginSession records a new session and its input items.
func (j *Journal) BeginSession(ctx context.Context, s engine.Session) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, fingerprint, engine_version, trace_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, s.ID, s.Fingerprint, s.EngineVersion, ir.TraceVersion)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}

	for i, id := range s.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (session_id, position, identity)
			VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`, s.ID, i, string(id))
		if err != nil {
			return fmt.Errorf("begin session: item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// RecordQuestion records one oracle exchange. The row id is content
// addressed from the session id and the judgment, so a duplicate write is
// ignored.
func (j *Journal) RecordQuestion(ctx context.Context, q engine.Question) error {
	id, err := ir.JudgmentID(q.SessionID, q.Judgment)
	if err != nil {
		return fmt.Errorf("record question: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO questions
		(id, session_id, seq, a, b, answer, winner, loser, judgment_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		id,
		q.SessionID,
		q.Seq,
		string(q.A),
		string(q.B),
		q.Answer,
		string(q.Judgment.Winner),
		string(q.Judgment.Loser),
		q.Judgment.Seq,
	)
	if err != nil {
		return fmt.Errorf("record question: %w", err)
	}
	return nil
}

// RecordInference records the facts derived from one question.
func (j *Journal) RecordInference(ctx context.Context, inf engine.Inference) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record inference: %w", err)
	}
	defer tx.Rollback()

	for i, f := range inf.Facts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO inferences (session_id, seq, position, winner, loser, source_seq)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, inf.SessionID, inf.Seq, i, string(f.Winner), string(f.Loser), f.Seq)
		if err != nil {
			return fmt.Errorf("record inference: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record inference: %w", err)
	}
	return nil
}

// RecordContradiction stores the recovery report as canonical JSON.
func (j *Journal) RecordContradiction(ctx context.Context, c engine.ContradictionEvent) error {
	report, err := ir.MarshalCanonical(c.Contradiction.CanonicalMap())
	if err != nil {
		return fmt.Errorf("record contradiction: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO contradictions (session_id, seq, report)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, c.SessionID, c.Seq, string(report))
	if err != nil {
		return fmt.Errorf("record contradiction: %w", err)
	}
	return nil
}

// EndSession marks a session completed and stores its final order.
func (j *Journal) EndSession(ctx context.Context, r *engine.Result) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE sessions SET status = 'completed', queries = ?, inferred = ?
		WHERE id = ?
	`, r.Queries, r.Inferred, r.SessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("end session %s: %w", r.SessionID, ErrSessionNotFound)
	}

	for i, id := range r.Order {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO results (session_id, position, identity)
			VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`, r.SessionID, i, string(id))
		if err != nil {
			return fmt.Errorf("end session: result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}
