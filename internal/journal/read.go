package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/preference"
)

// Errors returned by the read functions.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoSessions      = errors.New("journal has no sessions")
)

// Session status values.
const (
	StatusOpen      = "open"
	StatusCompleted = "completed"
)

// SessionSummary is one row of the sessions table.
type SessionSummary struct {
	ID            string `json:"id"`
	Fingerprint   string `json:"fingerprint"`
	EngineVersion string `json:"engine_version"`
	TraceVersion  string `json:"trace_version"`
	Status        string `json:"status"`

	// Queries and Inferred are zero until the session completes.
	Queries  int `json:"queries"`
	Inferred int `json:"inferred"`
}

const sessionColumns = `id, fingerprint, engine_version, trace_version, status,
	COALESCE(queries, 0), COALESCE(inferred, 0)`

func scanSession(row interface{ Scan(...any) error }) (SessionSummary, error) {
	var s SessionSummary
	err := row.Scan(&s.ID, &s.Fingerprint, &s.EngineVersion, &s.TraceVersion,
		&s.Status, &s.Queries, &s.Inferred)
	return s, err
}

// ListSessions returns every session in the order it was started.
func (j *Journal) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY ordinal ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionSummary{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LatestSession returns the most recently started session.
func (j *Journal) LatestSession(ctx context.Context) (SessionSummary, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY ordinal DESC
		LIMIT 1
	`)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionSummary{}, ErrNoSessions
	}
	if err != nil {
		return SessionSummary{}, fmt.Errorf("query latest session: %w", err)
	}
	return s, nil
}

// ReadSession returns the session with the given id.
func (j *Journal) ReadSession(ctx context.Context, id string) (SessionSummary, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = ?
	`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionSummary{}, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return SessionSummary{}, fmt.Errorf("query session %s: %w", id, err)
	}
	return s, nil
}

// ReadTrace loads everything recorded for a session.
func (j *Journal) ReadTrace(ctx context.Context, id string) (*Trace, error) {
	s, err := j.ReadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	t := &Trace{Session: s}
	if t.Items, err = j.readIdentities(ctx, "items", id); err != nil {
		return nil, err
	}
	if t.Order, err = j.readIdentities(ctx, "results", id); err != nil {
		return nil, err
	}
	if t.Questions, err = j.readQuestions(ctx, id); err != nil {
		return nil, err
	}
	if t.Inferences, err = j.readInferences(ctx, id); err != nil {
		return nil, err
	}
	if t.Contradictions, err = j.readContradictions(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

// readIdentities reads an (session_id, position, identity) table.
// table is one of the package's own table names, never user input.
func (j *Journal) readIdentities(ctx context.Context, table, sessionID string) ([]ir.Identity, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT identity FROM `+table+`
		WHERE session_id = ?
		ORDER BY position ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	ids := []ir.Identity{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		ids = append(ids, ir.Identity(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return ids, nil
}

func (j *Journal) readQuestions(ctx context.Context, sessionID string) ([]engine.Question, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, a, b, answer, winner, loser, judgment_seq
		FROM questions
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	questions := []engine.Question{}
	for rows.Next() {
		var (
			q             engine.Question
			a, b          string
			winner, loser string
		)
		if err := rows.Scan(&q.Seq, &a, &b, &q.Answer, &winner, &loser, &q.Judgment.Seq); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.SessionID = sessionID
		q.A, q.B = ir.Identity(a), ir.Identity(b)
		q.Judgment.Winner, q.Judgment.Loser = ir.Identity(winner), ir.Identity(loser)
		q.Judgment.Source = ir.SourceOracle
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}

func (j *Journal) readInferences(ctx context.Context, sessionID string) ([]engine.Inference, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, winner, loser, source_seq
		FROM inferences
		WHERE session_id = ?
		ORDER BY seq ASC, position ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query inferences: %w", err)
	}
	defer rows.Close()

	inferences := []engine.Inference{}
	for rows.Next() {
		var (
			seq           int64
			winner, loser string
			sourceSeq     int64
		)
		if err := rows.Scan(&seq, &winner, &loser, &sourceSeq); err != nil {
			return nil, fmt.Errorf("scan inference: %w", err)
		}
		fact := ir.Judgment{
			Winner: ir.Identity(winner),
			Loser:  ir.Identity(loser),
			Source: ir.SourceInferred,
			Seq:    sourceSeq,
		}
		if n := len(inferences); n > 0 && inferences[n-1].Seq == seq {
			inferences[n-1].Facts = append(inferences[n-1].Facts, fact)
			continue
		}
		inferences = append(inferences, engine.Inference{
			SessionID: sessionID,
			Seq:       seq,
			Facts:     []ir.Judgment{fact},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inferences: %w", err)
	}
	return inferences, nil
}

func (j *Journal) readContradictions(ctx context.Context, sessionID string) ([]engine.ContradictionEvent, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, report
		FROM contradictions
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query contradictions: %w", err)
	}
	defer rows.Close()

	events := []engine.ContradictionEvent{}
	for rows.Next() {
		var (
			seq    int64
			report string
		)
		if err := rows.Scan(&seq, &report); err != nil {
			return nil, fmt.Errorf("scan contradiction: %w", err)
		}
		var c preference.Contradiction
		if err := json.Unmarshal([]byte(report), &c); err != nil {
			return nil, fmt.Errorf("decode contradiction at seq %d: %w", seq, err)
		}
		events = append(events, engine.ContradictionEvent{
			SessionID:     sessionID,
			Seq:           seq,
			Contradiction: c,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contradictions: %w", err)
	}
	return events, nil
}
