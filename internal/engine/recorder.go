package engine

import (
	"context"

	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/preference"
)

// Session describes a ranking session when it begins.
type Session struct {
	ID            string        `json:"id"`
	Items         []ir.Identity `json:"items"`
	Fingerprint   string        `json:"fingerprint"`
	EngineVersion string        `json:"engine_version"`
}

// Question is one oracle exchange.
type Question struct {
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`

	// A and B are the identities in the order they were put to the oracle:
	// "Is A better than B?".
	A ir.Identity `json:"a"`
	B ir.Identity `json:"b"`

	// Answer is the oracle's reply to "Is A better than B?".
	Answer bool `json:"answer"`

	// Judgment is the resulting direct judgment.
	Judgment ir.Judgment `json:"judgment"`
}

// Inference is the batch of facts derived from one question.
type Inference struct {
	SessionID string        `json:"session_id"`
	Seq       int64         `json:"seq"`
	Facts     []ir.Judgment `json:"facts"`
}

// ContradictionEvent wraps a contradiction with its logical time.
type ContradictionEvent struct {
	SessionID     string                   `json:"session_id"`
	Seq           int64                    `json:"seq"`
	Contradiction preference.Contradiction `json:"contradiction"`
}

// Recorder observes a ranking session.
//
// Implemented by the SQLite journal. Every event carries its session id, so
// one Recorder can observe several sessions. An error from any method
// aborts the session with ErrCodeRecorder.
type Recorder interface {
	BeginSession(ctx context.Context, s Session) error
	RecordQuestion(ctx context.Context, q Question) error
	RecordInference(ctx context.Context, inf Inference) error
	RecordContradiction(ctx context.Context, c ContradictionEvent) error
	EndSession(ctx context.Context, r *Result) error
}

// nopRecorder discards every event.
type nopRecorder struct{}

func (nopRecorder) BeginSession(context.Context, Session) error                  { return nil }
func (nopRecorder) RecordQuestion(context.Context, Question) error               { return nil }
func (nopRecorder) RecordInference(context.Context, Inference) error             { return nil }
func (nopRecorder) RecordContradiction(context.Context, ContradictionEvent) error { return nil }
func (nopRecorder) EndSession(context.Context, *Result) error                     { return nil }
