// Package journal provides the SQLite audit log of ranking sessions.
//
// A Journal implements engine.Recorder. Each session is written as:
//   - sessions: id, input fingerprint, versions, status and final counts
//   - items: the input identities in input order
//   - questions: every oracle exchange, keyed by a content-addressed id
//   - inferences: facts derived after each question
//   - contradictions: canonical JSON recovery reports
//   - results: the final order
//
// # Critical Patterns
//
// Logical time only:
//   - Events are ordered by the session's seq, sessions by insertion ordinal
//   - No wall-clock columns, so replaying a session reproduces its rows
//
// Idempotent writes:
//   - Every insert uses ON CONFLICT DO NOTHING
//   - Re-recording the same event is harmless
//
// Deterministic reads:
//   - Every query has an ORDER BY; slices are never nil
//
// The journal is written for audit, trace and replay. Ranking never reads
// it back: each session starts from an empty PreferenceStore.
package journal
