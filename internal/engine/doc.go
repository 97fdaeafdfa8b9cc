// Package engine implements the asksort RankingEngine.
//
// The engine turns an ordered sequence of item identities and an Oracle into
// a total preference order, asking the oracle only when the session's
// PreferenceStore cannot answer a comparison from memory.
//
// ARCHITECTURE:
//
// Comparator with side effects:
// The sort routine calls greaterThan(a, b). greaterThan first queries the
// store; only on Unknown does it call Oracle.Ask, record the answer, and let
// the store extend its closure. A comparison can therefore block on a human
// and mutate shared state between two comparator calls.
//
// Sort routine:
// Binary insertion sort. It needs close to log2(n!) comparator calls, which
// is what matters when every uncached call is a question to a person, and it
// only relies on the comparator being consistent with what it answered
// before, which the closed store guarantees.
//
// Contradictions:
// The engine only asks about pairs the store reports Unknown, and a pair is
// Unknown exactly when neither direction is derivable, so its own questions
// can never contradict the store. Contradiction recovery lives in package
// preference for callers that record judgments directly. After the pass the
// engine still checks every adjacent pair against the store and fails with
// ErrCodeUnsettled rather than return an order the store disagrees with.
//
// CRITICAL PATTERNS:
//
// One store per session:
// Rank creates a fresh preference.Store for every call. Nothing is shared
// across sessions, so concurrent Rank calls on one Engine need no locking
// as long as their oracles and recorders are independent.
//
// Never ask twice:
// Every asked pair stays known for the rest of the session (see package
// preference). askGuard enforces this and fails the session with
// ErrCodeRepeatQuestion if it were ever violated.
//
// Logical clock:
// Every question, inference batch and contradiction reported to the
// Recorder is stamped with a seq from Clock.Next(). No wall-clock time.
package engine
