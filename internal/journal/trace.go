package journal

import (
	"slices"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
)

// Trace is everything the journal holds for one session.
type Trace struct {
	Session        SessionSummary
	Items          []ir.Identity
	Questions      []engine.Question
	Inferences     []engine.Inference
	Contradictions []engine.ContradictionEvent

	// Order is empty unless the session completed.
	Order []ir.Identity
}

// EventKind names a trace event.
type EventKind string

const (
	EventQuestion      EventKind = "question"
	EventInference     EventKind = "inference"
	EventContradiction EventKind = "contradiction"
)

// Event is one trace entry; exactly one of the pointers is set.
type Event struct {
	Seq           int64
	Kind          EventKind
	Question      *engine.Question
	Inference     *engine.Inference
	Contradiction *engine.ContradictionEvent
}

// Events merges questions, inferences and contradictions in seq order.
func (t *Trace) Events() []Event {
	events := make([]Event, 0, len(t.Questions)+len(t.Inferences)+len(t.Contradictions))
	for i := range t.Questions {
		q := &t.Questions[i]
		events = append(events, Event{Seq: q.Seq, Kind: EventQuestion, Question: q})
	}
	for i := range t.Inferences {
		inf := &t.Inferences[i]
		events = append(events, Event{Seq: inf.Seq, Kind: EventInference, Inference: inf})
	}
	for i := range t.Contradictions {
		c := &t.Contradictions[i]
		events = append(events, Event{Seq: c.Seq, Kind: EventContradiction, Contradiction: c})
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	return events
}

// Answers returns the oracle's answers in the order they were given.
func (t *Trace) Answers() []bool {
	answers := make([]bool, len(t.Questions))
	for i, q := range t.Questions {
		answers[i] = q.Answer
	}
	return answers
}

// Completed reports whether the session ended with a result.
func (t *Trace) Completed() bool {
	return t.Session.Status == StatusCompleted
}

// CanonicalMap converts the trace for canonical JSON output. The layout is
// stable across builds with the same TraceVersion, which is what golden
// files compare.
func (t *Trace) CanonicalMap() map[string]any {
	events := make([]any, 0)
	for _, ev := range t.Events() {
		m := map[string]any{
			"seq":  ev.Seq,
			"kind": string(ev.Kind),
		}
		switch ev.Kind {
		case EventQuestion:
			m["a"] = ev.Question.A
			m["b"] = ev.Question.B
			m["answer"] = ev.Question.Answer
			m["judgment"] = ev.Question.Judgment
		case EventInference:
			m["facts"] = ev.Inference.Facts
		case EventContradiction:
			m["contradiction"] = ev.Contradiction.Contradiction.CanonicalMap()
		}
		events = append(events, m)
	}

	order := t.Order
	if order == nil {
		order = []ir.Identity{}
	}
	items := t.Items
	if items == nil {
		items = []ir.Identity{}
	}

	return map[string]any{
		"trace_version": t.Session.TraceVersion,
		"session": map[string]any{
			"id":             t.Session.ID,
			"fingerprint":    t.Session.Fingerprint,
			"engine_version": t.Session.EngineVersion,
			"status":         t.Session.Status,
			"items":          items,
		},
		"events": events,
		"result": map[string]any{
			"order":    order,
			"queries":  t.Session.Queries,
			"inferred": t.Session.Inferred,
		},
	}
}
