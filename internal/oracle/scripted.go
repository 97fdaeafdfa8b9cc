package oracle

import (
	"context"
	"fmt"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
)

// Table answers from a set of recorded judgments keyed by unordered pair,
// so "A vs B" and "B vs A" share one entry.
type Table struct {
	winners map[ir.Pair]ir.Identity
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{winners: make(map[ir.Pair]ir.Identity)}
}

// Set records that better is preferred over worse, replacing any earlier
// answer for the pair.
func (t *Table) Set(better, worse ir.Identity) error {
	if better == worse {
		return fmt.Errorf("answer compares %q with itself", better)
	}
	t.winners[ir.MakePair(better, worse)] = better
	return nil
}

// Lookup returns the recorded winner of {a, b}.
func (t *Table) Lookup(a, b ir.Identity) (ir.Identity, bool) {
	w, ok := t.winners[ir.MakePair(a, b)]
	return w, ok
}

// Len returns the number of recorded pairs.
func (t *Table) Len() int {
	return len(t.winners)
}

// Ask implements engine.Oracle.
func (t *Table) Ask(_ context.Context, a, b ir.Identity) (bool, error) {
	w, ok := t.Lookup(a, b)
	if !ok {
		return false, fmt.Errorf("no recorded answer for %s vs %s: %w", a, b, engine.ErrNoAnswer)
	}
	return w == a, nil
}

// Sequence returns scripted answers in order, whatever the question.
// Replay feeds it the answers of a journaled session.
type Sequence struct {
	answers []bool
	next    int
}

// NewSequence creates a Sequence over answers.
func NewSequence(answers ...bool) *Sequence {
	return &Sequence{answers: answers}
}

// Remaining returns the number of unused answers.
func (s *Sequence) Remaining() int {
	return len(s.answers) - s.next
}

// Ask implements engine.Oracle.
func (s *Sequence) Ask(_ context.Context, a, b ir.Identity) (bool, error) {
	if s.next >= len(s.answers) {
		return false, fmt.Errorf("script exhausted after %d answers at %s vs %s: %w",
			len(s.answers), a, b, engine.ErrNoAnswer)
	}
	answer := s.answers[s.next]
	s.next++
	return answer, nil
}

// Order answers from a fixed best-first ranking.
type Order struct {
	rank map[ir.Identity]int
}

// NewOrder creates an Order oracle; best is listed most preferred first.
func NewOrder(best ...ir.Identity) *Order {
	rank := make(map[ir.Identity]int, len(best))
	for i, id := range best {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}
	return &Order{rank: rank}
}

// Ask implements engine.Oracle.
func (o *Order) Ask(_ context.Context, a, b ir.Identity) (bool, error) {
	ra, okA := o.rank[a]
	rb, okB := o.rank[b]
	if !okA || !okB {
		return false, fmt.Errorf("%s vs %s not covered by order: %w", a, b, engine.ErrNoAnswer)
	}
	return ra < rb, nil
}
