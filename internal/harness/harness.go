package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/journal"
	"github.com/roach88/asksort/internal/oracle"
	"github.com/roach88/asksort/internal/preference"
)

// Option configures Run.
type Option func(*runner)

// WithLogger passes a logger to the engine. Defaults to discarding logs.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		r.logger = logger
	}
}

type runner struct {
	journal   *journal.Journal
	logger    *slog.Logger
	sessionID string
}

// SessionID returns the fixed session id used for a scenario, so traces
// are identical across runs.
func SessionID(scenario *Scenario) string {
	return "scenario-" + scenario.Name
}

// Run executes a scenario and returns the result.
//
// Each scenario records into a fresh in-memory journal. The trace is read
// back from the journal, so assertions and golden files see exactly what
// `asksort trace` would print for the same session.
//
// A ranking failure is not a Run error: it is kept in Result.Err for the
// "error" assertion. Run fails only when the scenario cannot be executed.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	j, err := journal.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	r := &runner{
		journal:   j,
		logger:    slog.New(slog.DiscardHandler),
		sessionID: SessionID(scenario),
	}
	for _, opt := range opts {
		opt(r)
	}

	result := NewResult()
	switch scenario.Kind {
	case KindJudgments:
		err = r.runJudgments(ctx, scenario, result)
	default:
		err = r.runRank(ctx, scenario, result)
	}
	if err != nil {
		return nil, err
	}

	trace, err := j.ReadTrace(ctx, r.sessionID)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	result.Trace = trace

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (r *runner) runRank(ctx context.Context, scenario *Scenario, result *Result) error {
	o, err := buildOracle(scenario.Oracle)
	if err != nil {
		return err
	}

	e := engine.New(
		engine.WithLogger(r.logger),
		engine.WithRecorder(r.journal),
		engine.WithSessionIDGenerator(engine.NewFixedGenerator(r.sessionID)),
		engine.WithMaxQueries(scenario.MaxQueries),
	)

	res, err := e.Rank(ctx, ir.Identities(scenario.Items...), o)
	if err != nil {
		result.Err = err
		if engine.IsDuplicateError(err) || isCode(err, engine.ErrCodeEmptyIdentity) {
			// Rejected before the session began; record an empty one so the
			// run still has a trace.
			return r.journal.BeginSession(ctx, engine.Session{ID: r.sessionID})
		}
		return nil
	}
	result.Store = res.Store
	if seq, ok := o.(*oracle.Sequence); ok && seq.Remaining() > 0 {
		result.AddError(fmt.Sprintf("oracle.sequence: %d scripted answers never asked", seq.Remaining()))
	}
	return nil
}

// runJudgments records the scenario's judgments straight into a store,
// reporting every step to the journal the way the engine does.
func (r *runner) runJudgments(ctx context.Context, scenario *Scenario, result *Result) error {
	ids := ir.Identities(scenario.Items...)
	fingerprint, err := ir.SessionFingerprint(ids)
	if err != nil {
		return err
	}

	store := preference.New()
	for _, id := range ids {
		store.Register(id)
	}

	if err := r.journal.BeginSession(ctx, engine.Session{
		ID:            r.sessionID,
		Items:         ids,
		Fingerprint:   fingerprint,
		EngineVersion: ir.EngineVersion,
	}); err != nil {
		return err
	}

	clock := engine.NewClock()
	for i, a := range scenario.Judgments {
		better, worse := ir.NewIdentity(a.Better), ir.NewIdentity(a.Worse)
		rr, err := store.Record(better, worse, true)
		if err != nil {
			return fmt.Errorf("judgments[%d]: %w", i, err)
		}

		if err := r.journal.RecordQuestion(ctx, engine.Question{
			SessionID: r.sessionID,
			Seq:       clock.Next(),
			A:         better,
			B:         worse,
			Answer:    true,
			Judgment:  rr.Judgment,
		}); err != nil {
			return err
		}
		if rr.Contradiction != nil {
			r.logger.Warn("contradictory judgment", "scenario", scenario.Name, "contradiction", rr.Contradiction.String())
			if err := r.journal.RecordContradiction(ctx, engine.ContradictionEvent{
				SessionID:     r.sessionID,
				Seq:           clock.Next(),
				Contradiction: *rr.Contradiction,
			}); err != nil {
				return err
			}
		}
		if len(rr.Inferred) > 0 {
			if err := r.journal.RecordInference(ctx, engine.Inference{
				SessionID: r.sessionID,
				Seq:       clock.Next(),
				Facts:     rr.Inferred,
			}); err != nil {
				return err
			}
		}
	}

	order, _ := store.TotalOrder()
	if err := r.journal.EndSession(ctx, &engine.Result{
		SessionID:      r.sessionID,
		Order:          order,
		Queries:        store.ComparisonCount(),
		Inferred:       store.InferredCount(),
		Contradictions: store.Contradictions(),
		Store:          store,
	}); err != nil {
		return err
	}

	result.Store = store
	return nil
}

func buildOracle(spec *OracleSpec) (engine.Oracle, error) {
	if spec == nil {
		return nil, fmt.Errorf("oracle is required for %s scenarios", KindRank)
	}
	switch spec.Mode {
	case OracleTable:
		t, err := oracle.TableFromEntries(spec.Answers)
		if err != nil {
			return nil, fmt.Errorf("oracle answers: %w", err)
		}
		return t, nil
	case OracleSequence:
		return oracle.NewSequence(spec.Sequence...), nil
	case OracleOrder:
		return oracle.NewOrder(ir.Identities(spec.Order...)...), nil
	default:
		return nil, fmt.Errorf("unknown oracle mode %q", spec.Mode)
	}
}
