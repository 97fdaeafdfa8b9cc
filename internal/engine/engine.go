package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/preference"
)

// Engine is the RankingEngine.
//
// An Engine holds configuration only. Every Rank call runs an independent
// session with its own PreferenceStore, clock and question budget.
type Engine struct {
	logger     *slog.Logger
	recorder   Recorder
	sessionGen SessionIDGenerator
	maxQueries int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. Defaults to discarding all logs.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRecorder sets the session observer (journal, trace collector).
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithSessionIDGenerator overrides the UUIDv7 session id generator.
func WithSessionIDGenerator(gen SessionIDGenerator) EngineOption {
	return func(e *Engine) {
		e.sessionGen = gen
	}
}

// WithMaxQueries caps the number of oracle questions per session.
// Zero (the default) means unlimited.
func WithMaxQueries(n int) EngineOption {
	return func(e *Engine) {
		e.maxQueries = n
	}
}

// New creates an Engine with the given options.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:     slog.New(slog.DiscardHandler),
		recorder:   nopRecorder{},
		sessionGen: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one ranking session.
type Result struct {
	SessionID string `json:"session_id"`

	// Order lists the identities from most to least preferred.
	Order []ir.Identity `json:"order"`

	// Queries is the number of oracle invocations.
	Queries int `json:"queries"`

	// Inferred is the number of pairs in the final store that were derived
	// rather than asked.
	Inferred int `json:"inferred"`

	// Contradictions lists every contradiction the store recovered from.
	Contradictions []preference.Contradiction `json:"contradictions"`

	// Store is the session's PreferenceStore at the end of ranking.
	Store *preference.Store `json:"-"`
}

// Rank orders identities from most to least preferred, asking oracle only
// for comparisons the session's store cannot answer.
//
// identities must be non-empty strings and unique; duplicates are rejected
// before any question is asked. Oracle failures are returned as a RankError
// with ErrCodeNoAnswer.
func (e *Engine) Rank(ctx context.Context, identities []ir.Identity, oracle Oracle) (*Result, error) {
	if err := validateIdentities(identities); err != nil {
		return nil, err
	}

	fingerprint, err := ir.SessionFingerprint(identities)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	r := &ranking{
		id:       e.sessionGen.Generate(),
		store:    preference.New(),
		oracle:   oracle,
		recorder: e.recorder,
		logger:   e.logger,
		clock:    NewClock(),
		guard:    newAskGuard(),
		budget:   NewQuestionBudget(e.maxQueries),
	}
	for _, id := range identities {
		r.store.Register(id)
	}

	if err := r.recorder.BeginSession(ctx, Session{
		ID:            r.id,
		Items:         slices.Clone(identities),
		Fingerprint:   fingerprint,
		EngineVersion: ir.EngineVersion,
	}); err != nil {
		return nil, r.recorderError(err)
	}

	r.logger.Info("ranking started", "session", r.id, "items", len(identities))

	order, err := r.insertionPass(ctx, identities)
	if err != nil {
		return nil, err
	}
	if !r.settled(order) {
		return nil, &RankError{
			Code:      ErrCodeUnsettled,
			Message:   "sorted order disagrees with recorded judgments",
			SessionID: r.id,
		}
	}

	res := &Result{
		SessionID:      r.id,
		Order:          order,
		Queries:        r.store.ComparisonCount(),
		Inferred:       r.store.InferredCount(),
		Contradictions: r.store.Contradictions(),
		Store:          r.store,
	}

	if err := r.recorder.EndSession(ctx, res); err != nil {
		return nil, r.recorderError(err)
	}

	r.logger.Info("ranking finished",
		"session", r.id,
		"queries", res.Queries,
		"inferred", res.Inferred,
		"contradictions", len(res.Contradictions),
		"events", r.clock.Current(),
	)

	return res, nil
}

// validateIdentities rejects empty and duplicate identities.
func validateIdentities(ids []ir.Identity) error {
	seen := make(map[ir.Identity]int, len(ids))
	for i, id := range ids {
		if id == "" {
			return &RankError{
				Code:    ErrCodeEmptyIdentity,
				Message: fmt.Sprintf("item %d has an empty name", i+1),
			}
		}
		if first, ok := seen[id]; ok {
			return NewDuplicateError(string(id), first+1, i+1)
		}
		seen[id] = i
	}
	return nil
}

// ranking is the state of one Rank call.
type ranking struct {
	id       string
	store    *preference.Store
	oracle   Oracle
	recorder Recorder
	logger   *slog.Logger
	clock    *Clock
	guard    *askGuard
	budget   *QuestionBudget
}

// insertionPass binary-inserts each identity of order into a new sequence,
// best first. The comparator asks "is the placed item better than the new
// one?", so questions follow the input order: Apple, Banana, Carrot asks
// "Apple vs Banana" before "Banana vs Carrot".
func (r *ranking) insertionPass(ctx context.Context, order []ir.Identity) ([]ir.Identity, error) {
	sorted := make([]ir.Identity, 0, len(order))
	for _, item := range order {
		lo, hi := 0, len(sorted)
		for lo < hi {
			mid := int(uint(lo+hi) >> 1)
			better, err := r.greaterThan(ctx, sorted[mid], item)
			if err != nil {
				return nil, err
			}
			if better {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		sorted = slices.Insert(sorted, lo, item)
	}
	return sorted, nil
}

// settled reports whether every adjacent pair of order is known Greater,
// which in a closed store means every earlier item beats every later one.
func (r *ranking) settled(order []ir.Identity) bool {
	for i := 0; i+1 < len(order); i++ {
		if r.store.Query(order[i], order[i+1]) != ir.Greater {
			return false
		}
	}
	return true
}

// greaterThan is the sort comparator: memory first, oracle on a miss.
func (r *ranking) greaterThan(ctx context.Context, a, b ir.Identity) (bool, error) {
	switch r.store.Query(a, b) {
	case ir.Greater:
		return true, nil
	case ir.Lesser:
		return false, nil
	}
	return r.ask(ctx, a, b)
}

func (r *ranking) ask(ctx context.Context, a, b ir.Identity) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("rank session %s: %w", r.id, err)
	}
	if r.guard.WouldRepeat(a, b) {
		return false, &RankError{
			Code:      ErrCodeRepeatQuestion,
			Message:   fmt.Sprintf("pair %s already asked", ir.MakePair(a, b)),
			SessionID: r.id,
		}
	}
	if !r.budget.Spend() {
		return false, NewBudgetError(r.id, r.budget.Limit(), r.budget.Used())
	}

	answer, err := r.oracle.Ask(ctx, a, b)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("rank session %s: %w", r.id, ctxErr)
		}
		return false, NewNoAnswerError(r.id, string(a), string(b), err)
	}
	r.guard.Record(a, b)

	res, err := r.store.Record(a, b, answer)
	if err != nil {
		return false, fmt.Errorf("record %s vs %s: %w", a, b, err)
	}

	q := Question{SessionID: r.id, Seq: r.clock.Next(), A: a, B: b, Answer: answer, Judgment: res.Judgment}
	r.logger.Debug("oracle answered",
		"session", r.id,
		"seq", q.Seq,
		"judgment", res.Judgment.String(),
	)
	if err := r.recorder.RecordQuestion(ctx, q); err != nil {
		return false, r.recorderError(err)
	}

	if res.Contradiction != nil {
		c := res.Contradiction
		ev := ContradictionEvent{SessionID: r.id, Seq: r.clock.Next(), Contradiction: *c}
		r.logger.Warn("contradictory answer, trusting the newer judgment",
			"session", r.id,
			"seq", ev.Seq,
			"judgment", c.Judgment.String(),
			"conflicts_with", c.Conflicting.String(),
			"superseded", len(c.Superseded),
			"retracted", len(c.Retracted),
		)
		if err := r.recorder.RecordContradiction(ctx, ev); err != nil {
			return false, r.recorderError(err)
		}
	}

	if len(res.Inferred) > 0 {
		inf := Inference{SessionID: r.id, Seq: r.clock.Next(), Facts: res.Inferred}
		r.logger.Debug("facts inferred",
			"session", r.id,
			"seq", inf.Seq,
			"count", len(res.Inferred),
		)
		if err := r.recorder.RecordInference(ctx, inf); err != nil {
			return false, r.recorderError(err)
		}
	}

	return answer, nil
}

func (r *ranking) recorderError(err error) *RankError {
	return &RankError{
		Code:      ErrCodeRecorder,
		Message:   "recorder rejected event",
		SessionID: r.id,
		Err:       err,
	}
}
