package engine

// QuestionBudget caps the number of oracle questions in one session.
//
// A zero or negative limit means unlimited. Without contradictions the
// engine never needs more than n(n-1)/2 questions, so the budget is mainly
// a guard for callers paying per question (scripted oracles, remote
// judges) rather than a correctness mechanism.
type QuestionBudget struct {
	limit   int
	current int
}

// NewQuestionBudget creates a budget with the given limit.
func NewQuestionBudget(limit int) *QuestionBudget {
	return &QuestionBudget{limit: limit}
}

// Spend accounts for one question. It returns false, without spending,
// when the budget is already exhausted.
func (b *QuestionBudget) Spend() bool {
	if b.limit > 0 && b.current >= b.limit {
		return false
	}
	b.current++
	return true
}

// Used returns the number of questions spent.
func (b *QuestionBudget) Used() int {
	return b.current
}

// Limit returns the configured limit (0 = unlimited).
func (b *QuestionBudget) Limit() int {
	return b.limit
}
