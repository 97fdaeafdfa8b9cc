package engine

import (
	"errors"
	"fmt"
)

// ErrNoAnswer is returned (wrapped) by an Oracle that cannot produce a
// judgment, e.g. because its input stream closed or its script ran out.
var ErrNoAnswer = errors.New("oracle gave no answer")

// RankError represents a failure of one ranking session.
//
// Rank errors include:
//   - Duplicate identity: two input items share an identity
//   - Empty identity: an input item has an empty name
//   - No answer: the oracle could not answer a required question
//   - Budget exceeded: the session ran out of its question budget
//   - Repeat question: the engine was about to ask an asked pair again
//   - Recorder failure: the journal or trace sink rejected an event
//   - Unsettled: the sorted order disagrees with the store
//
// RankError includes structured fields for diagnostics.
type RankError struct {
	// Code identifies the error category.
	Code RankErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session, if one was started.
	SessionID string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RankErrorCode categorizes rank errors.
type RankErrorCode string

const (
	// ErrCodeDuplicateIdentity indicates two input items share an identity.
	ErrCodeDuplicateIdentity RankErrorCode = "DUPLICATE_IDENTITY"

	// ErrCodeEmptyIdentity indicates an input item with an empty name.
	ErrCodeEmptyIdentity RankErrorCode = "EMPTY_IDENTITY"

	// ErrCodeNoAnswer indicates the oracle failed to answer.
	ErrCodeNoAnswer RankErrorCode = "NO_ANSWER"

	// ErrCodeBudgetExceeded indicates the question budget ran out.
	ErrCodeBudgetExceeded RankErrorCode = "BUDGET_EXCEEDED"

	// ErrCodeRepeatQuestion indicates an asked pair was about to be asked again.
	ErrCodeRepeatQuestion RankErrorCode = "REPEAT_QUESTION"

	// ErrCodeRecorder indicates the Recorder returned an error.
	ErrCodeRecorder RankErrorCode = "RECORDER_FAILED"

	// ErrCodeUnsettled indicates the order produced by the insertion pass
	// disagrees with the recorded judgments.
	ErrCodeUnsettled RankErrorCode = "UNSETTLED"
)

// Error implements the error interface.
func (e *RankError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.SessionID != "" {
		msg = fmt.Sprintf("%s (session=%s)", msg, e.SessionID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RankError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code RankErrorCode) bool {
	var re *RankError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsDuplicateError returns true if the error is a duplicate identity error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateError(err error) bool {
	return hasCode(err, ErrCodeDuplicateIdentity)
}

// IsNoAnswerError returns true if the oracle failed to answer.
// Matches both a RankError with ErrCodeNoAnswer and a bare ErrNoAnswer.
func IsNoAnswerError(err error) bool {
	return hasCode(err, ErrCodeNoAnswer) || errors.Is(err, ErrNoAnswer)
}

// IsBudgetError returns true if the question budget was exceeded.
func IsBudgetError(err error) bool {
	return hasCode(err, ErrCodeBudgetExceeded)
}

// NewDuplicateError creates a RankError for a duplicate input identity.
func NewDuplicateError(identity string, first, second int) *RankError {
	return &RankError{
		Code:    ErrCodeDuplicateIdentity,
		Message: fmt.Sprintf("item %q appears more than once", identity),
		Details: map[string]string{
			"identity": identity,
			"first":    fmt.Sprintf("%d", first),
			"second":   fmt.Sprintf("%d", second),
		},
	}
}

// NewNoAnswerError creates a RankError for an oracle failure on {a, b}.
func NewNoAnswerError(sessionID, a, b string, err error) *RankError {
	return &RankError{
		Code:      ErrCodeNoAnswer,
		Message:   fmt.Sprintf("no answer for %q vs %q", a, b),
		SessionID: sessionID,
		Details:   map[string]string{"a": a, "b": b},
		Err:       err,
	}
}

// NewBudgetError creates a RankError for an exhausted question budget.
// asked is the number of questions answered before the budget ran out.
func NewBudgetError(sessionID string, limit, asked int) *RankError {
	return &RankError{
		Code:      ErrCodeBudgetExceeded,
		Message:   fmt.Sprintf("question budget of %d exhausted", limit),
		SessionID: sessionID,
		Details: map[string]string{
			"limit": fmt.Sprintf("%d", limit),
			"asked": fmt.Sprintf("%d", asked),
		},
	}
}
