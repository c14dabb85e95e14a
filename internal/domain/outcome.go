package domain

import "errors"

// OutcomeKind tags the state carried by an Outcome
type OutcomeKind string

const (
	OutcomeOK       OutcomeKind = "ok"
	OutcomeEmpty    OutcomeKind = "empty"
	OutcomeInvalid  OutcomeKind = "invalid"
	OutcomeNotFound OutcomeKind = "not_found"
)

// Empty-state reasons
const (
	ReasonNoProfiles             = "no_profiles"
	ReasonNoTransactions         = "no_transactions"
	ReasonNoTransactionsInPeriod = "no_transactions_in_period"
)

// Outcome is the result of a core operation. Callers switch on Kind instead of
// inspecting errors: empty and invalid states are expected results, not failures.
type Outcome[T any] struct {
	Kind    OutcomeKind
	Value   T
	Code    string
	Message string
}

// Ok wraps a successful value
func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{Kind: OutcomeOK, Value: value}
}

// Empty reports a valid request that produced nothing to show
func Empty[T any](code, message string) Outcome[T] {
	return Outcome[T]{Kind: OutcomeEmpty, Code: code, Message: message}
}

// Invalid reports rejected input
func Invalid[T any](code, message string) Outcome[T] {
	return Outcome[T]{Kind: OutcomeInvalid, Code: code, Message: message}
}

// NotFound reports a reference to something that does not exist
func NotFound[T any](code, message string) Outcome[T] {
	return Outcome[T]{Kind: OutcomeNotFound, Code: code, Message: message}
}

// IsOK reports whether the outcome carries a value
func (o Outcome[T]) IsOK() bool {
	return o.Kind == OutcomeOK
}

// Recast carries a non-ok outcome over to another value type.
// It must not be used on ok outcomes since the value would be lost.
func Recast[U, T any](o Outcome[T]) Outcome[U] {
	return Outcome[U]{Kind: o.Kind, Code: o.Code, Message: o.Message}
}

// OutcomeFromError converts validation and not-found errors into outcomes.
// The second return value is false for errors that are neither, which callers
// should treat as infrastructure failures.
func OutcomeFromError[T any](err error) (Outcome[T], bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return Invalid[T](verr.Code, verr.Message), true
	}
	var nerr *NotFoundError
	if errors.As(err, &nerr) {
		return NotFound[T](nerr.Code, nerr.Message), true
	}
	return Outcome[T]{}, false
}
