package service

import "github.com/granaevo/granaevo-backend/internal/domain"

// toOutcome turns a service result into an Outcome. Validation and not-found
// errors become outcomes; anything else is returned as an error.
func toOutcome[T any](value T, err error) (domain.Outcome[T], error) {
	if err == nil {
		return domain.Ok(value), nil
	}
	if out, ok := domain.OutcomeFromError[T](err); ok {
		return out, nil
	}
	return domain.Outcome[T]{}, err
}
