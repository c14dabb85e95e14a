package websocket

import (
	"context"
	"errors"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// TokenValidator is the subset of validator.Validator used for websocket auth
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// JWTValidator authenticates websocket connections. The token arrives as a
// query parameter since browsers cannot set headers on the upgrade request.
type JWTValidator struct {
	validator TokenValidator
}

// NewJWTValidator wraps a configured validator, normally the one shared with
// the HTTP auth middleware
func NewJWTValidator(v TokenValidator) *JWTValidator {
	return &JWTValidator{validator: v}
}

// ValidateToken validates a JWT and returns the account it belongs to
func (v *JWTValidator) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	accountID, err := uuid.Parse(validatedClaims.RegisteredClaims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return accountID, nil
}
