package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ErrAnonymousToken is returned for Supabase anon-role tokens
var ErrAnonymousToken = errors.New("anonymous tokens are not accepted")

// CustomClaims contains the custom claims from a Supabase access token
type CustomClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	if c.Role == "anon" {
		return ErrAnonymousToken
	}
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// AccountIDKey is the context key for the account id (token subject)
	AccountIDKey contextKey = "account_id"
)

// TokenValidator is implemented by *validator.Validator
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// NewSupabaseValidator builds a validator for Supabase Auth access tokens,
// which are HS256-signed with the project's JWT secret
func NewSupabaseValidator(secret, issuer, audience string) (*validator.Validator, error) {
	key := []byte(secret)
	return validator.New(
		func(ctx context.Context) (interface{}, error) { return key, nil },
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(v TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: v}
}

// Authenticate returns an Echo middleware that validates bearer tokens and
// stores the account id in the request context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return unauthorizedError(c, "invalid authorization header format")
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return unauthorizedError(c, "invalid claims")
			}

			accountID, err := uuid.Parse(validatedClaims.RegisteredClaims.Subject)
			if err != nil {
				log.Debug().Str("subject", validatedClaims.RegisteredClaims.Subject).Msg("Token subject is not an account id")
				return unauthorizedError(c, "invalid token subject")
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validatedClaims)
			ctx = context.WithValue(ctx, AccountIDKey, accountID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetAccountID extracts the account id from the context
func GetAccountID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(AccountIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}
