package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// stubValidator is a test double for TokenValidator
type stubValidator struct {
	claims interface{}
	err    error
}

func (s *stubValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	return s.claims, s.err
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	accountID := uuid.New()

	tests := []struct {
		name    string
		stub    *stubValidator
		want    uuid.UUID
		wantErr bool
	}{
		{
			name: "valid token",
			stub: &stubValidator{claims: &validator.ValidatedClaims{
				RegisteredClaims: validator.RegisteredClaims{Subject: accountID.String()},
			}},
			want: accountID,
		},
		{
			name:    "validator rejects token",
			stub:    &stubValidator{err: errors.New("expired")},
			wantErr: true,
		},
		{
			name:    "unexpected claims type",
			stub:    &stubValidator{claims: "nope"},
			wantErr: true,
		},
		{
			name: "subject is not a uuid",
			stub: &stubValidator{claims: &validator.ValidatedClaims{
				RegisteredClaims: validator.RegisteredClaims{Subject: "user-123"},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewJWTValidator(tt.stub)
			got, err := v.ValidateToken(context.Background(), "token")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Equal(t, uuid.Nil, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJWTValidator_RealValidatorRejectsGarbage(t *testing.T) {
	v, err := validator.New(
		func(ctx context.Context) (interface{}, error) { return []byte("secret"), nil },
		validator.HS256,
		"https://example.supabase.co/auth/v1",
		[]string{"authenticated"},
	)
	assert.NoError(t, err)

	accountID, err := NewJWTValidator(v).ValidateToken(context.Background(), "invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, uuid.Nil, accountID)
}
