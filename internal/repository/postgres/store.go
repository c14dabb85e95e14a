package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ domain.Store = (*Store)(nil)

// Store implements domain.Store using PostgreSQL JSONB documents
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to PostgreSQL and verifies the connection
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// LoadState returns the account's state document, or nil if none was saved
func (s *Store) LoadState(ctx context.Context, accountID uuid.UUID) ([]byte, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM account_states WHERE account_id = $1`,
		pgUUID(accountID),
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// SaveState upserts the account's state document
func (s *Store) SaveState(ctx context.Context, accountID uuid.UUID, doc []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO account_states (account_id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = NOW()`,
		pgUUID(accountID), doc,
	)
	return err
}

// LoadProfileDocument returns a profile's document, or nil if none was saved
func (s *Store) LoadProfileDocument(ctx context.Context, accountID uuid.UUID, profileID int32) ([]byte, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM profile_documents WHERE account_id = $1 AND profile_id = $2`,
		pgUUID(accountID), profileID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// SaveProfileDocument upserts a profile's document
func (s *Store) SaveProfileDocument(ctx context.Context, accountID uuid.UUID, profileID int32, doc []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profile_documents (account_id, profile_id, document, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id, profile_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = NOW()`,
		pgUUID(accountID), profileID, doc,
	)
	return err
}

// Close releases the connection pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
