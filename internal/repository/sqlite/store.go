// Package sqlite is the single-file document store used for local
// development and self-hosted installs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

var _ domain.Store = (*Store)(nil)

// Store implements domain.Store on a SQLite file
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database at dbPath and migrates it
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer; the session manager already serializes per account
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("SQLite store ready")
	return &Store{db: db}, nil
}

// LoadState returns the account's state document, or nil if none was saved
func (s *Store) LoadState(ctx context.Context, accountID uuid.UUID) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM account_states WHERE account_id = ?`,
		accountID.String(),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// SaveState upserts the account's state document
func (s *Store) SaveState(ctx context.Context, accountID uuid.UUID, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_states (account_id, document, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (account_id) DO UPDATE
		SET document = excluded.document, updated_at = CURRENT_TIMESTAMP`,
		accountID.String(), string(doc),
	)
	return err
}

// LoadProfileDocument returns a profile's document, or nil if none was saved
func (s *Store) LoadProfileDocument(ctx context.Context, accountID uuid.UUID, profileID int32) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM profile_documents WHERE account_id = ? AND profile_id = ?`,
		accountID.String(), profileID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// SaveProfileDocument upserts a profile's document
func (s *Store) SaveProfileDocument(ctx context.Context, accountID uuid.UUID, profileID int32, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_documents (account_id, profile_id, document, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (account_id, profile_id) DO UPDATE
		SET document = excluded.document, updated_at = CURRENT_TIMESTAMP`,
		accountID.String(), profileID, string(doc),
	)
	return err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
