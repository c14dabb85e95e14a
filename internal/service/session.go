package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// session holds one account's loaded state. mu serializes every read and
// mutation of that account. A closed session is no longer in the map and
// must not be used.
type session struct {
	mu     sync.Mutex
	state  *domain.AccountState
	closed bool
}

// SessionManager owns the in-memory account states. State is loaded on first
// use, persisted after every successful mutation and dropped on logout.
type SessionManager struct {
	store    domain.Store
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	now      func() time.Time
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(store domain.Store) *SessionManager {
	return &SessionManager{
		store:    store,
		sessions: make(map[uuid.UUID]*session),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (m *SessionManager) SetClock(now func() time.Time) {
	m.now = now
}

// Store exposes the underlying persistence for read-only aggregation
func (m *SessionManager) Store() domain.Store {
	return m.store
}

func (m *SessionManager) session(accountID uuid.UUID) *session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[accountID]
	if !ok {
		s = &session{}
		m.sessions[accountID] = s
	}
	return s
}

// acquire returns the account's live session with its lock held. A session
// closed while we waited for its lock is skipped in favour of a fresh one.
func (m *SessionManager) acquire(accountID uuid.UUID) *session {
	for {
		s := m.session(accountID)
		s.mu.Lock()
		if !s.closed {
			return s
		}
		s.mu.Unlock()
	}
}

// load must be called with s.mu held
func (m *SessionManager) load(ctx context.Context, s *session, accountID uuid.UUID) error {
	if s.state != nil {
		return nil
	}

	raw, err := m.store.LoadState(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account state: %w", err)
	}
	if raw == nil {
		s.state = domain.NewAccountState(accountID, m.now())
		log.Info().Str("account_id", accountID.String()).Msg("Initialized new account state")
		return nil
	}

	st, err := domain.DecodeAccountState(raw)
	if err != nil {
		return fmt.Errorf("decode account state: %w", err)
	}
	st.AccountID = accountID
	s.state = st
	return nil
}

// Read runs fn against the account state while holding the account lock.
// fn must not retain or modify the state.
func (m *SessionManager) Read(ctx context.Context, accountID uuid.UUID, fn func(*domain.AccountState) error) error {
	s := m.acquire(accountID)
	defer s.mu.Unlock()

	if err := m.load(ctx, s, accountID); err != nil {
		return err
	}
	return fn(s.state)
}

// Update runs fn on a copy of the account state. If fn succeeds, touched
// profile documents and the state are persisted and the copy becomes current.
// If fn or persistence fails nothing in memory changes.
func (m *SessionManager) Update(ctx context.Context, accountID uuid.UUID, fn func(*AccountTx) error) error {
	s := m.acquire(accountID)
	defer s.mu.Unlock()

	if err := m.load(ctx, s, accountID); err != nil {
		return err
	}

	tx := &AccountTx{
		ctx:       ctx,
		store:     m.store,
		accountID: accountID,
		State:     s.state.Clone(),
		docs:      make(map[int32]*domain.ProfileData),
		dirty:     make(map[int32]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for _, profileID := range tx.order {
		if !tx.dirty[profileID] {
			continue
		}
		doc, err := tx.docs[profileID].Encode()
		if err != nil {
			return fmt.Errorf("encode profile %d: %w", profileID, err)
		}
		if err := m.store.SaveProfileDocument(ctx, accountID, profileID, doc); err != nil {
			return fmt.Errorf("save profile %d: %w", profileID, err)
		}
	}

	tx.State.UpdatedAt = m.now().UTC()
	doc, err := tx.State.Encode()
	if err != nil {
		return fmt.Errorf("encode account state: %w", err)
	}
	if err := m.store.SaveState(ctx, accountID, doc); err != nil {
		return fmt.Errorf("save account state: %w", err)
	}

	s.state = tx.State
	return nil
}

// Close drops the account's state from memory
func (m *SessionManager) Close(accountID uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[accountID]
	delete(m.sessions, accountID)
	m.mu.Unlock()

	if ok {
		// wait for in-flight work on this account
		s.mu.Lock()
		s.state = nil
		s.closed = true
		s.mu.Unlock()
		log.Info().Str("account_id", accountID.String()).Msg("Account session closed")
	}
}

// ActiveSessions returns how many accounts are loaded
func (m *SessionManager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// AccountTx is a pending mutation of one account
type AccountTx struct {
	ctx       context.Context
	store     domain.ProfileStore
	accountID uuid.UUID
	State     *domain.AccountState
	docs      map[int32]*domain.ProfileData
	dirty     map[int32]bool
	order     []int32
}

func (tx *AccountTx) AccountID() uuid.UUID {
	return tx.accountID
}

// ProfileData loads a profile document for modification. A malformed
// document is an error here: writing it back would destroy its content.
func (tx *AccountTx) ProfileData(profileID int32) (*domain.ProfileData, error) {
	if data, ok := tx.docs[profileID]; ok {
		return data, nil
	}
	if _, err := tx.State.Profile(profileID); err != nil {
		return nil, err
	}

	raw, err := tx.store.LoadProfileDocument(tx.ctx, tx.accountID, profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile %d: %w", profileID, err)
	}
	data, err := domain.DecodeProfileData(raw)
	if err != nil {
		return nil, fmt.Errorf("profile %d: %w", profileID, err)
	}

	tx.docs[profileID] = data
	tx.order = append(tx.order, profileID)
	return data, nil
}

// Touch marks a loaded profile document for saving
func (tx *AccountTx) Touch(profileID int32) {
	if _, ok := tx.docs[profileID]; ok {
		tx.dirty[profileID] = true
	}
}

// IsMalformed reports whether err came from an unreadable profile document
func IsMalformed(err error) bool {
	return errors.Is(err, domain.ErrMalformedDocument)
}
