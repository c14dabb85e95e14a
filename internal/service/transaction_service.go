package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/websocket"
)

// TransactionService handles transaction CRUD inside profile documents
type TransactionService struct {
	sessions       *SessionManager
	eventPublisher websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(sessions *SessionManager) *TransactionService {
	return &TransactionService{sessions: sessions}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(accountID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(accountID, event)
	}
}

// ListTransactions returns a profile's transactions in stored order
func (s *TransactionService) ListTransactions(ctx context.Context, accountID uuid.UUID, profileID int32) (domain.Outcome[[]domain.Transaction], error) {
	var txs []domain.Transaction
	err := s.sessions.Read(ctx, accountID, func(st *domain.AccountState) error {
		if _, err := st.Profile(profileID); err != nil {
			return err
		}
		data, err := loadProfileData(ctx, s.sessions.Store(), accountID, profileID)
		if err != nil {
			return err
		}
		txs = data.Transactions
		return nil
	})
	return toOutcome(txs, err)
}

// CreateTransaction validates input and appends a transaction to the profile
func (s *TransactionService) CreateTransaction(ctx context.Context, accountID uuid.UUID, profileID int32, input domain.TransactionInput) (domain.Outcome[domain.Transaction], error) {
	var created domain.Transaction
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		record, err := domain.NewTransaction(profileID, input)
		if err != nil {
			return err
		}
		if err := checkGoalReference(tx.State, record.MetaID); err != nil {
			return err
		}
		data, err := tx.ProfileData(profileID)
		if err != nil {
			return err
		}
		data.Append(record)
		tx.Touch(profileID)
		created = record
		return nil
	})

	out, err := toOutcome(created, err)
	if out.IsOK() {
		s.publishEvent(accountID, websocket.TransactionCreated(created))
	}
	return out, err
}

// UpdateTransaction replaces the editable fields of a transaction. Goal
// movements are rejected since editing them would desync the goal.
func (s *TransactionService) UpdateTransaction(ctx context.Context, accountID uuid.UUID, profileID int32, id uuid.UUID, input domain.TransactionInput) (domain.Outcome[domain.Transaction], error) {
	var updated domain.Transaction
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		data, err := tx.ProfileData(profileID)
		if err != nil {
			return err
		}
		idx := data.Find(id)
		if idx < 0 {
			return domain.ErrTransactionNotFound
		}
		if data.Transactions[idx].MetaID != nil {
			return domain.ErrGoalLinkedTransaction
		}

		record, err := domain.NewTransaction(profileID, input)
		if err != nil {
			return err
		}
		if err := checkGoalReference(tx.State, record.MetaID); err != nil {
			return err
		}
		record.ID = id
		data.Transactions[idx] = record
		tx.Touch(profileID)
		updated = record
		return nil
	})

	out, err := toOutcome(updated, err)
	if out.IsOK() {
		s.publishEvent(accountID, websocket.TransactionUpdated(updated))
	}
	return out, err
}

// DeleteTransaction removes a transaction from the profile
func (s *TransactionService) DeleteTransaction(ctx context.Context, accountID uuid.UUID, profileID int32, id uuid.UUID) (domain.Outcome[uuid.UUID], error) {
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		data, err := tx.ProfileData(profileID)
		if err != nil {
			return err
		}
		idx := data.Find(id)
		if idx < 0 {
			return domain.ErrTransactionNotFound
		}
		if data.Transactions[idx].MetaID != nil {
			return domain.ErrGoalLinkedTransaction
		}
		data.Remove(id)
		tx.Touch(profileID)
		return nil
	})

	out, err := toOutcome(id, err)
	if out.IsOK() {
		s.publishEvent(accountID, websocket.TransactionDeleted(map[string]interface{}{
			"id":        id,
			"profileId": profileID,
		}))
	}
	return out, err
}

func checkGoalReference(st *domain.AccountState, metaID *int32) error {
	if metaID == nil {
		return nil
	}
	if _, err := st.Goal(*metaID); err != nil {
		return domain.ErrUnknownGoalReference
	}
	return nil
}
