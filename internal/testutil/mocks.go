package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/notify"
	"github.com/granaevo/granaevo-backend/internal/repository/storage"
	"github.com/granaevo/granaevo-backend/internal/websocket"
)

type profileKey struct {
	accountID uuid.UUID
	profileID int32
}

// MockStore is an in-memory implementation of domain.Store
type MockStore struct {
	mu       sync.Mutex
	states   map[uuid.UUID][]byte
	profiles map[profileKey][]byte

	// Error injection
	LoadStateErr   error
	SaveStateErr   error
	LoadProfileErr error
	SaveProfileErr error

	StateSaves   int
	ProfileSaves int
}

// NewMockStore creates a new MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		states:   make(map[uuid.UUID][]byte),
		profiles: make(map[profileKey][]byte),
	}
}

// LoadState returns the stored state document or nil
func (m *MockStore) LoadState(ctx context.Context, accountID uuid.UUID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadStateErr != nil {
		return nil, m.LoadStateErr
	}
	return m.states[accountID], nil
}

// SaveState stores a state document
func (m *MockStore) SaveState(ctx context.Context, accountID uuid.UUID, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveStateErr != nil {
		return m.SaveStateErr
	}
	m.states[accountID] = append([]byte(nil), doc...)
	m.StateSaves++
	return nil
}

// LoadProfileDocument returns the stored profile document or nil
func (m *MockStore) LoadProfileDocument(ctx context.Context, accountID uuid.UUID, profileID int32) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadProfileErr != nil {
		return nil, m.LoadProfileErr
	}
	return m.profiles[profileKey{accountID, profileID}], nil
}

// SaveProfileDocument stores a profile document
func (m *MockStore) SaveProfileDocument(ctx context.Context, accountID uuid.UUID, profileID int32, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveProfileErr != nil {
		return m.SaveProfileErr
	}
	m.profiles[profileKey{accountID, profileID}] = append([]byte(nil), doc...)
	m.ProfileSaves++
	return nil
}

// Close does nothing
func (m *MockStore) Close() error { return nil }

// PutProfileDocument seeds a raw profile document
func (m *MockStore) PutProfileDocument(accountID uuid.UUID, profileID int32, doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profileKey{accountID, profileID}] = doc
}

// PutTransactions seeds a profile document with the given transactions
func (m *MockStore) PutTransactions(accountID uuid.UUID, profileID int32, txs ...domain.Transaction) {
	data := &domain.ProfileData{Transactions: txs}
	doc, err := data.Encode()
	if err != nil {
		panic(err)
	}
	m.PutProfileDocument(accountID, profileID, doc)
}

// PutState seeds an account state
func (m *MockStore) PutState(st *domain.AccountState) {
	doc, err := st.Encode()
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.AccountID] = doc
}

// Transactions decodes a stored profile document
func (m *MockStore) Transactions(accountID uuid.UUID, profileID int32) []domain.Transaction {
	m.mu.Lock()
	raw := m.profiles[profileKey{accountID, profileID}]
	m.mu.Unlock()
	data, err := domain.DecodeProfileData(raw)
	if err != nil {
		return nil
	}
	return data.Transactions
}

// State decodes the stored account state, or nil
func (m *MockStore) State(accountID uuid.UUID) *domain.AccountState {
	m.mu.Lock()
	raw := m.states[accountID]
	m.mu.Unlock()
	if raw == nil {
		return nil
	}
	st, err := domain.DecodeAccountState(raw)
	if err != nil {
		return nil
	}
	return st
}

// RecordingPublisher captures published websocket events
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []websocket.Event
}

var _ websocket.EventPublisher = (*RecordingPublisher)(nil)

// Publish records the event
func (p *RecordingPublisher) Publish(accountID uuid.UUID, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
}

// Types returns the recorded event types in order
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.Type
	}
	return out
}

// MockGoalNotifier records goal notifications
type MockGoalNotifier struct {
	mu       sync.Mutex
	Messages []*notify.GoalCompletedMessage
	Err      error
}

var _ notify.GoalNotifier = (*MockGoalNotifier)(nil)

// NotifyGoalCompleted records the message
func (n *MockGoalNotifier) NotifyGoalCompleted(ctx context.Context, msg *notify.GoalCompletedMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Messages = append(n.Messages, msg)
	return nil
}

// MockPhotoRepository is an in-memory photo store using the same key layout
// and ownership rule as the S3 repository
type MockPhotoRepository struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Deleted   []string
	UploadErr error
}

// NewMockPhotoRepository creates a new MockPhotoRepository
func NewMockPhotoRepository() *MockPhotoRepository {
	return &MockPhotoRepository{Objects: make(map[string][]byte)}
}

func owns(key string, accountID uuid.UUID) bool {
	return strings.HasPrefix(key, "accounts/"+accountID.String()+"/profiles/") && !strings.Contains(key, "..")
}

// UploadProfilePhoto stores the object under a fresh key
func (r *MockPhotoRepository) UploadProfilePhoto(ctx context.Context, accountID uuid.UUID, profileID int32, jpeg []byte) (string, error) {
	if r.UploadErr != nil {
		return "", r.UploadErr
	}
	key := fmt.Sprintf("accounts/%s/profiles/%d/%s.jpg", accountID, profileID, uuid.New())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Objects[key] = append([]byte(nil), jpeg...)
	return key, nil
}

// DeleteProfilePhoto removes the object
func (r *MockPhotoRepository) DeleteProfilePhoto(ctx context.Context, accountID uuid.UUID, key string) error {
	if !owns(key, accountID) {
		return storage.ErrForeignPhoto
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Objects, key)
	r.Deleted = append(r.Deleted, key)
	return nil
}

// PresignProfilePhoto returns a fake signed URL
func (r *MockPhotoRepository) PresignProfilePhoto(ctx context.Context, accountID uuid.UUID, key string, expiry time.Duration) (string, error) {
	if !owns(key, accountID) {
		return "", storage.ErrForeignPhoto
	}
	return fmt.Sprintf("https://photos.test/%s?expires=%d", key, int(expiry.Seconds())), nil
}
