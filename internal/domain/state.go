package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountState is everything the application holds for one account between
// requests: profiles, goals, id counters and the current filter.
type AccountState struct {
	AccountID     uuid.UUID `json:"accountId"`
	Profiles      []Profile `json:"profiles"`
	Goals         []Goal    `json:"goals"`
	NextGoalID    int32     `json:"nextGoalId"`
	NextProfileID int32     `json:"nextProfileId"`
	Filter        Filter    `json:"filter"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewAccountState creates the initial state for a new account
func NewAccountState(accountID uuid.UUID, now time.Time) *AccountState {
	return &AccountState{
		AccountID:     accountID,
		Profiles:      []Profile{},
		Goals:         []Goal{},
		NextGoalID:    1,
		NextProfileID: 1,
		Filter:        DefaultFilter(now),
		UpdatedAt:     now.UTC(),
	}
}

func DecodeAccountState(raw []byte) (*AccountState, error) {
	var st AccountState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if st.Profiles == nil {
		st.Profiles = []Profile{}
	}
	if st.Goals == nil {
		st.Goals = []Goal{}
	}
	if st.NextGoalID < 1 {
		st.NextGoalID = 1
	}
	if st.NextProfileID < 1 {
		st.NextProfileID = 1
	}
	return &st, nil
}

func (s *AccountState) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Clone returns a deep copy so a failed mutation can be discarded
func (s *AccountState) Clone() *AccountState {
	c := *s
	c.Profiles = make([]Profile, len(s.Profiles))
	for i, p := range s.Profiles {
		c.Profiles[i] = p
		if p.PhotoURL != nil {
			url := *p.PhotoURL
			c.Profiles[i].PhotoURL = &url
		}
	}
	c.Goals = make([]Goal, len(s.Goals))
	for i, g := range s.Goals {
		c.Goals[i] = g
		c.Goals[i].Monthly = make(map[string]decimal.Decimal, len(g.Monthly))
		for k, v := range g.Monthly {
			c.Goals[i].Monthly[k] = v
		}
		c.Goals[i].Withdrawals = make([]Withdrawal, len(g.Withdrawals))
		copy(c.Goals[i].Withdrawals, g.Withdrawals)
	}
	return &c
}

// Profile returns the profile with the given id
func (s *AccountState) Profile(id int32) (*Profile, error) {
	for i := range s.Profiles {
		if s.Profiles[i].ID == id {
			return &s.Profiles[i], nil
		}
	}
	return nil, ErrProfileNotFound
}

// ProfilesByID resolves ids in the given order. An id may appear only once.
func (s *AccountState) ProfilesByID(ids []int32) ([]Profile, error) {
	out := make([]Profile, 0, len(ids))
	seen := make(map[int32]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicateProfile
		}
		seen[id] = struct{}{}
		p, err := s.Profile(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *AccountState) AddProfile(name string) (*Profile, error) {
	name, err := NormalizeProfileName(name)
	if err != nil {
		return nil, err
	}
	s.Profiles = append(s.Profiles, Profile{ID: s.NextProfileID, Name: name})
	s.NextProfileID++
	return &s.Profiles[len(s.Profiles)-1], nil
}

func (s *AccountState) RenameProfile(id int32, name string) (*Profile, error) {
	p, err := s.Profile(id)
	if err != nil {
		return nil, err
	}
	name, err = NormalizeProfileName(name)
	if err != nil {
		return nil, err
	}
	p.Name = name
	return p, nil
}

// Goal returns the goal with the given id
func (s *AccountState) Goal(id int32) (*Goal, error) {
	for i := range s.Goals {
		if s.Goals[i].ID == id {
			return &s.Goals[i], nil
		}
	}
	return nil, ErrGoalNotFound
}

// CreateGoal validates input and assigns the next goal id. On error the
// counter is left untouched.
func (s *AccountState) CreateGoal(description string, target decimal.Decimal, now time.Time) (*Goal, error) {
	description, err := ValidateGoalInput(description, target)
	if err != nil {
		return nil, err
	}
	s.Goals = append(s.Goals, Goal{
		ID:          s.NextGoalID,
		Description: description,
		Target:      target,
		Saved:       decimal.Zero,
		Monthly:     map[string]decimal.Decimal{},
		Withdrawals: []Withdrawal{},
		CreatedAt:   now.UTC(),
	})
	s.NextGoalID++
	return &s.Goals[len(s.Goals)-1], nil
}

func (s *AccountState) EditGoal(id int32, description string, target decimal.Decimal) (*Goal, error) {
	g, err := s.Goal(id)
	if err != nil {
		return nil, err
	}
	description, err = ValidateGoalInput(description, target)
	if err != nil {
		return nil, err
	}
	g.Description = description
	g.Target = target
	return g, nil
}

// RemoveGoal deletes the goal record only. Clearing references in profile
// documents is the caller's job.
func (s *AccountState) RemoveGoal(id int32) error {
	for i := range s.Goals {
		if s.Goals[i].ID == id {
			s.Goals = append(s.Goals[:i], s.Goals[i+1:]...)
			return nil
		}
	}
	return ErrGoalNotFound
}

// ProfileStore persists per-profile documents. LoadProfileDocument returns
// nil, nil when the profile has no document yet.
type ProfileStore interface {
	LoadProfileDocument(ctx context.Context, accountID uuid.UUID, profileID int32) ([]byte, error)
	SaveProfileDocument(ctx context.Context, accountID uuid.UUID, profileID int32, doc []byte) error
}

// StateStore persists account state documents. LoadState returns nil, nil
// for an account that has never been saved.
type StateStore interface {
	LoadState(ctx context.Context, accountID uuid.UUID) ([]byte, error)
	SaveState(ctx context.Context, accountID uuid.UUID, doc []byte) error
}

// Store is the full persistence surface
type Store interface {
	ProfileStore
	StateStore
	Close() error
}
