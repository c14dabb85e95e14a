package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// PhotoURLResolver turns stored photo paths into URLs a browser can load
type PhotoURLResolver interface {
	ResolvePhotoURLs(ctx context.Context, accountID uuid.UUID, profiles []domain.Profile) []domain.Profile
}

// ProfileService handles profile business logic
type ProfileService struct {
	sessions       *SessionManager
	photos         PhotoURLResolver
	eventPublisher websocket.EventPublisher
}

// NewProfileService creates a new ProfileService
func NewProfileService(sessions *SessionManager, photos PhotoURLResolver) *ProfileService {
	return &ProfileService{sessions: sessions, photos: photos}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ProfileService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ProfileService) publishEvent(accountID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(accountID, event)
	}
}

func (s *ProfileService) resolve(ctx context.Context, accountID uuid.UUID, profiles []domain.Profile) []domain.Profile {
	if s.photos == nil {
		return profiles
	}
	return s.photos.ResolvePhotoURLs(ctx, accountID, profiles)
}

// ListProfiles returns the account's profiles in creation order
func (s *ProfileService) ListProfiles(ctx context.Context, accountID uuid.UUID) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := s.sessions.Read(ctx, accountID, func(st *domain.AccountState) error {
		profiles = append([]domain.Profile{}, st.Profiles...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, accountID, profiles), nil
}

// CreateProfile adds a profile with the next sequential id
func (s *ProfileService) CreateProfile(ctx context.Context, accountID uuid.UUID, name string) (domain.Outcome[domain.Profile], error) {
	var created domain.Profile
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		p, err := tx.State.AddProfile(name)
		if err != nil {
			return err
		}
		created = *p
		return nil
	})

	out, err := toOutcome(created, err)
	if out.IsOK() {
		log.Info().Str("account_id", accountID.String()).Int32("profile_id", created.ID).Msg("Profile created")
		s.publishEvent(accountID, websocket.ProfileCreated(created))
	}
	return out, err
}

// RenameProfile changes a profile's name. Nothing else about a profile is editable.
func (s *ProfileService) RenameProfile(ctx context.Context, accountID uuid.UUID, id int32, name string) (domain.Outcome[domain.Profile], error) {
	var renamed domain.Profile
	err := s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		p, err := tx.State.RenameProfile(id, name)
		if err != nil {
			return err
		}
		renamed = *p
		return nil
	})

	out, err := toOutcome(renamed, err)
	if out.IsOK() {
		out.Value = s.resolve(ctx, accountID, []domain.Profile{renamed})[0]
		s.publishEvent(accountID, websocket.ProfileUpdated(out.Value))
	}
	return out, err
}
