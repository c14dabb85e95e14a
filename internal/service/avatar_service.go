package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/repository/storage"
	"github.com/granaevo/granaevo-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5MB
	MinImageWidth  = 50
	MinImageHeight = 50
	AvatarSize     = 256
	JPEGQuality    = 85
	PhotoURLExpiry = time.Hour
)

var (
	ErrImageTooLarge    = &domain.ValidationError{Code: "image_too_large", Field: "photo", Message: "Arquivo muito grande. O tamanho máximo é 5MB."}
	ErrInvalidFormat    = &domain.ValidationError{Code: "invalid_format", Field: "photo", Message: "Formato inválido. Use JPEG ou PNG."}
	ErrImageTooSmall    = &domain.ValidationError{Code: "image_too_small", Field: "photo", Message: "Imagem muito pequena. Mínimo de 50x50 pixels."}
	ErrInvalidImageData = &domain.ValidationError{Code: "invalid_image", Field: "photo", Message: "Não foi possível ler a imagem."}

	ErrImageStorageNotConfigured = errors.New("image storage not configured")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// AvatarService processes and stores profile photos
type AvatarService struct {
	sessions       *SessionManager
	storage        storage.PhotoRepository
	eventPublisher websocket.EventPublisher
}

// NewAvatarService creates a new AvatarService. A nil repository disables uploads.
func NewAvatarService(sessions *SessionManager, photos storage.PhotoRepository) *AvatarService {
	return &AvatarService{sessions: sessions, storage: photos}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AvatarService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// IsEnabled indicates whether uploads are supported (storage configured)
func (s *AvatarService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

func validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}

	return img, nil
}

// renderAvatar crops to a centered square and encodes it as JPEG
func renderAvatar(img image.Image) ([]byte, error) {
	square := imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, square, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// UploadProfilePhoto replaces a profile's photo. The previous object is
// deleted after the profile points at the new one.
func (s *AvatarService) UploadProfilePhoto(ctx context.Context, accountID uuid.UUID, profileID int32, data []byte, filename string) (domain.Outcome[domain.Profile], error) {
	if !s.IsEnabled() {
		return domain.Outcome[domain.Profile]{}, ErrImageStorageNotConfigured
	}

	img, err := validateAndDecode(data, filename)
	if err != nil {
		return toOutcome(domain.Profile{}, err)
	}

	// fail fast on unknown profiles before uploading anything
	err = s.sessions.Read(ctx, accountID, func(st *domain.AccountState) error {
		_, err := st.Profile(profileID)
		return err
	})
	if err != nil {
		return toOutcome(domain.Profile{}, err)
	}

	encoded, err := renderAvatar(img)
	if err != nil {
		return domain.Outcome[domain.Profile]{}, err
	}

	key, err := s.storage.UploadProfilePhoto(ctx, accountID, profileID, encoded)
	if err != nil {
		return domain.Outcome[domain.Profile]{}, err
	}

	var updated domain.Profile
	var previous string
	err = s.sessions.Update(ctx, accountID, func(tx *AccountTx) error {
		p, err := tx.State.Profile(profileID)
		if err != nil {
			return err
		}
		if p.PhotoURL != nil {
			previous = *p.PhotoURL
		}
		p.PhotoURL = &key
		updated = *p
		return nil
	})
	if err != nil {
		s.deletePhoto(ctx, accountID, key)
		return toOutcome(domain.Profile{}, err)
	}
	if previous != "" {
		s.deletePhoto(ctx, accountID, previous)
	}

	resolved := s.ResolvePhotoURLs(ctx, accountID, []domain.Profile{updated})[0]
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(accountID, websocket.ProfileUpdated(resolved))
	}
	return domain.Ok(resolved), nil
}

func (s *AvatarService) deletePhoto(ctx context.Context, accountID uuid.UUID, key string) {
	if err := s.storage.DeleteProfilePhoto(ctx, accountID, key); err != nil {
		log.Warn().Err(err).Str("account_id", accountID.String()).Str("object", key).Msg("Failed to delete photo object")
	}
}

// ResolvePhotoURLs swaps stored object keys for presigned URLs. Profiles
// whose URL cannot be signed are returned without a photo.
func (s *AvatarService) ResolvePhotoURLs(ctx context.Context, accountID uuid.UUID, profiles []domain.Profile) []domain.Profile {
	out := make([]domain.Profile, len(profiles))
	for i, p := range profiles {
		out[i] = p
		if p.PhotoURL == nil {
			continue
		}
		if !s.IsEnabled() {
			out[i].PhotoURL = nil
			continue
		}
		url, err := s.storage.PresignProfilePhoto(ctx, accountID, *p.PhotoURL, PhotoURLExpiry)
		if err != nil {
			log.Warn().Err(err).Int32("profile_id", p.ID).Msg("Failed to presign photo URL")
			out[i].PhotoURL = nil
			continue
		}
		out[i].PhotoURL = &url
	}
	return out
}
