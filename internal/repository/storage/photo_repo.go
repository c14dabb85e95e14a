package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrForeignPhoto is returned when a photo key does not belong to the
// account asking for it
var ErrForeignPhoto = errors.New("photo belongs to another account")

// PhotoRepository stores profile photos as private JPEG objects. The
// repository owns the key layout; callers only keep the returned key and
// hand it back together with the owning account.
type PhotoRepository interface {
	UploadProfilePhoto(ctx context.Context, accountID uuid.UUID, profileID int32, jpeg []byte) (string, error)
	DeleteProfilePhoto(ctx context.Context, accountID uuid.UUID, key string) error
	PresignProfilePhoto(ctx context.Context, accountID uuid.UUID, key string, expiry time.Duration) (string, error)
}

var _ PhotoRepository = (*S3PhotoRepository)(nil)

// Each upload gets a fresh key so cached presigned URLs of the previous
// photo never show the new one.
func photoKey(accountID uuid.UUID, profileID int32, uploadID uuid.UUID) string {
	return fmt.Sprintf("%s%d/%s.jpg", profilePrefix(accountID), profileID, uploadID)
}

func profilePrefix(accountID uuid.UUID) string {
	return fmt.Sprintf("accounts/%s/profiles/", accountID)
}

// checkOwner rejects keys outside the account's prefix, including ones that
// climb out of it with "..".
func checkOwner(key string, accountID uuid.UUID) error {
	rest, ok := strings.CutPrefix(key, profilePrefix(accountID))
	if !ok || rest == "" {
		return ErrForeignPhoto
	}
	for _, part := range strings.Split(rest, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrForeignPhoto
		}
	}
	return nil
}
