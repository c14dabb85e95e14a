package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateAndDecode(t *testing.T) {
	valid := pngBytes(t, 120, 80)

	tests := []struct {
		name     string
		data     []byte
		filename string
		wantErr  error
	}{
		{"valid png", valid, "foto.PNG", nil},
		{"gif extension", valid, "foto.gif", ErrInvalidFormat},
		{"no extension", valid, "foto", ErrInvalidFormat},
		{"not an image", []byte("hello"), "foto.jpg", ErrInvalidImageData},
		{"too small", pngBytes(t, 20, 200), "foto.png", ErrImageTooSmall},
		{"too large", make([]byte, MaxImageSize+1), "foto.png", ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := validateAndDecode(tt.data, tt.filename)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, 120, img.Bounds().Dx())
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAvatarService_UploadProfilePhoto(t *testing.T) {
	store, sessions, accountID := seedAccount(t, "Ana")
	repo := testutil.NewMockPhotoRepository()
	pub := &testutil.RecordingPublisher{}
	svc := NewAvatarService(sessions, repo)
	svc.SetEventPublisher(pub)
	ctx := context.Background()

	out, err := svc.UploadProfilePhoto(ctx, accountID, 1, pngBytes(t, 300, 200), "ana.png")
	require.NoError(t, err)
	require.True(t, out.IsOK())
	require.NotNil(t, out.Value.PhotoURL)
	assert.True(t, strings.HasPrefix(*out.Value.PhotoURL, "https://photos.test/accounts/"+accountID.String()+"/profiles/1/"))

	require.Len(t, repo.Objects, 1)
	var first string
	for k, data := range repo.Objects {
		first = k
		img, format, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, AvatarSize, img.Bounds().Dx())
		assert.Equal(t, AvatarSize, img.Bounds().Dy())
	}
	assert.Equal(t, first, *store.State(accountID).Profiles[0].PhotoURL)

	// a second upload replaces and deletes the previous object
	_, err = svc.UploadProfilePhoto(ctx, accountID, 1, pngBytes(t, 64, 64), "ana2.png")
	require.NoError(t, err)
	assert.Equal(t, []string{first}, repo.Deleted)
	assert.Len(t, repo.Objects, 1)
	assert.Equal(t, []string{"profile.updated", "profile.updated"}, pub.Types())
}

func TestAvatarService_UploadProfilePhoto_Errors(t *testing.T) {
	_, sessions, accountID := seedAccount(t, "Ana")
	ctx := context.Background()

	disabled := NewAvatarService(sessions, nil)
	_, err := disabled.UploadProfilePhoto(ctx, accountID, 1, pngBytes(t, 64, 64), "a.png")
	assert.ErrorIs(t, err, ErrImageStorageNotConfigured)

	repo := testutil.NewMockPhotoRepository()
	svc := NewAvatarService(sessions, repo)

	invalid, err := svc.UploadProfilePhoto(ctx, accountID, 1, []byte("x"), "a.webp")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInvalid, invalid.Kind)
	assert.Equal(t, "invalid_format", invalid.Code)

	missing, err := svc.UploadProfilePhoto(ctx, accountID, 9, pngBytes(t, 64, 64), "a.png")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotFound, missing.Kind)
	assert.Empty(t, repo.Objects)

	repo.UploadErr = errors.New("bucket unavailable")
	_, err = svc.UploadProfilePhoto(ctx, accountID, 1, pngBytes(t, 64, 64), "a.png")
	assert.ErrorContains(t, err, "bucket unavailable")
}

func TestAvatarService_ForeignPhotoKeys(t *testing.T) {
	store, sessions, accountID := seedAccount(t, "Ana")
	repo := testutil.NewMockPhotoRepository()
	svc := NewAvatarService(sessions, repo)
	ctx := context.Background()

	foreign := "accounts/" + uuid.New().String() + "/profiles/1/x.jpg"
	repo.Objects[foreign] = []byte("someone else")
	st := store.State(accountID)
	st.Profiles[0].PhotoURL = &foreign
	store.PutState(st)

	resolved := svc.ResolvePhotoURLs(ctx, accountID, st.Profiles)
	assert.Nil(t, resolved[0].PhotoURL)

	out, err := svc.UploadProfilePhoto(ctx, accountID, 1, pngBytes(t, 64, 64), "ana.png")
	require.NoError(t, err)
	require.True(t, out.IsOK())

	// the replaced key was not ours, so it stays in storage
	assert.Empty(t, repo.Deleted)
	assert.Contains(t, repo.Objects, foreign)
	assert.Len(t, repo.Objects, 2)
}
