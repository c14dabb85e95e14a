package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/middleware"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
	avatarService  *service.AvatarService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService, avatarService *service.AvatarService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, avatarService: avatarService}
}

// ProfileRequest is the body for creating or renaming a profile
type ProfileRequest struct {
	Name string `json:"name"`
}

// ListProfiles godoc
// @Summary List profiles
// @Description List every profile of the account with resolved photo URLs
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Profile
// @Failure 401 {object} ProblemDetails
// @Router /profiles [get]
func (h *ProfileHandler) ListProfiles(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	profiles, err := h.profileService.ListProfiles(c.Request().Context(), accountID)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID.String()).Msg("Failed to list profiles")
		return NewInternalError(c, "Failed to list profiles")
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	return c.JSON(http.StatusOK, profiles)
}

// CreateProfile godoc
// @Summary Create a profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileRequest true "Profile"
// @Success 201 {object} domain.Profile
// @Failure 400 {object} ProblemDetails
// @Router /profiles [post]
func (h *ProfileHandler) CreateProfile(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	out, err := h.profileService.CreateProfile(c.Request().Context(), accountID, req.Name)
	return writeOutcome(c, http.StatusCreated, out, err)
}

// RenameProfile godoc
// @Summary Rename a profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param request body ProfileRequest true "Profile"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /profiles/{id} [put]
func (h *ProfileHandler) RenameProfile(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	id, ok := parseProfileID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid profile ID", []ValidationError{{Field: "id", Message: "Must be a valid profile ID"}})
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	out, err := h.profileService.RenameProfile(c.Request().Context(), accountID, id, req.Name)
	return writeOutcome(c, http.StatusOK, out, err)
}

// UploadPhoto godoc
// @Summary Upload a profile photo
// @Description Accepts a JPEG or PNG up to 5MB, stored as a 256x256 JPEG
// @Tags profiles
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param file formData file true "Image file"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /profiles/{id}/photo [post]
func (h *ProfileHandler) UploadPhoto(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	if h.avatarService == nil || !h.avatarService.IsEnabled() {
		return NewServiceUnavailableError(c, "Photo uploads are disabled (storage not configured)")
	}

	id, ok := parseProfileID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid profile ID", []ValidationError{{Field: "id", Message: "Must be a valid profile ID"}})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	if file.Size > service.MaxImageSize {
		return writeOutcome(c, http.StatusOK, domain.Invalid[domain.Profile](service.ErrImageTooLarge.Code, service.ErrImageTooLarge.Message), nil)
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to read file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxImageSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	out, err := h.avatarService.UploadProfilePhoto(c.Request().Context(), accountID, id, data, file.Filename)
	if errors.Is(err, service.ErrImageStorageNotConfigured) {
		return NewServiceUnavailableError(c, "Photo uploads are disabled (storage not configured)")
	}
	return writeOutcome(c, http.StatusOK, out, err)
}

func parseProfileID(c echo.Context, param string) (int32, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}
