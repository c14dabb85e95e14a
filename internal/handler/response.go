package handler

import (
	"net/http"

	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Code     string            `json:"code,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// EmptyState is returned with 200 when a valid request has nothing to show
type EmptyState struct {
	State   string `json:"state"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation         = "https://granaevo.app/errors/validation"
	ErrorTypeNotFound           = "https://granaevo.app/errors/not-found"
	ErrorTypeUnauthorized       = "https://granaevo.app/errors/unauthorized"
	ErrorTypeInternal           = "https://granaevo.app/errors/internal"
	ErrorTypeServiceUnavailable = "https://granaevo.app/errors/service-unavailable"
)

// field names for outcome codes
var validationFields = map[string]string{}

func init() {
	for _, e := range []*domain.ValidationError{
		domain.ErrProfileNameRequired, domain.ErrProfileNameTooLong,
		domain.ErrInvalidAmount, domain.ErrInvalidTransactionType, domain.ErrCategoryRequired,
		domain.ErrDateRequired, domain.ErrGoalLinkedTransaction, domain.ErrUnknownGoalReference,
		domain.ErrCategoryTooLong, domain.ErrDescriptionTooLong,
		domain.ErrGoalDescriptionRequired, domain.ErrGoalDescriptionTooLong, domain.ErrInvalidGoalTarget,
		domain.ErrInsufficientSaved, domain.ErrConfirmationRequired, domain.ErrWithdrawalReasonTooLong,
		domain.ErrInvalidScope, domain.ErrInvalidPeriod, domain.ErrCasalRequiresTwo, domain.ErrIndividualRequiresOne,
		domain.ErrDuplicateProfile,
		service.ErrImageTooLarge, service.ErrInvalidFormat, service.ErrImageTooSmall, service.ErrInvalidImageData,
	} {
		validationFields[e.Code] = e.Field
	}
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewServiceUnavailableError creates a service unavailable error response
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeServiceUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// writeOutcome renders a service outcome. Ok values are written with
// okStatus, empty outcomes as an EmptyState with 200.
func writeOutcome[T any](c echo.Context, okStatus int, out domain.Outcome[T], err error) error {
	if err != nil {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Request failed")
		return NewInternalError(c, "Failed to process request")
	}

	switch out.Kind {
	case domain.OutcomeOK:
		return c.JSON(okStatus, out.Value)
	case domain.OutcomeEmpty:
		return c.JSON(http.StatusOK, EmptyState{State: string(domain.OutcomeEmpty), Code: out.Code, Message: out.Message})
	case domain.OutcomeNotFound:
		return c.JSON(http.StatusNotFound, ProblemDetails{
			Type:     ErrorTypeNotFound,
			Title:    "Not Found",
			Status:   http.StatusNotFound,
			Detail:   out.Message,
			Instance: c.Request().URL.Path,
			Code:     out.Code,
		})
	default:
		return c.JSON(http.StatusBadRequest, ProblemDetails{
			Type:     ErrorTypeValidation,
			Title:    "Validation Error",
			Status:   http.StatusBadRequest,
			Detail:   out.Message,
			Instance: c.Request().URL.Path,
			Code:     out.Code,
			Errors:   []ValidationError{{Field: validationFields[out.Code], Message: out.Message}},
		})
	}
}
