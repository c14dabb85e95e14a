package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/middleware"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GoalHandler handles goal (meta) HTTP requests
type GoalHandler struct {
	goalService *service.GoalService
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// GoalRequest is the body for creating or editing a goal
type GoalRequest struct {
	Description string `json:"description"`
	Target      string `json:"target"`
}

// GoalMovementRequest is the body for a contribution or withdrawal.
// Date defaults to today; Reason is only used by withdrawals.
type GoalMovementRequest struct {
	ProfileID int32  `json:"profileId"`
	Amount    string `json:"amount"`
	Date      string `json:"date,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// ListGoals godoc
// @Summary List goals
// @Description List every goal with progress, color and status
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.GoalView
// @Router /goals [get]
func (h *GoalHandler) ListGoals(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	goals, err := h.goalService.ListGoals(c.Request().Context(), accountID)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID.String()).Msg("Failed to list goals")
		return NewInternalError(c, "Failed to list goals")
	}
	if goals == nil {
		goals = []domain.GoalView{}
	}
	return c.JSON(http.StatusOK, goals)
}

// CreateGoal godoc
// @Summary Create a goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GoalRequest true "Goal"
// @Success 201 {object} domain.GoalView
// @Failure 400 {object} ProblemDetails
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	input, ok := h.bindGoal(c)
	if !ok {
		return nil
	}

	out, err := h.goalService.CreateGoal(c.Request().Context(), accountID, input)
	return writeOutcome(c, http.StatusCreated, out, err)
}

// EditGoal godoc
// @Summary Edit a goal
// @Description Change description and target; saved amount and history are kept
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Goal ID"
// @Param request body GoalRequest true "Goal"
// @Success 200 {object} domain.GoalView
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /goals/{id} [put]
func (h *GoalHandler) EditGoal(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	id, ok := parseGoalID(c)
	if !ok {
		return NewValidationError(c, "Invalid goal ID", []ValidationError{{Field: "id", Message: "Must be a valid goal ID"}})
	}
	input, ok := h.bindGoal(c)
	if !ok {
		return nil
	}

	out, err := h.goalService.EditGoal(c.Request().Context(), accountID, id, input)
	return writeOutcome(c, http.StatusOK, out, err)
}

// RemoveGoal godoc
// @Summary Remove a goal
// @Description Removes the goal and clears metaId on linked transactions, which are kept
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Goal ID"
// @Param confirm query bool true "Must be true"
// @Success 200 {object} service.RemoveGoalResult
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /goals/{id} [delete]
func (h *GoalHandler) RemoveGoal(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	id, ok := parseGoalID(c)
	if !ok {
		return NewValidationError(c, "Invalid goal ID", []ValidationError{{Field: "id", Message: "Must be a valid goal ID"}})
	}
	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))

	out, err := h.goalService.RemoveGoal(c.Request().Context(), accountID, id, confirmed)
	return writeOutcome(c, http.StatusOK, out, err)
}

// Contribute godoc
// @Summary Contribute to a goal
// @Description Adds to the goal and records a "reserva" expense in the profile
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Goal ID"
// @Param request body GoalMovementRequest true "Contribution"
// @Success 200 {object} service.GoalMovementResult
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /goals/{id}/contributions [post]
func (h *GoalHandler) Contribute(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	id, ok := parseGoalID(c)
	if !ok {
		return NewValidationError(c, "Invalid goal ID", []ValidationError{{Field: "id", Message: "Must be a valid goal ID"}})
	}
	input, ok := h.bindMovement(c)
	if !ok {
		return nil
	}

	out, err := h.goalService.Contribute(c.Request().Context(), accountID, id, input)
	return writeOutcome(c, http.StatusOK, out, err)
}

// Withdraw godoc
// @Summary Withdraw from a goal
// @Description Takes from the goal and records a "retirada_reserva" income in the profile
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Goal ID"
// @Param request body GoalMovementRequest true "Withdrawal"
// @Success 200 {object} service.GoalMovementResult
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /goals/{id}/withdrawals [post]
func (h *GoalHandler) Withdraw(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	id, ok := parseGoalID(c)
	if !ok {
		return NewValidationError(c, "Invalid goal ID", []ValidationError{{Field: "id", Message: "Must be a valid goal ID"}})
	}
	input, ok := h.bindMovement(c)
	if !ok {
		return nil
	}

	out, err := h.goalService.Withdraw(c.Request().Context(), accountID, id, input)
	return writeOutcome(c, http.StatusOK, out, err)
}

// Reconcile godoc
// @Summary Check goal consistency
// @Description Lists goals whose saved value disagrees with their history
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.GoalDiscrepancy
// @Router /goals/reconciliation [get]
func (h *GoalHandler) Reconcile(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	discrepancies, err := h.goalService.Reconcile(c.Request().Context(), accountID)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID.String()).Msg("Failed to reconcile goals")
		return NewInternalError(c, "Failed to reconcile goals")
	}
	return c.JSON(http.StatusOK, discrepancies)
}

// bindGoal parses the goal body. When it returns false the error response
// has already been written.
func (h *GoalHandler) bindGoal(c echo.Context) (service.GoalInput, bool) {
	var req GoalRequest
	if err := c.Bind(&req); err != nil {
		_ = NewValidationError(c, "Invalid request body", nil)
		return service.GoalInput{}, false
	}
	target, err := decimal.NewFromString(req.Target)
	if err != nil {
		_ = NewValidationError(c, "Validation failed", []ValidationError{{Field: "target", Message: "Must be a valid decimal number"}})
		return service.GoalInput{}, false
	}
	return service.GoalInput{Description: req.Description, Target: target}, true
}

func (h *GoalHandler) bindMovement(c echo.Context) (service.GoalMovementInput, bool) {
	var req GoalMovementRequest
	if err := c.Bind(&req); err != nil {
		_ = NewValidationError(c, "Invalid request body", nil)
		return service.GoalMovementInput{}, false
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		_ = NewValidationError(c, "Validation failed", []ValidationError{{Field: "amount", Message: "Must be a valid decimal number"}})
		return service.GoalMovementInput{}, false
	}
	var date time.Time
	if req.Date != "" {
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			_ = NewValidationError(c, "Validation failed", []ValidationError{{Field: "date", Message: "Must be in YYYY-MM-DD format"}})
			return service.GoalMovementInput{}, false
		}
	}
	return service.GoalMovementInput{
		ProfileID: req.ProfileID,
		Amount:    amount,
		Date:      date,
		Reason:    req.Reason,
	}, true
}

func parseGoalID(c echo.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}
