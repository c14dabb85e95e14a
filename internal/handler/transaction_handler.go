package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/middleware"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the create and update transaction body.
// Amount is a decimal string such as "1234.56"; Date is YYYY-MM-DD.
type TransactionRequest struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	MetaID      *int32 `json:"metaId,omitempty"`
}

// parse converts the body into service input, reporting the first malformed field
func (r TransactionRequest) parse() (domain.TransactionInput, *ValidationError) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.TransactionInput{}, &ValidationError{Field: "amount", Message: "Must be a valid decimal number"}
	}

	var date time.Time
	if r.Date != "" {
		date, err = time.Parse(dateLayout, r.Date)
		if err != nil {
			return domain.TransactionInput{}, &ValidationError{Field: "date", Message: "Must be in YYYY-MM-DD format"}
		}
	}

	return domain.TransactionInput{
		Type:        domain.TransactionType(r.Type),
		Category:    r.Category,
		Description: r.Description,
		Amount:      amount,
		Date:        date,
		MetaID:      r.MetaID,
	}, nil
}

// ListTransactions godoc
// @Summary List a profile's transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 200 {array} domain.Transaction
// @Failure 404 {object} ProblemDetails
// @Router /profiles/{id}/transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	profileID, ok := parseProfileID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid profile ID", []ValidationError{{Field: "id", Message: "Must be a valid profile ID"}})
	}

	out, err := h.transactionService.ListTransactions(c.Request().Context(), accountID, profileID)
	if out.IsOK() && out.Value == nil {
		out.Value = []domain.Transaction{}
	}
	return writeOutcome(c, http.StatusOK, out, err)
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Create an income or expense in a profile
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param request body TransactionRequest true "Transaction"
// @Success 201 {object} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /profiles/{id}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	profileID, ok := parseProfileID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid profile ID", []ValidationError{{Field: "id", Message: "Must be a valid profile ID"}})
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, verr := req.parse()
	if verr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*verr})
	}

	out, err := h.transactionService.CreateTransaction(c.Request().Context(), accountID, profileID, input)
	return writeOutcome(c, http.StatusCreated, out, err)
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param txId path string true "Transaction ID"
// @Param request body TransactionRequest true "Transaction"
// @Success 200 {object} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /profiles/{id}/transactions/{txId} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	profileID, ok := parseProfileID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid profile ID", []ValidationError{{Field: "id", Message: "Must be a valid profile ID"}})
	}
	id, err := uuid.Parse(c.Param("txId"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", []ValidationError{{Field: "txId", Message: "Must be a valid UUID"}})
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, verr := req.parse()
	if verr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*verr})
	}

	out, err := h.transactionService.UpdateTransaction(c.Request().Context(), accountID, profileID, id, input)
	return writeOutcome(c, http.StatusOK, out, err)
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Param txId path string true "Transaction ID"
// @Success 204
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /profiles/{id}/transactions/{txId} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	profileID, ok := parseProfileID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid profile ID", []ValidationError{{Field: "id", Message: "Must be a valid profile ID"}})
	}
	id, err := uuid.Parse(c.Param("txId"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", []ValidationError{{Field: "txId", Message: "Must be a valid UUID"}})
	}

	out, err := h.transactionService.DeleteTransaction(c.Request().Context(), accountID, profileID, id)
	if err == nil && out.IsOK() {
		return c.NoContent(http.StatusNoContent)
	}
	return writeOutcome(c, http.StatusOK, out, err)
}
