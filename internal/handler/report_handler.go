package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/middleware"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler serves reports and the account's view filter
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetReport godoc
// @Summary Build a report
// @Description Aggregates the selected profiles and computes metrics for the period.
// @Description Parameters that are not given fall back to the stored filter.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param profileIds query string false "Comma separated profile IDs, all profiles when omitted"
// @Param scope query string false "individual, casal or familia"
// @Param month query int false "Month 1-12"
// @Param year query int false "Year"
// @Param comparison query bool false "Per-profile raw sequences instead of metrics"
// @Param from query string false "Range start YYYY-MM, requires to"
// @Param to query string false "Range end YYYY-MM, requires from"
// @Success 200 {object} domain.Report
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /reports [get]
func (h *ReportHandler) GetReport(c echo.Context) error {
	accountID := middleware.GetAccountID(c)
	ctx := c.Request().Context()

	var req domain.ReportRequest

	if raw := c.QueryParam("profileIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
			if err != nil || id <= 0 {
				return NewValidationError(c, "Invalid profileIds", []ValidationError{
					{Field: "profileIds", Message: "Must be a comma separated list of profile IDs"},
				})
			}
			req.ProfileIDs = append(req.ProfileIDs, int32(id))
		}
	}

	if hasFilterParams(c) {
		filter, err := h.reportService.GetFilter(ctx, accountID)
		if err != nil {
			log.Error().Err(err).Str("account_id", accountID.String()).Msg("Failed to load filter")
			return NewInternalError(c, "Failed to build report")
		}
		if verr := applyFilterParams(c, &filter); verr != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{*verr})
		}
		req.Filter = &filter
	}

	from, to := c.QueryParam("from"), c.QueryParam("to")
	if from != "" || to != "" {
		period, verr := parseRange(from, to)
		if verr != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{*verr})
		}
		req.Range = period
	}

	out, err := h.reportService.Build(ctx, accountID, req)
	return writeOutcome(c, http.StatusOK, out, err)
}

// GetFilter godoc
// @Summary Get the stored filter
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Filter
// @Router /filter [get]
func (h *ReportHandler) GetFilter(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	filter, err := h.reportService.GetFilter(c.Request().Context(), accountID)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID.String()).Msg("Failed to load filter")
		return NewInternalError(c, "Failed to load filter")
	}
	return c.JSON(http.StatusOK, filter)
}

// SetFilter godoc
// @Summary Replace the stored filter
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.Filter true "Filter"
// @Success 200 {object} domain.Filter
// @Failure 400 {object} ProblemDetails
// @Router /filter [put]
func (h *ReportHandler) SetFilter(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	var filter domain.Filter
	if err := c.Bind(&filter); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	out, err := h.reportService.SetFilter(c.Request().Context(), accountID, filter)
	return writeOutcome(c, http.StatusOK, out, err)
}

func hasFilterParams(c echo.Context) bool {
	for _, name := range []string{"scope", "month", "year", "comparison"} {
		if c.QueryParam(name) != "" {
			return true
		}
	}
	return false
}

func applyFilterParams(c echo.Context, f *domain.Filter) *ValidationError {
	if v := c.QueryParam("scope"); v != "" {
		f.Scope = domain.Scope(v)
	}
	if v := c.QueryParam("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Field: "month", Message: "Must be a number"}
		}
		f.Month = month
	}
	if v := c.QueryParam("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Field: "year", Message: "Must be a number"}
		}
		f.Year = year
	}
	if v := c.QueryParam("comparison"); v != "" {
		comparison, err := strconv.ParseBool(v)
		if err != nil {
			return &ValidationError{Field: "comparison", Message: "Must be true or false"}
		}
		f.Comparison = comparison
	}
	return nil
}

func parseRange(from, to string) (*domain.PeriodRange, *ValidationError) {
	if from == "" || to == "" {
		return nil, &ValidationError{Field: "from", Message: "Both from and to are required"}
	}
	start, err := time.Parse("2006-01", from)
	if err != nil {
		return nil, &ValidationError{Field: "from", Message: "Must be in YYYY-MM format"}
	}
	end, err := time.Parse("2006-01", to)
	if err != nil {
		return nil, &ValidationError{Field: "to", Message: "Must be in YYYY-MM format"}
	}
	return &domain.PeriodRange{From: domain.YearMonthOf(start), To: domain.YearMonthOf(end)}, nil
}
