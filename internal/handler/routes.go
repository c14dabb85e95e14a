package handler

import (
	"github.com/granaevo/granaevo-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the API handlers registered by RegisterRoutes
type Handlers struct {
	Profile     *ProfileHandler
	Transaction *TransactionHandler
	Goal        *GoalHandler
	Report      *ReportHandler
	Session     *SessionHandler
}

// RegisterRoutes sets up all API routes. Every /api/v1 route is
// authenticated and rate limited per account.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Profiles and their transactions
	profiles := api.Group("/profiles")
	profiles.GET("", h.Profile.ListProfiles)
	profiles.POST("", h.Profile.CreateProfile)
	profiles.PUT("/:id", h.Profile.RenameProfile)
	profiles.POST("/:id/photo", h.Profile.UploadPhoto)
	profiles.GET("/:id/transactions", h.Transaction.ListTransactions)
	profiles.POST("/:id/transactions", h.Transaction.CreateTransaction)
	profiles.PUT("/:id/transactions/:txId", h.Transaction.UpdateTransaction)
	profiles.DELETE("/:id/transactions/:txId", h.Transaction.DeleteTransaction)

	// Goals (metas)
	goals := api.Group("/goals")
	goals.GET("", h.Goal.ListGoals)
	goals.POST("", h.Goal.CreateGoal)
	goals.GET("/reconciliation", h.Goal.Reconcile)
	goals.PUT("/:id", h.Goal.EditGoal)
	goals.DELETE("/:id", h.Goal.RemoveGoal)
	goals.POST("/:id/contributions", h.Goal.Contribute)
	goals.POST("/:id/withdrawals", h.Goal.Withdraw)

	// Reports and view filter
	api.GET("/reports", h.Report.GetReport)
	api.GET("/filter", h.Report.GetFilter)
	api.PUT("/filter", h.Report.SetFilter)

	api.POST("/session/logout", h.Session.Logout)
}
