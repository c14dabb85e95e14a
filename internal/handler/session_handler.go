package handler

import (
	"net/http"

	"github.com/granaevo/granaevo-backend/internal/middleware"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/granaevo/granaevo-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SessionHandler ends account sessions
type SessionHandler struct {
	sessions *service.SessionManager
	hub      *websocket.Hub
}

// NewSessionHandler creates a new SessionHandler. hub may be nil.
func NewSessionHandler(sessions *service.SessionManager, hub *websocket.Hub) *SessionHandler {
	return &SessionHandler{sessions: sessions, hub: hub}
}

// Logout godoc
// @Summary Log out
// @Description Drops the in-memory account state and closes the account's websocket connections
// @Tags session
// @Security BearerAuth
// @Success 204
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	accountID := middleware.GetAccountID(c)

	h.sessions.Close(accountID)
	closed := 0
	if h.hub != nil {
		closed = h.hub.Disconnect(accountID)
	}

	log.Info().
		Str("account_id", accountID.String()).
		Int("closed_connections", closed).
		Msg("Account logged out")

	return c.NoContent(http.StatusNoContent)
}
