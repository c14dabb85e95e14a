package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/granaevo/granaevo-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// JWTValidator validates JWT tokens and returns the account they belong to
type JWTValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

// WebSocketHandler accepts account connections. A connection belongs to the
// account session: it is opened against a loaded session, its commands run
// through that session and logout closes it.
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	sessions       *service.SessionManager
	commands       websocket.CommandHandler
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. sessions and commands may be nil.
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, sessions *service.SessionManager, commands websocket.CommandHandler, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		sessions:       sessions,
		commands:       commands,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	accountID, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	// join the account session before upgrading so a state that cannot be
	// loaded fails as a plain HTTP error
	if h.sessions != nil {
		err := h.sessions.Read(c.Request().Context(), accountID, func(*domain.AccountState) error { return nil })
		if err != nil {
			log.Error().Err(err).Str("account_id", accountID.String()).Msg("WebSocket session load failed")
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load account")
		}
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, accountID, h.hub, h.commands)
	h.hub.Register(client)

	log.Info().
		Str("account_id", accountID.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
