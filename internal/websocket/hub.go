package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	AccountID() uuid.UUID
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections grouped by account
// It is safe for concurrent use
type Hub struct {
	// accounts maps account ID to a map of client ID to client
	accounts map[uuid.UUID]map[string]ClientInterface
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		accounts: make(map[uuid.UUID]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its account
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	accountID := client.AccountID()
	clientID := client.ID()

	if h.accounts[accountID] == nil {
		h.accounts[accountID] = make(map[string]ClientInterface)
	}

	h.accounts[accountID][clientID] = client

	log.Debug().
		Str("account_id", accountID.String()).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	accountID := client.AccountID()
	clientID := client.ID()

	if clients, ok := h.accounts[accountID]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			// Clean up empty account maps
			if len(clients) == 0 {
				delete(h.accounts, accountID)
			}

			log.Debug().
				Str("account_id", accountID.String()).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients of an account
func (h *Hub) Broadcast(accountID uuid.UUID, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("account_id", accountID.String()).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.accounts[accountID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	// Send to each client asynchronously
	for _, client := range clientsCopy {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("account_id", accountID.String()).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("account_id", accountID.String()).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients connected for an account
func (h *Hub) ClientCount(accountID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.accounts[accountID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all accounts
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.accounts {
		total += len(clients)
	}
	return total
}

// Disconnect closes and removes every client of an account.
// Used when the account logs out.
func (h *Hub) Disconnect(accountID uuid.UUID) int {
	h.mu.Lock()
	clients := h.accounts[accountID]
	delete(h.accounts, accountID)
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.Close(); err != nil {
			log.Debug().Err(err).Str("client_id", c.ID()).Msg("Error closing client")
		}
	}
	if len(clients) > 0 {
		log.Info().
			Str("account_id", accountID.String()).
			Int("client_count", len(clients)).
			Msg("Disconnected account clients")
	}
	return len(clients)
}
