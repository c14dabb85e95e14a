package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod is the interval for sending pings (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is maximum message size allowed from peer
	maxMessageSize = 1024

	// commandTimeout bounds a single inbound command
	commandTimeout = 15 * time.Second
)

// Client represents a single WebSocket connection
type Client struct {
	id        string
	accountID uuid.UUID
	conn      *websocket.Conn
	hub       *Hub
	commands  CommandHandler
	send      chan []byte
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client. With a nil CommandHandler every
// inbound command is rejected.
func NewClient(conn *websocket.Conn, accountID uuid.UUID, hub *Hub, commands CommandHandler) *Client {
	return &Client{
		id:        uuid.New().String(),
		accountID: accountID,
		conn:      conn,
		hub:       hub,
		commands:  commands,
		send:      make(chan []byte, 256),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// AccountID returns the account the client is subscribed to
func (c *Client) AccountID() uuid.UUID {
	return c.accountID
}

// Send queues a message to be sent to the client
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer is full, client is too slow
		return ErrClientClosed
	}
}

// Close closes the client connection
// Safe to call multiple times from different goroutines
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// ReadPump reads commands from the WebSocket connection and answers each
// one before reading the next. It returns when the connection closes.
// This should be run in a goroutine
func (c *Client) ReadPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("account_id", c.accountID.String()).
					Msg("WebSocket unexpected close")
			}
			break
		}
		c.reply(c.handle(ctx, data))
	}
}

func (c *Client) handle(ctx context.Context, data []byte) Event {
	cmd, err := decodeCommand(data)
	if err != nil {
		return CommandRejected("invalid_command", "Mensagem inválida.")
	}
	if c.commands == nil {
		return c.withRequest(CommandRejected("unknown_command", "Comando não suportado."), cmd)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	event, err := c.commands.HandleCommand(ctx, c.accountID, cmd)
	switch {
	case errors.Is(err, ErrUnknownCommand):
		event = CommandRejected("unknown_command", "Comando não suportado.")
	case err != nil:
		log.Error().
			Err(err).
			Str("client_id", c.id).
			Str("account_id", c.accountID.String()).
			Str("command", cmd.Type).
			Msg("WebSocket command failed")
		event = CommandRejected("command_failed", "Não foi possível processar o comando.")
	}
	return c.withRequest(event, cmd)
}

func (c *Client) withRequest(event Event, cmd Command) Event {
	event.RequestID = cmd.ID
	return event
}

func (c *Client) reply(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("client_id", c.id).Msg("Failed to encode command reply")
		return
	}
	if err := c.Send(data); err != nil {
		log.Debug().Err(err).Str("client_id", c.id).Msg("Dropped command reply")
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
// This should be run in a goroutine
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, hub closed this client
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("account_id", c.accountID.String()).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
